package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

var (
	// ErrPubSubProjectIDRequired is returned when neither a client nor a project id is given.
	ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")
	// ErrPubSubTopicRequired is returned when the topic is empty.
	ErrPubSubTopicRequired = errors.New("messaging: pubsub topic is required")
)

// PubSubConfig configures the Google Pub/Sub publisher.
type PubSubConfig struct {
	ProjectID string

	// Client is used as is when set. Close still closes it.
	Client *pubsub.Client
	// ClientOptions are used when creating a new client.
	ClientOptions []option.ClientOption
}

// PubSub publishes to Google Pub/Sub topics.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	closed     bool
	publishers map[string]*pubsub.Publisher
}

// NewPubSub builds a publisher from cfg.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.Client != nil {
		return &PubSub{client: cfg.Client, publishers: map[string]*pubsub.Publisher{}}, nil
	}
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	c, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}

	return &PubSub{client: c, publishers: map[string]*pubsub.Publisher{}}, nil
}

// Close flushes and stops every topic publisher, then closes the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pubs := make([]*pubsub.Publisher, 0, len(p.publishers))
	for _, pub := range p.publishers {
		pubs = append(pubs, pub)
	}
	p.publishers = nil
	p.mu.Unlock()

	for _, pub := range pubs {
		pub.Stop()
	}

	return p.client.Close()
}

// Publish sends msg to the topic and waits for the server id.
// Headers become message attributes and Key becomes the ordering key.
func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrPubSubTopicRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	pub, err := p.publisher(destination)
	if err != nil {
		return PublishResult{}, err
	}

	var attrs map[string]string
	if len(msg.Headers) > 0 {
		attrs = make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			if h.Key != "" {
				attrs[h.Key] = string(h.Value)
			}
		}
	}

	res := pub.Publish(ctx, &pubsub.Message{
		Data:        msg.Body,
		Attributes:  attrs,
		OrderingKey: orderingKey(pub, msg.Key),
	})
	id, err := res.Get(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: time.Now()}, nil
}

func (p *PubSub) publisher(topicNameOrID string) (*pubsub.Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrClosed
	}
	if pub, ok := p.publishers[topicNameOrID]; ok {
		return pub, nil
	}
	pub := p.client.Publisher(topicNameOrID)
	p.publishers[topicNameOrID] = pub
	return pub, nil
}

// orderingKey is only set when ordering is enabled, the client rejects it otherwise.
func orderingKey(pub *pubsub.Publisher, key []byte) string {
	if !pub.EnableMessageOrdering {
		return ""
	}
	return string(key)
}
