package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	nsq "github.com/nsqio/go-nsq"
)

var (
	// ErrNSQTopicRequired is returned when the topic is empty.
	ErrNSQTopicRequired = errors.New("messaging: nsq topic is required")
	// ErrNSQProducerAddrRequired is returned when the nsqd address is missing.
	ErrNSQProducerAddrRequired = errors.New("messaging: nsq producer address is required")
)

// NSQConfig configures the NSQ publisher.
type NSQConfig struct {
	ProducerAddr string
	// Config overrides nsq.NewConfig().
	Config *nsq.Config
}

// NSQ publishes to an nsqd instance.
type NSQ struct {
	producer *nsq.Producer

	mu     sync.Mutex
	closed bool
}

// NewNSQ builds a producer. go-nsq connects on first publish.
func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQProducerAddrRequired
	}

	ncfg := cfg.Config
	if ncfg == nil {
		ncfg = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, ncfg)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{producer: p}, nil
}

// Close stops the producer.
func (n *NSQ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.closed {
		n.closed = true
		n.producer.Stop()
	}
	return nil
}

// Publish sends msg.Body to the topic. Headers and Key are not carried by NSQ.
func (n *NSQ) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrNSQTopicRequired
	}

	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()
	if closed {
		return PublishResult{}, ErrClosed
	}

	var err error
	if msg.Delay > 0 {
		err = n.producer.DeferredPublish(destination, msg.Delay, msg.Body)
	} else {
		err = n.producer.Publish(destination, msg.Body)
	}
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}
