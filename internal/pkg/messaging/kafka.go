package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrKafkaTopicRequired is returned when the topic is empty.
	ErrKafkaTopicRequired = errors.New("messaging: kafka topic is required")
	// ErrKafkaBrokersRequired is returned when no brokers are configured.
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
)

// KafkaConfig configures the Kafka publisher.
type KafkaConfig struct {
	Brokers []string

	// Transport overrides the default connection settings, e.g. for TLS or SASL.
	Transport kafka.RoundTripper

	// BatchTimeout bounds how long a write waits to fill a batch. Zero means 10ms.
	BatchTimeout time.Duration
}

// Kafka publishes to Kafka topics with one writer per topic.
type Kafka struct {
	brokers      []string
	transport    kafka.RoundTripper
	batchTimeout time.Duration

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// NewKafka builds a Kafka publisher. Connections are opened lazily.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	batch := cfg.BatchTimeout
	if batch <= 0 {
		batch = 10 * time.Millisecond
	}

	return &Kafka{
		brokers:      append([]string{}, cfg.Brokers...),
		transport:    cfg.Transport,
		batchTimeout: batch,
		writers:      map[string]*kafka.Writer{},
	}, nil
}

// Close flushes and closes every writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers := k.writers
	k.writers = nil
	k.mu.Unlock()

	var err error
	for _, w := range writers {
		err = errors.Join(err, w.Close())
	}
	return err
}

// Publish writes msg to the topic and waits for the broker ack.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrKafkaTopicRequired
	}
	if msg.Delay > 0 {
		return PublishResult{}, ErrUnsupported
	}

	w, err := k.writer(destination)
	if err != nil {
		return PublishResult{}, err
	}

	kmsg := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for _, h := range msg.Headers {
		if h.Key != "" {
			kmsg.Headers = append(kmsg.Headers, kafka.Header{Key: h.Key, Value: h.Value})
		}
	}

	if err := w.WriteMessages(ctx, kmsg); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: kmsg.Time}, nil
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}

	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           k.batchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Transport:              k.transport,
	}
	k.writers[topic] = w
	return w, nil
}
