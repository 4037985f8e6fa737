package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnsupported is returned when the selected broker cannot honor a publish option.
var ErrUnsupported = errors.New("messaging: unsupported operation")

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("messaging: publisher closed")

// Publisher sends messages to a destination (topic or subject).
type Publisher interface {
	io.Closer

	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a broker-agnostic message.
type OutgoingMessage struct {
	Body []byte

	// Key drives Kafka partitioning and Pub/Sub ordering. Other brokers ignore it.
	Key []byte

	// Headers are dropped by NSQ, which has no header support.
	Headers []Header

	// Delay defers delivery. Only NSQ supports it.
	Delay time.Duration
}

// Header is a message header.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reported back.
type PublishResult struct {
	// MessageID is set by brokers that assign one (Pub/Sub).
	MessageID string
	Topic     string
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// Noop discards every message. It backs the "disabled" configuration.
type Noop struct{}

func (Noop) Publish(_ context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (Noop) Close() error { return nil }
