// Package queue defines the message queue abstraction that carries event
// envelopes from the ingest API to the processor. Implementations exist
// for Kafka and for in-process channels (memory mode and tests).
package queue

import (
	"context"
)

// Message is one queued payload.
type Message struct {
	// Key is the partition key. Envelopes are keyed by service name so
	// events for one service are processed in order.
	Key []byte

	// Value is the message payload.
	Value []byte

	// Headers carries optional metadata.
	Headers map[string]string
}

// Producer publishes messages to a queue. Implementations must be safe
// for concurrent use.
type Producer interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

// MessageHandler processes one consumed message. Returning an error means
// the message was not handled; implementations decide whether it is
// redelivered.
type MessageHandler func(ctx context.Context, msg *Message) error

// Consumer consumes messages from a queue.
type Consumer interface {
	// Start consumes messages and calls the handler for each. It blocks
	// until the context is canceled or an unrecoverable error occurs.
	Start(ctx context.Context, handler MessageHandler) error
	Close() error
}
