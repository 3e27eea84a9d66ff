// Package messaging provides abstractions for message broker communication.
// Services publish and subscribe through these interfaces without coupling to
// a specific broker implementation.
package messaging

import (
	"context"
	"time"
)

// Message represents a message received from or sent to a message broker.
type Message struct {
	// Subject is the topic/channel the message was published to.
	Subject string

	// Data is the raw message payload.
	Data []byte

	// Metadata contains optional key-value pairs for message headers.
	Metadata map[string]string

	// Timestamp is when the message was published.
	Timestamp time.Time
}

// MessageHandler processes a received message.
// Return an error to indicate processing failure.
type MessageHandler func(ctx context.Context, msg *Message) error

// Subscription represents an active subscription to a subject.
type Subscription interface {
	// Unsubscribe stops receiving messages on this subscription.
	Unsubscribe() error

	// Subject returns the subject this subscription is listening to.
	Subject() string
}

// Publisher publishes messages to subjects.
type Publisher interface {
	// Publish sends a fire-and-forget message to the specified subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishJSON marshals v and publishes it to the subject.
	PublishJSON(ctx context.Context, subject string, v any) error

	// Close releases any resources held by the publisher.
	Close() error
}

// Subscriber subscribes to messages on subjects.
type Subscriber interface {
	// Subscribe creates a fan-out subscription to the specified subject.
	Subscribe(subject string, handler MessageHandler) (Subscription, error)

	// QueueSubscribe creates a queue subscription; messages are load-balanced
	// across subscribers in the same queue group.
	QueueSubscribe(subject, queue string, handler MessageHandler) (Subscription, error)
}

// Client combines publishing and subscribing.
type Client interface {
	Publisher
	Subscriber
}
