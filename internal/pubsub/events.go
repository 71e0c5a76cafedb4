// Package pubsub provides a generic publish/subscribe event system.
// dragsync uses it for collection change notifications and for the live log tail.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// CreatedEvent announces something new, such as a copied item or a log entry.
	CreatedEvent EventType = "created"
	// UpdatedEvent announces a change in place, such as a moved item.
	UpdatedEvent EventType = "updated"
	// DeletedEvent announces a removal.
	DeletedEvent EventType = "deleted"
	// WarnedEvent announces a non-fatal problem, such as a skipped reconciliation.
	WarnedEvent EventType = "warned"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
