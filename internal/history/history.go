// Package history records lifecycle events (create/start/stop/remove) to an
// optional audit sink so operators can ask what happened between invocations
// of a tool that keeps no resident state.
package history

import (
	"context"
	"time"
)

// EventType defines the kind of lifecycle event.
type EventType string

const (
	EventCreated EventType = "created"
	EventStarted EventType = "started"
	EventStopped EventType = "stopped"
	EventRemoved EventType = "removed"
	EventFailed  EventType = "failed"
)

// Event is one audit row.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Name       string    `json:"name"`
	PID        int       `json:"pid"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
}

// Sink is a destination for history events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	List(ctx context.Context, name string, limit int) ([]Event, error)
	Close() error
}

// NopSink discards everything; used when no history DSN is configured.
type NopSink struct{}

func (NopSink) Send(context.Context, Event) error { return nil }
func (NopSink) List(context.Context, string, int) ([]Event, error) {
	return nil, nil
}
func (NopSink) Close() error { return nil }
