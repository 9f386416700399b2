package history

import (
	"context"
	"time"
)

// EventType is the outcome of one guard invocation.
type EventType string

const (
	// EventRunning means a matching process was found and nothing was launched.
	EventRunning EventType = "running"
	// EventStarted means a new process was launched.
	EventStarted EventType = "started"
)

// Event records one guard decision. Sinks only append; the guard never
// reads them back to decide anything.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Signature  string    `json:"signature"`
	Command    string    `json:"command,omitempty"`
	LogPath    string    `json:"log_path,omitempty"`
	PID        int       `json:"pid,omitempty"`
}

// Sink is a destination for history events.
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Send(context.Context, Event) error { return nil }
