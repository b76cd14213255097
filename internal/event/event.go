// internal/event/event.go
package event

import "context"

// DefaultFaultCode is the notification code that denotes a fault.
const DefaultFaultCode int32 = 15

// Event is one asynchronous notification.
// Value is already a native integer; it is never parsed.
type Event struct {
	Code  int32
	Value int32
}

// Sink accepts events from a delivery mechanism (pulse frame, field bus, message bus).
// Delivery is fire-and-forget: a nil error means the event was queued, not logged.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, ev Event) error

func (f SinkFunc) Deliver(ctx context.Context, ev Event) error { return f(ctx, ev) }
