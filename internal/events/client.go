package events

import "context"

// Client publishes creation events to a queue backend.
type Client interface {
	Publish(ctx context.Context, msg Message) error
}

// Noop discards events; used when no queue is configured.
type Noop struct{}

// Publish drops the message.
func (Noop) Publish(ctx context.Context, msg Message) error {
	_ = ctx
	_ = msg
	return nil
}

var _ Client = Noop{}
