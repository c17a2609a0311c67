package audit

import (
	"context"
	"time"
)

// Worker consumes audit events from a channel and persists them, keeping
// event capture off the request path.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// ChannelPublisher queues events for a Worker instead of writing inline.
// Emit drops nothing: it blocks when the inbox is full, which keeps the
// trail complete at the cost of backpressure on writers.
type ChannelPublisher struct {
	inbox chan<- Event
}

func NewChannelPublisher(inbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox}
}

func (p *ChannelPublisher) Emit(ctx context.Context, base Event) error {
	if base.OccurredAt.IsZero() {
		base.OccurredAt = time.Now()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.inbox <- base:
		return nil
	}
}
