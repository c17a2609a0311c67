// Package audit records who changed what in the admin console. Events are
// append-only; the list endpoint backs the "actividad" panel.
package audit

import (
	"context"
	"time"

	id "triex/pkg/domain"
)

// Event captures a single staff or passenger action. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	OccurredAt time.Time
	UserID     id.UserID
	Action     string
	Entity     string
	EntityID   string
	Detail     string
}

// Store is the append-only persistence behind the publisher.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entity, entityID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher captures structured audit events. Persistence goes through the
// Store so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.OccurredAt.IsZero() {
		base.OccurredAt = time.Now()
	}
	return p.store.Append(ctx, base)
}

// History returns the change trail for one entity.
func (p *Publisher) History(ctx context.Context, entity, entityID string) ([]Event, error) {
	return p.store.ListByEntity(ctx, entity, entityID)
}

// Recent returns the newest events across all entities.
func (p *Publisher) Recent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}
