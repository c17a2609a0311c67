package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "triex/pkg/domain"
)

func TestPublisherStampsTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)

	err := publisher.Emit(context.Background(), Event{
		UserID:   id.NewUserID(),
		Action:   "trip.created",
		Entity:   "trip",
		EntityID: "abc",
	})
	require.NoError(t, err)

	events, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].OccurredAt.IsZero())
}

func TestPublisherKeepsExplicitTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := publisher.Emit(context.Background(), Event{OccurredAt: at, Action: "trip.archived", Entity: "trip", EntityID: "abc"})
	require.NoError(t, err)

	events, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].OccurredAt.Equal(at))
}

func TestHistoryFiltersByEntity(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store)
	ctx := context.Background()

	require.NoError(t, publisher.Emit(ctx, Event{Action: "trip.created", Entity: "trip", EntityID: "t1"}))
	require.NoError(t, publisher.Emit(ctx, Event{Action: "trip.updated", Entity: "trip", EntityID: "t1"}))
	require.NoError(t, publisher.Emit(ctx, Event{Action: "trip.created", Entity: "trip", EntityID: "t2"}))

	events, err := publisher.History(ctx, "trip", "t1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, "trip.updated", events[0].Action)
}

func TestWorkerDrainsInbox(t *testing.T) {
	store := NewInMemoryStore()
	inbox := make(chan Event, 4)
	worker := NewWorker(store, inbox)
	publisher := NewChannelPublisher(inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	require.NoError(t, publisher.Emit(ctx, Event{Action: "document.reviewed", Entity: "document", EntityID: "d1"}))
	require.NoError(t, publisher.Emit(ctx, Event{Action: "document.reviewed", Entity: "document", EntityID: "d2"}))

	require.Eventually(t, func() bool {
		events, err := store.ListRecent(context.Background(), 10)
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestListRecentHonorsLimit(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, Event{Action: "trip.updated", Entity: "trip", EntityID: "t"}))
	}

	events, err := store.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
