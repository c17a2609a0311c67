package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triex/internal/audit"
	"triex/pkg/testutil"
)

func newRouter(t *testing.T) (chi.Router, *audit.Publisher) {
	t.Helper()
	publisher := audit.NewPublisher(audit.NewInMemoryStore())
	h := New(publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/admin", h.RegisterAdmin)
	return r, publisher
}

func emit(t *testing.T, publisher *audit.Publisher, action, entity, entityID string) {
	t.Helper()
	require.NoError(t, publisher.Emit(context.Background(), audit.Event{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	}))
}

func TestAuditListEndpoint(t *testing.T) {
	r, publisher := newRouter(t)
	emit(t, publisher, "trip.created", "trip", "t1")
	emit(t, publisher, "trip.updated", "trip", "t1")
	emit(t, publisher, "passenger.created", "passenger", "p1")

	t.Run("recent events newest first", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/audit"))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		events := testutil.UnmarshalResponse[[]EventResponse](t, rr)
		require.Len(t, *events, 3)
		assert.Equal(t, "passenger.created", (*events)[0].Action)
	})

	t.Run("limit caps the listing", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/audit?limit=1"))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		events := testutil.UnmarshalResponse[[]EventResponse](t, rr)
		assert.Len(t, *events, 1)
	})

	t.Run("entity trail", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/audit?entity=trip&entity_id=t1"))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		events := testutil.UnmarshalResponse[[]EventResponse](t, rr)
		require.Len(t, *events, 2)
		assert.Equal(t, "trip.updated", (*events)[0].Action)
	})

	t.Run("entity without entity_id rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/audit?entity=trip"))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("out-of-range limit rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/audit?limit=0"))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}
