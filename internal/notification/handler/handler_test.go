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

	"triex/internal/notification/service"
	notificationstore "triex/internal/notification/store/notification"
	id "triex/pkg/domain"
	"triex/pkg/requestcontext"
	"triex/pkg/testutil"
)

type env struct {
	router      chi.Router
	svc         *service.Service
	passengerID id.PassengerID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	svc := service.New(notificationstore.NewInMemory())
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/portal", h.RegisterPortal)
	return &env{router: r, svc: svc, passengerID: id.NewPassengerID()}
}

func (e *env) seedReview(docTypeName string, approved bool) {
	e.svc.NotifyDocumentReviewed(context.Background(), e.passengerID, id.NewTripID(), docTypeName, approved)
}

func TestInboxEndpoints(t *testing.T) {
	e := newEnv(t)
	e.seedReview("DNI", true)
	e.seedReview("Pasaporte", false)

	req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/notifications"), e.passengerID)
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	inbox := *testutil.UnmarshalResponse[[]NotificationResponse](t, rr)
	require.Len(t, inbox, 2)

	t.Run("limit applies", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/notifications?limit=1"), e.passengerID)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Len(t, *testutil.UnmarshalResponse[[]NotificationResponse](t, rr), 1)
	})

	t.Run("bad limit rejected", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/notifications?limit=muchos"), e.passengerID)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("mark one read then all", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodPost, "/portal/notifications/"+inbox[0].ID+"/read"), e.passengerID)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		req = testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/notifications/unread-count"), e.passengerID)
		rr = testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, 1, testutil.UnmarshalResponse[UnreadCountResponse](t, rr).Unread)

		req = testutil.WithPassenger(testutil.NewRequest(t, http.MethodPost, "/portal/notifications/read-all"), e.passengerID)
		rr = testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		req = testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/notifications/unread-count"), e.passengerID)
		rr = testutil.DoRequest(e.router, req)
		assert.Equal(t, 0, testutil.UnmarshalResponse[UnreadCountResponse](t, rr).Unread)
	})

	t.Run("other passenger cannot read it", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodPost, "/portal/notifications/"+inbox[0].ID+"/read"), id.NewPassengerID())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("staff account has no inbox", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/portal/notifications"))
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})
}

func TestPushSubscriptionEndpoints(t *testing.T) {
	e := newEnv(t)
	// Subscriptions are keyed per user, so every request must carry the
	// same session.
	sess := requestcontext.Session{
		UserID:      id.NewUserID(),
		PassengerID: e.passengerID,
		Role:        id.RolePassenger,
	}
	body := map[string]any{
		"endpoint": "https://push.example/reg/abc",
		"keys":     map[string]string{"p256dh": "key", "auth": "secret"},
	}

	req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/portal/push-subscriptions", body), sess)
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	created := *testutil.UnmarshalResponse[SubscriptionResponse](t, rr)

	t.Run("re-register keeps the same subscription", func(t *testing.T) {
		req := testutil.WithSession(testutil.NewJSONRequest(t, http.MethodPost, "/portal/push-subscriptions", body), sess)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		assert.Equal(t, created.ID, testutil.UnmarshalResponse[SubscriptionResponse](t, rr).ID)
	})

	t.Run("missing keys rejected", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewJSONRequest(t, http.MethodPost, "/portal/push-subscriptions",
			map[string]any{"endpoint": "https://push.example/reg/x"}), e.passengerID)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("list and delete", func(t *testing.T) {
		req := testutil.WithSession(testutil.NewRequest(t, http.MethodGet, "/portal/push-subscriptions"), sess)
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		require.Len(t, *testutil.UnmarshalResponse[[]SubscriptionResponse](t, rr), 1)

		req = testutil.WithSession(testutil.NewRequest(t, http.MethodDelete, "/portal/push-subscriptions/"+created.ID), sess)
		rr = testutil.DoRequest(e.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		req = testutil.WithSession(testutil.NewRequest(t, http.MethodDelete, "/portal/push-subscriptions/"+created.ID), sess)
		rr = testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
