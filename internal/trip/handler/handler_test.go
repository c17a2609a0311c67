package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triex/internal/trip/service"
	tripstore "triex/internal/trip/store/trip"
	id "triex/pkg/domain"
	"triex/pkg/testutil"
)

func newRouter(t *testing.T) (chi.Router, *service.Service) {
	t.Helper()
	svc := service.New(tripstore.NewInMemory())
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/admin", h.RegisterAdmin)
	r.Route("/portal", h.RegisterPortal)
	return r, svc
}

func createTrip(t *testing.T, router chi.Router, body map[string]any) TripResponse {
	t.Helper()
	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/trips", body))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[TripResponse](t, rr)
}

func TestCreateTrip(t *testing.T) {
	t.Run("returns 201 with derived status", func(t *testing.T) {
		router, _ := newRouter(t)
		req := testutil.WithTime(
			testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/trips", map[string]any{
				"name":        "Egresados Bariloche 2026",
				"destination": "Bariloche",
				"start_date":  "2026-01-10",
				"end_date":    "2026-01-15",
			})),
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := *testutil.UnmarshalResponse[TripResponse](t, rr)
		assert.Equal(t, "PREVIO", resp.StatusOperational)
		assert.Equal(t, "CON_CUPO", resp.StatusCommercial)
		assert.NotEmpty(t, resp.ID)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		router, _ := newRouter(t)
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/trips", map[string]any{
			"name": "",
		}))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		router, _ := newRouter(t)
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/trips", map[string]any{
			"name":       "X",
			"start_date": "10/01/2026",
			"end_date":   "2026-01-15",
		}))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("rejects half-open date range", func(t *testing.T) {
		router, _ := newRouter(t)
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/trips", map[string]any{
			"name":       "X",
			"start_date": "2026-01-10",
		}))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("passenger is forbidden", func(t *testing.T) {
		router, _ := newRouter(t)
		req := testutil.WithPassenger(
			testutil.NewJSONRequest(t, http.MethodPost, "/admin/trips", map[string]any{"name": "X"}),
			id.NewPassengerID())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})
}

func TestGetTrip(t *testing.T) {
	router, _ := newRouter(t)
	created := createTrip(t, router, map[string]any{
		"name":       "En curso",
		"start_date": "2026-01-10",
		"end_date":   "2026-01-15",
	})

	t.Run("derives EN_CURSO for a request inside the range", func(t *testing.T) {
		req := testutil.WithTime(
			testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips/"+created.ID)),
			time.Date(2026, 1, 12, 9, 30, 0, 0, time.UTC))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[TripResponse](t, rr)
		assert.Equal(t, "EN_CURSO", resp.StatusOperational)
	})

	t.Run("derives FINALIZADO after the end day", func(t *testing.T) {
		req := testutil.WithTime(
			testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips/"+created.ID)),
			time.Date(2026, 1, 16, 0, 0, 1, 0, time.UTC))
		rr := testutil.DoRequest(router, req)
		resp := testutil.UnmarshalResponse[TripResponse](t, rr)
		assert.Equal(t, "FINALIZADO", resp.StatusOperational)
	})

	t.Run("invalid ID yields 400", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips/not-a-uuid"))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("unknown ID yields 404", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips/"+id.NewTripID().String()))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func TestListTrips(t *testing.T) {
	router, _ := newRouter(t)
	createTrip(t, router, map[string]any{"name": "Uno"})
	createTrip(t, router, map[string]any{"name": "Dos"})

	t.Run("lists active trips", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips"))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[[]TripResponse](t, rr)
		assert.Len(t, *resp, 2)
	})

	t.Run("rejects bad scope", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips?scope=trash"))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("filters by search", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips?search=uno"))
		rr := testutil.DoRequest(router, req)
		resp := testutil.UnmarshalResponse[[]TripResponse](t, rr)
		require.Len(t, *resp, 1)
		assert.Equal(t, "Uno", (*resp)[0].Name)
	})
}

func TestArchiveFlow(t *testing.T) {
	router, _ := newRouter(t)
	created := createTrip(t, router, map[string]any{"name": "Archivable"})

	req := testutil.WithStaff(testutil.NewRequest(t, http.MethodPost, "/admin/trips/"+created.ID+"/archive"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	// Second archive conflicts.
	req = testutil.WithStaff(testutil.NewRequest(t, http.MethodPost, "/admin/trips/"+created.ID+"/archive"))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")

	req = testutil.WithStaff(testutil.NewRequest(t, http.MethodPost, "/admin/trips/"+created.ID+"/restore"))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}

func TestDeleteRequiresAdmin(t *testing.T) {
	router, _ := newRouter(t)
	created := createTrip(t, router, map[string]any{"name": "Borrable"})

	req := testutil.WithStaff(testutil.NewRequest(t, http.MethodDelete, "/admin/trips/"+created.ID))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")

	req = testutil.WithAdmin(testutil.NewRequest(t, http.MethodDelete, "/admin/trips/"+created.ID))
	rr = testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
}

func TestPassengerEndpoints(t *testing.T) {
	router, _ := newRouter(t)
	created := createTrip(t, router, map[string]any{
		"name":       "Portal",
		"start_date": "2026-01-10",
		"end_date":   "2026-01-15",
	})
	passengerID := id.NewPassengerID()

	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPut, "/admin/trips/"+created.ID+"/passengers",
		map[string]any{"passenger_ids": []string{passengerID.String()}}))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	t.Run("assignment listing", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips/"+created.ID+"/passengers"))
		rr := testutil.DoRequest(router, req)
		resp := testutil.UnmarshalResponse[PassengerListResponse](t, rr)
		assert.Equal(t, []string{passengerID.String()}, resp.PassengerIDs)
	})

	t.Run("my trips", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/trips"), passengerID)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[[]TripResponse](t, rr)
		require.Len(t, *resp, 1)
		assert.Equal(t, created.ID, (*resp)[0].ID)
	})

	t.Run("primary trip", func(t *testing.T) {
		req := testutil.WithTime(
			testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/trips/primary"), passengerID),
			time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[TripResponse](t, rr)
		assert.Equal(t, created.ID, resp.ID)
		assert.Equal(t, "EN_CURSO", resp.StatusOperational)
	})

	t.Run("unassigned passenger cannot read the trip", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/trips/"+created.ID), id.NewPassengerID())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("invalid passenger id in replace body", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPut, "/admin/trips/"+created.ID+"/passengers",
			map[string]any{"passenger_ids": []string{"nope"}}))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}
