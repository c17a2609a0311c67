package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triex/internal/itinerary/service"
	itinerarystore "triex/internal/itinerary/store/itinerary"
	tripservice "triex/internal/trip/service"
	tripstore "triex/internal/trip/store/trip"
	id "triex/pkg/domain"
	"triex/pkg/testutil"
)

type env struct {
	router chi.Router
	tripID string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	trips := tripservice.New(tripstore.NewInMemory())
	svc := service.New(itinerarystore.NewInMemory(), trips)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	h := New(svc, logger)
	r.Route("/admin", h.RegisterAdmin)
	r.Route("/portal", h.RegisterPortal)

	// Seed one trip through the trip service.
	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/x", nil))
	trip, err := trips.CreateTrip(req.Context(), tripservice.TripInput{Name: "Handler trip"})
	require.NoError(t, err)

	return &env{router: r, tripID: trip.ID.String()}
}

func (e *env) addDay(t *testing.T, title string) DayResponse {
	t.Helper()
	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost,
		"/admin/trips/"+e.tripID+"/itinerary/days", map[string]any{"title": title}))
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[DayResponse](t, rr)
}

func (e *env) addItem(t *testing.T, dayID, title string) ItemResponse {
	t.Helper()
	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost,
		"/admin/itinerary/days/"+dayID+"/items", map[string]any{"title": title}))
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[ItemResponse](t, rr)
}

func (e *env) itinerary(t *testing.T) []ItineraryDayResponse {
	t.Helper()
	req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/trips/"+e.tripID+"/itinerary"))
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	return *testutil.UnmarshalResponse[[]ItineraryDayResponse](t, rr)
}

func TestAddDayAndItemFlow(t *testing.T) {
	e := newEnv(t)
	day := e.addDay(t, "Día 1")
	assert.Equal(t, 1, day.DayNumber)

	item := e.addItem(t, day.ID, "Check-in")
	assert.Equal(t, 0, item.SortIndex)

	days := e.itinerary(t)
	require.Len(t, days, 1)
	require.Len(t, days[0].Items, 1)
	assert.Equal(t, "Check-in", days[0].Items[0].Title)
}

func TestMoveDayEndpoint(t *testing.T) {
	e := newEnv(t)
	e.addDay(t, "A")
	e.addDay(t, "B")
	e.addDay(t, "C")

	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost,
		"/admin/trips/"+e.tripID+"/itinerary/days/move",
		map[string]any{"from_index": 0, "to_index": 2}))
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	days := e.itinerary(t)
	require.Len(t, days, 3)
	assert.Equal(t, "B", days[0].Title)
	assert.Equal(t, "C", days[1].Title)
	assert.Equal(t, "A", days[2].Title)

	t.Run("missing indexes are rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost,
			"/admin/trips/"+e.tripID+"/itinerary/days/move", map[string]any{"from_index": 0}))
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("out of range index is rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost,
			"/admin/trips/"+e.tripID+"/itinerary/days/move",
			map[string]any{"from_index": 0, "to_index": 7}))
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestDeleteDayEndpoint(t *testing.T) {
	e := newEnv(t)
	day := e.addDay(t, "Borrable")

	req := testutil.WithStaff(testutil.NewRequest(t, http.MethodDelete, "/admin/itinerary/days/"+day.ID))
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	assert.Empty(t, e.itinerary(t))

	// Second delete conflicts.
	req = testutil.WithStaff(testutil.NewRequest(t, http.MethodDelete, "/admin/itinerary/days/"+day.ID))
	rr = testutil.DoRequest(e.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestItemValidationAtTheEdge(t *testing.T) {
	e := newEnv(t)
	day := e.addDay(t, "Día 1")

	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost,
		"/admin/itinerary/days/"+day.ID+"/items",
		map[string]any{
			"title":             "Rafting",
			"instructions_url":  "https://example.com/x.pdf",
			"instructions_text": "también texto",
		}))
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestPortalItineraryAuthorization(t *testing.T) {
	e := newEnv(t)
	e.addDay(t, "Día 1")

	t.Run("unassigned passenger cannot read", func(t *testing.T) {
		req := testutil.WithPassenger(
			testutil.NewRequest(t, http.MethodGet, "/portal/trips/"+e.tripID+"/itinerary"),
			id.NewPassengerID())
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("unknown trip yields 404", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet,
			"/admin/trips/"+id.NewTripID().String()+"/itinerary"))
		rr := testutil.DoRequest(e.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
