package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triex/internal/passenger/service"
	passengerstore "triex/internal/passenger/store/passenger"
	id "triex/pkg/domain"
	"triex/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := service.New(passengerstore.NewInMemory())
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/admin", h.RegisterAdmin)
	r.Route("/portal", h.RegisterPortal)
	return r
}

func createPassenger(t *testing.T, router chi.Router, body map[string]any) PassengerResponse {
	t.Helper()
	req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/passengers", body))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[PassengerResponse](t, rr)
}

func TestCreatePassengerEndpoint(t *testing.T) {
	router := newRouter(t)

	created := createPassenger(t, router, map[string]any{
		"first_name": "Ana",
		"last_name":  "García",
		"email":      "ana@example.com",
		"birth_date": "2008-07-15",
	})
	assert.Equal(t, "Ana", created.FirstName)
	assert.Equal(t, "2008-07-15", created.BirthDate)

	t.Run("missing name rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/passengers",
			map[string]any{"first_name": "", "last_name": "García", "email": "x@example.com"}))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("bad birth date rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/passengers",
			map[string]any{"first_name": "Ana", "last_name": "García", "email": "x@example.com", "birth_date": "15/07/2008"}))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("passenger forbidden", func(t *testing.T) {
		req := testutil.WithPassenger(testutil.NewJSONRequest(t, http.MethodPost, "/admin/passengers",
			map[string]any{"first_name": "Ana", "last_name": "García", "email": "x@example.com"}),
			id.NewPassengerID())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})
}

func TestListAndSearchEndpoint(t *testing.T) {
	router := newRouter(t)
	createPassenger(t, router, map[string]any{"first_name": "Ana", "last_name": "García", "email": "ana@example.com"})
	createPassenger(t, router, map[string]any{"first_name": "Bruno", "last_name": "Pérez", "email": "bruno@example.com"})

	req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/passengers?search=bruno"))
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
	list := testutil.UnmarshalResponse[[]PassengerResponse](t, rr)
	require.Len(t, *list, 1)
	assert.Equal(t, "Bruno", (*list)[0].FirstName)

	t.Run("bad scope rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/passengers?scope=trash"))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})
}

func TestArchiveCycleEndpoint(t *testing.T) {
	router := newRouter(t)
	created := createPassenger(t, router, map[string]any{
		"first_name": "Ana", "last_name": "García", "email": "ana@example.com",
	})

	archive := testutil.WithStaff(testutil.NewRequest(t, http.MethodPost,
		"/admin/passengers/"+created.ID+"/archive"))
	testutil.AssertStatus(t, testutil.DoRequest(router, archive), http.StatusNoContent)

	again := testutil.WithStaff(testutil.NewRequest(t, http.MethodPost,
		"/admin/passengers/"+created.ID+"/archive"))
	testutil.AssertStatusAndError(t, testutil.DoRequest(router, again), http.StatusConflict, "conflict")

	restore := testutil.WithStaff(testutil.NewRequest(t, http.MethodPost,
		"/admin/passengers/"+created.ID+"/restore"))
	testutil.AssertStatus(t, testutil.DoRequest(router, restore), http.StatusNoContent)
}

func TestProfileAndMeEndpoints(t *testing.T) {
	router := newRouter(t)
	created := createPassenger(t, router, map[string]any{
		"first_name": "Ana", "last_name": "García", "email": "ana@example.com",
	})

	profileID := id.NewUserID()
	link := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPut,
		"/admin/passengers/"+created.ID+"/profile",
		map[string]any{"profile_id": profileID.String()}))
	rr := testutil.DoRequest(router, link)
	testutil.AssertStatus(t, rr, http.StatusOK)
	linked := testutil.UnmarshalResponse[PassengerResponse](t, rr)
	assert.Equal(t, profileID.String(), linked.ProfileID)

	t.Run("me returns the linked record", func(t *testing.T) {
		passengerID, err := id.ParsePassengerID(created.ID)
		require.NoError(t, err)
		req := testutil.WithPassenger(testutil.NewRequest(t, http.MethodGet, "/portal/me"), passengerID)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		me := testutil.UnmarshalResponse[PassengerResponse](t, rr)
		assert.Equal(t, created.ID, me.ID)
	})

	t.Run("unlinked session forbidden", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/portal/me"))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})
}
