package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triex/internal/account/service"
	accountstore "triex/internal/account/store/account"
	"triex/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := service.New(accountstore.NewInMemory())
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Route("/admin", h.RegisterAdmin)
	return r
}

func createAccount(t *testing.T, r chi.Router, email, role string) AccountResponse {
	t.Helper()
	req := testutil.WithAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/admin/accounts",
		map[string]any{"email": email, "full_name": "Carla Suárez", "role": role}))
	rr := testutil.DoRequest(r, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[AccountResponse](t, rr)
}

func TestAccountEndpoints(t *testing.T) {
	r := newRouter(t)

	created := createAccount(t, r, "carla@turismo.ar", "operator")
	assert.Equal(t, "carla@turismo.ar", created.Email)
	assert.Equal(t, "operator", created.Role)

	t.Run("missing role rejected", func(t *testing.T) {
		req := testutil.WithAdmin(testutil.NewJSONRequest(t, http.MethodPost, "/admin/accounts",
			map[string]any{"email": "x@turismo.ar", "full_name": "X"}))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("operator granting admin forbidden", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewJSONRequest(t, http.MethodPost, "/admin/accounts",
			map[string]any{"email": "jefe@turismo.ar", "full_name": "Jefe", "role": "admin"}))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("get and list", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/accounts/"+created.ID))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)

		req = testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/accounts?role=operator"))
		rr = testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		list := testutil.UnmarshalResponse[[]AccountResponse](t, rr)
		assert.Len(t, *list, 1)
	})

	t.Run("invalid role filter rejected", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/accounts?role=superuser"))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
	})

	t.Run("update role as admin", func(t *testing.T) {
		req := testutil.WithAdmin(testutil.NewJSONRequest(t, http.MethodPut, "/admin/accounts/"+created.ID,
			map[string]any{"full_name": "Carla Suárez", "role": "admin"}))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		updated := testutil.UnmarshalResponse[AccountResponse](t, rr)
		assert.Equal(t, "admin", updated.Role)
	})
}

func TestAccountLifecycleEndpoints(t *testing.T) {
	r := newRouter(t)
	created := createAccount(t, r, "carla@turismo.ar", "operator")

	disable := testutil.WithAdmin(testutil.NewRequest(t, http.MethodPost,
		"/admin/accounts/"+created.ID+"/disable"))
	testutil.AssertStatus(t, testutil.DoRequest(r, disable), http.StatusNoContent)

	t.Run("disabled scope lists it", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/accounts?scope=disabled"))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		list := testutil.UnmarshalResponse[[]AccountResponse](t, rr)
		require.Len(t, *list, 1)
		assert.NotNil(t, (*list)[0].ArchivedAt)
	})

	enable := testutil.WithAdmin(testutil.NewRequest(t, http.MethodPost,
		"/admin/accounts/"+created.ID+"/enable"))
	testutil.AssertStatus(t, testutil.DoRequest(r, enable), http.StatusNoContent)

	t.Run("operator cannot delete", func(t *testing.T) {
		req := testutil.WithStaff(testutil.NewRequest(t, http.MethodDelete, "/admin/accounts/"+created.ID))
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, "forbidden")
	})

	t.Run("admin deletes", func(t *testing.T) {
		req := testutil.WithAdmin(testutil.NewRequest(t, http.MethodDelete, "/admin/accounts/"+created.ID))
		testutil.AssertStatus(t, testutil.DoRequest(r, req), http.StatusNoContent)

		get := testutil.WithStaff(testutil.NewRequest(t, http.MethodGet, "/admin/accounts/"+created.ID))
		rr := testutil.DoRequest(r, get)
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}
