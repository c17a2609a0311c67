// Package httptransport assembles the HTTP surface: the shared middleware
// chain, the authenticated /api/admin and /api/portal groups, and the
// operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"triex/internal/platform/metrics"
	"triex/pkg/platform/middleware"
)

// ModuleHandlers are the per-module route registrars. Notifications is
// portal-only, Accounts and Audit are console-only; every other module
// serves both surfaces.
type ModuleHandlers struct {
	Trips         Registrar
	Itinerary     Registrar
	Passengers    Registrar
	Documents     Registrar
	Vouchers      Registrar
	Notifications PortalRegistrar
	Accounts      AdminRegistrar
	Audit         AdminRegistrar
}

// Registrar mounts a module's routes on both the admin and portal groups.
type Registrar interface {
	AdminRegistrar
	PortalRegistrar
}

// AdminRegistrar mounts a module's staff-facing routes.
type AdminRegistrar interface {
	RegisterAdmin(r chi.Router)
}

// PortalRegistrar mounts a module's passenger-facing routes.
type PortalRegistrar interface {
	RegisterPortal(r chi.Router)
}

// Deps carries everything the router needs besides the module handlers.
type Deps struct {
	Validator      middleware.JWTValidator
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	Health         func(r chi.Router)
}

// NewRouter builds the full route tree. Staff routes live under /api/admin,
// passenger routes under /api/portal; both require a valid token, and the
// admin group additionally requires a staff role.
func NewRouter(handlers ModuleHandlers, deps Deps) http.Handler {
	timeout := deps.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(timeout))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Latency)
	}

	r.Get("/healthz", handleHealthz)
	if deps.Health != nil {
		deps.Health(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		api.Use(middleware.ContentTypeJSON)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.RequireStaff(deps.Logger))
			registerAdmin(admin, handlers)
		})
		api.Route("/portal", func(portal chi.Router) {
			registerPortal(portal, handlers)
		})
	})
	return r
}

func registerAdmin(r chi.Router, handlers ModuleHandlers) {
	for _, h := range []AdminRegistrar{
		handlers.Trips, handlers.Itinerary, handlers.Passengers,
		handlers.Documents, handlers.Vouchers,
		handlers.Accounts, handlers.Audit,
	} {
		if h != nil {
			h.RegisterAdmin(r)
		}
	}
}

func registerPortal(r chi.Router, handlers ModuleHandlers) {
	for _, h := range []PortalRegistrar{
		handlers.Trips, handlers.Itinerary, handlers.Passengers,
		handlers.Documents, handlers.Vouchers, handlers.Notifications,
	} {
		if h != nil {
			h.RegisterPortal(r)
		}
	}
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
