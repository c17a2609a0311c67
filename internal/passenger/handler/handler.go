// Package handler wires passenger endpoints to the passenger service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"triex/internal/passenger/models"
	"triex/internal/passenger/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/httputil"
	"triex/pkg/requestcontext"
)

// Service is the passenger surface the handler depends on.
type Service interface {
	CreatePassenger(ctx context.Context, input service.Input) (*models.Passenger, error)
	GetPassenger(ctx context.Context, passengerID id.PassengerID) (*models.Passenger, error)
	Me(ctx context.Context) (*models.Passenger, error)
	ListPassengers(ctx context.Context, filter models.Filter) ([]*models.Passenger, error)
	UpdatePassenger(ctx context.Context, passengerID id.PassengerID, input service.Input) (*models.Passenger, error)
	ArchivePassenger(ctx context.Context, passengerID id.PassengerID) error
	RestorePassenger(ctx context.Context, passengerID id.PassengerID) error
	LinkProfile(ctx context.Context, passengerID id.PassengerID, profileID id.UserID) (*models.Passenger, error)
}

// Handler serves the admin-console and passenger-portal passenger endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the staff endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/passengers", h.HandleCreate)
	r.Get("/passengers", h.HandleList)
	r.Get("/passengers/{passengerID}", h.HandleGet)
	r.Put("/passengers/{passengerID}", h.HandleUpdate)
	r.Post("/passengers/{passengerID}/archive", h.HandleArchive)
	r.Post("/passengers/{passengerID}/restore", h.HandleRestore)
	r.Put("/passengers/{passengerID}/profile", h.HandleLinkProfile)
}

// RegisterPortal mounts the passenger endpoints.
func (h *Handler) RegisterPortal(r chi.Router) {
	r.Get("/me", h.HandleMe)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[PassengerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	p, err := h.service.CreatePassenger(ctx, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "passenger created",
		"request_id", requestcontext.RequestID(ctx),
		"passenger_id", p.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromPassenger(p))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	passengerID, err := id.ParsePassengerID(chi.URLParam(r, "passengerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.GetPassenger(r.Context(), passengerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPassenger(p))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := h.service.ListPassengers(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPassengers(list))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passengerID, err := id.ParsePassengerID(chi.URLParam(r, "passengerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[PassengerRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	p, err := h.service.UpdatePassenger(ctx, passengerID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPassenger(p))
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.ArchivePassenger, "passenger archived")
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.RestorePassenger, "passenger restored")
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.PassengerID) error, msg string) {
	ctx := r.Context()
	passengerID, err := id.ParsePassengerID(chi.URLParam(r, "passengerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(ctx, passengerID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"passenger_id", passengerID,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleLinkProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	passengerID, err := id.ParsePassengerID(chi.URLParam(r, "passengerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[LinkProfileRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	p, err := h.service.LinkProfile(ctx, passengerID, req.Parsed())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPassenger(p))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Me(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromPassenger(p))
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	filter := models.Filter{Search: r.URL.Query().Get("search")}
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", string(models.ScopeActive):
		filter.Scope = models.ScopeActive
	case string(models.ScopeArchived):
		filter.Scope = models.ScopeArchived
	case string(models.ScopeAll):
		filter.Scope = models.ScopeAll
	default:
		return models.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "invalid scope")
	}
	return filter, nil
}
