// Package handler wires trip endpoints to the trip service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"triex/internal/trip/models"
	"triex/internal/trip/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/httputil"
	"triex/pkg/requestcontext"
)

// Service is the trip surface the handler depends on.
type Service interface {
	CreateTrip(ctx context.Context, input service.TripInput) (*models.Trip, error)
	GetTrip(ctx context.Context, tripID id.TripID) (*models.Trip, error)
	ListTrips(ctx context.Context, filter models.Filter) ([]*models.Trip, error)
	UpdateTrip(ctx context.Context, tripID id.TripID, input service.TripInput) (*models.Trip, error)
	ArchiveTrip(ctx context.Context, tripID id.TripID) error
	RestoreTrip(ctx context.Context, tripID id.TripID) error
	DeleteTrip(ctx context.Context, tripID id.TripID) error
	ReplacePassengers(ctx context.Context, tripID id.TripID, desired []id.PassengerID) error
	ListPassengers(ctx context.Context, tripID id.TripID) ([]id.PassengerID, error)
	MyTrips(ctx context.Context) ([]*models.Trip, error)
	PrimaryTrip(ctx context.Context) (*models.Trip, error)
}

// Handler serves the admin-console and passenger-portal trip endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the staff endpoints. The router group must already
// enforce authentication.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/trips", h.HandleCreate)
	r.Get("/trips", h.HandleList)
	r.Get("/trips/{tripID}", h.HandleGet)
	r.Put("/trips/{tripID}", h.HandleUpdate)
	r.Delete("/trips/{tripID}", h.HandleDelete)
	r.Post("/trips/{tripID}/archive", h.HandleArchive)
	r.Post("/trips/{tripID}/restore", h.HandleRestore)
	r.Put("/trips/{tripID}/passengers", h.HandleReplacePassengers)
	r.Get("/trips/{tripID}/passengers", h.HandleListPassengers)
}

// RegisterPortal mounts the passenger endpoints.
func (h *Handler) RegisterPortal(r chi.Router) {
	r.Get("/trips", h.HandleMyTrips)
	r.Get("/trips/primary", h.HandlePrimaryTrip)
	r.Get("/trips/{tripID}", h.HandleGet)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TripRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	trip, err := h.service.CreateTrip(ctx, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "trip created",
		"request_id", requestcontext.RequestID(ctx),
		"trip_id", trip.ID,
		"name", trip.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromTrip(trip, requestcontext.Now(ctx)))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	trip, err := h.service.GetTrip(ctx, tripID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTrip(trip, requestcontext.Now(ctx)))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	trips, err := h.service.ListTrips(ctx, filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTrips(trips, requestcontext.Now(ctx)))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[TripRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	trip, err := h.service.UpdateTrip(ctx, tripID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTrip(trip, requestcontext.Now(ctx)))
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.ArchiveTrip, "trip archived")
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.RestoreTrip, "trip restored")
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.DeleteTrip, "trip deleted")
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.TripID) error, msg string) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(ctx, tripID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"trip_id", tripID,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleReplacePassengers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReplacePassengersRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.service.ReplacePassengers(ctx, tripID, req.Parsed()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListPassengers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ids, err := h.service.ListPassengers(ctx, tripID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	resp := PassengerListResponse{PassengerIDs: make([]string, 0, len(ids))}
	for _, passengerID := range ids {
		resp.PassengerIDs = append(resp.PassengerIDs, passengerID.String())
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleMyTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trips, err := h.service.MyTrips(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTrips(trips, requestcontext.Now(ctx)))
}

func (h *Handler) HandlePrimaryTrip(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trip, err := h.service.PrimaryTrip(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromTrip(trip, requestcontext.Now(ctx)))
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

	if raw := r.URL.Query().Get("commercial"); raw != "" {
		commercial, err := models.ParseCommercialStatus(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Commercial = commercial
	}
	return filter, nil
}
