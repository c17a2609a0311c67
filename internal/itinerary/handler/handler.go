// Package handler wires itinerary endpoints to the ordering service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"triex/internal/itinerary/models"
	"triex/internal/itinerary/service"
	id "triex/pkg/domain"
	"triex/pkg/platform/httputil"
	"triex/pkg/requestcontext"
)

// Service is the itinerary surface the handler depends on.
type Service interface {
	Itinerary(ctx context.Context, tripID id.TripID) ([]service.DayWithItems, error)
	AddDay(ctx context.Context, tripID id.TripID, input service.DayInput) (*models.Day, error)
	UpdateDay(ctx context.Context, dayID id.DayID, input service.DayInput) (*models.Day, error)
	DeleteDay(ctx context.Context, dayID id.DayID) error
	MoveDay(ctx context.Context, tripID id.TripID, fromIndex, toIndex int) error
	AddItem(ctx context.Context, dayID id.DayID, input service.ItemInput) (*models.Item, error)
	UpdateItem(ctx context.Context, itemID id.ItemID, input service.ItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, itemID id.ItemID) error
	MoveItem(ctx context.Context, dayID id.DayID, fromIndex, toIndex int) error
}

// Handler serves itinerary endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the editing endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/trips/{tripID}/itinerary", h.HandleItinerary)
	r.Post("/trips/{tripID}/itinerary/days", h.HandleAddDay)
	r.Post("/trips/{tripID}/itinerary/days/move", h.HandleMoveDay)
	r.Put("/itinerary/days/{dayID}", h.HandleUpdateDay)
	r.Delete("/itinerary/days/{dayID}", h.HandleDeleteDay)
	r.Post("/itinerary/days/{dayID}/items", h.HandleAddItem)
	r.Post("/itinerary/days/{dayID}/items/move", h.HandleMoveItem)
	r.Put("/itinerary/items/{itemID}", h.HandleUpdateItem)
	r.Delete("/itinerary/items/{itemID}", h.HandleDeleteItem)
}

// RegisterPortal mounts the read-only passenger view.
func (h *Handler) RegisterPortal(r chi.Router) {
	r.Get("/trips/{tripID}/itinerary", h.HandleItinerary)
}

func (h *Handler) HandleItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	days, err := h.service.Itinerary(ctx, tripID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItinerary(days))
}

func (h *Handler) HandleAddDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DayRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	day, err := h.service.AddDay(ctx, tripID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromDay(day))
}

func (h *Handler) HandleUpdateDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dayID, err := id.ParseDayID(chi.URLParam(r, "dayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DayRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	day, err := h.service.UpdateDay(ctx, dayID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDay(day))
}

func (h *Handler) HandleDeleteDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dayID, err := id.ParseDayID(chi.URLParam(r, "dayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteDay(ctx, dayID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMoveDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[MoveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.service.MoveDay(ctx, tripID, *req.FromIndex, *req.ToIndex); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "itinerary days reordered",
		"request_id", requestcontext.RequestID(ctx),
		"trip_id", tripID,
		"from", *req.FromIndex,
		"to", *req.ToIndex,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dayID, err := id.ParseDayID(chi.URLParam(r, "dayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	item, err := h.service.AddItem(ctx, dayID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromItem(item))
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ItemRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	item, err := h.service.UpdateItem(ctx, itemID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromItem(item))
}

func (h *Handler) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID, err := id.ParseItemID(chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteItem(ctx, itemID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dayID, err := id.ParseDayID(chi.URLParam(r, "dayID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[MoveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	if err := h.service.MoveItem(ctx, dayID, *req.FromIndex, *req.ToIndex); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
