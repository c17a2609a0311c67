// Package handler serves the admin activity panel from the audit trail.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"triex/internal/audit"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/httputil"
)

const defaultLimit = 50

// Publisher is the audit read surface the handler depends on.
type Publisher interface {
	History(ctx context.Context, entity, entityID string) ([]audit.Event, error)
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler serves the admin-console audit listing.
type Handler struct {
	publisher Publisher
	logger    *slog.Logger
}

func New(publisher Publisher, logger *slog.Logger) *Handler {
	return &Handler{publisher: publisher, logger: logger}
}

// RegisterAdmin mounts the staff endpoints. The audit trail has no portal
// surface.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/audit", h.HandleList)
}

// HandleList returns recent events, or the change trail of one entity when
// entity and entity_id are both given.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	entity := query.Get("entity")
	entityID := query.Get("entity_id")
	if (entity == "") != (entityID == "") {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "entity and entity_id go together"))
		return
	}

	var (
		events []audit.Event
		err    error
	)
	if entity != "" {
		events, err = h.publisher.History(ctx, entity, entityID)
	} else {
		limit := defaultLimit
		if raw := query.Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 1 || limit > 500 {
				httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be between 1 and 500"))
				return
			}
		}
		events, err = h.publisher.Recent(ctx, limit)
	}
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEvents(events))
}

// EventResponse is the wire shape of one audit entry.
type EventResponse struct {
	OccurredAt time.Time `json:"occurred_at"`
	UserID     string    `json:"user_id,omitempty"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
}

func fromEvents(events []audit.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, event := range events {
		resp := EventResponse{
			OccurredAt: event.OccurredAt,
			Action:     event.Action,
			Entity:     event.Entity,
			EntityID:   event.EntityID,
			Detail:     event.Detail,
		}
		if !event.UserID.IsNil() {
			resp.UserID = event.UserID.String()
		}
		out = append(out, resp)
	}
	return out
}
