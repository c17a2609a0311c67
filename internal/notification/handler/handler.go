// Package handler wires the portal notification endpoints to the
// notification service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"triex/internal/notification/models"
	"triex/internal/notification/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/httputil"
	"triex/pkg/requestcontext"
)

// Service is the notification surface the handler depends on.
type Service interface {
	MyNotifications(ctx context.Context, limit int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID) error
	MarkAllRead(ctx context.Context) error
	RegisterPushSubscription(ctx context.Context, input service.SubscriptionInput) (*models.PushSubscription, error)
	MyPushSubscriptions(ctx context.Context) ([]*models.PushSubscription, error)
	RemovePushSubscription(ctx context.Context, subscriptionID id.SubscriptionID) error
}

// Handler serves the passenger-portal notification endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPortal mounts the passenger endpoints.
func (h *Handler) RegisterPortal(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Get("/notifications/unread-count", h.HandleUnreadCount)
	r.Post("/notifications/{notificationID}/read", h.HandleMarkRead)
	r.Post("/notifications/read-all", h.HandleMarkAllRead)
	r.Post("/push-subscriptions", h.HandleSubscribe)
	r.Get("/push-subscriptions", h.HandleListSubscriptions)
	r.Delete("/push-subscriptions/{subscriptionID}", h.HandleUnsubscribe)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}
	list, err := h.service.MyNotifications(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromNotifications(list))
}

func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UnreadCountResponse{Unread: count})
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "notificationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.MarkRead(r.Context(), notificationID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAllRead(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SubscriptionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	sub, err := h.service.RegisterPushSubscription(ctx, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "push subscription registered",
		"request_id", requestcontext.RequestID(ctx),
		"subscription_id", sub.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromSubscription(sub))
}

func (h *Handler) HandleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.MyPushSubscriptions(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromSubscriptions(list))
}

func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	subscriptionID, err := id.ParseSubscriptionID(chi.URLParam(r, "subscriptionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.RemovePushSubscription(r.Context(), subscriptionID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
