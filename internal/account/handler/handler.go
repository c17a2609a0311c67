// Package handler wires account endpoints to the account service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"triex/internal/account/models"
	"triex/internal/account/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/httputil"
	"triex/pkg/requestcontext"
)

// Service is the account surface the handler depends on.
type Service interface {
	CreateAccount(ctx context.Context, input service.Input) (*models.User, error)
	GetAccount(ctx context.Context, userID id.UserID) (*models.User, error)
	ListAccounts(ctx context.Context, filter models.Filter) ([]*models.User, error)
	UpdateAccount(ctx context.Context, userID id.UserID, fullName string, role id.Role) (*models.User, error)
	DisableAccount(ctx context.Context, userID id.UserID) error
	EnableAccount(ctx context.Context, userID id.UserID) error
	DeleteAccount(ctx context.Context, userID id.UserID) error
}

// Handler serves the admin-console account endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the staff endpoints. Accounts have no portal surface.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/accounts", h.HandleCreate)
	r.Get("/accounts", h.HandleList)
	r.Get("/accounts/{userID}", h.HandleGet)
	r.Put("/accounts/{userID}", h.HandleUpdate)
	r.Post("/accounts/{userID}/disable", h.HandleDisable)
	r.Post("/accounts/{userID}/enable", h.HandleEnable)
	r.Delete("/accounts/{userID}", h.HandleDelete)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[AccountRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	u, err := h.service.CreateAccount(ctx, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "account created",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", u.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromUser(u))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromUser(u))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := h.service.ListAccounts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromUsers(list))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateAccountRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	u, err := h.service.UpdateAccount(ctx, userID, req.FullName, req.ParsedRole())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromUser(u))
}

func (h *Handler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.DisableAccount, "account disabled")
}

func (h *Handler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.EnableAccount, "account enabled")
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.DeleteAccount, "account deleted")
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.UserID) error, msg string) {
	ctx := r.Context()
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(ctx, userID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
	)
	w.WriteHeader(http.StatusNoContent)
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	filter := models.Filter{Search: r.URL.Query().Get("search")}
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", string(models.ScopeActive):
		filter.Scope = models.ScopeActive
	case string(models.ScopeDisabled):
		filter.Scope = models.ScopeDisabled
	case string(models.ScopeAll):
		filter.Scope = models.ScopeAll
	default:
		return models.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "invalid scope")
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := id.ParseRole(raw)
		if err != nil {
			return models.Filter{}, err
		}
		filter.Role = role
	}
	return filter, nil
}
