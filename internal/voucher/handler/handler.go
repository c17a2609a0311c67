// Package handler wires voucher endpoints to the voucher service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"triex/internal/voucher/models"
	"triex/internal/voucher/service"
	id "triex/pkg/domain"
	"triex/pkg/platform/httputil"
	"triex/pkg/requestcontext"
)

// Service is the voucher surface the handler depends on.
type Service interface {
	CreateVoucher(ctx context.Context, tripID id.TripID, input service.Input) (*models.Voucher, error)
	GetVoucher(ctx context.Context, voucherID id.VoucherID) (*models.Voucher, error)
	UpdateVoucher(ctx context.Context, voucherID id.VoucherID, input service.Input) (*models.Voucher, error)
	ArchiveVoucher(ctx context.Context, voucherID id.VoucherID) error
	RestoreVoucher(ctx context.Context, voucherID id.VoucherID) error
	TripVouchers(ctx context.Context, tripID id.TripID) ([]*models.Voucher, error)
	MyVouchers(ctx context.Context, tripID id.TripID) ([]*models.Voucher, error)
}

// Handler serves the admin-console and passenger-portal voucher endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the staff endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/trips/{tripID}/vouchers", h.HandleCreate)
	r.Get("/trips/{tripID}/vouchers", h.HandleTripVouchers)
	r.Get("/vouchers/{voucherID}", h.HandleGet)
	r.Put("/vouchers/{voucherID}", h.HandleUpdate)
	r.Post("/vouchers/{voucherID}/archive", h.HandleArchive)
	r.Post("/vouchers/{voucherID}/restore", h.HandleRestore)
}

// RegisterPortal mounts the passenger endpoints.
func (h *Handler) RegisterPortal(r chi.Router) {
	r.Get("/trips/{tripID}/vouchers", h.HandleMyVouchers)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VoucherRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	voucher, err := h.service.CreateVoucher(ctx, tripID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "voucher created",
		"request_id", requestcontext.RequestID(ctx),
		"voucher_id", voucher.ID,
		"trip_id", tripID,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromVoucher(voucher))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "voucherID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	voucher, err := h.service.GetVoucher(r.Context(), voucherID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromVoucher(voucher))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "voucherID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VoucherRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	voucher, err := h.service.UpdateVoucher(ctx, voucherID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromVoucher(voucher))
}

func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.ArchiveVoucher, "voucher archived")
}

func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.RestoreVoucher, "voucher restored")
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(context.Context, id.VoucherID) error, msg string) {
	ctx := r.Context()
	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "voucherID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := op(ctx, voucherID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"voucher_id", voucherID,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleTripVouchers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.TripVouchers)
}

func (h *Handler) HandleMyVouchers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.MyVouchers)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op func(context.Context, id.TripID) ([]*models.Voucher, error)) {
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	list, err := op(r.Context(), tripID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromVouchers(list))
}
