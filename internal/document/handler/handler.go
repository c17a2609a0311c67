// Package handler wires document endpoints to the document service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"triex/internal/document/models"
	"triex/internal/document/service"
	tripmodels "triex/internal/trip/models"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/httputil"
	"triex/pkg/requestcontext"
)

// Service is the document surface the handler depends on.
type Service interface {
	CreateDocumentType(ctx context.Context, name string) (*models.DocumentType, error)
	ListDocumentTypes(ctx context.Context) ([]*models.DocumentType, error)
	UpdateDocumentType(ctx context.Context, typeID id.DocumentTypeID, name string, isActive bool) (*models.DocumentType, error)
	ReplaceRequirements(ctx context.Context, tripID id.TripID, inputs []service.RequirementInput) ([]*models.RequiredDocument, error)
	Requirements(ctx context.Context, tripID id.TripID) ([]*models.RequiredDocument, error)
	UploadDocument(ctx context.Context, tripID id.TripID, input service.UploadInput) (*models.PassengerDocument, error)
	ReviewDocument(ctx context.Context, docID id.PassengerDocumentID, approve bool, comment string) (*models.PassengerDocument, error)
	TripDocuments(ctx context.Context, tripID id.TripID) ([]*models.PassengerDocument, error)
	Completeness(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) (*models.Completeness, error)
	NextStep(ctx context.Context, tripID id.TripID) (tripmodels.NextStep, error)
}

// Handler serves the admin-console and passenger-portal document endpoints.
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
	r.Post("/document-types", h.HandleCreateType)
	r.Get("/document-types", h.HandleListTypes)
	r.Put("/document-types/{typeID}", h.HandleUpdateType)
	r.Put("/trips/{tripID}/documents/requirements", h.HandleReplaceRequirements)
	r.Get("/trips/{tripID}/documents/requirements", h.HandleRequirements)
	r.Get("/trips/{tripID}/documents", h.HandleTripDocuments)
	r.Get("/trips/{tripID}/documents/completeness/{passengerID}", h.HandleCompleteness)
	r.Post("/documents/{documentID}/review", h.HandleReview)
}

// RegisterPortal mounts the passenger endpoints.
func (h *Handler) RegisterPortal(r chi.Router) {
	r.Get("/trips/{tripID}/documents/requirements", h.HandleRequirements)
	r.Post("/trips/{tripID}/documents", h.HandleUpload)
	r.Get("/trips/{tripID}/documents/completeness", h.HandleMyCompleteness)
	r.Get("/trips/{tripID}/next-step", h.HandleNextStep)
}

func (h *Handler) HandleCreateType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[DocumentTypeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	docType, err := h.service.CreateDocumentType(ctx, req.Name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, fromType(docType))
}

func (h *Handler) HandleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListDocumentTypes(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromTypes(types))
}

func (h *Handler) HandleUpdateType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typeID, err := id.ParseDocumentTypeID(chi.URLParam(r, "typeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DocumentTypeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	docType, err := h.service.UpdateDocumentType(ctx, typeID, req.Name, req.Active())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromType(docType))
}

func (h *Handler) HandleReplaceRequirements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RequirementsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	reqs, err := h.service.ReplaceRequirements(ctx, tripID, req.Parsed())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "requirements replaced",
		"request_id", requestcontext.RequestID(ctx),
		"trip_id", tripID,
		"count", len(reqs),
	)
	httputil.WriteJSON(w, http.StatusOK, fromRequirements(reqs))
}

func (h *Handler) HandleRequirements(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reqs, err := h.service.Requirements(ctx, tripID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromRequirements(reqs))
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UploadRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	doc, err := h.service.UploadDocument(ctx, tripID, req.ToInput())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "document uploaded",
		"request_id", requestcontext.RequestID(ctx),
		"trip_id", tripID,
		"document_id", doc.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromDocument(doc))
}

func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID, err := id.ParsePassengerDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	doc, err := h.service.ReviewDocument(ctx, docID, *req.Approve, req.Comment)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDocument(doc))
}

func (h *Handler) HandleTripDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	docs, err := h.service.TripDocuments(ctx, tripID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromDocuments(docs))
}

// HandleCompleteness answers for an explicit passenger; staff only reach it
// through the admin router.
func (h *Handler) HandleCompleteness(w http.ResponseWriter, r *http.Request) {
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	passengerID, err := id.ParsePassengerID(chi.URLParam(r, "passengerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeCompleteness(w, r, tripID, passengerID)
}

// HandleMyCompleteness answers for the passenger behind the session.
func (h *Handler) HandleMyCompleteness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if sess.PassengerID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger"))
		return
	}
	h.writeCompleteness(w, r, tripID, sess.PassengerID)
}

// HandleNextStep serves the dashboard call-to-action for the session's
// passenger.
func (h *Handler) HandleNextStep(w http.ResponseWriter, r *http.Request) {
	tripID, err := id.ParseTripID(chi.URLParam(r, "tripID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	step, err := h.service.NextStep(r.Context(), tripID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, step)
}

func (h *Handler) writeCompleteness(w http.ResponseWriter, r *http.Request, tripID id.TripID, passengerID id.PassengerID) {
	verdict, err := h.service.Completeness(r.Context(), tripID, passengerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromCompleteness(verdict))
}
