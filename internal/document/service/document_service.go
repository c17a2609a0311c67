package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"triex/internal/audit"
	"triex/internal/document/models"
	"triex/internal/platform/cache"
	tripmodels "triex/internal/trip/models"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// CreateDocumentType registers a reusable document definition.
func (s *Service) CreateDocumentType(ctx context.Context, name string) (*models.DocumentType, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	docType, err := models.NewDocumentType(id.NewDocumentTypeID(), name)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateType(ctx, docType); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create document type")
	}
	s.emitAudit(ctx, "document_type.created", docType.ID.String(), docType.Name)
	return docType, nil
}

// ListDocumentTypes returns all definitions, active and retired.
func (s *Service) ListDocumentTypes(ctx context.Context) ([]*models.DocumentType, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	types, err := s.store.ListTypes(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list document types")
	}
	return types, nil
}

// UpdateDocumentType renames or retires a definition. Retiring keeps
// existing requirements intact; it only hides the type from new selections.
func (s *Service) UpdateDocumentType(ctx context.Context, typeID id.DocumentTypeID, name string, isActive bool) (*models.DocumentType, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	docType, err := s.findType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document type name is required")
	}
	docType.Name = name
	docType.IsActive = isActive
	if err := s.store.UpdateType(ctx, docType); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document type")
	}
	s.emitAudit(ctx, "document_type.updated", docType.ID.String(), docType.Name)
	return docType, nil
}

// RequirementInput is one entry of a trip's requirement list.
type RequirementInput struct {
	DocTypeID   id.DocumentTypeID
	IsRequired  bool
	Description string
	DueDate     *time.Time
}

// ReplaceRequirements swaps the full requirement list of a trip. Dropping a
// requirement discards its uploads, so the handler warns before submitting.
func (s *Service) ReplaceRequirements(ctx context.Context, tripID id.TripID, inputs []RequirementInput) ([]*models.RequiredDocument, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	seen := make(map[id.DocumentTypeID]struct{}, len(inputs))
	reqs := make([]*models.RequiredDocument, 0, len(inputs))
	for _, input := range inputs {
		docType, err := s.findType(ctx, input.DocTypeID)
		if err != nil {
			return nil, err
		}
		if !docType.IsActive {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "document type %q is retired", docType.Name)
		}
		if _, dup := seen[input.DocTypeID]; dup {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "document type %q listed twice", docType.Name)
		}
		seen[input.DocTypeID] = struct{}{}
		reqs = append(reqs, &models.RequiredDocument{
			ID:          id.NewRequirementID(),
			TripID:      tripID,
			DocTypeID:   docType.ID,
			DocTypeName: docType.Name,
			IsRequired:  input.IsRequired,
			Description: input.Description,
			DueDate:     input.DueDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.store.ReplaceRequirements(ctx, tripID, reqs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to replace requirements")
	}
	s.emitAudit(ctx, "documents.requirements_replaced", tripID.String(),
		fmt.Sprintf("%d requirements", len(reqs)))
	s.invalidateTripCompleteness(ctx, tripID)
	return reqs, nil
}

// Requirements lists a trip's requirement definitions. Passengers see the
// list for their assigned trips.
func (s *Service) Requirements(ctx context.Context, tripID id.TripID) ([]*models.RequiredDocument, error) {
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	reqs, err := s.store.ListRequirements(ctx, tripID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requirements")
	}
	return reqs, nil
}

// UploadInput describes one upload against a requirement.
type UploadInput struct {
	RequirementID id.RequirementID
	Format        string
	FilePath      string
}

// UploadDocument records a passenger's upload. Re-uploads never overwrite:
// each attempt is a new row and the evaluator reads the newest ones.
func (s *Service) UploadDocument(ctx context.Context, tripID id.TripID, input UploadInput) (*models.PassengerDocument, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if sess.PassengerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger")
	}
	// GetTrip rejects passengers not assigned to the trip.
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}

	format, err := models.ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.FilePath) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "file path is required")
	}
	req, err := s.findRequirement(ctx, input.RequirementID)
	if err != nil {
		return nil, err
	}
	if req.TripID != tripID {
		return nil, dErrors.New(dErrors.CodeNotFound, "requirement not found")
	}

	now := requestcontext.Now(ctx)
	doc := &models.PassengerDocument{
		ID:            id.NewPassengerDocumentID(),
		TripID:        tripID,
		PassengerID:   sess.PassengerID,
		RequirementID: req.ID,
		Format:        format,
		FilePath:      input.FilePath,
		Status:        models.StatusUploaded,
		UploadedAt:    &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
	}
	s.invalidateCompleteness(ctx, tripID, sess.PassengerID)
	return doc, nil
}

// ReviewDocument approves or rejects one upload. Rejection requires a
// comment so the passenger knows what to fix.
func (s *Service) ReviewDocument(ctx context.Context, docID id.PassengerDocumentID, approve bool, comment string) (*models.PassengerDocument, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	doc, err := s.findDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.IsArchived() {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	comment = strings.TrimSpace(comment)
	if !approve && comment == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a rejection requires a comment")
	}

	now := requestcontext.Now(ctx)
	if approve {
		doc.Status = models.StatusApproved
	} else {
		doc.Status = models.StatusRejected
	}
	doc.ReviewComment = comment
	doc.ReviewedAt = &now
	doc.UpdatedAt = now
	if err := s.store.UpdateDocument(ctx, doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document")
	}

	outcome := "rejected"
	if approve {
		outcome = "approved"
	}
	if s.metrics != nil {
		s.metrics.DocumentsReviewed.WithLabelValues(outcome).Inc()
	}
	s.emitAudit(ctx, "document.reviewed", doc.ID.String(), outcome)
	s.invalidateCompleteness(ctx, doc.TripID, doc.PassengerID)
	s.notifyReview(ctx, doc, approve)
	return doc, nil
}

// TripDocuments returns every active upload of a trip for the staff review
// queue.
func (s *Service) TripDocuments(ctx context.Context, tripID id.TripID) ([]*models.PassengerDocument, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	docs, err := s.store.ListTripDocuments(ctx, tripID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	return docs, nil
}

// Completeness evaluates a passenger's document checklist for a trip. Staff
// may ask about any passenger; passengers only about themselves.
func (s *Service) Completeness(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) (*models.Completeness, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !sess.IsStaff() && sess.PassengerID != passengerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "cannot view another passenger's documents")
	}
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}

	key := cache.CompletenessKey(tripID.String(), passengerID.String())
	if s.cache != nil {
		var cached models.Completeness
		if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	reqs, err := s.store.ListRequirements(ctx, tripID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requirements")
	}
	docs, err := s.store.ListDocuments(ctx, tripID, passengerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	uploads := make([]models.PassengerDocument, 0, len(docs))
	for _, doc := range docs {
		uploads = append(uploads, *doc)
	}
	requirements := make([]models.RequiredDocument, 0, len(reqs))
	for _, req := range reqs {
		requirements = append(requirements, *req)
	}

	result := models.Evaluate(requirements, uploads)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "completeness cache write failed", "trip_id", tripID, "error", err)
		}
	}
	return &result, nil
}

// NextStep derives the dashboard call-to-action for the session's passenger:
// missing required documents point at the checklist, a finished trip shows
// the closing card, anything else points at the itinerary. A staff override
// pinned on the trip replaces the computed card wholesale.
func (s *Service) NextStep(ctx context.Context, tripID id.TripID) (tripmodels.NextStep, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return tripmodels.NextStep{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if sess.PassengerID.IsNil() {
		return tripmodels.NextStep{}, dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger")
	}
	trip, err := s.trips.GetTrip(ctx, tripID)
	if err != nil {
		return tripmodels.NextStep{}, err
	}
	completeness, err := s.Completeness(ctx, tripID, sess.PassengerID)
	if err != nil {
		return tripmodels.NextStep{}, err
	}

	computed := deriveNextStep(trip.OperationalStatus(requestcontext.Now(ctx)), completeness.Complete)
	return trip.NextStep.Resolve(computed), nil
}

func deriveNextStep(status tripmodels.OperationalStatus, complete bool) tripmodels.NextStep {
	switch {
	case !complete:
		return tripmodels.NextStep{
			Type:     tripmodels.NextStepDocs,
			Title:    "Completá tus documentos",
			Detail:   "Todavía te faltan documentos requeridos para este viaje.",
			CTALabel: "Subir documentos",
			CTARoute: "/documents",
		}
	case status == tripmodels.StatusFinalizado:
		return tripmodels.NextStep{
			Type:   tripmodels.NextStepNone,
			Title:  "¡Viaje completado!",
			Detail: "Tu documentación quedó al día y el viaje ya terminó.",
		}
	default:
		return tripmodels.NextStep{
			Type:     tripmodels.NextStepInfo,
			Title:    "Revisá tu itinerario",
			Detail:   "Tu documentación está al día. Mirá las actividades del viaje.",
			CTALabel: "Ver itinerario",
			CTARoute: "/itinerary",
		}
	}
}

func (s *Service) requireStaff(ctx context.Context) (requestcontext.Session, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return requestcontext.Session{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !sess.IsStaff() {
		return requestcontext.Session{}, dErrors.New(dErrors.CodeForbidden, "staff role required")
	}
	return sess, nil
}

func (s *Service) findType(ctx context.Context, typeID id.DocumentTypeID) (*models.DocumentType, error) {
	docType, err := s.store.FindType(ctx, typeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document type not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document type")
	}
	return docType, nil
}

func (s *Service) findRequirement(ctx context.Context, reqID id.RequirementID) (*models.RequiredDocument, error) {
	req, err := s.store.FindRequirement(ctx, reqID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "requirement not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load requirement")
	}
	return req, nil
}

func (s *Service) findDocument(ctx context.Context, docID id.PassengerDocumentID) (*models.PassengerDocument, error) {
	doc, err := s.store.FindDocument(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	return doc, nil
}

func (s *Service) emitAudit(ctx context.Context, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		OccurredAt: requestcontext.Now(ctx),
		UserID:     requestcontext.UserID(ctx),
		Action:     action,
		Entity:     "document",
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) invalidateCompleteness(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) {
	if s.cache == nil {
		return
	}
	keys := []string{
		cache.CompletenessKey(tripID.String(), passengerID.String()),
		cache.DashboardKey(passengerID.String()),
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "trip_id", tripID, "error", err)
	}
}

// invalidateTripCompleteness evicts every assigned passenger's verdict after
// a requirement change.
func (s *Service) invalidateTripCompleteness(ctx context.Context, tripID id.TripID) {
	if s.cache == nil {
		return
	}
	assigned, err := s.trips.ListPassengers(ctx, tripID)
	if err != nil {
		s.logger.WarnContext(ctx, "completeness invalidation skipped", "trip_id", tripID, "error", err)
		return
	}
	keys := make([]string, 0, 2*len(assigned))
	for _, passengerID := range assigned {
		keys = append(keys,
			cache.CompletenessKey(tripID.String(), passengerID.String()),
			cache.DashboardKey(passengerID.String()))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "trip_id", tripID, "error", err)
	}
}

func (s *Service) notifyReview(ctx context.Context, doc *models.PassengerDocument, approved bool) {
	if s.notifier == nil {
		return
	}
	docTypeName := ""
	if req, err := s.store.FindRequirement(ctx, doc.RequirementID); err == nil {
		docTypeName = req.DocTypeName
	}
	s.notifier.NotifyDocumentReviewed(ctx, doc.PassengerID, doc.TripID, docTypeName, approved)
}
