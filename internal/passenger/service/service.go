// Package service manages passenger records: staff CRUD with soft archive,
// profile linking, and the passenger's own record for the portal.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"triex/internal/audit"
	"triex/internal/passenger/models"
	"triex/internal/platform/cache"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// Store is the passenger persistence. Both the in-memory and PostgreSQL
// stores satisfy it.
type Store interface {
	Create(ctx context.Context, p *models.Passenger) error
	FindByID(ctx context.Context, passengerID id.PassengerID) (*models.Passenger, error)
	FindByProfile(ctx context.Context, profileID id.UserID) (*models.Passenger, error)
	Update(ctx context.Context, p *models.Passenger) error
	List(ctx context.Context, filter models.Filter) ([]*models.Passenger, error)
}

// AuditPublisher records staff passenger actions.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service exposes passenger operations.
type Service struct {
	passengers Store
	cache      cache.Cache
	audit      AuditPublisher
	logger     *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// New constructs a Service. Cache and audit are optional.
func New(passengers Store, opts ...Option) *Service {
	s := &Service{
		passengers: passengers,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input carries the editable passenger fields.
type Input struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	BirthDate      *time.Time
	DocumentType   string
	DocumentNumber string
	IsRecurrent    bool
	Notes          string
}

// CreatePassenger registers a traveler.
func (s *Service) CreatePassenger(ctx context.Context, input Input) (*models.Passenger, error) {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	p, err := models.NewPassenger(id.NewPassengerID(), input.FirstName, input.LastName, input.Email, now)
	if err != nil {
		return nil, err
	}
	applyInput(p, input)
	p.CreatedBy = sess.UserID
	p.UpdatedBy = sess.UserID
	if err := s.passengers.Create(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create passenger")
	}
	s.emitAudit(ctx, "passenger.created", p.ID.String(), p.FullName())
	return p, nil
}

// GetPassenger returns one record. Staff see any record; a passenger only
// their own.
func (s *Service) GetPassenger(ctx context.Context, passengerID id.PassengerID) (*models.Passenger, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !sess.IsStaff() && sess.PassengerID != passengerID {
		// Hide existence from other passengers.
		return nil, dErrors.New(dErrors.CodeNotFound, "passenger not found")
	}
	return s.findPassenger(ctx, passengerID)
}

// Me returns the record behind the session's passenger link.
func (s *Service) Me(ctx context.Context) (*models.Passenger, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if sess.PassengerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger")
	}
	return s.findPassenger(ctx, sess.PassengerID)
}

// ListPassengers returns records matching the filter.
func (s *Service) ListPassengers(ctx context.Context, filter models.Filter) ([]*models.Passenger, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	list, err := s.passengers.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list passengers")
	}
	return list, nil
}

// UpdatePassenger rewrites the editable fields.
func (s *Service) UpdatePassenger(ctx context.Context, passengerID id.PassengerID, input Input) (*models.Passenger, error) {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.findPassenger(ctx, passengerID)
	if err != nil {
		return nil, err
	}

	fresh, err := models.NewPassenger(p.ID, input.FirstName, input.LastName, input.Email, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.FirstName, p.LastName, p.Email = fresh.FirstName, fresh.LastName, fresh.Email
	applyInput(p, input)
	p.UpdatedBy = sess.UserID
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.passengers.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update passenger")
	}
	s.invalidateDashboard(ctx, p.ID)
	return p, nil
}

// ArchivePassenger soft-deletes a record. Trip assignments stay in place so
// history remains consultable.
func (s *Service) ArchivePassenger(ctx context.Context, passengerID id.PassengerID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}
	p, err := s.findPassenger(ctx, passengerID)
	if err != nil {
		return err
	}
	if p.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "passenger is already archived")
	}

	now := requestcontext.Now(ctx)
	p.ArchivedAt = &now
	p.UpdatedBy = sess.UserID
	p.UpdatedAt = now
	if err := s.passengers.Update(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to archive passenger")
	}
	s.emitAudit(ctx, "passenger.archived", p.ID.String(), p.FullName())
	s.invalidateDashboard(ctx, p.ID)
	return nil
}

// RestorePassenger undoes an archive.
func (s *Service) RestorePassenger(ctx context.Context, passengerID id.PassengerID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}
	p, err := s.findPassenger(ctx, passengerID)
	if err != nil {
		return err
	}
	if !p.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "passenger is not archived")
	}

	p.ArchivedAt = nil
	p.UpdatedBy = sess.UserID
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.passengers.Update(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to restore passenger")
	}
	s.emitAudit(ctx, "passenger.restored", p.ID.String(), p.FullName())
	return nil
}

// LinkProfile attaches a portal login to a passenger record. A profile can
// back at most one active passenger.
func (s *Service) LinkProfile(ctx context.Context, passengerID id.PassengerID, profileID id.UserID) (*models.Passenger, error) {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "profile_id is required")
	}
	if existing, err := s.passengers.FindByProfile(ctx, profileID); err == nil && existing.ID != passengerID {
		return nil, dErrors.New(dErrors.CodeConflict, "profile is already linked to another passenger")
	}

	p, err := s.findPassenger(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	p.ProfileID = profileID
	p.UpdatedBy = sess.UserID
	p.UpdatedAt = requestcontext.Now(ctx)
	if err := s.passengers.Update(ctx, p); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to link profile")
	}
	s.emitAudit(ctx, "passenger.profile_linked", p.ID.String(), profileID.String())
	return p, nil
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

func (s *Service) findPassenger(ctx context.Context, passengerID id.PassengerID) (*models.Passenger, error) {
	p, err := s.passengers.FindByID(ctx, passengerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "passenger not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load passenger")
	}
	return p, nil
}

func (s *Service) emitAudit(ctx context.Context, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		OccurredAt: requestcontext.Now(ctx),
		UserID:     requestcontext.UserID(ctx),
		Action:     action,
		Entity:     "passenger",
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

func (s *Service) invalidateDashboard(ctx context.Context, passengerID id.PassengerID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.DashboardKey(passengerID.String())); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "passenger_id", passengerID, "error", err)
	}
}

func applyInput(p *models.Passenger, input Input) {
	p.Phone = strings.TrimSpace(input.Phone)
	p.BirthDate = input.BirthDate
	p.DocumentType = strings.TrimSpace(input.DocumentType)
	p.DocumentNumber = strings.TrimSpace(input.DocumentNumber)
	p.IsRecurrent = input.IsRecurrent
	p.Notes = input.Notes
}
