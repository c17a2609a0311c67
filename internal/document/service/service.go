// Package service implements the travel-documents workflow: staff define
// which documents a trip requires, passengers upload them, staff review, and
// a completeness verdict gates the passenger checklist.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"triex/internal/audit"
	"triex/internal/document/models"
	"triex/internal/platform/cache"
	"triex/internal/platform/metrics"
	tripmodels "triex/internal/trip/models"
	id "triex/pkg/domain"
)

// Store is the document persistence. Both the in-memory and PostgreSQL
// stores satisfy it.
type Store interface {
	CreateType(ctx context.Context, docType *models.DocumentType) error
	FindType(ctx context.Context, typeID id.DocumentTypeID) (*models.DocumentType, error)
	ListTypes(ctx context.Context) ([]*models.DocumentType, error)
	UpdateType(ctx context.Context, docType *models.DocumentType) error

	ReplaceRequirements(ctx context.Context, tripID id.TripID, reqs []*models.RequiredDocument) error
	FindRequirement(ctx context.Context, reqID id.RequirementID) (*models.RequiredDocument, error)
	ListRequirements(ctx context.Context, tripID id.TripID) ([]*models.RequiredDocument, error)

	CreateDocument(ctx context.Context, doc *models.PassengerDocument) error
	FindDocument(ctx context.Context, docID id.PassengerDocumentID) (*models.PassengerDocument, error)
	ListDocuments(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) ([]*models.PassengerDocument, error)
	ListTripDocuments(ctx context.Context, tripID id.TripID) ([]*models.PassengerDocument, error)
	UpdateDocument(ctx context.Context, doc *models.PassengerDocument) error
}

// TripService provides trip visibility and passenger membership. The trip
// service's GetTrip applies the caller's staff/assignment rules, so document
// operations inherit them.
type TripService interface {
	GetTrip(ctx context.Context, tripID id.TripID) (*tripmodels.Trip, error)
	ListPassengers(ctx context.Context, tripID id.TripID) ([]id.PassengerID, error)
}

// AuditPublisher records staff document actions.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Notifier delivers review outcomes to passengers. The notification service
// satisfies it.
type Notifier interface {
	NotifyDocumentReviewed(ctx context.Context, passengerID id.PassengerID, tripID id.TripID, docTypeName string, approved bool)
}

// Service exposes document-type administration, per-trip requirements,
// passenger uploads, review, and completeness evaluation.
type Service struct {
	store    Store
	trips    TripService
	cache    cache.Cache
	cacheTTL time.Duration
	audit    AuditPublisher
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// New constructs a Service. Cache, audit, notifier, and metrics are optional.
func New(store Store, trips TripService, opts ...Option) *Service {
	s := &Service{
		store:  store,
		trips:  trips,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
