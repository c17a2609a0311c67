// Package service orchestrates trip lifecycle and passenger assignment.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"triex/internal/audit"
	"triex/internal/platform/cache"
	"triex/internal/platform/metrics"
	"triex/internal/trip/models"
	id "triex/pkg/domain"
)

// Store is the persistence the service depends on. Both the in-memory and
// PostgreSQL stores satisfy it.
type Store interface {
	Create(ctx context.Context, trip *models.Trip) error
	FindByID(ctx context.Context, tripID id.TripID) (*models.Trip, error)
	Update(ctx context.Context, trip *models.Trip) error
	Delete(ctx context.Context, tripID id.TripID) error
	List(ctx context.Context, filter models.Filter) ([]*models.Trip, error)
	ListByPassenger(ctx context.Context, passengerID id.PassengerID) ([]*models.Trip, error)
	AssignPassenger(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) error
	UnassignPassenger(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) error
	ListPassengerIDs(ctx context.Context, tripID id.TripID) ([]id.PassengerID, error)
}

// AuditPublisher records admin actions. Both audit.Publisher and
// audit.ChannelPublisher satisfy it.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service exposes the trip operations behind the admin console and the
// passenger portal.
type Service struct {
	trips    Store
	cache    cache.Cache
	cacheTTL time.Duration
	audit    AuditPublisher
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

// New constructs a Service. Cache, audit, and metrics are optional.
func New(trips Store, opts ...Option) *Service {
	s := &Service{
		trips:  trips,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
