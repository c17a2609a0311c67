// Package service manages vouchers: staff attach service confirmations to a
// trip, per passenger or trip-wide, and passengers read the ones visible to
// them through the portal.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,TripService,AuditPublisher

import (
	"context"
	"io"
	"log/slog"

	"triex/internal/audit"
	tripmodels "triex/internal/trip/models"
	"triex/internal/voucher/models"
	id "triex/pkg/domain"
)

// Store is the voucher persistence.
type Store interface {
	Create(ctx context.Context, v *models.Voucher) error
	FindByID(ctx context.Context, voucherID id.VoucherID) (*models.Voucher, error)
	Update(ctx context.Context, v *models.Voucher) error
	ListByTrip(ctx context.Context, tripID id.TripID) ([]*models.Voucher, error)
}

// TripService gates voucher access with the trip service's visibility rules.
type TripService interface {
	GetTrip(ctx context.Context, tripID id.TripID) (*tripmodels.Trip, error)
}

// AuditPublisher records staff voucher actions.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service exposes voucher administration and the passenger-facing listing.
type Service struct {
	store  Store
	trips  TripService
	audit  AuditPublisher
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// New constructs a Service. Audit is optional.
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
