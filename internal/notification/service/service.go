// Package service delivers portal notifications: document review outcomes
// land in the passenger inbox, and browsers register web-push subscriptions
// so a push relay can reach them.
package service

import (
	"context"
	"io"
	"log/slog"

	"triex/internal/notification/models"
	id "triex/pkg/domain"
)

// Store is the notification persistence.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error)
	ListByPassenger(ctx context.Context, passengerID id.PassengerID, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, passengerID id.PassengerID) (int, error)
	MarkRead(ctx context.Context, notificationID id.NotificationID) error
	MarkAllRead(ctx context.Context, passengerID id.PassengerID) error

	UpsertSubscription(ctx context.Context, sub *models.PushSubscription) error
	FindSubscription(ctx context.Context, subscriptionID id.SubscriptionID) (*models.PushSubscription, error)
	ListSubscriptions(ctx context.Context, userID id.UserID) ([]*models.PushSubscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID id.SubscriptionID) error
}

// Service exposes the passenger inbox and push-subscription registry.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
