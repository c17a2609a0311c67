// Package models holds in-app notifications and web-push subscriptions.
package models

import (
	"strings"
	"time"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// Type classifies a notification for client-side rendering.
type Type string

const (
	TypeDocumentApproved Type = "document_approved"
	TypeDocumentRejected Type = "document_rejected"
	TypeTripUpdate       Type = "trip_update"
)

// Notification is one portal inbox entry. TripID is nil for notifications
// not tied to a trip.
type Notification struct {
	ID          id.NotificationID
	PassengerID id.PassengerID
	TripID      id.TripID
	Type        Type
	Title       string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}

// NewNotification builds a validated notification.
func NewNotification(passengerID id.PassengerID, kind Type, title, message string, now time.Time) (*Notification, error) {
	if passengerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "passenger is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	return &Notification{
		ID:          id.NewNotificationID(),
		PassengerID: passengerID,
		Type:        kind,
		Title:       title,
		Message:     message,
		CreatedAt:   now,
	}, nil
}

// PushSubscription is one browser's web-push endpoint for a portal login.
// A user may hold several, one per device; (UserID, Endpoint) is unique.
type PushSubscription struct {
	ID        id.SubscriptionID
	UserID    id.UserID
	Endpoint  string
	P256dh    string
	Auth      string
	Device    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields a push service needs.
func (s *PushSubscription) Validate() error {
	if strings.TrimSpace(s.Endpoint) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "endpoint is required")
	}
	if strings.TrimSpace(s.P256dh) == "" || strings.TrimSpace(s.Auth) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "p256dh and auth keys are required")
	}
	return nil
}
