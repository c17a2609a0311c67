package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mssola/useragent"

	"triex/internal/notification/models"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// NotifyDocumentReviewed drops a review outcome into the passenger inbox.
// Delivery is best effort: a storage failure is logged, never propagated to
// the review flow.
func (s *Service) NotifyDocumentReviewed(ctx context.Context, passengerID id.PassengerID, tripID id.TripID, docTypeName string, approved bool) {
	kind := models.TypeDocumentApproved
	title := "Documento aprobado"
	message := fmt.Sprintf("Tu documento %s fue aprobado.", docTypeName)
	if !approved {
		kind = models.TypeDocumentRejected
		title = "Documento rechazado"
		message = fmt.Sprintf("Tu documento %s fue rechazado. Volvé a subirlo desde el portal.", docTypeName)
	}

	n, err := models.NewNotification(passengerID, kind, title, message, requestcontext.Now(ctx))
	if err != nil {
		s.logger.WarnContext(ctx, "notification build failed", "passenger_id", passengerID, "error", err)
		return
	}
	n.TripID = tripID
	if err := s.store.Create(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification delivery failed",
			"passenger_id", passengerID, "type", kind, "error", err)
	}
}

// MyNotifications lists the session passenger's inbox, newest first. A limit
// of zero returns everything.
func (s *Service) MyNotifications(ctx context.Context, limit int) ([]*models.Notification, error) {
	passengerID, err := s.requirePassenger(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListByPassenger(ctx, passengerID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return list, nil
}

// UnreadCount returns the badge counter for the session passenger.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	passengerID, err := s.requirePassenger(ctx)
	if err != nil {
		return 0, err
	}
	count, err := s.store.CountUnread(ctx, passengerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one of the session passenger's notifications as read.
func (s *Service) MarkRead(ctx context.Context, notificationID id.NotificationID) error {
	passengerID, err := s.requirePassenger(ctx)
	if err != nil {
		return err
	}
	n, err := s.store.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	// Hide other passengers' notifications.
	if n.PassengerID != passengerID {
		return dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	if err := s.store.MarkRead(ctx, notificationID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead zeroes the session passenger's unread count.
func (s *Service) MarkAllRead(ctx context.Context) error {
	passengerID, err := s.requirePassenger(ctx)
	if err != nil {
		return err
	}
	if err := s.store.MarkAllRead(ctx, passengerID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return nil
}

// SubscriptionInput carries the browser's push subscription payload.
type SubscriptionInput struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// RegisterPushSubscription stores a browser's push endpoint for the session
// user. Re-registering the same endpoint refreshes the keys, so the call is
// idempotent per device.
func (s *Service) RegisterPushSubscription(ctx context.Context, input SubscriptionInput) (*models.PushSubscription, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	now := requestcontext.Now(ctx)
	sub := &models.PushSubscription{
		ID:        id.NewSubscriptionID(),
		UserID:    sess.UserID,
		Endpoint:  strings.TrimSpace(input.Endpoint),
		P256dh:    strings.TrimSpace(input.P256dh),
		Auth:      strings.TrimSpace(input.Auth),
		Device:    deviceLabel(requestcontext.UserAgent(ctx)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpsertSubscription(ctx, sub); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store subscription")
	}
	return sub, nil
}

// MyPushSubscriptions lists the session user's registered devices.
func (s *Service) MyPushSubscriptions(ctx context.Context) ([]*models.PushSubscription, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	list, err := s.store.ListSubscriptions(ctx, sess.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subscriptions")
	}
	return list, nil
}

// RemovePushSubscription deletes one of the session user's subscriptions.
func (s *Service) RemovePushSubscription(ctx context.Context, subscriptionID id.SubscriptionID) error {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	sub, err := s.store.FindSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "subscription not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscription")
	}
	if sub.UserID != sess.UserID {
		return dErrors.New(dErrors.CodeNotFound, "subscription not found")
	}
	if err := s.store.DeleteSubscription(ctx, subscriptionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete subscription")
	}
	return nil
}

func (s *Service) requirePassenger(ctx context.Context) (id.PassengerID, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return id.PassengerID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if sess.PassengerID.IsNil() {
		return id.PassengerID{}, dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger")
	}
	return sess.PassengerID, nil
}

// deviceLabel condenses a User-Agent header into a short label like
// "Chrome on Linux x86_64" for the subscription listing.
func deviceLabel(rawUA string) string {
	if rawUA == "" {
		return ""
	}
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()
	os := ua.OS()
	switch {
	case browser != "" && os != "":
		return browser + " on " + os
	case browser != "":
		return browser
	default:
		return os
	}
}
