package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"triex/internal/notification/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

type NotificationStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *NotificationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestNotificationStoreSuite(t *testing.T) {
	suite.Run(t, new(NotificationStoreSuite))
}

func (s *NotificationStoreSuite) newNotification(passengerID id.PassengerID, title string, at time.Time) *models.Notification {
	n, err := models.NewNotification(passengerID, models.TypeDocumentApproved, title, "mensaje", at)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, n))
	return n
}

func (s *NotificationStoreSuite) TestListNewestFirstWithLimit() {
	passengerID := id.NewPassengerID()
	base := time.Now()
	s.newNotification(passengerID, "oldest", base.Add(-2*time.Hour))
	s.newNotification(passengerID, "newest", base)
	s.newNotification(passengerID, "middle", base.Add(-time.Hour))
	s.newNotification(id.NewPassengerID(), "foreign", base)

	list, err := s.store.ListByPassenger(s.ctx, passengerID, 0)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("newest", list[0].Title)
	s.Equal("oldest", list[2].Title)

	list, err = s.store.ListByPassenger(s.ctx, passengerID, 2)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("newest", list[0].Title)
}

func (s *NotificationStoreSuite) TestReadFlow() {
	passengerID := id.NewPassengerID()
	first := s.newNotification(passengerID, "uno", time.Now())
	s.newNotification(passengerID, "dos", time.Now())

	count, err := s.store.CountUnread(s.ctx, passengerID)
	s.Require().NoError(err)
	s.Equal(2, count)

	s.Require().NoError(s.store.MarkRead(s.ctx, first.ID))
	count, err = s.store.CountUnread(s.ctx, passengerID)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.Require().NoError(s.store.MarkAllRead(s.ctx, passengerID))
	count, err = s.store.CountUnread(s.ctx, passengerID)
	s.Require().NoError(err)
	s.Equal(0, count)

	s.ErrorIs(s.store.MarkRead(s.ctx, id.NewNotificationID()), sentinel.ErrNotFound)
}

func (s *NotificationStoreSuite) newSubscription(userID id.UserID, endpoint string) *models.PushSubscription {
	now := time.Now()
	sub := &models.PushSubscription{
		ID:        id.NewSubscriptionID(),
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    "key",
		Auth:      "secret",
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.store.UpsertSubscription(s.ctx, sub))
	return sub
}

func (s *NotificationStoreSuite) TestUpsertSubscriptionIsIdempotent() {
	userID := id.NewUserID()
	first := s.newSubscription(userID, "https://push.example/reg/a")

	refreshed := &models.PushSubscription{
		ID:        id.NewSubscriptionID(),
		UserID:    userID,
		Endpoint:  "https://push.example/reg/a",
		P256dh:    "rotated-key",
		Auth:      "rotated-secret",
		Device:    "Chrome on Linux",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.Require().NoError(s.store.UpsertSubscription(s.ctx, refreshed))
	// The collision keeps the original identity.
	s.Equal(first.ID, refreshed.ID)

	list, err := s.store.ListSubscriptions(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("rotated-key", list[0].P256dh)
	s.Equal("Chrome on Linux", list[0].Device)
}

func (s *NotificationStoreSuite) TestSubscriptionsPerDevice() {
	userID := id.NewUserID()
	s.newSubscription(userID, "https://push.example/reg/laptop")
	phone := s.newSubscription(userID, "https://push.example/reg/phone")
	s.newSubscription(id.NewUserID(), "https://push.example/reg/laptop")

	list, err := s.store.ListSubscriptions(s.ctx, userID)
	s.Require().NoError(err)
	s.Len(list, 2)

	s.Require().NoError(s.store.DeleteSubscription(s.ctx, phone.ID))
	s.ErrorIs(s.store.DeleteSubscription(s.ctx, phone.ID), sentinel.ErrNotFound)

	list, err = s.store.ListSubscriptions(s.ctx, userID)
	s.Require().NoError(err)
	s.Len(list, 1)
}
