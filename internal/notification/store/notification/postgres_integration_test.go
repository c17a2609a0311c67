//go:build integration

package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"triex/internal/notification/models"
	"triex/internal/notification/store/notification"
	tripmodels "triex/internal/trip/models"
	tripstore "triex/internal/trip/store/trip"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
	"triex/pkg/testutil/containers"
)

type PostgresNotificationSuite struct {
	suite.Suite
	postgres    *containers.PostgresContainer
	store       *notification.Postgres
	trips       *tripstore.Postgres
	ctx         context.Context
	tripID      id.TripID
	passengerID id.PassengerID
}

func TestPostgresNotificationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresNotificationSuite))
}

func (s *PostgresNotificationSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = notification.NewPostgres(s.postgres.DB)
	s.trips = tripstore.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresNotificationSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx,
		"notifications", "push_subscriptions", "passengers", "trips")
	s.Require().NoError(err)

	trip, err := tripmodels.NewTrip(id.NewTripID(), "Integración", "Jujuy", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.trips.Create(s.ctx, trip))
	s.tripID = trip.ID

	s.passengerID = id.NewPassengerID()
	_, err = s.postgres.DB.ExecContext(s.ctx, `
		INSERT INTO passengers (id, first_name, last_name, email)
		VALUES ($1, 'Ana', 'Prueba', 'ana@example.com')
	`, s.passengerID.String())
	s.Require().NoError(err)
}

func (s *PostgresNotificationSuite) createNotification(title string, at time.Time) *models.Notification {
	n, err := models.NewNotification(s.passengerID, models.TypeDocumentApproved, title, "mensaje", at)
	s.Require().NoError(err)
	n.TripID = s.tripID
	s.Require().NoError(s.store.Create(s.ctx, n))
	return n
}

func (s *PostgresNotificationSuite) TestRoundTrip() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	n := s.createNotification("Documento aprobado", now)

	found, err := s.store.FindByID(s.ctx, n.ID)
	s.Require().NoError(err)
	s.Equal(s.passengerID, found.PassengerID)
	s.Equal(s.tripID, found.TripID)
	s.Equal(models.TypeDocumentApproved, found.Type)
	s.False(found.IsRead)
}

func (s *PostgresNotificationSuite) TestUnknownPassengerRejected() {
	n, err := models.NewNotification(id.NewPassengerID(), models.TypeDocumentApproved, "t", "m", time.Now().UTC())
	s.Require().NoError(err)
	s.ErrorIs(s.store.Create(s.ctx, n), sentinel.ErrNotFound)
}

func (s *PostgresNotificationSuite) TestListAndReadFlow() {
	base := time.Now().UTC().Truncate(time.Microsecond)
	s.createNotification("older", base.Add(-time.Hour))
	newest := s.createNotification("newest", base)

	list, err := s.store.ListByPassenger(s.ctx, s.passengerID, 1)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("newest", list[0].Title)

	s.Require().NoError(s.store.MarkRead(s.ctx, newest.ID))
	count, err := s.store.CountUnread(s.ctx, s.passengerID)
	s.Require().NoError(err)
	s.Equal(1, count)

	s.Require().NoError(s.store.MarkAllRead(s.ctx, s.passengerID))
	count, err = s.store.CountUnread(s.ctx, s.passengerID)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *PostgresNotificationSuite) TestSubscriptionUpsert() {
	userID := id.NewUserID()
	now := time.Now().UTC().Truncate(time.Microsecond)
	sub := &models.PushSubscription{
		ID:       id.NewSubscriptionID(),
		UserID:   userID,
		Endpoint: "https://push.example/reg/a",
		P256dh:   "key", Auth: "secret",
		CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(s.store.UpsertSubscription(s.ctx, sub))

	refreshed := &models.PushSubscription{
		ID:       id.NewSubscriptionID(),
		UserID:   userID,
		Endpoint: "https://push.example/reg/a",
		P256dh:   "rotated", Auth: "rotated",
		Device:    "Firefox on Linux",
		CreatedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute),
	}
	s.Require().NoError(s.store.UpsertSubscription(s.ctx, refreshed))
	s.Equal(sub.ID, refreshed.ID)
	s.True(refreshed.CreatedAt.Equal(now))

	list, err := s.store.ListSubscriptions(s.ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("rotated", list[0].P256dh)

	s.Require().NoError(s.store.DeleteSubscription(s.ctx, sub.ID))
	s.ErrorIs(s.store.DeleteSubscription(s.ctx, sub.ID), sentinel.ErrNotFound)
}
