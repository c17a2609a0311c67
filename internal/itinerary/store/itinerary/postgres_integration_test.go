//go:build integration

package itinerary_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"triex/internal/itinerary/models"
	"triex/internal/itinerary/store/itinerary"
	tripmodels "triex/internal/trip/models"
	triptstore "triex/internal/trip/store/trip"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
	"triex/pkg/testutil/containers"
)

type PostgresItinerarySuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *itinerary.Postgres
	trips    *triptstore.Postgres
	ctx      context.Context
	tripID   id.TripID
}

func TestPostgresItinerarySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresItinerarySuite))
}

func (s *PostgresItinerarySuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = itinerary.NewPostgres(s.postgres.DB)
	s.trips = triptstore.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresItinerarySuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx, "trip_itinerary_items", "trip_itinerary_days", "trips")
	s.Require().NoError(err)

	trip, err := tripmodels.NewTrip(id.NewTripID(), "Integración", "Bariloche", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.trips.Create(s.ctx, trip))
	s.tripID = trip.ID
}

func (s *PostgresItinerarySuite) createDay(number int) *models.Day {
	day := models.NewDay(id.NewDayID(), s.tripID, number, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.CreateDay(s.ctx, day))
	return day
}

func (s *PostgresItinerarySuite) TestDayRoundTrip() {
	date := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)
	day := models.NewDay(id.NewDayID(), s.tripID, 1, time.Now().UTC().Truncate(time.Microsecond))
	day.Date = &date
	day.Title = "Llegada"
	s.Require().NoError(s.store.CreateDay(s.ctx, day))

	found, err := s.store.FindDay(s.ctx, day.ID)
	s.Require().NoError(err)
	s.Equal("Llegada", found.Title)
	s.Equal(1, found.DayNumber)
	s.Equal(1, found.Version)
	s.Require().NotNil(found.Date)
	s.True(found.Date.Equal(date))
}

func (s *PostgresItinerarySuite) TestListDaysOrdersAndFilters() {
	first := s.createDay(1)
	second := s.createDay(2)

	now := time.Now().UTC()
	second.ArchivedAt = &now
	s.Require().NoError(s.store.UpdateDay(s.ctx, second))

	days, err := s.store.ListDays(s.ctx, s.tripID)
	s.Require().NoError(err)
	s.Require().Len(days, 1)
	s.Equal(first.ID, days[0].ID)
}

func (s *PostgresItinerarySuite) TestReorderDaysIsAtomic() {
	first := s.createDay(1)
	second := s.createDay(2)

	err := s.store.ReorderDays(s.ctx, []models.DaySort{
		{DayID: first.ID, SortIndex: 2, ExpectedVersion: 1},
		{DayID: second.ID, SortIndex: 1, ExpectedVersion: 1},
	})
	s.Require().NoError(err)

	found, err := s.store.FindDay(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(2, found.SortIndex)
	s.Equal(2, found.Version)

	// A stale version anywhere rolls back the whole batch.
	err = s.store.ReorderDays(s.ctx, []models.DaySort{
		{DayID: second.ID, SortIndex: 2, ExpectedVersion: 2},
		{DayID: first.ID, SortIndex: 1, ExpectedVersion: 1},
	})
	s.Require().ErrorIs(err, sentinel.ErrVersionMismatch)

	found, err = s.store.FindDay(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(1, found.SortIndex)
	s.Equal(2, found.Version)
}

func (s *PostgresItinerarySuite) TestItemRoundTripAndSortGuard() {
	day := s.createDay(1)

	now := time.Now().UTC().Truncate(time.Microsecond)
	item := &models.Item{
		ID:              id.NewItemID(),
		TripID:          s.tripID,
		DayID:           day.ID,
		TimeOfDay:       "09:00",
		Title:           "Rafting",
		InstructionsURL: "https://example.com/rafting.pdf",
		SortIndex:       0,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.Require().NoError(s.store.CreateItem(s.ctx, item))

	found, err := s.store.FindItem(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal("Rafting", found.Title)
	s.Equal("09:00", found.TimeOfDay)
	s.Equal("https://example.com/rafting.pdf", found.InstructionsURL)
	s.Empty(found.InstructionsText)

	err = s.store.ReorderItems(s.ctx, []models.ItemSort{
		{ItemID: item.ID, SortIndex: 2, ExpectedVersion: 1},
	})
	s.Require().NoError(err)
	err = s.store.ReorderItems(s.ctx, []models.ItemSort{
		{ItemID: item.ID, SortIndex: 0, ExpectedVersion: 1},
	})
	s.Require().ErrorIs(err, sentinel.ErrVersionMismatch)

	items, err := s.store.ListItems(s.ctx, day.ID)
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(2, items[0].SortIndex)
}
