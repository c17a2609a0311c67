//go:build integration

package voucher_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	tripmodels "triex/internal/trip/models"
	tripstore "triex/internal/trip/store/trip"
	"triex/internal/voucher/models"
	"triex/internal/voucher/store/voucher"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
	"triex/pkg/testutil/containers"
)

type PostgresVoucherSuite struct {
	suite.Suite
	postgres    *containers.PostgresContainer
	store       *voucher.Postgres
	trips       *tripstore.Postgres
	ctx         context.Context
	tripID      id.TripID
	passengerID id.PassengerID
}

func TestPostgresVoucherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresVoucherSuite))
}

func (s *PostgresVoucherSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = voucher.NewPostgres(s.postgres.DB)
	s.trips = tripstore.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresVoucherSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx, "vouchers", "passengers", "trips")
	s.Require().NoError(err)

	trip, err := tripmodels.NewTrip(id.NewTripID(), "Integración", "Salta", time.Now().UTC())
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

func (s *PostgresVoucherSuite) newVoucher(title string, passengerID id.PassengerID, serviceDate *time.Time) *models.Voucher {
	now := time.Now().UTC().Truncate(time.Microsecond)
	v := &models.Voucher{
		ID:           id.NewVoucherID(),
		TripID:       s.tripID,
		PassengerID:  passengerID,
		VoucherType:  "hotel",
		Title:        title,
		ProviderName: "Proveedor SA",
		ServiceDate:  serviceDate,
		Format:       models.FormatPDF,
		FilePath:     "vouchers/" + title + ".pdf",
		Visibility:   models.VisibilityPassengerOnly,
		Status:       models.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if passengerID.IsNil() {
		v.Visibility = models.VisibilityAllTripPassengers
	}
	s.Require().NoError(s.store.Create(s.ctx, v))
	return v
}

func (s *PostgresVoucherSuite) TestRoundTrip() {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	v := s.newVoucher("Hotel Colonial", s.passengerID, &date)

	found, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.Title, found.Title)
	s.Equal(s.passengerID, found.PassengerID)
	s.Require().NotNil(found.ServiceDate)
	s.True(found.ServiceDate.Equal(date))
	s.Equal(models.VisibilityPassengerOnly, found.Visibility)
}

func (s *PostgresVoucherSuite) TestTripWideVoucherHasNullPassenger() {
	v := s.newVoucher("Group transfer", id.PassengerID{}, nil)

	found, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.True(found.PassengerID.IsNil())
	s.Nil(found.ServiceDate)
}

func (s *PostgresVoucherSuite) TestCreateConstraints() {
	v := s.newVoucher("Hotel Colonial", s.passengerID, nil)
	s.ErrorIs(s.store.Create(s.ctx, v), sentinel.ErrConflict)

	orphan := *v
	orphan.ID = id.NewVoucherID()
	orphan.TripID = id.NewTripID()
	s.ErrorIs(s.store.Create(s.ctx, &orphan), sentinel.ErrNotFound)
}

func (s *PostgresVoucherSuite) TestUpdate() {
	v := s.newVoucher("Hotel Colonial", s.passengerID, nil)

	v.Title = "Hotel Colonial (upgraded)"
	v.Status = models.StatusArchived
	v.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.Update(s.ctx, v))

	found, err := s.store.FindByID(s.ctx, v.ID)
	s.Require().NoError(err)
	s.Equal("Hotel Colonial (upgraded)", found.Title)
	s.Equal(models.StatusArchived, found.Status)

	s.ErrorIs(s.store.Update(s.ctx, &models.Voucher{ID: id.NewVoucherID()}), sentinel.ErrNotFound)
}

func (s *PostgresVoucherSuite) TestListByTripOrdering() {
	later := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	s.newVoucher("undated", id.PassengerID{}, nil)
	s.newVoucher("second", s.passengerID, &later)
	s.newVoucher("first", s.passengerID, &earlier)

	list, err := s.store.ListByTrip(s.ctx, s.tripID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("first", list[0].Title)
	s.Equal("second", list[1].Title)
	s.Equal("undated", list[2].Title)
}
