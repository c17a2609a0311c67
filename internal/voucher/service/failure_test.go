package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	tripmodels "triex/internal/trip/models"
	"triex/internal/voucher/service/mocks"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// The memory store cannot produce infrastructure failures, so the error
// translation paths are exercised against gomock stand-ins.

type mockFixture struct {
	store  *mocks.MockStore
	trips  *mocks.MockTripService
	audit  *mocks.MockAuditPublisher
	svc    *Service
	trip   *tripmodels.Trip
	ctx    context.Context
	tripID id.TripID
}

func newMockFixture(t *testing.T) *mockFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := mocks.NewMockStore(ctrl)
	trips := mocks.NewMockTripService(ctrl)
	auditPub := mocks.NewMockAuditPublisher(ctrl)

	trip, err := tripmodels.NewTrip(id.NewTripID(), "Ushuaia 2026", "Ushuaia", time.Now())
	require.NoError(t, err)

	ctx := requestcontext.WithSession(context.Background(), requestcontext.Session{
		UserID: id.NewUserID(),
		Role:   id.RoleOperator,
	})
	return &mockFixture{
		store:  store,
		trips:  trips,
		audit:  auditPub,
		svc:    New(store, trips, WithAuditPublisher(auditPub)),
		trip:   trip,
		ctx:    ctx,
		tripID: trip.ID,
	}
}

func validInput(passengerID id.PassengerID) Input {
	return Input{
		VoucherType: "hotel",
		Title:       "Hotel Albatros",
		Format:      "pdf",
		FilePath:    "vouchers/albatros.pdf",
		PassengerID: passengerID,
	}
}

func TestCreateVoucherStoreFailures(t *testing.T) {
	t.Run("foreign key miss maps to not found", func(t *testing.T) {
		f := newMockFixture(t)
		f.trips.EXPECT().GetTrip(gomock.Any(), f.tripID).Return(f.trip, nil)
		f.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrNotFound)

		_, err := f.svc.CreateVoucher(f.ctx, f.tripID, validInput(id.NewPassengerID()))
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("storage outage maps to internal", func(t *testing.T) {
		f := newMockFixture(t)
		f.trips.EXPECT().GetTrip(gomock.Any(), f.tripID).Return(f.trip, nil)
		f.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		_, err := f.svc.CreateVoucher(f.ctx, f.tripID, validInput(id.NewPassengerID()))
		assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
	})
}

func TestCreateVoucherSurvivesAuditFailure(t *testing.T) {
	f := newMockFixture(t)
	f.trips.EXPECT().GetTrip(gomock.Any(), f.tripID).Return(f.trip, nil)
	f.store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.audit.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("inbox closed"))

	voucher, err := f.svc.CreateVoucher(f.ctx, f.tripID, validInput(id.NewPassengerID()))
	require.NoError(t, err)
	assert.Equal(t, "Hotel Albatros", voucher.Title)
}

func TestTripVouchersListFailure(t *testing.T) {
	f := newMockFixture(t)
	f.trips.EXPECT().GetTrip(gomock.Any(), f.tripID).Return(f.trip, nil)
	f.store.EXPECT().ListByTrip(gomock.Any(), f.tripID).Return(nil, errors.New("connection refused"))

	_, err := f.svc.TripVouchers(f.ctx, f.tripID)
	assert.True(t, dErrors.Is(err, dErrors.CodeInternal))
}
