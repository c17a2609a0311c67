package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"triex/internal/audit"
	"triex/internal/platform/cache"
	"triex/internal/trip/models"
	tripstore "triex/internal/trip/store/trip"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/requestcontext"
)

func staffCtx() context.Context {
	return requestcontext.WithSession(context.Background(), requestcontext.Session{
		UserID: id.NewUserID(),
		Role:   id.RoleOperator,
	})
}

func adminCtx() context.Context {
	return requestcontext.WithSession(context.Background(), requestcontext.Session{
		UserID: id.NewUserID(),
		Role:   id.RoleAdmin,
	})
}

func passengerCtx(passengerID id.PassengerID) context.Context {
	return requestcontext.WithSession(context.Background(), requestcontext.Session{
		UserID:      id.NewUserID(),
		PassengerID: passengerID,
		Role:        id.RolePassenger,
	})
}

type fixture struct {
	svc   *Service
	store *tripstore.InMemory
	cache *cache.Memory
	audit *audit.InMemoryStore
}

func newFixture() *fixture {
	store := tripstore.NewInMemory()
	mem := cache.NewMemory()
	auditStore := audit.NewInMemoryStore()
	svc := New(store,
		WithCache(mem, time.Minute),
		WithAuditPublisher(audit.NewPublisher(auditStore)),
	)
	return &fixture{svc: svc, store: store, cache: mem, audit: auditStore}
}

func TestCreateTrip(t *testing.T) {
	t.Run("creates with defaults", func(t *testing.T) {
		f := newFixture()
		trip, err := f.svc.CreateTrip(staffCtx(), TripInput{Name: "Egresados 2026", Destination: "Bariloche"})
		require.NoError(t, err)
		assert.Equal(t, models.CommercialOpen, trip.StatusCommercial)
		assert.False(t, trip.ID.IsNil())
		assert.False(t, trip.CreatedBy.IsNil())

		events, err := f.audit.ListRecent(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "trip.created", events[0].Action)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreateTrip(staffCtx(), TripInput{Name: "  "})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid commercial status", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreateTrip(staffCtx(), TripInput{Name: "X", StatusCommercial: "ABIERTO"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects inverted date range", func(t *testing.T) {
		f := newFixture()
		start := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 0, -1)
		_, err := f.svc.CreateTrip(staffCtx(), TripInput{Name: "X", StartDate: &start, EndDate: &end})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("requires staff", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.CreateTrip(passengerCtx(id.NewPassengerID()), TripInput{Name: "X"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		_, err = f.svc.CreateTrip(context.Background(), TripInput{Name: "X"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestGetTripAuthorization(t *testing.T) {
	f := newFixture()
	ctx := staffCtx()
	trip, err := f.svc.CreateTrip(ctx, TripInput{Name: "Mendoza"})
	require.NoError(t, err)

	passengerID := id.NewPassengerID()
	outsiderID := id.NewPassengerID()
	require.NoError(t, f.svc.ReplacePassengers(ctx, trip.ID, []id.PassengerID{passengerID}))

	t.Run("staff read any trip", func(t *testing.T) {
		got, err := f.svc.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, got.ID)
	})

	t.Run("assigned passenger reads the trip", func(t *testing.T) {
		got, err := f.svc.GetTrip(passengerCtx(passengerID), trip.ID)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, got.ID)
	})

	t.Run("unassigned passenger gets not found", func(t *testing.T) {
		_, err := f.svc.GetTrip(passengerCtx(outsiderID), trip.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("archived trip hidden from passengers", func(t *testing.T) {
		require.NoError(t, f.svc.ArchiveTrip(ctx, trip.ID))
		_, err := f.svc.GetTrip(passengerCtx(passengerID), trip.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

		// Staff still see it.
		got, err := f.svc.GetTrip(ctx, trip.ID)
		require.NoError(t, err)
		assert.True(t, got.IsArchived())
	})
}

func TestArchiveRestoreDelete(t *testing.T) {
	t.Run("archive then restore", func(t *testing.T) {
		f := newFixture()
		ctx := staffCtx()
		trip, err := f.svc.CreateTrip(ctx, TripInput{Name: "Calafate"})
		require.NoError(t, err)

		require.NoError(t, f.svc.ArchiveTrip(ctx, trip.ID))
		err = f.svc.ArchiveTrip(ctx, trip.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

		trips, err := f.svc.ListTrips(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Empty(t, trips)

		require.NoError(t, f.svc.RestoreTrip(ctx, trip.ID))
		trips, err = f.svc.ListTrips(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Len(t, trips, 1)
	})

	t.Run("restore of active trip conflicts", func(t *testing.T) {
		f := newFixture()
		ctx := staffCtx()
		trip, err := f.svc.CreateTrip(ctx, TripInput{Name: "Activo"})
		require.NoError(t, err)
		err = f.svc.RestoreTrip(ctx, trip.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("permanent delete requires admin", func(t *testing.T) {
		f := newFixture()
		trip, err := f.svc.CreateTrip(staffCtx(), TripInput{Name: "Borrable"})
		require.NoError(t, err)

		err = f.svc.DeleteTrip(staffCtx(), trip.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

		require.NoError(t, f.svc.DeleteTrip(adminCtx(), trip.ID))
		_, err = f.svc.GetTrip(adminCtx(), trip.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestUpdateTripInvalidatesCache(t *testing.T) {
	f := newFixture()
	ctx := staffCtx()
	trip, err := f.svc.CreateTrip(ctx, TripInput{Name: "Con cache"})
	require.NoError(t, err)

	passengerID := id.NewPassengerID()
	require.NoError(t, f.svc.ReplacePassengers(ctx, trip.ID, []id.PassengerID{passengerID}))

	// Passenger read populates the cache.
	_, err = f.svc.GetTrip(passengerCtx(passengerID), trip.ID)
	require.NoError(t, err)
	require.True(t, f.cache.Contains(cache.TripKey(trip.ID.String())))

	_, err = f.svc.UpdateTrip(ctx, trip.ID, TripInput{Name: "Renombrado"})
	require.NoError(t, err)
	assert.False(t, f.cache.Contains(cache.TripKey(trip.ID.String())))

	// Next read observes the new name.
	got, err := f.svc.GetTrip(passengerCtx(passengerID), trip.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renombrado", got.Name)
}

func TestReadCaching(t *testing.T) {
	f := newFixture()
	ctx := staffCtx()
	passengerID := id.NewPassengerID()
	start := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 17, 0, 0, 0, 0, time.UTC)
	trip, err := f.svc.CreateTrip(ctx, TripInput{Name: "Bariloche invierno", StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.NoError(t, f.svc.ReplacePassengers(ctx, trip.ID, []id.PassengerID{passengerID}))

	t.Run("filtered listings bypass the cache", func(t *testing.T) {
		_, err := f.svc.ListTrips(ctx, models.Filter{Search: "invierno"})
		require.NoError(t, err)
		assert.False(t, f.cache.Contains(cache.TripListKey()))
	})

	t.Run("default listing cached and evicted on writes", func(t *testing.T) {
		first, err := f.svc.ListTrips(ctx, models.Filter{})
		require.NoError(t, err)
		require.Len(t, first, 1)
		require.True(t, f.cache.Contains(cache.TripListKey()))

		_, err = f.svc.CreateTrip(ctx, TripInput{Name: "Cataratas primavera"})
		require.NoError(t, err)
		assert.False(t, f.cache.Contains(cache.TripListKey()))

		trips, err := f.svc.ListTrips(ctx, models.Filter{})
		require.NoError(t, err)
		assert.Len(t, trips, 2)
	})

	t.Run("dashboard pick cached per passenger", func(t *testing.T) {
		pctx := requestcontext.WithTime(passengerCtx(passengerID), time.Date(2026, 7, 12, 10, 0, 0, 0, time.UTC))
		primary, err := f.svc.PrimaryTrip(pctx)
		require.NoError(t, err)
		require.Equal(t, trip.ID, primary.ID)
		require.True(t, f.cache.Contains(cache.DashboardKey(passengerID.String())))

		again, err := f.svc.PrimaryTrip(pctx)
		require.NoError(t, err)
		assert.Equal(t, primary.ID, again.ID)

		// A staff edit evicts the pick along with the trip keys.
		_, err = f.svc.UpdateTrip(ctx, trip.ID, TripInput{Name: "Bariloche renombrado", StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		assert.False(t, f.cache.Contains(cache.DashboardKey(passengerID.String())))

		primary, err = f.svc.PrimaryTrip(pctx)
		require.NoError(t, err)
		assert.Equal(t, "Bariloche renombrado", primary.Name)
	})
}

func TestReplacePassengers(t *testing.T) {
	f := newFixture()
	ctx := staffCtx()
	trip, err := f.svc.CreateTrip(ctx, TripInput{Name: "Grupo"})
	require.NoError(t, err)

	a, b, c := id.NewPassengerID(), id.NewPassengerID(), id.NewPassengerID()

	require.NoError(t, f.svc.ReplacePassengers(ctx, trip.ID, []id.PassengerID{a, b}))
	ids, err := f.svc.ListPassengers(ctx, trip.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []id.PassengerID{a, b}, ids)

	// Replacing with {b, c} must drop a and add c.
	require.NoError(t, f.svc.ReplacePassengers(ctx, trip.ID, []id.PassengerID{b, c}))
	ids, err = f.svc.ListPassengers(ctx, trip.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []id.PassengerID{b, c}, ids)

	// Clearing the set unassigns everyone.
	require.NoError(t, f.svc.ReplacePassengers(ctx, trip.ID, nil))
	ids, err = f.svc.ListPassengers(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMyTripsAndPrimary(t *testing.T) {
	f := newFixture()
	ctx := staffCtx()
	passengerID := id.NewPassengerID()
	today := time.Date(2026, 1, 12, 15, 0, 0, 0, time.UTC)

	mk := func(name string, start, end time.Time) *models.Trip {
		trip, err := f.svc.CreateTrip(ctx, TripInput{Name: name, StartDate: &start, EndDate: &end})
		require.NoError(t, err)
		require.NoError(t, f.svc.ReplacePassengers(ctx, trip.ID, []id.PassengerID{passengerID}))
		return trip
	}

	past := mk("Pasado",
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC))
	current := mk("En curso",
		time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	_ = past

	pctx := requestcontext.WithTime(passengerCtx(passengerID), today)

	trips, err := f.svc.MyTrips(pctx)
	require.NoError(t, err)
	assert.Len(t, trips, 2)

	primary, err := f.svc.PrimaryTrip(pctx)
	require.NoError(t, err)
	assert.Equal(t, current.ID, primary.ID)

	t.Run("unlinked account is rejected", func(t *testing.T) {
		_, err := f.svc.MyTrips(staffCtx())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("no trips yields not found primary", func(t *testing.T) {
		_, err := f.svc.PrimaryTrip(passengerCtx(id.NewPassengerID()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
