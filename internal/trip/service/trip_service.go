package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"triex/internal/audit"
	"triex/internal/platform/cache"
	"triex/internal/trip/models"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// TripInput carries every field of the trip form. Create and update take the
// same shape; absent optional fields keep their zero value.
type TripInput struct {
	Name             string
	Destination      string
	InternalCode     string
	BrandSub         string
	StartDate        *time.Time
	EndDate          *time.Time
	StatusCommercial string
	IncludesText     string
	ExcludesText     string
	Coordinator      models.Coordinator
	BannerPath       string
	NextStep         models.NextStepOverride
}

// CreateTrip registers a new trip. Staff only.
func (s *Service) CreateTrip(ctx context.Context, input TripInput) (*models.Trip, error) {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	trip, err := models.NewTrip(id.TripID(uuid.New()), input.Name, input.Destination, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := applyInput(trip, input); err != nil {
		return nil, err
	}
	trip.CreatedBy = sess.UserID
	trip.UpdatedBy = sess.UserID

	if err := s.trips.Create(ctx, trip); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "trip already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create trip")
	}

	if s.metrics != nil {
		s.metrics.TripsCreated.Inc()
	}
	s.emitAudit(ctx, "trip.created", trip.ID.String(), trip.Name)
	s.invalidateTrip(ctx, trip.ID)
	return trip, nil
}

// GetTrip returns one trip. Staff see any trip, archived included;
// passengers see only active trips they are assigned to.
func (s *Service) GetTrip(ctx context.Context, tripID id.TripID) (*models.Trip, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	if s.cache != nil && !sess.IsStaff() {
		var cached models.Trip
		if found, err := s.cache.GetJSON(ctx, cache.TripKey(tripID.String()), &cached); err == nil && found {
			if err := s.authorizeRead(ctx, sess, &cached); err != nil {
				return nil, err
			}
			return &cached, nil
		}
	}

	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "trip not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trip")
	}
	if err := s.authorizeRead(ctx, sess, trip); err != nil {
		return nil, err
	}

	if s.cache != nil && !trip.IsArchived() {
		if err := s.cache.SetJSON(ctx, cache.TripKey(tripID.String()), trip, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "trip cache population failed", "trip_id", tripID, "error", err)
		}
	}
	return trip, nil
}

// ListTrips returns trips for the admin console. Staff only. The default
// active listing is served from the cache; filtered variants always hit the
// store.
func (s *Service) ListTrips(ctx context.Context, filter models.Filter) ([]*models.Trip, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}

	cacheable := s.cache != nil && filter.IsDefault()
	if cacheable {
		var cached []*models.Trip
		if found, err := s.cache.GetJSON(ctx, cache.TripListKey(), &cached); err == nil && found {
			return cached, nil
		}
	}

	trips, err := s.trips.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list trips")
	}

	if cacheable {
		if err := s.cache.SetJSON(ctx, cache.TripListKey(), trips, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "trip list cache population failed", "error", err)
		}
	}
	return trips, nil
}

// MyTrips returns the caller's assigned trips, soonest first.
func (s *Service) MyTrips(ctx context.Context) ([]*models.Trip, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if sess.PassengerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger")
	}
	trips, err := s.trips.ListByPassenger(ctx, sess.PassengerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list trips")
	}
	return trips, nil
}

// PrimaryTrip picks the trip the passenger dashboard should open on. It
// prefers a trip in progress, then the nearest upcoming one, then the most
// recently finished. The pick is cached per passenger and evicted by any
// write that touches their trips.
func (s *Service) PrimaryTrip(ctx context.Context) (*models.Trip, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}

	if s.cache != nil && !sess.PassengerID.IsNil() {
		var cached models.Trip
		if found, err := s.cache.GetJSON(ctx, cache.DashboardKey(sess.PassengerID.String()), &cached); err == nil && found {
			return &cached, nil
		}
	}

	trips, err := s.MyTrips(ctx)
	if err != nil {
		return nil, err
	}
	primary := models.SelectPrimary(trips, requestcontext.Now(ctx))
	if primary == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no trips assigned")
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.DashboardKey(sess.PassengerID.String()), primary, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "dashboard cache population failed", "passenger_id", sess.PassengerID, "error", err)
		}
	}
	return primary, nil
}

// UpdateTrip overwrites the trip form fields. Staff only.
func (s *Service) UpdateTrip(ctx context.Context, tripID id.TripID, input TripInput) (*models.Trip, error) {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	trip, err := s.findTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	trip.Name = input.Name
	trip.Destination = input.Destination
	if err := applyInput(trip, input); err != nil {
		return nil, err
	}
	trip.UpdatedBy = sess.UserID
	trip.UpdatedAt = requestcontext.Now(ctx)
	if err := trip.Validate(); err != nil {
		return nil, err
	}

	if err := s.trips.Update(ctx, trip); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "trip not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update trip")
	}

	s.emitAudit(ctx, "trip.updated", trip.ID.String(), trip.Name)
	s.invalidateTrip(ctx, trip.ID)
	return trip, nil
}

// ArchiveTrip soft-deletes a trip. Listings and passenger reads stop showing
// it; nothing is destroyed. Staff only.
func (s *Service) ArchiveTrip(ctx context.Context, tripID id.TripID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}

	trip, err := s.findTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "trip is already archived")
	}

	now := requestcontext.Now(ctx)
	trip.ArchivedAt = &now
	trip.UpdatedBy = sess.UserID
	trip.UpdatedAt = now
	if err := s.trips.Update(ctx, trip); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to archive trip")
	}

	if s.metrics != nil {
		s.metrics.TripsArchived.Inc()
	}
	s.emitAudit(ctx, "trip.archived", trip.ID.String(), trip.Name)
	s.invalidateTrip(ctx, trip.ID)
	return nil
}

// RestoreTrip undoes an archive. Staff only.
func (s *Service) RestoreTrip(ctx context.Context, tripID id.TripID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}

	trip, err := s.findTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if !trip.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "trip is not archived")
	}

	trip.ArchivedAt = nil
	trip.UpdatedBy = sess.UserID
	trip.UpdatedAt = requestcontext.Now(ctx)
	if err := s.trips.Update(ctx, trip); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to restore trip")
	}

	s.emitAudit(ctx, "trip.restored", trip.ID.String(), trip.Name)
	s.invalidateTrip(ctx, trip.ID)
	return nil
}

// DeleteTrip permanently removes a trip and everything hanging off it.
// Admins only; operators must archive instead.
func (s *Service) DeleteTrip(ctx context.Context, tripID id.TripID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}
	if sess.Role != id.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "permanent deletion requires an admin")
	}

	trip, err := s.findTrip(ctx, tripID)
	if err != nil {
		return err
	}

	if err := s.trips.Delete(ctx, tripID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "trip not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete trip")
	}

	s.emitAudit(ctx, "trip.deleted", tripID.String(), trip.Name)
	s.invalidateTrip(ctx, tripID)
	return nil
}

// ReplacePassengers reconciles the assignment set to exactly the given
// passengers. Failures on individual passengers do not abort the rest; the
// operation reports how many changes could not be applied.
func (s *Service) ReplacePassengers(ctx context.Context, tripID id.TripID, desired []id.PassengerID) error {
	if _, err := s.requireStaff(ctx); err != nil {
		return err
	}
	if _, err := s.findTrip(ctx, tripID); err != nil {
		return err
	}

	current, err := s.trips.ListPassengerIDs(ctx, tripID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load assignments")
	}

	currentSet := make(map[id.PassengerID]bool, len(current))
	for _, passengerID := range current {
		currentSet[passengerID] = true
	}
	desiredSet := make(map[id.PassengerID]bool, len(desired))
	for _, passengerID := range desired {
		desiredSet[passengerID] = true
	}

	var failed int
	for _, passengerID := range desired {
		if currentSet[passengerID] {
			continue
		}
		if err := s.trips.AssignPassenger(ctx, tripID, passengerID); err != nil {
			failed++
			s.logger.WarnContext(ctx, "passenger assignment failed",
				"trip_id", tripID, "passenger_id", passengerID, "error", err)
			continue
		}
		s.invalidateDashboard(ctx, passengerID)
	}
	for _, passengerID := range current {
		if desiredSet[passengerID] {
			continue
		}
		if err := s.trips.UnassignPassenger(ctx, tripID, passengerID); err != nil {
			failed++
			s.logger.WarnContext(ctx, "passenger unassignment failed",
				"trip_id", tripID, "passenger_id", passengerID, "error", err)
			continue
		}
		s.invalidateDashboard(ctx, passengerID)
	}

	s.emitAudit(ctx, "trip.passengers_replaced", tripID.String(), "")
	s.invalidateTrip(ctx, tripID)
	if failed > 0 {
		return dErrors.Newf(dErrors.CodeInternal, "%d assignment changes failed", failed)
	}
	return nil
}

// ListPassengers returns the IDs assigned to a trip. Staff only.
func (s *Service) ListPassengers(ctx context.Context, tripID id.TripID) ([]id.PassengerID, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	ids, err := s.trips.ListPassengerIDs(ctx, tripID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assignments")
	}
	return ids, nil
}

func (s *Service) requireStaff(ctx context.Context) (requestcontext.Session, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return requestcontext.Session{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !sess.IsStaff() {
		return requestcontext.Session{}, dErrors.New(dErrors.CodeForbidden, "staff role required")
	}
	return sess, nil
}

func (s *Service) authorizeRead(ctx context.Context, sess requestcontext.Session, trip *models.Trip) error {
	if sess.IsStaff() {
		return nil
	}
	if trip.IsArchived() {
		return dErrors.New(dErrors.CodeNotFound, "trip not found")
	}
	if sess.PassengerID.IsNil() {
		return dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger")
	}
	assigned, err := s.trips.ListPassengerIDs(ctx, trip.ID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check assignment")
	}
	for _, passengerID := range assigned {
		if passengerID == sess.PassengerID {
			return nil
		}
	}
	// Hide existence from unassigned passengers.
	return dErrors.New(dErrors.CodeNotFound, "trip not found")
}

func (s *Service) findTrip(ctx context.Context, tripID id.TripID) (*models.Trip, error) {
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "trip not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load trip")
	}
	return trip, nil
}

func (s *Service) emitAudit(ctx context.Context, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		OccurredAt: requestcontext.Now(ctx),
		UserID:     requestcontext.UserID(ctx),
		Action:     action,
		Entity:     "trip",
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}

// invalidateTrip evicts every cached payload a trip write can stale: the trip
// detail, the admin listing, and the dashboards of assigned passengers.
func (s *Service) invalidateTrip(ctx context.Context, tripID id.TripID) {
	if s.cache == nil {
		return
	}
	keys := []string{cache.TripKey(tripID.String()), cache.TripListKey()}
	if assigned, err := s.trips.ListPassengerIDs(ctx, tripID); err == nil {
		for _, passengerID := range assigned {
			keys = append(keys, cache.DashboardKey(passengerID.String()))
		}
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "trip_id", tripID, "error", err)
	}
}

func (s *Service) invalidateDashboard(ctx context.Context, passengerID id.PassengerID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.DashboardKey(passengerID.String())); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "passenger_id", passengerID, "error", err)
	}
}

func applyInput(trip *models.Trip, input TripInput) error {
	commercial, err := models.ParseCommercialStatus(input.StatusCommercial)
	if err != nil {
		return err
	}
	trip.InternalCode = input.InternalCode
	trip.BrandSub = input.BrandSub
	trip.StartDate = input.StartDate
	trip.EndDate = input.EndDate
	trip.StatusCommercial = commercial
	trip.IncludesText = input.IncludesText
	trip.ExcludesText = input.ExcludesText
	trip.Coordinator = input.Coordinator
	trip.BannerPath = input.BannerPath
	trip.NextStep = input.NextStep
	if trip.NextStep.Type == "" {
		trip.NextStep.Type = models.NextStepInfo
	}
	return trip.Validate()
}
