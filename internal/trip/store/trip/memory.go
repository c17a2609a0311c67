// Package trip provides the persistence layer for the trip aggregate and its
// passenger assignments. Stores are pure I/O; archiving rules and permission
// checks live in the service.
package trip

import (
	"context"
	"sort"
	"sync"

	"triex/internal/trip/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// InMemory keeps trips in a mutex-guarded map. It backs unit tests and local
// development without a database.
type InMemory struct {
	mu         sync.RWMutex
	trips      map[id.TripID]models.Trip
	passengers map[id.TripID]map[id.PassengerID]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{
		trips:      make(map[id.TripID]models.Trip),
		passengers: make(map[id.TripID]map[id.PassengerID]struct{}),
	}
}

func (s *InMemory) Create(_ context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[trip.ID]; ok {
		return sentinel.ErrConflict
	}
	s.trips[trip.ID] = *trip
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tripID id.TripID) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trip, ok := s.trips[tripID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &trip, nil
}

func (s *InMemory) Update(_ context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[trip.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.trips[trip.ID] = *trip
	return nil
}

// Delete removes the trip permanently, assignments included.
func (s *InMemory) Delete(_ context.Context, tripID id.TripID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[tripID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.trips, tripID)
	delete(s.passengers, tripID)
	return nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trips := make([]*models.Trip, 0, len(s.trips))
	for _, trip := range s.trips {
		if !filter.Matches(&trip) {
			continue
		}
		t := trip
		trips = append(trips, &t)
	}
	sortTrips(trips)
	return trips, nil
}

// ListByPassenger returns the active trips a passenger is assigned to.
func (s *InMemory) ListByPassenger(_ context.Context, passengerID id.PassengerID) ([]*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var trips []*models.Trip
	for tripID, members := range s.passengers {
		if _, ok := members[passengerID]; !ok {
			continue
		}
		trip, ok := s.trips[tripID]
		if !ok || trip.IsArchived() {
			continue
		}
		t := trip
		trips = append(trips, &t)
	}
	sortTrips(trips)
	return trips, nil
}

func (s *InMemory) AssignPassenger(_ context.Context, tripID id.TripID, passengerID id.PassengerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trips[tripID]; !ok {
		return sentinel.ErrNotFound
	}
	members, ok := s.passengers[tripID]
	if !ok {
		members = make(map[id.PassengerID]struct{})
		s.passengers[tripID] = members
	}
	members[passengerID] = struct{}{}
	return nil
}

func (s *InMemory) UnassignPassenger(_ context.Context, tripID id.TripID, passengerID id.PassengerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, ok := s.passengers[tripID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := members[passengerID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(members, passengerID)
	return nil
}

func (s *InMemory) ListPassengerIDs(_ context.Context, tripID id.TripID) ([]id.PassengerID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := s.passengers[tripID]
	ids := make([]id.PassengerID, 0, len(members))
	for passengerID := range members {
		ids = append(ids, passengerID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// sortTrips orders by start date ascending with undated trips last, then by
// creation time so listings are stable.
func sortTrips(trips []*models.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		a, b := trips[i], trips[j]
		switch {
		case a.StartDate == nil && b.StartDate == nil:
			return a.CreatedAt.Before(b.CreatedAt)
		case a.StartDate == nil:
			return false
		case b.StartDate == nil:
			return true
		case !a.StartDate.Equal(*b.StartDate):
			return a.StartDate.Before(*b.StartDate)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}
