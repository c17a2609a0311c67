// Package passenger provides storage for passenger records.
package passenger

import (
	"context"
	"sort"
	"sync"

	"triex/internal/passenger/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// InMemory is a map-backed store used by unit tests and local development.
type InMemory struct {
	mu         sync.RWMutex
	passengers map[id.PassengerID]models.Passenger
}

func NewInMemory() *InMemory {
	return &InMemory{passengers: make(map[id.PassengerID]models.Passenger)}
}

func (s *InMemory) Create(_ context.Context, p *models.Passenger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.passengers[p.ID]; ok {
		return sentinel.ErrConflict
	}
	s.passengers[p.ID] = *p
	return nil
}

func (s *InMemory) FindByID(_ context.Context, passengerID id.PassengerID) (*models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.passengers[passengerID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemory) FindByProfile(_ context.Context, profileID id.UserID) (*models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.passengers {
		if p.ProfileID == profileID && !p.IsArchived() {
			copied := p
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) Update(_ context.Context, p *models.Passenger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.passengers[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.passengers[p.ID] = *p
	return nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.Passenger
	for _, p := range s.passengers {
		if !filter.Matches(&p) {
			continue
		}
		copied := p
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].LastName != list[j].LastName {
			return list[i].LastName < list[j].LastName
		}
		return list[i].FirstName < list[j].FirstName
	})
	return list, nil
}
