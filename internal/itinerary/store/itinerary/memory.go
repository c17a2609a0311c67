// Package itinerary provides persistence for itinerary days and items.
// Reads always return active rows ascending by sort position; gaps left by
// soft deletion are expected and preserved.
package itinerary

import (
	"context"
	"sort"
	"sync"

	"triex/internal/itinerary/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// InMemory keeps days and items in mutex-guarded maps.
type InMemory struct {
	mu    sync.RWMutex
	days  map[id.DayID]models.Day
	items map[id.ItemID]models.Item
}

func NewInMemory() *InMemory {
	return &InMemory{
		days:  make(map[id.DayID]models.Day),
		items: make(map[id.ItemID]models.Item),
	}
}

func (s *InMemory) CreateDay(_ context.Context, day *models.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.days[day.ID]; ok {
		return sentinel.ErrConflict
	}
	s.days[day.ID] = *day
	return nil
}

func (s *InMemory) FindDay(_ context.Context, dayID id.DayID) (*models.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day, ok := s.days[dayID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &day, nil
}

func (s *InMemory) ListDays(_ context.Context, tripID id.TripID) ([]*models.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var days []*models.Day
	for _, day := range s.days {
		if day.TripID != tripID || day.IsArchived() {
			continue
		}
		d := day
		days = append(days, &d)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].SortIndex < days[j].SortIndex })
	return days, nil
}

func (s *InMemory) UpdateDay(_ context.Context, day *models.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.days[day.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.days[day.ID] = *day
	return nil
}

// ReorderDays applies a reorder batch under one lock. Every target must be
// active and carry the expected version before any position changes; a stale
// version means another session reordered first and nothing is written.
func (s *InMemory) ReorderDays(_ context.Context, updates []models.DaySort) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, update := range updates {
		day, ok := s.days[update.DayID]
		if !ok || day.IsArchived() || day.Version != update.ExpectedVersion {
			return sentinel.ErrVersionMismatch
		}
	}
	for _, update := range updates {
		day := s.days[update.DayID]
		day.SortIndex = update.SortIndex
		day.Version++
		s.days[update.DayID] = day
	}
	return nil
}

func (s *InMemory) CreateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; ok {
		return sentinel.ErrConflict
	}
	s.items[item.ID] = *item
	return nil
}

func (s *InMemory) FindItem(_ context.Context, itemID id.ItemID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &item, nil
}

func (s *InMemory) ListItems(_ context.Context, dayID id.DayID) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []*models.Item
	for _, item := range s.items {
		if item.DayID != dayID || item.IsArchived() {
			continue
		}
		it := item
		items = append(items, &it)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].SortIndex < items[j].SortIndex })
	return items, nil
}

func (s *InMemory) UpdateItem(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.items[item.ID] = *item
	return nil
}

// ReorderItems is the item counterpart of ReorderDays.
func (s *InMemory) ReorderItems(_ context.Context, updates []models.ItemSort) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, update := range updates {
		item, ok := s.items[update.ItemID]
		if !ok || item.IsArchived() || item.Version != update.ExpectedVersion {
			return sentinel.ErrVersionMismatch
		}
	}
	for _, update := range updates {
		item := s.items[update.ItemID]
		item.SortIndex = update.SortIndex
		item.Version++
		s.items[update.ItemID] = item
	}
	return nil
}
