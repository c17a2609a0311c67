// Package voucher provides storage for voucher records.
package voucher

import (
	"context"
	"sort"
	"sync"

	"triex/internal/voucher/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// InMemory is a map-backed store used by unit tests and local development.
type InMemory struct {
	mu       sync.RWMutex
	vouchers map[id.VoucherID]models.Voucher
}

func NewInMemory() *InMemory {
	return &InMemory{vouchers: make(map[id.VoucherID]models.Voucher)}
}

func (s *InMemory) Create(_ context.Context, v *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[v.ID]; ok {
		return sentinel.ErrConflict
	}
	s.vouchers[v.ID] = *v
	return nil
}

func (s *InMemory) FindByID(_ context.Context, voucherID id.VoucherID) (*models.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouchers[voucherID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &v, nil
}

func (s *InMemory) Update(_ context.Context, v *models.Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[v.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.vouchers[v.ID] = *v
	return nil
}

// ListByTrip returns every voucher of a trip, archived included; services
// filter by status and visibility. Sorted by service date then creation.
func (s *InMemory) ListByTrip(_ context.Context, tripID id.TripID) ([]*models.Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.Voucher
	for _, v := range s.vouchers {
		if v.TripID != tripID {
			continue
		}
		copied := v
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch {
		case a.ServiceDate == nil && b.ServiceDate == nil:
		case a.ServiceDate == nil:
			return false
		case b.ServiceDate == nil:
			return true
		case !a.ServiceDate.Equal(*b.ServiceDate):
			return a.ServiceDate.Before(*b.ServiceDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return list, nil
}
