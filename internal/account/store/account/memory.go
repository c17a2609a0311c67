// Package account provides storage for portal user accounts.
package account

import (
	"context"
	"sort"
	"strings"
	"sync"

	"triex/internal/account/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// InMemory is a map-backed store used by unit tests and local development.
type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]models.User)}
}

func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return sentinel.ErrConflict
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemory) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *InMemory) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.User
	for _, u := range s.users {
		if !filter.Matches(&u) {
			continue
		}
		copied := u
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}
