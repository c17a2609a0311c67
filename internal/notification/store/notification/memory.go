// Package notification provides storage for notifications and push
// subscriptions.
package notification

import (
	"context"
	"sort"
	"sync"

	"triex/internal/notification/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// InMemory is a map-backed store used by unit tests and local development.
type InMemory struct {
	mu            sync.RWMutex
	notifications map[id.NotificationID]models.Notification
	subscriptions map[id.SubscriptionID]models.PushSubscription
}

func NewInMemory() *InMemory {
	return &InMemory{
		notifications: make(map[id.NotificationID]models.Notification),
		subscriptions: make(map[id.SubscriptionID]models.PushSubscription),
	}
}

func (s *InMemory) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[n.ID]; ok {
		return sentinel.ErrConflict
	}
	s.notifications[n.ID] = *n
	return nil
}

func (s *InMemory) FindByID(_ context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &n, nil
}

// ListByPassenger returns a passenger's notifications, newest first. A limit
// of zero means no limit.
func (s *InMemory) ListByPassenger(_ context.Context, passengerID id.PassengerID, limit int) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.Notification
	for _, n := range s.notifications {
		if n.PassengerID != passengerID {
			continue
		}
		copied := n
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *InMemory) CountUnread(_ context.Context, passengerID id.PassengerID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if n.PassengerID == passengerID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) MarkRead(_ context.Context, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[notificationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	n.IsRead = true
	s.notifications[notificationID] = n
	return nil
}

func (s *InMemory) MarkAllRead(_ context.Context, passengerID id.PassengerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for notificationID, n := range s.notifications {
		if n.PassengerID == passengerID && !n.IsRead {
			n.IsRead = true
			s.notifications[notificationID] = n
		}
	}
	return nil
}

// UpsertSubscription inserts a subscription or, when the (user, endpoint)
// pair already exists, refreshes its keys and device while keeping the
// original ID.
func (s *InMemory) UpsertSubscription(_ context.Context, sub *models.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.subscriptions {
		if existing.UserID == sub.UserID && existing.Endpoint == sub.Endpoint {
			sub.ID = existing.ID
			sub.CreatedAt = existing.CreatedAt
			s.subscriptions[existing.ID] = *sub
			return nil
		}
	}
	s.subscriptions[sub.ID] = *sub
	return nil
}

func (s *InMemory) FindSubscription(_ context.Context, subscriptionID id.SubscriptionID) (*models.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[subscriptionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &sub, nil
}

func (s *InMemory) ListSubscriptions(_ context.Context, userID id.UserID) ([]*models.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.PushSubscription
	for _, sub := range s.subscriptions {
		if sub.UserID != userID {
			continue
		}
		copied := sub
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *InMemory) DeleteSubscription(_ context.Context, subscriptionID id.SubscriptionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscriptions[subscriptionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.subscriptions, subscriptionID)
	return nil
}
