package handler

import (
	"time"

	"triex/internal/notification/models"
)

// NotificationResponse is the wire shape of an inbox entry.
type NotificationResponse struct {
	ID        string `json:"id"`
	TripID    string `json:"trip_id,omitempty"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

func fromNotification(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if !n.TripID.IsNil() {
		resp.TripID = n.TripID.String()
	}
	return resp
}

func fromNotifications(list []*models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, fromNotification(n))
	}
	return out
}

// UnreadCountResponse backs the portal badge counter.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// SubscriptionResponse is the wire shape of a registered device.
type SubscriptionResponse struct {
	ID        string `json:"id"`
	Endpoint  string `json:"endpoint"`
	Device    string `json:"device,omitempty"`
	CreatedAt string `json:"created_at"`
}

func fromSubscription(sub *models.PushSubscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        sub.ID.String(),
		Endpoint:  sub.Endpoint,
		Device:    sub.Device,
		CreatedAt: sub.CreatedAt.Format(time.RFC3339),
	}
}

func fromSubscriptions(list []*models.PushSubscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(list))
	for _, sub := range list {
		out = append(out, fromSubscription(sub))
	}
	return out
}
