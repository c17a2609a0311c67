package handler

import (
	"strings"

	"triex/internal/notification/service"
	dErrors "triex/pkg/domain-errors"
)

// SubscriptionRequest mirrors the browser PushSubscription JSON: the endpoint
// plus the two encryption keys.
type SubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func (r *SubscriptionRequest) Validate() error {
	if strings.TrimSpace(r.Endpoint) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "endpoint is required")
	}
	if strings.TrimSpace(r.Keys.P256dh) == "" || strings.TrimSpace(r.Keys.Auth) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "keys.p256dh and keys.auth are required")
	}
	return nil
}

func (r *SubscriptionRequest) ToInput() service.SubscriptionInput {
	return service.SubscriptionInput{
		Endpoint: r.Endpoint,
		P256dh:   r.Keys.P256dh,
		Auth:     r.Keys.Auth,
	}
}
