package handler

import (
	"time"

	"triex/internal/account/models"
)

type AccountResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Role       string     `json:"role"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

func fromUser(u *models.User) AccountResponse {
	return AccountResponse{
		ID:         u.ID.String(),
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role.String(),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
		ArchivedAt: u.ArchivedAt,
	}
}

func fromUsers(list []*models.User) []AccountResponse {
	out := make([]AccountResponse, 0, len(list))
	for _, u := range list {
		out = append(out, fromUser(u))
	}
	return out
}
