package handler

import (
	"time"

	"triex/internal/passenger/models"
)

type PassengerResponse struct {
	ID             string     `json:"id"`
	ProfileID      string     `json:"profile_id,omitempty"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	BirthDate      string     `json:"birth_date,omitempty"`
	DocumentType   string     `json:"document_type,omitempty"`
	DocumentNumber string     `json:"document_number,omitempty"`
	IsRecurrent    bool       `json:"is_recurrent"`
	Notes          string     `json:"notes,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

func fromPassenger(p *models.Passenger) PassengerResponse {
	resp := PassengerResponse{
		ID:             p.ID.String(),
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          p.Phone,
		DocumentType:   p.DocumentType,
		DocumentNumber: p.DocumentNumber,
		IsRecurrent:    p.IsRecurrent,
		Notes:          p.Notes,
		ArchivedAt:     p.ArchivedAt,
	}
	if !p.ProfileID.IsNil() {
		resp.ProfileID = p.ProfileID.String()
	}
	if p.BirthDate != nil {
		resp.BirthDate = p.BirthDate.Format(dateFormat)
	}
	return resp
}

func fromPassengers(list []*models.Passenger) []PassengerResponse {
	out := make([]PassengerResponse, 0, len(list))
	for _, p := range list {
		out = append(out, fromPassenger(p))
	}
	return out
}
