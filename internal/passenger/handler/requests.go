package handler

import (
	"strings"
	"time"

	"triex/internal/passenger/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

const dateFormat = "2006-01-02"

// PassengerRequest creates or updates a passenger record.
type PassengerRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	BirthDate      string `json:"birth_date,omitempty"`
	DocumentType   string `json:"document_type"`
	DocumentNumber string `json:"document_number"`
	IsRecurrent    bool   `json:"is_recurrent"`
	Notes          string `json:"notes"`

	parsedBirth *time.Time
}

func (r *PassengerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "first_name and last_name are required")
	}
	if len(r.FirstName) > 100 || len(r.LastName) > 100 {
		return dErrors.New(dErrors.CodeInvalidInput, "names must be at most 100 characters")
	}
	if r.BirthDate != "" {
		birth, err := time.Parse(dateFormat, r.BirthDate)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "birth_date must be YYYY-MM-DD")
		}
		r.parsedBirth = &birth
	}
	return nil
}

func (r *PassengerRequest) ToInput() service.Input {
	return service.Input{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Phone:          r.Phone,
		BirthDate:      r.parsedBirth,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		IsRecurrent:    r.IsRecurrent,
		Notes:          r.Notes,
	}
}

// LinkProfileRequest attaches a portal login to a record.
type LinkProfileRequest struct {
	ProfileID string `json:"profile_id"`

	parsed id.UserID
}

func (r *LinkProfileRequest) Validate() error {
	profileID, err := id.ParseUserID(r.ProfileID)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid profile_id")
	}
	r.parsed = profileID
	return nil
}

func (r *LinkProfileRequest) Parsed() id.UserID { return r.parsed }
