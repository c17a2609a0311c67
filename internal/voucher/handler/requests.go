package handler

import (
	"strings"
	"time"

	"triex/internal/voucher/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

const dateFormat = "2006-01-02"

// VoucherRequest creates or updates a voucher.
type VoucherRequest struct {
	PassengerID  string `json:"passenger_id,omitempty"`
	VoucherType  string `json:"voucher_type"`
	Title        string `json:"title"`
	ProviderName string `json:"provider_name"`
	ServiceDate  string `json:"service_date,omitempty"`
	Format       string `json:"format"`
	ExternalURL  string `json:"external_url,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	Visibility   string `json:"visibility,omitempty"`
	Notes        string `json:"notes,omitempty"`

	parsedPassenger id.PassengerID
	parsedDate      *time.Time
}

func (r *VoucherRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if r.PassengerID != "" {
		passengerID, err := id.ParsePassengerID(r.PassengerID)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid passenger_id")
		}
		r.parsedPassenger = passengerID
	}
	if r.ServiceDate != "" {
		date, err := time.Parse(dateFormat, r.ServiceDate)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "service_date must be YYYY-MM-DD")
		}
		r.parsedDate = &date
	}
	return nil
}

func (r *VoucherRequest) ToInput() service.Input {
	return service.Input{
		PassengerID:  r.parsedPassenger,
		VoucherType:  r.VoucherType,
		Title:        r.Title,
		ProviderName: r.ProviderName,
		ServiceDate:  r.parsedDate,
		Format:       r.Format,
		ExternalURL:  r.ExternalURL,
		FilePath:     r.FilePath,
		Visibility:   r.Visibility,
		Notes:        r.Notes,
	}
}
