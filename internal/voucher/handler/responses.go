package handler

import (
	"time"

	"triex/internal/voucher/models"
)

// VoucherResponse is the wire shape of a voucher.
type VoucherResponse struct {
	ID           string `json:"id"`
	TripID       string `json:"trip_id"`
	PassengerID  string `json:"passenger_id,omitempty"`
	VoucherType  string `json:"voucher_type"`
	Title        string `json:"title"`
	ProviderName string `json:"provider_name,omitempty"`
	ServiceDate  string `json:"service_date,omitempty"`
	Format       string `json:"format"`
	ExternalURL  string `json:"external_url,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	Visibility   string `json:"visibility"`
	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func fromVoucher(v *models.Voucher) VoucherResponse {
	resp := VoucherResponse{
		ID:           v.ID.String(),
		TripID:       v.TripID.String(),
		VoucherType:  v.VoucherType,
		Title:        v.Title,
		ProviderName: v.ProviderName,
		Format:       string(v.Format),
		ExternalURL:  v.ExternalURL,
		FilePath:     v.FilePath,
		Visibility:   string(v.Visibility),
		Status:       string(v.Status),
		Notes:        v.Notes,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
	}
	if !v.PassengerID.IsNil() {
		resp.PassengerID = v.PassengerID.String()
	}
	if v.ServiceDate != nil {
		resp.ServiceDate = v.ServiceDate.Format(dateFormat)
	}
	return resp
}

func fromVouchers(list []*models.Voucher) []VoucherResponse {
	out := make([]VoucherResponse, 0, len(list))
	for _, v := range list {
		out = append(out, fromVoucher(v))
	}
	return out
}
