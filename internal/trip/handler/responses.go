package handler

import (
	"time"

	"triex/internal/trip/models"
)

// TripResponse is the wire shape for a trip. The operational status is
// derived for the request's "today", never read from storage.
type TripResponse struct {
	ID                string                  `json:"id"`
	Name              string                  `json:"name"`
	Destination       string                  `json:"destination"`
	InternalCode      string                  `json:"internal_code,omitempty"`
	BrandSub          string                  `json:"brand_sub,omitempty"`
	StartDate         string                  `json:"start_date,omitempty"`
	EndDate           string                  `json:"end_date,omitempty"`
	StatusOperational string                  `json:"status_operational"`
	StatusCommercial  string                  `json:"status_commercial"`
	IncludesText      string                  `json:"includes_text,omitempty"`
	ExcludesText      string                  `json:"excludes_text,omitempty"`
	Coordinator       models.Coordinator      `json:"coordinator"`
	BannerPath        string                  `json:"banner_path,omitempty"`
	NextStepOverride  models.NextStepOverride `json:"next_step_override"`
	Archived          bool                    `json:"archived"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// FromTrip builds the response for "today" as pinned on the request.
func FromTrip(trip *models.Trip, today time.Time) TripResponse {
	resp := TripResponse{
		ID:                trip.ID.String(),
		Name:              trip.Name,
		Destination:       trip.Destination,
		InternalCode:      trip.InternalCode,
		BrandSub:          trip.BrandSub,
		StatusOperational: trip.OperationalStatus(today).String(),
		StatusCommercial:  trip.StatusCommercial.String(),
		IncludesText:      trip.IncludesText,
		ExcludesText:      trip.ExcludesText,
		Coordinator:       trip.Coordinator,
		BannerPath:        trip.BannerPath,
		NextStepOverride:  trip.NextStep,
		Archived:          trip.IsArchived(),
		CreatedAt:         trip.CreatedAt,
		UpdatedAt:         trip.UpdatedAt,
	}
	if trip.StartDate != nil {
		resp.StartDate = trip.StartDate.Format(dateFormat)
	}
	if trip.EndDate != nil {
		resp.EndDate = trip.EndDate.Format(dateFormat)
	}
	return resp
}

// FromTrips maps a listing.
func FromTrips(trips []*models.Trip, today time.Time) []TripResponse {
	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, FromTrip(trip, today))
	}
	return out
}

// PassengerListResponse carries assignment IDs.
type PassengerListResponse struct {
	PassengerIDs []string `json:"passenger_ids"`
}
