package handler

import (
	"strings"
	"time"

	"triex/internal/trip/models"
	"triex/internal/trip/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// dateFormat is the wire format for trip dates. Times are deliberately
// absent: the classifier works at day granularity.
const dateFormat = "2006-01-02"

// TripRequest is the HTTP body for creating and updating trips.
type TripRequest struct {
	Name             string `json:"name"`
	Destination      string `json:"destination"`
	InternalCode     string `json:"internal_code"`
	BrandSub         string `json:"brand_sub"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	StatusCommercial string `json:"status_commercial"`
	IncludesText     string `json:"includes_text"`
	ExcludesText     string `json:"excludes_text"`
	Coordinator      struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"coordinator"`
	BannerPath string `json:"banner_path"`
	NextStep   struct {
		Enabled  bool   `json:"enabled"`
		Type     string `json:"type"`
		Title    string `json:"title"`
		Detail   string `json:"detail"`
		CTALabel string `json:"cta_label"`
		CTARoute string `json:"cta_route"`
	} `json:"next_step_override"`

	parsedStart *time.Time
	parsedEnd   *time.Time
}

func (r *TripRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Name) > 200 {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be at most 200 characters")
	}

	var err error
	if r.parsedStart, err = parseDate(r.StartDate, "start_date"); err != nil {
		return err
	}
	if r.parsedEnd, err = parseDate(r.EndDate, "end_date"); err != nil {
		return err
	}
	if (r.parsedStart == nil) != (r.parsedEnd == nil) {
		return dErrors.New(dErrors.CodeInvalidInput, "start_date and end_date must be set together")
	}
	if r.parsedStart != nil && r.parsedEnd.Before(*r.parsedStart) {
		return dErrors.New(dErrors.CodeInvalidInput, "end_date cannot precede start_date")
	}

	if _, err := models.ParseCommercialStatus(r.StatusCommercial); err != nil {
		return err
	}

	switch models.NextStepType(r.NextStep.Type) {
	case "", models.NextStepDocs, models.NextStepInfo, models.NextStepNone:
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "invalid next_step type")
	}
	return nil
}

// ToInput converts the validated request into the service input.
func (r *TripRequest) ToInput() service.TripInput {
	return service.TripInput{
		Name:             r.Name,
		Destination:      strings.TrimSpace(r.Destination),
		InternalCode:     strings.TrimSpace(r.InternalCode),
		BrandSub:         strings.TrimSpace(r.BrandSub),
		StartDate:        r.parsedStart,
		EndDate:          r.parsedEnd,
		StatusCommercial: r.StatusCommercial,
		IncludesText:     r.IncludesText,
		ExcludesText:     r.ExcludesText,
		Coordinator: models.Coordinator{
			Name:  strings.TrimSpace(r.Coordinator.Name),
			Phone: strings.TrimSpace(r.Coordinator.Phone),
			Email: strings.TrimSpace(r.Coordinator.Email),
		},
		BannerPath: strings.TrimSpace(r.BannerPath),
		NextStep: models.NextStepOverride{
			Enabled:  r.NextStep.Enabled,
			Type:     models.NextStepType(r.NextStep.Type),
			Title:    r.NextStep.Title,
			Detail:   r.NextStep.Detail,
			CTALabel: r.NextStep.CTALabel,
			CTARoute: r.NextStep.CTARoute,
		},
	}
}

// ReplacePassengersRequest is the HTTP body for PUT /trips/{id}/passengers.
type ReplacePassengersRequest struct {
	PassengerIDs []string `json:"passenger_ids"`

	parsed []id.PassengerID
}

func (r *ReplacePassengersRequest) Validate() error {
	if len(r.PassengerIDs) > 500 {
		return dErrors.New(dErrors.CodeInvalidInput, "too many passengers")
	}
	r.parsed = make([]id.PassengerID, 0, len(r.PassengerIDs))
	for _, raw := range r.PassengerIDs {
		passengerID, err := id.ParsePassengerID(raw)
		if err != nil {
			return err
		}
		r.parsed = append(r.parsed, passengerID)
	}
	return nil
}

func (r *ReplacePassengersRequest) Parsed() []id.PassengerID { return r.parsed }

func parseDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, raw)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must be formatted YYYY-MM-DD", field)
	}
	return &t, nil
}
