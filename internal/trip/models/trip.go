// Package models holds the trip aggregate and its derived-status logic.
package models

import (
	"strings"
	"time"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// CommercialStatus is the sales state staff manage by hand, independent of
// the date-derived operational status.
type CommercialStatus string

const (
	CommercialOpen   CommercialStatus = "CON_CUPO"
	CommercialFull   CommercialStatus = "COMPLETO"
	CommercialClosed CommercialStatus = "CERRADO"
)

var validCommercialStatuses = map[CommercialStatus]bool{
	CommercialOpen:   true,
	CommercialFull:   true,
	CommercialClosed: true,
}

// ParseCommercialStatus validates external input against the allowlist.
func ParseCommercialStatus(s string) (CommercialStatus, error) {
	if s == "" {
		return CommercialOpen, nil
	}
	cs := CommercialStatus(s)
	if !validCommercialStatuses[cs] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid commercial status")
	}
	return cs, nil
}

func (s CommercialStatus) String() string { return string(s) }

// NextStepType classifies the call-to-action card on the passenger dashboard.
type NextStepType string

const (
	NextStepDocs NextStepType = "DOCS"
	NextStepInfo NextStepType = "INFO"
	NextStepNone NextStepType = "NONE"
)

// NextStepOverride lets staff replace the computed call-to-action wholesale.
// When Enabled is false the remaining fields are ignored.
type NextStepOverride struct {
	Enabled  bool         `json:"enabled"`
	Type     NextStepType `json:"type"`
	Title    string       `json:"title"`
	Detail   string       `json:"detail"`
	CTALabel string       `json:"cta_label"`
	CTARoute string       `json:"cta_route"`
}

// NextStep is the call-to-action card a passenger sees on their dashboard,
// either computed from document completeness or pinned by staff.
type NextStep struct {
	Type     NextStepType `json:"type"`
	Title    string       `json:"title"`
	Detail   string       `json:"detail"`
	CTALabel string       `json:"cta_label"`
	CTARoute string       `json:"cta_route"`
}

// Resolve returns the staff override when it is enabled, the computed card
// otherwise.
func (o NextStepOverride) Resolve(computed NextStep) NextStep {
	if !o.Enabled {
		return computed
	}
	return NextStep{
		Type:     o.Type,
		Title:    o.Title,
		Detail:   o.Detail,
		CTALabel: o.CTALabel,
		CTARoute: o.CTARoute,
	}
}

// Coordinator is the on-trip contact shown to passengers.
type Coordinator struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Trip is a scheduled travel package. The operational status is derived from
// the date range at read time (see ClassifyStatus); it is never stored.
type Trip struct {
	ID               id.TripID
	Name             string
	Destination      string
	InternalCode     string
	BrandSub         string
	StartDate        *time.Time // date-granularity; nil until staff set it
	EndDate          *time.Time
	StatusCommercial CommercialStatus
	IncludesText     string
	ExcludesText     string
	Coordinator      Coordinator
	BannerPath       string
	NextStep         NextStepOverride
	CreatedBy        id.UserID
	UpdatedBy        id.UserID
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ArchivedAt       *time.Time
}

// NewTrip validates the fields staff must provide.
func NewTrip(tripID id.TripID, name, destination string, now time.Time) (*Trip, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "trip name is required")
	}
	return &Trip{
		ID:               tripID,
		Name:             name,
		Destination:      strings.TrimSpace(destination),
		StatusCommercial: CommercialOpen,
		NextStep:         NextStepOverride{Type: NextStepInfo},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsArchived reports whether the trip is soft-deleted.
func (t *Trip) IsArchived() bool { return t.ArchivedAt != nil }

// OperationalStatus derives the lifecycle state for "today". Trips without a
// complete date range have not started by definition.
func (t *Trip) OperationalStatus(today time.Time) OperationalStatus {
	if t.StartDate == nil || t.EndDate == nil {
		return StatusPrevio
	}
	return ClassifyStatus(*t.StartDate, *t.EndDate, today)
}

// Validate checks date coherence on writes. Either both dates are set or the
// range is considered absent.
func (t *Trip) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "trip name is required")
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "end date cannot precede start date")
	}
	if !validCommercialStatuses[t.StatusCommercial] {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid commercial status")
	}
	return nil
}
