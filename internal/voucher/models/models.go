// Package models holds voucher records: references to service confirmations
// (hotel, transport, excursions) handed to passengers. File bytes live in
// external storage; only paths and URLs are kept here.
package models

import (
	"strings"
	"time"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// Format is how the voucher content is delivered.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatImage Format = "image"
	FormatLink  Format = "link"
)

// ParseFormat validates external input.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatImage, FormatLink:
		return Format(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "format must be pdf, image, or link")
	}
}

// Visibility controls which portal accounts see the voucher.
type Visibility string

const (
	// VisibilityPassengerOnly shows the voucher to its passenger alone.
	VisibilityPassengerOnly Visibility = "passenger_only"
	// VisibilityAllTripPassengers shows it to everyone on the trip.
	VisibilityAllTripPassengers Visibility = "all_trip_passengers"
)

// ParseVisibility validates external input; empty defaults to
// passenger_only, the safe choice.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case "":
		return VisibilityPassengerOnly, nil
	case VisibilityPassengerOnly, VisibilityAllTripPassengers:
		return Visibility(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "visibility must be passenger_only or all_trip_passengers")
	}
}

// Status is the voucher lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Voucher is one service confirmation. PassengerID may be nil for trip-wide
// vouchers (e.g. a group transfer confirmation).
type Voucher struct {
	ID           id.VoucherID
	TripID       id.TripID
	PassengerID  id.PassengerID // nil for trip-wide vouchers
	VoucherType  string
	Title        string
	ProviderName string
	ServiceDate  *time.Time
	Format       Format
	ExternalURL  string
	FilePath     string
	Visibility   Visibility
	Status       Status
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate enforces the cross-field rules: link vouchers carry a URL, file
// vouchers carry a path, and passenger-only vouchers name a passenger.
func (v *Voucher) Validate() error {
	if strings.TrimSpace(v.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	switch v.Format {
	case FormatLink:
		if strings.TrimSpace(v.ExternalURL) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "link vouchers require external_url")
		}
	case FormatPDF, FormatImage:
		if strings.TrimSpace(v.FilePath) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "file vouchers require file_path")
		}
	default:
		return dErrors.New(dErrors.CodeInvalidInput, "format must be pdf, image, or link")
	}
	if v.Visibility == VisibilityPassengerOnly && v.PassengerID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "passenger_only vouchers require a passenger")
	}
	return nil
}

// VisibleTo reports whether a passenger may see the voucher.
func (v *Voucher) VisibleTo(passengerID id.PassengerID) bool {
	if v.Status != StatusActive {
		return false
	}
	if v.Visibility == VisibilityAllTripPassengers {
		return true
	}
	return v.PassengerID == passengerID
}
