// Package models holds the passenger record and its listing filter.
package models

import (
	"strings"
	"time"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// Passenger is one traveler. A passenger exists independently of portal
// logins; ProfileID links the record to a login once the traveler activates
// their account.
type Passenger struct {
	ID             id.PassengerID
	ProfileID      id.UserID // nil until the traveler activates a login
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	BirthDate      *time.Time
	DocumentType   string
	DocumentNumber string
	IsRecurrent    bool
	Notes          string
	CreatedBy      id.UserID
	UpdatedBy      id.UserID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ArchivedAt     *time.Time
}

// NewPassenger validates the required fields.
func NewPassenger(passengerID id.PassengerID, firstName, lastName, email string, now time.Time) (*Passenger, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)
	if firstName == "" || lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "first and last name are required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	return &Passenger{
		ID:        passengerID,
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Passenger) IsArchived() bool { return p.ArchivedAt != nil }

// FullName is "last, first" for admin listings.
func (p *Passenger) FullName() string { return p.LastName + ", " + p.FirstName }

// Scope selects which records a listing returns.
type Scope string

const (
	ScopeActive   Scope = "active"
	ScopeArchived Scope = "archived"
	ScopeAll      Scope = "all"
)

// Filter narrows passenger listings. Search matches name, email, and
// document number case-insensitively.
type Filter struct {
	Scope  Scope
	Search string
}

// Matches is the in-memory counterpart of the SQL listing predicate.
func (f Filter) Matches(p *Passenger) bool {
	switch f.Scope {
	case ScopeArchived:
		if !p.IsArchived() {
			return false
		}
	case ScopeAll:
	default:
		if p.IsArchived() {
			return false
		}
	}
	if f.Search == "" {
		return true
	}
	return containsFold(p.FirstName, f.Search) ||
		containsFold(p.LastName, f.Search) ||
		containsFold(p.Email, f.Search) ||
		containsFold(p.DocumentNumber, f.Search)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
