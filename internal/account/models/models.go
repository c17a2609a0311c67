// Package models holds the portal user account.
package models

import (
	"strings"
	"time"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// User is one portal login. Passenger-facing data lives on the passenger
// record; this is the account staff manage from the console.
type User struct {
	ID         id.UserID
	Email      string
	FullName   string
	Role       id.Role
	CreatedBy  id.UserID
	UpdatedBy  id.UserID
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// NewUser validates the required fields.
func NewUser(userID id.UserID, email, fullName string, role id.Role, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email is required")
	}
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return &User{
		ID:        userID,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsArchived reports whether the account is disabled. A disabled account
// cannot log in but its audit trail stays attributable.
func (u *User) IsArchived() bool { return u.ArchivedAt != nil }

// Scope selects which accounts a listing returns.
type Scope string

const (
	ScopeActive   Scope = "active"
	ScopeDisabled Scope = "disabled"
	ScopeAll      Scope = "all"
)

// Filter narrows account listings. Search matches name and email
// case-insensitively; an empty Role matches every role.
type Filter struct {
	Scope  Scope
	Role   id.Role
	Search string
}

// Matches is the in-memory counterpart of the SQL listing predicate.
func (f Filter) Matches(u *User) bool {
	switch f.Scope {
	case ScopeDisabled:
		if !u.IsArchived() {
			return false
		}
	case ScopeAll:
	default:
		if u.IsArchived() {
			return false
		}
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Search == "" {
		return true
	}
	return containsFold(u.FullName, f.Search) || containsFold(u.Email, f.Search)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
