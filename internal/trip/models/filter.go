package models

import "strings"

// Scope selects which soft-deletion states a listing includes. The default
// zero value hides archived trips, which is what every passenger-facing read
// wants.
type Scope string

const (
	ScopeActive   Scope = "active"
	ScopeArchived Scope = "archived"
	ScopeAll      Scope = "all"
)

// Filter narrows trip listings. Empty fields match everything.
type Filter struct {
	Scope      Scope
	Commercial CommercialStatus
	Search     string
}

// IsDefault reports whether the filter is the plain active listing, the one
// variant the read cache keeps.
func (f Filter) IsDefault() bool {
	return (f.Scope == "" || f.Scope == ScopeActive) && f.Commercial == "" && f.Search == ""
}

// Matches reports whether a trip satisfies the filter. Search is a
// case-insensitive substring match on name and destination.
func (f Filter) Matches(t *Trip) bool {
	switch f.Scope {
	case ScopeArchived:
		if !t.IsArchived() {
			return false
		}
	case ScopeAll:
	default:
		if t.IsArchived() {
			return false
		}
	}
	if f.Commercial != "" && t.StatusCommercial != f.Commercial {
		return false
	}
	if f.Search != "" && !containsFold(t.Name, f.Search) && !containsFold(t.Destination, f.Search) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
