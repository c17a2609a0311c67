// Package models holds the itinerary aggregate: the ordered days of a trip
// and the ordered activity items within each day.
package models

import (
	"strings"
	"time"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// Day is one itinerary day. DayNumber is the label staff see ("Día 3") and
// never changes after creation; SortIndex is the display position and is
// rewritten on every move. Version guards concurrent reorders.
type Day struct {
	ID         id.DayID
	TripID     id.TripID
	DayNumber  int
	Date       *time.Time
	Title      string
	SortIndex  int
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

func (d *Day) IsArchived() bool { return d.ArchivedAt != nil }

// NewDay builds a day appended after the current maximum day number: the new
// day number doubles as the initial sort position.
func NewDay(dayID id.DayID, tripID id.TripID, dayNumber int, now time.Time) *Day {
	return &Day{
		ID:        dayID,
		TripID:    tripID,
		DayNumber: dayNumber,
		SortIndex: dayNumber,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DaySort is one rewritten day position inside a reorder batch. The batch is
// applied all-or-nothing: a stale ExpectedVersion anywhere rejects the whole
// batch and leaves every position untouched.
type DaySort struct {
	DayID           id.DayID
	SortIndex       int
	ExpectedVersion int
}

// ItemSort is the item counterpart of DaySort.
type ItemSort struct {
	ItemID          id.ItemID
	SortIndex       int
	ExpectedVersion int
}

// Item is one activity inside a day. Instructions are either a link or
// inline text, never both.
type Item struct {
	ID               id.ItemID
	TripID           id.TripID
	DayID            id.DayID
	TimeOfDay        string
	Title            string
	Description      string
	LocationName     string
	LocationDetail   string
	InstructionsURL  string
	InstructionsText string
	SortIndex        int
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ArchivedAt       *time.Time
}

func (i *Item) IsArchived() bool { return i.ArchivedAt != nil }

// Validate checks the item form fields.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "item title is required")
	}
	if i.InstructionsURL != "" && i.InstructionsText != "" {
		return dErrors.New(dErrors.CodeInvalidInput, "instructions must be a link or inline text, not both")
	}
	return nil
}
