package handler

import (
	"strings"
	"time"

	"triex/internal/itinerary/service"
	dErrors "triex/pkg/domain-errors"
)

const dateFormat = "2006-01-02"

// DayRequest is the body for creating and updating itinerary days.
type DayRequest struct {
	Date  string `json:"date"`
	Title string `json:"title"`

	parsedDate *time.Time
}

func (r *DayRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Date == "" {
		return nil
	}
	t, err := time.Parse(dateFormat, r.Date)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "date must be formatted YYYY-MM-DD")
	}
	r.parsedDate = &t
	return nil
}

func (r *DayRequest) ToInput() service.DayInput {
	return service.DayInput{Date: r.parsedDate, Title: r.Title}
}

// ItemRequest is the body for creating and updating itinerary items.
type ItemRequest struct {
	TimeOfDay        string `json:"time_of_day"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	LocationName     string `json:"location_name"`
	LocationDetail   string `json:"location_detail"`
	InstructionsURL  string `json:"instructions_url"`
	InstructionsText string `json:"instructions_text"`
}

func (r *ItemRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "title is required")
	}
	if r.InstructionsURL != "" && r.InstructionsText != "" {
		return dErrors.New(dErrors.CodeInvalidInput, "instructions must be a link or inline text, not both")
	}
	return nil
}

func (r *ItemRequest) ToInput() service.ItemInput {
	return service.ItemInput{
		TimeOfDay:        strings.TrimSpace(r.TimeOfDay),
		Title:            r.Title,
		Description:      r.Description,
		LocationName:     strings.TrimSpace(r.LocationName),
		LocationDetail:   strings.TrimSpace(r.LocationDetail),
		InstructionsURL:  strings.TrimSpace(r.InstructionsURL),
		InstructionsText: r.InstructionsText,
	}
}

// MoveRequest carries a reorder. Indexes are positions in the current
// display order, not day numbers.
type MoveRequest struct {
	FromIndex *int `json:"from_index"`
	ToIndex   *int `json:"to_index"`
}

func (r *MoveRequest) Validate() error {
	if r.FromIndex == nil || r.ToIndex == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "from_index and to_index are required")
	}
	return nil
}
