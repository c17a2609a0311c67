package handler

import (
	"triex/internal/itinerary/models"
	"triex/internal/itinerary/service"
)

// DayResponse is the wire shape of one itinerary day.
type DayResponse struct {
	ID        string `json:"id"`
	DayNumber int    `json:"day_number"`
	Date      string `json:"date,omitempty"`
	Title     string `json:"title,omitempty"`
	SortIndex int    `json:"sort_index"`
	Version   int    `json:"version"`
}

// ItemResponse is the wire shape of one itinerary item.
type ItemResponse struct {
	ID               string `json:"id"`
	TimeOfDay        string `json:"time_of_day,omitempty"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	LocationName     string `json:"location_name,omitempty"`
	LocationDetail   string `json:"location_detail,omitempty"`
	InstructionsURL  string `json:"instructions_url,omitempty"`
	InstructionsText string `json:"instructions_text,omitempty"`
	SortIndex        int    `json:"sort_index"`
	Version          int    `json:"version"`
}

// ItineraryDayResponse is a day with its items in display order.
type ItineraryDayResponse struct {
	DayResponse
	Items []ItemResponse `json:"items"`
}

func fromDay(day *models.Day) DayResponse {
	resp := DayResponse{
		ID:        day.ID.String(),
		DayNumber: day.DayNumber,
		Title:     day.Title,
		SortIndex: day.SortIndex,
		Version:   day.Version,
	}
	if day.Date != nil {
		resp.Date = day.Date.Format(dateFormat)
	}
	return resp
}

func fromItem(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:               item.ID.String(),
		TimeOfDay:        item.TimeOfDay,
		Title:            item.Title,
		Description:      item.Description,
		LocationName:     item.LocationName,
		LocationDetail:   item.LocationDetail,
		InstructionsURL:  item.InstructionsURL,
		InstructionsText: item.InstructionsText,
		SortIndex:        item.SortIndex,
		Version:          item.Version,
	}
}

func fromItinerary(days []service.DayWithItems) []ItineraryDayResponse {
	out := make([]ItineraryDayResponse, 0, len(days))
	for _, entry := range days {
		day := ItineraryDayResponse{DayResponse: fromDay(entry.Day), Items: make([]ItemResponse, 0, len(entry.Items))}
		for _, item := range entry.Items {
			day.Items = append(day.Items, fromItem(item))
		}
		out = append(out, day)
	}
	return out
}
