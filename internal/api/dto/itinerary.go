package dto

import "time"

type PointRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventRequest is one calendar entry. Either lat and lng, or a location
// to geocode, must be given.
type EventRequest struct {
	Title    string    `json:"title"`
	Location string    `json:"location"`
	Lat      *float64  `json:"lat"`
	Lng      *float64  `json:"lng"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

type ItineraryRequest struct {
	Home            *PointRequest  `json:"home"`
	Events          []EventRequest `json:"events"`
	CalendarURL     string         `json:"calendar_url"`
	Date            string         `json:"date"`
	MaxRadiusMeters *float64       `json:"max_radius_meters"`
	Preference      string         `json:"preference"`
}

type StepResponse struct {
	Time        time.Time `json:"time"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"`
	Difficulty  string    `json:"difficulty,omitempty"`
	MapLink     string    `json:"map_link,omitempty"`
	Cost        *float64  `json:"cost,omitempty"`
}

type ItineraryResponse struct {
	Steps                []StepResponse `json:"steps"`
	TotalCost            float64        `json:"total_cost"`
	EventsPlanned        int            `json:"events_planned"`
	EventsWithoutParking int            `json:"events_without_parking"`
}
