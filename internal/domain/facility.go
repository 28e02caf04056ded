package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Represents a parking facility as stored in the reference dataset.
// The free-text fields are kept as published by the operator.
type FacilityRecord struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	Latitude       float64  `json:"latitude" yaml:"latitude"`
	Longitude      float64  `json:"longitude" yaml:"longitude"`
	OpenCloseTimes string   `json:"openCloseTimes" yaml:"openCloseTimes"`
	BusyHours      []string `json:"busyHours" yaml:"busyHours"`
	Prices         string   `json:"prices" yaml:"prices"`
}

// Facility is the validated, typed form of a FacilityRecord used by the
// planner. Schedule, price policy and grace period are parsed once here so
// that planning never touches the raw strings. Facilities are read-only
// after construction.
type Facility struct {
	ID           string
	Name         string
	Description  string
	Location     Coordinates
	BusyHours    []string
	Schedule     WeeklySchedule
	Price        PricePolicy
	MaxFreeHours float64

	RawSchedule string
	RawPrice    string
}

// NewFacility validates a record and parses its free-text fields.
func NewFacility(r FacilityRecord) (Facility, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Facility{}, errors.New("new facility: name must not be empty")
	}

	loc := Coordinates{Lat: r.Latitude, Lng: r.Longitude}
	if !loc.Valid() {
		return Facility{}, fmt.Errorf("new facility %q: coordinates out of range (%s)", name, loc)
	}

	id := strings.TrimSpace(r.ID)
	if id == "" {
		id = name
	}

	return Facility{
		ID:           id,
		Name:         name,
		Description:  r.Description,
		Location:     loc,
		BusyHours:    append([]string(nil), r.BusyHours...),
		Schedule:     ParseWeeklySchedule(r.OpenCloseTimes),
		Price:        ParsePricePolicy(r.Prices),
		MaxFreeHours: MaxFreeHours(r.Description),
		RawSchedule:  r.OpenCloseTimes,
		RawPrice:     r.Prices,
	}, nil
}

// Return the record form of the facility, e.g. for re-seeding or display.
func (f Facility) Record() FacilityRecord {
	return FacilityRecord{
		ID:             f.ID,
		Name:           f.Name,
		Description:    f.Description,
		Latitude:       f.Location.Lat,
		Longitude:      f.Location.Lng,
		OpenCloseTimes: f.RawSchedule,
		BusyHours:      append([]string(nil), f.BusyHours...),
		Prices:         f.RawPrice,
	}
}

// IsOpen reports whether the facility is open at instant t.
func IsOpen(f Facility, t time.Time) bool {
	return f.Schedule.IsOpenAt(t)
}
