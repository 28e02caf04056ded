package dto

import (
	"errors"

	"parking-planner-service/internal/domain"
)

// Entry converts the request into a calendar entry, checking that
// coordinates come in pairs and that the event ends after it starts.
func (e EventRequest) Entry() (domain.CalendarEntry, error) {
	entry := domain.CalendarEntry{
		Title:   e.Title,
		Address: e.Location,
		Start:   e.Start,
		End:     e.End,
	}
	switch {
	case e.Lat != nil && e.Lng != nil:
		entry.Coords = &domain.Coordinates{Lat: *e.Lat, Lng: *e.Lng}
	case e.Lat != nil || e.Lng != nil:
		return domain.CalendarEntry{}, errors.New("event lat and lng must be given together")
	}
	if !e.End.After(e.Start) {
		return domain.CalendarEntry{}, errors.New("event end must be after start")
	}
	return entry, nil
}

func FromFacility(f domain.Facility) FacilityResponse {
	busy := f.BusyHours
	if busy == nil {
		busy = []string{}
	}
	return FacilityResponse{
		ID:             f.ID,
		Name:           f.Name,
		Description:    f.Description,
		Latitude:       f.Location.Lat,
		Longitude:      f.Location.Lng,
		OpenCloseTimes: f.RawSchedule,
		BusyHours:      busy,
		Prices:         f.RawPrice,
		PriceKnown:     f.Price.Known(),
		MaxFreeHours:   f.MaxFreeHours,
	}
}

func FromItinerary(it domain.Itinerary) ItineraryResponse {
	steps := make([]StepResponse, 0, len(it.Steps))
	for _, s := range it.Steps {
		steps = append(steps, StepResponse{
			Time:        s.Time,
			Title:       s.Title,
			Description: s.Description,
			Kind:        string(s.Kind),
			Difficulty:  string(s.Difficulty),
			MapLink:     s.MapLink,
			Cost:        s.Cost,
		})
	}
	return ItineraryResponse{
		Steps:                steps,
		TotalCost:            it.TotalCost,
		EventsPlanned:        it.EventsPlanned,
		EventsWithoutParking: it.EventsWithoutParking,
	}
}
