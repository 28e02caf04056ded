package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/obs"
	"parking-planner-service/internal/ports"
)

// ErrInvalidRequest marks validation failures callers should report as
// client errors.
var ErrInvalidRequest = errors.New("invalid request")

// ErrCalendarUnavailable wraps failures to read the requested calendar.
var ErrCalendarUnavailable = errors.New("calendar unavailable")

// Receives every generated itinerary, e.g. for metrics.
type ItineraryRecorder interface {
	RecordItinerary(it domain.Itinerary)
}

type PlanDayRequest struct {
	Home domain.Coordinates
	// Entries given directly by the caller.
	Entries []domain.CalendarEntry
	// Optional calendar to read the day's entries from, appended to Entries.
	CalendarRef string
	// Any instant of the day to plan; zero means today.
	Day             time.Time
	MaxRadiusMeters float64
	Preference      domain.Preference
}

// DayPlanner resolves a day's calendar into events and generates the
// itinerary for them against the loaded facilities.
type DayPlanner struct {
	Facilities ports.FacilityRepository
	Geocoder   ports.Geocoder
	Calendar   ports.CalendarSource
	Recorder   ItineraryRecorder
	Location   *time.Location
	Now        func() time.Time
}

func (p *DayPlanner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *DayPlanner) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.UTC
}

// Validate checks the request and applies no defaults.
func (r PlanDayRequest) Validate() error {
	if !r.Home.Valid() {
		return fmt.Errorf("%w: home coordinates out of range (%s)", ErrInvalidRequest, r.Home)
	}
	if r.MaxRadiusMeters <= 0 || r.MaxRadiusMeters > domain.MaxRadiusMeters {
		return fmt.Errorf("%w: max radius must be in (0, %g] meters, got %g", ErrInvalidRequest, domain.MaxRadiusMeters, r.MaxRadiusMeters)
	}
	if _, err := domain.ParsePreference(string(r.Preference)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// PlanDay builds the itinerary for the request's day. Events that already
// started, or that cannot be located, are left out; events without parking
// in range still appear as "No parking" steps.
func (p *DayPlanner) PlanDay(ctx context.Context, req PlanDayRequest) (_ domain.Itinerary, err error) {
	defer obs.Time(ctx, "planner.PlanDay")(&err)

	if err := req.Validate(); err != nil {
		return domain.Itinerary{}, err
	}

	loc := p.location()
	now := p.now().In(loc)
	day := req.Day
	if day.IsZero() {
		day = now
	}
	day = day.In(loc)

	entries := append([]domain.CalendarEntry(nil), req.Entries...)
	if ref := strings.TrimSpace(req.CalendarRef); ref != "" {
		if p.Calendar == nil {
			return domain.Itinerary{}, fmt.Errorf("%w: calendar import is not configured", ErrInvalidRequest)
		}
		fromCalendar, err := p.Calendar.EntriesForDay(ctx, ref, day)
		if err != nil {
			return domain.Itinerary{}, fmt.Errorf("plan day: %w: %w", ErrCalendarUnavailable, err)
		}
		entries = append(entries, fromCalendar...)
	}

	events, err := ResolveEvents(ctx, entries, p.Geocoder, loc)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("plan day: %w", err)
	}
	events = UpcomingEvents(events, now)

	facilities, err := p.Facilities.ListFacilities(ctx)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("plan day: list facilities: %w", err)
	}

	steps := GenerateItinerary(facilities, req.Home, events, req.MaxRadiusMeters, req.Preference)
	for i := range steps {
		steps[i].Time = steps[i].Time.In(loc)
	}

	it := domain.Itinerary{
		Steps:                steps,
		TotalCost:            domain.TotalCost(steps),
		EventsPlanned:        len(events),
		EventsWithoutParking: countWithoutParking(steps),
	}

	log.Ctx(ctx).Info().
		Int("entries", len(entries)).
		Int("events", it.EventsPlanned).
		Int("without_parking", it.EventsWithoutParking).
		Float64("total_cost", it.TotalCost).
		Msg("itinerary planned")

	if p.Recorder != nil {
		p.Recorder.RecordItinerary(it)
	}

	return it, nil
}

func countWithoutParking(steps []domain.TimelineStep) int {
	n := 0
	for _, s := range steps {
		if strings.HasPrefix(s.Title, noParkingPrefix) {
			n++
		}
	}
	return n
}
