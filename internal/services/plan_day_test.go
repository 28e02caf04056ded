package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-planner-service/internal/adapters/geocode"
	"parking-planner-service/internal/adapters/repositories"
	"parking-planner-service/internal/domain"
)

type fakeCalendar struct {
	entries []domain.CalendarEntry
	err     error
	gotRef  string
	gotDay  time.Time
}

func (f *fakeCalendar) EntriesForDay(_ context.Context, ref string, day time.Time) ([]domain.CalendarEntry, error) {
	f.gotRef, f.gotDay = ref, day
	return f.entries, f.err
}

type recorder struct{ got []domain.Itinerary }

func (r *recorder) RecordItinerary(it domain.Itinerary) { r.got = append(r.got, it) }

type failingRepo struct{}

func (failingRepo) ListFacilities(context.Context) ([]domain.Facility, error) {
	return nil, errors.New("db down")
}

func newTestPlanner(t *testing.T, facilities ...domain.Facility) (*DayPlanner, *recorder) {
	t.Helper()
	rec := &recorder{}
	return &DayPlanner{
		Facilities: repositories.NewStaticFacilityRepository(facilities),
		Geocoder:   geocode.NewStaticGeocoder(map[string]domain.Coordinates{"Clock Tower": eventSite}),
		Recorder:   rec,
		Location:   time.UTC,
		Now:        func() time.Time { return onDay(8, 0) },
	}, rec
}

func validRequest() PlanDayRequest {
	return PlanDayRequest{
		Home:            homeSite,
		MaxRadiusMeters: 800,
		Preference:      domain.PreferCheap,
	}
}

func TestPlanDay(t *testing.T) {
	spot := facilityNorthOf(t, "Town Hall", 0.001, "", "Free")
	p, rec := newTestPlanner(t, spot)

	req := validRequest()
	req.Entries = []domain.CalendarEntry{
		{Title: "Meeting", Address: "clock tower", Start: onDay(10, 0), End: onDay(11, 0)},
		{Title: "Breakfast", Coords: &eventSite, Start: onDay(7, 0), End: onDay(7, 30)},
		{Title: "Mystery", Address: "Atlantis", Start: onDay(12, 0), End: onDay(13, 0)},
		{Title: "Backwards", Coords: &eventSite, Start: onDay(15, 0), End: onDay(14, 0)},
	}

	it, err := p.PlanDay(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"Leave Home", "Park at Town Hall", "Arrive at Meeting"}, stepTitles(it.Steps))
	assert.Equal(t, 1, it.EventsPlanned)
	assert.Equal(t, 0, it.EventsWithoutParking)
	assert.Equal(t, 0.0, it.TotalCost)
	require.Len(t, rec.got, 1)
	assert.Equal(t, it.EventsPlanned, rec.got[0].EventsPlanned)
}

func TestPlanDayCountsEventsWithoutParking(t *testing.T) {
	p, _ := newTestPlanner(t)

	req := validRequest()
	req.Entries = []domain.CalendarEntry{
		{Title: "Meeting", Coords: &eventSite, Start: onDay(10, 0), End: onDay(11, 0)},
	}

	it, err := p.PlanDay(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"No parking for Meeting"}, stepTitles(it.Steps))
	assert.Equal(t, 1, it.EventsWithoutParking)
}

func TestPlanDayReadsCalendar(t *testing.T) {
	spot := facilityNorthOf(t, "Town Hall", 0.001, "2 hours free", "£2/hour")
	p, _ := newTestPlanner(t, spot)
	cal := &fakeCalendar{entries: []domain.CalendarEntry{
		{UID: "a", Title: "Workshop", Coords: &eventSite, Start: onDay(10, 0), End: onDay(14, 0)},
	}}
	p.Calendar = cal

	req := validRequest()
	req.CalendarRef = "https://calendar.example/day.ics"
	req.Day = onDay(0, 0)

	it, err := p.PlanDay(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "https://calendar.example/day.ics", cal.gotRef)
	assert.Equal(t, onDay(0, 0), cal.gotDay)
	assert.Contains(t, stepTitles(it.Steps), "Limit Reached")
	assert.Equal(t, 10.0, it.TotalCost)
}

func TestPlanDayCalendarFailure(t *testing.T) {
	p, rec := newTestPlanner(t)
	p.Calendar = &fakeCalendar{err: errors.New("status 503")}

	req := validRequest()
	req.CalendarRef = "https://calendar.example/day.ics"

	_, err := p.PlanDay(context.Background(), req)
	assert.ErrorIs(t, err, ErrCalendarUnavailable)
	assert.ErrorContains(t, err, "status 503")
	assert.Empty(t, rec.got)
}

func TestPlanDayValidation(t *testing.T) {
	p, _ := newTestPlanner(t)

	tests := []struct {
		name   string
		mutate func(r *PlanDayRequest)
	}{
		{"zero radius", func(r *PlanDayRequest) { r.MaxRadiusMeters = 0 }},
		{"radius too large", func(r *PlanDayRequest) { r.MaxRadiusMeters = 5001 }},
		{"unknown preference", func(r *PlanDayRequest) { r.Preference = "fastest" }},
		{"home out of range", func(r *PlanDayRequest) { r.Home = domain.Coordinates{Lat: 100} }},
		{"calendar not configured", func(r *PlanDayRequest) { r.CalendarRef = "https://calendar.example/x.ics" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := p.PlanDay(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestPlanDayFacilitiesError(t *testing.T) {
	p, _ := newTestPlanner(t)
	p.Facilities = failingRepo{}

	_, err := p.PlanDay(context.Background(), validRequest())
	assert.ErrorContains(t, err, "db down")
	assert.NotErrorIs(t, err, ErrInvalidRequest)
}

func TestResolveEvents(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata not available")
	}

	bad := domain.Coordinates{Lat: 0, Lng: 200}
	g := geocode.NewStaticGeocoder(map[string]domain.Coordinates{"Clock Tower": eventSite})
	entries := []domain.CalendarEntry{
		{Title: "  ", Address: "Clock Tower", Start: onDay(10, 0), End: onDay(11, 0)},
		{Title: "Geo", Coords: &eventSite, Start: onDay(12, 0), End: onDay(13, 0)},
		{Title: "Bad coords", Coords: &bad, Start: onDay(12, 0), End: onDay(13, 0)},
		{Title: "No address", Start: onDay(12, 0), End: onDay(13, 0)},
		{Title: "Unknown", Address: "Atlantis", Start: onDay(12, 0), End: onDay(13, 0)},
	}

	events, err := ResolveEvents(context.Background(), entries, g, london)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Event", events[0].Title)
	assert.Equal(t, eventSite, events[0].Location)
	assert.Equal(t, london, events[0].Start.Location())
	assert.True(t, events[0].Start.Equal(onDay(10, 0)))
	assert.Equal(t, "Geo", events[1].Title)
}

func TestResolveEventsWithoutGeocoder(t *testing.T) {
	entries := []domain.CalendarEntry{
		{Title: "Needs lookup", Address: "Clock Tower", Start: onDay(10, 0), End: onDay(11, 0)},
	}
	events, err := ResolveEvents(context.Background(), entries, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestResolveEventsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ResolveEvents(ctx, nil, nil, time.UTC)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUpcomingEvents(t *testing.T) {
	events := []domain.Event{
		{Title: "past", Start: onDay(7, 0)},
		{Title: "now", Start: onDay(8, 0)},
		{Title: "later", Start: onDay(9, 0)},
	}
	got := UpcomingEvents(events, onDay(8, 0))
	require.Len(t, got, 1)
	assert.Equal(t, "later", got[0].Title)
}
