package services

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/geo"
)

// Constant-speed travel model. No live traffic or routing.
const (
	DriveSpeedMps = 13.4
	WalkSpeedMps  = 1.4

	// Time the user should be at the event before it starts.
	ArrivalBuffer = 15 * time.Minute
	// Time reserved for moving the car before the grace period ends.
	RelocationLead = 15 * time.Minute
)

const (
	homeName        = "Home"
	noParkingPrefix = "No parking for "
)

// planState is the accumulator threaded through the fold over events.
// It is local to one GenerateItinerary call.
type planState struct {
	previous domain.Place
	steps    []domain.TimelineStep
}

// GenerateItinerary builds the day timeline for events starting from home.
//
// Events are sorted by start (stable). For each event the best spot is
// chosen at the event start; the user leaves the previous location in time
// to park, walk and arrive ArrivalBuffer before the start. When the stay
// outlasts the spot's free hours, a relocation to a backup spot (or a
// "Limit Reached" warning) is added. The function never fails: events
// without parking yield an informational step and leave the previous
// location unchanged.
func GenerateItinerary(
	facilities []domain.Facility,
	home domain.Coordinates,
	events []domain.Event,
	maxRadiusMeters float64,
	pref domain.Preference,
) []domain.TimelineStep {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b domain.Event) int {
		return a.Start.Compare(b.Start)
	})

	state := planState{
		previous: domain.Place{Name: homeName, Coords: home},
		steps:    make([]domain.TimelineStep, 0, len(sorted)*4),
	}

	for i := range sorted {
		state = planEvent(state, facilities, sorted, i, maxRadiusMeters, pref)
	}

	return state.steps
}

func planEvent(
	state planState,
	facilities []domain.Facility,
	events []domain.Event,
	index int,
	maxRadiusMeters float64,
	pref domain.Preference,
) planState {
	event := events[index]

	spot, ok := FindBestSpot(facilities, event.Location, event.Start, maxRadiusMeters, pref)
	if !ok {
		state.steps = append(state.steps, domain.TimelineStep{
			Time:        event.Start,
			Title:       noParkingPrefix + event.Title,
			Description: "Try increasing radius.",
			Kind:        domain.StepDrive,
			Difficulty:  domain.Advanced,
		})
		return state
	}

	driveMeters := geo.DistanceMeters(state.previous.Coords, spot.Location)
	walkMeters := geo.DistanceMeters(spot.Location, event.Location)
	driveTime := secondsToDuration(driveMeters / DriveSpeedMps)
	walkTime := secondsToDuration(walkMeters / WalkSpeedMps)

	arrivalAtEvent := event.Start.Add(-ArrivalBuffer)
	arriveAtPark := arrivalAtEvent.Add(-walkTime)
	leavePrevious := arriveAtPark.Add(-driveTime)
	parkingHours := event.End.Sub(arriveAtPark).Hours()

	if index > 0 {
		prevEvent := events[index-1]
		state.steps = append(state.steps, domain.TimelineStep{
			Time:        leavePrevious,
			Title:       "Walk to Car",
			Description: fmt.Sprintf("Return to %s.", state.previous.Name),
			Kind:        domain.StepWalk,
			Difficulty:  domain.Intermediate,
			MapLink:     domain.DirectionsLink(prevEvent.Location, state.previous.Coords, domain.TravelWalking),
		})
	}

	driveTitle := "Drive to " + spot.Name
	if index == 0 {
		driveTitle = "Leave Home"
	}
	state.steps = append(state.steps, domain.TimelineStep{
		Time:        leavePrevious,
		Title:       driveTitle,
		Description: fmt.Sprintf("Drive ~%.0f mins.", driveTime.Minutes()),
		Kind:        domain.StepDrive,
		Difficulty:  domain.Beginner,
		MapLink:     domain.DirectionsLink(state.previous.Coords, spot.Location, domain.TravelDriving),
	})

	state.steps = append(state.steps, domain.TimelineStep{
		Time:        arriveAtPark,
		Title:       "Park at " + spot.Name,
		Description: spot.RawPrice,
		Kind:        domain.StepPark,
		Difficulty:  domain.Intermediate,
		MapLink:     domain.LocationLink(spot.Location),
		Cost:        costPtr(spot.Price.Cost(parkingHours)),
	})

	if parkingHours > spot.MaxFreeHours {
		state.steps = append(state.steps,
			relocationSteps(facilities, spot, event, arriveAtPark, parkingHours, maxRadiusMeters)...)
	}

	state.steps = append(state.steps, domain.TimelineStep{
		Time:        arrivalAtEvent,
		Title:       "Arrive at " + event.Title,
		Description: fmt.Sprintf("Walked ~%.0f mins.", walkTime.Minutes()),
		Kind:        domain.StepEvent,
		Difficulty:  domain.Beginner,
		MapLink:     domain.DirectionsLink(spot.Location, event.Location, domain.TravelWalking),
	})

	// The original spot, not a backup, is where the user returns to.
	state.previous = domain.Place{Name: spot.Name, Coords: spot.Location}
	return state
}

// relocationSteps plans moving the car RelocationLead before the free period
// at spot ends. The backup is billed only for the overflow beyond the free
// hours.
func relocationSteps(
	facilities []domain.Facility,
	spot domain.Facility,
	event domain.Event,
	arriveAtPark time.Time,
	parkingHours float64,
	maxRadiusMeters float64,
) []domain.TimelineStep {
	freeHours := spot.MaxFreeHours
	moveTime := arriveAtPark.Add(secondsToDuration(freeHours * 3600)).Add(-RelocationLead)
	limit := fmt.Sprintf("Limit (%sh) expiring.", strconv.FormatFloat(freeHours, 'f', -1, 64))

	backup, ok := FindBackupSpot(facilities, spot, event.Location, moveTime, maxRadiusMeters)
	if !ok {
		return []domain.TimelineStep{{
			Time:        moveTime,
			Title:       "Limit Reached",
			Description: limit + " No backup spot found.",
			Kind:        domain.StepRelocate,
			Difficulty:  domain.Advanced,
			MapLink:     domain.DirectionsLink(event.Location, spot.Location, domain.TravelWalking),
		}}
	}

	return []domain.TimelineStep{
		{
			Time:        moveTime,
			Title:       "Move Car",
			Description: fmt.Sprintf("%s Move to %s.", limit, backup.Name),
			Kind:        domain.StepRelocate,
			Difficulty:  domain.Advanced,
			MapLink:     domain.DirectionsLink(spot.Location, backup.Location, domain.TravelDriving),
		},
		{
			Time:        moveTime.Add(RelocationLead),
			Title:       "Repark at " + backup.Name,
			Description: backup.RawPrice,
			Kind:        domain.StepPark,
			Difficulty:  domain.Intermediate,
			MapLink:     domain.LocationLink(backup.Location),
			Cost:        costPtr(backup.Price.Cost(parkingHours - freeHours)),
		},
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func costPtr(v float64) *float64 { return &v }
