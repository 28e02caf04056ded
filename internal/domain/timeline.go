package domain

import (
	"fmt"
	"strings"
	"time"
)

type StepKind string

const (
	StepDrive    StepKind = "drive"
	StepPark     StepKind = "park"
	StepWalk     StepKind = "walk"
	StepEvent    StepKind = "event"
	StepRelocate StepKind = "relocate"
)

// Presentation emphasis for a step. Empty means none.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Represents a single instruction in a day itinerary.
// Cost is nil when pricing does not apply to the step.
type TimelineStep struct {
	Time        time.Time
	Title       string
	Description string
	Kind        StepKind
	Difficulty  Difficulty
	MapLink     string
	Cost        *float64
}

// Represents the generated plan for one day, with aggregate figures.
type Itinerary struct {
	Steps                []TimelineStep
	TotalCost            float64
	EventsPlanned        int
	EventsWithoutParking int
}

// TotalCost sums the cost of every priced step.
func TotalCost(steps []TimelineStep) float64 {
	total := 0.0
	for _, s := range steps {
		if s.Cost != nil {
			total += *s.Cost
		}
	}
	return roundMinorUnits(total)
}

// Upper bound accepted for a search radius, in meters.
const MaxRadiusMeters = 5000.0

// Ranking strategy used when several facilities are eligible.
type Preference string

const (
	PreferCheap   Preference = "cheap"
	PreferClosest Preference = "closest"
)

// ParsePreference accepts "cheap" or "closest" (case-insensitive).
func ParsePreference(s string) (Preference, error) {
	switch Preference(strings.ToLower(strings.TrimSpace(s))) {
	case PreferCheap:
		return PreferCheap, nil
	case PreferClosest:
		return PreferClosest, nil
	}
	return "", fmt.Errorf("parse preference: unknown preference %q (want cheap or closest)", s)
}
