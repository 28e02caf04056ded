package services

import (
	"strings"
	"testing"
	"time"

	"parking-planner-service/internal/domain"

	"github.com/stretchr/testify/require"
)

var eventSite = domain.Coordinates{Lat: 52.6369, Lng: -1.1398}

func allWeek(rng string) string {
	lines := make([]string, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		lines = append(lines, d.String()+" : "+rng)
	}
	return strings.Join(lines, "<br>")
}

// facilityNorthOf builds an always-open facility dLat degrees north of eventSite.
func facilityNorthOf(t *testing.T, name string, dLat float64, description, prices string) domain.Facility {
	t.Helper()

	f, err := domain.NewFacility(domain.FacilityRecord{
		Name:           name,
		Description:    description,
		Latitude:       eventSite.Lat + dLat,
		Longitude:      eventSite.Lng,
		OpenCloseTimes: allWeek(domain.AlwaysOpenRange),
		Prices:         prices,
	})
	require.NoError(t, err)
	return f
}

func closedFacilityNorthOf(t *testing.T, name string, dLat float64) domain.Facility {
	t.Helper()

	f, err := domain.NewFacility(domain.FacilityRecord{
		Name:           name,
		Latitude:       eventSite.Lat + dLat,
		Longitude:      eventSite.Lng,
		OpenCloseTimes: allWeek("Closed"),
		Prices:         "Free",
	})
	require.NoError(t, err)
	return f
}

func stepTitles(steps []domain.TimelineStep) []string {
	titles := make([]string, 0, len(steps))
	for _, s := range steps {
		titles = append(titles, s.Title)
	}
	return titles
}
