package domain

import "fmt"

type TravelMode string

const (
	TravelDriving TravelMode = "driving"
	TravelWalking TravelMode = "walking"
)

// Return a Google Maps directions URL between two points.
func DirectionsLink(origin, destination Coordinates, mode TravelMode) string {
	return fmt.Sprintf(
		"https://www.google.com/maps/dir/?api=1&origin=%s&destination=%s&travelmode=%s",
		origin, destination, mode,
	)
}

// Return a Google Maps search URL pointing at a single location.
func LocationLink(c Coordinates) string {
	return "https://www.google.com/maps/search/?api=1&query=" + c.String()
}
