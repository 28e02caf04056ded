package ports

import (
	"context"
	"errors"

	"parking-planner-service/internal/domain"
)

// Returned by geocoders when an address has no match.
var ErrAddressNotFound = errors.New("address not found")

// Contract for resolving a free-text address to a point.
type Geocoder interface {
	// Return the coordinates of the best match for address.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Persistent address -> coordinates cache used in front of a Geocoder.
// Keys are normalized addresses; implementations may expire entries.
type GeocodeCache interface {
	// Return cached coordinates for the addresses that have an entry.
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	// Store address -> coordinates mappings.
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
