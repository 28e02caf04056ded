package geocode

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/obs"
	"parking-planner-service/internal/ports"
)

// GoogleGeocoder resolves addresses with the Google Maps Geocoding API.
type GoogleGeocoder struct {
	client *maps.Client
	region string
}

// NewGoogleGeocoder builds a geocoder biased to region (ccTLD, e.g. "uk").
// Extra options are passed to the maps client.
func NewGoogleGeocoder(apiKey, region string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	opts = append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("google geocoder: new client: %w", err)
	}
	return &GoogleGeocoder{client: client, region: region}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "google.Geocode")(&err)

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: strings.TrimSpace(address),
		Region:  g.region,
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("google geocode: %w", err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("google geocode %q: %w", address, ports.ErrAddressNotFound)
	}

	loc := results[0].Geometry.Location
	return domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
