package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/httpx"
	"parking-planner-service/internal/platform/obs"
	"parking-planner-service/internal/ports"
)

type orsGeocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ORSGeocoder resolves addresses with OpenRouteService (/geocode/search).
// Requests are retried on transient failures. Safe for concurrent use.
type ORSGeocoder struct {
	client  *httpx.Client
	apiKey  string
	baseURL string
	country string
}

// NewORSGeocoder returns a geocoder restricted to country (ISO alpha-2,
// empty for worldwide).
func NewORSGeocoder(apiKey, country string) (*ORSGeocoder, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSGeocoder{
		client:  httpx.NewClient(10 * time.Second),
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		country: country,
	}, nil
}

func (o *ORSGeocoder) newRequest(ctx context.Context, text string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/geocode/search", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	q := req.URL.Query()
	q.Set("text", text)
	q.Set("size", "1")
	if o.country != "" {
		q.Set("boundary.country", o.country)
	}
	req.URL.RawQuery = q.Encode()

	return req, nil
}

// Geocode returns the first match for address.
func (o *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	text := strings.Join(strings.Fields(address), " ")
	if text == "" {
		return domain.Coordinates{}, errors.New("ors geocode: empty address")
	}

	resp, err := o.client.DoWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, text)
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: execute request: %w", err)
	}
	defer resp.Body.Close()

	var decoded orsGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: decode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("ors geocode %q: %w", address, ports.ErrAddressNotFound)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: invalid coordinate format for %q", address)
	}

	// GeoJSON order is [lon, lat].
	return domain.Coordinates{Lat: coords[1], Lng: coords[0]}, nil
}
