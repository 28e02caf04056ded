package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/ports"
)

var clockTower = domain.Coordinates{Lat: 52.6362, Lng: -1.1331}

func TestORSGeocoder(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Clock Tower Leicester", r.URL.Query().Get("text"))
		assert.Equal(t, "GB", r.URL.Query().Get("boundary.country"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-1.1331,52.6362]}}]}`))
	}))
	defer srv.Close()

	g, err := NewORSGeocoder("test-key", "GB")
	require.NoError(t, err)
	g.baseURL = srv.URL
	g.client.Backoff = time.Millisecond

	got, err := g.Geocode(context.Background(), "  Clock Tower   Leicester ")
	require.NoError(t, err)
	assert.Equal(t, clockTower, got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestORSGeocoderNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	g, err := NewORSGeocoder("test-key", "")
	require.NoError(t, err)
	g.baseURL = srv.URL

	_, err = g.Geocode(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)
}

func TestNewORSGeocoderRequiresKey(t *testing.T) {
	_, err := NewORSGeocoder(" ", "GB")
	assert.Error(t, err)
}

func TestGoogleGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Clock Tower, Leicester", r.URL.Query().Get("address"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK","results":[{"geometry":{"location":{"lat":52.6362,"lng":-1.1331}}}]}`))
	}))
	defer srv.Close()

	g, err := NewGoogleGeocoder("test-key", "uk", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	got, err := g.Geocode(context.Background(), "Clock Tower, Leicester")
	require.NoError(t, err)
	assert.Equal(t, clockTower, got)
}

func TestGoogleGeocoderEmptyResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"OK","results":[]}`))
	}))
	defer srv.Close()

	g, err := NewGoogleGeocoder("test-key", "", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = g.Geocode(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)
}

type memoryCache struct {
	m       map[string]domain.Coordinates
	failGet bool
}

func (c *memoryCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	if c.failGet {
		return nil, errors.New("cache down")
	}
	out := map[string]domain.Coordinates{}
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memoryCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

func TestCachedGeocoder(t *testing.T) {
	ctx := context.Background()
	inner := NewStaticGeocoder(map[string]domain.Coordinates{"Clock Tower": clockTower})
	mem := &memoryCache{m: map[string]domain.Coordinates{}}
	g := NewCachedGeocoder(inner, mem)

	for range 3 {
		got, err := g.Geocode(ctx, "clock  tower")
		require.NoError(t, err)
		assert.Equal(t, clockTower, got)
	}
	assert.Equal(t, int64(1), inner.Calls())
	assert.Contains(t, mem.m, "clock tower")

	_, err := g.Geocode(ctx, "Nowhere")
	assert.ErrorIs(t, err, ports.ErrAddressNotFound)
}

func TestCachedGeocoderSurvivesCacheFailure(t *testing.T) {
	inner := NewStaticGeocoder(map[string]domain.Coordinates{"Clock Tower": clockTower})
	g := NewCachedGeocoder(inner, &memoryCache{m: map[string]domain.Coordinates{}, failGet: true})

	got, err := g.Geocode(context.Background(), "Clock Tower")
	require.NoError(t, err)
	assert.Equal(t, clockTower, got)
}
