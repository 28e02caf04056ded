package geocode

import (
	"context"
	"fmt"
	"sync/atomic"

	"parking-planner-service/internal/adapters/cache"
	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/ports"
)

// StaticGeocoder answers from a fixed address table. Used offline and in
// tests. Lookups are matched on the normalized address.
type StaticGeocoder struct {
	m     map[string]domain.Coordinates
	calls atomic.Int64
}

func NewStaticGeocoder(table map[string]domain.Coordinates) *StaticGeocoder {
	m := make(map[string]domain.Coordinates, len(table))
	for addr, c := range table {
		m[cache.NormalizeAddress(addr)] = c
	}
	return &StaticGeocoder{m: m}
}

func (s *StaticGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	s.calls.Add(1)

	c, ok := s.m[cache.NormalizeAddress(address)]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("static geocode %q: %w", address, ports.ErrAddressNotFound)
	}
	return c, nil
}

// Calls returns how many lookups were made.
func (s *StaticGeocoder) Calls() int64 { return s.calls.Load() }
