package geocode

import (
	"context"

	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/adapters/cache"
	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/ports"
)

// CachedGeocoder serves lookups from Cache and falls back to Inner on a
// miss, storing the result. Cache failures are logged and do not fail the
// lookup.
type CachedGeocoder struct {
	Inner ports.Geocoder
	Cache ports.GeocodeCache
}

func NewCachedGeocoder(inner ports.Geocoder, c ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{Inner: inner, Cache: c}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	key := cache.NormalizeAddress(address)

	hits, err := g.Cache.GetMany(ctx, []string{key})
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("address", key).Msg("geocode cache read failed")
	} else if c, ok := hits[key]; ok {
		return c, nil
	}

	c, err := g.Inner.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if err := g.Cache.PutMany(ctx, map[string]domain.Coordinates{key: c}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("address", key).Msg("geocode cache write failed")
	}

	return c, nil
}
