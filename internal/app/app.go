// Package app assembles concrete adapters from configuration. Both the HTTP
// server and plannerctl build their planner through it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"parking-planner-service/internal/adapters/cache"
	"parking-planner-service/internal/adapters/geocode"
	"parking-planner-service/internal/adapters/repositories"
	"parking-planner-service/internal/config"
	"parking-planner-service/internal/platform/db"
	"parking-planner-service/internal/ports"
)

const (
	orsCountry   = "GB"
	googleRegion = "uk"
)

// Store is an open database with its schema applied.
type Store struct {
	DB     *sql.DB
	Driver string
}

func (s *Store) Close() error { return s.DB.Close() }

// OpenStore connects to the configured database and creates the schema.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	conn, err := db.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{DB: conn, Driver: cfg.DBDriver}, nil
}

// SeedIfPresent loads the seed file when it exists. A missing file is not
// an error so deployments can ship without demo data.
func (s *Store) SeedIfPresent(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Ctx(ctx).Info().Str("path", path).Msg("no seed file, skipping")
		return nil
	}

	n, err := repositories.SeedFromFile(ctx, s.DB, s.Driver, path)
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("path", path).Int("facilities", n).Msg("seeded facilities")
	return nil
}

// LoadFacilities reads every facility once into memory.
func (s *Store) LoadFacilities(ctx context.Context) (*repositories.StaticFacilityRepository, error) {
	return repositories.LoadStatic(ctx, repositories.NewSQLFacilityRepository(s.DB, s.Driver))
}

// Geocoder builds the configured geocoder wrapped in its cache. It returns
// nil when geocoding is disabled; events must then carry coordinates.
// The returned close function releases cache connections.
func Geocoder(ctx context.Context, cfg *config.Config, store *Store) (ports.Geocoder, func() error, error) {
	noop := func() error { return nil }

	var inner ports.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderNone:
		return nil, noop, nil
	case config.GeocoderORS:
		g, err := geocode.NewORSGeocoder(cfg.ORSAPIKey, orsCountry)
		if err != nil {
			return nil, noop, err
		}
		inner = g
	case config.GeocoderGoogle:
		g, err := geocode.NewGoogleGeocoder(cfg.GoogleMapsAPIKey, googleRegion)
		if err != nil {
			return nil, noop, err
		}
		inner = g
	default:
		return nil, noop, fmt.Errorf("unknown geocoder %q", cfg.Geocoder)
	}

	ttl := cfg.GeocodeCacheTTL()
	switch cfg.GeocodeCache {
	case config.CacheNone:
		return inner, noop, nil
	case config.CacheSQL:
		if store == nil {
			return inner, noop, nil
		}
		if store.Driver == db.DriverPostgres {
			return geocode.NewCachedGeocoder(inner, cache.NewSQLGeocodeCache(store.DB, ttl)), noop, nil
		}
		return geocode.NewCachedGeocoder(inner, cache.NewSqliteGeocodeCache(store.DB, ttl)), noop, nil
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("geocode cache: ping redis %s: %w", cfg.RedisAddr, err)
		}
		return geocode.NewCachedGeocoder(inner, cache.NewRedisGeocodeCache(client, ttl)), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown geocode_cache %q", cfg.GeocodeCache)
	}
}
