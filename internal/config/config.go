package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/db"
)

const (
	GeocoderNone   = "none"
	GeocoderORS    = "ors"
	GeocoderGoogle = "google"

	CacheNone  = "none"
	CacheSQL   = "sql"
	CacheRedis = "redis"
)

// Config holds the service settings. Keys match the environment variable
// names lower-cased, so PORT and a YAML "port" key set the same field.
type Config struct {
	AppEnv   string `koanf:"app_env"`
	LogLevel string `koanf:"log_level"`
	Port     string `koanf:"port"`

	DBDriver    string `koanf:"db_driver"`
	DBPath      string `koanf:"db_path"`
	DatabaseURL string `koanf:"database_url"`
	SeedPath    string `koanf:"seed_path"`

	Timezone string `koanf:"timezone"`

	Geocoder         string `koanf:"geocoder"`
	ORSAPIKey        string `koanf:"ors_api_key"`
	GoogleMapsAPIKey string `koanf:"google_maps_api_key"`

	GeocodeCache         string `koanf:"geocode_cache"`
	GeocodeCacheTTLHours int    `koanf:"geocode_cache_ttl_hours"`
	RedisAddr            string `koanf:"redis_addr"`
	RedisPassword        string `koanf:"redis_password"`
	RedisDB              int    `koanf:"redis_db"`

	DefaultRadiusMeters float64 `koanf:"default_radius_meters"`
	DefaultPreference   string  `koanf:"default_preference"`
}

// Load reads the optional YAML file at path, then applies environment
// overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("load config: unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config: read %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("load config: environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = "prod"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.DBDriver == "" {
		c.DBDriver = db.DriverSQLite
	}
	if c.DBPath == "" {
		c.DBPath = "data/app.db"
	}
	if c.SeedPath == "" {
		c.SeedPath = "data/seeds/facilities.json"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/London"
	}
	if c.Geocoder == "" {
		c.Geocoder = GeocoderNone
	}
	if c.GeocodeCache == "" {
		c.GeocodeCache = CacheSQL
	}
	if c.GeocodeCacheTTLHours == 0 {
		c.GeocodeCacheTTLHours = 24 * 30
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.DefaultRadiusMeters == 0 {
		c.DefaultRadiusMeters = 800
	}
	if c.DefaultPreference == "" {
		c.DefaultPreference = string(domain.PreferCheap)
	}
}

// Validate checks enumerations, required credentials and ranges.
func (c Config) Validate() error {
	switch c.DBDriver {
	case db.DriverSQLite:
	case db.DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for the pgx driver")
		}
	default:
		return fmt.Errorf("unknown db_driver %q", c.DBDriver)
	}

	switch c.Geocoder {
	case GeocoderNone:
	case GeocoderORS:
		if strings.TrimSpace(c.ORSAPIKey) == "" {
			return errors.New("ors_api_key is required for the ors geocoder")
		}
	case GeocoderGoogle:
		if strings.TrimSpace(c.GoogleMapsAPIKey) == "" {
			return errors.New("google_maps_api_key is required for the google geocoder")
		}
	default:
		return fmt.Errorf("unknown geocoder %q", c.Geocoder)
	}

	switch c.GeocodeCache {
	case CacheNone, CacheSQL, CacheRedis:
	default:
		return fmt.Errorf("unknown geocode_cache %q", c.GeocodeCache)
	}
	if c.GeocodeCacheTTLHours < 0 {
		return fmt.Errorf("geocode_cache_ttl_hours must not be negative, got %d", c.GeocodeCacheTTLHours)
	}

	if c.DefaultRadiusMeters <= 0 || c.DefaultRadiusMeters > domain.MaxRadiusMeters {
		return fmt.Errorf("default_radius_meters must be in (0, %g], got %g", domain.MaxRadiusMeters, c.DefaultRadiusMeters)
	}
	if _, err := domain.ParsePreference(c.DefaultPreference); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return nil
}

// DSN returns the data source name for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == db.DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// Location returns the planning time zone. Call after Validate.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) GeocodeCacheTTL() time.Duration {
	return time.Duration(c.GeocodeCacheTTLHours) * time.Hour
}

// Preference returns the validated default ranking preference.
func (c Config) Preference() domain.Preference {
	p, err := domain.ParsePreference(c.DefaultPreference)
	if err != nil {
		return domain.PreferCheap
	}
	return p
}
