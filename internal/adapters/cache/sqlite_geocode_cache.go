package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/obs"
)

// SQLite backed cache mapping address strings to geographic coordinates.
// Entries older than TTL are ignored on read; a zero TTL never expires.
type SqliteGeocodeCache struct {
	DB  *sql.DB
	TTL time.Duration
	Now func() time.Time
}

func NewSqliteGeocodeCache(db *sql.DB, ttl time.Duration) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db, TTL: ttl, Now: time.Now}
}

// Fetch cached coordinates for the given addresses, keyed by normalized
// address.
func (s *SqliteGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("geocode cache: db is nil")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, len(uniq)+1)
	for _, a := range uniq {
		ph = append(ph, "?")
		args = append(args, a)
	}
	args = append(args, cutoff(s.Now, s.TTL))

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
		address,
		lat,
		lng
	FROM geocode_cache
	WHERE address IN (%s)
	AND updated_at >= ?;
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates, len(uniq))
	for rows.Next() {
		var addr string
		var lat, lng float64
		if err := rows.Scan(&addr, &lat, &lng); err != nil {
			return nil, fmt.Errorf("get geocode cache: scan rows: %w", err)
		}
		out[addr] = domain.Coordinates{Lat: lat, Lng: lng}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get geocode cache: row iteration: %w", err)
	}

	return out, nil
}

// Store address -> coordinate mappings in the cache.
func (s *SqliteGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO geocode_cache (
		address,
		lat,
		lng,
		updated_at
	)
	VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("insert geocode cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := s.Now().Unix()
	for addr, c := range results {
		key := NormalizeAddress(addr)
		if key == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}

		if _, err := stmt.ExecContext(ctx, key, c.Lat, c.Lng, now); err != nil {
			return fmt.Errorf("insert geocode cache coord=%q: %w", addr, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert geocode cache commit: %w", err)
	}

	return nil
}

// cutoff returns the oldest acceptable updated_at, in unix seconds.
func cutoff(now func() time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now().Add(-ttl).Unix()
}
