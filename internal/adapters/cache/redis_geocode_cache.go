package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"parking-planner-service/internal/domain"
	"parking-planner-service/internal/platform/obs"
)

const redisKeyPrefix = "geocode:"

// Redis-backed geocode cache. Values are stored as "lat,lng" strings under
// "geocode:<normalized address>" with the configured TTL.
type RedisGeocodeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{Client: client, TTL: ttl}
}

func (r *RedisGeocodeCache) GetMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.cache.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("geocode cache: redis client is nil")
	}

	uniq := uniqueAddresses(addresses)
	if len(uniq) == 0 {
		return map[string]domain.Coordinates{}, nil
	}

	keys := make([]string, len(uniq))
	for i, a := range uniq {
		keys[i] = redisKeyPrefix + a
	}

	vals, err := r.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get geocode cache: redis mget: %w", err)
	}

	out := make(map[string]domain.Coordinates, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		c, err := decodeCoordinates(s)
		if err != nil {
			return nil, fmt.Errorf("get geocode cache: key %q: %w", keys[i], err)
		}
		out[uniq[i]] = c
	}

	return out, nil
}

func (r *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if r.Client == nil {
		return errors.New("geocode cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for addr, c := range results {
		key := NormalizeAddress(addr)
		if key == "" {
			return fmt.Errorf("insert geocode cache: empty address key")
		}
		pipe.Set(ctx, redisKeyPrefix+key, c.String(), r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert geocode cache: redis pipeline: %w", err)
	}

	return nil
}

func decodeCoordinates(s string) (domain.Coordinates, error) {
	latText, lngText, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("malformed value %q", s)
	}
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(lngText, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lng: %w", err)
	}
	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}
