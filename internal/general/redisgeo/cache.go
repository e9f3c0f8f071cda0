// Package redisgeo keeps a Redis GEO index of available driver positions for
// proximity lookups. Postgres remains the source of truth; the index is a
// cache rebuilt from location reports.
package redisgeo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"ride-share/internal/domain/geo"
	"ride-share/internal/general/config"
	"ride-share/internal/general/logger"
	"ride-share/internal/ports"
)

const driverGeoKey = "drivers:geo"

// Cache implements ports.DriverGeoCache on top of a Redis GEO set.
type Cache struct {
	rdb *goredis.Client
}

// Connect dials Redis with retry and returns the cache.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Cache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(cfg.Redis.Host, strconv.Itoa(cfg.Redis.Port)),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	for attempt := 1; attempt <= 20; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()

		if err == nil {
			log.Info(ctx, "redis_connected", "Connected to Redis", map[string]any{"attempt": attempt})
			return &Cache{rdb: rdb}, nil
		}

		log.Debug(ctx, "redis_waiting", "Waiting for Redis", map[string]any{"attempt": attempt})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return nil, fmt.Errorf("redis: failed to connect after 20 attempts")
}

var _ ports.DriverGeoCache = (*Cache)(nil)

// Upsert stores a driver's position in the GEO set.
func (c *Cache) Upsert(ctx context.Context, driverID int64, p geo.Point) error {
	return c.rdb.GeoAdd(ctx, driverGeoKey, &goredis.GeoLocation{
		Name:      strconv.FormatInt(driverID, 10),
		Longitude: p.Longitude,
		Latitude:  p.Latitude,
	}).Err()
}

// Remove drops a driver from the GEO set, e.g. when they go offline or busy.
func (c *Cache) Remove(ctx context.Context, driverID int64) error {
	return c.rdb.ZRem(ctx, driverGeoKey, strconv.FormatInt(driverID, 10)).Err()
}

// Nearby returns driver IDs within radiusKM of p, nearest first.
func (c *Cache) Nearby(ctx context.Context, p geo.Point, radiusKM float64, limit int) ([]int64, error) {
	res, err := c.rdb.GeoSearch(ctx, driverGeoKey, &goredis.GeoSearchQuery{
		Longitude:  p.Longitude,
		Latitude:   p.Latitude,
		Radius:     radiusKM,
		RadiusUnit: "km",
		Count:      limit,
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(res))
	for _, member := range res {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			// skip malformed members instead of failing the lookup
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Close tears down the Redis connection.
func (c *Cache) Close() error { return c.rdb.Close() }
