package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"carbook/pkg/logger"
	"carbook/pkg/model"
)

const activeVehiclesKey = "carbook:vehicles:active"

// VehicleCache holds the active fleet snapshot that search filters
// against. A nil client disables caching; misses and Redis errors both
// fall through to the repository, so the cache can never fail a query.
type VehicleCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewVehicleCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *VehicleCache {
	return &VehicleCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// GetActive returns the cached active fleet, or nil on a miss.
func (c *VehicleCache) GetActive(ctx context.Context) []*model.Vehicle {
	if c == nil || c.client == nil {
		return nil
	}

	val, err := c.client.Get(ctx, activeVehiclesKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Failed to read active fleet from cache", "error", err)
		}
		return nil
	}

	var vehicles []*model.Vehicle
	if err := json.Unmarshal([]byte(val), &vehicles); err != nil {
		c.log.Warn("Discarding unreadable cached fleet snapshot", "error", err)
		return nil
	}
	return vehicles
}

func (c *VehicleCache) SetActive(ctx context.Context, vehicles []*model.Vehicle) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(vehicles)
	if err != nil {
		c.log.Warn("Failed to encode fleet snapshot for caching", "error", err)
		return
	}

	if err := c.client.Set(ctx, activeVehiclesKey, data, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to cache active fleet", "error", err)
	}
}

// Invalidate drops the fleet snapshot. Called after vehicle writes so
// search never serves a stale listing past the TTL window.
func (c *VehicleCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, activeVehiclesKey).Err(); err != nil {
		c.log.Warn(fmt.Sprintf("Failed to invalidate cache key %s", activeVehiclesKey), "error", err)
	}
}
