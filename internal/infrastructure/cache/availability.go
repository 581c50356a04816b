// Package cache provides a Redis-backed read-path cache for derived stock
// quantities. The cache is a convenience for availability lookups only;
// invariant checks always fold the ledger directly.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"kardex/internal/core/id"
	"kardex/internal/core/types"
	"kardex/internal/domain/inventory/ledger"
	"kardex/pkg/logger"
)

// AvailabilityCache caches quantity-on-hand per (product, warehouse) key and
// drops entries whenever the key's movement log grows.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ledger.AvailabilityInvalidator = (*AvailabilityCache)(nil)

// New creates an availability cache. ttl <= 0 defaults to 5 minutes.
func New(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

// NewClient creates a Redis client from address and credentials.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func key(productID, warehouseID id.ID) string {
	return fmt.Sprintf("kardex:onhand:%s:%s", productID, warehouseID)
}

// Get returns the cached quantity and whether it was present. Cache errors
// degrade to a miss.
func (c *AvailabilityCache) Get(ctx context.Context, productID, warehouseID id.ID) (types.Quantity, bool) {
	val, err := c.client.Get(ctx, key(productID, warehouseID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "availability cache read failed", "error", err)
		}
		return 0, false
	}

	scaled, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return types.NewQuantityFromInt64Scaled(scaled), true
}

// Set stores the quantity with the configured TTL. Best-effort.
func (c *AvailabilityCache) Set(ctx context.Context, productID, warehouseID id.ID, qty types.Quantity) {
	err := c.client.Set(ctx, key(productID, warehouseID), qty.Int64Scaled(), c.ttl).Err()
	if err != nil {
		logger.Warn(ctx, "availability cache write failed", "error", err)
	}
}

// Invalidate drops the cached quantity after a committed movement.
func (c *AvailabilityCache) Invalidate(ctx context.Context, productID, warehouseID id.ID) {
	if err := c.client.Del(ctx, key(productID, warehouseID)).Err(); err != nil {
		logger.Warn(ctx, "availability cache invalidation failed", "error", err)
	}
}
