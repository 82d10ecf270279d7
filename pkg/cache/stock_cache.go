package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// StockCacheTTL is the time-to-live for cached stock levels. Stock is
	// refreshed by the worker on every ledger-affecting event, so the TTL only
	// bounds staleness after a missed event.
	StockCacheTTL = time.Hour

	stockCacheKeyPrefix = "stock"
)

// CachedStockLevel is the denormalized stock read model stored in Redis.
// The authoritative quantity always lives in Postgres; this cache serves
// read endpoints and reporting collaborators only.
type CachedStockLevel struct {
	OrgID       uuid.UUID `json:"org_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockCache provides structured read/write operations for stock cache entries.
// Keys are scoped by orgID to prevent cross-tenant data leakage.
// Key format: "stock:{orgID}:{warehouseID}:{productID}"
type StockCache struct {
	client *RedisClient
}

// NewStockCache creates a StockCache backed by the given RedisClient.
func NewStockCache(r *RedisClient) *StockCache {
	return &StockCache{client: r}
}

// Get retrieves a cached stock level.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *StockCache) Get(ctx context.Context, orgID, warehouseID, productID uuid.UUID) (*CachedStockLevel, error) {
	key := c.key(orgID, warehouseID, productID)
	vals, err := c.client.Client().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}

	qty, err := strconv.ParseInt(vals["quantity"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse quantity: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}

	return &CachedStockLevel{
		OrgID:       orgID,
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    qty,
		UpdatedAt:   updatedAt,
	}, nil
}

// Set writes a stock level as a Redis hash with the standard TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (c *StockCache) Set(ctx context.Context, level *CachedStockLevel) error {
	key := c.key(level.OrgID, level.WarehouseID, level.ProductID)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key,
		"quantity", strconv.FormatInt(level.Quantity, 10),
		"updated_at", level.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, StockCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached stock level.
func (c *StockCache) Delete(ctx context.Context, orgID, warehouseID, productID uuid.UUID) error {
	if err := c.client.Client().Del(ctx, c.key(orgID, warehouseID, productID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "stock:{orgID}:{warehouseID}:{productID}"
func (c *StockCache) key(orgID, warehouseID, productID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s:%s", stockCacheKeyPrefix, orgID, warehouseID, productID)
}
