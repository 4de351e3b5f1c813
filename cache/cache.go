// Package cache keeps hot catalog reads in redis. A nil *ProductCache, or
// one built without a client, is valid and caches nothing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Restore/models"

	"github.com/redis/go-redis/v9"
)

const filtersKey = "products:filters"

type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id uint) string {
	return fmt.Sprintf("products:%d", id)
}

func (c *ProductCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Product returns the cached product; ok is false on a miss or any redis error.
func (c *ProductCache) Product(ctx context.Context, id uint) (product models.Product, ok bool) {
	if !c.enabled() {
		return product, false
	}
	return product, c.get(ctx, productKey(id), &product)
}

func (c *ProductCache) SetProduct(ctx context.Context, product models.Product) {
	if !c.enabled() {
		return
	}
	c.set(ctx, productKey(product.ID), product)
}

func (c *ProductCache) Filters(ctx context.Context) (filters models.ProductFilters, ok bool) {
	if !c.enabled() {
		return filters, false
	}
	return filters, c.get(ctx, filtersKey, &filters)
}

func (c *ProductCache) SetFilters(ctx context.Context, filters models.ProductFilters) {
	if !c.enabled() {
		return
	}
	c.set(ctx, filtersKey, filters)
}

// Invalidate drops the product and the filter list, which may change with it.
func (c *ProductCache) Invalidate(ctx context.Context, id uint) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, productKey(id), filtersKey).Err(); err != nil {
		slog.WarnContext(ctx, "cache invalidate failed", "productID", id, "error", err)
	}
}

func (c *ProductCache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		slog.WarnContext(ctx, "cache entry is corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *ProductCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}
