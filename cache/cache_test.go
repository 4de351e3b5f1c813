package cache

import (
	"context"
	"testing"
	"time"

	"Restore/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewProductCache(rdb, time.Minute), mr
}

func TestProductRoundTripAndInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, ok := c.Product(ctx, 1)
	assert.False(t, ok)

	c.SetProduct(ctx, models.Product{ID: 1, Name: "Boots", Price: 2500})
	c.SetFilters(ctx, models.ProductFilters{Brands: []string{"React"}, Types: []string{"Boots"}})

	product, ok := c.Product(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Boots", product.Name)
	assert.Equal(t, int64(2500), product.Price)

	filters, ok := c.Filters(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"React"}, filters.Brands)

	mr.FastForward(2 * time.Minute)
	_, ok = c.Product(ctx, 1)
	assert.False(t, ok, "entries expire after the ttl")

	c.SetProduct(ctx, models.Product{ID: 1, Name: "Boots"})
	c.SetFilters(ctx, models.ProductFilters{})
	c.Invalidate(ctx, 1)
	_, ok = c.Product(ctx, 1)
	assert.False(t, ok)
	_, ok = c.Filters(ctx)
	assert.False(t, ok)
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set(productKey(5), "{not json"))

	_, ok := c.Product(context.Background(), 5)
	assert.False(t, ok)
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *ProductCache
	ctx := context.Background()

	c.SetProduct(ctx, models.Product{ID: 1})
	c.Invalidate(ctx, 1)
	_, ok := c.Product(ctx, 1)
	assert.False(t, ok)

	disabled := NewProductCache(nil, time.Minute)
	_, ok = disabled.Filters(ctx)
	assert.False(t, ok)
}

func TestUnreachableRedisIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	c.SetProduct(context.Background(), models.Product{ID: 1})
	_, ok := c.Product(context.Background(), 1)
	assert.False(t, ok)
}
