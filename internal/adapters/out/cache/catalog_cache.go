// Package cache puts a Redis read-through cache in front of the catalog.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	productdom "firstpick/internal/domain/product"
)

var ErrCacheMiss = errors.New("cache miss")

const (
	keyAll = "products:all"

	defaultTTL = 5 * time.Minute
)

func productKey(id string) string        { return fmt.Sprintf("product:%s", id) }
func categoryKey(category string) string { return fmt.Sprintf("products:category:%s", category) }

// CachedCatalog implements product.Repository. Reads are served from Redis
// when possible; concurrent misses for one key share a single backend load.
// Writes go to the wrapped repository and then drop the affected keys.
// Redis failures are logged and never fail a read.
type CachedCatalog struct {
	inner   productdom.Repository
	client  *redis.Client
	baseTTL time.Duration
	sfg     singleflight.Group
	log     *zap.Logger
}

func NewCachedCatalog(inner productdom.Repository, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedCatalog{inner: inner, client: client, baseTTL: ttl, log: log}
}

func (c *CachedCatalog) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	return readThrough(ctx, c, productKey(id), func(ctx context.Context) (productdom.Product, error) {
		return c.inner.GetByID(ctx, id)
	})
}

func (c *CachedCatalog) List(ctx context.Context) ([]productdom.Product, error) {
	return readThrough(ctx, c, keyAll, c.inner.List)
}

func (c *CachedCatalog) ListByCategory(ctx context.Context, category string) ([]productdom.Product, error) {
	return readThrough(ctx, c, categoryKey(category), func(ctx context.Context) ([]productdom.Product, error) {
		return c.inner.ListByCategory(ctx, category)
	})
}

func (c *CachedCatalog) NewID() string { return c.inner.NewID() }

func (c *CachedCatalog) Create(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	saved, err := c.inner.Create(ctx, p)
	if err != nil {
		return productdom.Product{}, err
	}
	c.invalidate(ctx, productKey(saved.ID), keyAll, categoryKey(saved.Category))
	return saved, nil
}

func (c *CachedCatalog) Update(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	keys := []string{productKey(p.ID), keyAll, categoryKey(p.Category)}
	// the product may have moved category
	if prev, err := c.inner.GetByID(ctx, p.ID); err == nil && prev.Category != p.Category {
		keys = append(keys, categoryKey(prev.Category))
	}

	saved, err := c.inner.Update(ctx, p)
	if err != nil {
		return productdom.Product{}, err
	}
	c.invalidate(ctx, keys...)
	return saved, nil
}

// Delete drops the product and every listing that may have held it.
func (c *CachedCatalog) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	keys := []string{productKey(id), keyAll}
	for _, cat := range productdom.Categories() {
		keys = append(keys, categoryKey(cat))
	}
	c.invalidate(ctx, keys...)
	return nil
}

func (c *CachedCatalog) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("catalog cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *CachedCatalog) ttl() time.Duration {
	// jitter spreads expiry of keys written together
	return c.baseTTL + time.Duration(rand.Int64N(int64(c.baseTTL/5)+1))
}

func readThrough[T any](ctx context.Context, c *CachedCatalog, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	v, err := get[T](ctx, c.client, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	res, err, _ := c.sfg.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := set(ctx, c.client, key, v, c.ttl()); err != nil {
			c.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

func get[T any](ctx context.Context, client *redis.Client, key string) (T, error) {
	var v T
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, ErrCacheMiss
	}
	if err != nil {
		return v, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return v, nil
}

func set(ctx context.Context, client *redis.Client, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
