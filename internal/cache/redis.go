package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeremyjsx/creativelab/internal/routes"
	"github.com/redis/go-redis/v9"
)

const (
	pageKey     = "route:%s|%s"     // <path>|<variant>
	variantsKey = "route-variants:%s" // <path>
)

func PageKey(route routes.Route, variant string) string {
	return fmt.Sprintf(pageKey, route, variant)
}

func VariantsKey(route routes.Route) string {
	return fmt.Sprintf(variantsKey, route)
}

// PageCache stores rendered responses in redis. Entries expire after ttl so a
// lost invalidation only leaves a route stale for a bounded time.
type PageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ Store = (*PageCache)(nil)

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{rdb: rdb, ttl: ttl}
}

func (c *PageCache) Get(ctx context.Context, route routes.Route, variant string) ([]byte, bool, error) {
	body, err := c.rdb.Get(ctx, PageKey(route, variant)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (c *PageCache) Set(ctx context.Context, route routes.Route, variant string, body []byte) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, PageKey(route, variant), body, c.ttl)
		pipe.SAdd(ctx, VariantsKey(route), variant)
		pipe.Expire(ctx, VariantsKey(route), c.ttl)
		return nil
	})
	return err
}

func (c *PageCache) Invalidate(ctx context.Context, rs []routes.Route) error {
	var errs []error
	for _, route := range rs {
		variants, err := c.rdb.SMembers(ctx, VariantsKey(route)).Result()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", route, err))
			continue
		}
		keys := make([]string, 0, len(variants)+1)
		for _, v := range variants {
			keys = append(keys, PageKey(route, v))
		}
		keys = append(keys, VariantsKey(route))
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", route, err))
		}
	}
	return errors.Join(errs...)
}

func (c *PageCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
