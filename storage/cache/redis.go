package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/shraddhaWorks/new-timelly-sub001/core"
)

// Cache implements core.Cache on Redis.
type Cache struct {
	client *redis.Client
}

var _ core.Cache = (*Cache)(nil)

func New(conf *core.Config) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		}),
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrapf(err, "getting cache key %s", key)
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return errors.Wrapf(c.client.Set(ctx, key, val, ttl).Err(), "setting cache key %s", key)
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(c.client.Del(ctx, key).Err(), "deleting cache key %s", key)
}

func (c *Cache) Close() error {
	return c.client.Close()
}
