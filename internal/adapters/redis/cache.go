package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"staysearch/internal/adapters/observability"
)

const cacheName = "redis"

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return NewFromClient(redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     pass,
		DB:           db,
		DialTimeout:  time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}))
}

func NewFromClient(c *redis.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveCache(cacheName, "miss")
		return false, nil
	}
	if err != nil {
		observability.ObserveCache(cacheName, "error")
		return false, err
	}
	if err := json.Unmarshal(v, dst); err != nil {
		observability.ObserveCache(cacheName, "error")
		return false, err
	}
	observability.ObserveCache(cacheName, "hit")
	return true, nil
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache(cacheName, "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache(cacheName, "del")
	return r.c.Del(ctx, key).Err()
}

// DelPrefix walks the keyspace with SCAN so a large cache never blocks the server.
func (r *Cache) DelPrefix(ctx context.Context, prefix string) (int, error) {
	var batch []string
	n := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.c.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		n += len(batch)
		batch = batch[:0]
		return nil
	}

	it := r.c.Scan(ctx, 0, prefix+"*", 200).Iterator()
	for it.Next(ctx) {
		batch = append(batch, it.Val())
		if len(batch) == 200 {
			if err := flush(); err != nil {
				observability.ObserveCache(cacheName, "error")
				return n, err
			}
		}
	}
	if err := it.Err(); err != nil {
		observability.ObserveCache(cacheName, "error")
		return n, err
	}
	if err := flush(); err != nil {
		observability.ObserveCache(cacheName, "error")
		return n, err
	}
	observability.ObserveCache(cacheName, "del")
	return n, nil
}
