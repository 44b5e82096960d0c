// Package cache is a thin JSON cache over redis, used for read-side
// search responses only. A nil *Cache is valid and disables caching.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// New connects to redis from a URL like redis://localhost:6379. Returns
// nil (caching disabled) when the URL is empty or the server is
// unreachable; the search path works without it.
func New(redisURL string) *Cache {
	if redisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("[CACHE] action=connect msg=invalid redis url: %v", err)
		return nil
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 3

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("[CACHE] action=connect msg=redis ping failed: %v", err)
		return nil
	}

	return &Cache{client: client}
}

// Get retrieves a JSON-encoded value. Misses and decode failures both
// report false.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// Set stores a JSON-encoded value, best-effort.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, key, data, ttl)
}

func (c *Cache) Close() {
	if c != nil {
		_ = c.client.Close()
	}
}
