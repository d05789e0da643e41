// Package cache is a best-effort Redis read-through layer. A nil *Cache is
// valid and disables caching entirely, so callers never branch on whether
// Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

type Cache struct {
	rdb *redis.Client
}

// New connects to Redis and returns nil (cache disabled) when the URL is
// empty or the server is unreachable. Cache failures are never fatal.
func New(redisURL, password string) *Cache {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Invalid REDIS_URL, caching disabled: %v", err)
		return nil
	}
	if password != "" {
		opts.Password = password
	}

	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, caching disabled: %v", err)
		return nil
	}

	log.Println("Redis cache enabled")
	return &Cache{rdb: rdb}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get loads a cached value into dest. Returns false on miss or any error.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Cache read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("Cache entry for %s is malformed, dropping: %v", key, err)
		c.Delete(ctx, key)
		return false
	}
	return true
}

// Set stores a value with the default TTL. Failures are logged and ignored.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("Cache marshal failed for %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, defaultTTL).Err(); err != nil {
		log.Printf("Cache write failed for %s: %v", key, err)
	}
}

// Delete drops keys, typically on entity updates.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache invalidation failed for %v: %v", keys, err)
	}
}
