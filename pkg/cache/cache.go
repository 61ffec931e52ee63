// Package cache is a thin JSON cache over Redis. When Redis is unreachable
// every operation degrades to a no-op miss, so callers never branch on
// availability.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/vyapar/config"
	"github.com/shashiranjanraj/vyapar/pkg/metrics"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// Connect dials Redis and verifies it with a ping. On error the client
// stays nil and the cache runs in pass-through mode.
func Connect() error {
	c := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}

	client = c
	return nil
}

// Get unmarshals the cached value under key into dest. Reports a hit.
func Get(key string, dest interface{}) bool {
	if client == nil {
		return false
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		err = json.Unmarshal(raw, dest)
	}
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

// Set stores value as JSON under key for ttl.
func Set(key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, ttl).Err()
}

// Del drops the given keys.
func Del(keys ...string) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}
