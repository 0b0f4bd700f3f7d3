// Package cache provides a Redis-backed store for enrichment lookups.
//
// Key strategy:
//   - SIM registry:  cdr:enrich:v1:sim:{sha256(number)}     → TTL (default 7 d)
//   - Caller ID:     cdr:enrich:v1:callerid:{sha256(number)} → TTL (default 7 d)
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 7 * 24 * time.Hour

	keyPrefix = "cdr:enrich:v1:"
)

// Client wraps redis.Client with the enrichment key scheme.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a new cache Client. A non-positive ttl means DefaultTTL.
// addr example: "localhost:6379"
func New(addr, password string, db int, ttl time.Duration) *Client {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{rdb: rdb, ttl: ttl}
}

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error { return c.rdb.Close() }

// Key returns the cache key for one lookup kind ("sim", "callerid") and
// number. Numbers are hashed so raw subscriber numbers never land in Redis.
func Key(kind, number string) string {
	h := sha256.Sum256([]byte(number))
	return fmt.Sprintf("%s%s:%x", keyPrefix, kind, h)
}

// Get returns the cached bytes for key, or nil on miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // cache miss
	}
	return val, err
}

// Set stores val under key with the client TTL.
func (c *Client) Set(ctx context.Context, key string, val []byte) error {
	return c.rdb.Set(ctx, key, val, c.ttl).Err()
}

// Delete removes a cache entry.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
