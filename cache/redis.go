// Package cache wraps redis for reference-data lookups and rate limiting.
// A nil *Cache is valid and behaves as an always-missing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

const (
	PublisherNamePrefix = "publisher:name:" // publisher:name:valve
	DeveloperNamePrefix = "developer:name:" // developer:name:valve
	RateLimitPrefix     = "ratelimit:"      // ratelimit:login:127.0.0.1

	ReferenceTTL = time.Hour
)

type Cache struct {
	client *redis.Client
}

// Options configures a redis connection.
type Options struct {
	Addr     string
	Password string
}

// New connects to redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Set stores value as JSON with ttl.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Get decodes the JSON stored at key into dest. It returns ErrMiss when the
// key is absent or the cache is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if c == nil {
		return ErrMiss
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

func nameKey(prefix, name string) string {
	return prefix + strings.ToLower(strings.TrimSpace(name))
}

// GetPublisherID returns the cached id for a publisher name.
func (c *Cache) GetPublisherID(ctx context.Context, name string) (uint, error) {
	var id uint
	err := c.Get(ctx, nameKey(PublisherNamePrefix, name), &id)
	return id, err
}

func (c *Cache) SetPublisherID(ctx context.Context, name string, id uint) error {
	return c.Set(ctx, nameKey(PublisherNamePrefix, name), id, ReferenceTTL)
}

func (c *Cache) GetDeveloperID(ctx context.Context, name string) (uint, error) {
	var id uint
	err := c.Get(ctx, nameKey(DeveloperNamePrefix, name), &id)
	return id, err
}

func (c *Cache) SetDeveloperID(ctx context.Context, name string, id uint) error {
	return c.Set(ctx, nameKey(DeveloperNamePrefix, name), id, ReferenceTTL)
}

// CheckRateLimit counts a hit for key in a fixed window. It returns whether
// the hit is allowed, how many remain and, when refused, how long until the
// window resets. A disabled cache allows everything.
func (c *Cache) CheckRateLimit(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, int, time.Duration, error) {
	if c == nil {
		return true, maxRequests, 0, nil
	}
	key = RateLimitPrefix + key

	// Create the counter with its TTL in the same MULTI as the increment.
	var incr *redis.IntCmd
	if _, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	}); err != nil {
		return false, 0, 0, fmt.Errorf("rate limit: %w", err)
	}

	count := int(incr.Val())
	if count > maxRequests {
		ttl, err := c.client.TTL(ctx, key).Result()
		if err != nil || ttl <= 0 {
			ttl = window
		}
		return false, 0, ttl, nil
	}
	return true, maxRequests - count, 0, nil
}
