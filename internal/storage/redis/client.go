package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/duskfall/adventure/internal/config"
)

// Client implements Store against a Redis server using go-redis.
// Read failures degrade to "no data"; write failures are returned to the
// caller, who may choose to ignore them.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

var _ Store = (*Client)(nil)

// NewClient connects to Redis and verifies the connection with a ping.
//
// Precondition: cfg must contain a valid address; logger must be non-nil.
// Postcondition: Returns a connected Client or a non-nil error.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr(), err)
	}

	return &Client{rdb: rdb, logger: logger}, nil
}

// Close releases the underlying connection pool.
//
// Postcondition: The client is no longer usable after calling Close.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Set writes key=value with the given expiry.
//
// Postcondition: Returns nil on success; the error is the caller's to handle.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("setting key %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key, degrading to ("", false) on any failure.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn("redis get failed, treating as no data",
				zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// TTL returns the remaining lifetime of key. go-redis reports a missing key
// as -2ns and a key without expiry as -1ns, both of which satisfy the
// "negative means no live timer" contract. Backend errors degrade to -1.
func (c *Client) TTL(ctx context.Context, key string) time.Duration {
	ttl, err := c.rdb.TTL(ctx, key).Result()
	if err != nil {
		c.logger.Warn("redis ttl failed, treating as expired",
			zap.String("key", key), zap.Error(err))
		return -1
	}
	return ttl
}

// Delete removes the given keys.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("deleting keys: %w", err)
	}
	return nil
}

// SAdd adds members to a set.
func (c *Client) SAdd(ctx context.Context, set string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := c.rdb.SAdd(ctx, set, args...).Err(); err != nil {
		return fmt.Errorf("adding to set %q: %w", set, err)
	}
	return nil
}

// SRem removes members from a set.
func (c *Client) SRem(ctx context.Context, set string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := c.rdb.SRem(ctx, set, args...).Err(); err != nil {
		return fmt.Errorf("removing from set %q: %w", set, err)
	}
	return nil
}

// SMembers returns all members of a set, degrading to nil on failure.
func (c *Client) SMembers(ctx context.Context, set string) []string {
	members, err := c.rdb.SMembers(ctx, set).Result()
	if err != nil {
		c.logger.Warn("redis smembers failed, treating as empty",
			zap.String("set", set), zap.Error(err))
		return nil
	}
	return members
}
