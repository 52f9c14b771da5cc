package redis

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/config"
	"matchbet-server/internal/observability"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotInitialized is returned by every call on a disabled client.
var ErrNotInitialized = errors.New("redis client not initialized")

// Nil is returned when a key or member does not exist.
const Nil = redis.Nil

// Client wraps the Redis client with observability
type Client struct {
	client *redis.Client
	logger *observability.Logger
}

// NewClient creates a new Redis client. A disabled config yields a nil
// client, on which every method reports ErrNotInitialized.
func NewClient(cfg config.RedisConfig, logger *observability.Logger) (*Client, error) {
	if !cfg.Enabled {
		logger.Info(context.Background(), "Redis is disabled, skipping client initialization")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "host", Value: cfg.Host},
		observability.Field{Key: "port", Value: cfg.Port},
		observability.Field{Key: "db", Value: cfg.DB},
	)
	logger.Info(ctx, "successfully connected to Redis")

	return &Client{client: client, logger: logger}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ZAdd adds a member with score to a sorted set
func (c *Client) ZAdd(ctx context.Context, key string, members ...redis.Z) error {
	if !c.IsEnabled() {
		return ErrNotInitialized
	}
	return c.client.ZAdd(ctx, key, members...).Err()
}

// ZRevRank returns the rank of a member in a sorted set (descending order)
func (c *Client) ZRevRank(ctx context.Context, key, member string) (int64, error) {
	if !c.IsEnabled() {
		return 0, ErrNotInitialized
	}
	return c.client.ZRevRank(ctx, key, member).Result()
}

// ZScore returns the score of a member in a sorted set
func (c *Client) ZScore(ctx context.Context, key, member string) (float64, error) {
	if !c.IsEnabled() {
		return 0, ErrNotInitialized
	}
	return c.client.ZScore(ctx, key, member).Result()
}

// ZRevRangeWithScores returns members with scores in a sorted set (descending)
func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error) {
	if !c.IsEnabled() {
		return nil, ErrNotInitialized
	}
	return c.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
}

// ZCard returns the number of members in a sorted set
func (c *Client) ZCard(ctx context.Context, key string) (int64, error) {
	if !c.IsEnabled() {
		return 0, ErrNotInitialized
	}
	return c.client.ZCard(ctx, key).Result()
}

// ZRem removes members from a sorted set
func (c *Client) ZRem(ctx context.Context, key string, members ...interface{}) error {
	if !c.IsEnabled() {
		return ErrNotInitialized
	}
	return c.client.ZRem(ctx, key, members...).Err()
}

// SlidingWindow records one hit at now in a sorted-set window of the given
// length and returns how many hits the window holds, including this one.
func (c *Client) SlidingWindow(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	if !c.IsEnabled() {
		return 0, ErrNotInitialized
	}

	nowMs := now.UnixMilli()
	windowStartMs := now.Add(-window).UnixMilli()

	pipe := c.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStartMs))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: fmt.Sprintf("%d-%d", nowMs, now.Nanosecond())})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return count.Val(), nil
}

// Del deletes keys
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if !c.IsEnabled() {
		return ErrNotInitialized
	}
	return c.client.Del(ctx, keys...).Err()
}

// IsEnabled returns whether Redis is enabled
func (c *Client) IsEnabled() bool {
	return c != nil && c.client != nil
}
