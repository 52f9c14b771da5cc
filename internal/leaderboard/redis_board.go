package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/clients/redis"
	"matchbet-server/internal/leaderboard/processor"
	"matchbet-server/internal/observability"

	"github.com/google/uuid"
	redisLib "github.com/redis/go-redis/v9"
)

// ProfitKey is the sorted set holding every user's total profit.
const ProfitKey = "lb:total_profit"

// ZSet is the slice of the Redis client the board uses.
type ZSet interface {
	ZAdd(ctx context.Context, key string, members ...redisLib.Z) error
	ZRevRank(ctx context.Context, key, member string) (int64, error)
	ZScore(ctx context.Context, key, member string) (float64, error)
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redisLib.Z, error)
	ZCard(ctx context.Context, key string) (int64, error)
}

// RedisBoard ranks users by total profit in a Redis ZSET, highest first.
type RedisBoard struct {
	redis  ZSet
	key    string
	logger *observability.Logger
}

// NewRedisBoard returns nil when the client is disabled so that callers fall
// back to reporting the leaderboard unavailable.
func NewRedisBoard(client *redis.Client, logger *observability.Logger) processor.Board {
	if !client.IsEnabled() {
		return nil
	}
	return newBoard(client, ProfitKey, logger)
}

func newBoard(z ZSet, key string, logger *observability.Logger) *RedisBoard {
	return &RedisBoard{
		redis:  z,
		key:    key,
		logger: logger,
	}
}

// SetScore replaces a user's score
func (b *RedisBoard) SetScore(ctx context.Context, userID uuid.UUID, score float64) error {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: userID.String()},
		observability.Field{Key: "score", Value: score},
	)

	err := b.redis.ZAdd(ctx, b.key, redisLib.Z{
		Score:  score,
		Member: userID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}

	b.logger.Debug(ctx, "updated leaderboard score")
	return nil
}

// Top returns the best limit users
func (b *RedisBoard) Top(ctx context.Context, limit int) ([]processor.Entry, error) {
	results, err := b.redis.ZRevRangeWithScores(ctx, b.key, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	entries := make([]processor.Entry, 0, len(results))
	for i, result := range results {
		member, ok := result.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, processor.Entry{
			Rank:        int64(i + 1),
			UserID:      member,
			TotalProfit: processor.ScoreAmount(result.Score),
		})
	}
	return entries, nil
}

// Rank returns the user's 1-indexed position
func (b *RedisBoard) Rank(ctx context.Context, userID uuid.UUID) (processor.Entry, bool, error) {
	member := userID.String()

	rank, err := b.redis.ZRevRank(ctx, b.key, member)
	if errors.Is(err, redis.Nil) {
		return processor.Entry{}, false, nil
	}
	if err != nil {
		return processor.Entry{}, false, fmt.Errorf("failed to get rank: %w", err)
	}

	score, err := b.redis.ZScore(ctx, b.key, member)
	if errors.Is(err, redis.Nil) {
		return processor.Entry{}, false, nil
	}
	if err != nil {
		return processor.Entry{}, false, fmt.Errorf("failed to get score: %w", err)
	}

	return processor.Entry{
		Rank:        rank + 1,
		UserID:      member,
		TotalProfit: processor.ScoreAmount(score),
	}, true, nil
}

// Count returns the number of users on the board
func (b *RedisBoard) Count(ctx context.Context) (int64, error) {
	count, err := b.redis.ZCard(ctx, b.key)
	if err != nil {
		return 0, fmt.Errorf("failed to get user count: %w", err)
	}
	return count, nil
}
