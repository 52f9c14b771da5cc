package leaderboard

import (
	"context"
	"errors"
	"matchbet-server/internal/clients/redis"
	"matchbet-server/internal/observability"
	"sort"
	"testing"

	"github.com/google/uuid"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeZSet keeps a single sorted set in memory.
type fakeZSet struct {
	scores map[string]float64
	err    error
}

func newFakeZSet() *fakeZSet {
	return &fakeZSet{scores: map[string]float64{}}
}

func (f *fakeZSet) ZAdd(_ context.Context, _ string, members ...redisLib.Z) error {
	if f.err != nil {
		return f.err
	}
	for _, m := range members {
		f.scores[m.Member.(string)] = m.Score
	}
	return nil
}

func (f *fakeZSet) sorted() []redisLib.Z {
	out := make([]redisLib.Z, 0, len(f.scores))
	for m, s := range f.scores {
		out = append(out, redisLib.Z{Member: m, Score: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (f *fakeZSet) ZRevRank(_ context.Context, _ string, member string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	for i, z := range f.sorted() {
		if z.Member == member {
			return int64(i), nil
		}
	}
	return 0, redis.Nil
}

func (f *fakeZSet) ZScore(_ context.Context, _ string, member string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	s, ok := f.scores[member]
	if !ok {
		return 0, redis.Nil
	}
	return s, nil
}

func (f *fakeZSet) ZRevRangeWithScores(_ context.Context, _ string, start, stop int64) ([]redisLib.Z, error) {
	if f.err != nil {
		return nil, f.err
	}
	all := f.sorted()
	if stop >= int64(len(all)) {
		stop = int64(len(all)) - 1
	}
	if start > stop {
		return nil, nil
	}
	return all[start : stop+1], nil
}

func (f *fakeZSet) ZCard(_ context.Context, _ string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.scores)), nil
}

func TestRedisBoard(t *testing.T) {
	ctx := context.Background()
	zset := newFakeZSet()
	board := newBoard(zset, ProfitKey, observability.NewLogger())

	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, board.SetScore(ctx, alice, 42.5))
	require.NoError(t, board.SetScore(ctx, bob, 6.65))
	require.NoError(t, board.SetScore(ctx, carol, 120))
	require.NoError(t, board.SetScore(ctx, bob, 88.1))

	top, err := board.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, carol.String(), top[0].UserID)
	assert.Equal(t, "120.00", top[0].TotalProfit.String())
	assert.Equal(t, int64(2), top[1].Rank)
	assert.Equal(t, "88.10", top[1].TotalProfit.String())

	entry, found, err := board.Rank(ctx, alice)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(3), entry.Rank)

	_, found, err = board.Rank(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)

	count, err := board.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRedisBoard_Errors(t *testing.T) {
	zset := newFakeZSet()
	zset.err = errors.New("connection refused")
	board := newBoard(zset, ProfitKey, observability.NewLogger())

	_, err := board.Top(context.Background(), 10)
	assert.ErrorIs(t, err, zset.err)

	_, _, err = board.Rank(context.Background(), uuid.New())
	assert.ErrorIs(t, err, zset.err)
}

func TestNewRedisBoard_DisabledClient(t *testing.T) {
	assert.Nil(t, NewRedisBoard(nil, observability.NewLogger()))
}
