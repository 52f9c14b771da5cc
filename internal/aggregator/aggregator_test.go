package aggregator

import (
	"context"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"matchbet-server/internal/store/memory"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settledBet(bookmaker, profit string, settledAt time.Time) store.Bet {
	p := money.RequireAmount(profit)
	return store.Bet{
		ID:           uuid.New(),
		Bookmaker:    bookmaker,
		Outcome:      store.BetOutcomeLayWon,
		ActualProfit: &p,
		SettledAt:    &settledAt,
		CreatedAt:    settledAt,
	}
}

func TestCompute_Windows(t *testing.T) {
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)

	bets := []store.Bet{
		settledBet("Bet365", "-0.73", now.Add(-24*time.Hour)),
		settledBet("Bet365", "22.50", now.Add(-7*24*time.Hour)),
		settledBet("Coral", "10.00", now.Add(-20*24*time.Hour)),
		settledBet("Coral", "5.00", now.Add(-45*24*time.Hour)),
		{ID: uuid.New(), Bookmaker: "SkyBet", Outcome: store.BetOutcomePending, CreatedAt: now},
	}

	totals := Compute(bets, now)

	assert.Equal(t, "36.77", totals.Total.String())
	assert.Equal(t, "21.77", totals.Weekly.String())
	assert.Equal(t, "31.77", totals.Monthly.String())
	assert.Equal(t, 4, totals.Settled)
	require.Len(t, totals.ByBookmaker, 2)
	assert.Equal(t, "Bet365", totals.ByBookmaker[0].Bookmaker)
	assert.Equal(t, "21.77", totals.ByBookmaker[0].Profit.String())
	assert.Equal(t, 2, totals.ByBookmaker[1].Bets)
}

func TestCompute_FallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)
	b := settledBet("Bet365", "3.00", now)
	b.SettledAt = nil
	b.CreatedAt = now.Add(-10 * 24 * time.Hour)

	totals := Compute([]store.Bet{b}, now)

	assert.True(t, totals.Weekly.IsZero())
	assert.Equal(t, "3.00", totals.Monthly.String())
}

func TestSummary_ComputesOnFirstRead(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	agg := New(s, clk, observability.NewLogger())
	userID := uuid.New()

	bet, err := s.CreateBet(ctx, store.CreateBetParams{UserID: userID, Bookmaker: "Bet365", BetType: store.BetTypeQualifying, Now: now})
	require.NoError(t, err)
	profit := money.RequireAmount("-0.73")
	bet.Outcome = store.BetOutcomeBackWon
	bet.ActualProfit = &profit
	bet.SettledAt = &now
	_, err = s.UpdateBet(ctx, bet, now)
	require.NoError(t, err)

	summary, err := agg.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "-0.73", summary.TotalProfit.String())
	assert.Equal(t, 1, summary.SettledBets)

	cached, err := s.GetProfitSummary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, summary.TotalProfit.String(), cached.TotalProfit.String())
}

func TestSummary_WindowsMoveWithTheClock(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	now := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	agg := New(s, clk, observability.NewLogger())
	userID := uuid.New()

	bet, err := s.CreateBet(ctx, store.CreateBetParams{UserID: userID, Bookmaker: "Bet365", BetType: store.BetTypeQualifying, Now: now})
	require.NoError(t, err)
	profit := money.RequireAmount("-0.73")
	bet.Outcome = store.BetOutcomeLayWon
	bet.ActualProfit = &profit
	bet.SettledAt = &now
	_, err = s.UpdateBet(ctx, bet, now)
	require.NoError(t, err)

	summary, err := agg.Summary(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "-0.73", summary.WeeklyProfit.String())
	assert.Equal(t, "-0.73", summary.MonthlyProfit.String())

	clk.Advance(8 * 24 * time.Hour)
	summary, err = agg.Summary(ctx, userID)
	require.NoError(t, err)
	assert.True(t, summary.WeeklyProfit.IsZero())
	assert.Equal(t, "-0.73", summary.MonthlyProfit.String())
	assert.Equal(t, "-0.73", summary.TotalProfit.String())

	clk.Advance(52 * 24 * time.Hour)
	summary, err = agg.Summary(ctx, userID)
	require.NoError(t, err)
	assert.True(t, summary.WeeklyProfit.IsZero())
	assert.True(t, summary.MonthlyProfit.IsZero())
	assert.Equal(t, "-0.73", summary.TotalProfit.String())
	assert.Equal(t, 1, summary.SettledBets)
}
