// Package aggregator maintains the cached per-user profit summary.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	WeeklyWindow  = 7 * 24 * time.Hour
	MonthlyWindow = 30 * 24 * time.Hour
)

// SummaryStore is the slice of store.Storer the aggregator reads and writes.
type SummaryStore interface {
	GetProfitSummary(ctx context.Context, userID uuid.UUID) (store.ProfitSummary, error)
	ListSettledBetsByUser(ctx context.Context, userID uuid.UUID) ([]store.Bet, error)
	WithTx(ctx context.Context, fn func(q store.Queries) error) error
}

type Aggregator struct {
	store  SummaryStore
	clock  clock.Clock
	logger *observability.Logger
}

func New(store SummaryStore, clk clock.Clock, logger *observability.Logger) Aggregator {
	return Aggregator{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// BookmakerProfit is the settled profit attributed to one bookmaker.
type BookmakerProfit struct {
	Bookmaker string       `json:"bookmaker"`
	Profit    money.Amount `json:"profit"`
	Bets      int          `json:"bets"`
}

// Totals is the result of folding a user's settled bets.
type Totals struct {
	Total       money.Amount      `json:"total_profit"`
	Weekly      money.Amount      `json:"weekly_profit"`
	Monthly     money.Amount      `json:"monthly_profit"`
	Settled     int               `json:"settled_bets"`
	ByBookmaker []BookmakerProfit `json:"by_bookmaker"`
}

// Compute folds settled bets into totals. Pending bets are ignored. A bet
// falls in a window when its settlement time, or creation time if it has
// none, is no older than the window at now.
func Compute(bets []store.Bet, now time.Time) Totals {
	var t Totals
	perBookmaker := make(map[string]*BookmakerProfit)

	for _, b := range bets {
		if !b.IsSettled() || b.ActualProfit == nil {
			continue
		}
		profit := b.ActualProfit.Round()
		t.Total = t.Total.Add(profit)
		t.Settled++

		at := b.CreatedAt
		if b.SettledAt != nil {
			at = *b.SettledAt
		}
		age := now.Sub(at)
		if age <= WeeklyWindow {
			t.Weekly = t.Weekly.Add(profit)
		}
		if age <= MonthlyWindow {
			t.Monthly = t.Monthly.Add(profit)
		}

		bp, ok := perBookmaker[b.Bookmaker]
		if !ok {
			bp = &BookmakerProfit{Bookmaker: b.Bookmaker}
			perBookmaker[b.Bookmaker] = bp
		}
		bp.Profit = bp.Profit.Add(profit)
		bp.Bets++
	}

	t.ByBookmaker = make([]BookmakerProfit, 0, len(perBookmaker))
	for _, bp := range perBookmaker {
		t.ByBookmaker = append(t.ByBookmaker, *bp)
	}
	sort.Slice(t.ByBookmaker, func(i, j int) bool {
		if c := t.ByBookmaker[i].Profit.Cmp(t.ByBookmaker[j].Profit); c != 0 {
			return c > 0
		}
		return t.ByBookmaker[i].Bookmaker < t.ByBookmaker[j].Bookmaker
	})
	return t
}

// Refresh recomputes the summary of a user through q, normally the
// transaction of the transition that triggered it. Concurrent refreshes of
// one user are serialised on the user's summary lock.
func (a Aggregator) Refresh(ctx context.Context, q store.Queries, userID uuid.UUID) (store.ProfitSummary, error) {
	if err := q.LockUserSummary(ctx, userID); err != nil {
		return store.ProfitSummary{}, fmt.Errorf("failed to lock profit summary: %w", err)
	}
	bets, err := q.ListSettledBetsByUser(ctx, userID)
	if err != nil {
		return store.ProfitSummary{}, fmt.Errorf("failed to load settled bets: %w", err)
	}
	counts, err := q.CountProgressByUser(ctx, userID)
	if err != nil {
		return store.ProfitSummary{}, fmt.Errorf("failed to count progress: %w", err)
	}

	now := a.clock.Now()
	totals := Compute(bets, now)
	summary, err := q.UpsertProfitSummary(ctx, store.ProfitSummary{
		UserID:          userID,
		TotalProfit:     totals.Total,
		WeeklyProfit:    totals.Weekly,
		MonthlyProfit:   totals.Monthly,
		SettledBets:     totals.Settled,
		CompletedOffers: counts.Completed,
		ActiveOffers:    counts.Active,
		UpdatedAt:       now,
	})
	if err != nil {
		return store.ProfitSummary{}, fmt.Errorf("failed to save profit summary: %w", err)
	}
	return summary, nil
}

// Summary returns the summary of a user, computing it on first read. The
// offer counts come from the cached row; the profit figures are folded
// again at the current time so the weekly and monthly windows move on even
// when nothing has been settled since the last refresh.
func (a Aggregator) Summary(ctx context.Context, userID uuid.UUID) (store.ProfitSummary, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	summary, err := a.store.GetProfitSummary(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		err = a.store.WithTx(ctx, func(q store.Queries) error {
			summary, err = a.Refresh(ctx, q, userID)
			return err
		})
		if err != nil {
			a.logger.Error(ctx, "failed to compute profit summary", err)
			return store.ProfitSummary{}, err
		}
		return summary, nil
	}
	if err != nil {
		a.logger.Error(ctx, "failed to get profit summary", err)
		return store.ProfitSummary{}, err
	}

	bets, err := a.store.ListSettledBetsByUser(ctx, userID)
	if err != nil {
		a.logger.Error(ctx, "failed to load settled bets", err)
		return store.ProfitSummary{}, err
	}
	totals := Compute(bets, a.clock.Now())
	summary.TotalProfit = totals.Total
	summary.WeeklyProfit = totals.Weekly
	summary.MonthlyProfit = totals.Monthly
	summary.SettledBets = totals.Settled
	return summary, nil
}
