package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/aggregator"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrBetNotFound       = errors.New("bet not found")
	ErrBetLinked         = errors.New("bet is linked to an offer")
	ErrBetAlreadySettled = errors.New("bet already settled")
	ErrDuplicateBet      = errors.New("bet id already used")
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// BetStore defines the storage operations required by BetProcessor
type BetStore interface {
	CreateBet(ctx context.Context, params store.CreateBetParams) (store.Bet, error)
	GetBetByID(ctx context.Context, betID uuid.UUID) (store.Bet, error)
	ListBets(ctx context.Context, params store.ListBetsParams) ([]store.Bet, error)
	ListSettledBetsByUser(ctx context.Context, userID uuid.UUID) ([]store.Bet, error)
	CountBetsByUser(ctx context.Context, userID uuid.UUID) (store.BetCounts, error)
	WithTx(ctx context.Context, fn func(q store.Queries) error) error
}

// SummaryRefresher recomputes a user's profit summary inside a transaction.
type SummaryRefresher interface {
	Refresh(ctx context.Context, q store.Queries, userID uuid.UUID) (store.ProfitSummary, error)
}

type SettlementRecorder interface {
	AddSettledProfit(betType string, profit float64)
}

type BetProcessor struct {
	store     BetStore
	engine    calculator.Engine
	summaries SummaryRefresher
	metrics   SettlementRecorder
	clock     clock.Clock
	logger    *observability.Logger
}

func New(store BetStore, engine calculator.Engine, summaries SummaryRefresher, metrics SettlementRecorder, clk clock.Clock, logger *observability.Logger) BetProcessor {
	return BetProcessor{
		store:     store,
		engine:    engine,
		summaries: summaries,
		metrics:   metrics,
		clock:     clk,
		logger:    logger,
	}
}

// LogBetRequest is a bet logged outside any offer. When LayStake is nil the
// balancing lay stake is used.
type LogBetRequest struct {
	ID         *uuid.UUID
	BetType    calculator.BetType
	Bookmaker  string
	Exchange   string
	EventName  string
	Selection  string
	Market     *string
	BackOdds   money.Odds
	BackStake  money.Amount
	LayOdds    money.Odds
	LayStake   *money.Amount
	Commission money.Rate
	EventDate  *time.Time
	Notes      *string
}

type ListBetsRequest struct {
	Outcome *string
	BetType *string
	Limit   int
	Offset  int
}

type UpdateBetRequest struct {
	Notes     *string
	EventDate *time.Time
}

// LogBet validates a bet against the calculator and stores it. Repeating a
// request with the same ID returns the stored bet.
func (p *BetProcessor) LogBet(ctx context.Context, userID uuid.UUID, req LogBetRequest) (store.Bet, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: userID.String()},
		observability.Field{Key: "bet_type", Value: string(req.BetType)},
	)

	if req.ID != nil {
		existing, err := p.store.GetBetByID(ctx, *req.ID)
		switch {
		case err == nil && existing.UserID == userID:
			return existing, nil
		case err == nil:
			return store.Bet{}, ErrDuplicateBet
		case !errors.Is(err, store.ErrNotFound):
			p.logger.Error(ctx, "failed to get bet", err)
			return store.Bet{}, fmt.Errorf("failed to get bet: %w", err)
		}
	}

	in := calculator.Input{
		BetType:    req.BetType,
		BackStake:  req.BackStake,
		BackOdds:   req.BackOdds,
		LayOdds:    req.LayOdds,
		Commission: req.Commission,
	}
	res, err := p.engine.Calculate(in)
	if err != nil {
		return store.Bet{}, err
	}
	if req.LayStake != nil {
		if res, err = p.engine.Evaluate(in, *req.LayStake); err != nil {
			return store.Bet{}, err
		}
	}

	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}
	bet, err := p.store.CreateBet(ctx, store.CreateBetParams{
		ID:             id,
		UserID:         userID,
		BetType:        string(req.BetType),
		Bookmaker:      req.Bookmaker,
		Exchange:       req.Exchange,
		EventName:      req.EventName,
		Selection:      req.Selection,
		Market:         req.Market,
		BackOdds:       req.BackOdds,
		BackStake:      req.BackStake.Round(),
		LayOdds:        req.LayOdds,
		LayStake:       res.LayStake.Round(),
		Liability:      res.Liability.Round(),
		CommissionRate: req.Commission,
		ExpectedProfit: res.GuaranteedProfit.Round(),
		EventDate:      req.EventDate,
		Notes:          req.Notes,
		Now:            p.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return store.Bet{}, ErrDuplicateBet
		}
		p.logger.Error(ctx, "failed to create bet", err)
		return store.Bet{}, fmt.Errorf("failed to create bet: %w", err)
	}

	p.logger.Info(ctx, fmt.Sprintf("logged bet %s", bet.ID))
	return bet, nil
}

func (p *BetProcessor) ListBets(ctx context.Context, userID uuid.UUID, req ListBetsRequest) ([]store.Bet, error) {
	if req.Outcome != nil && !validOutcome(*req.Outcome) {
		return nil, &money.ValidationError{Field: "outcome", Value: *req.Outcome, Reason: "must be pending, back_won or lay_won"}
	}
	if req.BetType != nil && !calculator.BetType(*req.BetType).Valid() {
		return nil, &money.ValidationError{Field: "bet_type", Value: *req.BetType, Reason: "must be one of qualifying, free_bet_snr, free_bet_sr"}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	bets, err := p.store.ListBets(ctx, store.ListBetsParams{
		UserID:  userID,
		Outcome: req.Outcome,
		BetType: req.BetType,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to list bets", err)
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

func (p *BetProcessor) GetBet(ctx context.Context, userID, betID uuid.UUID) (store.Bet, error) {
	return p.owned(ctx, p.store.GetBetByID, userID, betID)
}

// UpdateBet edits the notes and event date of a bet.
func (p *BetProcessor) UpdateBet(ctx context.Context, userID, betID uuid.UUID, req UpdateBetRequest) (store.Bet, error) {
	var updated store.Bet
	err := p.store.WithTx(ctx, func(q store.Queries) error {
		bet, err := p.owned(ctx, q.GetBetForUpdate, userID, betID)
		if err != nil {
			return err
		}
		if req.Notes != nil {
			bet.Notes = req.Notes
		}
		if req.EventDate != nil {
			bet.EventDate = req.EventDate
		}
		updated, err = q.UpdateBet(ctx, bet, p.clock.Now())
		return err
	})
	if err != nil {
		return store.Bet{}, p.fail(ctx, "failed to update bet", err)
	}
	return updated, nil
}

// DeleteBet removes a standalone bet. Bets linked to an offer are part of its
// history and cannot be deleted.
func (p *BetProcessor) DeleteBet(ctx context.Context, userID, betID uuid.UUID) error {
	err := p.store.WithTx(ctx, func(q store.Queries) error {
		bet, err := p.owned(ctx, q.GetBetForUpdate, userID, betID)
		if err != nil {
			return err
		}
		if bet.ProgressID != nil {
			return ErrBetLinked
		}
		if err := q.DeleteBet(ctx, betID); err != nil {
			return err
		}
		if bet.IsSettled() {
			_, err = p.summaries.Refresh(ctx, q, userID)
		}
		return err
	})
	if err != nil {
		return p.fail(ctx, "failed to delete bet", err)
	}
	return nil
}

// SettleBet records the outcome of a standalone bet. Settling again with the
// same outcome is a no-op.
func (p *BetProcessor) SettleBet(ctx context.Context, userID, betID uuid.UUID, outcome calculator.Outcome) (store.Bet, error) {
	if !outcome.Settled() {
		return store.Bet{}, &money.ValidationError{Field: "outcome", Value: string(outcome), Reason: "must be back_won or lay_won"}
	}
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: userID.String()},
		observability.Field{Key: "bet_id", Value: betID.String()},
	)

	var (
		settled store.Bet
		applied bool
	)
	err := p.store.WithTx(ctx, func(q store.Queries) error {
		bet, err := p.owned(ctx, q.GetBetForUpdate, userID, betID)
		if err != nil {
			return err
		}
		if bet.ProgressID != nil {
			return ErrBetLinked
		}
		if bet.IsSettled() {
			if bet.Outcome == string(outcome) {
				settled = bet
				return nil
			}
			return ErrBetAlreadySettled
		}

		profit, err := p.engine.Settle(betInput(bet), bet.LayStake, outcome)
		if err != nil {
			return err
		}
		profit = profit.Round()
		now := p.clock.Now()
		bet.Outcome = string(outcome)
		bet.ActualProfit = &profit
		bet.SettledAt = &now
		if settled, err = q.UpdateBet(ctx, bet, now); err != nil {
			return err
		}
		applied = true
		_, err = p.summaries.Refresh(ctx, q, userID)
		return err
	})
	if err != nil {
		return store.Bet{}, p.fail(ctx, "failed to settle bet", err)
	}

	if applied {
		if p.metrics != nil {
			p.metrics.AddSettledProfit(settled.BetType, settled.ActualProfit.Float64())
		}
		p.logger.Info(ctx, fmt.Sprintf("settled bet as %s for %s", outcome, settled.ActualProfit))
	}
	return settled, nil
}

// BetStats summarises a user's bet log.
type BetStats struct {
	aggregator.Totals
	TotalBets int           `json:"total_bets"`
	Pending   int           `json:"pending"`
	BackWins  int           `json:"back_wins"`
	LayWins   int           `json:"lay_wins"`
	Average   money.Amount  `json:"average_profit"`
	Best      *money.Amount `json:"best_profit,omitempty"`
	Worst     *money.Amount `json:"worst_profit,omitempty"`
}

func (p *BetProcessor) Stats(ctx context.Context, userID uuid.UUID) (BetStats, error) {
	settled, err := p.store.ListSettledBetsByUser(ctx, userID)
	if err != nil {
		p.logger.Error(ctx, "failed to list settled bets", err)
		return BetStats{}, fmt.Errorf("failed to list settled bets: %w", err)
	}
	counts, err := p.store.CountBetsByUser(ctx, userID)
	if err != nil {
		p.logger.Error(ctx, "failed to count bets", err)
		return BetStats{}, fmt.Errorf("failed to count bets: %w", err)
	}

	stats := BetStats{
		Totals:    aggregator.Compute(settled, p.clock.Now()),
		TotalBets: counts.Total,
		Pending:   counts.Pending,
		BackWins:  counts.BackWon,
		LayWins:   counts.LayWon,
	}
	for _, b := range settled {
		if b.ActualProfit == nil {
			continue
		}
		profit := *b.ActualProfit
		if stats.Best == nil || profit.GreaterThan(*stats.Best) {
			stats.Best = &profit
		}
		if stats.Worst == nil || profit.LessThan(*stats.Worst) {
			stats.Worst = &profit
		}
	}
	if stats.Settled > 0 {
		stats.Average = stats.Total.Div(decimal.NewFromInt(int64(stats.Settled))).Round()
	}
	return stats, nil
}

type betLookup func(ctx context.Context, betID uuid.UUID) (store.Bet, error)

// owned fetches a bet of userID with get. Inside a transaction get is
// GetBetForUpdate so the row stays locked until commit.
func (p *BetProcessor) owned(ctx context.Context, get betLookup, userID, betID uuid.UUID) (store.Bet, error) {
	bet, err := get(ctx, betID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Bet{}, ErrBetNotFound
		}
		return store.Bet{}, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet.UserID != userID {
		return store.Bet{}, ErrBetNotFound
	}
	return bet, nil
}

// fail logs unexpected errors; domain errors pass through untouched.
func (p *BetProcessor) fail(ctx context.Context, msg string, err error) error {
	var vErr *money.ValidationError
	switch {
	case errors.Is(err, ErrBetNotFound), errors.Is(err, ErrBetLinked), errors.Is(err, ErrBetAlreadySettled), errors.As(err, &vErr):
		return err
	}
	p.logger.Error(ctx, msg, err)
	return fmt.Errorf("%s: %w", msg, err)
}

func validOutcome(o string) bool {
	switch o {
	case store.BetOutcomePending, store.BetOutcomeBackWon, store.BetOutcomeLayWon:
		return true
	}
	return false
}

func betInput(bet store.Bet) calculator.Input {
	return calculator.Input{
		BetType:    calculator.BetType(bet.BetType),
		BackStake:  bet.BackStake,
		BackOdds:   bet.BackOdds,
		LayOdds:    bet.LayOdds,
		Commission: bet.CommissionRate,
	}
}
