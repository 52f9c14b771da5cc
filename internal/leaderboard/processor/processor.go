package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/clients/kafka"
	"matchbet-server/internal/events"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrLeaderboardUnavailable = errors.New("leaderboard is unavailable")

const (
	defaultTopN = 10
	maxTopN     = 100
)

// Entry is one user's standing.
type Entry struct {
	Rank        int64        `json:"rank"`
	UserID      string       `json:"user_id"`
	TotalProfit money.Amount `json:"total_profit"`
}

// Board ranks users by total profit, highest first.
type Board interface {
	SetScore(ctx context.Context, userID uuid.UUID, score float64) error
	Top(ctx context.Context, limit int) ([]Entry, error)
	// Rank returns the user's entry, or found=false when they have no score.
	Rank(ctx context.Context, userID uuid.UUID) (entry Entry, found bool, err error)
	Count(ctx context.Context) (int64, error)
}

// SummaryReader reads the cached profit summary the board mirrors.
type SummaryReader interface {
	GetProfitSummary(ctx context.Context, userID uuid.UUID) (store.ProfitSummary, error)
}

type LeaderboardProcessor struct {
	board     Board
	summaries SummaryReader
	logger    *observability.Logger
}

// New builds a processor. board may be nil when Redis is disabled; reads then
// fail with ErrLeaderboardUnavailable and events are ignored.
func New(board Board, summaries SummaryReader, logger *observability.Logger) *LeaderboardProcessor {
	return &LeaderboardProcessor{
		board:     board,
		summaries: summaries,
		logger:    logger,
	}
}

// Standings is the leaderboard as seen by one user.
type Standings struct {
	Top     []Entry `json:"top"`
	You     *Entry  `json:"you,omitempty"`
	Players int64   `json:"players"`
}

func (p *LeaderboardProcessor) Standings(ctx context.Context, userID uuid.UUID, limit int) (Standings, error) {
	if p.board == nil {
		return Standings{}, ErrLeaderboardUnavailable
	}
	if limit <= 0 {
		limit = defaultTopN
	}
	if limit > maxTopN {
		limit = maxTopN
	}

	top, err := p.board.Top(ctx, limit)
	if err != nil {
		return Standings{}, p.unavailable(ctx, "failed to read top users", err)
	}
	players, err := p.board.Count(ctx)
	if err != nil {
		return Standings{}, p.unavailable(ctx, "failed to count users", err)
	}

	standings := Standings{Top: top, Players: players}
	entry, found, err := p.board.Rank(ctx, userID)
	if err != nil {
		return Standings{}, p.unavailable(ctx, "failed to read rank", err)
	}
	if found {
		standings.You = &entry
	}
	return standings, nil
}

// Process mirrors the user's total profit onto the board whenever one of
// their offers changes stage. It satisfies workers.EventProcessor.
func (p *LeaderboardProcessor) Process(ctx context.Context, event kafka.EventMessage) error {
	if event.Type != events.TypeProgressTransitioned || p.board == nil {
		return nil
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		p.logger.Warn(ctx, fmt.Sprintf("skipping event with invalid user id %q", event.UserID))
		return nil
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	summary, err := p.summaries.GetProfitSummary(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		p.logger.Error(ctx, "failed to get profit summary", err)
		return fmt.Errorf("failed to get profit summary: %w", err)
	}

	if err := p.board.SetScore(ctx, userID, summary.TotalProfit.Float64()); err != nil {
		p.logger.Error(ctx, "failed to update leaderboard score", err)
		return fmt.Errorf("failed to update leaderboard score: %w", err)
	}
	return nil
}

func (p *LeaderboardProcessor) Name() string {
	return "leaderboard"
}

func (p *LeaderboardProcessor) unavailable(ctx context.Context, msg string, err error) error {
	p.logger.Error(ctx, msg, err)
	return fmt.Errorf("%w: %s: %v", ErrLeaderboardUnavailable, msg, err)
}

// ScoreAmount converts a board score back to currency.
func ScoreAmount(score float64) money.Amount {
	return money.NewAmount(decimal.NewFromFloat(score)).Round()
}
