package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/events"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"time"

	"github.com/google/uuid"
)

// ProgressStore defines the storage operations required by ProgressProcessor
type ProgressStore interface {
	GetActiveProgress(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error)
	GetLatestProgress(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error)
	GetProgressByID(ctx context.Context, progressID uuid.UUID) (store.UserOfferProgress, error)
	ListProgressByUser(ctx context.Context, userID uuid.UUID, stage *string) ([]store.UserOfferProgress, error)
	CountProgressByUser(ctx context.Context, userID uuid.UUID) (store.ProgressCounts, error)
	WithTx(ctx context.Context, fn func(q store.Queries) error) error
}

// CatalogReader resolves the offers progress records point at.
type CatalogReader interface {
	GetOfferCatalogEntry(ctx context.Context, offerID uuid.UUID) (store.OfferCatalogEntry, error)
}

// SummaryRefresher recomputes a user's profit summary inside a transaction.
type SummaryRefresher interface {
	Refresh(ctx context.Context, q store.Queries, userID uuid.UUID) (store.ProfitSummary, error)
}

type EventPublisher interface {
	PublishTransition(ctx context.Context, t events.Transition) error
}

type MetricsRecorder interface {
	ObserveCommand(command, result string, elapsed time.Duration)
	AddSettledProfit(betType string, profit float64)
}

// maxAttempts bounds re-runs of a command that lost an optimistic version check.
const maxAttempts = 3

type ProgressProcessor struct {
	store     ProgressStore
	catalog   CatalogReader
	engine    calculator.Engine
	summaries SummaryRefresher
	events    EventPublisher
	metrics   MetricsRecorder
	clock     clock.Clock
	locks     *keyedMutex
	logger    *observability.Logger
}

func New(
	store ProgressStore,
	catalog CatalogReader,
	engine calculator.Engine,
	summaries SummaryRefresher,
	events EventPublisher,
	metrics MetricsRecorder,
	clk clock.Clock,
	logger *observability.Logger,
) ProgressProcessor {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return ProgressProcessor{
		store:     store,
		catalog:   catalog,
		engine:    engine,
		summaries: summaries,
		events:    events,
		metrics:   metrics,
		clock:     clk,
		locks:     newKeyedMutex(),
		logger:    logger,
	}
}

type settlement struct {
	betType string
	profit  money.Amount
}

// change is what a command did to a record inside its transaction.
type change struct {
	from     string
	progress store.UserOfferProgress
	created  bool
	changed  bool
	effects  effect
	settled  []settlement
}

func unchanged(progress store.UserOfferProgress) change {
	return change{from: progress.Stage, progress: progress}
}

// txn carries the transaction handle and the stage of the loaded record,
// which is named on every rejection.
type txn struct {
	q     store.Queries
	now   time.Time
	stage string
}

type mutation func(ctx context.Context, tx *txn) (change, error)

// execute runs one command under the (user, offer) lock inside a single
// transaction, retrying lost version checks. Events are published after commit.
func (p *ProgressProcessor) execute(ctx context.Context, key lockKey, cmd Command, fn mutation) (store.UserOfferProgress, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: key.userID.String()},
		observability.Field{Key: "offer_id", Value: key.offerID.String()},
		observability.Field{Key: "command", Value: string(cmd)},
	)
	started := p.clock.Now()

	unlock := p.locks.Lock(key)
	defer unlock()

	var (
		result change
		err    error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = p.attempt(ctx, key.userID, fn)
		if !errors.Is(err, store.ErrVersionConflict) {
			break
		}
		p.logger.Warn(ctx, fmt.Sprintf("version conflict on attempt %d", attempt))
	}

	switch {
	case errors.Is(err, store.ErrVersionConflict):
		err = &ConflictError{Resource: "progress", Reason: "record was modified concurrently"}
	case errors.Is(err, store.ErrDuplicate):
		err = &ConflictError{Resource: "progress", Reason: "a conflicting record already exists"}
	}
	if err != nil {
		p.metrics.ObserveCommand(string(cmd), resultLabel(err), p.clock.Now().Sub(started))
		p.logRejection(ctx, err)
		return store.UserOfferProgress{}, err
	}

	if !result.changed {
		p.metrics.ObserveCommand(string(cmd), "noop", p.clock.Now().Sub(started))
		p.logger.Debug(ctx, "command already applied")
		return result.progress, nil
	}

	p.metrics.ObserveCommand(string(cmd), "applied", p.clock.Now().Sub(started))
	for _, s := range result.settled {
		p.metrics.AddSettledProfit(s.betType, s.profit.Float64())
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "progress_id", Value: result.progress.ID.String()},
		observability.Field{Key: "stage", Value: result.progress.Stage},
	)
	p.logger.Info(ctx, fmt.Sprintf("progress moved from %s to %s", displayStage(result.from), result.progress.Stage))
	p.publish(ctx, cmd, result)

	return result.progress, nil
}

func (p *ProgressProcessor) attempt(ctx context.Context, userID uuid.UUID, fn mutation) (change, error) {
	var result change
	err := p.store.WithTx(ctx, func(q store.Queries) error {
		tx := &txn{q: q, now: p.clock.Now()}
		c, err := fn(ctx, tx)
		if err != nil {
			return attachStage(err, tx.stage)
		}
		if c.changed && !c.created {
			updated, err := q.UpdateProgress(ctx, c.progress, tx.now)
			if err != nil {
				return err
			}
			c.progress = updated
		}
		if c.changed && c.effects&effectRefresh != 0 {
			if _, err := p.summaries.Refresh(ctx, q, userID); err != nil {
				return fmt.Errorf("failed to refresh profit summary: %w", err)
			}
		}
		result = c
		return nil
	})
	return result, err
}

func (p *ProgressProcessor) publish(ctx context.Context, cmd Command, c change) {
	if p.events == nil {
		return
	}
	err := p.events.PublishTransition(ctx, events.Transition{
		Command:  string(cmd),
		From:     c.from,
		Progress: c.progress,
		At:       c.progress.UpdatedAt,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to publish progress event", err)
	}
}

func (p *ProgressProcessor) logRejection(ctx context.Context, err error) {
	if resultLabel(err) == "rejected" {
		p.logger.Info(ctx, fmt.Sprintf("command rejected: %s", err.Error()))
		return
	}
	p.logger.Error(ctx, "command failed", err)
}

func resultLabel(err error) string {
	var (
		vErr *money.ValidationError
		cErr *calculator.CalculationError
		iErr *IllegalTransitionError
		nErr *NotFoundError
		fErr *ConflictError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &cErr), errors.As(err, &iErr),
		errors.As(err, &nErr), errors.As(err, &fErr):
		return "rejected"
	}
	return "error"
}

func displayStage(s string) string {
	if s == noRecord {
		return "none"
	}
	return s
}

// load returns the record a (user, offer) command applies to. With no active
// record the latest terminal one rejects the command.
func (p *ProgressProcessor) load(ctx context.Context, tx *txn, userID, offerID uuid.UUID, cmd Command) (store.UserOfferProgress, error) {
	progress, err := tx.q.GetActiveProgress(ctx, userID, offerID)
	if err == nil {
		tx.stage = progress.Stage
		return progress, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.UserOfferProgress{}, fmt.Errorf("failed to get active progress: %w", err)
	}

	latest, err := tx.q.GetLatestProgress(ctx, userID, offerID)
	switch {
	case err == nil:
		tx.stage = latest.Stage
		return store.UserOfferProgress{}, &IllegalTransitionError{Stage: latest.Stage, Command: cmd, Reason: "record is closed"}
	case errors.Is(err, store.ErrNotFound):
		return store.UserOfferProgress{}, &NotFoundError{Resource: "progress", ID: offerID.String()}
	default:
		return store.UserOfferProgress{}, fmt.Errorf("failed to get latest progress: %w", err)
	}
}

// offer resolves a catalog entry. When active is set, inactive offers are
// treated as missing.
func (p *ProgressProcessor) offer(ctx context.Context, offerID uuid.UUID, active bool) (store.OfferCatalogEntry, error) {
	entry, err := p.catalog.GetOfferCatalogEntry(ctx, offerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.OfferCatalogEntry{}, &NotFoundError{Resource: "offer", ID: offerID.String()}
		}
		p.logger.Error(ctx, "failed to get offer", err)
		return store.OfferCatalogEntry{}, fmt.Errorf("failed to get offer: %w", err)
	}
	if active && !entry.IsActive {
		return store.OfferCatalogEntry{}, &NotFoundError{Resource: "offer", ID: offerID.String()}
	}
	return entry, nil
}

// advance moves progress one row along the transition table.
func advance(progress *store.UserOfferProgress, cmd Command, want string) (effect, error) {
	next, t, ok := lookup(progress.Stage, cmd, want)
	if !ok {
		return 0, &IllegalTransitionError{Stage: progress.Stage, Command: cmd}
	}
	progress.Stage = next
	return t.effects, nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveCommand(string, string, time.Duration) {}
func (nopMetrics) AddSettledProfit(string, float64)             {}
