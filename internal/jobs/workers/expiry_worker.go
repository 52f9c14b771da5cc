package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"matchbet-server/internal/clock"
	"matchbet-server/internal/jobs"
	"matchbet-server/internal/observability"
	progressProcessor "matchbet-server/internal/progress/processor"
	"matchbet-server/internal/store"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

//go:generate go run go.uber.org/mock/mockgen@latest -source=expiry_worker.go -destination=mocks_test.go -package=workers

const defaultSweepBatchSize = 200

// ExpirableLister finds active records past their offer's expiry window
type ExpirableLister interface {
	ListExpirableProgress(ctx context.Context, now time.Time, limit int) ([]store.ExpirableProgress, error)
}

// Expirer closes a record through the stage state machine
type Expirer interface {
	MarkExpired(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error)
}

// SweepResult tallies one sweep
type SweepResult struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ExpiryWorker expires offers whose window has elapsed
type ExpiryWorker struct {
	lister    ExpirableLister
	expirer   Expirer
	clock     clock.Clock
	batchSize int
	logger    *observability.Logger
}

// NewExpiryWorker creates a new expiry worker
func NewExpiryWorker(lister ExpirableLister, expirer Expirer, clk clock.Clock, batchSize int, logger *observability.Logger) *ExpiryWorker {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &ExpiryWorker{
		lister:    lister,
		expirer:   expirer,
		clock:     clk,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ProcessExpirySweepTask processes an expiry sweep task
func (w *ExpiryWorker) ProcessExpirySweepTask(ctx context.Context, task *asynq.Task) error {
	payload, err := jobs.ParseExpirySweepPayload(task.Payload())
	if err != nil {
		w.logger.Error(ctx, "failed to parse expiry sweep payload", err)
		// Retrying a malformed payload cannot succeed.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	now := payload.Now
	if now.IsZero() {
		now = w.clock.Now()
	}

	_, err = w.Sweep(ctx, now, payload.BatchSize)
	return err
}

// Sweep expires one batch of records due at now. Records that were closed
// or advanced concurrently are skipped. Individual failures are logged and
// counted without aborting the batch; the sweep only errors when listing
// fails or every record in the batch failed.
func (w *ExpiryWorker) Sweep(ctx context.Context, now time.Time, batchSize int) (SweepResult, error) {
	if batchSize <= 0 {
		batchSize = w.batchSize
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "job", Value: jobs.TypeExpirySweep})

	due, err := w.lister.ListExpirableProgress(ctx, now, batchSize)
	if err != nil {
		w.logger.Error(ctx, "failed to list expirable progress", err)
		return SweepResult{}, fmt.Errorf("failed to list expirable progress: %w", err)
	}

	result := SweepResult{Scanned: len(due)}
	for _, record := range due {
		recordCtx := observability.WithFields(ctx,
			observability.Field{Key: "user_id", Value: record.UserID.String()},
			observability.Field{Key: "offer_id", Value: record.OfferID.String()},
			observability.Field{Key: "progress_id", Value: record.ProgressID.String()},
		)

		_, err := w.expirer.MarkExpired(recordCtx, record.UserID, record.OfferID)
		if err == nil {
			result.Expired++
			continue
		}

		var illegal *progressProcessor.IllegalTransitionError
		var notFound *progressProcessor.NotFoundError
		if errors.As(err, &illegal) || errors.As(err, &notFound) {
			result.Skipped++
			w.logger.Debug(recordCtx, fmt.Sprintf("skipped expiry: %v", err))
			continue
		}

		result.Failed++
		w.logger.Error(recordCtx, "failed to expire offer", err)
	}

	w.logger.Info(ctx, fmt.Sprintf("expiry sweep done: scanned=%d expired=%d skipped=%d failed=%d",
		result.Scanned, result.Expired, result.Skipped, result.Failed))
	if len(due) == batchSize {
		w.logger.Warn(ctx, "expiry sweep filled its batch, remaining records wait for the next run")
	}

	if result.Failed > 0 && result.Failed == result.Scanned {
		return result, fmt.Errorf("failed to expire any of %d offers", result.Scanned)
	}
	return result, nil
}
