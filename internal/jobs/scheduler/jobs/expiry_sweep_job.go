package jobs

import (
	"context"
	"time"

	"matchbet-server/internal/clock"
	"matchbet-server/internal/jobs/workers"
)

// ExpirySweepJob runs the expiry sweep from the in-process scheduler
type ExpirySweepJob struct {
	worker    *workers.ExpiryWorker
	clock     clock.Clock
	batchSize int
	interval  time.Duration
}

// NewExpirySweepJob creates a new expiry sweep job
func NewExpirySweepJob(worker *workers.ExpiryWorker, clk clock.Clock, batchSize int, interval time.Duration) *ExpirySweepJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ExpirySweepJob{
		worker:    worker,
		clock:     clk,
		batchSize: batchSize,
		interval:  interval,
	}
}

func (j *ExpirySweepJob) Name() string {
	return "expiry_sweep"
}

func (j *ExpirySweepJob) Schedule() time.Duration {
	return j.interval
}

func (j *ExpirySweepJob) Run(ctx context.Context) error {
	_, err := j.worker.Sweep(ctx, j.clock.Now(), j.batchSize)
	return err
}
