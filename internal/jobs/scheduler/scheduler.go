package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"matchbet-server/internal/observability"
)

// Job is a task run on a fixed interval by the in-process Scheduler
type Job interface {
	Name() string
	Run(ctx context.Context) error
	Schedule() time.Duration
}

// Scheduler runs jobs on tickers inside the API process. It is used when no
// Redis is configured for the asynq scheduler.
type Scheduler struct {
	jobs   []Job
	logger *observability.Logger
	wg     sync.WaitGroup
}

// New creates a new scheduler
func New(logger *observability.Logger) *Scheduler {
	return &Scheduler{
		jobs:   make([]Job, 0),
		logger: logger,
	}
}

// Register adds a job to the scheduler
func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)
	s.logger.Info(context.Background(), fmt.Sprintf("Registered scheduled job: %s (interval: %s)",
		job.Name(), job.Schedule()))
}

// Start runs every registered job until ctx is cancelled, then waits for
// in-flight runs to return.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info(ctx, fmt.Sprintf("Starting scheduler with %d jobs", len(s.jobs)))

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(ctx, job)
	}

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info(ctx, "Scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer s.wg.Done()
	jobCtx := observability.WithFields(ctx, observability.Field{Key: "scheduled_job", Value: job.Name()})

	ticker := time.NewTicker(job.Schedule())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(jobCtx, fmt.Sprintf("Stopping scheduled job: %s", job.Name()))
			return
		case <-ticker.C:
			_ = s.executeJob(jobCtx, job)
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job Job) error {
	start := time.Now()

	err := job.Run(ctx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error(ctx, fmt.Sprintf("Job %s failed after %v", job.Name(), duration), err)
		return err
	}

	s.logger.Debug(ctx, fmt.Sprintf("Job %s completed in %v", job.Name(), duration))
	return nil
}
