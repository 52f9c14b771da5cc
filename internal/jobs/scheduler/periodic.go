package scheduler

import (
	"context"
	"fmt"
	"os"

	"matchbet-server/internal/jobs"
	"matchbet-server/internal/observability"

	"github.com/hibiken/asynq"
)

// NewPeriodic creates an asynq scheduler that enqueues the expiry sweep on
// the given cron spec. Only one scheduler should run per Redis.
func NewPeriodic(opt asynq.RedisConnOpt, cronSpec string, batchSize int, logger *observability.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Logger: NewAsynqLogger(logger),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Error(context.Background(), "failed to enqueue periodic task", err)
			}
		},
	})

	task, err := jobs.NewExpirySweepTask(jobs.ExpirySweepPayload{BatchSize: batchSize})
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register(cronSpec, task)
	if err != nil {
		return nil, fmt.Errorf("failed to register expiry sweep %q: %w", cronSpec, err)
	}

	logger.Info(context.Background(), fmt.Sprintf("Registered periodic expiry sweep %s (cron: %s)", entryID, cronSpec))
	return scheduler, nil
}

// AsynqLogger adapts observability.Logger to asynq.Logger
type AsynqLogger struct {
	logger *observability.Logger
}

func NewAsynqLogger(logger *observability.Logger) *AsynqLogger {
	return &AsynqLogger{logger: logger}
}

func (l *AsynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(context.Background(), fmt.Sprint(args...))
}

func (l *AsynqLogger) Info(args ...interface{}) {
	l.logger.Info(context.Background(), fmt.Sprint(args...))
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(context.Background(), fmt.Sprint(args...))
}

func (l *AsynqLogger) Error(args ...interface{}) {
	l.logger.Error(context.Background(), fmt.Sprint(args...), nil)
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(context.Background(), fmt.Sprint(args...), nil)
	os.Exit(1)
}
