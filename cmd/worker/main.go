package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matchbet-server/internal/bootstrap"
	"matchbet-server/internal/config"
	"matchbet-server/internal/jobs"
	"matchbet-server/internal/jobs/scheduler"
	"matchbet-server/internal/observability"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

// worker runs the asynq job server and the periodic expiry sweep.
func main() {
	logger := observability.NewLogger()
	ctx := context.Background()

	logger.Info(ctx, "Starting background worker server...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx, "failed to load configuration", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Fatal(ctx, "failed to configure logger", err)
	}
	if !cfg.Redis.Enabled {
		logger.Fatal(ctx, "worker needs REDIS_ENABLED=true; without Redis the API runs the expiry sweep itself", config.ErrEmptyEnvironmentVariable)
	}

	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize dependencies", err)
	}
	defer deps.Cleanup()

	redisOpt := bootstrap.RedisConnOpt(cfg.Redis)

	// Create Asynq server with queue configuration
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Scheduler.Concurrency,
		Queues: map[string]int{
			jobs.QueueHigh:    6,
			jobs.QueueDefault: 3,
			jobs.QueueLow:     1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error(ctx, fmt.Sprintf("task %s failed", task.Type()), err)
		}),
		RetryDelayFunc:  asynq.DefaultRetryDelayFunc,
		ShutdownTimeout: cfg.Scheduler.ShutdownTimeout,
		Logger:          scheduler.NewAsynqLogger(logger),
	})

	// Create task handler (mux)
	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TypeExpirySweep, deps.ExpiryJob.ProcessExpirySweepTask)

	// Setup periodic expiry sweep
	periodic, err := scheduler.NewPeriodic(redisOpt, cfg.Scheduler.ExpirySweepCron, cfg.Scheduler.SweepBatchSize, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to create periodic scheduler", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Expired offers publish progress events. Without Kafka they are applied
	// to the leaderboard in-process.
	if deps.EventPool != nil {
		if err := deps.EventPool.Start(gctx); err != nil {
			logger.Fatal(ctx, "failed to start event worker pool", err)
		}
		g.Go(func() error {
			<-gctx.Done()
			drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.ShutdownTimeout)
			defer cancel()
			err := deps.EventPool.Drain(drainCtx)
			deps.EventPool.Stop()
			return err
		})
	}

	g.Go(func() error {
		if err := srv.Start(mux); err != nil {
			return fmt.Errorf("failed to start job server: %w", err)
		}
		logger.Info(gctx, fmt.Sprintf("Worker server started on Redis: %s", cfg.Redis.RedisAddr()))
		<-gctx.Done()
		srv.Shutdown()
		return nil
	})

	g.Go(func() error {
		if err := periodic.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		<-gctx.Done()
		periodic.Shutdown()
		return nil
	})

	// Expose job metrics
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           deps.Metrics.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "worker server stopped with error", err)
		return
	}
	logger.Info(ctx, "Worker server stopped")
}
