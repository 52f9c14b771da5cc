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

	"matchbet-server/internal/clients/redis"
	"matchbet-server/internal/config"
	"matchbet-server/internal/leaderboard"
	"matchbet-server/internal/leaderboard/processor"
	"matchbet-server/internal/metrics"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"matchbet-server/internal/workers"
)

// kafka-worker applies progress events from Kafka to the Redis leaderboard.
func main() {
	logger := observability.NewLogger()
	ctx := context.Background()

	logger.Info(ctx, "Starting Kafka leaderboard worker...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx, "failed to load configuration", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Fatal(ctx, "failed to configure logger", err)
	}
	if !cfg.Kafka.Enabled() {
		logger.Fatal(ctx, "kafka-worker needs KAFKA_BROKERS", config.ErrEmptyEnvironmentVariable)
	}
	if cfg.Store.Backend != config.StoreBackendPostgres {
		logger.Fatal(ctx, "kafka-worker reads profit summaries from postgres", fmt.Errorf("unsupported store backend %q", cfg.Store.Backend))
	}

	// Initialize store
	dataStore, err := store.New(cfg.Database.ConnectionString(), logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize store", err)
	}
	defer dataStore.Close()

	// Initialize Redis
	redisClient, err := redis.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to redis", err)
	}
	if redisClient == nil {
		logger.Fatal(ctx, "kafka-worker needs REDIS_ENABLED=true", redis.ErrNotInitialized)
	}
	defer redisClient.Close()

	m := metrics.New()
	board := leaderboard.NewRedisBoard(redisClient, logger)
	leaderboardProcessor := processor.New(board, dataStore, logger)

	consumerConfig := workers.DefaultConsumerConfig(cfg.Kafka.BrokerList(), cfg.Kafka.ConsumerGroup, cfg.Kafka.Topic)
	consumerConfig.NumWorkers = cfg.WorkerPool.LeaderboardWorkers
	consumerConfig.QueueSize = cfg.WorkerPool.QueueSize
	consumerConfig.DrainTimeout = cfg.Scheduler.ShutdownTimeout
	consumer := workers.NewConsumer(consumerConfig, m.Instrument(leaderboardProcessor), logger)

	logger.Info(ctx, fmt.Sprintf(`Kafka leaderboard worker configuration:
  - Workers: %d
  - Kafka brokers: %v
  - Kafka topic: %s
  - Consumer group: %s`,
		consumerConfig.NumWorkers, consumerConfig.Brokers, consumerConfig.Topic, consumerConfig.ConsumerGroup))

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Expose consumer metrics
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server failed", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "leaderboard consumer error", err)
			cancel()
		}
	}()

	select {
	case <-sigChan:
		logger.Info(ctx, "Received shutdown signal, stopping consumer...")
	case <-ctx.Done():
	}

	consumer.Stop()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "failed to stop metrics server", err)
	}
	logger.Info(ctx, "Kafka leaderboard worker stopped")
}
