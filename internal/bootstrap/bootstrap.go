package bootstrap

import (
	"context"
	"fmt"
	"time"

	"matchbet-server/internal/aggregator"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/config"
	"matchbet-server/internal/events"
	"matchbet-server/internal/jobs"
	"matchbet-server/internal/jobs/scheduler"
	"matchbet-server/internal/leaderboard"
	"matchbet-server/internal/metrics"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/ratelimit"
	"matchbet-server/internal/store"
	"matchbet-server/internal/store/memory"
	"matchbet-server/internal/workers"

	aggregatorHandler "matchbet-server/internal/aggregator/handler"
	authHandler "matchbet-server/internal/auth/handler"
	authProcessor "matchbet-server/internal/auth/processor"
	betsHandler "matchbet-server/internal/bets/handler"
	betsProcessor "matchbet-server/internal/bets/processor"
	calculatorHandler "matchbet-server/internal/calculator/handler"
	catalogHandler "matchbet-server/internal/catalog/handler"
	catalogProcessor "matchbet-server/internal/catalog/processor"
	kafkaClient "matchbet-server/internal/clients/kafka"
	redisClient "matchbet-server/internal/clients/redis"
	"matchbet-server/internal/instructions"
	instructionsHandler "matchbet-server/internal/instructions/handler"
	jobsHandler "matchbet-server/internal/jobs/handler"
	sweepJobs "matchbet-server/internal/jobs/scheduler/jobs"
	jobWorkers "matchbet-server/internal/jobs/workers"
	leaderboardHandler "matchbet-server/internal/leaderboard/handler"
	leaderboardProcessor "matchbet-server/internal/leaderboard/processor"
	progressHandler "matchbet-server/internal/progress/handler"
	progressProcessor "matchbet-server/internal/progress/processor"

	"github.com/hibiken/asynq"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store   store.Storer
	Logger  *observability.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics

	// Handlers
	AuthHandler         authHandler.Handler
	CalculatorHandler   calculatorHandler.Handler
	InstructionsHandler instructionsHandler.Handler
	CatalogHandler      catalogHandler.Handler
	ProgressHandler     progressHandler.Handler
	BetsHandler         betsHandler.Handler
	SummaryHandler      aggregatorHandler.Handler
	LeaderboardHandler  leaderboardHandler.Handler
	JobsHandler         jobsHandler.Handler

	// Middleware
	RateLimiter *ratelimit.Service

	// Processors shared with the worker binary
	Progress    *progressProcessor.ProgressProcessor
	Leaderboard *leaderboardProcessor.LeaderboardProcessor
	ExpiryJob   *jobWorkers.ExpiryWorker

	// Background workers. EventPool is nil when events go to Kafka;
	// Scheduler is nil when Redis runs the sweep through asynq.
	EventPool workers.WorkerPool
	Scheduler *scheduler.Scheduler

	// Clients (for cleanup)
	KafkaProducer *kafkaClient.Producer
	Redis         *redisClient.Client
	JobClient     *jobs.Client
	closeStore    func() error
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger:  logger,
		Clock:   clock.System{},
		Metrics: metrics.New(),
	}

	// Initialize store
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		logger.Warn(ctx, "Using the in-memory store; data is lost on restart")
		deps.Store = memory.New()
	default:
		pg, err := store.New(cfg.Database.ConnectionString(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		deps.Store = pg
		deps.closeStore = pg.Close
	}

	// Initialize Redis (nil when disabled)
	var err error
	deps.Redis, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	engine := calculator.New(calculator.Config{
		SNRRatio:  cfg.Calculator.SNRRatio,
		Tolerance: cfg.Calculator.Tolerance,
	})
	summaries := aggregator.New(deps.Store, deps.Clock, logger)

	// Leaderboard consumes progress events
	board := leaderboard.NewRedisBoard(deps.Redis, logger)
	deps.Leaderboard = leaderboardProcessor.New(board, deps.Store, logger)

	// Progress events go to Kafka when brokers are configured, otherwise to
	// an in-process pool running the leaderboard processor.
	var sink events.Sink
	if cfg.Kafka.Enabled() {
		deps.KafkaProducer = kafkaClient.NewProducer(kafkaClient.ProducerConfig{
			Brokers: cfg.Kafka.BrokerList(),
			Topic:   cfg.Kafka.Topic,
		}, logger)
	} else {
		deps.EventPool = workers.NewWorkerPool(workers.WorkerPoolConfig{
			NumWorkers:   cfg.WorkerPool.LeaderboardWorkers,
			QueueSize:    cfg.WorkerPool.QueueSize,
			DrainTimeout: cfg.Scheduler.ShutdownTimeout,
			OnResult:     deps.Metrics.ObserveEvent,
		}, deps.Leaderboard, logger)
		sink = deps.EventPool
	}
	publisher := events.NewPublisher(deps.KafkaProducer, sink, logger)

	// Initialize processors and handlers
	progress := progressProcessor.New(deps.Store, deps.Store, engine, summaries, publisher, deps.Metrics, deps.Clock, logger)
	deps.Progress = &progress
	deps.ProgressHandler = progressHandler.New(progress, logger)

	catalog := catalogProcessor.New(deps.Store, deps.Clock, logger)
	deps.CatalogHandler = catalogHandler.New(catalog, logger)

	bets := betsProcessor.New(deps.Store, engine, summaries, deps.Metrics, deps.Clock, logger)
	deps.BetsHandler = betsHandler.New(bets, logger)

	deps.CalculatorHandler = calculatorHandler.New(engine, logger)
	deps.InstructionsHandler = instructionsHandler.New(instructions.New(engine), logger)
	deps.SummaryHandler = aggregatorHandler.New(summaries, logger)
	deps.LeaderboardHandler = leaderboardHandler.New(deps.Leaderboard, logger)

	auth := authProcessor.New(cfg.Auth.JWTSecret, cfg.Auth.AdminUserIDs, deps.Clock, logger)
	deps.AuthHandler = authHandler.New(auth, logger)

	deps.RateLimiter = ratelimit.NewService(deps.Redis, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, deps.Clock, logger)

	// Expiry sweep: queued through asynq when Redis is available, otherwise
	// ticked in-process.
	deps.ExpiryJob = jobWorkers.NewExpiryWorker(deps.Store, deps.Progress, deps.Clock, cfg.Scheduler.SweepBatchSize, logger)
	if deps.Redis != nil {
		deps.JobClient = jobs.NewClient(RedisConnOpt(cfg.Redis), logger)
	} else {
		deps.Scheduler = scheduler.New(logger)
		deps.Scheduler.Register(sweepJobs.NewExpirySweepJob(deps.ExpiryJob, deps.Clock, cfg.Scheduler.SweepBatchSize, cfg.Scheduler.SweepInterval))
	}
	deps.JobsHandler = jobsHandler.New(deps.JobClient, deps.ExpiryJob, deps.Clock, logger)

	return deps, nil
}

// RedisConnOpt returns the asynq connection options for the configured Redis
func RedisConnOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if d.JobClient != nil {
		if err := d.JobClient.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close job client", err)
		}
	}
	if d.KafkaProducer != nil {
		if err := d.KafkaProducer.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close kafka producer", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close redis client", err)
		}
	}
	if d.closeStore != nil {
		if err := d.closeStore(); err != nil {
			d.Logger.Error(ctx, "failed to close database", err)
		}
	}
}
