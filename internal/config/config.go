package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyEnvironmentVariable = errors.New("empty environment variable")
	ErrMemoryStoreInProduction  = errors.New("STORE_BACKEND=memory is for development only and cannot run with GO_ENV=production")
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Auth       AuthConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	WorkerPool WorkerPoolConfig
	Server     ServerConfig
	Calculator CalculatorConfig
	Store      StoreConfig
	RateLimit  RateLimitConfig
	Scheduler  SchedulerConfig
	LogLevel   string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecret string
	// AdminUserIDs may call the admin routes in addition to tokens carrying the admin role.
	AdminUserIDs []string
}

// RedisConfig holds Redis connection settings. Redis backs the leaderboard
// and the shared rate limiter; both degrade when it is disabled.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// KafkaConfig holds Kafka/event streaming configuration. With no brokers,
// progress events are delivered to the in-process worker pool instead.
type KafkaConfig struct {
	Brokers       string
	Topic         string
	ConsumerGroup string
}

// Enabled reports whether any brokers are configured
func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Brokers) != ""
}

// BrokerList splits the comma separated broker list
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// WorkerPoolConfig holds worker pool configuration for event processing
type WorkerPoolConfig struct {
	LeaderboardWorkers int // Number of workers applying progress events to the leaderboard
	QueueSize          int
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// CalculatorConfig holds the matched betting calculator settings
type CalculatorConfig struct {
	SNRRatio  decimal.Decimal
	Tolerance decimal.Decimal
}

// StoreConfig selects the persistence backend. The memory backend keeps
// every row in process behind a single lock and loses it on restart; it is
// for tests and local development and is refused when GO_ENV=production.
type StoreConfig struct {
	Backend string
}

// RateLimitConfig holds the per-user limit on state changing routes
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// SchedulerConfig holds the periodic job settings
type SchedulerConfig struct {
	ExpirySweepCron string
	// SweepInterval drives the in-process sweep when Redis is disabled.
	SweepInterval   time.Duration
	SweepBatchSize  int
	Concurrency     int
	ShutdownTimeout time.Duration
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}
	var err error

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	// Store configuration
	cfg.Store.Backend = getEnvWithDefault("STORE_BACKEND", StoreBackendPostgres)
	if cfg.Store.Backend != StoreBackendPostgres && cfg.Store.Backend != StoreBackendMemory {
		return nil, fmt.Errorf("STORE_BACKEND must be %s or %s, got %q", StoreBackendPostgres, StoreBackendMemory, cfg.Store.Backend)
	}
	if cfg.Store.Backend == StoreBackendMemory && os.Getenv("GO_ENV") == "production" {
		return nil, ErrMemoryStoreInProduction
	}

	// Database configuration
	if cfg.Store.Backend == StoreBackendPostgres {
		if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
			return nil, err
		}
		if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
			return nil, err
		}
		if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
			return nil, err
		}
		if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
			return nil, err
		}
	}

	// Auth configuration
	if cfg.Auth.JWTSecret, err = requireEnv("JWT_SECRET"); err != nil {
		return nil, err
	}
	cfg.Auth.AdminUserIDs = splitList(os.Getenv("ADMIN_USER_IDS"))

	// Redis configuration
	if cfg.Redis.Enabled, err = strconv.ParseBool(getEnvWithDefault("REDIS_ENABLED", "false")); err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_ENABLED: %w", err)
	}
	cfg.Redis.Host = getEnvWithDefault("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = strconv.Atoi(getEnvWithDefault("REDIS_PORT", "6379")); err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_PORT: %w", err)
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = strconv.Atoi(getEnvWithDefault("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_DB: %w", err)
	}

	// Kafka configuration
	cfg.Kafka.Brokers = os.Getenv("KAFKA_BROKERS")
	cfg.Kafka.Topic = getEnvWithDefault("KAFKA_TOPIC", "progress-events")
	cfg.Kafka.ConsumerGroup = getEnvWithDefault("KAFKA_CONSUMER_GROUP", "leaderboard-consumers")

	// Worker pool configuration
	if cfg.WorkerPool.LeaderboardWorkers, err = strconv.Atoi(getEnvWithDefault("LEADERBOARD_WORKERS", "4")); err != nil {
		return nil, fmt.Errorf("failed to parse LEADERBOARD_WORKERS: %w", err)
	}
	if cfg.WorkerPool.QueueSize, err = strconv.Atoi(getEnvWithDefault("WORKER_QUEUE_SIZE", "100")); err != nil {
		return nil, fmt.Errorf("failed to parse WORKER_QUEUE_SIZE: %w", err)
	}

	// Server configuration
	serverPort, err := requireEnv("SERVER_PORT")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	cfg.Server.AllowedOrigins = splitList(getEnvWithDefault("ALLOWED_ORIGINS", "http://localhost:3000"))

	// Calculator configuration
	if cfg.Calculator.SNRRatio, err = decimal.NewFromString(getEnvWithDefault("SNR_RATIO", "0.95")); err != nil {
		return nil, fmt.Errorf("failed to parse SNR_RATIO: %w", err)
	}
	if cfg.Calculator.Tolerance, err = decimal.NewFromString(getEnvWithDefault("CALC_TOLERANCE", "0.01")); err != nil {
		return nil, fmt.Errorf("failed to parse CALC_TOLERANCE: %w", err)
	}

	// Rate limit configuration
	if cfg.RateLimit.RequestsPerMinute, err = strconv.Atoi(getEnvWithDefault("RATE_LIMIT_PER_MINUTE", "120")); err != nil {
		return nil, fmt.Errorf("failed to parse RATE_LIMIT_PER_MINUTE: %w", err)
	}
	if cfg.RateLimit.Burst, err = strconv.Atoi(getEnvWithDefault("RATE_LIMIT_BURST", "20")); err != nil {
		return nil, fmt.Errorf("failed to parse RATE_LIMIT_BURST: %w", err)
	}

	// Scheduler configuration
	cfg.Scheduler.ExpirySweepCron = getEnvWithDefault("EXPIRY_SWEEP_CRON", "*/15 * * * *")
	if cfg.Scheduler.SweepInterval, err = time.ParseDuration(getEnvWithDefault("EXPIRY_SWEEP_INTERVAL", "15m")); err != nil {
		return nil, fmt.Errorf("failed to parse EXPIRY_SWEEP_INTERVAL: %w", err)
	}
	if cfg.Scheduler.SweepBatchSize, err = strconv.Atoi(getEnvWithDefault("EXPIRY_SWEEP_BATCH", "200")); err != nil {
		return nil, fmt.Errorf("failed to parse EXPIRY_SWEEP_BATCH: %w", err)
	}
	if cfg.Scheduler.Concurrency, err = strconv.Atoi(getEnvWithDefault("JOB_CONCURRENCY", "5")); err != nil {
		return nil, fmt.Errorf("failed to parse JOB_CONCURRENCY: %w", err)
	}
	if cfg.Scheduler.ShutdownTimeout, err = time.ParseDuration(getEnvWithDefault("SHUTDOWN_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("failed to parse SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// RedisAddr returns host:port for the Redis server
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
