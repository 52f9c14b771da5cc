package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("STORE_BACKEND", StoreBackendPostgres)
	t.Setenv("DB_HOST", "db:5432")
	t.Setenv("DB_USERNAME", "matchbet")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "matchbet_db")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "8080")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreBackendPostgres, cfg.Store.Backend)
	assert.Equal(t, "postgres://matchbet:secret@db:5432/matchbet_db", cfg.Database.ConnectionString())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.95", cfg.Calculator.SNRRatio.String())
	assert.Equal(t, "0.01", cfg.Calculator.Tolerance.String())
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "*/15 * * * *", cfg.Scheduler.ExpirySweepCron)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.SweepInterval)
	assert.Equal(t, 4, cfg.WorkerPool.LeaderboardWorkers)
}

func TestLoad_PostgresRequiresDatabase(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_BACKEND", StoreBackendPostgres)
	t.Setenv("DB_HOST", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrEmptyEnvironmentVariable)
}

func TestLoad_MemoryBackendRefusedInProduction(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_BACKEND", StoreBackendMemory)

	_, err := Load()
	assert.ErrorIs(t, err, ErrMemoryStoreInProduction)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_BACKEND", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}

func TestKafkaConfig_BrokerList(t *testing.T) {
	k := KafkaConfig{Brokers: "kafka-1:9092, kafka-2:9092,,"}
	assert.True(t, k.Enabled())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, k.BrokerList())
}
