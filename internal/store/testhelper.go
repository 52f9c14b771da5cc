package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"matchbet-server/internal/observability"

	"github.com/jmoiron/sqlx"
)

// matchbetTables lists every table in child-before-parent order for TRUNCATE.
var matchbetTables = []string{
	"user_profit_summaries",
	"bookmaker_preferences",
	"user_offer_progress",
	"bets",
	"offer_catalog",
}

// TestDB is a Store bound to a live Postgres test database.
type TestDB struct {
	db    *sqlx.DB
	Store Store
}

// SetupTestDB connects to the database named by TEST_DATABASE_URL, or to
// the local docker-compose database. The test is skipped when no database
// answers. Set TEST_DB_MIGRATE=true to apply migrations/ first.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	db, err := sqlx.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("test database unavailable: %v", err)
	}

	if os.Getenv("TEST_DB_MIGRATE") == "true" {
		if err := migrate(db); err != nil {
			db.Close()
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	logger := observability.NewLogger()
	return &TestDB{
		db:    db,
		Store: Store{queries: queries{db: db}, db: db, logger: logger},
	}
}

func testDSN() string {
	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("TEST_DB_USER", "matchbet_user"),
		envOr("TEST_DB_PASSWORD", "matchbet_password"),
		envOr("TEST_DB_HOST", "localhost"),
		envOr("TEST_DB_PORT", "5432"),
		envOr("TEST_DB_NAME", "matchbet_db"),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// migrate applies migrations/V*.sql in version order.
func migrate(db *sqlx.DB) error {
	var files []string
	for _, dir := range []string{"../../migrations", "migrations"} {
		matches, err := filepath.Glob(filepath.Join(dir, "V*.sql"))
		if err != nil {
			return fmt.Errorf("failed to list migrations: %w", err)
		}
		if len(matches) > 0 {
			files = matches
			break
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no migration files found")
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filepath.Base(file), err)
		}
	}
	return nil
}

// Truncate empties the given tables, or every matchbet table when none are
// named.
func (tdb *TestDB) Truncate(t *testing.T, tables ...string) {
	t.Helper()

	if len(tables) == 0 {
		tables = matchbetTables
	}
	for _, table := range tables {
		if _, err := tdb.db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

func (tdb *TestDB) Close() error {
	return tdb.db.Close()
}
