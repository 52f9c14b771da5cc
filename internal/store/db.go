package store

import (
	"context"
	"errors"
	"fmt"

	"matchbet-server/internal/observability"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Import the pgx stdlib for sqlx
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when an update loses an optimistic version check.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

const pgUniqueViolation = "23505"

type Store struct {
	queries
	db     *sqlx.DB
	logger *observability.Logger
}

func New(connectionString string, logger *observability.Logger) (Store, error) {
	db, err := sqlx.Open("pgx", connectionString)
	if err != nil {
		return Store{}, fmt.Errorf("failed to open database: %w", err)
	}
	return Store{queries: queries{db: db}, db: db, logger: logger}, nil
}

// DB returns the underlying database connection
func (s Store) DB() *sqlx.DB {
	return s.db
}

func (s Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a single transaction. The transaction commits only
// when fn returns nil.
func (s Store) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.Error(ctx, "failed to begin transaction", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error(ctx, "failed to commit transaction", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queries holds every statement. It runs against either the pool or an open
// transaction.
type queries struct {
	db sqlx.ExtContext
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
