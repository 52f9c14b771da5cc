package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const betColumns = `
    id, user_id, progress_id, bet_type, bookmaker, exchange, event_name,
    selection, market, back_odds, back_stake, lay_odds, lay_stake, liability,
    commission_rate, expected_profit, outcome, actual_profit, event_date,
    notes, settled_at, created_at, updated_at`

const sqlCreateBet = `
INSERT INTO bets (
    id, user_id, progress_id, bet_type, bookmaker, exchange, event_name,
    selection, market, back_odds, back_stake, lay_odds, lay_stake, liability,
    commission_rate, expected_profit, outcome, event_date, notes, created_at,
    updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 'pending', $17, $18, $19, $19)
RETURNING` + betColumns

// CreateBet inserts a bet. The caller-supplied ID is the idempotency key, so
// a repeated ID yields ErrDuplicate.
func (q queries) CreateBet(ctx context.Context, params CreateBetParams) (Bet, error) {
	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var bet Bet
	err := sqlx.GetContext(ctx, q.db, &bet, sqlCreateBet,
		id,
		params.UserID,
		params.ProgressID,
		params.BetType,
		params.Bookmaker,
		params.Exchange,
		params.EventName,
		params.Selection,
		params.Market,
		params.BackOdds,
		params.BackStake,
		params.LayOdds,
		params.LayStake,
		params.Liability,
		params.CommissionRate,
		params.ExpectedProfit,
		params.EventDate,
		params.Notes,
		params.Now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return Bet{}, ErrDuplicate
		}
		return Bet{}, fmt.Errorf("failed to create bet: %w", err)
	}
	return bet, nil
}

const sqlGetBetByID = `
SELECT` + betColumns + `
FROM bets
WHERE id = $1`

func (q queries) GetBetByID(ctx context.Context, betID uuid.UUID) (Bet, error) {
	var bet Bet
	err := sqlx.GetContext(ctx, q.db, &bet, sqlGetBetByID, betID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bet{}, ErrNotFound
		}
		return Bet{}, fmt.Errorf("failed to get bet: %w", err)
	}
	return bet, nil
}

const sqlGetBetForUpdate = sqlGetBetByID + `
FOR UPDATE`

// GetBetForUpdate must run inside WithTx; a second transaction reading the
// same bet this way waits for the first to finish.
func (q queries) GetBetForUpdate(ctx context.Context, betID uuid.UUID) (Bet, error) {
	var bet Bet
	err := sqlx.GetContext(ctx, q.db, &bet, sqlGetBetForUpdate, betID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bet{}, ErrNotFound
		}
		return Bet{}, fmt.Errorf("failed to lock bet: %w", err)
	}
	return bet, nil
}

const sqlListBets = `
SELECT` + betColumns + `
FROM bets
WHERE user_id = $1
  AND ($2::text IS NULL OR outcome = $2)
  AND ($3::text IS NULL OR bet_type = $3)
ORDER BY created_at DESC
LIMIT $4 OFFSET $5`

func (q queries) ListBets(ctx context.Context, params ListBetsParams) ([]Bet, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	var bets []Bet
	err := sqlx.SelectContext(ctx, q.db, &bets, sqlListBets,
		params.UserID,
		params.Outcome,
		params.BetType,
		limit,
		params.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

const sqlListSettledBetsByUser = `
SELECT` + betColumns + `
FROM bets
WHERE user_id = $1
  AND outcome <> 'pending'
ORDER BY settled_at DESC NULLS LAST, created_at DESC`

// ListSettledBetsByUser returns every settled bet of a user, newest first.
func (q queries) ListSettledBetsByUser(ctx context.Context, userID uuid.UUID) ([]Bet, error) {
	var bets []Bet
	err := sqlx.SelectContext(ctx, q.db, &bets, sqlListSettledBetsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settled bets: %w", err)
	}
	return bets, nil
}

const sqlCountBetsByUser = `
SELECT
    COUNT(*) AS total,
    COUNT(*) FILTER (WHERE outcome = 'pending') AS pending,
    COUNT(*) FILTER (WHERE outcome = 'back_won') AS back_won,
    COUNT(*) FILTER (WHERE outcome = 'lay_won') AS lay_won
FROM bets
WHERE user_id = $1`

func (q queries) CountBetsByUser(ctx context.Context, userID uuid.UUID) (BetCounts, error) {
	var counts BetCounts
	err := sqlx.GetContext(ctx, q.db, &counts, sqlCountBetsByUser, userID)
	if err != nil {
		return BetCounts{}, fmt.Errorf("failed to count bets: %w", err)
	}
	return counts, nil
}

const sqlUpdateBet = `
UPDATE bets
SET progress_id = $2,
    outcome = $3,
    actual_profit = $4,
    event_date = $5,
    notes = $6,
    settled_at = $7,
    updated_at = $8
WHERE id = $1
RETURNING` + betColumns

// UpdateBet writes the mutable columns of a bet: its link, settlement and notes.
func (q queries) UpdateBet(ctx context.Context, bet Bet, now time.Time) (Bet, error) {
	var updated Bet
	err := sqlx.GetContext(ctx, q.db, &updated, sqlUpdateBet,
		bet.ID,
		bet.ProgressID,
		bet.Outcome,
		bet.ActualProfit,
		bet.EventDate,
		bet.Notes,
		bet.SettledAt,
		now,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bet{}, ErrNotFound
		}
		return Bet{}, fmt.Errorf("failed to update bet: %w", err)
	}
	return updated, nil
}

const sqlDeleteBet = `
DELETE FROM bets
WHERE id = $1`

func (q queries) DeleteBet(ctx context.Context, betID uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, sqlDeleteBet, betID)
	if err != nil {
		return fmt.Errorf("failed to delete bet: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete bet: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
