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

const progressColumns = `
    id, user_id, offer_id, stage, qualifying_bet_id, qualifying_stake,
    qualifying_odds, expected_qualifying_loss, qualifying_loss, free_bet_id,
    free_bet_value, expected_free_bet_profit, free_bet_profit, total_profit,
    failure_reason, notes, version, started_at, signed_up_at,
    qualifying_placed_at, free_bet_received_at, completed_at, created_at,
    updated_at`

const sqlCreateProgress = `
INSERT INTO user_offer_progress (id, user_id, offer_id, stage, started_at, total_profit, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, 1, $6, $6)
RETURNING` + progressColumns

// CreateProgress inserts a new progress record. A second non-terminal record
// for the same user and offer fails with ErrDuplicate.
func (q queries) CreateProgress(ctx context.Context, params CreateProgressParams) (UserOfferProgress, error) {
	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	var progress UserOfferProgress
	err := sqlx.GetContext(ctx, q.db, &progress, sqlCreateProgress,
		id,
		params.UserID,
		params.OfferID,
		params.Stage,
		params.StartedAt,
		params.Now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return UserOfferProgress{}, ErrDuplicate
		}
		return UserOfferProgress{}, fmt.Errorf("failed to create progress: %w", err)
	}
	return progress, nil
}

const sqlGetProgressByID = `
SELECT` + progressColumns + `
FROM user_offer_progress
WHERE id = $1`

func (q queries) GetProgressByID(ctx context.Context, progressID uuid.UUID) (UserOfferProgress, error) {
	var progress UserOfferProgress
	err := sqlx.GetContext(ctx, q.db, &progress, sqlGetProgressByID, progressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserOfferProgress{}, ErrNotFound
		}
		return UserOfferProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

const sqlGetActiveProgress = `
SELECT` + progressColumns + `
FROM user_offer_progress
WHERE user_id = $1
  AND offer_id = $2
  AND stage NOT IN ('completed', 'skipped', 'expired', 'failed')`

// GetActiveProgress returns the single non-terminal record for a user and offer.
func (q queries) GetActiveProgress(ctx context.Context, userID, offerID uuid.UUID) (UserOfferProgress, error) {
	var progress UserOfferProgress
	err := sqlx.GetContext(ctx, q.db, &progress, sqlGetActiveProgress, userID, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserOfferProgress{}, ErrNotFound
		}
		return UserOfferProgress{}, fmt.Errorf("failed to get active progress: %w", err)
	}
	return progress, nil
}

const sqlGetLatestProgress = `
SELECT` + progressColumns + `
FROM user_offer_progress
WHERE user_id = $1
  AND offer_id = $2
ORDER BY created_at DESC
LIMIT 1`

// GetLatestProgress returns the most recently created record for a user and
// offer, terminal or not.
func (q queries) GetLatestProgress(ctx context.Context, userID, offerID uuid.UUID) (UserOfferProgress, error) {
	var progress UserOfferProgress
	err := sqlx.GetContext(ctx, q.db, &progress, sqlGetLatestProgress, userID, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserOfferProgress{}, ErrNotFound
		}
		return UserOfferProgress{}, fmt.Errorf("failed to get latest progress: %w", err)
	}
	return progress, nil
}

const sqlListProgressByUser = `
SELECT` + progressColumns + `
FROM user_offer_progress
WHERE user_id = $1
  AND ($2::text IS NULL OR stage = $2)
ORDER BY updated_at DESC`

func (q queries) ListProgressByUser(ctx context.Context, userID uuid.UUID, stage *string) ([]UserOfferProgress, error) {
	var records []UserOfferProgress
	err := sqlx.SelectContext(ctx, q.db, &records, sqlListProgressByUser, userID, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return records, nil
}

const sqlCountProgressByUser = `
SELECT
    COUNT(*) FILTER (WHERE stage NOT IN ('completed', 'skipped', 'expired', 'failed')) AS active,
    COUNT(*) FILTER (WHERE stage = 'completed') AS completed,
    COUNT(*) FILTER (WHERE stage = 'skipped') AS skipped,
    COUNT(*) FILTER (WHERE stage = 'expired') AS expired,
    COUNT(*) FILTER (WHERE stage = 'failed') AS failed,
    COALESCE(SUM(COALESCE(qualifying_loss, 0) + COALESCE(free_bet_profit, 0))
        FILTER (WHERE stage NOT IN ('completed', 'skipped', 'expired', 'failed')), 0) AS running_profit,
    COALESCE(SUM(total_profit) FILTER (WHERE stage = 'completed'), 0) AS completed_total
FROM user_offer_progress
WHERE user_id = $1`

// CountProgressByUser tallies records per stage group. running_profit is the
// settled profit so far on records that are still active.
func (q queries) CountProgressByUser(ctx context.Context, userID uuid.UUID) (ProgressCounts, error) {
	var counts ProgressCounts
	err := sqlx.GetContext(ctx, q.db, &counts, sqlCountProgressByUser, userID)
	if err != nil {
		return ProgressCounts{}, fmt.Errorf("failed to count progress: %w", err)
	}
	return counts, nil
}

const sqlListExpirableProgress = `
SELECT
    p.id AS progress_id,
    p.user_id,
    p.offer_id,
    p.started_at,
    o.expiry_days
FROM user_offer_progress p
JOIN offer_catalog o ON o.id = p.offer_id
WHERE p.stage NOT IN ('completed', 'skipped', 'expired', 'failed')
  AND p.started_at IS NOT NULL
  AND o.expiry_days IS NOT NULL
  AND p.started_at + make_interval(days => o.expiry_days) <= $1
ORDER BY p.started_at ASC
LIMIT $2`

// ListExpirableProgress returns active records whose offer expiry window has
// elapsed at now.
func (q queries) ListExpirableProgress(ctx context.Context, now time.Time, limit int) ([]ExpirableProgress, error) {
	var records []ExpirableProgress
	err := sqlx.SelectContext(ctx, q.db, &records, sqlListExpirableProgress, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expirable progress: %w", err)
	}
	return records, nil
}

const sqlUpdateProgress = `
UPDATE user_offer_progress
SET stage = $3,
    qualifying_bet_id = $4,
    qualifying_stake = $5,
    qualifying_odds = $6,
    expected_qualifying_loss = $7,
    qualifying_loss = $8,
    free_bet_id = $9,
    free_bet_value = $10,
    expected_free_bet_profit = $11,
    free_bet_profit = $12,
    total_profit = $13,
    failure_reason = $14,
    notes = $15,
    started_at = $16,
    signed_up_at = $17,
    qualifying_placed_at = $18,
    free_bet_received_at = $19,
    completed_at = $20,
    version = version + 1,
    updated_at = $21
WHERE id = $1 AND version = $2
RETURNING` + progressColumns

// UpdateProgress writes every mutable column when progress.Version still
// matches the stored version. A stale version yields ErrVersionConflict.
func (q queries) UpdateProgress(ctx context.Context, progress UserOfferProgress, now time.Time) (UserOfferProgress, error) {
	var updated UserOfferProgress
	err := sqlx.GetContext(ctx, q.db, &updated, sqlUpdateProgress,
		progress.ID,
		progress.Version,
		progress.Stage,
		progress.QualifyingBetID,
		progress.QualifyingStake,
		progress.QualifyingOdds,
		progress.ExpectedQualifyingLoss,
		progress.QualifyingLoss,
		progress.FreeBetID,
		progress.FreeBetValue,
		progress.ExpectedFreeBetProfit,
		progress.FreeBetProfit,
		progress.TotalProfit,
		progress.FailureReason,
		progress.Notes,
		progress.StartedAt,
		progress.SignedUpAt,
		progress.QualifyingPlacedAt,
		progress.FreeBetReceivedAt,
		progress.CompletedAt,
		now,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := q.GetProgressByID(ctx, progress.ID); errors.Is(getErr, ErrNotFound) {
				return UserOfferProgress{}, ErrNotFound
			}
			return UserOfferProgress{}, ErrVersionConflict
		}
		if isUniqueViolation(err) {
			return UserOfferProgress{}, ErrDuplicate
		}
		return UserOfferProgress{}, fmt.Errorf("failed to update progress: %w", err)
	}
	return updated, nil
}
