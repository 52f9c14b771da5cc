package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const profitSummaryColumns = `
    user_id, total_profit, weekly_profit, monthly_profit, settled_bets,
    completed_offers, active_offers, updated_at`

const sqlGetProfitSummary = `
SELECT` + profitSummaryColumns + `
FROM user_profit_summaries
WHERE user_id = $1`

func (q queries) GetProfitSummary(ctx context.Context, userID uuid.UUID) (ProfitSummary, error) {
	var summary ProfitSummary
	err := sqlx.GetContext(ctx, q.db, &summary, sqlGetProfitSummary, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProfitSummary{}, ErrNotFound
		}
		return ProfitSummary{}, fmt.Errorf("failed to get profit summary: %w", err)
	}
	return summary, nil
}

const sqlUpsertProfitSummary = `
INSERT INTO user_profit_summaries (
    user_id, total_profit, weekly_profit, monthly_profit, settled_bets,
    completed_offers, active_offers, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (user_id) DO UPDATE
SET total_profit = EXCLUDED.total_profit,
    weekly_profit = EXCLUDED.weekly_profit,
    monthly_profit = EXCLUDED.monthly_profit,
    settled_bets = EXCLUDED.settled_bets,
    completed_offers = EXCLUDED.completed_offers,
    active_offers = EXCLUDED.active_offers,
    updated_at = EXCLUDED.updated_at
RETURNING` + profitSummaryColumns

// UpsertProfitSummary replaces the cached summary of a user.
func (q queries) UpsertProfitSummary(ctx context.Context, summary ProfitSummary) (ProfitSummary, error) {
	var saved ProfitSummary
	err := sqlx.GetContext(ctx, q.db, &saved, sqlUpsertProfitSummary,
		summary.UserID,
		summary.TotalProfit,
		summary.WeeklyProfit,
		summary.MonthlyProfit,
		summary.SettledBets,
		summary.CompletedOffers,
		summary.ActiveOffers,
		summary.UpdatedAt,
	)
	if err != nil {
		return ProfitSummary{}, fmt.Errorf("failed to upsert profit summary: %w", err)
	}
	return saved, nil
}

const sqlLockUserSummary = `
SELECT pg_advisory_xact_lock(hashtext($1::text))`

// LockUserSummary takes a transaction-scoped advisory lock keyed on the user,
// so a refresh that started later cannot upsert before an earlier one commits.
func (q queries) LockUserSummary(ctx context.Context, userID uuid.UUID) error {
	if _, err := q.db.ExecContext(ctx, sqlLockUserSummary, userID.String()); err != nil {
		return fmt.Errorf("failed to lock profit summary: %w", err)
	}
	return nil
}
