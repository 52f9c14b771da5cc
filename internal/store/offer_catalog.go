package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const offerCatalogColumns = `
    id, bookmaker, offer_name, offer_type, offer_value, required_stake,
    min_odds, max_stake, wagering_requirement, is_stake_returned,
    qualifying_bet_required, terms, expiry_days, eligible_sports,
    eligible_markets, signup_url, referral_url, oddschecker_url, difficulty,
    expected_profit, estimated_time_minutes, is_active, priority_rank,
    created_at, updated_at`

const sqlCreateOfferCatalogEntry = `
INSERT INTO offer_catalog (
    bookmaker, offer_name, offer_type, offer_value, required_stake,
    min_odds, max_stake, wagering_requirement, is_stake_returned,
    qualifying_bet_required, terms, expiry_days, eligible_sports,
    eligible_markets, signup_url, referral_url, oddschecker_url, difficulty,
    expected_profit, estimated_time_minutes, is_active, priority_rank
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
RETURNING` + offerCatalogColumns

// CreateOfferCatalogEntry inserts a catalog entry.
func (q queries) CreateOfferCatalogEntry(ctx context.Context, params CreateOfferCatalogEntryParams) (OfferCatalogEntry, error) {
	var entry OfferCatalogEntry
	err := sqlx.GetContext(ctx, q.db, &entry, sqlCreateOfferCatalogEntry,
		params.Bookmaker,
		params.OfferName,
		params.OfferType,
		params.OfferValue,
		params.RequiredStake,
		params.MinOdds,
		params.MaxStake,
		params.WageringRequirement,
		params.IsStakeReturned,
		params.QualifyingBetRequired,
		params.Terms,
		params.ExpiryDays,
		params.EligibleSports,
		params.EligibleMarkets,
		params.SignupURL,
		params.ReferralURL,
		params.OddscheckerURL,
		params.Difficulty,
		params.ExpectedProfit,
		params.EstimatedTimeMinutes,
		params.IsActive,
		params.PriorityRank,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return OfferCatalogEntry{}, ErrDuplicate
		}
		return OfferCatalogEntry{}, fmt.Errorf("failed to create offer catalog entry: %w", err)
	}
	return entry, nil
}

const sqlGetOfferCatalogEntry = `
SELECT` + offerCatalogColumns + `
FROM offer_catalog
WHERE id = $1`

// GetOfferCatalogEntry retrieves a catalog entry by ID
func (q queries) GetOfferCatalogEntry(ctx context.Context, offerID uuid.UUID) (OfferCatalogEntry, error) {
	var entry OfferCatalogEntry
	err := sqlx.GetContext(ctx, q.db, &entry, sqlGetOfferCatalogEntry, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OfferCatalogEntry{}, ErrNotFound
		}
		return OfferCatalogEntry{}, fmt.Errorf("failed to get offer catalog entry: %w", err)
	}
	return entry, nil
}

const sqlListOfferCatalog = `
SELECT` + offerCatalogColumns + `
FROM offer_catalog
WHERE ($1::text IS NULL OR offer_type = $1)
  AND ($2::text IS NULL OR bookmaker = $2)
  AND ($3::text IS NULL OR difficulty = $3)
  AND (NOT $4 OR is_active)
ORDER BY priority_rank ASC, created_at DESC
LIMIT $5 OFFSET $6`

// ListOfferCatalog lists catalog entries matching the optional filters.
func (q queries) ListOfferCatalog(ctx context.Context, params ListOfferCatalogParams) ([]OfferCatalogEntry, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	var entries []OfferCatalogEntry
	err := sqlx.SelectContext(ctx, q.db, &entries, sqlListOfferCatalog,
		params.OfferType,
		params.Bookmaker,
		params.Difficulty,
		params.ActiveOnly,
		limit,
		params.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list offer catalog: %w", err)
	}
	return entries, nil
}
