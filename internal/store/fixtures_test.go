package store

import (
	"context"
	"testing"
	"time"

	"matchbet-server/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Fixtures provides factory functions for creating test data.
// All factory methods use testify/require to fail fast on errors.
type Fixtures struct {
	t      *testing.T
	testDB *TestDB
	ctx    context.Context
}

// NewFixtures creates a new Fixtures instance for test data generation.
func NewFixtures(t *testing.T, testDB *TestDB) *Fixtures {
	t.Helper()
	return &Fixtures{
		t:      t,
		testDB: testDB,
		ctx:    context.Background(),
	}
}

// --- Offer Fixtures ---

// CreateOffer creates an active welcome offer with optional customization.
func (f *Fixtures) CreateOffer(opts ...func(*CreateOfferCatalogEntryParams)) OfferCatalogEntry {
	f.t.Helper()
	params := CreateOfferCatalogEntryParams{
		Bookmaker:             "Bet365",
		OfferName:             "Bet 10 Get 30",
		OfferType:             OfferTypeWelcome,
		OfferValue:            money.RequireAmount("30"),
		RequiredStake:         money.RequireAmount("10"),
		QualifyingBetRequired: true,
		EligibleSports:        StringArray{"football"},
		EligibleMarkets:       StringArray{},
		Difficulty:            DifficultyEasy,
		IsActive:              true,
	}
	for _, fn := range opts {
		fn(&params)
	}
	entry, err := f.testDB.Store.CreateOfferCatalogEntry(f.ctx, params)
	require.NoError(f.t, err, "failed to create offer")
	return entry
}

// --- Progress Fixtures ---

// CreateProgress starts a selected record for a user on an offer.
func (f *Fixtures) CreateProgress(userID, offerID uuid.UUID) UserOfferProgress {
	f.t.Helper()
	now := time.Now().UTC()
	progress, err := f.testDB.Store.CreateProgress(f.ctx, CreateProgressParams{
		UserID:    userID,
		OfferID:   offerID,
		Stage:     StageSelected,
		StartedAt: &now,
		Now:       now,
	})
	require.NoError(f.t, err, "failed to create progress")
	return progress
}

// --- Bet Fixtures ---

// CreateBet logs a pending qualifying bet for a user.
func (f *Fixtures) CreateBet(userID uuid.UUID, opts ...func(*CreateBetParams)) Bet {
	f.t.Helper()
	params := CreateBetParams{
		ID:             uuid.New(),
		UserID:         userID,
		BetType:        BetTypeQualifying,
		Bookmaker:      "Bet365",
		Exchange:       "Betfair",
		EventName:      "Arsenal v Spurs",
		Selection:      "Arsenal",
		BackOdds:       money.RequireOdds("2.00"),
		BackStake:      money.RequireAmount("10"),
		LayOdds:        money.RequireOdds("2.10"),
		LayStake:       money.RequireAmount("9.76"),
		Liability:      money.RequireAmount("10.73"),
		CommissionRate: money.RequireRate("0.05"),
		ExpectedProfit: money.RequireAmount("-0.73"),
		Now:            time.Now().UTC(),
	}
	for _, fn := range opts {
		fn(&params)
	}
	bet, err := f.testDB.Store.CreateBet(f.ctx, params)
	require.NoError(f.t, err, "failed to create bet")
	return bet
}
