package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Queries defines every statement available on the Store, whether it runs on
// the pool or inside a transaction.
type Queries interface {
	// Offer catalog operations
	CreateOfferCatalogEntry(ctx context.Context, params CreateOfferCatalogEntryParams) (OfferCatalogEntry, error)
	GetOfferCatalogEntry(ctx context.Context, offerID uuid.UUID) (OfferCatalogEntry, error)
	ListOfferCatalog(ctx context.Context, params ListOfferCatalogParams) ([]OfferCatalogEntry, error)

	// Progress operations
	CreateProgress(ctx context.Context, params CreateProgressParams) (UserOfferProgress, error)
	GetProgressByID(ctx context.Context, progressID uuid.UUID) (UserOfferProgress, error)
	GetActiveProgress(ctx context.Context, userID, offerID uuid.UUID) (UserOfferProgress, error)
	GetLatestProgress(ctx context.Context, userID, offerID uuid.UUID) (UserOfferProgress, error)
	ListProgressByUser(ctx context.Context, userID uuid.UUID, stage *string) ([]UserOfferProgress, error)
	CountProgressByUser(ctx context.Context, userID uuid.UUID) (ProgressCounts, error)
	ListExpirableProgress(ctx context.Context, now time.Time, limit int) ([]ExpirableProgress, error)
	UpdateProgress(ctx context.Context, progress UserOfferProgress, now time.Time) (UserOfferProgress, error)

	// Bet operations
	CreateBet(ctx context.Context, params CreateBetParams) (Bet, error)
	GetBetByID(ctx context.Context, betID uuid.UUID) (Bet, error)
	// GetBetForUpdate reads a bet and locks its row until the transaction ends.
	GetBetForUpdate(ctx context.Context, betID uuid.UUID) (Bet, error)
	ListBets(ctx context.Context, params ListBetsParams) ([]Bet, error)
	ListSettledBetsByUser(ctx context.Context, userID uuid.UUID) ([]Bet, error)
	CountBetsByUser(ctx context.Context, userID uuid.UUID) (BetCounts, error)
	UpdateBet(ctx context.Context, bet Bet, now time.Time) (Bet, error)
	DeleteBet(ctx context.Context, betID uuid.UUID) error

	// Bookmaker preference operations
	ListBookmakerPreferences(ctx context.Context, userID uuid.UUID) ([]BookmakerPreference, error)
	DeleteBookmakerPreferences(ctx context.Context, userID uuid.UUID) error
	CreateBookmakerPreference(ctx context.Context, pref BookmakerPreference) (BookmakerPreference, error)

	// Profit summary operations
	GetProfitSummary(ctx context.Context, userID uuid.UUID) (ProfitSummary, error)
	UpsertProfitSummary(ctx context.Context, summary ProfitSummary) (ProfitSummary, error)
	// LockUserSummary serialises summary refreshes of one user until the
	// transaction ends.
	LockUserSummary(ctx context.Context, userID uuid.UUID) error
}

// Storer is Queries plus transactions. Implemented by Store and memory.Store.
type Storer interface {
	Queries
	WithTx(ctx context.Context, fn func(q Queries) error) error
}
