package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOfferNotFound      = errors.New("offer not found")
	ErrPreferenceConflict = errors.New("bookmaker cannot be both whitelisted and blacklisted")
)

const (
	valueIndexPlaces = 4
	defaultListLimit = 100
	maxListLimit     = 500
	// candidates fetched before per-user filtering and ranking
	fetchLimit = 1000
)

// CatalogStore defines the storage operations required by CatalogProcessor
type CatalogStore interface {
	CreateOfferCatalogEntry(ctx context.Context, params store.CreateOfferCatalogEntryParams) (store.OfferCatalogEntry, error)
	GetOfferCatalogEntry(ctx context.Context, offerID uuid.UUID) (store.OfferCatalogEntry, error)
	ListOfferCatalog(ctx context.Context, params store.ListOfferCatalogParams) ([]store.OfferCatalogEntry, error)
	ListBookmakerPreferences(ctx context.Context, userID uuid.UUID) ([]store.BookmakerPreference, error)
	ListProgressByUser(ctx context.Context, userID uuid.UUID, stage *string) ([]store.UserOfferProgress, error)
	WithTx(ctx context.Context, fn func(q store.Queries) error) error
}

type CatalogProcessor struct {
	store  CatalogStore
	clock  clock.Clock
	logger *observability.Logger
}

func New(store CatalogStore, clk clock.Clock, logger *observability.Logger) CatalogProcessor {
	return CatalogProcessor{
		store:  store,
		clock:  clk,
		logger: logger,
	}
}

// RankedOffer is a catalog entry with its value index and position in the list.
type RankedOffer struct {
	store.OfferCatalogEntry
	ValueIndex decimal.Decimal `json:"value_index"`
	Rank       int             `json:"rank"`
}

type ListOffersRequest struct {
	OfferType       *string
	Bookmaker       *string
	Difficulty      *string
	IncludeInactive bool
	// ExcludeStarted drops offers the user already has a progress record for.
	ExcludeStarted bool
	Limit          int
	Offset         int
}

// ListOffers returns the catalog as userID should see it: filtered by their
// bookmaker preferences and ranked best value first.
func (p *CatalogProcessor) ListOffers(ctx context.Context, userID uuid.UUID, req ListOffersRequest) ([]RankedOffer, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	if req.OfferType != nil && !validOfferType(*req.OfferType) {
		return nil, &money.ValidationError{Field: "offer_type", Value: *req.OfferType, Reason: "is not a known offer type"}
	}
	if req.Difficulty != nil && !validDifficulty(*req.Difficulty) {
		return nil, &money.ValidationError{Field: "difficulty", Value: *req.Difficulty, Reason: "must be easy, medium or hard"}
	}

	entries, err := p.store.ListOfferCatalog(ctx, store.ListOfferCatalogParams{
		OfferType:  req.OfferType,
		Bookmaker:  req.Bookmaker,
		Difficulty: req.Difficulty,
		ActiveOnly: !req.IncludeInactive,
		Limit:      fetchLimit,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to list offer catalog", err)
		return nil, fmt.Errorf("failed to list offer catalog: %w", err)
	}

	prefs, err := p.preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	started := map[uuid.UUID]bool{}
	if req.ExcludeStarted {
		records, err := p.store.ListProgressByUser(ctx, userID, nil)
		if err != nil {
			p.logger.Error(ctx, "failed to list progress", err)
			return nil, fmt.Errorf("failed to list progress: %w", err)
		}
		for _, r := range records {
			started[r.OfferID] = true
		}
	}

	ranked := make([]RankedOffer, 0, len(entries))
	for _, e := range entries {
		if !e.OfferValue.IsPositive() || started[e.ID] || !prefs.allows(e.Bookmaker) {
			continue
		}
		ranked = append(ranked, RankedOffer{OfferCatalogEntry: e, ValueIndex: ValueIndex(e)})
	}
	Rank(ranked)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if req.Offset > 0 {
		if req.Offset >= len(ranked) {
			return []RankedOffer{}, nil
		}
		ranked = ranked[req.Offset:]
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ValueIndex is offer_value / required_stake to four places, or zero when no
// stake is required.
func ValueIndex(e store.OfferCatalogEntry) decimal.Decimal {
	stake := e.RequiredStake.Decimal()
	if !stake.IsPositive() {
		return decimal.Zero
	}
	return e.OfferValue.Decimal().Div(stake).Round(valueIndexPlaces)
}

// Rank orders offers by value index, then expected profit, then catalog
// priority, and numbers them from 1.
func Rank(offers []RankedOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		a, b := offers[i], offers[j]
		if c := a.ValueIndex.Cmp(b.ValueIndex); c != 0 {
			return c > 0
		}
		if c := expectedProfit(a).Cmp(expectedProfit(b)); c != 0 {
			return c > 0
		}
		return a.PriorityRank < b.PriorityRank
	})
	for i := range offers {
		offers[i].Rank = i + 1
	}
}

func expectedProfit(o RankedOffer) money.Amount {
	if o.ExpectedProfit == nil {
		return money.Zero
	}
	return *o.ExpectedProfit
}

// GetOffer returns a catalog entry. Inactive entries are returned too so that
// progress records can still show what they were for.
func (p *CatalogProcessor) GetOffer(ctx context.Context, offerID uuid.UUID) (store.OfferCatalogEntry, error) {
	offer, err := p.store.GetOfferCatalogEntry(ctx, offerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.OfferCatalogEntry{}, ErrOfferNotFound
		}
		p.logger.Error(ctx, "failed to get offer", err)
		return store.OfferCatalogEntry{}, fmt.Errorf("failed to get offer: %w", err)
	}
	return offer, nil
}

// CreateOfferRequest is a catalog entry as ingested by an administrator.
type CreateOfferRequest struct {
	Bookmaker             string
	OfferName             string
	OfferType             string
	OfferValue            money.Amount
	RequiredStake         money.Amount
	MinOdds               *money.Odds
	MaxStake              *money.Amount
	WageringRequirement   float64
	IsStakeReturned       bool
	QualifyingBetRequired bool
	Terms                 *string
	ExpiryDays            *int
	EligibleSports        []string
	EligibleMarkets       []string
	SignupURL             *string
	ReferralURL           *string
	OddscheckerURL        *string
	Difficulty            string
	ExpectedProfit        *money.Amount
	EstimatedTimeMinutes  int
	IsActive              bool
	PriorityRank          int
}

// CreateOffer validates and stores a catalog entry.
func (p *CatalogProcessor) CreateOffer(ctx context.Context, req CreateOfferRequest) (store.OfferCatalogEntry, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "bookmaker", Value: req.Bookmaker},
		observability.Field{Key: "offer_type", Value: req.OfferType},
	)

	if err := validateOffer(req); err != nil {
		return store.OfferCatalogEntry{}, err
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = store.DifficultyMedium
	}

	offer, err := p.store.CreateOfferCatalogEntry(ctx, store.CreateOfferCatalogEntryParams{
		Bookmaker:             strings.TrimSpace(req.Bookmaker),
		OfferName:             strings.TrimSpace(req.OfferName),
		OfferType:             req.OfferType,
		OfferValue:            req.OfferValue.Round(),
		RequiredStake:         req.RequiredStake.Round(),
		MinOdds:               req.MinOdds,
		MaxStake:              req.MaxStake,
		WageringRequirement:   req.WageringRequirement,
		IsStakeReturned:       req.IsStakeReturned,
		QualifyingBetRequired: req.QualifyingBetRequired,
		Terms:                 req.Terms,
		ExpiryDays:            req.ExpiryDays,
		EligibleSports:        store.StringArray(req.EligibleSports),
		EligibleMarkets:       store.StringArray(req.EligibleMarkets),
		SignupURL:             req.SignupURL,
		ReferralURL:           req.ReferralURL,
		OddscheckerURL:        req.OddscheckerURL,
		Difficulty:            difficulty,
		ExpectedProfit:        req.ExpectedProfit,
		EstimatedTimeMinutes:  req.EstimatedTimeMinutes,
		IsActive:              req.IsActive,
		PriorityRank:          req.PriorityRank,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to create offer", err)
		return store.OfferCatalogEntry{}, fmt.Errorf("failed to create offer: %w", err)
	}

	p.logger.Info(ctx, fmt.Sprintf("created catalog offer %s", offer.ID))
	return offer, nil
}

func validateOffer(req CreateOfferRequest) error {
	if strings.TrimSpace(req.Bookmaker) == "" {
		return &money.ValidationError{Field: "bookmaker", Reason: "is required"}
	}
	if strings.TrimSpace(req.OfferName) == "" {
		return &money.ValidationError{Field: "offer_name", Reason: "is required"}
	}
	if !validOfferType(req.OfferType) {
		return &money.ValidationError{Field: "offer_type", Value: req.OfferType, Reason: "is not a known offer type"}
	}
	if req.Difficulty != "" && !validDifficulty(req.Difficulty) {
		return &money.ValidationError{Field: "difficulty", Value: req.Difficulty, Reason: "must be easy, medium or hard"}
	}
	if err := money.RequirePositive("offer_value", req.OfferValue); err != nil {
		return err
	}
	if req.RequiredStake.IsNegative() {
		return &money.ValidationError{Field: "required_stake", Value: req.RequiredStake.String(), Reason: "must not be negative"}
	}
	if req.MinOdds != nil {
		if err := money.ValidateOdds("min_odds", *req.MinOdds); err != nil {
			return err
		}
	}
	if req.MaxStake != nil {
		if err := money.RequirePositive("max_stake", *req.MaxStake); err != nil {
			return err
		}
	}
	if req.ExpiryDays != nil && *req.ExpiryDays <= 0 {
		return &money.ValidationError{Field: "expiry_days", Value: fmt.Sprint(*req.ExpiryDays), Reason: "must be positive"}
	}
	return nil
}

func validOfferType(t string) bool {
	switch t {
	case store.OfferTypeWelcome, store.OfferTypeReload, store.OfferTypeFreeBet, store.OfferTypeRiskFree,
		store.OfferTypeEnhancedOdds, store.OfferTypeCashback, store.OfferTypeOther:
		return true
	}
	return false
}

func validDifficulty(d string) bool {
	switch d {
	case store.DifficultyEasy, store.DifficultyMedium, store.DifficultyHard:
		return true
	}
	return false
}
