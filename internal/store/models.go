package store

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"matchbet-server/internal/money"

	"github.com/google/uuid"
)

// StringArray is a custom type for PostgreSQL text[] arrays
type StringArray []string

// Value implements the driver.Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	if len(a) == 0 {
		return "{}", nil
	}
	// PostgreSQL array format: {item1,item2,item3}
	return "{" + strings.Join(a, ",") + "}", nil
}

// Scan implements the sql.Scanner interface for StringArray
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var str string
	switch v := value.(type) {
	case []byte:
		str = string(v)
	case string:
		str = v
	default:
		return fmt.Errorf("unsupported type for StringArray: %T", value)
	}

	str = strings.Trim(str, "{}")
	if str == "" {
		*a = []string{}
		return nil
	}

	parts := strings.Split(str, ",")
	for i, p := range parts {
		parts[i] = strings.Trim(p, `"`)
	}
	*a = parts
	return nil
}

// Contains reports whether s is in the array.
func (a StringArray) Contains(s string) bool {
	for _, v := range a {
		if v == s {
			return true
		}
	}
	return false
}

// OfferCatalogEntry is a bookmaker promotion. Read-only to progress tracking.
type OfferCatalogEntry struct {
	ID                    uuid.UUID     `db:"id" json:"id"`
	Bookmaker             string        `db:"bookmaker" json:"bookmaker"`
	OfferName             string        `db:"offer_name" json:"offer_name"`
	OfferType             string        `db:"offer_type" json:"offer_type"`
	OfferValue            money.Amount  `db:"offer_value" json:"offer_value"`
	RequiredStake         money.Amount  `db:"required_stake" json:"required_stake"`
	MinOdds               *money.Odds   `db:"min_odds" json:"min_odds,omitempty"`
	MaxStake              *money.Amount `db:"max_stake" json:"max_stake,omitempty"`
	WageringRequirement   float64       `db:"wagering_requirement" json:"wagering_requirement"`
	IsStakeReturned       bool          `db:"is_stake_returned" json:"is_stake_returned"`
	QualifyingBetRequired bool          `db:"qualifying_bet_required" json:"qualifying_bet_required"`
	Terms                 *string       `db:"terms" json:"terms,omitempty"`
	ExpiryDays            *int          `db:"expiry_days" json:"expiry_days,omitempty"`
	EligibleSports        StringArray   `db:"eligible_sports" json:"eligible_sports"`
	EligibleMarkets       StringArray   `db:"eligible_markets" json:"eligible_markets"`
	SignupURL             *string       `db:"signup_url" json:"signup_url,omitempty"`
	ReferralURL           *string       `db:"referral_url" json:"referral_url,omitempty"`
	OddscheckerURL        *string       `db:"oddschecker_url" json:"oddschecker_url,omitempty"`
	Difficulty            string        `db:"difficulty" json:"difficulty"`
	ExpectedProfit        *money.Amount `db:"expected_profit" json:"expected_profit,omitempty"`
	EstimatedTimeMinutes  int           `db:"estimated_time_minutes" json:"estimated_time_minutes"`
	IsActive              bool          `db:"is_active" json:"is_active"`
	PriorityRank          int           `db:"priority_rank" json:"priority_rank"`
	CreatedAt             time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updated_at"`
}

type CreateOfferCatalogEntryParams struct {
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
	EligibleSports        StringArray
	EligibleMarkets       StringArray
	SignupURL             *string
	ReferralURL           *string
	OddscheckerURL        *string
	Difficulty            string
	ExpectedProfit        *money.Amount
	EstimatedTimeMinutes  int
	IsActive              bool
	PriorityRank          int
}

type ListOfferCatalogParams struct {
	OfferType  *string
	Bookmaker  *string
	Difficulty *string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// UserOfferProgress is one user's journey through one offer.
type UserOfferProgress struct {
	ID                     uuid.UUID     `db:"id" json:"id"`
	UserID                 uuid.UUID     `db:"user_id" json:"user_id"`
	OfferID                uuid.UUID     `db:"offer_id" json:"offer_id"`
	Stage                  string        `db:"stage" json:"stage"`
	QualifyingBetID        *uuid.UUID    `db:"qualifying_bet_id" json:"qualifying_bet_id,omitempty"`
	QualifyingStake        *money.Amount `db:"qualifying_stake" json:"qualifying_stake,omitempty"`
	QualifyingOdds         *money.Odds   `db:"qualifying_odds" json:"qualifying_odds,omitempty"`
	ExpectedQualifyingLoss *money.Amount `db:"expected_qualifying_loss" json:"expected_qualifying_loss,omitempty"`
	QualifyingLoss         *money.Amount `db:"qualifying_loss" json:"qualifying_loss,omitempty"`
	FreeBetID              *uuid.UUID    `db:"free_bet_id" json:"free_bet_id,omitempty"`
	FreeBetValue           *money.Amount `db:"free_bet_value" json:"free_bet_value,omitempty"`
	ExpectedFreeBetProfit  *money.Amount `db:"expected_free_bet_profit" json:"expected_free_bet_profit,omitempty"`
	FreeBetProfit          *money.Amount `db:"free_bet_profit" json:"free_bet_profit,omitempty"`
	TotalProfit            money.Amount  `db:"total_profit" json:"total_profit"`
	FailureReason          *string       `db:"failure_reason" json:"failure_reason,omitempty"`
	Notes                  *string       `db:"notes" json:"notes,omitempty"`
	Version                int           `db:"version" json:"version"`
	StartedAt              *time.Time    `db:"started_at" json:"started_at,omitempty"`
	SignedUpAt             *time.Time    `db:"signed_up_at" json:"signed_up_at,omitempty"`
	QualifyingPlacedAt     *time.Time    `db:"qualifying_placed_at" json:"qualifying_placed_at,omitempty"`
	FreeBetReceivedAt      *time.Time    `db:"free_bet_received_at" json:"free_bet_received_at,omitempty"`
	CompletedAt            *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt              time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time     `db:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the record is history.
func (p UserOfferProgress) IsTerminal() bool {
	return IsTerminalStage(p.Stage)
}

type CreateProgressParams struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	OfferID   uuid.UUID
	Stage     string
	StartedAt *time.Time
	Now       time.Time
}

// BetCounts tallies a user's bets by outcome.
type BetCounts struct {
	Total   int `db:"total" json:"total"`
	Pending int `db:"pending" json:"pending"`
	BackWon int `db:"back_won" json:"back_won"`
	LayWon  int `db:"lay_won" json:"lay_won"`
}

// ProgressCounts is a per-user tally used by the active offers view.
type ProgressCounts struct {
	Active         int          `db:"active" json:"active"`
	Completed      int          `db:"completed" json:"completed"`
	Skipped        int          `db:"skipped" json:"skipped"`
	Expired        int          `db:"expired" json:"expired"`
	Failed         int          `db:"failed" json:"failed"`
	RunningProfit  money.Amount `db:"running_profit" json:"running_profit"`
	CompletedTotal money.Amount `db:"completed_total" json:"completed_total"`
}

// ExpirableProgress is an active record whose offer carries an expiry window.
type ExpirableProgress struct {
	ProgressID uuid.UUID `db:"progress_id"`
	UserID     uuid.UUID `db:"user_id"`
	OfferID    uuid.UUID `db:"offer_id"`
	StartedAt  time.Time `db:"started_at"`
	ExpiryDays int       `db:"expiry_days"`
}

type Bet struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	UserID         uuid.UUID     `db:"user_id" json:"user_id"`
	ProgressID     *uuid.UUID    `db:"progress_id" json:"progress_id,omitempty"`
	BetType        string        `db:"bet_type" json:"bet_type"`
	Bookmaker      string        `db:"bookmaker" json:"bookmaker"`
	Exchange       string        `db:"exchange" json:"exchange"`
	EventName      string        `db:"event_name" json:"event_name"`
	Selection      string        `db:"selection" json:"selection"`
	Market         *string       `db:"market" json:"market,omitempty"`
	BackOdds       money.Odds    `db:"back_odds" json:"back_odds"`
	BackStake      money.Amount  `db:"back_stake" json:"back_stake"`
	LayOdds        money.Odds    `db:"lay_odds" json:"lay_odds"`
	LayStake       money.Amount  `db:"lay_stake" json:"lay_stake"`
	Liability      money.Amount  `db:"liability" json:"liability"`
	CommissionRate money.Rate    `db:"commission_rate" json:"commission_rate"`
	ExpectedProfit money.Amount  `db:"expected_profit" json:"expected_profit"`
	Outcome        string        `db:"outcome" json:"outcome"`
	ActualProfit   *money.Amount `db:"actual_profit" json:"actual_profit,omitempty"`
	EventDate      *time.Time    `db:"event_date" json:"event_date,omitempty"`
	Notes          *string       `db:"notes" json:"notes,omitempty"`
	SettledAt      *time.Time    `db:"settled_at" json:"settled_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// IsSettled reports whether the bet has a winning side recorded.
func (b Bet) IsSettled() bool {
	return b.Outcome != BetOutcomePending
}

type CreateBetParams struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ProgressID     *uuid.UUID
	BetType        string
	Bookmaker      string
	Exchange       string
	EventName      string
	Selection      string
	Market         *string
	BackOdds       money.Odds
	BackStake      money.Amount
	LayOdds        money.Odds
	LayStake       money.Amount
	Liability      money.Amount
	CommissionRate money.Rate
	ExpectedProfit money.Amount
	EventDate      *time.Time
	Notes          *string
	Now            time.Time
}

type ListBetsParams struct {
	UserID  uuid.UUID
	Outcome *string
	BetType *string
	Limit   int
	Offset  int
}

type BookmakerPreference struct {
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	Bookmaker  string    `db:"bookmaker" json:"bookmaker"`
	Preference string    `db:"preference" json:"preference"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ProfitSummary is the cached per-user aggregate.
type ProfitSummary struct {
	UserID          uuid.UUID    `db:"user_id" json:"user_id"`
	TotalProfit     money.Amount `db:"total_profit" json:"total_profit"`
	WeeklyProfit    money.Amount `db:"weekly_profit" json:"weekly_profit"`
	MonthlyProfit   money.Amount `db:"monthly_profit" json:"monthly_profit"`
	SettledBets     int          `db:"settled_bets" json:"settled_bets"`
	CompletedOffers int          `db:"completed_offers" json:"completed_offers"`
	ActiveOffers    int          `db:"active_offers" json:"active_offers"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updated_at"`
}
