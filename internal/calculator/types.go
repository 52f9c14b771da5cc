package calculator

import (
	"fmt"

	"matchbet-server/internal/money"
)

type BetType string

const (
	BetTypeQualifying BetType = "qualifying"
	BetTypeFreeBetSNR BetType = "free_bet_snr"
	BetTypeFreeBetSR  BetType = "free_bet_sr"
)

func (t BetType) Valid() bool {
	switch t {
	case BetTypeQualifying, BetTypeFreeBetSNR, BetTypeFreeBetSR:
		return true
	}
	return false
}

func (t BetType) IsFreeBet() bool {
	return t == BetTypeFreeBetSNR || t == BetTypeFreeBetSR
}

// FreeBetType picks the free bet variant for an offer.
func FreeBetType(stakeReturned bool) BetType {
	if stakeReturned {
		return BetTypeFreeBetSR
	}
	return BetTypeFreeBetSNR
}

type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeBackWon Outcome = "back_won"
	OutcomeLayWon  Outcome = "lay_won"
)

// Settled reports whether o names a winning side.
func (o Outcome) Settled() bool {
	return o == OutcomeBackWon || o == OutcomeLayWon
}

type Rating string

const (
	RatingExcellent Rating = "excellent"
	RatingGood      Rating = "good"
	RatingFair      Rating = "fair"
	RatingPoor      Rating = "poor"
)

// Input describes one back/lay pair. For free bets BackStake is the free bet value.
type Input struct {
	BetType    BetType      `json:"bet_type"`
	BackStake  money.Amount `json:"back_stake"`
	BackOdds   money.Odds   `json:"back_odds"`
	LayOdds    money.Odds   `json:"lay_odds"`
	Commission money.Rate   `json:"commission"`
}

// Scenario is the net result for one side winning.
type Scenario struct {
	Outcome Outcome      `json:"outcome"`
	Profit  money.Amount `json:"profit"`
}

// Result carries unrounded figures; they round when persisted or encoded.
type Result struct {
	Input
	LayStake         money.Amount `json:"lay_stake"`
	Liability        money.Amount `json:"liability"`
	BackWins         Scenario     `json:"back_wins"`
	LayWins          Scenario     `json:"lay_wins"`
	GuaranteedProfit money.Amount `json:"guaranteed_profit"`
	ExpectedValue    money.Amount `json:"expected_value"`
	SpreadPercent    float64      `json:"spread_percent"`
	Rating           Rating       `json:"rating"`
	RetentionRate    *float64     `json:"retention_rate,omitempty"`
}

// BatchResult summarises several calculations.
type BatchResult struct {
	Results         []Result     `json:"results"`
	TotalGuaranteed money.Amount `json:"total_guaranteed_profit"`
	Best            *Result      `json:"best_opportunity,omitempty"`
}

// CalculationError reports matched-betting parameters that cannot be balanced.
type CalculationError struct {
	BetType BetType
	Reason  string
	// Stage is the progress stage at the time of rejection, if any.
	Stage string
}

func (e *CalculationError) Error() string {
	msg := fmt.Sprintf("cannot calculate %s bet: %s", e.BetType, e.Reason)
	if e.Stage != "" {
		msg += fmt.Sprintf(" (stage %s)", e.Stage)
	}
	return msg
}
