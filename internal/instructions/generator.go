// Package instructions turns a calculated back/lay pair into numbered steps
// a user can follow at the bookmaker and the exchange.
package instructions

import (
	"fmt"
	"strings"

	"matchbet-server/internal/calculator"
	"matchbet-server/internal/money"
)

const (
	SelectionHome = "home"
	SelectionDraw = "draw"
	SelectionAway = "away"

	DefaultExchange = "Betfair"

	// spreadWarningPercent is the back/lay spread above which a qualifying
	// bet is flagged as expensive.
	spreadWarningPercent = 3.0

	rule = "============================================================"
)

var DefaultCommission = money.RequireRate("0.05")

// Match names the event and the side being backed.
type Match struct {
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	Selection string `json:"outcome"`
}

func (m Match) Name() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

// SelectionName is the team, or Draw, being backed.
func (m Match) SelectionName() string {
	switch m.Selection {
	case SelectionHome:
		return m.HomeTeam
	case SelectionAway:
		return m.AwayTeam
	}
	return "Draw"
}

func (m Match) validate() error {
	switch m.Selection {
	case SelectionHome, SelectionDraw, SelectionAway:
		return nil
	}
	return &money.ValidationError{Field: "outcome", Value: m.Selection, Reason: "must be home, draw or away"}
}

// Request describes one bet to write instructions for. For free bets Stake
// is the free bet value.
type Request struct {
	Match
	BetType    calculator.BetType
	Stake      money.Amount
	BackOdds   money.Odds
	LayOdds    money.Odds
	Commission money.Rate
	Bookmaker  string
	Exchange   string
	OfferName  string
	MinOdds    *money.Odds
}

type Step struct {
	Number   int     `json:"step_number"`
	Action   string  `json:"action"`
	Platform string  `json:"platform"`
	Details  string  `json:"details"`
	Warning  *string `json:"warning,omitempty"`
}

type Instructions struct {
	Title             string            `json:"title"`
	Summary           string            `json:"summary"`
	Steps             []Step            `json:"steps"`
	LayStake          money.Amount      `json:"lay_stake"`
	Liability         money.Amount      `json:"liability"`
	ExpectedResult    money.Amount      `json:"expected_result"`
	ResultDescription string            `json:"result_description"`
	SpreadPercent     float64           `json:"spread_percent"`
	Rating            calculator.Rating `json:"rating"`
	Warnings          []string          `json:"warnings"`
	Tips              []string          `json:"tips"`
	PlainText         string            `json:"plain_text"`
}

// FullOfferRequest covers both halves of a standard offer on one match.
type FullOfferRequest struct {
	Match
	QualifyingStake money.Amount
	FreeBetValue    money.Amount
	StakeReturned   bool
	BackOdds        money.Odds
	LayOdds         money.Odds
	Commission      money.Rate
	Bookmaker       string
	Exchange        string
	OfferName       string
	MinOdds         *money.Odds
}

type FullOffer struct {
	OfferName           string       `json:"offer_name"`
	Qualifying          Instructions `json:"qualifying_instructions"`
	FreeBet             Instructions `json:"free_bet_instructions"`
	TotalQualifyingLoss money.Amount `json:"total_qualifying_loss"`
	TotalFreeBetProfit  money.Amount `json:"total_free_bet_profit"`
	TotalProfit         money.Amount `json:"total_profit"`
	// ExchangeFunds is the larger liability; it is released between bets.
	ExchangeFunds money.Amount `json:"exchange_funds_needed"`
	ProfitSummary string       `json:"profit_summary"`
	PlainText     string       `json:"full_plain_text"`
}

type Generator struct {
	engine calculator.Engine
}

func New(engine calculator.Engine) Generator {
	return Generator{engine: engine}
}

// Generate dispatches on the bet type.
func (g Generator) Generate(req Request) (Instructions, error) {
	if req.BetType.IsFreeBet() {
		return g.FreeBet(req)
	}
	return g.Qualifying(req)
}

func (g Generator) Qualifying(req Request) (Instructions, error) {
	req.BetType = calculator.BetTypeQualifying
	res, err := g.calculate(req)
	if err != nil {
		return Instructions{}, err
	}

	selection := req.SelectionName()
	stake, lay, liability := res.BackStake.Round(), res.LayStake.Round(), res.Liability.Round()
	profit := res.GuaranteedProfit.Round()

	var minOddsWarning *string
	if req.MinOdds != nil {
		minOddsWarning = strPtr(fmt.Sprintf("Make sure odds are at least %s", req.MinOdds))
	}

	out := Instructions{
		Title:   "Qualifying Bet: " + req.Name(),
		Summary: fmt.Sprintf("Back %s @ %s, Lay @ %s", selection, req.Bookmaker, req.Exchange),
		Steps: []Step{
			{
				Number:   1,
				Action:   "Place BACK bet",
				Platform: req.Bookmaker,
				Details:  fmt.Sprintf("Bet %s on %s to win @ %s", stake, selection, req.BackOdds),
				Warning:  minOddsWarning,
			},
			layStep(2, req, selection, lay, liability),
			confirmStep(3),
		},
		LayStake:       lay,
		Liability:      liability,
		ExpectedResult: profit,
		SpreadPercent:  res.SpreadPercent,
		Rating:         res.Rating,
		Warnings:       minOddsWarnings(req),
		Tips: []string{
			"Place the back bet first, then immediately place the lay bet",
			"If odds move significantly, recalculate before placing the lay bet",
			fmt.Sprintf("You need %s available in your %s account", liability, req.Exchange),
		},
	}
	if res.SpreadPercent > spreadWarningPercent {
		out.Warnings = append(out.Warnings, fmt.Sprintf("Spread is %.2f%% - consider finding tighter odds", res.SpreadPercent))
	}

	if profit.IsNegative() {
		out.ResultDescription = "Qualifying loss of " + profit.Abs().String()
	} else {
		out.ResultDescription = "Profit of " + profit.String()
	}

	offerName := req.OfferName
	if offerName == "" {
		offerName = "N/A"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "QUALIFYING BET INSTRUCTIONS\n===========================\n")
	fmt.Fprintf(&b, "Match: %s\nOffer: %s\n\n", req.Name(), offerName)
	fmt.Fprintf(&b, "STEP 1: Go to %s\n   -> Place a %s BACK bet on %s @ %s\n\n", req.Bookmaker, stake, selection, req.BackOdds)
	fmt.Fprintf(&b, "STEP 2: Go to %s\n   -> LAY %s for %s @ %s\n   -> Liability: %s\n\n", req.Exchange, selection, lay, req.LayOdds, liability)
	fmt.Fprintf(&b, "STEP 3: Confirm both bets are matched\n\n")
	fmt.Fprintf(&b, "EXPECTED RESULT: %s", out.ResultDescription)
	out.PlainText = b.String()
	return out, nil
}

// FreeBet writes instructions for a free bet. The variant follows
// req.BetType and defaults to stake not returned.
func (g Generator) FreeBet(req Request) (Instructions, error) {
	if !req.BetType.IsFreeBet() {
		req.BetType = calculator.BetTypeFreeBetSNR
	}
	res, err := g.calculate(req)
	if err != nil {
		return Instructions{}, err
	}

	selection := req.SelectionName()
	value, lay, liability := res.BackStake.Round(), res.LayStake.Round(), res.Liability.Round()
	profit := res.GuaranteedProfit.Round()

	variant := "Stake Not Returned (SNR)"
	if req.BetType == calculator.BetTypeFreeBetSR {
		variant = "Stake Returned (SR)"
	}

	out := Instructions{
		Title:   "Free Bet: " + req.Name(),
		Summary: fmt.Sprintf("Use %s free bet on %s @ %s, Lay @ %s", value, selection, req.Bookmaker, req.Exchange),
		Steps: []Step{
			{
				Number:   1,
				Action:   "Use FREE BET",
				Platform: req.Bookmaker,
				Details:  fmt.Sprintf("Place your %s FREE BET on %s @ %s", value, selection, req.BackOdds),
				Warning:  strPtr("Select 'Use Free Bet' - do NOT use real money!"),
			},
			layStep(2, req, selection, lay, liability),
			confirmStep(3),
			{
				Number:   4,
				Action:   "Wait for result",
				Platform: "N/A",
				Details:  fmt.Sprintf("You'll profit %s regardless of outcome!", profit),
			},
		},
		LayStake:          lay,
		Liability:         liability,
		ExpectedResult:    profit,
		ResultDescription: "Guaranteed profit of " + profit.String(),
		SpreadPercent:     res.SpreadPercent,
		Rating:            res.Rating,
		Warnings: append([]string{
			"Make sure you select FREE BET, not real money!",
			"This free bet is " + variant,
		}, minOddsWarnings(req)...),
		Tips: []string{
			"Free bets often have expiry dates - use before they expire",
			fmt.Sprintf("You need %s available in your %s account", liability, req.Exchange),
			"Lay stake is lower than qualifying bet because you only cover the profit portion",
		},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FREE BET INSTRUCTIONS\n=====================\n")
	fmt.Fprintf(&b, "Match: %s\nFree Bet Value: %s\n\n", req.Name(), value)
	fmt.Fprintf(&b, "STEP 1: Go to %s\n   -> Use your %s FREE BET on %s @ %s\n   -> IMPORTANT: Select 'Free Bet', NOT real money!\n\n", req.Bookmaker, value, selection, req.BackOdds)
	fmt.Fprintf(&b, "STEP 2: Go to %s\n   -> LAY %s for %s @ %s\n   -> Liability: %s\n\n", req.Exchange, selection, lay, req.LayOdds, liability)
	fmt.Fprintf(&b, "STEP 3: Confirm both bets are matched\n\nSTEP 4: Wait for result\n\n")
	fmt.Fprintf(&b, "GUARANTEED PROFIT: %s", profit)
	out.PlainText = b.String()
	return out, nil
}

// FullOffer writes the qualifying bet and the free bet it unlocks, on the
// same match and prices, plus the combined result.
func (g Generator) FullOffer(req FullOfferRequest) (FullOffer, error) {
	base := Request{
		Match:      req.Match,
		BackOdds:   req.BackOdds,
		LayOdds:    req.LayOdds,
		Commission: req.Commission,
		Bookmaker:  req.Bookmaker,
		Exchange:   req.Exchange,
		OfferName:  req.OfferName,
		MinOdds:    req.MinOdds,
	}

	qualifying := base
	qualifying.BetType = calculator.BetTypeQualifying
	qualifying.Stake = req.QualifyingStake
	qual, err := g.Qualifying(qualifying)
	if err != nil {
		return FullOffer{}, err
	}

	freeBet := base
	freeBet.BetType = calculator.FreeBetType(req.StakeReturned)
	freeBet.Stake = req.FreeBetValue
	fb, err := g.FreeBet(freeBet)
	if err != nil {
		return FullOffer{}, err
	}

	total := calculator.AggregateProfit(qual.ExpectedResult, fb.ExpectedResult).Round()
	funds := qual.Liability
	if fb.Liability.GreaterThan(funds) {
		funds = fb.Liability
	}

	out := FullOffer{
		OfferName:           req.OfferName,
		Qualifying:          qual,
		FreeBet:             fb,
		TotalQualifyingLoss: qual.ExpectedResult,
		TotalFreeBetProfit:  fb.ExpectedResult,
		TotalProfit:         total,
		ExchangeFunds:       funds,
	}
	if total.IsPositive() {
		out.ProfitSummary = "Total profit from this offer: " + total.String()
	} else {
		out.ProfitSummary = "Total loss from this offer: " + total.Abs().String()
	}

	var b strings.Builder
	section := func(title string) {
		fmt.Fprintf(&b, "%s\n%s\n%s\n\n", rule, title, rule)
	}
	section("COMPLETE OFFER INSTRUCTIONS: " + req.OfferName)
	fmt.Fprintf(&b, "Match: %s\nBetting on: %s\nBookmaker: %s\nExchange: %s\n\n", req.Name(), req.SelectionName(), req.Bookmaker, req.Exchange)
	section("PART 1: QUALIFYING BET")
	fmt.Fprintf(&b, "%s\n\n>>> After the qualifying bet settles, you'll receive your free bet <<<\n\n", qual.PlainText)
	section("PART 2: FREE BET")
	fmt.Fprintf(&b, "%s\n\n", fb.PlainText)
	section("PROFIT SUMMARY")
	fmt.Fprintf(&b, "Qualifying bet loss:  %s\n", signed(qual.ExpectedResult))
	fmt.Fprintf(&b, "Free bet profit:      %s\n", signed(fb.ExpectedResult))
	fmt.Fprintf(&b, "--------------------------\n")
	fmt.Fprintf(&b, "TOTAL PROFIT:         %s\n\n", signed(total))
	fmt.Fprintf(&b, "Total exchange funds needed: %s\n(Liability is released after each bet settles)", funds)
	out.PlainText = b.String()
	return out, nil
}

func (g Generator) calculate(req Request) (calculator.Result, error) {
	if err := req.validate(); err != nil {
		return calculator.Result{}, err
	}
	return g.engine.Calculate(calculator.Input{
		BetType:    req.BetType,
		BackStake:  req.Stake,
		BackOdds:   req.BackOdds,
		LayOdds:    req.LayOdds,
		Commission: req.Commission,
	})
}

func layStep(n int, req Request, selection string, lay, liability money.Amount) Step {
	return Step{
		Number:   n,
		Action:   "Place LAY bet",
		Platform: req.Exchange,
		Details:  fmt.Sprintf("Lay %s for %s @ %s", selection, lay, req.LayOdds),
		Warning:  strPtr(fmt.Sprintf("Your liability will be %s", liability)),
	}
}

func confirmStep(n int) Step {
	return Step{
		Number:   n,
		Action:   "Confirm both bets are matched",
		Platform: "Both",
		Details:  "Check that both bets show as 'matched' or 'placed'",
	}
}

func minOddsWarnings(req Request) []string {
	warnings := []string{}
	if req.MinOdds != nil && req.BackOdds.LessThan(*req.MinOdds) {
		warnings = append(warnings, fmt.Sprintf("WARNING: Back odds %s are below minimum required %s!", req.BackOdds, req.MinOdds))
	}
	return warnings
}

func signed(a money.Amount) string {
	if a.IsNegative() {
		return a.String()
	}
	return "+" + a.String()
}

func strPtr(s string) *string {
	return &s
}
