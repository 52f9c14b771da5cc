// Package calculator computes lay stakes, liabilities and outcome profits for
// qualifying bets and free bets. Everything here is deterministic and free of
// I/O, so an Engine value may be shared between goroutines.
package calculator

import (
	"fmt"

	"matchbet-server/internal/money"

	"github.com/shopspring/decimal"
)

// MaxBatchSize caps the number of calculations in one Batch call.
const MaxBatchSize = 20

var two = decimal.NewFromInt(2)

type Config struct {
	// SNRRatio is the share of a free bet's face value expected to be kept
	// once it is matched. Used to project profit before odds are known.
	SNRRatio decimal.Decimal
	// Tolerance is the largest accepted gap between the two outcome profits.
	Tolerance decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		SNRRatio:  decimal.RequireFromString("0.95"),
		Tolerance: decimal.RequireFromString("0.01"),
	}
}

type Engine struct {
	cfg Config
}

// New builds an Engine. Zero config values fall back to DefaultConfig.
func New(cfg Config) Engine {
	def := DefaultConfig()
	if cfg.SNRRatio.IsZero() {
		cfg.SNRRatio = def.SNRRatio
	}
	if cfg.Tolerance.IsZero() {
		cfg.Tolerance = def.Tolerance
	}
	return Engine{cfg: cfg}
}

func (e Engine) Config() Config {
	return e.cfg
}

// Validate checks every field of the input and names the first offending one.
func (in Input) Validate() error {
	if !in.BetType.Valid() {
		return &money.ValidationError{
			Field:  "bet_type",
			Value:  string(in.BetType),
			Reason: "must be one of qualifying, free_bet_snr, free_bet_sr",
		}
	}
	stakeField := "back_stake"
	if in.BetType.IsFreeBet() {
		stakeField = "free_bet_value"
	}
	if err := money.RequirePositive(stakeField, in.BackStake); err != nil {
		return err
	}
	if err := money.ValidateOdds("back_odds", in.BackOdds); err != nil {
		return err
	}
	if err := money.ValidateOdds("lay_odds", in.LayOdds); err != nil {
		return err
	}
	return money.ValidateCommission("commission", in.Commission)
}

// Calculate returns the lay stake that balances both outcomes.
//
//	qualifying: L = S·Bo / (Lo − c)
//	SNR:        L = Fv·(Bo − 1) / (Lo − c)
//	SR:         L = Fv·Bo / (Lo − c)
func (e Engine) Calculate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if in.LayOdds.LessThan(in.BackOdds) {
		return Result{}, &CalculationError{
			BetType: in.BetType,
			Reason:  fmt.Sprintf("lay odds %s are below back odds %s", in.LayOdds, in.BackOdds),
		}
	}

	res := e.evaluate(in, optimalLayStake(in))

	gap := res.BackWins.Profit.Sub(res.LayWins.Profit).Abs()
	if gap.Decimal().GreaterThan(e.cfg.Tolerance) {
		return Result{}, &CalculationError{
			BetType: in.BetType,
			Reason:  fmt.Sprintf("outcomes differ by %s", gap.Decimal().String()),
		}
	}
	return res, nil
}

func (e Engine) Qualifying(stake money.Amount, backOdds, layOdds money.Odds, commission money.Rate) (Result, error) {
	return e.Calculate(Input{BetType: BetTypeQualifying, BackStake: stake, BackOdds: backOdds, LayOdds: layOdds, Commission: commission})
}

func (e Engine) FreeBetSNR(value money.Amount, backOdds, layOdds money.Odds, commission money.Rate) (Result, error) {
	return e.Calculate(Input{BetType: BetTypeFreeBetSNR, BackStake: value, BackOdds: backOdds, LayOdds: layOdds, Commission: commission})
}

func (e Engine) FreeBetSR(value money.Amount, backOdds, layOdds money.Odds, commission money.Rate) (Result, error) {
	return e.Calculate(Input{BetType: BetTypeFreeBetSR, BackStake: value, BackOdds: backOdds, LayOdds: layOdds, Commission: commission})
}

// Evaluate computes both outcomes for a lay stake the user actually matched,
// which may differ from the optimal one.
func (e Engine) Evaluate(in Input, layStake money.Amount) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if err := money.RequirePositive("lay_stake", layStake); err != nil {
		return Result{}, err
	}
	return e.evaluate(in, layStake), nil
}

// Settle returns the realised profit of a placed bet for the winning side.
func (e Engine) Settle(in Input, layStake money.Amount, outcome Outcome) (money.Amount, error) {
	res, err := e.Evaluate(in, layStake)
	if err != nil {
		return money.Zero, err
	}
	switch outcome {
	case OutcomeBackWon:
		return res.BackWins.Profit, nil
	case OutcomeLayWon:
		return res.LayWins.Profit, nil
	default:
		return money.Zero, &money.ValidationError{
			Field:  "outcome",
			Value:  string(outcome),
			Reason: "must be back_won or lay_won",
		}
	}
}

// ProjectFreeBetProfit estimates what a free bet will return before it is matched.
func (e Engine) ProjectFreeBetProfit(value money.Amount) money.Amount {
	return value.Mul(e.cfg.SNRRatio)
}

// Batch runs up to MaxBatchSize calculations and picks the best by guaranteed profit.
func (e Engine) Batch(inputs []Input) (BatchResult, error) {
	if len(inputs) == 0 || len(inputs) > MaxBatchSize {
		return BatchResult{}, &money.ValidationError{
			Field:  "calculations",
			Value:  fmt.Sprintf("%d items", len(inputs)),
			Reason: fmt.Sprintf("must contain between 1 and %d calculations", MaxBatchSize),
		}
	}

	out := BatchResult{Results: make([]Result, 0, len(inputs))}
	best := -1
	for i, in := range inputs {
		res, err := e.Calculate(in)
		if err != nil {
			return BatchResult{}, fmt.Errorf("calculation %d: %w", i, err)
		}
		out.Results = append(out.Results, res)
		out.TotalGuaranteed = out.TotalGuaranteed.Add(res.GuaranteedProfit)
		if best < 0 || res.GuaranteedProfit.GreaterThan(out.Results[best].GuaranteedProfit) {
			best = i
		}
	}
	out.Best = &out.Results[best]
	return out, nil
}

// AggregateProfit is the total of an offer: the signed qualifying result plus
// the free bet profit, exact at currency scale.
func AggregateProfit(qualifyingLoss, freeBetProfit money.Amount) money.Amount {
	return qualifyingLoss.Round().Add(freeBetProfit.Round())
}

// ProfitDelta is how far the realised profit landed from the expected one.
func ProfitDelta(expected, actual money.Amount) money.Amount {
	return actual.Round().Sub(expected.Round())
}

func optimalLayStake(in Input) money.Amount {
	denominator := in.LayOdds.Decimal().Sub(in.Commission.Decimal())
	if in.BetType == BetTypeFreeBetSNR {
		return in.BackStake.Mul(in.BackOdds.NetReturn()).Div(denominator)
	}
	return in.BackStake.Mul(in.BackOdds.Decimal()).Div(denominator)
}

func (e Engine) evaluate(in Input, layStake money.Amount) Result {
	liability := layStake.Mul(in.LayOdds.NetReturn())

	var backWins money.Amount
	if in.BetType == BetTypeFreeBetSR {
		backWins = in.BackStake.Mul(in.BackOdds.Decimal()).Sub(liability)
	} else {
		backWins = in.BackStake.Mul(in.BackOdds.NetReturn()).Sub(liability)
	}

	layWins := layStake.Mul(in.Commission.Retained())
	if in.BetType == BetTypeQualifying {
		layWins = layWins.Sub(in.BackStake)
	}

	guaranteed := backWins
	if layWins.LessThan(guaranteed) {
		guaranteed = layWins
	}

	spread := spreadPercent(in.BackOdds, in.LayOdds)
	res := Result{
		Input:            in,
		LayStake:         layStake,
		Liability:        liability,
		BackWins:         Scenario{Outcome: OutcomeBackWon, Profit: backWins},
		LayWins:          Scenario{Outcome: OutcomeLayWon, Profit: layWins},
		GuaranteedProfit: guaranteed,
		ExpectedValue:    backWins.Add(layWins).Div(two),
		SpreadPercent:    spread.Round(2).InexactFloat64(),
		Rating:           rate(in.BetType, spread),
	}
	if in.BetType.IsFreeBet() {
		retention := guaranteed.Percent(in.BackStake).Round(2).InexactFloat64()
		res.RetentionRate = &retention
	}
	return res
}

func spreadPercent(back, lay money.Odds) decimal.Decimal {
	return lay.Decimal().Sub(back.Decimal()).Abs().Div(back.Decimal()).Mul(decimal.NewFromInt(100))
}

var (
	qualifyingBands = []decimal.Decimal{decimal.NewFromInt(1), decimal.NewFromInt(2), decimal.RequireFromString("3.5")}
	freeBetBands    = []decimal.Decimal{decimal.NewFromInt(2), decimal.NewFromInt(4), decimal.NewFromInt(6)}
	ratings         = []Rating{RatingExcellent, RatingGood, RatingFair}
)

// rate grades the back/lay spread; free bets tolerate wider spreads.
func rate(t BetType, spread decimal.Decimal) Rating {
	bands := qualifyingBands
	if t.IsFreeBet() {
		bands = freeBetBands
	}
	for i, limit := range bands {
		if spread.LessThanOrEqual(limit) {
			return ratings[i]
		}
	}
	return RatingPoor
}
