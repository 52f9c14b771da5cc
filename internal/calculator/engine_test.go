package calculator

import (
	"errors"
	"math/rand"
	"testing"

	"matchbet-server/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualifying_WorkedExample(t *testing.T) {
	engine := New(DefaultConfig())

	res, err := engine.Qualifying(
		money.RequireAmount("10"),
		money.RequireOdds("2.00"),
		money.RequireOdds("2.10"),
		money.RequireRate("0.05"),
	)
	require.NoError(t, err)

	assert.Equal(t, "9.76", res.LayStake.String())
	assert.Equal(t, "10.73", res.Liability.String())
	assert.Equal(t, "-0.73", res.BackWins.Profit.String())
	assert.Equal(t, "-0.73", res.LayWins.Profit.String())
	assert.Equal(t, "-0.73", res.GuaranteedProfit.String())
	assert.Equal(t, RatingPoor, res.Rating)
	assert.Nil(t, res.RetentionRate)
}

func TestFreeBetSNR_WorkedExample(t *testing.T) {
	engine := New(DefaultConfig())

	res, err := engine.FreeBetSNR(
		money.RequireAmount("30"),
		money.RequireOdds("4.00"),
		money.RequireOdds("4.00"),
		money.RequireRate("0"),
	)
	require.NoError(t, err)

	assert.Equal(t, "22.50", res.LayStake.String())
	assert.Equal(t, "67.50", res.Liability.String())
	assert.Equal(t, "22.50", res.BackWins.Profit.String())
	assert.Equal(t, "22.50", res.LayWins.Profit.String())
	require.NotNil(t, res.RetentionRate)
	assert.Equal(t, 75.0, *res.RetentionRate)
	assert.Equal(t, RatingExcellent, res.Rating)
}

func TestFreeBetSR_KeepsStakeOnBackWin(t *testing.T) {
	engine := New(DefaultConfig())

	res, err := engine.FreeBetSR(
		money.RequireAmount("20"),
		money.RequireOdds("3.00"),
		money.RequireOdds("3.10"),
		money.RequireRate("0.02"),
	)
	require.NoError(t, err)

	// L = 20·3 / (3.10 − 0.02)
	want := money.RequireAmount("60").Div(decimal.RequireFromString("3.08"))
	assert.Equal(t, want.String(), res.LayStake.String())
	assert.True(t, res.BackWins.Profit.Equal(res.LayWins.Profit))
	assert.True(t, res.GuaranteedProfit.IsPositive())
}

func TestCalculate_RejectsInvalidInput(t *testing.T) {
	engine := New(DefaultConfig())
	base := Input{
		BetType:    BetTypeQualifying,
		BackStake:  money.RequireAmount("10"),
		BackOdds:   money.RequireOdds("2.00"),
		LayOdds:    money.RequireOdds("2.10"),
		Commission: money.RequireRate("0.05"),
	}

	tests := []struct {
		name   string
		mutate func(in *Input)
		field  string
	}{
		{name: "zero stake", mutate: func(in *Input) { in.BackStake = money.Zero }, field: "back_stake"},
		{name: "negative stake", mutate: func(in *Input) { in.BackStake = money.RequireAmount("-1") }, field: "back_stake"},
		{name: "free bet zero value", mutate: func(in *Input) { in.BetType = BetTypeFreeBetSNR; in.BackStake = money.Zero }, field: "free_bet_value"},
		{name: "back odds of evens", mutate: func(in *Input) { in.BackOdds = money.RequireOdds("1.00") }, field: "back_odds"},
		{name: "lay odds below minimum", mutate: func(in *Input) { in.LayOdds = money.RequireOdds("1.005") }, field: "lay_odds"},
		{name: "commission too high", mutate: func(in *Input) { in.Commission = money.RequireRate("0.2") }, field: "commission"},
		{name: "unknown bet type", mutate: func(in *Input) { in.BetType = "accumulator" }, field: "bet_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)

			_, err := engine.Calculate(in)
			var vErr *money.ValidationError
			require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestCalculate_LayBelowBackIsInfeasible(t *testing.T) {
	engine := New(DefaultConfig())

	_, err := engine.Qualifying(
		money.RequireAmount("10"),
		money.RequireOdds("3.00"),
		money.RequireOdds("2.50"),
		money.RequireRate("0.02"),
	)

	var cErr *CalculationError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, BetTypeQualifying, cErr.BetType)
}

func TestCalculate_OutcomesBalanceAcrossFeasibleInputs(t *testing.T) {
	engine := New(DefaultConfig())
	rng := rand.New(rand.NewSource(42))
	unit := decimal.RequireFromString("0.01")

	for i := 0; i < 2000; i++ {
		back := decimal.NewFromFloat(1.01 + rng.Float64()*14).Round(2)
		lay := back.Add(decimal.NewFromFloat(rng.Float64() * 1.5)).Round(2)
		commission := decimal.NewFromFloat(rng.Float64() * 0.1).Round(3)
		stake := decimal.NewFromFloat(1 + rng.Float64()*200).Round(2)
		betType := []BetType{BetTypeQualifying, BetTypeFreeBetSNR, BetTypeFreeBetSR}[i%3]

		in := Input{
			BetType:    betType,
			BackStake:  money.NewAmount(stake),
			BackOdds:   money.NewOdds(back),
			LayOdds:    money.NewOdds(lay),
			Commission: money.NewRate(commission),
		}
		res, err := engine.Calculate(in)
		require.NoError(t, err, "input %+v", in)

		gap := res.BackWins.Profit.Sub(res.LayWins.Profit).Abs().Decimal()
		require.True(t, gap.LessThan(unit), "gap %s for %+v", gap, in)

		roundedGap := res.BackWins.Profit.Round().Sub(res.LayWins.Profit.Round()).Abs().Decimal()
		require.True(t, roundedGap.LessThanOrEqual(unit), "rounded gap %s for %+v", roundedGap, in)
	}
}

func TestSettle(t *testing.T) {
	engine := New(DefaultConfig())
	in := Input{
		BetType:    BetTypeQualifying,
		BackStake:  money.RequireAmount("10"),
		BackOdds:   money.RequireOdds("2.00"),
		LayOdds:    money.RequireOdds("2.10"),
		Commission: money.RequireRate("0.05"),
	}
	layStake := money.RequireAmount("9.76")

	backWon, err := engine.Settle(in, layStake, OutcomeBackWon)
	require.NoError(t, err)
	// 10·1 − 9.76·1.1
	assert.Equal(t, "-0.74", backWon.Round().String())

	layWon, err := engine.Settle(in, layStake, OutcomeLayWon)
	require.NoError(t, err)
	// 9.76·0.95 − 10
	assert.Equal(t, "-0.73", layWon.Round().String())

	_, err = engine.Settle(in, layStake, OutcomePending)
	var vErr *money.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "outcome", vErr.Field)
}

func TestSettle_FreeBetLayWinKeepsWholeLayStake(t *testing.T) {
	engine := New(DefaultConfig())
	in := Input{
		BetType:    BetTypeFreeBetSNR,
		BackStake:  money.RequireAmount("30"),
		BackOdds:   money.RequireOdds("4.00"),
		LayOdds:    money.RequireOdds("4.20"),
		Commission: money.RequireRate("0.02"),
	}

	profit, err := engine.Settle(in, money.RequireAmount("21.57"), OutcomeLayWon)
	require.NoError(t, err)
	assert.Equal(t, "21.14", profit.Round().String())
}

func TestBatch(t *testing.T) {
	engine := New(DefaultConfig())

	inputs := []Input{
		{BetType: BetTypeQualifying, BackStake: money.RequireAmount("10"), BackOdds: money.RequireOdds("2.00"), LayOdds: money.RequireOdds("2.10"), Commission: money.RequireRate("0.05")},
		{BetType: BetTypeFreeBetSNR, BackStake: money.RequireAmount("30"), BackOdds: money.RequireOdds("4.00"), LayOdds: money.RequireOdds("4.00"), Commission: money.RequireRate("0")},
	}

	out, err := engine.Batch(inputs)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	require.NotNil(t, out.Best)
	assert.Equal(t, BetTypeFreeBetSNR, out.Best.BetType)
	assert.Equal(t, "21.77", out.TotalGuaranteed.String())
}

func TestBatch_Limits(t *testing.T) {
	engine := New(DefaultConfig())

	_, err := engine.Batch(nil)
	assert.Error(t, err)

	inputs := make([]Input, MaxBatchSize+1)
	_, err = engine.Batch(inputs)
	var vErr *money.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "calculations", vErr.Field)
}

func TestAggregateProfit_ExactAtScale(t *testing.T) {
	qualifying := money.RequireAmount("-0.7317")
	freeBet := money.RequireAmount("22.495")

	total := AggregateProfit(qualifying, freeBet)
	assert.Equal(t, "21.77", total.String())
	assert.True(t, total.Decimal().Equal(qualifying.Round().Decimal().Add(freeBet.Round().Decimal())))
}

func TestProjectFreeBetProfit_UsesConfiguredRatio(t *testing.T) {
	assert.Equal(t, "28.50", New(DefaultConfig()).ProjectFreeBetProfit(money.RequireAmount("30")).String())

	custom := New(Config{SNRRatio: decimal.RequireFromString("0.8")})
	assert.Equal(t, "24.00", custom.ProjectFreeBetProfit(money.RequireAmount("30")).String())
}

func TestProfitDelta(t *testing.T) {
	delta := ProfitDelta(money.RequireAmount("22.50"), money.RequireAmount("21.14"))
	assert.Equal(t, "-1.36", delta.String())
}

func TestRating_Bands(t *testing.T) {
	tests := []struct {
		name    string
		betType BetType
		back    string
		lay     string
		want    Rating
	}{
		{name: "qualifying tight spread", betType: BetTypeQualifying, back: "2.00", lay: "2.02", want: RatingExcellent},
		{name: "qualifying two percent", betType: BetTypeQualifying, back: "2.00", lay: "2.04", want: RatingGood},
		{name: "qualifying three percent", betType: BetTypeQualifying, back: "2.00", lay: "2.06", want: RatingFair},
		{name: "free bet three percent", betType: BetTypeFreeBetSNR, back: "2.00", lay: "2.06", want: RatingGood},
		{name: "free bet ten percent", betType: BetTypeFreeBetSNR, back: "2.00", lay: "2.20", want: RatingPoor},
	}

	engine := New(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.Calculate(Input{
				BetType:    tt.betType,
				BackStake:  money.RequireAmount("10"),
				BackOdds:   money.RequireOdds(tt.back),
				LayOdds:    money.RequireOdds(tt.lay),
				Commission: money.RequireRate("0.02"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Rating)
		})
	}
}
