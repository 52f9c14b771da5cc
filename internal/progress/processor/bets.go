package processor

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/money"
	"matchbet-server/internal/store"
	"time"

	"github.com/google/uuid"
)

// BetInput is a qualifying or free bet as the user placed it. BetID doubles
// as an idempotency key: an existing bet with that ID is linked rather than
// created again.
type BetInput struct {
	BetID      uuid.UUID
	Bookmaker  *string
	Exchange   string
	EventName  string
	Selection  string
	Market     *string
	BackOdds   money.Odds
	BackStake  money.Amount
	LayOdds    money.Odds
	LayStake   *money.Amount
	Commission money.Rate
	EventDate  *time.Time
	Notes      *string
}

// placeBet validates a bet for progress and creates or links it. limit caps
// the stake of a free bet at its received value.
func (p *ProgressProcessor) placeBet(
	ctx context.Context,
	tx *txn,
	progress store.UserOfferProgress,
	offer store.OfferCatalogEntry,
	betType calculator.BetType,
	in BetInput,
	limit *money.Amount,
) (store.Bet, calculator.Result, error) {
	if in.BetID != uuid.Nil {
		existing, err := tx.q.GetBetForUpdate(ctx, in.BetID)
		switch {
		case err == nil:
			return p.linkBet(ctx, tx, progress, offer, betType, existing, limit)
		case !errors.Is(err, store.ErrNotFound):
			return store.Bet{}, calculator.Result{}, fmt.Errorf("failed to get bet: %w", err)
		}
	}

	calc := calculator.Input{
		BetType:    betType,
		BackStake:  in.BackStake,
		BackOdds:   in.BackOdds,
		LayOdds:    in.LayOdds,
		Commission: in.Commission,
	}
	res, err := p.engine.Calculate(calc)
	if err != nil {
		return store.Bet{}, calculator.Result{}, err
	}
	if in.LayStake != nil {
		if res, err = p.engine.Evaluate(calc, *in.LayStake); err != nil {
			return store.Bet{}, calculator.Result{}, err
		}
	}
	if err := checkOffer(offer, calc, limit); err != nil {
		return store.Bet{}, calculator.Result{}, err
	}

	bookmaker := offer.Bookmaker
	if in.Bookmaker != nil && *in.Bookmaker != "" {
		bookmaker = *in.Bookmaker
	}
	id := in.BetID
	if id == uuid.Nil {
		id = uuid.New()
	}
	bet, err := tx.q.CreateBet(ctx, store.CreateBetParams{
		ID:             id,
		UserID:         progress.UserID,
		ProgressID:     &progress.ID,
		BetType:        string(betType),
		Bookmaker:      bookmaker,
		Exchange:       in.Exchange,
		EventName:      in.EventName,
		Selection:      in.Selection,
		Market:         in.Market,
		BackOdds:       in.BackOdds,
		BackStake:      in.BackStake.Round(),
		LayOdds:        in.LayOdds,
		LayStake:       res.LayStake.Round(),
		Liability:      res.Liability.Round(),
		CommissionRate: in.Commission,
		ExpectedProfit: res.GuaranteedProfit.Round(),
		EventDate:      in.EventDate,
		Notes:          in.Notes,
		Now:            tx.now,
	})
	if err != nil {
		return store.Bet{}, calculator.Result{}, fmt.Errorf("failed to create bet: %w", err)
	}
	return bet, res, nil
}

// linkBet attaches a bet the user logged separately. bet was read with
// GetBetForUpdate, so a concurrent link or settlement of the same bet waits
// for this transaction and then sees its result.
func (p *ProgressProcessor) linkBet(
	ctx context.Context,
	tx *txn,
	progress store.UserOfferProgress,
	offer store.OfferCatalogEntry,
	betType calculator.BetType,
	bet store.Bet,
	limit *money.Amount,
) (store.Bet, calculator.Result, error) {
	if bet.UserID != progress.UserID {
		return store.Bet{}, calculator.Result{}, &NotFoundError{Resource: "bet", ID: bet.ID.String()}
	}
	if bet.ProgressID != nil && *bet.ProgressID != progress.ID {
		return store.Bet{}, calculator.Result{}, &ConflictError{Resource: "bet", Reason: "bet is linked to another offer"}
	}
	if bet.IsSettled() {
		return store.Bet{}, calculator.Result{}, &money.ValidationError{Field: "bet_id", Value: bet.ID.String(), Reason: "bet is already settled"}
	}
	if bet.BetType != string(betType) {
		return store.Bet{}, calculator.Result{}, &money.ValidationError{
			Field:  "bet_type",
			Value:  bet.BetType,
			Reason: fmt.Sprintf("must be %s for this offer", betType),
		}
	}

	calc := betInput(bet)
	res, err := p.engine.Evaluate(calc, bet.LayStake)
	if err != nil {
		return store.Bet{}, calculator.Result{}, err
	}
	if err := checkOffer(offer, calc, limit); err != nil {
		return store.Bet{}, calculator.Result{}, err
	}

	bet.ProgressID = &progress.ID
	linked, err := tx.q.UpdateBet(ctx, bet, tx.now)
	if err != nil {
		return store.Bet{}, calculator.Result{}, fmt.Errorf("failed to link bet: %w", err)
	}
	return linked, res, nil
}

// checkOffer applies the catalog terms. The minimum odds bind every bet of
// the offer; the maximum stake binds the qualifying bet.
func checkOffer(offer store.OfferCatalogEntry, in calculator.Input, limit *money.Amount) error {
	if offer.MinOdds != nil && in.BackOdds.LessThan(*offer.MinOdds) {
		return &money.ValidationError{
			Field:  "back_odds",
			Value:  in.BackOdds.String(),
			Reason: fmt.Sprintf("must be at least %s for this offer", offer.MinOdds),
		}
	}
	if in.BetType == calculator.BetTypeQualifying && offer.MaxStake != nil && in.BackStake.GreaterThan(*offer.MaxStake) {
		return &money.ValidationError{
			Field:  "back_stake",
			Value:  in.BackStake.String(),
			Reason: fmt.Sprintf("must not exceed %s for this offer", offer.MaxStake),
		}
	}
	if in.BetType.IsFreeBet() && limit != nil && in.BackStake.GreaterThan(*limit) {
		return &money.ValidationError{
			Field:  "back_stake",
			Value:  in.BackStake.String(),
			Reason: fmt.Sprintf("must not exceed the free bet value %s", limit),
		}
	}
	return nil
}

// settleLinked settles the bet a record points at and returns the rounded
// profit.
func (p *ProgressProcessor) settleLinked(ctx context.Context, tx *txn, cmd Command, betID *uuid.UUID, outcome calculator.Outcome) (store.Bet, money.Amount, error) {
	if betID == nil {
		return store.Bet{}, money.Zero, &IllegalTransitionError{Stage: tx.stage, Command: cmd, Reason: "no bet is linked"}
	}
	bet, err := tx.q.GetBetForUpdate(ctx, *betID)
	if err != nil {
		return store.Bet{}, money.Zero, fmt.Errorf("failed to get linked bet: %w", err)
	}

	profit, err := p.engine.Settle(betInput(bet), bet.LayStake, outcome)
	if err != nil {
		return store.Bet{}, money.Zero, err
	}
	profit = profit.Round()

	bet.Outcome = string(outcome)
	bet.ActualProfit = &profit
	bet.SettledAt = timePtr(tx.now)
	settled, err := tx.q.UpdateBet(ctx, bet, tx.now)
	if err != nil {
		return store.Bet{}, money.Zero, fmt.Errorf("failed to settle bet: %w", err)
	}
	return settled, profit, nil
}

// settledWith reports whether the linked bet already carries outcome.
func (p *ProgressProcessor) settledWith(ctx context.Context, tx *txn, betID *uuid.UUID, outcome calculator.Outcome) (bool, error) {
	if betID == nil {
		return false, nil
	}
	bet, err := tx.q.GetBetByID(ctx, *betID)
	if err != nil {
		return false, fmt.Errorf("failed to get linked bet: %w", err)
	}
	return bet.Outcome == string(outcome), nil
}

func (p *ProgressProcessor) unlinkBet(ctx context.Context, tx *txn, betID *uuid.UUID) error {
	if betID == nil {
		return nil
	}
	bet, err := tx.q.GetBetForUpdate(ctx, *betID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get linked bet: %w", err)
	}
	bet.ProgressID = nil
	if _, err := tx.q.UpdateBet(ctx, bet, tx.now); err != nil {
		return fmt.Errorf("failed to unlink bet: %w", err)
	}
	return nil
}

func betInput(bet store.Bet) calculator.Input {
	return calculator.Input{
		BetType:    calculator.BetType(bet.BetType),
		BackStake:  bet.BackStake,
		BackOdds:   bet.BackOdds,
		LayOdds:    bet.LayOdds,
		Commission: bet.CommissionRate,
	}
}

func sameBet(linked *uuid.UUID, id uuid.UUID) bool {
	return linked != nil && id != uuid.Nil && *linked == id
}

func valueOrZero(a *money.Amount) money.Amount {
	if a == nil {
		return money.Zero
	}
	return *a
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func appendNote(notes *string, line string) *string {
	if notes == nil || *notes == "" {
		return &line
	}
	joined := *notes + "\n" + line
	return &joined
}
