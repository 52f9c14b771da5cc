package processor

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/money"
	"matchbet-server/internal/store"
	"strings"

	"github.com/google/uuid"
)

// DiscoverOffer records interest in an offer. An existing active record is
// returned untouched.
func (p *ProgressProcessor) DiscoverOffer(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	if _, err := p.offer(ctx, offerID, true); err != nil {
		return store.UserOfferProgress{}, err
	}

	return p.execute(ctx, lockKey{userID, offerID}, CommandDiscoverOffer, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := tx.q.GetActiveProgress(ctx, userID, offerID)
		if err == nil {
			tx.stage = progress.Stage
			return unchanged(progress), nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return change{}, fmt.Errorf("failed to get active progress: %w", err)
		}
		return p.create(ctx, tx, userID, offerID, CommandDiscoverOffer)
	})
}

// StartOffer opens a record at selected, or advances a discovered one. Any
// other active record is a conflict.
func (p *ProgressProcessor) StartOffer(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	if _, err := p.offer(ctx, offerID, true); err != nil {
		return store.UserOfferProgress{}, err
	}

	return p.execute(ctx, lockKey{userID, offerID}, CommandStartOffer, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := tx.q.GetActiveProgress(ctx, userID, offerID)
		if errors.Is(err, store.ErrNotFound) {
			return p.create(ctx, tx, userID, offerID, CommandStartOffer)
		}
		if err != nil {
			return change{}, fmt.Errorf("failed to get active progress: %w", err)
		}

		tx.stage = progress.Stage
		if progress.Stage != store.StageDiscovered {
			return change{}, &ConflictError{
				Resource: "progress",
				Reason:   fmt.Sprintf("offer already in progress at stage %s", progress.Stage),
			}
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandStartOffer, "")
		if err != nil {
			return change{}, err
		}
		progress.StartedAt = timePtr(tx.now)
		return change{from: from, progress: progress, changed: true, effects: effects | effectRefresh}, nil
	})
}

func (p *ProgressProcessor) create(ctx context.Context, tx *txn, userID, offerID uuid.UUID, cmd Command) (change, error) {
	next, t, _ := lookup(noRecord, cmd, "")
	params := store.CreateProgressParams{
		ID:      uuid.New(),
		UserID:  userID,
		OfferID: offerID,
		Stage:   next,
		Now:     tx.now,
	}
	if cmd == CommandStartOffer {
		params.StartedAt = timePtr(tx.now)
	}
	progress, err := tx.q.CreateProgress(ctx, params)
	if err != nil {
		return change{}, err
	}
	return change{from: noRecord, progress: progress, created: true, changed: true, effects: t.effects | effectRefresh}, nil
}

// ConfirmSignup moves a selected record to signing_up or straight to
// account_created. Offers without a qualifying bet continue to free_bet_pending.
func (p *ProgressProcessor) ConfirmSignup(ctx context.Context, userID, offerID uuid.UUID, step SignupStep) (store.UserOfferProgress, error) {
	var target string
	switch step {
	case SignupStepStarted:
		target = store.StageSigningUp
	case SignupStepCompleted, "":
		target = store.StageAccountCreated
	default:
		return store.UserOfferProgress{}, &money.ValidationError{Field: "step", Value: string(step), Reason: "must be started or completed"}
	}

	offer, err := p.offer(ctx, offerID, false)
	if err != nil {
		return store.UserOfferProgress{}, err
	}

	return p.execute(ctx, lockKey{userID, offerID}, CommandConfirmSignup, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandConfirmSignup)
		if err != nil {
			return change{}, err
		}
		if reached(progress.Stage, target) {
			return unchanged(progress), nil
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandConfirmSignup, target)
		if err != nil {
			return change{}, err
		}
		if progress.Stage == store.StageAccountCreated {
			progress.SignedUpAt = timePtr(tx.now)
			if !offer.QualifyingBetRequired {
				more, err := advance(&progress, commandSkipQualifying, "")
				if err != nil {
					return change{}, err
				}
				effects |= more
			}
		}
		return change{from: from, progress: progress, changed: true, effects: effects}, nil
	})
}

// StartQualifying marks that the user is looking for a qualifying bet.
func (p *ProgressProcessor) StartQualifying(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	return p.execute(ctx, lockKey{userID, offerID}, CommandStartQualifying, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandStartQualifying)
		if err != nil {
			return change{}, err
		}
		if reached(progress.Stage, store.StageQualifyingPending) {
			return unchanged(progress), nil
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandStartQualifying, "")
		if err != nil {
			return change{}, err
		}
		return change{from: from, progress: progress, changed: true, effects: effects}, nil
	})
}

// RecordQualifyingBet validates the qualifying bet against the calculator and
// the offer terms, then creates or links it. Repeating it with the same bet
// ID is a no-op.
func (p *ProgressProcessor) RecordQualifyingBet(ctx context.Context, userID, offerID uuid.UUID, in BetInput) (store.UserOfferProgress, error) {
	offer, err := p.offer(ctx, offerID, false)
	if err != nil {
		return store.UserOfferProgress{}, err
	}

	return p.execute(ctx, lockKey{userID, offerID}, CommandRecordQualifyingBet, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandRecordQualifyingBet)
		if err != nil {
			return change{}, err
		}
		if reached(progress.Stage, store.StageQualifyingPlaced) {
			if sameBet(progress.QualifyingBetID, in.BetID) {
				return unchanged(progress), nil
			}
			return change{}, &IllegalTransitionError{
				Stage:   progress.Stage,
				Command: CommandRecordQualifyingBet,
				Reason:  "a different qualifying bet is already recorded",
			}
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandRecordQualifyingBet, "")
		if err != nil {
			return change{}, err
		}

		bet, res, err := p.placeBet(ctx, tx, progress, offer, calculator.BetTypeQualifying, in, nil)
		if err != nil {
			return change{}, err
		}

		expected := res.GuaranteedProfit.Round()
		progress.QualifyingBetID = &bet.ID
		progress.QualifyingStake = &bet.BackStake
		progress.QualifyingOdds = &bet.BackOdds
		progress.ExpectedQualifyingLoss = &expected
		progress.QualifyingPlacedAt = timePtr(tx.now)
		return change{from: from, progress: progress, changed: true, effects: effects}, nil
	})
}

// ConfirmQualifyingOutcome settles the qualifying bet and releases the free
// bet stage.
func (p *ProgressProcessor) ConfirmQualifyingOutcome(ctx context.Context, userID, offerID uuid.UUID, outcome calculator.Outcome) (store.UserOfferProgress, error) {
	if !outcome.Settled() {
		return store.UserOfferProgress{}, &money.ValidationError{Field: "outcome", Value: string(outcome), Reason: "must be back_won or lay_won"}
	}

	return p.execute(ctx, lockKey{userID, offerID}, CommandConfirmQualifyingOutcome, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandConfirmQualifyingOutcome)
		if err != nil {
			return change{}, err
		}
		if reached(progress.Stage, store.StageQualifyingSettled) {
			same, err := p.settledWith(ctx, tx, progress.QualifyingBetID, outcome)
			if err != nil {
				return change{}, err
			}
			if same {
				return unchanged(progress), nil
			}
			return change{}, &IllegalTransitionError{
				Stage:   progress.Stage,
				Command: CommandConfirmQualifyingOutcome,
				Reason:  "qualifying bet already settled with a different outcome",
			}
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandConfirmQualifyingOutcome, "")
		if err != nil {
			return change{}, err
		}
		bet, profit, err := p.settleLinked(ctx, tx, CommandConfirmQualifyingOutcome, progress.QualifyingBetID, outcome)
		if err != nil {
			return change{}, err
		}

		progress.QualifyingLoss = &profit
		progress.TotalProfit = calculator.AggregateProfit(profit, valueOrZero(progress.FreeBetProfit))
		more, err := advance(&progress, commandReleaseFreeBet, "")
		if err != nil {
			return change{}, err
		}
		return change{
			from:     from,
			progress: progress,
			changed:  true,
			effects:  effects | more,
			settled:  []settlement{{betType: bet.BetType, profit: profit}},
		}, nil
	})
}

// ConfirmFreeBetReceived stores the free bet value and projects its profit.
func (p *ProgressProcessor) ConfirmFreeBetReceived(ctx context.Context, userID, offerID uuid.UUID, value money.Amount) (store.UserOfferProgress, error) {
	if err := money.RequirePositive("free_bet_value", value); err != nil {
		return store.UserOfferProgress{}, err
	}
	value = value.Round()

	return p.execute(ctx, lockKey{userID, offerID}, CommandConfirmFreeBetReceived, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandConfirmFreeBetReceived)
		if err != nil {
			return change{}, err
		}
		if reached(progress.Stage, store.StageFreeBetAvailable) {
			if progress.FreeBetValue != nil && progress.FreeBetValue.Equal(value) {
				return unchanged(progress), nil
			}
			return change{}, &IllegalTransitionError{
				Stage:   progress.Stage,
				Command: CommandConfirmFreeBetReceived,
				Reason:  "a different free bet value is already recorded",
			}
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandConfirmFreeBetReceived, "")
		if err != nil {
			return change{}, err
		}
		projected := p.engine.ProjectFreeBetProfit(value).Round()
		progress.FreeBetValue = &value
		progress.ExpectedFreeBetProfit = &projected
		progress.FreeBetReceivedAt = timePtr(tx.now)
		return change{from: from, progress: progress, changed: true, effects: effects}, nil
	})
}

// RecordFreeBet validates and links the free bet. Its type follows the
// offer's stake-returned flag and its stake may not exceed the received value.
func (p *ProgressProcessor) RecordFreeBet(ctx context.Context, userID, offerID uuid.UUID, in BetInput) (store.UserOfferProgress, error) {
	offer, err := p.offer(ctx, offerID, false)
	if err != nil {
		return store.UserOfferProgress{}, err
	}
	betType := calculator.FreeBetType(offer.IsStakeReturned)

	return p.execute(ctx, lockKey{userID, offerID}, CommandRecordFreeBet, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandRecordFreeBet)
		if err != nil {
			return change{}, err
		}
		if reached(progress.Stage, store.StageFreeBetPlaced) {
			if sameBet(progress.FreeBetID, in.BetID) {
				return unchanged(progress), nil
			}
			return change{}, &IllegalTransitionError{
				Stage:   progress.Stage,
				Command: CommandRecordFreeBet,
				Reason:  "a different free bet is already recorded",
			}
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandRecordFreeBet, "")
		if err != nil {
			return change{}, err
		}

		if in.BackStake.IsZero() && progress.FreeBetValue != nil {
			in.BackStake = *progress.FreeBetValue
		}
		bet, res, err := p.placeBet(ctx, tx, progress, offer, betType, in, progress.FreeBetValue)
		if err != nil {
			return change{}, err
		}

		expected := res.GuaranteedProfit.Round()
		progress.FreeBetID = &bet.ID
		progress.ExpectedFreeBetProfit = &expected
		return change{from: from, progress: progress, changed: true, effects: effects}, nil
	})
}

// ConfirmFreeBetOutcome settles the free bet and updates the running total.
func (p *ProgressProcessor) ConfirmFreeBetOutcome(ctx context.Context, userID, offerID uuid.UUID, outcome calculator.Outcome) (store.UserOfferProgress, error) {
	if !outcome.Settled() {
		return store.UserOfferProgress{}, &money.ValidationError{Field: "outcome", Value: string(outcome), Reason: "must be back_won or lay_won"}
	}

	return p.execute(ctx, lockKey{userID, offerID}, CommandConfirmFreeBetOutcome, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandConfirmFreeBetOutcome)
		if err != nil {
			return change{}, err
		}
		if reached(progress.Stage, store.StageFreeBetSettled) {
			same, err := p.settledWith(ctx, tx, progress.FreeBetID, outcome)
			if err != nil {
				return change{}, err
			}
			if same {
				return unchanged(progress), nil
			}
			return change{}, &IllegalTransitionError{
				Stage:   progress.Stage,
				Command: CommandConfirmFreeBetOutcome,
				Reason:  "free bet already settled with a different outcome",
			}
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandConfirmFreeBetOutcome, "")
		if err != nil {
			return change{}, err
		}
		bet, profit, err := p.settleLinked(ctx, tx, CommandConfirmFreeBetOutcome, progress.FreeBetID, outcome)
		if err != nil {
			return change{}, err
		}

		progress.FreeBetProfit = &profit
		progress.TotalProfit = calculator.AggregateProfit(valueOrZero(progress.QualifyingLoss), profit)
		return change{
			from:     from,
			progress: progress,
			changed:  true,
			effects:  effects,
			settled:  []settlement{{betType: bet.BetType, profit: profit}},
		}, nil
	})
}

// Complete closes a settled offer. total_profit becomes the exact sum of the
// qualifying result and the free bet profit.
func (p *ProgressProcessor) Complete(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	return p.execute(ctx, lockKey{userID, offerID}, CommandComplete, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, CommandComplete)
		if err != nil {
			return change{}, err
		}

		from := progress.Stage
		effects, err := advance(&progress, CommandComplete, "")
		if err != nil {
			return change{}, err
		}
		progress.TotalProfit = calculator.AggregateProfit(valueOrZero(progress.QualifyingLoss), valueOrZero(progress.FreeBetProfit))
		progress.CompletedAt = timePtr(tx.now)
		return change{from: from, progress: progress, changed: true, effects: effects}, nil
	})
}

// Skip abandons an offer. The reason, if any, is appended to the notes.
func (p *ProgressProcessor) Skip(ctx context.Context, userID, offerID uuid.UUID, reason string) (store.UserOfferProgress, error) {
	return p.close(ctx, userID, offerID, CommandSkip, reason)
}

// MarkExpired closes an offer whose window has passed.
func (p *ProgressProcessor) MarkExpired(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	return p.close(ctx, userID, offerID, CommandMarkExpired, "")
}

// MarkFailed closes an offer that cannot be finished. A reason is required.
func (p *ProgressProcessor) MarkFailed(ctx context.Context, userID, offerID uuid.UUID, reason string) (store.UserOfferProgress, error) {
	if strings.TrimSpace(reason) == "" {
		return store.UserOfferProgress{}, &money.ValidationError{Field: "reason", Reason: "is required when marking an offer failed"}
	}
	return p.close(ctx, userID, offerID, CommandMarkFailed, reason)
}

func (p *ProgressProcessor) close(ctx context.Context, userID, offerID uuid.UUID, cmd Command, reason string) (store.UserOfferProgress, error) {
	reason = strings.TrimSpace(reason)

	return p.execute(ctx, lockKey{userID, offerID}, cmd, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := p.load(ctx, tx, userID, offerID, cmd)
		if err != nil {
			return change{}, err
		}

		from := progress.Stage
		effects, err := advance(&progress, cmd, "")
		if err != nil {
			return change{}, err
		}
		switch {
		case cmd == CommandMarkFailed:
			progress.FailureReason = &reason
		case reason != "":
			progress.Notes = appendNote(progress.Notes, fmt.Sprintf("%s: %s", cmd, reason))
		}
		return change{from: from, progress: progress, changed: true, effects: effects}, nil
	})
}

// CorrectStage is an administrative override. It bypasses the transition
// table but unlinks bets the target stage may not reference, and records
// the reason in the notes.
func (p *ProgressProcessor) CorrectStage(ctx context.Context, progressID uuid.UUID, stage, reason string) (store.UserOfferProgress, error) {
	if !KnownStage(stage) {
		return store.UserOfferProgress{}, &money.ValidationError{Field: "stage", Value: stage, Reason: "is not a known stage"}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return store.UserOfferProgress{}, &money.ValidationError{Field: "reason", Reason: "is required for a stage correction"}
	}

	current, err := p.store.GetProgressByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.UserOfferProgress{}, &NotFoundError{Resource: "progress", ID: progressID.String()}
		}
		return store.UserOfferProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}

	return p.execute(ctx, lockKey{current.UserID, current.OfferID}, CommandCorrectStage, func(ctx context.Context, tx *txn) (change, error) {
		progress, err := tx.q.GetProgressByID(ctx, progressID)
		if err != nil {
			return change{}, fmt.Errorf("failed to get progress: %w", err)
		}
		tx.stage = progress.Stage
		if progress.Stage == stage {
			return unchanged(progress), nil
		}

		from := progress.Stage
		progress.Stage = stage
		if err := p.unlinkBeyond(ctx, tx, &progress); err != nil {
			return change{}, err
		}
		progress.TotalProfit = calculator.AggregateProfit(valueOrZero(progress.QualifyingLoss), valueOrZero(progress.FreeBetProfit))
		switch stage {
		case store.StageCompleted:
			if progress.CompletedAt == nil {
				progress.CompletedAt = timePtr(tx.now)
			}
		case store.StageFailed:
			if progress.FailureReason == nil {
				progress.FailureReason = &reason
			}
		}
		if stage != store.StageFailed {
			progress.FailureReason = nil
		}
		progress.Notes = appendNote(progress.Notes, fmt.Sprintf("stage corrected from %s to %s: %s", from, stage, reason))
		return change{from: from, progress: progress, changed: true, effects: effectRefresh}, nil
	})
}

// unlinkBeyond drops bet references and figures the record's new stage has
// not reached. Terminal stages keep everything.
func (p *ProgressProcessor) unlinkBeyond(ctx context.Context, tx *txn, progress *store.UserOfferProgress) error {
	if store.IsTerminalStage(progress.Stage) {
		return nil
	}
	if !reached(progress.Stage, store.StageQualifyingPlaced) {
		if err := p.unlinkBet(ctx, tx, progress.QualifyingBetID); err != nil {
			return err
		}
		progress.QualifyingBetID = nil
		progress.QualifyingStake = nil
		progress.QualifyingOdds = nil
		progress.ExpectedQualifyingLoss = nil
		progress.QualifyingPlacedAt = nil
	}
	if !reached(progress.Stage, store.StageQualifyingSettled) {
		progress.QualifyingLoss = nil
	}
	if !reached(progress.Stage, store.StageFreeBetAvailable) {
		progress.FreeBetValue = nil
		progress.ExpectedFreeBetProfit = nil
		progress.FreeBetReceivedAt = nil
	}
	if !reached(progress.Stage, store.StageFreeBetPlaced) {
		if err := p.unlinkBet(ctx, tx, progress.FreeBetID); err != nil {
			return err
		}
		progress.FreeBetID = nil
	}
	if !reached(progress.Stage, store.StageFreeBetSettled) {
		progress.FreeBetProfit = nil
	}
	if !reached(progress.Stage, store.StageCompleted) {
		progress.CompletedAt = nil
	}
	return nil
}
