package processor

import (
	"context"
	"errors"
	"fmt"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"

	"github.com/google/uuid"
)

// ActiveOffers is the dashboard view of a user's offers.
type ActiveOffers struct {
	Counts store.ProgressCounts      `json:"counts"`
	Offers []store.UserOfferProgress `json:"offers"`
}

// GetProgress returns the active record for (user, offer), or the most
// recent closed one.
func (p *ProgressProcessor) GetProgress(ctx context.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: userID.String()},
		observability.Field{Key: "offer_id", Value: offerID.String()},
	)

	progress, err := p.store.GetActiveProgress(ctx, userID, offerID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		p.logger.Error(ctx, "failed to get active progress", err)
		return store.UserOfferProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}

	progress, err = p.store.GetLatestProgress(ctx, userID, offerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.UserOfferProgress{}, &NotFoundError{Resource: "progress", ID: offerID.String()}
		}
		p.logger.Error(ctx, "failed to get latest progress", err)
		return store.UserOfferProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

// GetProgressByID returns a record owned by userID.
func (p *ProgressProcessor) GetProgressByID(ctx context.Context, userID, progressID uuid.UUID) (store.UserOfferProgress, error) {
	progress, err := p.store.GetProgressByID(ctx, progressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.UserOfferProgress{}, &NotFoundError{Resource: "progress", ID: progressID.String()}
		}
		p.logger.Error(ctx, "failed to get progress by id", err)
		return store.UserOfferProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}
	if progress.UserID != userID {
		return store.UserOfferProgress{}, &NotFoundError{Resource: "progress", ID: progressID.String()}
	}
	return progress, nil
}

// ListProgress returns a user's records, newest first, optionally filtered by stage.
func (p *ProgressProcessor) ListProgress(ctx context.Context, userID uuid.UUID, stage *string) ([]store.UserOfferProgress, error) {
	if stage != nil && !KnownStage(*stage) {
		return nil, &money.ValidationError{Field: "stage", Value: *stage, Reason: "is not a known stage"}
	}

	records, err := p.store.ListProgressByUser(ctx, userID, stage)
	if err != nil {
		p.logger.Error(ctx, "failed to list progress", err)
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return records, nil
}

// ActiveOffers returns the user's non-terminal records with their tallies.
func (p *ProgressProcessor) ActiveOffers(ctx context.Context, userID uuid.UUID) (ActiveOffers, error) {
	counts, err := p.store.CountProgressByUser(ctx, userID)
	if err != nil {
		p.logger.Error(ctx, "failed to count progress", err)
		return ActiveOffers{}, fmt.Errorf("failed to count progress: %w", err)
	}

	records, err := p.store.ListProgressByUser(ctx, userID, nil)
	if err != nil {
		p.logger.Error(ctx, "failed to list progress", err)
		return ActiveOffers{}, fmt.Errorf("failed to list progress: %w", err)
	}

	active := make([]store.UserOfferProgress, 0, counts.Active)
	for _, r := range records {
		if !r.IsTerminal() {
			active = append(active, r)
		}
	}
	return ActiveOffers{Counts: counts, Offers: active}, nil
}
