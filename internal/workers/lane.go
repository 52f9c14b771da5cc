package workers

import (
	"context"

	"matchbet-server/internal/observability"

	"github.com/cespare/xxhash/v2"
)

// laneFor maps a user onto one of n lanes. Every event for a user lands on
// the same lane, so one worker applies them in the order they arrived.
func laneFor(userID string, n int) int {
	if n <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(userID) % uint64(n))
}

func eventContext(ctx context.Context, event EventMessage) context.Context {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "event_id", Value: event.ID},
		observability.Field{Key: "event_type", Value: event.Type},
		observability.Field{Key: "user_id", Value: event.UserID},
	)
	if event.OfferID != nil {
		ctx = observability.WithFields(ctx, observability.Field{Key: "offer_id", Value: *event.OfferID})
	}
	return ctx
}
