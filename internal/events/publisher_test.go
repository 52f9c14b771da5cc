package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"matchbet-server/internal/clients/kafka"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []kafka.EventMessage
	err    error
}

func (s *recordingSink) Submit(_ context.Context, event kafka.EventMessage) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func transition(stage string) Transition {
	return Transition{
		Command: "confirm_free_bet_outcome",
		From:    store.StageFreeBetPlaced,
		Progress: store.UserOfferProgress{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			OfferID:     uuid.New(),
			Stage:       stage,
			TotalProfit: money.RequireAmount("21.77"),
			Version:     7,
		},
		At: time.Date(2026, 3, 14, 18, 30, 0, 0, time.FixedZone("BST", 3600)),
	}
}

func TestPublisher_PublishTransition(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := NewPublisher(nil, sink, observability.NewLogger())

	tr := transition(store.StageFreeBetSettled)
	require.NoError(t, p.PublishTransition(context.Background(), tr))

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, TypeProgressTransitioned, evt.Type)
	assert.Equal(t, tr.Progress.UserID.String(), evt.UserID)
	require.NotNil(t, evt.OfferID)
	assert.Equal(t, tr.Progress.OfferID.String(), *evt.OfferID)
	assert.Equal(t, "2026-03-14T17:30:00Z", evt.Timestamp)
	assert.Equal(t, store.StageFreeBetPlaced, evt.Data["from_stage"])
	assert.Equal(t, store.StageFreeBetSettled, evt.Data["to_stage"])
	assert.Equal(t, "21.77", evt.Data["total_profit"])
	assert.NotEmpty(t, evt.ID)
}

func TestPublisher_CompletedAlsoPublishesCompletion(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	p := NewPublisher(nil, sink, observability.NewLogger())

	require.NoError(t, p.PublishTransition(context.Background(), transition(store.StageCompleted)))

	require.Len(t, sink.events, 2)
	assert.Equal(t, TypeProgressTransitioned, sink.events[0].Type)
	assert.Equal(t, TypeProgressCompleted, sink.events[1].Type)
	assert.NotEqual(t, sink.events[0].ID, sink.events[1].ID)
}

func TestPublisher_SinkError(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{err: errors.New("worker pool is shutting down")}
	p := NewPublisher(nil, sink, observability.NewLogger())

	err := p.PublishTransition(context.Background(), transition(store.StageSkipped))
	require.Error(t, err)
	assert.Contains(t, err.Error(), TypeProgressTransitioned)
}

func TestPublisher_NoDestinationDrops(t *testing.T) {
	t.Parallel()
	p := NewPublisher(nil, nil, observability.NewLogger())
	assert.NoError(t, p.PublishTransition(context.Background(), transition(store.StageCompleted)))
}
