package events

import (
	"context"
	"fmt"
	"matchbet-server/internal/clients/kafka"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/store"
	"time"

	"github.com/google/uuid"
)

const (
	TypeProgressTransitioned = "progress.transitioned"
	TypeProgressCompleted    = "progress.completed"
)

// Transition describes one committed stage change.
type Transition struct {
	Command  string
	From     string
	Progress store.UserOfferProgress
	At       time.Time
}

// Sink receives events in-process. workers.WorkerPool satisfies it.
type Sink interface {
	Submit(ctx context.Context, event kafka.EventMessage) error
}

// Publisher handles publishing domain events to Kafka, or to a local sink
// when Kafka is not configured.
type Publisher struct {
	kafkaProducer *kafka.Producer
	sink          Sink
	logger        *observability.Logger
}

// NewPublisher creates a new event publisher. Both producer and sink may be
// nil, in which case events are dropped.
func NewPublisher(kafkaProducer *kafka.Producer, sink Sink, logger *observability.Logger) *Publisher {
	return &Publisher{
		kafkaProducer: kafkaProducer,
		sink:          sink,
		logger:        logger,
	}
}

// PublishTransition publishes progress.transitioned, followed by
// progress.completed when the record reached the completed stage.
func (p *Publisher) PublishTransition(ctx context.Context, t Transition) error {
	evts := []kafka.EventMessage{transitionEvent(TypeProgressTransitioned, t)}
	if t.Progress.Stage == store.StageCompleted {
		evts = append(evts, transitionEvent(TypeProgressCompleted, t))
	}

	for _, evt := range evts {
		if err := p.publish(ctx, evt); err != nil {
			return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
		}
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, evt kafka.EventMessage) error {
	switch {
	case p.kafkaProducer != nil:
		return p.kafkaProducer.PublishEvent(ctx, evt)
	case p.sink != nil:
		return p.sink.Submit(ctx, evt)
	default:
		return nil
	}
}

func transitionEvent(eventType string, t Transition) kafka.EventMessage {
	offerID := t.Progress.OfferID.String()
	return kafka.EventMessage{
		ID:      uuid.New().String(),
		Type:    eventType,
		UserID:  t.Progress.UserID.String(),
		OfferID: &offerID,
		Data: map[string]interface{}{
			"progress_id":  t.Progress.ID.String(),
			"command":      t.Command,
			"from_stage":   t.From,
			"to_stage":     t.Progress.Stage,
			"total_profit": t.Progress.TotalProfit.String(),
			"version":      t.Progress.Version,
		},
		Timestamp: t.At.UTC().Format(time.RFC3339),
	}
}
