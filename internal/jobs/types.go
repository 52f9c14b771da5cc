package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Job type constants
const (
	TypeExpirySweep = "progress:expiry_sweep"
)

// Queue names
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// ExpirySweepPayload asks the worker to expire offers whose window closed
// at or before Now. A zero Now means the worker's clock.
type ExpirySweepPayload struct {
	BatchSize int       `json:"batch_size"`
	Now       time.Time `json:"now,omitempty"`
}

// NewExpirySweepTask creates a new expiry sweep task
func NewExpirySweepTask(payload ExpirySweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal expiry sweep payload: %w", err)
	}
	return asynq.NewTask(TypeExpirySweep, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(10*time.Minute),
	), nil
}

// ParseExpirySweepPayload decodes a task payload. An empty payload, as sent
// by the periodic scheduler, yields the zero value.
func ParseExpirySweepPayload(data []byte) (ExpirySweepPayload, error) {
	var payload ExpirySweepPayload
	if len(data) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ExpirySweepPayload{}, fmt.Errorf("failed to unmarshal expiry sweep payload: %w", err)
	}
	return payload, nil
}
