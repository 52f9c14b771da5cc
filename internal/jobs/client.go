package jobs

import (
	"context"
	"errors"
	"fmt"

	"matchbet-server/internal/observability"

	"github.com/hibiken/asynq"
)

// ErrSweepAlreadyQueued is returned when an expiry sweep is already pending.
var ErrSweepAlreadyQueued = errors.New("expiry sweep already queued")

// Client handles enqueueing background jobs
type Client struct {
	client *asynq.Client
	logger *observability.Logger
}

// NewClient creates a new job client
func NewClient(opt asynq.RedisConnOpt, logger *observability.Logger) *Client {
	return &Client{
		client: asynq.NewClient(opt),
		logger: logger,
	}
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueExpirySweep enqueues an expiry sweep and returns the task ID
func (c *Client) EnqueueExpirySweep(ctx context.Context, payload ExpirySweepPayload) (string, error) {
	task, err := NewExpirySweepTask(payload)
	if err != nil {
		c.logger.Error(ctx, "failed to create expiry sweep task", err)
		return "", fmt.Errorf("failed to create expiry sweep task: %w", err)
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return "", ErrSweepAlreadyQueued
		}
		c.logger.Error(ctx, "failed to enqueue expiry sweep task", err)
		return "", fmt.Errorf("failed to enqueue expiry sweep task: %w", err)
	}

	c.logger.Info(ctx, fmt.Sprintf("enqueued expiry sweep task: %s (queue: %s)", info.ID, info.Queue))
	return info.ID, nil
}
