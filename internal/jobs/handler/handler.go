package handler

import (
	"errors"
	"net/http"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/clock"
	"matchbet-server/internal/jobs"
	"matchbet-server/internal/jobs/workers"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
)

// Handler exposes admin triggers for background jobs. Without a job client
// the sweep runs inside the request.
type Handler struct {
	client *jobs.Client
	worker *workers.ExpiryWorker
	clock  clock.Clock
	logger *observability.Logger
}

func New(client *jobs.Client, worker *workers.ExpiryWorker, clk clock.Clock, logger *observability.Logger) Handler {
	return Handler{
		client: client,
		worker: worker,
		clock:  clk,
		logger: logger,
	}
}

// ExpirySweepRequest overrides the configured batch size
type ExpirySweepRequest struct {
	BatchSize int `json:"batch_size" binding:"omitempty,min=1,max=5000"`
}

// HandleTriggerExpirySweep queues an expiry sweep, or runs one batch inline
// when no queue is configured.
func (h *Handler) HandleTriggerExpirySweep(c *gin.Context) {
	ctx := c.Request.Context()

	var req ExpirySweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.RespondWithValidationError(c, err)
			return
		}
	}

	if h.client != nil {
		taskID, err := h.client.EnqueueExpirySweep(ctx, jobs.ExpirySweepPayload{BatchSize: req.BatchSize})
		if err != nil {
			if errors.Is(err, jobs.ErrSweepAlreadyQueued) {
				apierrors.RespondWithError(c, apierrors.Conflict(apierrors.CodeConflict, "An expiry sweep is already queued"))
				return
			}
			apierrors.RespondWithError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"task_id": taskID})
		return
	}

	result, err := h.worker.Sweep(ctx, h.clock.Now(), req.BatchSize)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
