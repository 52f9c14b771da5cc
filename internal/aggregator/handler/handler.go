package handler

import (
	"net/http"

	"matchbet-server/internal/aggregator"
	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	aggregator aggregator.Aggregator
	logger     *observability.Logger
}

func New(aggregator aggregator.Aggregator, logger *observability.Logger) Handler {
	return Handler{
		aggregator: aggregator,
		logger:     logger,
	}
}

// HandleGetSummary returns the caller's profit summary
func (h *Handler) HandleGetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	userIDStr, exists := c.Get("User-ID")
	if !exists {
		apierrors.RespondWithError(c, apierrors.Unauthorized("User ID not found in context"))
		return
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid user ID format"))
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	summary, err := h.aggregator.Summary(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
