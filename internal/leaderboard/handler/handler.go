package handler

import (
	"fmt"
	"net/http"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/leaderboard/processor"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor *processor.LeaderboardProcessor
	logger    *observability.Logger
}

func New(processor *processor.LeaderboardProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// HandleGetLeaderboard handles GET /api/v1/leaderboard
func (h *Handler) HandleGetLeaderboard(c *gin.Context) {
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

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if _, err := fmt.Sscanf(limitStr, "%d", &limit); err != nil || limit < 1 {
			apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "limit must be a positive number"))
			return
		}
	}

	standings, err := h.processor.Standings(ctx, userID, limit)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, standings)
}
