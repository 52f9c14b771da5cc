package handler

import (
	"fmt"
	"net/http"
	"time"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/bets/processor"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor processor.BetProcessor
	logger    *observability.Logger
}

func New(processor processor.BetProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// LogBetRequest represents a standalone bet in HTTP requests
type LogBetRequest struct {
	ID         *uuid.UUID    `json:"id,omitempty"`
	BetType    string        `json:"bet_type" binding:"required,oneof=qualifying free_bet_snr free_bet_sr"`
	Bookmaker  string        `json:"bookmaker" binding:"required,max=100"`
	Exchange   string        `json:"exchange" binding:"required,max=100"`
	EventName  string        `json:"event_name" binding:"required,max=255"`
	Selection  string        `json:"selection" binding:"required,max=255"`
	Market     *string       `json:"market,omitempty" binding:"omitempty,max=100"`
	BackOdds   money.Odds    `json:"back_odds"`
	BackStake  money.Amount  `json:"back_stake"`
	LayOdds    money.Odds    `json:"lay_odds"`
	LayStake   *money.Amount `json:"lay_stake,omitempty"`
	Commission money.Rate    `json:"commission"`
	EventDate  *time.Time    `json:"event_date,omitempty"`
	Notes      *string       `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// UpdateBetRequest represents the editable fields of a bet
type UpdateBetRequest struct {
	Notes     *string    `json:"notes,omitempty" binding:"omitempty,max=2000"`
	EventDate *time.Time `json:"event_date,omitempty"`
}

// SettleBetRequest represents a bet settlement in HTTP requests
type SettleBetRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=back_won lay_won"`
}

// HandleLogBet records a bet that is not part of an offer
func (h *Handler) HandleLogBet(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	var req LogBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	bet, err := h.processor.LogBet(ctx, userID, processor.LogBetRequest{
		ID:         req.ID,
		BetType:    calculator.BetType(req.BetType),
		Bookmaker:  req.Bookmaker,
		Exchange:   req.Exchange,
		EventName:  req.EventName,
		Selection:  req.Selection,
		Market:     req.Market,
		BackOdds:   req.BackOdds,
		BackStake:  req.BackStake,
		LayOdds:    req.LayOdds,
		LayStake:   req.LayStake,
		Commission: req.Commission,
		EventDate:  req.EventDate,
		Notes:      req.Notes,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bet)
}

// HandleListBets lists the user's bets, newest first
func (h *Handler) HandleListBets(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	req := processor.ListBetsRequest{}
	if outcome := c.Query("outcome"); outcome != "" {
		req.Outcome = &outcome
	}
	if betType := c.Query("bet_type"); betType != "" {
		req.BetType = &betType
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if _, err := fmt.Sscanf(limitStr, "%d", &req.Limit); err != nil {
			apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "limit must be a number"))
			return
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if _, err := fmt.Sscanf(offsetStr, "%d", &req.Offset); err != nil {
			apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "offset must be a number"))
			return
		}
	}

	bets, err := h.processor.ListBets(ctx, userID, req)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

func (h *Handler) HandleGetBet(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})
	betID, ok := h.getBetID(c)
	if !ok {
		return
	}

	bet, err := h.processor.GetBet(ctx, userID, betID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

func (h *Handler) HandleUpdateBet(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})
	betID, ok := h.getBetID(c)
	if !ok {
		return
	}

	var req UpdateBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	bet, err := h.processor.UpdateBet(ctx, userID, betID, processor.UpdateBetRequest{
		Notes:     req.Notes,
		EventDate: req.EventDate,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

func (h *Handler) HandleDeleteBet(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})
	betID, ok := h.getBetID(c)
	if !ok {
		return
	}

	if err := h.processor.DeleteBet(ctx, userID, betID); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// HandleSettleBet records the outcome of a standalone bet
func (h *Handler) HandleSettleBet(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})
	betID, ok := h.getBetID(c)
	if !ok {
		return
	}

	var req SettleBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	bet, err := h.processor.SettleBet(ctx, userID, betID, calculator.Outcome(req.Outcome))
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bet)
}

// HandleGetStats returns the bet log statistics
func (h *Handler) HandleGetStats(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	stats, err := h.processor.Stats(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) getUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get("User-ID")
	if !exists {
		apierrors.RespondWithError(c, apierrors.Unauthorized("User ID not found in context"))
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid user ID format"))
		return uuid.Nil, false
	}

	return userID, true
}

func (h *Handler) getBetID(c *gin.Context) (uuid.UUID, bool) {
	betID, err := uuid.Parse(c.Param("bet_id"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid bet ID format"))
		return uuid.Nil, false
	}
	return betID, true
}
