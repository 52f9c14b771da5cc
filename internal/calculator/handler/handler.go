package handler

import (
	"net/http"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	engine calculator.Engine
	logger *observability.Logger
}

func New(engine calculator.Engine, logger *observability.Logger) Handler {
	return Handler{
		engine: engine,
		logger: logger,
	}
}

// CalculationRequest is one back/lay pair to balance. For free bets
// back_stake is the free bet value.
type CalculationRequest struct {
	BetType    string       `json:"bet_type" binding:"required,oneof=qualifying free_bet_snr free_bet_sr"`
	BackStake  money.Amount `json:"back_stake"`
	BackOdds   money.Odds   `json:"back_odds"`
	LayOdds    money.Odds   `json:"lay_odds"`
	Commission money.Rate   `json:"commission"`
}

// BatchCalculationRequest compares several opportunities
type BatchCalculationRequest struct {
	Calculations []CalculationRequest `json:"calculations" binding:"required,min=1,max=20,dive"`
}

func (r CalculationRequest) input() calculator.Input {
	return calculator.Input{
		BetType:    calculator.BetType(r.BetType),
		BackStake:  r.BackStake,
		BackOdds:   r.BackOdds,
		LayOdds:    r.LayOdds,
		Commission: r.Commission,
	}
}

// HandleCalculate computes the lay stake, liability and outcome profits
func (h *Handler) HandleCalculate(c *gin.Context) {
	var req CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	result, err := h.engine.Calculate(req.input())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleCalculateBatch runs up to 20 calculations and picks the best
func (h *Handler) HandleCalculateBatch(c *gin.Context) {
	var req BatchCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	inputs := make([]calculator.Input, len(req.Calculations))
	for i, calc := range req.Calculations {
		inputs[i] = calc.input()
	}

	result, err := h.engine.Batch(inputs)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
