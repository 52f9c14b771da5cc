package handler

import (
	"net/http"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/instructions"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	generator instructions.Generator
	logger    *observability.Logger
}

func New(generator instructions.Generator, logger *observability.Logger) Handler {
	return Handler{
		generator: generator,
		logger:    logger,
	}
}

type matchRequest struct {
	HomeTeam  string     `json:"home_team" binding:"required,max=100"`
	AwayTeam  string     `json:"away_team" binding:"required,max=100"`
	Outcome   string     `json:"outcome" binding:"required,oneof=home draw away"`
	BackOdds  money.Odds `json:"back_odds"`
	LayOdds   money.Odds `json:"lay_odds"`
	Bookmaker string     `json:"bookmaker" binding:"required,max=100"`
	Exchange  string     `json:"exchange" binding:"max=100"`
	// Commission defaults to 5% when omitted.
	Commission *money.Rate `json:"commission"`
	MinOdds    *money.Odds `json:"min_odds_required"`
}

func (r matchRequest) match() instructions.Match {
	return instructions.Match{HomeTeam: r.HomeTeam, AwayTeam: r.AwayTeam, Selection: r.Outcome}
}

func (r matchRequest) exchange() string {
	if r.Exchange == "" {
		return instructions.DefaultExchange
	}
	return r.Exchange
}

func (r matchRequest) commission() money.Rate {
	if r.Commission == nil {
		return instructions.DefaultCommission
	}
	return *r.Commission
}

// InstructionRequest asks for the steps of a single bet. For free bets stake
// is the free bet value.
type InstructionRequest struct {
	matchRequest
	Stake     money.Amount `json:"stake"`
	BetType   string       `json:"bet_type" binding:"omitempty,oneof=qualifying free_bet_snr free_bet_sr"`
	OfferName string       `json:"offer_name" binding:"max=255"`
}

// FullOfferInstructionRequest asks for both bets of an offer on one match.
type FullOfferInstructionRequest struct {
	matchRequest
	QualifyingStake money.Amount `json:"qualifying_stake"`
	FreeBetValue    money.Amount `json:"free_bet_value"`
	StakeReturned   bool         `json:"is_stake_returned"`
	OfferName       string       `json:"offer_name" binding:"required,max=255"`
}

// HandleGenerate returns numbered back/lay steps for one bet
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req InstructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	betType := calculator.BetTypeQualifying
	if req.BetType != "" {
		betType = calculator.BetType(req.BetType)
	}

	out, err := h.generator.Generate(instructions.Request{
		Match:      req.match(),
		BetType:    betType,
		Stake:      req.Stake,
		BackOdds:   req.BackOdds,
		LayOdds:    req.LayOdds,
		Commission: req.commission(),
		Bookmaker:  req.Bookmaker,
		Exchange:   req.exchange(),
		OfferName:  req.OfferName,
		MinOdds:    req.MinOdds,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// HandleGenerateFullOffer returns the qualifying and free bet steps of an
// offer and the combined profit
func (h *Handler) HandleGenerateFullOffer(c *gin.Context) {
	var req FullOfferInstructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	out, err := h.generator.FullOffer(instructions.FullOfferRequest{
		Match:           req.match(),
		QualifyingStake: req.QualifyingStake,
		FreeBetValue:    req.FreeBetValue,
		StakeReturned:   req.StakeReturned,
		BackOdds:        req.BackOdds,
		LayOdds:         req.LayOdds,
		Commission:      req.commission(),
		Bookmaker:       req.Bookmaker,
		Exchange:        req.exchange(),
		OfferName:       req.OfferName,
		MinOdds:         req.MinOdds,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}
