package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/catalog/processor"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor processor.CatalogProcessor
	logger    *observability.Logger
}

func New(processor processor.CatalogProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// CreateOfferRequest represents a catalog entry in HTTP requests
type CreateOfferRequest struct {
	Bookmaker             string        `json:"bookmaker" binding:"required,max=100"`
	OfferName             string        `json:"offer_name" binding:"required,max=255"`
	OfferType             string        `json:"offer_type" binding:"required,oneof=welcome reload free_bet risk_free enhanced_odds cashback other"`
	OfferValue            money.Amount  `json:"offer_value"`
	RequiredStake         money.Amount  `json:"required_stake"`
	MinOdds               *money.Odds   `json:"min_odds,omitempty"`
	MaxStake              *money.Amount `json:"max_stake,omitempty"`
	WageringRequirement   float64       `json:"wagering_requirement" binding:"gte=0"`
	IsStakeReturned       bool          `json:"is_stake_returned"`
	QualifyingBetRequired *bool         `json:"qualifying_bet_required,omitempty"`
	Terms                 *string       `json:"terms,omitempty"`
	ExpiryDays            *int          `json:"expiry_days,omitempty"`
	EligibleSports        []string      `json:"eligible_sports,omitempty"`
	EligibleMarkets       []string      `json:"eligible_markets,omitempty"`
	SignupURL             *string       `json:"signup_url,omitempty" binding:"omitempty,url"`
	ReferralURL           *string       `json:"referral_url,omitempty" binding:"omitempty,url"`
	OddscheckerURL        *string       `json:"oddschecker_url,omitempty" binding:"omitempty,url"`
	Difficulty            string        `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	ExpectedProfit        *money.Amount `json:"expected_profit,omitempty"`
	EstimatedTimeMinutes  int           `json:"estimated_time_minutes" binding:"gte=0"`
	IsActive              *bool         `json:"is_active,omitempty"`
	PriorityRank          int           `json:"priority_rank"`
}

// PreferencesRequest replaces a user's bookmaker whitelist and blacklist
type PreferencesRequest struct {
	Whitelist []string `json:"whitelist" binding:"max=200,dive,max=100"`
	Blacklist []string `json:"blacklist" binding:"max=200,dive,max=100"`
}

// HandleListOffers returns the ranked catalog for the calling user
func (h *Handler) HandleListOffers(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	req := processor.ListOffersRequest{}
	if offerType := c.Query("offer_type"); offerType != "" {
		req.OfferType = &offerType
	}
	if bookmaker := c.Query("bookmaker"); bookmaker != "" {
		req.Bookmaker = &bookmaker
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		req.Difficulty = &difficulty
	}
	var err error
	if req.IncludeInactive, err = boolQuery(c, "include_inactive"); err != nil {
		apierrors.RespondWithError(c, err)
		return
	}
	if req.ExcludeStarted, err = boolQuery(c, "exclude_started"); err != nil {
		apierrors.RespondWithError(c, err)
		return
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

	offers, err := h.processor.ListOffers(ctx, userID, req)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"offers":      offers,
		"total_count": len(offers),
	})
}

func (h *Handler) HandleGetOffer(c *gin.Context) {
	ctx := c.Request.Context()

	offerID, err := uuid.Parse(c.Param("offer_id"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid offer ID format"))
		return
	}

	offer, err := h.processor.GetOffer(ctx, offerID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// HandleCreateOffer adds an entry to the catalog
func (h *Handler) HandleCreateOffer(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	qualifyingRequired := true
	if req.QualifyingBetRequired != nil {
		qualifyingRequired = *req.QualifyingBetRequired
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	offer, err := h.processor.CreateOffer(ctx, processor.CreateOfferRequest{
		Bookmaker:             req.Bookmaker,
		OfferName:             req.OfferName,
		OfferType:             req.OfferType,
		OfferValue:            req.OfferValue,
		RequiredStake:         req.RequiredStake,
		MinOdds:               req.MinOdds,
		MaxStake:              req.MaxStake,
		WageringRequirement:   req.WageringRequirement,
		IsStakeReturned:       req.IsStakeReturned,
		QualifyingBetRequired: qualifyingRequired,
		Terms:                 req.Terms,
		ExpiryDays:            req.ExpiryDays,
		EligibleSports:        req.EligibleSports,
		EligibleMarkets:       req.EligibleMarkets,
		SignupURL:             req.SignupURL,
		ReferralURL:           req.ReferralURL,
		OddscheckerURL:        req.OddscheckerURL,
		Difficulty:            req.Difficulty,
		ExpectedProfit:        req.ExpectedProfit,
		EstimatedTimeMinutes:  req.EstimatedTimeMinutes,
		IsActive:              active,
		PriorityRank:          req.PriorityRank,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

func (h *Handler) HandleGetPreferences(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	prefs, err := h.processor.GetPreferences(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
}

// HandleSetPreferences replaces both bookmaker lists
func (h *Handler) HandleSetPreferences(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	prefs, err := h.processor.SetPreferences(ctx, userID, processor.Preferences{
		Whitelist: req.Whitelist,
		Blacklist: req.Blacklist,
	})
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, prefs)
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

func boolQuery(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierrors.BadRequest(apierrors.CodeInvalidInput, name+" must be true or false")
	}
	return v, nil
}
