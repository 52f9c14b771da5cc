package handler

import (
	"net/http"
	"time"

	"matchbet-server/internal/apierrors"
	"matchbet-server/internal/calculator"
	"matchbet-server/internal/money"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/progress/processor"
	"matchbet-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	processor processor.ProgressProcessor
	logger    *observability.Logger
}

func New(processor processor.ProgressProcessor, logger *observability.Logger) Handler {
	return Handler{
		processor: processor,
		logger:    logger,
	}
}

// SignupRequest confirms a signup step
type SignupRequest struct {
	Step string `json:"step" binding:"required,oneof=started completed"`
}

// BetRequest is a qualifying or free bet placed for an offer. bet_id is
// chosen by the client and makes retries idempotent.
type BetRequest struct {
	BetID      uuid.UUID     `json:"bet_id" binding:"required"`
	Bookmaker  *string       `json:"bookmaker,omitempty" binding:"omitempty,max=100"`
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

// OutcomeRequest settles the linked bet
type OutcomeRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=back_won lay_won"`
}

// FreeBetReceivedRequest carries the credited free bet value
type FreeBetReceivedRequest struct {
	Value money.Amount `json:"value"`
}

// ReasonRequest closes an offer. The reason is required for fail only.
type ReasonRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// CorrectStageRequest is an administrative stage override
type CorrectStageRequest struct {
	Stage  string `json:"stage" binding:"required"`
	Reason string `json:"reason" binding:"required,max=500"`
}

// command is the shape shared by every per-offer command
type command func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error)

// handle resolves the caller and offer, runs fn and writes the record
func (h *Handler) handle(c *gin.Context, status int, fn command) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	offerID, ok := h.getOfferID(c)
	if !ok {
		return
	}
	c.Request = c.Request.WithContext(observability.WithFields(c.Request.Context(),
		observability.Field{Key: "user_id", Value: userID.String()},
		observability.Field{Key: "offer_id", Value: offerID.String()},
	))

	progress, err := fn(c, userID, offerID)
	if err != nil {
		if !c.Writer.Written() {
			apierrors.RespondWithError(c, err)
		}
		return
	}

	c.JSON(status, progress)
}

// bind writes the validation response itself; handle sees the written
// response and does not respond again.
func bind(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return err
	}
	return nil
}

// HandleDiscoverOffer records an offer as seen
func (h *Handler) HandleDiscoverOffer(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		return h.processor.DiscoverOffer(c.Request.Context(), userID, offerID)
	})
}

// HandleStartOffer selects an offer to work on
func (h *Handler) HandleStartOffer(c *gin.Context) {
	h.handle(c, http.StatusCreated, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		return h.processor.StartOffer(c.Request.Context(), userID, offerID)
	})
}

func (h *Handler) HandleConfirmSignup(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req SignupRequest
		if err := bind(c, &req); err != nil {
			return store.UserOfferProgress{}, err
		}
		return h.processor.ConfirmSignup(c.Request.Context(), userID, offerID, processor.SignupStep(req.Step))
	})
}

func (h *Handler) HandleStartQualifying(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		return h.processor.StartQualifying(c.Request.Context(), userID, offerID)
	})
}

func (h *Handler) HandleRecordQualifyingBet(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req BetRequest
		if err := bind(c, &req); err != nil {
			return store.UserOfferProgress{}, err
		}
		return h.processor.RecordQualifyingBet(c.Request.Context(), userID, offerID, req.input())
	})
}

func (h *Handler) HandleConfirmQualifyingOutcome(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req OutcomeRequest
		if err := bind(c, &req); err != nil {
			return store.UserOfferProgress{}, err
		}
		return h.processor.ConfirmQualifyingOutcome(c.Request.Context(), userID, offerID, calculator.Outcome(req.Outcome))
	})
}

func (h *Handler) HandleConfirmFreeBetReceived(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req FreeBetReceivedRequest
		if err := bind(c, &req); err != nil {
			return store.UserOfferProgress{}, err
		}
		return h.processor.ConfirmFreeBetReceived(c.Request.Context(), userID, offerID, req.Value)
	})
}

func (h *Handler) HandleRecordFreeBet(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req BetRequest
		if err := bind(c, &req); err != nil {
			return store.UserOfferProgress{}, err
		}
		return h.processor.RecordFreeBet(c.Request.Context(), userID, offerID, req.input())
	})
}

func (h *Handler) HandleConfirmFreeBetOutcome(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req OutcomeRequest
		if err := bind(c, &req); err != nil {
			return store.UserOfferProgress{}, err
		}
		return h.processor.ConfirmFreeBetOutcome(c.Request.Context(), userID, offerID, calculator.Outcome(req.Outcome))
	})
}

func (h *Handler) HandleComplete(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		return h.processor.Complete(c.Request.Context(), userID, offerID)
	})
}

// HandleSkip abandons an offer. The body is optional.
func (h *Handler) HandleSkip(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req ReasonRequest
		if c.Request.ContentLength != 0 {
			if err := bind(c, &req); err != nil {
				return store.UserOfferProgress{}, err
			}
		}
		return h.processor.Skip(c.Request.Context(), userID, offerID, req.Reason)
	})
}

func (h *Handler) HandleMarkExpired(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		return h.processor.MarkExpired(c.Request.Context(), userID, offerID)
	})
}

func (h *Handler) HandleMarkFailed(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		var req ReasonRequest
		if err := bind(c, &req); err != nil {
			return store.UserOfferProgress{}, err
		}
		return h.processor.MarkFailed(c.Request.Context(), userID, offerID, req.Reason)
	})
}

// HandleGetOfferProgress returns the active record for an offer, or the latest closed one
func (h *Handler) HandleGetOfferProgress(c *gin.Context) {
	h.handle(c, http.StatusOK, func(c *gin.Context, userID, offerID uuid.UUID) (store.UserOfferProgress, error) {
		return h.processor.GetProgress(c.Request.Context(), userID, offerID)
	})
}

// HandleListProgress lists the user's records, optionally by stage
func (h *Handler) HandleListProgress(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	var stage *string
	if s := c.Query("stage"); s != "" {
		stage = &s
	}

	records, err := h.processor.ListProgress(ctx, userID, stage)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": records})
}

// HandleActiveOffers returns the dashboard view of in-flight offers
func (h *Handler) HandleActiveOffers(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	active, err := h.processor.ActiveOffers(ctx, userID)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, active)
}

// HandleCorrectStage overrides a record's stage. Admin only.
func (h *Handler) HandleCorrectStage(c *gin.Context) {
	ctx := c.Request.Context()

	progressID, err := uuid.Parse(c.Param("progress_id"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid progress ID format"))
		return
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "progress_id", Value: progressID.String()})

	var req CorrectStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.RespondWithValidationError(c, err)
		return
	}

	progress, err := h.processor.CorrectStage(ctx, progressID, req.Stage, req.Reason)
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	h.logger.Info(ctx, "stage corrected by admin")
	c.JSON(http.StatusOK, progress)
}

func (r BetRequest) input() processor.BetInput {
	return processor.BetInput{
		BetID:      r.BetID,
		Bookmaker:  r.Bookmaker,
		Exchange:   r.Exchange,
		EventName:  r.EventName,
		Selection:  r.Selection,
		Market:     r.Market,
		BackOdds:   r.BackOdds,
		BackStake:  r.BackStake,
		LayOdds:    r.LayOdds,
		LayStake:   r.LayStake,
		Commission: r.Commission,
		EventDate:  r.EventDate,
		Notes:      r.Notes,
	}
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

func (h *Handler) getOfferID(c *gin.Context) (uuid.UUID, bool) {
	offerID, err := uuid.Parse(c.Param("offer_id"))
	if err != nil {
		apierrors.RespondWithError(c, apierrors.BadRequest(apierrors.CodeInvalidInput, "Invalid offer ID format"))
		return uuid.Nil, false
	}
	return offerID, true
}
