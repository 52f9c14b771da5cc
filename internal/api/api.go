package api

import (
	"net/http"

	aggregatorHandler "matchbet-server/internal/aggregator/handler"
	authHandler "matchbet-server/internal/auth/handler"
	betsHandler "matchbet-server/internal/bets/handler"
	calculatorHandler "matchbet-server/internal/calculator/handler"
	catalogHandler "matchbet-server/internal/catalog/handler"
	instructionsHandler "matchbet-server/internal/instructions/handler"
	jobsHandler "matchbet-server/internal/jobs/handler"
	leaderboardHandler "matchbet-server/internal/leaderboard/handler"
	progressHandler "matchbet-server/internal/progress/handler"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the routes dispatch to
type Handlers struct {
	Auth         authHandler.Handler
	Calculator   calculatorHandler.Handler
	Instructions instructionsHandler.Handler
	Catalog      catalogHandler.Handler
	Progress     progressHandler.Handler
	Bets         betsHandler.Handler
	Summary      aggregatorHandler.Handler
	Leaderboard  leaderboardHandler.Handler
	Jobs         jobsHandler.Handler

	// RateLimit guards state changing routes
	RateLimit gin.HandlerFunc
	// Metrics serves /metrics
	Metrics http.Handler
}

type API struct {
	router *gin.RouterGroup
	h      Handlers
}

func New(router *gin.RouterGroup, handlers Handlers) API {
	return API{
		router: router,
		h:      handlers,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	if a.h.Metrics != nil {
		a.router.GET("/metrics", gin.WrapH(a.h.Metrics))
	}

	v1 := a.router.Group("/api/v1")

	// Calculator is public
	calculatorGroup := v1.Group("/calculator")
	{
		calculatorGroup.POST("", a.h.Calculator.HandleCalculate)
		calculatorGroup.POST("/batch", a.h.Calculator.HandleCalculateBatch)
		calculatorGroup.POST("/instructions", a.h.Instructions.HandleGenerate)
		calculatorGroup.POST("/instructions/full-offer", a.h.Instructions.HandleGenerateFullOffer)
	}

	protected := v1.Group("", a.h.Auth.HandleJWTMiddleware)
	commands := protected.Group("")
	if a.h.RateLimit != nil {
		commands.Use(a.h.RateLimit)
	}

	// Offer catalog and bookmaker preferences
	protected.GET("/offers", a.h.Catalog.HandleListOffers)
	protected.GET("/offers/:offer_id", a.h.Catalog.HandleGetOffer)
	protected.GET("/preferences/bookmakers", a.h.Catalog.HandleGetPreferences)
	commands.PUT("/preferences/bookmakers", a.h.Catalog.HandleSetPreferences)

	// Offer progress
	protected.GET("/offers/:offer_id/progress", a.h.Progress.HandleGetOfferProgress)
	protected.GET("/progress", a.h.Progress.HandleListProgress)
	protected.GET("/progress/active", a.h.Progress.HandleActiveOffers)

	offerCommands := commands.Group("/offers/:offer_id")
	{
		offerCommands.POST("/discover", a.h.Progress.HandleDiscoverOffer)
		offerCommands.POST("/start", a.h.Progress.HandleStartOffer)
		offerCommands.POST("/signup", a.h.Progress.HandleConfirmSignup)
		offerCommands.POST("/qualifying/start", a.h.Progress.HandleStartQualifying)
		offerCommands.POST("/qualifying/bet", a.h.Progress.HandleRecordQualifyingBet)
		offerCommands.POST("/qualifying/outcome", a.h.Progress.HandleConfirmQualifyingOutcome)
		offerCommands.POST("/free-bet/received", a.h.Progress.HandleConfirmFreeBetReceived)
		offerCommands.POST("/free-bet/bet", a.h.Progress.HandleRecordFreeBet)
		offerCommands.POST("/free-bet/outcome", a.h.Progress.HandleConfirmFreeBetOutcome)
		offerCommands.POST("/complete", a.h.Progress.HandleComplete)
		offerCommands.POST("/skip", a.h.Progress.HandleSkip)
		offerCommands.POST("/expire", a.h.Progress.HandleMarkExpired)
		offerCommands.POST("/fail", a.h.Progress.HandleMarkFailed)
	}

	// Bet log
	protected.GET("/bets", a.h.Bets.HandleListBets)
	protected.GET("/bets/stats", a.h.Bets.HandleGetStats)
	protected.GET("/bets/:bet_id", a.h.Bets.HandleGetBet)
	commands.POST("/bets", a.h.Bets.HandleLogBet)
	commands.PATCH("/bets/:bet_id", a.h.Bets.HandleUpdateBet)
	commands.DELETE("/bets/:bet_id", a.h.Bets.HandleDeleteBet)
	commands.POST("/bets/:bet_id/settle", a.h.Bets.HandleSettleBet)

	// Profit
	protected.GET("/summary", a.h.Summary.HandleGetSummary)
	protected.GET("/leaderboard", a.h.Leaderboard.HandleGetLeaderboard)

	// Admin
	admin := protected.Group("/admin", a.h.Auth.HandleRequireAdmin)
	{
		admin.POST("/offers", a.h.Catalog.HandleCreateOffer)
		admin.POST("/progress/:progress_id/stage", a.h.Progress.HandleCorrectStage)
		admin.POST("/jobs/expiry-sweep", a.h.Jobs.HandleTriggerExpirySweep)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
}
