package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	apisetup "matchbet-server/internal/api"
	"matchbet-server/internal/bootstrap"
	"matchbet-server/internal/config"
	"matchbet-server/internal/observability"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	deps       *bootstrap.Dependencies
	config     *config.Config
	logger     *observability.Logger

	stopBackground context.CancelFunc
	schedulerDone  chan struct{}
}

// New creates a new Server instance
func New(cfg *config.Config, deps *bootstrap.Dependencies, logger *observability.Logger) *Server {
	return &Server{
		config: cfg,
		deps:   deps,
		logger: logger,
	}
}

// Setup configures the HTTP router with middleware and routes
func (s *Server) Setup() {
	s.router = gin.New()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.AllowOrigins = s.config.Server.AllowedOrigins

	// Apply middleware
	s.router.Use(cors.New(corsConfig))
	s.router.Use(observability.Middleware(s.logger))
	s.router.Use(s.deps.Metrics.GinMiddleware())

	// Register routes
	rootRouter := s.router.Group("/")
	api := apisetup.New(rootRouter, apisetup.Handlers{
		Auth:         s.deps.AuthHandler,
		Calculator:   s.deps.CalculatorHandler,
		Instructions: s.deps.InstructionsHandler,
		Catalog:      s.deps.CatalogHandler,
		Progress:     s.deps.ProgressHandler,
		Bets:         s.deps.BetsHandler,
		Summary:      s.deps.SummaryHandler,
		Leaderboard:  s.deps.LeaderboardHandler,
		Jobs:         s.deps.JobsHandler,
		RateLimit:    s.deps.RateLimiter.Middleware(),
		Metrics:      s.deps.Metrics.Handler(),
	})
	api.RegisterRoutes()
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests and starts background workers
func (s *Server) Start(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	s.stopBackground = cancel

	// In-process leaderboard workers (only when Kafka is not configured)
	if s.deps.EventPool != nil {
		if err := s.deps.EventPool.Start(bgCtx); err != nil {
			cancel()
			return fmt.Errorf("failed to start event worker pool: %w", err)
		}
	}

	// In-process expiry sweep (only when Redis is not configured)
	if s.deps.Scheduler != nil {
		s.schedulerDone = make(chan struct{})
		go func() {
			defer close(s.schedulerDone)
			if err := s.deps.Scheduler.Start(bgCtx); err != nil {
				s.logger.Error(ctx, "scheduler stopped with error", err)
			}
		}()
	}

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run the server in a goroutine so that it doesn't block
	go func() {
		s.logger.Info(ctx, fmt.Sprintf("Server starting on port %d", s.config.Server.Port))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "server failed to start", err)
			os.Exit(1)
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received, then gracefully shuts down
func (s *Server) WaitForShutdown(ctx context.Context) error {
	// Set up a channel to listen for OS signals for shutdown
	quit := make(chan os.Signal, 1)
	// kill (no param) default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received
	<-quit
	s.logger.Info(ctx, "Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Scheduler.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first so no new events are published
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Drain in-flight leaderboard updates, then stop the scheduler
	if s.deps.EventPool != nil {
		if err := s.deps.EventPool.Drain(shutdownCtx); err != nil {
			s.logger.Error(ctx, "event worker pool did not drain cleanly", err)
		}
		s.deps.EventPool.Stop()
	}
	s.stopBackground()
	if s.schedulerDone != nil {
		select {
		case <-s.schedulerDone:
		case <-shutdownCtx.Done():
			s.logger.Warn(ctx, "scheduler did not stop before the shutdown timeout")
		}
	}

	// Cleanup dependencies
	s.deps.Cleanup()

	s.logger.Info(ctx, "Server exited gracefully")
	return nil
}
