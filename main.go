package main

import (
	"context"
	"os"

	"matchbet-server/internal/bootstrap"
	"matchbet-server/internal/config"
	"matchbet-server/internal/observability"
	"matchbet-server/internal/server"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := observability.NewLogger()
	ctx := context.Background()

	if os.Getenv("GO_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(ctx, "failed to load configuration", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		logger.Fatal(ctx, "failed to configure logger", err)
	}

	deps, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize dependencies", err)
	}

	srv := server.New(cfg, deps, logger)
	srv.Setup()
	if err := srv.Start(ctx); err != nil {
		deps.Cleanup()
		logger.Fatal(ctx, "failed to start server", err)
	}

	if err := srv.WaitForShutdown(ctx); err != nil {
		logger.Error(ctx, "server shutdown failed", err)
		os.Exit(1)
	}
}
