package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/folio/adapter/cli"
	folioMCP "github.com/felixgeelhaar/folio/adapter/mcp"
	"github.com/felixgeelhaar/folio/internal/app"
	"github.com/felixgeelhaar/folio/pkg/config"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		observability.LoggerFor("development", "info", "text").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.LoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.Start(ctx); err != nil {
		logger.Error("failed to start event relay", "error", err)
		os.Exit(1)
	}

	deps := cli.NewApp(container).MCPDependencies()
	if err := folioMCP.Serve(ctx, cfg, deps, cli.Version, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
