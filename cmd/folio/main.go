package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/folio/adapter/cli"
	"github.com/felixgeelhaar/folio/adapter/cli/capability"
	"github.com/felixgeelhaar/folio/adapter/cli/mcp"
	"github.com/felixgeelhaar/folio/adapter/cli/page"
	"github.com/felixgeelhaar/folio/adapter/cli/templates"
	"github.com/felixgeelhaar/folio/internal/app"
	"github.com/felixgeelhaar/folio/pkg/config"
	"github.com/felixgeelhaar/folio/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{AppEnv: "development"}
	}

	logger := observability.LoggerFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// Template commands still work without a database.
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()
		cli.SetApp(cli.NewApp(container))
	}

	cli.AddCommand(capability.Cmd)
	cli.AddCommand(templates.Cmd)
	cli.AddCommand(page.Cmd)
	cli.AddCommand(page.SectionCmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute(ctx)
}
