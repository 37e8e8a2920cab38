package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/experimenter/internal/cli"
	"github.com/emiliopalmerini/experimenter/internal/config"
	"github.com/emiliopalmerini/experimenter/internal/logging"
	"github.com/emiliopalmerini/experimenter/internal/migrate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.OpenAppContext(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Warn("failed to close resources", zap.Error(err))
		}
	}()

	if _, err := migrate.New(app.DB, logger.Named("migrate")).Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return cli.NewWebServer(app, cfg.Addr).Start(ctx)
}
