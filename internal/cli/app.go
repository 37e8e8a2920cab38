package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/experimenter/internal/adapters/bolt"
	"github.com/emiliopalmerini/experimenter/internal/adapters/otel"
	"github.com/emiliopalmerini/experimenter/internal/adapters/turso"
	"github.com/emiliopalmerini/experimenter/internal/config"
	"github.com/emiliopalmerini/experimenter/internal/experiments"
	"github.com/emiliopalmerini/experimenter/internal/lifecycle"
	"github.com/emiliopalmerini/experimenter/internal/logging"
	"github.com/emiliopalmerini/experimenter/internal/ports"
	"github.com/emiliopalmerini/experimenter/internal/presets"
	"github.com/emiliopalmerini/experimenter/internal/publish"
)

// AppContext holds all shared dependencies for CLI commands.
type AppContext struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sql.DB
	Repos   *turso.Repositories
	Recipes ports.RecipeStore
	Catalog *presets.Catalog
	Metrics ports.MetricsExporter

	Experiments *experiments.Service
	Lifecycle   *lifecycle.Service
	Publisher   *publish.Publisher

	closers []func(context.Context) error
}

// NewAppContext loads the configuration and opens every dependency.
func NewAppContext(ctx context.Context) (*AppContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, err
	}
	return OpenAppContext(ctx, cfg, logger)
}

// OpenAppContext opens every dependency for an already loaded configuration.
func OpenAppContext(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*AppContext, error) {
	app := &AppContext{Config: cfg, Logger: logger}

	catalog, err := presets.Resolve(cfg.PresetsPath)
	if err != nil {
		return nil, err
	}
	app.Catalog = catalog

	db, err := turso.Open(ctx, cfg.DatabaseURL, cfg.AuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	app.closers = append(app.closers, func(context.Context) error { return db.Close() })

	store, err := bolt.Open(cfg.SnapshotPath)
	if err != nil {
		_ = app.Close(ctx)
		return nil, fmt.Errorf("failed to open recipe store: %w", err)
	}
	app.Recipes = store
	app.closers = append(app.closers, func(context.Context) error { return store.Close() })

	app.Metrics = newMetrics(ctx, cfg.OTel, logger)
	app.closers = append(app.closers, app.Metrics.Close)

	app.Repos = turso.NewRepositories(db)
	app.Experiments = experiments.NewService(app.Repos.Experiments, app.Repos.Variants, app.Repos.Buckets, catalog, logger)
	app.Lifecycle = lifecycle.NewService(app.Repos.Experiments, app.Repos.ChangeLogs, logger)
	app.Publisher = publish.NewPublisher(publish.Deps{
		Experiments: app.Repos.Experiments,
		Variants:    app.Repos.Variants,
		Buckets:     app.Repos.Buckets,
		Store:       store,
		Metrics:     app.Metrics,
		Catalog:     catalog,
		Logger:      logger,
	})
	return app, nil
}

// newMetrics falls back to a no-op exporter when OTEL is disabled or
// unreachable.
func newMetrics(ctx context.Context, cfg otel.Config, logger *zap.Logger) ports.MetricsExporter {
	if !cfg.Enabled {
		return otel.NewNoOpExporter()
	}
	exp, err := otel.NewExporter(ctx, cfg)
	if err != nil {
		logger.Warn("metrics disabled", zap.Error(err))
		return otel.NewNoOpExporter()
	}
	return exp
}

// Close releases all resources held by the AppContext, newest first.
func (a *AppContext) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.Logger.Sync()
	return errors.Join(errs...)
}

// withApp opens the application for one command and closes it afterwards.
func withApp(run func(cmd *cobra.Command, app *AppContext, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := NewAppContext(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(context.Background()); err != nil {
				app.Logger.Warn("failed to close resources", zap.Error(err))
			}
		}()
		return run(cmd, app, args)
	}
}
