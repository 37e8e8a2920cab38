package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/adapters/turso"
	"github.com/emiliopalmerini/experimenter/internal/logging"
	"github.com/emiliopalmerini/experimenter/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  experimenter migrate      # Run all pending migrations
  experimenter migrate 2    # Migrate to version 2
  experimenter migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: withMigrator(runMigrate),
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	Args:  cobra.NoArgs,
	RunE:  withMigrator(runMigrateStatus),
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
}

// withMigrator opens only the database; migrations must run before the
// rest of the application can start.
func withMigrator(run func(cmd *cobra.Command, m *migrate.Migrator, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Debug)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		db, err := turso.Open(cmd.Context(), cfg.DatabaseURL, cfg.AuthToken)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		return run(cmd, migrate.New(db, logger.Named("migrate")), args)
	}
}

func runMigrate(cmd *cobra.Command, m *migrate.Migrator, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		version, err := m.Up(ctx)
		if err != nil {
			return err
		}
		printf(out, "Database at version %d\n", version)
		return nil
	}

	target, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version number: %s", args[0])
	}
	if err := m.To(ctx, target); err != nil {
		return err
	}
	printf(out, "Migrated to version %d\n", target)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, m *migrate.Migrator, _ []string) error {
	statuses, current, err := m.Status(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printf(out, "Current version: %d\n\n", current)
	w := newTable(out)
	printf(w, "VERSION\tNAME\tAPPLIED\n")
	for _, s := range statuses {
		printf(w, "%03d\t%s\t%t\n", s.Version, s.Name, s.Applied)
	}
	return w.Flush()
}
