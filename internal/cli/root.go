package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/config"
)

var (
	verbose     bool
	databaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "experimenter",
	Short: "Manage experiments and publish their recipes",
	Long: `experimenter manages experiments, their branches and bucket allocations,
drives them through review and launch, and publishes the recipe documents
the delivery service consumes.

Configuration is read from EXPERIMENTER_* environment variables; run
"experimenter config" to list them.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database", "", "Database URL (overrides EXPERIMENTER_DATABASE_URL)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(experimentCmd)
	rootCmd.AddCommand(variantCmd)
	rootCmd.AddCommand(bucketCmd)
	rootCmd.AddCommand(recipeCmd)
	rootCmd.AddCommand(lifecycleCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if databaseURL != "" {
		cfg.DatabaseURL = databaseURL
	}
	if verbose {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
