package cli

import (
	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/experimenter/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  `List the supported EXPERIMENTER_* environment variables and their defaults.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return config.Usage()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w := newTable(out)
	printf(w, "database\t%s\n", redact(cfg.DatabaseURL))
	printf(w, "auth token\t%s\n", redact(cfg.AuthToken))
	printf(w, "addr\t%s\n", cfg.Addr)
	printf(w, "shutdown timeout\t%s\n", cfg.ShutdownTimeout)
	printf(w, "snapshots\t%s\n", cfg.SnapshotPath)
	printf(w, "presets\t%s\n", orDash(cfg.PresetsPath))
	printf(w, "debug\t%t\n", cfg.Debug)
	printf(w, "otel\t%t %s\n", cfg.OTel.Enabled, orDash(cfg.OTel.Endpoint))
	return w.Flush()
}

// redact hides everything after the scheme of remote URLs and tokens.
func redact(s string) string {
	switch {
	case s == "":
		return "-"
	case len(s) > 5 && s[:5] == "file:":
		return s
	case len(s) > 8:
		return s[:8] + "..."
	}
	return "***"
}
