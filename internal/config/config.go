// Package config loads runtime settings from EXPERIMENTER_* environment
// variables. Command-line flags override them.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/emiliopalmerini/experimenter/internal/adapters/otel"
	"github.com/emiliopalmerini/experimenter/internal/util"
)

const prefix = "EXPERIMENTER"

type Config struct {
	// DatabaseURL is required, but may come from the --database flag, so
	// Validate checks it after flags are applied.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AuthToken   string `envconfig:"AUTH_TOKEN"`

	Addr            string        `envconfig:"ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// SnapshotPath is the bbolt file holding published recipes.
	SnapshotPath string `envconfig:"SNAPSHOT_PATH"`
	// PresetsPath replaces the embedded presets catalog when set.
	PresetsPath string `envconfig:"PRESETS_PATH"`

	Debug bool `envconfig:"DEBUG"`

	OTel otel.Config `envconfig:"OTEL"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.SnapshotPath == "" {
		path, err := util.DefaultSnapshotPath()
		if err != nil {
			return nil, err
		}
		cfg.SnapshotPath = path
	}
	return &cfg, nil
}

// Validate checks settings that flags may still fill in after Load.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required: set %s_DATABASE_URL or --database", prefix)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

// Usage prints the supported environment variables.
func Usage() error {
	var cfg Config
	return envconfig.Usage(prefix, &cfg)
}
