package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("EXPERIMENTER_DATABASE_URL", "file:test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if filepath.Base(cfg.SnapshotPath) != "recipes.db" {
		t.Errorf("expected default snapshot path, got %q", cfg.SnapshotPath)
	}
	if cfg.OTel.Enabled {
		t.Error("OTEL should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EXPERIMENTER_DATABASE_URL", "libsql://db.example.com")
	t.Setenv("EXPERIMENTER_AUTH_TOKEN", "secret")
	t.Setenv("EXPERIMENTER_ADDR", ":9090")
	t.Setenv("EXPERIMENTER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("EXPERIMENTER_SNAPSHOT_PATH", "/tmp/snapshots.db")
	t.Setenv("EXPERIMENTER_DEBUG", "true")
	t.Setenv("EXPERIMENTER_OTEL_ENABLED", "true")
	t.Setenv("EXPERIMENTER_OTEL_ENDPOINT", "localhost:4317")
	t.Setenv("EXPERIMENTER_OTEL_INSECURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AuthToken != "secret" || cfg.Addr != ":9090" || cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.SnapshotPath != "/tmp/snapshots.db" || !cfg.Debug {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.OTel.Enabled || cfg.OTel.Endpoint != "localhost:4317" || !cfg.OTel.Insecure {
		t.Errorf("unexpected OTEL config: %+v", cfg.OTel)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("EXPERIMENTER_SHUTDOWN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{ShutdownTimeout: time.Second}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "EXPERIMENTER_DATABASE_URL") {
		t.Errorf("expected missing database error, got %v", err)
	}

	cfg.DatabaseURL = "file:x.db"
	cfg.ShutdownTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero shutdown timeout")
	}
}
