package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/experimenter/internal/config"
	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/migrate"
)

// testApp opens an AppContext over a migrated database and a recipe store
// in a temp directory.
func testApp(t *testing.T) *AppContext {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		DatabaseURL:     "file:" + filepath.Join(dir, "experimenter.db"),
		Addr:            ":0",
		ShutdownTimeout: time.Second,
		SnapshotPath:    filepath.Join(dir, "recipes.db"),
	}

	ctx := context.Background()
	app, err := OpenAppContext(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	if err := migrate.RunAll(ctx, app.DB); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return app
}

// testCmd returns a command whose output is captured.
func testCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

// resetFlags restores the package flag variables after a test changes them.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		expSlug, expNormandySlug, expDescription, expName = "", "", "", ""
		expEnrollment = domain.DefaultProposedEnrollment
		expType, expRapidType, expMinVersion = "pref", "", ""
		expAudience, expFeatures, expStartDate, expOwner = "", nil, "", ""
		expSort, expDesc = "", false
		variantName, variantDescription, variantValue = "", "", ""
		variantRatio, variantControl = 0, false
		bucketCount, bucketDesign = 0, "empty_aa"
		lifecycleBy, lifecycleMessage = "", ""
	})
}
