package turso_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/experimenter/internal/adapters/turso"
	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := turso.Open(ctx, "file:"+filepath.Join(t.TempDir(), "test.db"), "")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedExperiment(t *testing.T, repo *turso.ExperimentRepository, slug string) *domain.Experiment {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	exp := domain.NewExperiment(uuid.New().String(), slug, "Experiment "+slug, now)
	if err := repo.Create(context.Background(), exp); err != nil {
		t.Fatalf("Failed to create experiment: %v", err)
	}
	return exp
}
