package turso_test

import (
	"context"
	"testing"
	"time"

	"github.com/emiliopalmerini/experimenter/internal/adapters/turso"
	"github.com/emiliopalmerini/experimenter/internal/domain"
)

func TestVariantRepository_ListOrdersBySlugDescending(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewVariantRepository(db)
	ctx := context.Background()
	exp := seedExperiment(t, exps, "branches")

	value := `{"enabled": true}`
	for _, v := range []*domain.Variant{
		{ID: "v-control", Slug: "control", Ratio: 33, IsControl: true},
		{ID: "v-2", Slug: "variant-2", Ratio: 33, Value: &value},
	} {
		v.ExperimentID = exp.ID
		v.CreatedAt = time.Now()
		if err := repo.Create(ctx, v); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := repo.ListByExperiment(ctx, exp.ID)
	if err != nil {
		t.Fatalf("ListByExperiment failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(got))
	}
	if got[0].Slug != "variant-2" || got[1].Slug != "control" {
		t.Errorf("unexpected order: %s, %s", got[0].Slug, got[1].Slug)
	}
	if got[0].Value == nil || *got[0].Value != value {
		t.Errorf("expected value payload, got %v", got[0].Value)
	}
	if got[1].Value != nil || !got[1].IsControl {
		t.Errorf("unexpected control variant: %+v", got[1])
	}
}

func TestVariantRepository_DuplicateSlug(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewVariantRepository(db)
	ctx := context.Background()
	exp := seedExperiment(t, exps, "dup-variants")

	v := &domain.Variant{ID: "a", ExperimentID: exp.ID, Slug: "control", Ratio: 1, CreatedAt: time.Now()}
	if err := repo.Create(ctx, v); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	v.ID = "b"
	if err := repo.Create(ctx, v); err == nil {
		t.Error("expected unique (experiment, slug) violation")
	}

	if err := repo.Delete(ctx, exp.ID, "control"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, _ := repo.ListByExperiment(ctx, exp.ID)
	if len(got) != 0 {
		t.Errorf("expected no variants after delete, got %d", len(got))
	}
}

func TestVariantRepository_CreateRebalanced(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewVariantRepository(db)
	ctx := context.Background()
	exp := seedExperiment(t, exps, "rebalanced")

	control := &domain.Variant{ID: "c", ExperimentID: exp.ID, Slug: "control", Ratio: 100, IsControl: true, CreatedAt: time.Now()}
	if err := repo.Create(ctx, control); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	treatment := &domain.Variant{ID: "t", ExperimentID: exp.ID, Slug: "treatment", Ratio: 50, CreatedAt: time.Now()}
	if err := repo.CreateRebalanced(ctx, treatment, map[string]int{"control": 50}); err != nil {
		t.Fatalf("CreateRebalanced failed: %v", err)
	}

	got, err := repo.ListByExperiment(ctx, exp.ID)
	if err != nil {
		t.Fatalf("ListByExperiment failed: %v", err)
	}
	if len(got) != 2 || got[0].Ratio != 50 || got[1].Ratio != 50 {
		t.Fatalf("expected two branches at 50, got %+v", got)
	}

	// A failed insert leaves the existing ratios untouched.
	dup := &domain.Variant{ID: "d", ExperimentID: exp.ID, Slug: "treatment", Ratio: 33, CreatedAt: time.Now()}
	if err := repo.CreateRebalanced(ctx, dup, map[string]int{"control": 33}); err == nil {
		t.Fatal("expected unique (experiment, slug) violation")
	}
	got, _ = repo.ListByExperiment(ctx, exp.ID)
	for _, v := range got {
		if v.Ratio != 50 {
			t.Errorf("variant %s: expected ratio 50 after rollback, got %d", v.Slug, v.Ratio)
		}
	}
}
