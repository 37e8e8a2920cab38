package turso_test

import (
	"context"
	"errors"
	"testing"

	"github.com/emiliopalmerini/experimenter/internal/adapters/turso"
	"github.com/emiliopalmerini/experimenter/internal/ports"
)

func TestBucketRepository_ConsecutiveRanges(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewBucketRepository(db)
	ctx := context.Background()

	first := seedExperiment(t, exps, "first")
	second := seedExperiment(t, exps, "second")

	r1, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "normandy-slug", ExperimentID: first.ID, Count: 100})
	if err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}
	r2, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "normandy-slug", ExperimentID: second.ID, Count: 250})
	if err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}

	if r1.Start != 0 || r1.Count != 100 || r1.End() != 99 {
		t.Errorf("unexpected first range: start=%d count=%d", r1.Start, r1.Count)
	}
	if r2.Start != 100 || r2.End() != 349 {
		t.Errorf("unexpected second range: start=%d end=%d", r2.Start, r2.End())
	}
	if r1.Namespace.Instance != 1 || r1.Namespace.Total != 10000 || r1.Namespace.RandomizationUnit != "normandy_id" {
		t.Errorf("unexpected namespace: %+v", r1.Namespace)
	}
	if r1.NamespaceID != r2.NamespaceID {
		t.Error("expected both ranges in the same namespace instance")
	}

	got, err := repo.GetByExperiment(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetByExperiment failed: %v", err)
	}
	if got == nil || got.Start != 100 || got.Namespace.Name != "normandy-slug" {
		t.Errorf("unexpected stored range: %+v", got)
	}

	all, err := repo.ListByNamespace(ctx, "normandy-slug")
	if err != nil {
		t.Fatalf("ListByNamespace failed: %v", err)
	}
	if len(all) != 2 || all[0].ExperimentID != first.ID {
		t.Errorf("unexpected namespace listing: %d ranges", len(all))
	}
}

func TestBucketRepository_Idempotent(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewBucketRepository(db)
	ctx := context.Background()
	exp := seedExperiment(t, exps, "same")

	r1, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "ns", ExperimentID: exp.ID, Count: 100})
	if err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}
	r2, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "ns", ExperimentID: exp.ID, Count: 500})
	if err != nil {
		t.Fatalf("second RequestNamespaceBuckets failed: %v", err)
	}
	if r1.ID != r2.ID || r2.Count != 100 {
		t.Errorf("expected the original range back, got id=%s count=%d", r2.ID, r2.Count)
	}
}

func TestBucketRepository_RollsOverToNewInstance(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewBucketRepository(db)
	ctx := context.Background()

	big := seedExperiment(t, exps, "big")
	next := seedExperiment(t, exps, "next")

	if _, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "full", ExperimentID: big.ID, Count: 9950}); err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}
	r, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "full", ExperimentID: next.ID, Count: 100})
	if err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}
	if r.Namespace.Instance != 2 || r.Start != 0 {
		t.Errorf("expected start 0 in instance 2, got start=%d instance=%d", r.Start, r.Namespace.Instance)
	}
}

func TestBucketRepository_InvalidCount(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewBucketRepository(db)
	ctx := context.Background()
	exp := seedExperiment(t, exps, "invalid")

	for _, count := range []int{0, -1, 10001} {
		_, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "ns", ExperimentID: exp.ID, Count: count})
		if !errors.Is(err, ports.ErrInvalidBucketCount) {
			t.Errorf("count %d: expected ErrInvalidBucketCount, got %v", count, err)
		}
	}

	got, err := repo.GetByExperiment(ctx, exp.ID)
	if err != nil {
		t.Fatalf("GetByExperiment failed: %v", err)
	}
	if got != nil {
		t.Errorf("rejected requests must not allocate, got %+v", got)
	}
}

func TestBucketRepository_NamespaceFollowsRequestedConfig(t *testing.T) {
	db := testDB(t)
	exps := turso.NewExperimentRepository(db)
	repo := turso.NewBucketRepository(db)
	ctx := context.Background()

	first := seedExperiment(t, exps, "client-first")
	second := seedExperiment(t, exps, "client-second")
	legacy := seedExperiment(t, exps, "legacy")

	r1, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{
		Namespace: "shared", ExperimentID: first.ID, Count: 10, Total: 1000, RandomizationUnit: "client_id",
	})
	if err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}
	if r1.Namespace.Total != 1000 || r1.Namespace.RandomizationUnit != "client_id" {
		t.Errorf("expected the requested namespace config, got %+v", r1.Namespace)
	}

	r2, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{
		Namespace: "shared", ExperimentID: second.ID, Count: 10, Total: 1000, RandomizationUnit: "client_id",
	})
	if err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}
	if r2.NamespaceID != r1.NamespaceID || r2.Start != 10 {
		t.Errorf("expected the same instance at start 10, got instance %d start %d", r2.Namespace.Instance, r2.Start)
	}

	r3, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{Namespace: "shared", ExperimentID: legacy.ID, Count: 10})
	if err != nil {
		t.Fatalf("RequestNamespaceBuckets failed: %v", err)
	}
	if r3.Namespace.Instance != 2 || r3.Start != 0 || r3.Namespace.RandomizationUnit != "normandy_id" || r3.Namespace.Total != 10000 {
		t.Errorf("expected a new default instance, got start %d namespace %+v", r3.Start, r3.Namespace)
	}

	oversized := seedExperiment(t, exps, "oversized")
	if _, err := repo.RequestNamespaceBuckets(ctx, ports.BucketRequest{
		Namespace: "small", ExperimentID: oversized.ID, Count: 2000, Total: 1000,
	}); !errors.Is(err, ports.ErrInvalidBucketCount) {
		t.Errorf("expected ErrInvalidBucketCount above the namespace total, got %v", err)
	}
}
