package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/ports"
	"github.com/emiliopalmerini/experimenter/internal/util"
	"github.com/emiliopalmerini/experimenter/sqlc/generated"
)

type BucketRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewBucketRepository(db *sql.DB) *BucketRepository {
	return &BucketRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *BucketRepository) RequestNamespaceBuckets(ctx context.Context, req ports.BucketRequest) (*domain.BucketRange, error) {
	name, experimentID, count := req.Namespace, req.ExperimentID, req.Count
	if name == "" {
		return nil, fmt.Errorf("namespace name is required")
	}
	total, unit := req.Total, req.RandomizationUnit
	if total == 0 {
		total = domain.DefaultBucketTotal
	}
	if unit == "" {
		unit = domain.DefaultRandomizationUnit
	}
	if total < 1 {
		return nil, fmt.Errorf("%w: namespace total %d", ports.ErrInvalidBucketCount, total)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: %d", ports.ErrInvalidBucketCount, count)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := r.queries.WithTx(tx)

	existing, err := q.GetBucketAllocationByExperiment(ctx, experimentID)
	if err == nil {
		return allocationFromRow(sqlc.ListBucketAllocationsByNamespaceRow(existing)), nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get bucket allocation: %w", err)
	}

	now := time.Now().UTC()
	ns, err := q.GetLatestBucketNamespace(ctx, name)
	if err == sql.ErrNoRows {
		ns, err = createNamespace(ctx, q, name, 1, int64(total), unit, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket namespace: %w", err)
	}

	if count > total {
		return nil, fmt.Errorf("%w: %d exceeds namespace total %d", ports.ErrInvalidBucketCount, count, total)
	}

	// An instance configured for another total or unit is never shared.
	var start int64
	rollover := ns.Total != int64(total) || ns.RandomizationUnit != unit
	if !rollover {
		start, err = q.GetNextBucketStart(ctx, ns.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to find next bucket: %w", err)
		}
		rollover = start+int64(count) > ns.Total
	}
	if rollover {
		ns, err = createNamespace(ctx, q, name, ns.Instance+1, int64(total), unit, now)
		if err != nil {
			return nil, fmt.Errorf("failed to create namespace instance: %w", err)
		}
		start = 0
	}

	params := sqlc.CreateBucketRangeParams{
		ID:           uuid.New().String(),
		NamespaceID:  ns.ID,
		ExperimentID: experimentID,
		Start:        start,
		Count:        int64(count),
		CreatedAt:    now.Format(time.RFC3339),
	}
	if err := q.CreateBucketRange(ctx, params); err != nil {
		return nil, fmt.Errorf("failed to create bucket range: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bucket allocation: %w", err)
	}

	return &domain.BucketRange{
		ID:           params.ID,
		NamespaceID:  ns.ID,
		ExperimentID: experimentID,
		Start:        int(start),
		Count:        count,
		CreatedAt:    now,
		Namespace:    namespaceFromRow(ns),
	}, nil
}

func (r *BucketRepository) GetByExperiment(ctx context.Context, experimentID string) (*domain.BucketRange, error) {
	row, err := WithRetry(ctx, readRetries, func() (sqlc.GetBucketAllocationByExperimentRow, error) {
		return r.queries.GetBucketAllocationByExperiment(ctx, experimentID)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bucket allocation: %w", err)
	}
	return allocationFromRow(sqlc.ListBucketAllocationsByNamespaceRow(row)), nil
}

func (r *BucketRepository) ListByNamespace(ctx context.Context, name string) ([]*domain.BucketRange, error) {
	rows, err := WithRetry(ctx, readRetries, func() ([]sqlc.ListBucketAllocationsByNamespaceRow, error) {
		return r.queries.ListBucketAllocationsByNamespace(ctx, name)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket allocations: %w", err)
	}

	ranges := make([]*domain.BucketRange, len(rows))
	for i, row := range rows {
		ranges[i] = allocationFromRow(row)
	}
	return ranges, nil
}

func createNamespace(ctx context.Context, q *sqlc.Queries, name string, instance, total int64, unit string, now time.Time) (sqlc.BucketNamespace, error) {
	ns := sqlc.BucketNamespace{
		ID:                uuid.New().String(),
		Name:              name,
		Instance:          instance,
		Total:             total,
		RandomizationUnit: unit,
		CreatedAt:         now.Format(time.RFC3339),
	}
	err := q.CreateBucketNamespace(ctx, sqlc.CreateBucketNamespaceParams(ns))
	return ns, err
}

func namespaceFromRow(row sqlc.BucketNamespace) *domain.BucketNamespace {
	return &domain.BucketNamespace{
		ID:                row.ID,
		Name:              row.Name,
		Instance:          int(row.Instance),
		Total:             int(row.Total),
		RandomizationUnit: row.RandomizationUnit,
		CreatedAt:         util.ParseTimeRFC3339(row.CreatedAt),
	}
}

func allocationFromRow(row sqlc.ListBucketAllocationsByNamespaceRow) *domain.BucketRange {
	return &domain.BucketRange{
		ID:           row.ID,
		NamespaceID:  row.NamespaceID,
		ExperimentID: row.ExperimentID,
		Start:        int(row.Start),
		Count:        int(row.Count),
		CreatedAt:    util.ParseTimeRFC3339(row.CreatedAt),
		Namespace: &domain.BucketNamespace{
			ID:                row.NamespaceID,
			Name:              row.Name,
			Instance:          int(row.Instance),
			Total:             int(row.Total),
			RandomizationUnit: row.RandomizationUnit,
		},
	}
}
