package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/util"
	"github.com/emiliopalmerini/experimenter/sqlc/generated"
)

type VariantRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewVariantRepository(db *sql.DB) *VariantRepository {
	return &VariantRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *VariantRepository) Create(ctx context.Context, v *domain.Variant) error {
	return r.queries.CreateVariant(ctx, createVariantParams(v))
}

func (r *VariantRepository) CreateRebalanced(ctx context.Context, v *domain.Variant, ratios map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	q := r.queries.WithTx(tx)

	if err := q.CreateVariant(ctx, createVariantParams(v)); err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	for slug, ratio := range ratios {
		if slug == v.Slug {
			continue
		}
		err := q.UpdateVariantRatio(ctx, sqlc.UpdateVariantRatioParams{
			Ratio:        int64(ratio),
			ExperimentID: v.ExperimentID,
			Slug:         slug,
		})
		if err != nil {
			return fmt.Errorf("failed to update ratio of %s: %w", slug, err)
		}
	}
	return tx.Commit()
}

func createVariantParams(v *domain.Variant) sqlc.CreateVariantParams {
	return sqlc.CreateVariantParams{
		ID:           v.ID,
		ExperimentID: v.ExperimentID,
		Slug:         v.Slug,
		Name:         v.Name,
		Description:  v.Description,
		Ratio:        int64(v.Ratio),
		Value:        util.NullStringPtr(v.Value),
		IsControl:    util.BoolToInt64(v.IsControl),
		CreatedAt:    v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (r *VariantRepository) ListByExperiment(ctx context.Context, experimentID string) ([]*domain.Variant, error) {
	rows, err := WithRetry(ctx, readRetries, func() ([]sqlc.ExperimentVariant, error) {
		return r.queries.ListVariantsByExperiment(ctx, experimentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	variants := make([]*domain.Variant, len(rows))
	for i, row := range rows {
		variants[i] = &domain.Variant{
			ID:           row.ID,
			ExperimentID: row.ExperimentID,
			Slug:         row.Slug,
			Name:         row.Name,
			Description:  row.Description,
			Ratio:        int(row.Ratio),
			Value:        util.NullStringToPtr(row.Value),
			IsControl:    row.IsControl == 1,
			CreatedAt:    util.ParseTimeRFC3339(row.CreatedAt),
		}
	}
	return variants, nil
}

func (r *VariantRepository) Delete(ctx context.Context, experimentID, slug string) error {
	return r.queries.DeleteVariant(ctx, sqlc.DeleteVariantParams{
		ExperimentID: experimentID,
		Slug:         slug,
	})
}
