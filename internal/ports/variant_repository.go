package ports

import (
	"context"

	"github.com/emiliopalmerini/experimenter/internal/domain"
)

type VariantRepository interface {
	Create(ctx context.Context, variant *domain.Variant) error
	// CreateRebalanced inserts variant and sets the ratio of the other
	// variants of its experiment, keyed by slug, in one transaction.
	CreateRebalanced(ctx context.Context, variant *domain.Variant, ratios map[string]int) error
	// ListByExperiment returns variants ordered by slug, descending.
	ListByExperiment(ctx context.Context, experimentID string) ([]*domain.Variant, error)
	Delete(ctx context.Context, experimentID, slug string) error
}
