package ports

import (
	"context"

	"github.com/emiliopalmerini/experimenter/internal/domain"
)

// ChangeLogRepository reads lifecycle history. Entries are written by
// ExperimentRepository.UpdateStatus.
type ChangeLogRepository interface {
	ListByExperiment(ctx context.Context, experimentID string) ([]*domain.ChangeLog, error)
	GetLatest(ctx context.Context, experimentID string) (*domain.ChangeLog, error)
}
