package ports

import (
	"context"

	"github.com/emiliopalmerini/experimenter/internal/domain"
)

type ExperimentRepository interface {
	Create(ctx context.Context, experiment *domain.Experiment) error
	GetByID(ctx context.Context, id string) (*domain.Experiment, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Experiment, error)
	List(ctx context.Context) ([]*domain.Experiment, error)
	Update(ctx context.Context, experiment *domain.Experiment) error
	UpdateType(ctx context.Context, id string, experimentType domain.ExperimentType) error
	// UpdateStatus persists the lifecycle fields and appends the change log
	// entry in one transaction.
	UpdateStatus(ctx context.Context, experiment *domain.Experiment, log *domain.ChangeLog) error
	Delete(ctx context.Context, id string) error
}
