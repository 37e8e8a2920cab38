// Package mocks provides func-field implementations of the ports for tests.
// A nil func returns the zero value and no error.
package mocks

import (
	"context"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/ports"
)

type ExperimentRepository struct {
	CreateFunc       func(ctx context.Context, experiment *domain.Experiment) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.Experiment, error)
	GetBySlugFunc    func(ctx context.Context, slug string) (*domain.Experiment, error)
	ListFunc         func(ctx context.Context) ([]*domain.Experiment, error)
	UpdateFunc       func(ctx context.Context, experiment *domain.Experiment) error
	UpdateTypeFunc   func(ctx context.Context, id string, experimentType domain.ExperimentType) error
	UpdateStatusFunc func(ctx context.Context, experiment *domain.Experiment, log *domain.ChangeLog) error
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *ExperimentRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, experiment)
	}
	return nil
}

func (m *ExperimentRepository) GetByID(ctx context.Context, id string) (*domain.Experiment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *ExperimentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Experiment, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, nil
}

func (m *ExperimentRepository) List(ctx context.Context) ([]*domain.Experiment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*domain.Experiment{}, nil
}

func (m *ExperimentRepository) Update(ctx context.Context, experiment *domain.Experiment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, experiment)
	}
	return nil
}

func (m *ExperimentRepository) UpdateType(ctx context.Context, id string, experimentType domain.ExperimentType) error {
	if m.UpdateTypeFunc != nil {
		return m.UpdateTypeFunc(ctx, id, experimentType)
	}
	return nil
}

func (m *ExperimentRepository) UpdateStatus(ctx context.Context, experiment *domain.Experiment, log *domain.ChangeLog) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, experiment, log)
	}
	return nil
}

func (m *ExperimentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type VariantRepository struct {
	CreateFunc           func(ctx context.Context, variant *domain.Variant) error
	CreateRebalancedFunc func(ctx context.Context, variant *domain.Variant, ratios map[string]int) error
	ListByExperimentFunc func(ctx context.Context, experimentID string) ([]*domain.Variant, error)
	DeleteFunc           func(ctx context.Context, experimentID, slug string) error
}

func (m *VariantRepository) Create(ctx context.Context, variant *domain.Variant) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, variant)
	}
	return nil
}

func (m *VariantRepository) CreateRebalanced(ctx context.Context, variant *domain.Variant, ratios map[string]int) error {
	if m.CreateRebalancedFunc != nil {
		return m.CreateRebalancedFunc(ctx, variant, ratios)
	}
	return nil
}

func (m *VariantRepository) ListByExperiment(ctx context.Context, experimentID string) ([]*domain.Variant, error) {
	if m.ListByExperimentFunc != nil {
		return m.ListByExperimentFunc(ctx, experimentID)
	}
	return []*domain.Variant{}, nil
}

func (m *VariantRepository) Delete(ctx context.Context, experimentID, slug string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, experimentID, slug)
	}
	return nil
}

type BucketRepository struct {
	RequestNamespaceBucketsFunc func(ctx context.Context, req ports.BucketRequest) (*domain.BucketRange, error)
	GetByExperimentFunc         func(ctx context.Context, experimentID string) (*domain.BucketRange, error)
	ListByNamespaceFunc         func(ctx context.Context, name string) ([]*domain.BucketRange, error)
}

func (m *BucketRepository) RequestNamespaceBuckets(ctx context.Context, req ports.BucketRequest) (*domain.BucketRange, error) {
	if m.RequestNamespaceBucketsFunc != nil {
		return m.RequestNamespaceBucketsFunc(ctx, req)
	}
	return nil, nil
}

func (m *BucketRepository) GetByExperiment(ctx context.Context, experimentID string) (*domain.BucketRange, error) {
	if m.GetByExperimentFunc != nil {
		return m.GetByExperimentFunc(ctx, experimentID)
	}
	return nil, nil
}

func (m *BucketRepository) ListByNamespace(ctx context.Context, name string) ([]*domain.BucketRange, error) {
	if m.ListByNamespaceFunc != nil {
		return m.ListByNamespaceFunc(ctx, name)
	}
	return []*domain.BucketRange{}, nil
}

type ChangeLogRepository struct {
	ListByExperimentFunc func(ctx context.Context, experimentID string) ([]*domain.ChangeLog, error)
	GetLatestFunc        func(ctx context.Context, experimentID string) (*domain.ChangeLog, error)
}

func (m *ChangeLogRepository) ListByExperiment(ctx context.Context, experimentID string) ([]*domain.ChangeLog, error) {
	if m.ListByExperimentFunc != nil {
		return m.ListByExperimentFunc(ctx, experimentID)
	}
	return []*domain.ChangeLog{}, nil
}

func (m *ChangeLogRepository) GetLatest(ctx context.Context, experimentID string) (*domain.ChangeLog, error) {
	if m.GetLatestFunc != nil {
		return m.GetLatestFunc(ctx, experimentID)
	}
	return nil, nil
}

type RecipeStore struct {
	SaveFunc   func(ctx context.Context, snapshot *ports.RecipeSnapshot) error
	GetFunc    func(ctx context.Context, recipeSlug string) (*ports.RecipeSnapshot, error)
	ListFunc   func(ctx context.Context) ([]*ports.RecipeSnapshot, error)
	DeleteFunc func(ctx context.Context, recipeSlug string) error
}

func (m *RecipeStore) Save(ctx context.Context, snapshot *ports.RecipeSnapshot) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snapshot)
	}
	return nil
}

func (m *RecipeStore) Get(ctx context.Context, recipeSlug string) (*ports.RecipeSnapshot, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, recipeSlug)
	}
	return nil, nil
}

func (m *RecipeStore) List(ctx context.Context) ([]*ports.RecipeSnapshot, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*ports.RecipeSnapshot{}, nil
}

func (m *RecipeStore) Delete(ctx context.Context, recipeSlug string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, recipeSlug)
	}
	return nil
}

// MetricsExporter keeps every recorded event.
type MetricsExporter struct {
	Events []*ports.PublishEvent
}

func (m *MetricsExporter) RecordPublish(_ context.Context, e *ports.PublishEvent) error {
	m.Events = append(m.Events, e)
	return nil
}

func (m *MetricsExporter) Close(context.Context) error {
	return nil
}
