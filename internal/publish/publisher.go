// Package publish builds, validates and stores experiment recipes.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/experimenter/internal/adapters/bolt"
	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/ports"
	"github.com/emiliopalmerini/experimenter/internal/recipe"
)

// Actor is recorded in the change log when publishing applies an approved
// lifecycle change.
const Actor = "experimenter"

const (
	OutcomePublished = "published"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

type Deps struct {
	Experiments ports.ExperimentRepository
	Variants    ports.VariantRepository
	Buckets     ports.BucketRepository
	Store       ports.RecipeStore
	Metrics     ports.MetricsExporter
	Catalog     recipe.Catalog
	Logger      *zap.Logger
}

type Publisher struct {
	experiments ports.ExperimentRepository
	variants    ports.VariantRepository
	buckets     ports.BucketRepository
	store       ports.RecipeStore
	metrics     ports.MetricsExporter
	catalog     recipe.Catalog
	logger      *zap.Logger
	now         func() time.Time
}

func NewPublisher(d Deps) *Publisher {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		experiments: d.Experiments,
		variants:    d.Variants,
		buckets:     d.Buckets,
		store:       d.Store,
		metrics:     d.Metrics,
		catalog:     d.Catalog,
		logger:      logger,
		now:         time.Now,
	}
}

// Result is the outcome of a successful publish.
type Result struct {
	Experiment *domain.Experiment
	Recipe     *recipe.Recipe
	Snapshot   *ports.RecipeSnapshot
	// ChangeLog is set when the publish applied an approved lifecycle change.
	ChangeLog *domain.ChangeLog
}

type draft struct {
	bucket *domain.BucketRange
	recipe *recipe.Recipe
}

// Preview serializes and validates the recipe of slug without storing it.
func (p *Publisher) Preview(ctx context.Context, slug string) (*recipe.Recipe, error) {
	exp, err := p.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	d, err := p.build(ctx, exp)
	if err != nil {
		return nil, err
	}
	if err := recipe.Validate(d.recipe); err != nil {
		return nil, err
	}
	return d.recipe, nil
}

// Publish serializes and validates the recipe of slug and stores it as the
// experiment's current snapshot. An approved lifecycle request is applied
// first, so the stored recipe reflects the state it moves to.
func (p *Publisher) Publish(ctx context.Context, slug string) (*Result, error) {
	exp, err := p.load(ctx, slug)
	if err != nil {
		return nil, err
	}

	var log *domain.ChangeLog
	if exp.PublishStatus == domain.PublishStatusApproved {
		log, err = domain.CompletePublish(exp, Actor, p.now().UTC())
		if err != nil {
			return nil, err
		}
	}

	d, err := p.build(ctx, exp)
	if err != nil {
		p.record(ctx, exp, nil, nil, OutcomeError)
		return nil, err
	}

	if err := recipe.Validate(d.recipe); err != nil {
		p.record(ctx, exp, d.recipe, d.bucket, OutcomeInvalid)
		p.logger.Warn("recipe failed validation",
			zap.String("experiment", exp.Slug),
			zap.Error(err))
		return nil, err
	}

	raw, err := json.Marshal(d.recipe)
	if err != nil {
		p.record(ctx, exp, d.recipe, d.bucket, OutcomeError)
		return nil, fmt.Errorf("failed to encode recipe: %w", err)
	}

	// Restored if the lifecycle change below cannot be persisted.
	var previous *ports.RecipeSnapshot
	if log != nil {
		previous, err = p.store.Get(ctx, d.recipe.ID)
		if err != nil && !errors.Is(err, bolt.ErrRecipeNotFound) {
			p.record(ctx, exp, d.recipe, d.bucket, OutcomeError)
			return nil, fmt.Errorf("failed to get current recipe: %w", err)
		}
	}

	snapshot := &ports.RecipeSnapshot{
		RecipeSlug:     d.recipe.ID,
		ExperimentSlug: exp.Slug,
		Recipe:         raw,
		PublishedAt:    p.now().UTC(),
	}
	if err := p.store.Save(ctx, snapshot); err != nil {
		p.record(ctx, exp, d.recipe, d.bucket, OutcomeError)
		return nil, fmt.Errorf("failed to store recipe: %w", err)
	}

	if log != nil {
		if err := p.experiments.UpdateStatus(ctx, exp, log); err != nil {
			p.restore(ctx, d.recipe.ID, previous)
			p.record(ctx, exp, d.recipe, d.bucket, OutcomeError)
			return nil, fmt.Errorf("failed to apply lifecycle change: %w", err)
		}
	}

	p.record(ctx, exp, d.recipe, d.bucket, OutcomePublished)
	p.logger.Info("recipe published",
		zap.String("experiment", exp.Slug),
		zap.String("recipe", d.recipe.ID),
		zap.Int("branches", len(d.recipe.Arguments.Branches)),
		zap.String("status", string(exp.Status)))

	return &Result{Experiment: exp, Recipe: d.recipe, Snapshot: snapshot, ChangeLog: log}, nil
}

// restore puts back the snapshot stored before a failed publish, or removes
// the new one when there was none.
func (p *Publisher) restore(ctx context.Context, recipeSlug string, previous *ports.RecipeSnapshot) {
	var err error
	if previous != nil {
		err = p.store.Save(ctx, previous)
	} else {
		err = p.store.Delete(ctx, recipeSlug)
	}
	if err != nil {
		p.logger.Error("failed to restore previous recipe",
			zap.String("recipe", recipeSlug),
			zap.Error(err))
	}
}

func (p *Publisher) load(ctx context.Context, slug string) (*domain.Experiment, error) {
	exp, err := p.experiments.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: experiment %s", domain.ErrNotFound, slug)
	}
	return exp, nil
}

func (p *Publisher) build(ctx context.Context, exp *domain.Experiment) (*draft, error) {
	variants, err := p.variants.ListByExperiment(ctx, exp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	if err := domain.ValidateControl(variants); err != nil {
		// The serializer picks the first control; the recipe is still valid.
		p.logger.Warn("experiment control branch",
			zap.String("experiment", exp.Slug),
			zap.Error(err))
	}

	bucket, err := p.buckets.GetByExperiment(ctx, exp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bucket allocation: %w", err)
	}

	r, err := recipe.Serialize(exp, variants, bucket, p.catalog)
	if err != nil {
		return nil, err
	}
	return &draft{bucket: bucket, recipe: r}, nil
}

// record never fails the publish; exporter errors are logged.
func (p *Publisher) record(ctx context.Context, exp *domain.Experiment, r *recipe.Recipe, bucket *domain.BucketRange, outcome string) {
	if p.metrics == nil {
		return
	}

	ev := &ports.PublishEvent{
		ExperimentSlug: exp.Slug,
		RecipeSlug:     exp.RecipeSlug(),
		ExperimentType: string(exp.Type),
		Audience:       exp.Audience,
		Outcome:        outcome,
		PublishedAt:    p.now().UTC(),
	}
	if r != nil {
		ev.BranchCount = len(r.Arguments.Branches)
	}
	if bucket != nil {
		ev.BucketCount = bucket.Count
		if bucket.Namespace != nil {
			ev.Namespace = bucket.Namespace.Name
		}
	}

	if err := p.metrics.RecordPublish(ctx, ev); err != nil {
		p.logger.Warn("failed to record publish metrics", zap.Error(err))
	}
}

// IsValidationError reports whether err is a schema mismatch.
func IsValidationError(err error) bool {
	var ve *recipe.ValidationError
	return errors.As(err, &ve)
}
