// Package experiments creates and edits experiments, their variants and
// bucket allocations.
package experiments

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/lifecycle"
	"github.com/emiliopalmerini/experimenter/internal/ports"
	"github.com/emiliopalmerini/experimenter/internal/presets"
	"github.com/emiliopalmerini/experimenter/internal/util"
)

type Service struct {
	experiments ports.ExperimentRepository
	variants    ports.VariantRepository
	buckets     ports.BucketRepository
	catalog     *presets.Catalog
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(
	experiments ports.ExperimentRepository,
	variants ports.VariantRepository,
	buckets ports.BucketRepository,
	catalog *presets.Catalog,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		experiments: experiments,
		variants:    variants,
		buckets:     buckets,
		catalog:     catalog,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateInput holds the editable fields of a new experiment. Empty values
// take the defaults of domain.NewExperiment.
type CreateInput struct {
	Slug               string   `json:"slug"`
	Name               string   `json:"name"`
	NormandySlug       string   `json:"normandy_slug"`
	PublicDescription  string   `json:"public_description"`
	Type               string   `json:"type"`
	RapidType          string   `json:"rapid_type"`
	FirefoxMinVersion  string   `json:"firefox_min_version"`
	Audience           string   `json:"audience"`
	Features           []string `json:"features"`
	ProposedEnrollment *int     `json:"proposed_enrollment"`
	ProposedStartDate  string   `json:"proposed_start_date"`
	Owner              string   `json:"owner"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Experiment, error) {
	slug := in.Slug
	if slug == "" {
		slug = domain.Slugify(in.Name)
	}

	exp := domain.NewExperiment(uuid.New().String(), slug, strings.TrimSpace(in.Name), s.now().UTC())
	if err := s.apply(exp, in); err != nil {
		return nil, err
	}

	existing, err := s.experiments.GetBySlug(ctx, exp.Slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: experiment %s", domain.ErrAlreadyExists, exp.Slug)
	}

	if err := s.experiments.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("failed to create experiment: %w", err)
	}

	s.logger.Info("experiment created",
		zap.String("experiment", exp.Slug),
		zap.String("type", string(exp.Type)))
	return exp, nil
}

func (s *Service) apply(exp *domain.Experiment, in CreateInput) error {
	typ, err := domain.ParseExperimentType(in.Type)
	if err != nil {
		return err
	}
	exp.Type = typ

	if in.RapidType != "" {
		rt := domain.RapidType(in.RapidType)
		exp.RapidType = &rt
	}
	if in.NormandySlug != "" {
		normandy := in.NormandySlug
		exp.NormandySlug = &normandy
	}
	exp.PublicDescription = in.PublicDescription
	exp.FirefoxMinVersion = in.FirefoxMinVersion
	exp.Owner = in.Owner

	if in.Audience != "" {
		if err := s.checkAudience(in.Audience); err != nil {
			return err
		}
		exp.Audience = in.Audience
	}
	if err := s.checkFeatures(in.Features); err != nil {
		return err
	}
	if in.Features != nil {
		exp.Features = in.Features
	}

	if in.ProposedEnrollment != nil {
		exp.ProposedEnrollment = *in.ProposedEnrollment
	}
	if in.ProposedStartDate != "" {
		if err := setStartDate(exp, in.ProposedStartDate); err != nil {
			return err
		}
	}

	if err := exp.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}

func (s *Service) checkAudience(slug string) error {
	if _, ok := s.catalog.Audience(slug); !ok {
		return fmt.Errorf("%w: unknown audience %q", domain.ErrInvalidInput, slug)
	}
	return nil
}

func (s *Service) checkFeatures(slugs []string) error {
	if unknown := s.catalog.UnknownFeatures(slugs); len(unknown) > 0 {
		return fmt.Errorf("%w: unknown features %s", domain.ErrInvalidInput, strings.Join(unknown, ", "))
	}
	return nil
}

func setStartDate(exp *domain.Experiment, value string) error {
	start, err := util.ParseDate(value)
	if err != nil {
		return fmt.Errorf("%w: invalid start date %q", domain.ErrInvalidInput, value)
	}
	exp.ProposedStartDate = &start
	return nil
}

// UpdateInput holds the fields of an existing experiment that can still be
// edited. Nil fields are left unchanged. An empty audience clears the
// targeting and an empty start date clears the proposed start.
type UpdateInput struct {
	Name               *string   `json:"name"`
	PublicDescription  *string   `json:"public_description"`
	FirefoxMinVersion  *string   `json:"firefox_min_version"`
	Audience           *string   `json:"audience"`
	Features           *[]string `json:"features"`
	ProposedEnrollment *int      `json:"proposed_enrollment"`
	ProposedStartDate  *string   `json:"proposed_start_date"`
	Owner              *string   `json:"owner"`
}

// Update edits the audience and description fields of an editable experiment.
func (s *Service) Update(ctx context.Context, slug string, in UpdateInput) (*domain.Experiment, error) {
	exp, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckEditable(exp); err != nil {
		return nil, err
	}

	if in.Name != nil {
		exp.Name = strings.TrimSpace(*in.Name)
	}
	if in.PublicDescription != nil {
		exp.PublicDescription = *in.PublicDescription
	}
	if in.FirefoxMinVersion != nil {
		exp.FirefoxMinVersion = strings.TrimSpace(*in.FirefoxMinVersion)
	}
	if in.Audience != nil {
		if *in.Audience != "" {
			if err := s.checkAudience(*in.Audience); err != nil {
				return nil, err
			}
		}
		exp.Audience = *in.Audience
	}
	if in.Features != nil {
		if err := s.checkFeatures(*in.Features); err != nil {
			return nil, err
		}
		exp.Features = append([]string{}, *in.Features...)
	}
	if in.ProposedEnrollment != nil {
		exp.ProposedEnrollment = *in.ProposedEnrollment
	}
	if in.ProposedStartDate != nil {
		if *in.ProposedStartDate == "" {
			exp.ProposedStartDate = nil
		} else if err := setStartDate(exp, *in.ProposedStartDate); err != nil {
			return nil, err
		}
	}
	if in.Owner != nil {
		exp.Owner = *in.Owner
	}

	if err := exp.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	exp.UpdatedAt = s.now().UTC()

	if err := s.experiments.Update(ctx, exp); err != nil {
		return nil, fmt.Errorf("failed to update experiment: %w", err)
	}

	s.logger.Info("experiment updated",
		zap.String("experiment", exp.Slug),
		zap.String("audience", exp.Audience),
		zap.String("min_version", exp.FirefoxMinVersion))
	return exp, nil
}

// Get returns the experiment with slug or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, slug string) (*domain.Experiment, error) {
	exp, err := s.experiments.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: experiment %s", domain.ErrNotFound, slug)
	}
	return exp, nil
}

// List returns every experiment ordered by field. An empty field keeps the
// newest first.
func (s *Service) List(ctx context.Context, field string, descending bool) ([]*domain.Experiment, error) {
	exps, err := s.experiments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	if err := domain.SortExperiments(exps, domain.SortField(field), descending); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return exps, nil
}

// SetType changes the type of an editable experiment.
func (s *Service) SetType(ctx context.Context, slug, value string) (*domain.Experiment, error) {
	typ, err := domain.ParseExperimentType(value)
	if err != nil {
		return nil, err
	}

	exp, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckEditable(exp); err != nil {
		return nil, err
	}
	if exp.RapidType != nil && typ != domain.TypeRapid {
		return nil, fmt.Errorf("%w: rapid type requires type %q", domain.ErrInvalidRapidType, domain.TypeRapid)
	}

	if err := s.experiments.UpdateType(ctx, exp.ID, typ); err != nil {
		return nil, fmt.Errorf("failed to update type: %w", err)
	}
	exp.Type = typ
	return exp, nil
}

type VariantInput struct {
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Ratio       int             `json:"ratio"`
	Value       json.RawMessage `json:"value"`
	IsControl   bool            `json:"is_control"`
}

// AddVariant adds a branch to an editable experiment. A second control
// branch is rejected. A zero ratio splits the experiment evenly across all of
// its branches, the new one included.
func (s *Service) AddVariant(ctx context.Context, slug string, in VariantInput) (*domain.Variant, error) {
	exp, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckEditable(exp); err != nil {
		return nil, err
	}

	existing, err := s.variants.ListByExperiment(ctx, exp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}

	v := &domain.Variant{
		ID:           uuid.New().String(),
		ExperimentID: exp.ID,
		Slug:         in.Slug,
		Name:         in.Name,
		Description:  in.Description,
		Ratio:        in.Ratio,
		IsControl:    in.IsControl,
		CreatedAt:    s.now().UTC(),
	}
	if v.Slug == "" {
		v.Slug = domain.Slugify(in.Name)
	}
	if v.Name == "" {
		v.Name = v.Slug
	}
	if len(in.Value) > 0 && string(in.Value) != "null" {
		value := string(in.Value)
		v.Value = &value
	}

	var ratios map[string]int
	if in.Ratio == 0 {
		split := domain.EvenSplitRatios(len(existing) + 1)
		ratios = make(map[string]int, len(existing))
		for i, other := range existing {
			ratios[other.Slug] = split[i]
		}
		v.Ratio = split[len(existing)]
	}

	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	for _, other := range existing {
		if other.Slug == v.Slug {
			return nil, fmt.Errorf("%w: variant %s", domain.ErrAlreadyExists, v.Slug)
		}
	}
	if v.IsControl && domain.ControlVariant(existing) != nil {
		return nil, domain.ErrMultipleControls
	}

	if ratios != nil {
		err = s.variants.CreateRebalanced(ctx, v, ratios)
	} else {
		err = s.variants.Create(ctx, v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create variant: %w", err)
	}
	if ratios != nil {
		s.logger.Info("variants rebalanced",
			zap.String("experiment", exp.Slug),
			zap.Int("branches", len(existing)+1),
			zap.Int("ratio", v.Ratio))
	}
	return v, nil
}

// Variants returns the branches of an experiment, ordered by slug descending.
func (s *Service) Variants(ctx context.Context, slug string) ([]*domain.Variant, error) {
	exp, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.variants.ListByExperiment(ctx, exp.ID)
}

// RequestBuckets allocates buckets for an experiment in the namespace named
// after its recipe slug. An empty design means presets.DefaultDesign; the
// design sets the namespace total and randomization unit, and its count is
// used when count is 0.
func (s *Service) RequestBuckets(ctx context.Context, slug string, count int, design string) (*domain.BucketRange, error) {
	exp, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	if design == "" {
		design = presets.DefaultDesign
	}
	d, ok := s.catalog.Design(design)
	if !ok {
		return nil, fmt.Errorf("%w: unknown design %q", domain.ErrInvalidInput, design)
	}
	if count == 0 {
		count = d.BucketConfig.Count
	}

	r, err := s.buckets.RequestNamespaceBuckets(ctx, ports.BucketRequest{
		Namespace:         exp.RecipeSlug(),
		ExperimentID:      exp.ID,
		Count:             count,
		Total:             d.BucketConfig.Total,
		RandomizationUnit: d.BucketConfig.RandomizationUnit,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("buckets allocated",
		zap.String("experiment", exp.Slug),
		zap.String("namespace", exp.RecipeSlug()),
		zap.Int("start", r.Start),
		zap.Int("count", r.Count))
	return r, nil
}
