// Package recipe turns an experiment into the recipe document consumed by the
// delivery service and checks documents against experimentRecipe.json.
package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/emiliopalmerini/experimenter/internal/domain"
)

// ErrUnknownAudience is returned when an experiment names an audience the
// catalog does not define.
var ErrUnknownAudience = errors.New("unknown audience")

// Catalog resolves audience codes to targeting expressions.
type Catalog interface {
	Targeting(audience string) (string, bool)
}

type Recipe struct {
	ID               string    `json:"id"`
	FilterExpression string    `json:"filter_expression"`
	Targeting        string    `json:"targeting"`
	Enabled          bool      `json:"enabled"`
	Arguments        Arguments `json:"arguments"`
}

type Arguments struct {
	UserFacingName        string       `json:"userFacingName"`
	UserFacingDescription string       `json:"userFacingDescription"`
	Slug                  string       `json:"slug"`
	Active                bool         `json:"active"`
	IsEnrollmentPaused    bool         `json:"isEnrollmentPaused"`
	EndDate               *string      `json:"endDate"`
	ProposedEnrollment    int          `json:"proposedEnrollment"`
	Features              []string     `json:"features"`
	ReferenceBranch       *string      `json:"referenceBranch"`
	StartDate             *string      `json:"startDate"`
	BucketConfig          BucketConfig `json:"bucketConfig"`
	Branches              []Branch     `json:"branches"`
}

type BucketConfig struct {
	Count             int    `json:"count"`
	Namespace         string `json:"namespace"`
	RandomizationUnit string `json:"randomizationUnit"`
	Start             int    `json:"start"`
	Total             int    `json:"total"`
}

// DefaultBucketConfig is emitted for experiments without an allocation.
func DefaultBucketConfig() BucketConfig {
	return BucketConfig{
		Count:             0,
		Namespace:         "",
		RandomizationUnit: domain.DefaultRandomizationUnit,
		Start:             0,
		Total:             domain.DefaultBucketTotal,
	}
}

type Branch struct {
	Ratio int             `json:"ratio"`
	Slug  string          `json:"slug"`
	Value json.RawMessage `json:"value"`
}

// FilterExpression gates enrollment on the minimum browser version.
// An empty version yields an empty expression.
func FilterExpression(minVersion string) string {
	if minVersion == "" {
		return ""
	}
	return fmt.Sprintf("env.version|versionCompare('%s') >= 0", minVersion)
}

// Serialize builds the recipe for exp. bucket may be nil. The result is not
// validated; callers that publish must run Validate.
func Serialize(exp *domain.Experiment, variants []*domain.Variant, bucket *domain.BucketRange, catalog Catalog) (*Recipe, error) {
	if exp == nil {
		return nil, fmt.Errorf("experiment is required")
	}

	targeting := ""
	if exp.Audience != "" {
		t, ok := catalog.Targeting(exp.Audience)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAudience, exp.Audience)
		}
		targeting = t
	}

	branches, err := serializeBranches(variants)
	if err != nil {
		return nil, err
	}

	features := make([]string, len(exp.Features))
	copy(features, exp.Features)

	var reference *string
	if control := domain.ControlVariant(variants); control != nil {
		slug := control.Slug
		reference = &slug
	}

	slug := exp.RecipeSlug()
	return &Recipe{
		ID:               slug,
		FilterExpression: FilterExpression(exp.FirefoxMinVersion),
		Targeting:        targeting,
		Enabled:          true,
		Arguments: Arguments{
			UserFacingName:        exp.Name,
			UserFacingDescription: exp.PublicDescription,
			Slug:                  slug,
			Active:                true,
			IsEnrollmentPaused:    exp.IsEnrollmentPaused,
			EndDate:               formatDate(exp.EndDate),
			ProposedEnrollment:    exp.ProposedEnrollment,
			Features:              features,
			ReferenceBranch:       reference,
			StartDate:             formatDate(exp.ProposedStartDate),
			BucketConfig:          bucketConfig(bucket),
			Branches:              branches,
		},
	}, nil
}

// serializeBranches orders branches by slug, descending.
func serializeBranches(variants []*domain.Variant) ([]Branch, error) {
	sorted := make([]*domain.Variant, len(variants))
	copy(sorted, variants)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Slug > sorted[j].Slug
	})

	branches := make([]Branch, len(sorted))
	for i, v := range sorted {
		branches[i] = Branch{Ratio: v.Ratio, Slug: v.Slug}
		if v.Value != nil {
			if !json.Valid([]byte(*v.Value)) {
				return nil, fmt.Errorf("variant %s: value is not valid JSON", v.Slug)
			}
			branches[i].Value = json.RawMessage(*v.Value)
		}
	}
	return branches, nil
}

func bucketConfig(bucket *domain.BucketRange) BucketConfig {
	if bucket == nil || bucket.Namespace == nil {
		return DefaultBucketConfig()
	}
	return BucketConfig{
		Count:             bucket.Count,
		Namespace:         bucket.Namespace.Name,
		RandomizationUnit: bucket.Namespace.RandomizationUnit,
		Start:             bucket.Start,
		Total:             bucket.Namespace.Total,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
