package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ExperimentType is the kind of experiment. Stored in experiments.type.
type ExperimentType string

const (
	TypePref    ExperimentType = "pref"
	TypeAddon   ExperimentType = "addon"
	TypeGeneric ExperimentType = "generic"
	TypeRollout ExperimentType = "rollout"
	TypeRapid   ExperimentType = "rapid"
)

// DefaultExperimentType is applied to experiments created without a type,
// and to rows that predate the type column.
const DefaultExperimentType = TypePref

// MaxTypeLength is the storage limit of the type column.
const MaxTypeLength = 255

var experimentTypeLabels = map[ExperimentType]string{
	TypePref:    "Pref-Flip Experiment",
	TypeAddon:   "Add-On Experiment",
	TypeGeneric: "Generic Experiment",
	TypeRollout: "Staged Rollout",
	TypeRapid:   "Rapid Experiment",
}

// ExperimentTypes returns every valid type in display order.
func ExperimentTypes() []ExperimentType {
	return []ExperimentType{TypePref, TypeAddon, TypeGeneric, TypeRollout, TypeRapid}
}

// Label returns the human readable name of the type.
func (t ExperimentType) Label() string {
	if label, ok := experimentTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

func (t ExperimentType) Validate() error {
	if utf8.RuneCountInString(string(t)) > MaxTypeLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidType, MaxTypeLength)
	}
	if _, ok := experimentTypeLabels[t]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t))
	}
	return nil
}

// ParseExperimentType validates s. An empty string yields the default type.
func ParseExperimentType(s string) (ExperimentType, error) {
	if s == "" {
		return DefaultExperimentType, nil
	}
	t := ExperimentType(strings.TrimSpace(s))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// RapidType is the design of a rapid experiment.
type RapidType string

const RapidTypeCFR RapidType = "cfr"

var rapidTypeLabels = map[RapidType]string{
	RapidTypeCFR: "A/A CFR",
}

func (r RapidType) Label() string {
	if label, ok := rapidTypeLabels[r]; ok {
		return label
	}
	return string(r)
}

func (r RapidType) Validate() error {
	if _, ok := rapidTypeLabels[r]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRapidType, string(r))
	}
	return nil
}

type Experiment struct {
	ID                       string
	Slug                     string
	NormandySlug             *string
	Name                     string
	PublicDescription        string
	Type                     ExperimentType
	RapidType                *RapidType
	FirefoxMinVersion        string
	Audience                 string
	Features                 []string
	ProposedEnrollment       int
	ProposedStartDate        *time.Time
	IsEnrollmentPaused       bool
	EndDate                  *time.Time
	Owner                    string
	Status                   Status
	StatusNext               *Status
	PublishStatus            PublishStatus
	IsEnrollmentPausePending bool
	IsArchived               bool
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// DefaultProposedEnrollment is the enrollment period, in days, of new experiments.
const DefaultProposedEnrollment = 7

// NewExperiment returns a draft experiment with default type and lifecycle.
func NewExperiment(id, slug, name string, now time.Time) *Experiment {
	return &Experiment{
		ID:                 id,
		Slug:               slug,
		Name:               name,
		Type:               DefaultExperimentType,
		Features:           []string{},
		ProposedEnrollment: DefaultProposedEnrollment,
		Status:             StatusDraft,
		PublishStatus:      PublishStatusIdle,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// RecipeSlug is the identifier used by the delivery service.
// It falls back to the experiment slug when no recipe slug was assigned.
func (e *Experiment) RecipeSlug() string {
	if e.NormandySlug != nil && *e.NormandySlug != "" {
		return *e.NormandySlug
	}
	return e.Slug
}

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	versionPattern = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)*$`)
)

func (e *Experiment) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !slugPattern.MatchString(e.Slug) {
		return fmt.Errorf("invalid slug %q", e.Slug)
	}
	if err := e.Type.Validate(); err != nil {
		return err
	}
	if e.RapidType != nil {
		if e.Type != TypeRapid {
			return fmt.Errorf("%w: rapid type requires type %q", ErrInvalidRapidType, TypeRapid)
		}
		if err := e.RapidType.Validate(); err != nil {
			return err
		}
	}
	if e.FirefoxMinVersion != "" && !versionPattern.MatchString(e.FirefoxMinVersion) {
		return fmt.Errorf("invalid minimum version %q", e.FirefoxMinVersion)
	}
	if e.ProposedEnrollment < 0 {
		return fmt.Errorf("proposed enrollment must not be negative")
	}
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a name into a slug: lowercase, runs of other characters become "-".
func Slugify(name string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
