package web

import (
	"encoding/json"
	"time"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/lifecycle"
	"github.com/emiliopalmerini/experimenter/internal/ports"
)

type experimentView struct {
	ID                       string     `json:"id"`
	Slug                     string     `json:"slug"`
	RecipeSlug               string     `json:"recipe_slug"`
	NormandySlug             *string    `json:"normandy_slug"`
	Name                     string     `json:"name"`
	PublicDescription        string     `json:"public_description"`
	Type                     string     `json:"type"`
	TypeLabel                string     `json:"type_label"`
	RapidType                *string    `json:"rapid_type"`
	FirefoxMinVersion        string     `json:"firefox_min_version"`
	Audience                 string     `json:"audience"`
	Features                 []string   `json:"features"`
	ProposedEnrollment       int        `json:"proposed_enrollment"`
	ProposedStartDate        *time.Time `json:"proposed_start_date"`
	IsEnrollmentPaused       bool       `json:"is_enrollment_paused"`
	EndDate                  *time.Time `json:"end_date"`
	Owner                    string     `json:"owner"`
	Status                   string     `json:"status"`
	StatusNext               *string    `json:"status_next"`
	PublishStatus            string     `json:"publish_status"`
	IsEnrollmentPausePending bool       `json:"is_enrollment_pause_pending"`
	IsArchived               bool       `json:"is_archived"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

func newExperimentView(e *domain.Experiment) experimentView {
	v := experimentView{
		ID:                       e.ID,
		Slug:                     e.Slug,
		RecipeSlug:               e.RecipeSlug(),
		NormandySlug:             e.NormandySlug,
		Name:                     e.Name,
		PublicDescription:        e.PublicDescription,
		Type:                     string(e.Type),
		TypeLabel:                e.Type.Label(),
		FirefoxMinVersion:        e.FirefoxMinVersion,
		Audience:                 e.Audience,
		Features:                 e.Features,
		ProposedEnrollment:       e.ProposedEnrollment,
		ProposedStartDate:        e.ProposedStartDate,
		IsEnrollmentPaused:       e.IsEnrollmentPaused,
		EndDate:                  e.EndDate,
		Owner:                    e.Owner,
		Status:                   string(e.Status),
		PublishStatus:            string(e.PublishStatus),
		IsEnrollmentPausePending: e.IsEnrollmentPausePending,
		IsArchived:               e.IsArchived,
		CreatedAt:                e.CreatedAt,
		UpdatedAt:                e.UpdatedAt,
	}
	if v.Features == nil {
		v.Features = []string{}
	}
	if e.RapidType != nil {
		rt := string(*e.RapidType)
		v.RapidType = &rt
	}
	if e.StatusNext != nil {
		next := string(*e.StatusNext)
		v.StatusNext = &next
	}
	return v
}

type variantView struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Ratio       int             `json:"ratio"`
	Value       json.RawMessage `json:"value"`
	IsControl   bool            `json:"is_control"`
}

func newVariantViews(variants []*domain.Variant) []variantView {
	views := make([]variantView, len(variants))
	for i, v := range variants {
		views[i] = variantView{
			ID:          v.ID,
			Slug:        v.Slug,
			Name:        v.Name,
			Description: v.Description,
			Ratio:       v.Ratio,
			IsControl:   v.IsControl,
		}
		if v.Value != nil {
			views[i].Value = json.RawMessage(*v.Value)
		}
	}
	return views
}

type bucketView struct {
	Namespace         string `json:"namespace"`
	Instance          int    `json:"instance"`
	RandomizationUnit string `json:"randomization_unit"`
	Total             int    `json:"total"`
	Start             int    `json:"start"`
	Count             int    `json:"count"`
	End               int    `json:"end"`
	ExperimentID      string `json:"experiment_id"`
}

func newBucketView(r *domain.BucketRange) *bucketView {
	if r == nil {
		return nil
	}
	v := &bucketView{
		Start:        r.Start,
		Count:        r.Count,
		End:          r.End(),
		ExperimentID: r.ExperimentID,
	}
	if r.Namespace != nil {
		v.Namespace = r.Namespace.Name
		v.Instance = r.Namespace.Instance
		v.RandomizationUnit = r.Namespace.RandomizationUnit
		v.Total = r.Namespace.Total
	}
	return v
}

type changeLogView struct {
	ChangedOn        time.Time `json:"changed_on"`
	ChangedBy        string    `json:"changed_by"`
	OldStatus        *string   `json:"old_status"`
	OldStatusNext    *string   `json:"old_status_next"`
	OldPublishStatus *string   `json:"old_publish_status"`
	NewStatus        string    `json:"new_status"`
	NewStatusNext    *string   `json:"new_status_next"`
	NewPublishStatus string    `json:"new_publish_status"`
	Message          *string   `json:"message"`
}

func newChangeLogView(c *domain.ChangeLog) changeLogView {
	v := changeLogView{
		ChangedOn:        c.ChangedOn,
		ChangedBy:        c.ChangedBy,
		OldStatus:        statusString(c.OldStatus),
		OldStatusNext:    statusString(c.OldStatusNext),
		NewStatus:        string(c.NewStatus),
		NewStatusNext:    statusString(c.NewStatusNext),
		NewPublishStatus: string(c.NewPublishStatus),
		Message:          c.Message,
	}
	if c.OldPublishStatus != nil {
		p := string(*c.OldPublishStatus)
		v.OldPublishStatus = &p
	}
	return v
}

func statusString(s *domain.Status) *string {
	if s == nil {
		return nil
	}
	str := string(*s)
	return &str
}

type experimentDetail struct {
	Experiment experimentView        `json:"experiment"`
	Variants   []variantView         `json:"variants"`
	Bucket     *bucketView           `json:"bucket"`
	Lifecycle  *lifecycle.Summary    `json:"lifecycle"`
	Published  *ports.RecipeSnapshot `json:"published"`
}
