// Package lifecycle applies review-flow transitions to stored experiments.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/ports"
)

type Service struct {
	experiments ports.ExperimentRepository
	changelogs  ports.ChangeLogRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(experiments ports.ExperimentRepository, changelogs ports.ChangeLogRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		experiments: experiments,
		changelogs:  changelogs,
		logger:      logger,
		now:         time.Now,
	}
}

// Summary is the lifecycle view of one experiment.
type Summary struct {
	Flags    domain.StatusFlags `json:"flags"`
	Action   string             `json:"summary_action"`
	Editable bool               `json:"editable"`
	// Rejection describes the latest rejected request, if the latest entry is one.
	Rejection *Rejection `json:"rejection,omitempty"`
}

type Rejection struct {
	Description string    `json:"description"`
	Message     string    `json:"message"`
	ChangedBy   string    `json:"changed_by"`
	ChangedOn   time.Time `json:"changed_on"`
}

// Apply runs action on the experiment identified by slug and persists the new
// state together with its change log entry.
func (s *Service) Apply(ctx context.Context, slug string, action domain.Action, by, message string) (*domain.Experiment, *domain.ChangeLog, error) {
	exp, err := s.get(ctx, slug)
	if err != nil {
		return nil, nil, err
	}

	log, err := domain.Apply(exp, action, by, message, s.now().UTC())
	if err != nil {
		return nil, nil, err
	}

	if err := s.experiments.UpdateStatus(ctx, exp, log); err != nil {
		return nil, nil, fmt.Errorf("failed to save %s: %w", action, err)
	}

	s.logger.Info("lifecycle change",
		zap.String("experiment", exp.Slug),
		zap.String("action", string(action)),
		zap.String("by", by),
		zap.String("status", string(exp.Status)),
		zap.String("publish_status", string(exp.PublishStatus)))

	return exp, log, nil
}

// Describe returns the derived flags, call to action and last rejection of an
// experiment. canReview selects the reviewer wording.
func (s *Service) Describe(ctx context.Context, exp *domain.Experiment, canReview bool) (*Summary, error) {
	flags := domain.GetStatus(exp)
	summary := &Summary{
		Flags:    flags,
		Action:   domain.SummaryAction(flags, canReview),
		Editable: domain.Editable(flags),
	}

	latest, err := s.changelogs.GetLatest(ctx, exp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest change: %w", err)
	}
	if latest != nil && latest.IsRejection() {
		r := &Rejection{
			Description: domain.RejectionDescription(latest),
			ChangedBy:   latest.ChangedBy,
			ChangedOn:   latest.ChangedOn,
		}
		if latest.Message != nil {
			r.Message = *latest.Message
		}
		summary.Rejection = r
	}
	return summary, nil
}

// History returns the change log of an experiment, oldest first.
func (s *Service) History(ctx context.Context, slug string) ([]*domain.ChangeLog, error) {
	exp, err := s.get(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.changelogs.ListByExperiment(ctx, exp.ID)
}

// CheckEditable returns domain.ErrNotEditable once an experiment has been
// launched, archived or sent for review.
func CheckEditable(exp *domain.Experiment) error {
	if !domain.Editable(domain.GetStatus(exp)) {
		return fmt.Errorf("%w: %s is %s/%s", domain.ErrNotEditable, exp.Slug, exp.Status, exp.PublishStatus)
	}
	return nil
}

// Delete removes an experiment that is still editable.
func (s *Service) Delete(ctx context.Context, slug string) error {
	exp, err := s.get(ctx, slug)
	if err != nil {
		return err
	}
	if err := CheckEditable(exp); err != nil {
		return err
	}
	if err := s.experiments.Delete(ctx, exp.ID); err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}
	s.logger.Info("experiment deleted", zap.String("experiment", slug))
	return nil
}

func (s *Service) get(ctx context.Context, slug string) (*domain.Experiment, error) {
	exp, err := s.experiments.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: experiment %s", domain.ErrNotFound, slug)
	}
	return exp, nil
}
