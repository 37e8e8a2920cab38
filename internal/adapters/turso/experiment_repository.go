package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/util"
	"github.com/emiliopalmerini/experimenter/sqlc/generated"
)

type ExperimentRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *ExperimentRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	features, err := encodeFeatures(experiment.Features)
	if err != nil {
		return err
	}

	return r.queries.CreateExperiment(ctx, sqlc.CreateExperimentParams{
		ID:                       experiment.ID,
		Slug:                     experiment.Slug,
		NormandySlug:             util.NullStringPtr(experiment.NormandySlug),
		Name:                     experiment.Name,
		PublicDescription:        experiment.PublicDescription,
		FirefoxMinVersion:        experiment.FirefoxMinVersion,
		Audience:                 experiment.Audience,
		Features:                 features,
		ProposedEnrollment:       int64(experiment.ProposedEnrollment),
		ProposedStartDate:        util.NullTime(experiment.ProposedStartDate),
		IsEnrollmentPaused:       util.BoolToInt64(experiment.IsEnrollmentPaused),
		EndDate:                  util.NullTime(experiment.EndDate),
		Owner:                    experiment.Owner,
		CreatedAt:                experiment.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:                experiment.UpdatedAt.UTC().Format(time.RFC3339),
		Type:                     string(experiment.Type),
		RapidType:                nullRapidType(experiment.RapidType),
		Status:                   string(experiment.Status),
		StatusNext:               nullStatus(experiment.StatusNext),
		PublishStatus:            string(experiment.PublishStatus),
		IsEnrollmentPausePending: util.BoolToInt64(experiment.IsEnrollmentPausePending),
		IsArchived:               util.BoolToInt64(experiment.IsArchived),
	})
}

func (r *ExperimentRepository) GetByID(ctx context.Context, id string) (*domain.Experiment, error) {
	row, err := WithRetry(ctx, readRetries, func() (sqlc.Experiment, error) {
		return r.queries.GetExperimentByID(ctx, id)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return experimentFromRow(row), nil
}

func (r *ExperimentRepository) GetBySlug(ctx context.Context, slug string) (*domain.Experiment, error) {
	row, err := WithRetry(ctx, readRetries, func() (sqlc.Experiment, error) {
		return r.queries.GetExperimentBySlug(ctx, slug)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get experiment by slug: %w", err)
	}
	return experimentFromRow(row), nil
}

func (r *ExperimentRepository) List(ctx context.Context) ([]*domain.Experiment, error) {
	rows, err := WithRetry(ctx, readRetries, func() ([]sqlc.Experiment, error) {
		return r.queries.ListExperiments(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}

	experiments := make([]*domain.Experiment, len(rows))
	for i, row := range rows {
		experiments[i] = experimentFromRow(row)
	}
	return experiments, nil
}

func (r *ExperimentRepository) Update(ctx context.Context, experiment *domain.Experiment) error {
	features, err := encodeFeatures(experiment.Features)
	if err != nil {
		return err
	}

	return r.queries.UpdateExperiment(ctx, sqlc.UpdateExperimentParams{
		NormandySlug:       util.NullStringPtr(experiment.NormandySlug),
		Name:               experiment.Name,
		PublicDescription:  experiment.PublicDescription,
		FirefoxMinVersion:  experiment.FirefoxMinVersion,
		Audience:           experiment.Audience,
		Features:           features,
		ProposedEnrollment: int64(experiment.ProposedEnrollment),
		ProposedStartDate:  util.NullTime(experiment.ProposedStartDate),
		IsEnrollmentPaused: util.BoolToInt64(experiment.IsEnrollmentPaused),
		EndDate:            util.NullTime(experiment.EndDate),
		Owner:              experiment.Owner,
		Type:               string(experiment.Type),
		RapidType:          nullRapidType(experiment.RapidType),
		UpdatedAt:          experiment.UpdatedAt.UTC().Format(time.RFC3339),
		ID:                 experiment.ID,
	})
}

func (r *ExperimentRepository) UpdateType(ctx context.Context, id string, experimentType domain.ExperimentType) error {
	if err := experimentType.Validate(); err != nil {
		return err
	}
	return r.queries.UpdateExperimentType(ctx, sqlc.UpdateExperimentTypeParams{
		Type:      string(experimentType),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		ID:        id,
	})
}

func (r *ExperimentRepository) UpdateStatus(ctx context.Context, experiment *domain.Experiment, log *domain.ChangeLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)
	err = q.UpdateExperimentStatus(ctx, sqlc.UpdateExperimentStatusParams{
		Status:                   string(experiment.Status),
		StatusNext:               nullStatus(experiment.StatusNext),
		PublishStatus:            string(experiment.PublishStatus),
		IsEnrollmentPausePending: util.BoolToInt64(experiment.IsEnrollmentPausePending),
		IsEnrollmentPaused:       util.BoolToInt64(experiment.IsEnrollmentPaused),
		EndDate:                  util.NullTime(experiment.EndDate),
		IsArchived:               util.BoolToInt64(experiment.IsArchived),
		UpdatedAt:                experiment.UpdatedAt.UTC().Format(time.RFC3339),
		ID:                       experiment.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to update experiment status: %w", err)
	}

	if log != nil {
		if log.ID == "" {
			log.ID = uuid.New().String()
		}
		if err := q.CreateChangelog(ctx, changelogParams(log)); err != nil {
			return fmt.Errorf("failed to create change log: %w", err)
		}
	}

	return tx.Commit()
}

func (r *ExperimentRepository) Delete(ctx context.Context, id string) error {
	return r.queries.DeleteExperiment(ctx, id)
}

func experimentFromRow(row sqlc.Experiment) *domain.Experiment {
	exp := &domain.Experiment{
		ID:                       row.ID,
		Slug:                     row.Slug,
		NormandySlug:             util.NullStringToPtr(row.NormandySlug),
		Name:                     row.Name,
		PublicDescription:        row.PublicDescription,
		Type:                     domain.ExperimentType(row.Type),
		FirefoxMinVersion:        row.FirefoxMinVersion,
		Audience:                 row.Audience,
		Features:                 decodeFeatures(row.Features),
		ProposedEnrollment:       int(row.ProposedEnrollment),
		ProposedStartDate:        util.NullStringToTime(row.ProposedStartDate),
		IsEnrollmentPaused:       row.IsEnrollmentPaused == 1,
		EndDate:                  util.NullStringToTime(row.EndDate),
		Owner:                    row.Owner,
		Status:                   domain.Status(row.Status),
		PublishStatus:            domain.PublishStatus(row.PublishStatus),
		IsEnrollmentPausePending: row.IsEnrollmentPausePending == 1,
		IsArchived:               row.IsArchived == 1,
		CreatedAt:                util.ParseTimeRFC3339(row.CreatedAt),
		UpdatedAt:                util.ParseTimeRFC3339(row.UpdatedAt),
	}
	if row.RapidType.Valid {
		rt := domain.RapidType(row.RapidType.String)
		exp.RapidType = &rt
	}
	if row.StatusNext.Valid {
		next := domain.Status(row.StatusNext.String)
		exp.StatusNext = &next
	}
	return exp
}

func encodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("failed to encode features: %w", err)
	}
	return string(b), nil
}

func decodeFeatures(s string) []string {
	features := []string{}
	_ = json.Unmarshal([]byte(s), &features)
	if features == nil {
		features = []string{}
	}
	return features
}

func nullRapidType(rt *domain.RapidType) sql.NullString {
	if rt == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*rt), Valid: true}
}

func nullStatus(s *domain.Status) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*s), Valid: true}
}
