package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/util"
	"github.com/emiliopalmerini/experimenter/sqlc/generated"
)

type ChangeLogRepository struct {
	db      *sql.DB
	queries *sqlc.Queries
}

func NewChangeLogRepository(db *sql.DB) *ChangeLogRepository {
	return &ChangeLogRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func (r *ChangeLogRepository) ListByExperiment(ctx context.Context, experimentID string) ([]*domain.ChangeLog, error) {
	rows, err := WithRetry(ctx, readRetries, func() ([]sqlc.ExperimentChangelog, error) {
		return r.queries.ListChangelogsByExperiment(ctx, experimentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list change logs: %w", err)
	}

	logs := make([]*domain.ChangeLog, len(rows))
	for i, row := range rows {
		logs[i] = changelogFromRow(row)
	}
	return logs, nil
}

func (r *ChangeLogRepository) GetLatest(ctx context.Context, experimentID string) (*domain.ChangeLog, error) {
	row, err := r.queries.GetLatestChangelog(ctx, experimentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest change log: %w", err)
	}
	return changelogFromRow(row), nil
}

func changelogParams(log *domain.ChangeLog) sqlc.CreateChangelogParams {
	return sqlc.CreateChangelogParams{
		ID:               log.ID,
		ExperimentID:     log.ExperimentID,
		ChangedOn:        log.ChangedOn.UTC().Format(time.RFC3339Nano),
		ChangedBy:        log.ChangedBy,
		OldStatus:        nullStatus(log.OldStatus),
		OldStatusNext:    nullStatus(log.OldStatusNext),
		OldPublishStatus: nullPublishStatus(log.OldPublishStatus),
		NewStatus:        string(log.NewStatus),
		NewStatusNext:    nullStatus(log.NewStatusNext),
		NewPublishStatus: string(log.NewPublishStatus),
		Message:          util.NullStringPtr(log.Message),
	}
}

func changelogFromRow(row sqlc.ExperimentChangelog) *domain.ChangeLog {
	changedOn, _ := time.Parse(time.RFC3339Nano, row.ChangedOn)
	log := &domain.ChangeLog{
		ID:               row.ID,
		ExperimentID:     row.ExperimentID,
		ChangedOn:        changedOn,
		ChangedBy:        row.ChangedBy,
		OldStatus:        statusFromNull(row.OldStatus),
		OldStatusNext:    statusFromNull(row.OldStatusNext),
		NewStatus:        domain.Status(row.NewStatus),
		NewStatusNext:    statusFromNull(row.NewStatusNext),
		NewPublishStatus: domain.PublishStatus(row.NewPublishStatus),
		Message:          util.NullStringToPtr(row.Message),
	}
	if row.OldPublishStatus.Valid {
		p := domain.PublishStatus(row.OldPublishStatus.String)
		log.OldPublishStatus = &p
	}
	return log
}

func statusFromNull(ns sql.NullString) *domain.Status {
	if !ns.Valid {
		return nil
	}
	s := domain.Status(ns.String)
	return &s
}

func nullPublishStatus(p *domain.PublishStatus) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}
