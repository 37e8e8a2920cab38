package ports

import (
	"context"
	"time"
)

// MetricsExporter exports publishing metrics to an external observability system.
type MetricsExporter interface {
	// RecordPublish records one publish attempt.
	RecordPublish(ctx context.Context, e *PublishEvent) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// PublishEvent describes a recipe publish attempt.
type PublishEvent struct {
	ExperimentSlug string
	RecipeSlug     string
	ExperimentType string
	Audience       string
	BranchCount    int
	BucketCount    int
	Namespace      string
	// Outcome is "published", "invalid" or "error".
	Outcome     string
	PublishedAt time.Time
}
