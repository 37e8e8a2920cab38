package ports

import (
	"context"
	"errors"

	"github.com/emiliopalmerini/experimenter/internal/domain"
)

// ErrInvalidBucketCount is returned for counts outside 1..namespace total.
var ErrInvalidBucketCount = errors.New("invalid bucket count")

// BucketRequest asks for Count buckets of namespace Namespace. Total and
// RandomizationUnit configure instances created by the request; zero values
// take domain.DefaultBucketTotal and domain.DefaultRandomizationUnit.
type BucketRequest struct {
	Namespace         string
	ExperimentID      string
	Count             int
	Total             int
	RandomizationUnit string
}

type BucketRepository interface {
	// RequestNamespaceBuckets allocates contiguous buckets in the newest
	// instance of the namespace. An experiment that already owns a range
	// gets it back unchanged.
	RequestNamespaceBuckets(ctx context.Context, req BucketRequest) (*domain.BucketRange, error)
	GetByExperiment(ctx context.Context, experimentID string) (*domain.BucketRange, error)
	ListByNamespace(ctx context.Context, name string) ([]*domain.BucketRange, error)
}
