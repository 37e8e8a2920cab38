package domain

import "time"

const (
	DefaultBucketTotal       = 10000
	DefaultRandomizationUnit = "normandy_id"
)

// BucketNamespace is one instance of a named randomization space.
// When an instance fills up, the next allocation opens instance+1.
type BucketNamespace struct {
	ID                string
	Name              string
	Instance          int
	Total             int
	RandomizationUnit string
	CreatedAt         time.Time
}

// BucketRange is the contiguous slice of a namespace owned by one experiment.
type BucketRange struct {
	ID           string
	NamespaceID  string
	ExperimentID string
	Start        int
	Count        int
	CreatedAt    time.Time
	Namespace    *BucketNamespace
}

// End is the last bucket in the range, inclusive.
func (r *BucketRange) End() int {
	return r.Start + r.Count - 1
}
