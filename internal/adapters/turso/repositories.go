package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/experimenter/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Experiments ports.ExperimentRepository
	Variants    ports.VariantRepository
	Buckets     ports.BucketRepository
	ChangeLogs  ports.ChangeLogRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Experiments: NewExperimentRepository(db),
		Variants:    NewVariantRepository(db),
		Buckets:     NewBucketRepository(db),
		ChangeLogs:  NewChangeLogRepository(db),
	}
}
