package ports

import (
	"context"
	"encoding/json"
	"time"
)

// RecipeSnapshot is the last recipe published for an experiment.
type RecipeSnapshot struct {
	RecipeSlug     string          `json:"recipe_slug"`
	ExperimentSlug string          `json:"experiment_slug"`
	Recipe         json.RawMessage `json:"recipe"`
	PublishedAt    time.Time       `json:"published_at"`
}

type RecipeStore interface {
	Save(ctx context.Context, snapshot *RecipeSnapshot) error
	Get(ctx context.Context, recipeSlug string) (*RecipeSnapshot, error)
	List(ctx context.Context) ([]*RecipeSnapshot, error)
	Delete(ctx context.Context, recipeSlug string) error
}
