package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/emiliopalmerini/experimenter/internal/adapters/bolt"
	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/experiments"
	"github.com/emiliopalmerini/experimenter/internal/lifecycle"
	"github.com/emiliopalmerini/experimenter/internal/ports"
	"github.com/emiliopalmerini/experimenter/internal/ports/mocks"
	"github.com/emiliopalmerini/experimenter/internal/presets"
	"github.com/emiliopalmerini/experimenter/internal/publish"
)

// harness backs the mocks with maps so handlers see their own writes.
type harness struct {
	experiments map[string]*domain.Experiment
	variants    map[string][]*domain.Variant
	snapshots   map[string]*ports.RecipeSnapshot
	logs        []*domain.ChangeLog

	expRepo     *mocks.ExperimentRepository
	variantRepo *mocks.VariantRepository
	bucketRepo  *mocks.BucketRepository
	logRepo     *mocks.ChangeLogRepository
	store       *mocks.RecipeStore
	deps        Deps
}

func newHarness(t *testing.T, exps ...*domain.Experiment) *harness {
	t.Helper()

	h := &harness{
		experiments: make(map[string]*domain.Experiment),
		variants:    make(map[string][]*domain.Variant),
		snapshots:   make(map[string]*ports.RecipeSnapshot),
	}
	for _, e := range exps {
		h.experiments[e.Slug] = e
	}

	h.expRepo = &mocks.ExperimentRepository{
		CreateFunc: func(_ context.Context, e *domain.Experiment) error {
			h.experiments[e.Slug] = e
			return nil
		},
		GetBySlugFunc: func(_ context.Context, slug string) (*domain.Experiment, error) {
			return h.experiments[slug], nil
		},
		ListFunc: func(context.Context) ([]*domain.Experiment, error) {
			out := make([]*domain.Experiment, 0, len(h.experiments))
			for _, e := range h.experiments {
				out = append(out, e)
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
			return out, nil
		},
		UpdateTypeFunc: func(_ context.Context, id string, typ domain.ExperimentType) error {
			for _, e := range h.experiments {
				if e.ID == id {
					e.Type = typ
				}
			}
			return nil
		},
		UpdateStatusFunc: func(_ context.Context, _ *domain.Experiment, log *domain.ChangeLog) error {
			h.logs = append(h.logs, log)
			return nil
		},
		DeleteFunc: func(_ context.Context, id string) error {
			for slug, e := range h.experiments {
				if e.ID == id {
					delete(h.experiments, slug)
				}
			}
			return nil
		},
	}
	h.variantRepo = &mocks.VariantRepository{
		CreateFunc: func(_ context.Context, v *domain.Variant) error {
			h.variants[v.ExperimentID] = append(h.variants[v.ExperimentID], v)
			return nil
		},
		CreateRebalancedFunc: func(_ context.Context, v *domain.Variant, ratios map[string]int) error {
			for _, other := range h.variants[v.ExperimentID] {
				if r, ok := ratios[other.Slug]; ok {
					other.Ratio = r
				}
			}
			h.variants[v.ExperimentID] = append(h.variants[v.ExperimentID], v)
			return nil
		},
		ListByExperimentFunc: func(_ context.Context, id string) ([]*domain.Variant, error) {
			return h.variants[id], nil
		},
	}
	h.bucketRepo = &mocks.BucketRepository{}
	h.logRepo = &mocks.ChangeLogRepository{
		ListByExperimentFunc: func(context.Context, string) ([]*domain.ChangeLog, error) {
			return h.logs, nil
		},
	}
	h.store = &mocks.RecipeStore{
		SaveFunc: func(_ context.Context, s *ports.RecipeSnapshot) error {
			h.snapshots[s.RecipeSlug] = s
			return nil
		},
		GetFunc: func(_ context.Context, slug string) (*ports.RecipeSnapshot, error) {
			if s, ok := h.snapshots[slug]; ok {
				return s, nil
			}
			return nil, bolt.ErrRecipeNotFound
		},
		ListFunc: func(context.Context) ([]*ports.RecipeSnapshot, error) {
			out := make([]*ports.RecipeSnapshot, 0, len(h.snapshots))
			for _, s := range h.snapshots {
				out = append(out, s)
			}
			return out, nil
		},
		DeleteFunc: func(_ context.Context, slug string) error {
			if _, ok := h.snapshots[slug]; !ok {
				return bolt.ErrRecipeNotFound
			}
			delete(h.snapshots, slug)
			return nil
		},
	}

	catalog, err := presets.Default()
	if err != nil {
		t.Fatalf("failed to load presets: %v", err)
	}

	h.deps = Deps{
		Experiments: experiments.NewService(h.expRepo, h.variantRepo, h.bucketRepo, catalog, nil),
		Lifecycle:   lifecycle.NewService(h.expRepo, h.logRepo, nil),
		Publisher: publish.NewPublisher(publish.Deps{
			Experiments: h.expRepo,
			Variants:    h.variantRepo,
			Buckets:     h.bucketRepo,
			Store:       h.store,
			Metrics:     &mocks.MetricsExporter{},
			Catalog:     catalog,
		}),
		Variants: h.variantRepo,
		Buckets:  h.bucketRepo,
		Recipes:  h.store,
		Catalog:  catalog,
	}
	return h
}

func (h *harness) server() *Server {
	return NewServer(Config{}, h.deps)
}

func (h *harness) addVariant(exp *domain.Experiment, slug string, ratio int, control bool) {
	h.variants[exp.ID] = append(h.variants[exp.ID], &domain.Variant{
		ID:           exp.ID + "-" + slug,
		ExperimentID: exp.ID,
		Slug:         slug,
		Ratio:        ratio,
		IsControl:    control,
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func draftExperiment(slug string) *domain.Experiment {
	exp := domain.NewExperiment("id-"+slug, slug, strings.ToUpper(slug[:1])+slug[1:], time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	exp.Audience = "all_english"
	exp.FirefoxMinVersion = "90.0"
	return exp
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

var _ http.Handler = (*Server)(nil)
