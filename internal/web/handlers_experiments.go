package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/experimenter/internal/adapters/bolt"
	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/experiments"
	"github.com/emiliopalmerini/experimenter/internal/lifecycle"
	"github.com/emiliopalmerini/experimenter/internal/ports"
)

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) handleListExperiments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	desc, _ := strconv.ParseBool(q.Get("desc"))

	exps, err := s.experiments.List(r.Context(), q.Get("sort"), desc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]experimentView, len(exps))
	for i, e := range exps {
		views[i] = newExperimentView(e)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var in experiments.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	exp, err := s.experiments.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newExperimentView(exp))
}

func (s *Server) handleGetExperiment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exp, err := s.experiments.Get(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	canReview, _ := strconv.ParseBool(r.URL.Query().Get("can_review"))

	var (
		variants []*domain.Variant
		bucket   *domain.BucketRange
		summary  *lifecycle.Summary
		snapshot *ports.RecipeSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		variants, err = s.variants.ListByExperiment(gctx, exp.ID)
		return err
	})

	g.Go(func() error {
		var err error
		bucket, err = s.buckets.GetByExperiment(gctx, exp.ID)
		return err
	})

	g.Go(func() error {
		var err error
		summary, err = s.lifecycle.Describe(gctx, exp, canReview)
		return err
	})

	g.Go(func() error {
		var err error
		snapshot, err = s.recipes.Get(gctx, exp.RecipeSlug())
		if errors.Is(err, bolt.ErrRecipeNotFound) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, experimentDetail{
		Experiment: newExperimentView(exp),
		Variants:   newVariantViews(variants),
		Bucket:     newBucketView(bucket),
		Lifecycle:  summary,
		Published:  snapshot,
	})
}

func (s *Server) handleDeleteExperiment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exp, err := s.experiments.Get(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.lifecycle.Delete(ctx, exp.Slug); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.recipes.Delete(ctx, exp.RecipeSlug()); err != nil && !errors.Is(err, bolt.ErrRecipeNotFound) {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateExperiment(w http.ResponseWriter, r *http.Request) {
	var in experiments.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	exp, err := s.experiments.Update(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExperimentView(exp))
}

type setTypeRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleSetType(w http.ResponseWriter, r *http.Request) {
	var req setTypeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	exp, err := s.experiments.SetType(r.Context(), chi.URLParam(r, "slug"), req.Type)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newExperimentView(exp))
}

func (s *Server) handleListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := s.experiments.Variants(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newVariantViews(variants))
}

func (s *Server) handleCreateVariant(w http.ResponseWriter, r *http.Request) {
	var in experiments.VariantInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	v, err := s.experiments.AddVariant(r.Context(), chi.URLParam(r, "slug"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newVariantViews([]*domain.Variant{v})[0])
}

type bucketRequest struct {
	Count  int    `json:"count"`
	Design string `json:"design"`
}

func (s *Server) handleRequestBuckets(w http.ResponseWriter, r *http.Request) {
	var req bucketRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Count < 0 {
		s.writeError(w, r, ports.ErrInvalidBucketCount)
		return
	}

	bucket, err := s.experiments.RequestBuckets(r.Context(), chi.URLParam(r, "slug"), req.Count, req.Design)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBucketView(bucket))
}

func (s *Server) handleNamespace(w http.ResponseWriter, r *http.Request) {
	ranges, err := s.buckets.ListByNamespace(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]*bucketView, len(ranges))
	for i, br := range ranges {
		views[i] = newBucketView(br)
	}
	writeJSON(w, http.StatusOK, views)
}
