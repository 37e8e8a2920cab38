package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/experimenter/internal/recipe"
)

// handlePreviewRecipe serializes and validates without storing.
func (s *Server) handlePreviewRecipe(w http.ResponseWriter, r *http.Request) {
	rec, err := s.publisher.Preview(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type publishResponse struct {
	Experiment  experimentView `json:"experiment"`
	Recipe      *recipe.Recipe `json:"recipe"`
	PublishedAt time.Time      `json:"published_at"`
	ChangeLog   *changeLogView `json:"change_log,omitempty"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	res, err := s.publisher.Publish(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := publishResponse{
		Experiment:  newExperimentView(res.Experiment),
		Recipe:      res.Recipe,
		PublishedAt: res.Snapshot.PublishedAt,
	}
	if res.ChangeLog != nil {
		v := newChangeLogView(res.ChangeLog)
		resp.ChangeLog = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	snapshots, err := s.recipes.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// handleGetRecipe returns the published recipe document as stored.
func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.recipes.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Last-Modified", snapshot.PublishedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snapshot.Recipe)
}
