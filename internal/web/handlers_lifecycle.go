package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/emiliopalmerini/experimenter/internal/domain"
)

type lifecycleRequest struct {
	ChangedBy string `json:"changed_by"`
	Message   string `json:"message"`
}

type lifecycleResponse struct {
	Experiment experimentView `json:"experiment"`
	ChangeLog  changeLogView  `json:"change_log"`
}

func (s *Server) handleLifecycle(w http.ResponseWriter, r *http.Request) {
	action, err := domain.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	var req lifecycleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.ChangedBy) == "" {
		s.writeError(w, r, fmt.Errorf("%w: changed_by is required", errBadRequest))
		return
	}

	exp, log, err := s.lifecycle.Apply(r.Context(), chi.URLParam(r, "slug"), action, req.ChangedBy, req.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lifecycleResponse{
		Experiment: newExperimentView(exp),
		ChangeLog:  newChangeLogView(log),
	})
}

func (s *Server) handleChangeLog(w http.ResponseWriter, r *http.Request) {
	history, err := s.lifecycle.History(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views := make([]changeLogView, len(history))
	for i, c := range history {
		views[i] = newChangeLogView(c)
	}
	writeJSON(w, http.StatusOK, views)
}
