package web

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/experimenter/internal/domain"
	"github.com/emiliopalmerini/experimenter/internal/ports"
	"github.com/emiliopalmerini/experimenter/internal/util"
	"github.com/emiliopalmerini/experimenter/internal/web/templates"
)

var pageSortFields = []string{
	string(domain.SortByName),
	string(domain.SortByType),
	string(domain.SortByStatus),
	string(domain.SortByOwner),
	string(domain.SortByMinVersion),
	string(domain.SortByStartDate),
	string(domain.SortByEnrollment),
}

func (s *Server) handleExperimentsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	sortField := q.Get("sort")
	desc, _ := strconv.ParseBool(q.Get("desc"))

	var (
		exps      []*domain.Experiment
		snapshots []*ports.RecipeSnapshot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exps, err = s.experiments.List(gctx, sortField, desc)
		return err
	})
	g.Go(func() error {
		var err error
		snapshots, err = s.recipes.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	published := make(map[string]bool, len(snapshots))
	for _, snap := range snapshots {
		published[snap.RecipeSlug] = true
	}

	page := templates.ExperimentsPage{
		Sort:       sortField,
		Descending: desc,
		SortFields: pageSortFields,
	}
	for _, e := range exps {
		start := ""
		if e.ProposedStartDate != nil {
			start = util.FormatDateISO(e.ProposedStartDate)
		}
		page.Experiments = append(page.Experiments, templates.ExperimentRow{
			Slug:              e.Slug,
			RecipeSlug:        e.RecipeSlug(),
			Name:              e.Name,
			TypeLabel:         e.Type.Label(),
			Status:            string(e.Status),
			PublishStatus:     string(e.PublishStatus),
			Owner:             e.Owner,
			FirefoxMinVersion: e.FirefoxMinVersion,
			StartDate:         start,
			EnrollmentDays:    e.ProposedEnrollment,
			SummaryAction:     domain.SummaryAction(domain.GetStatus(e), false),
			Published:         published[e.RecipeSlug()],
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Experiments(page).Render(ctx, w); err != nil {
		s.logger.Warn("failed to render experiments page", zap.Error(err))
	}
}
