package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/experimenter/internal/experiments"
	"github.com/emiliopalmerini/experimenter/internal/lifecycle"
	"github.com/emiliopalmerini/experimenter/internal/ports"
	"github.com/emiliopalmerini/experimenter/internal/presets"
	"github.com/emiliopalmerini/experimenter/internal/publish"
)

// Config holds server-specific configuration.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Deps struct {
	Experiments *experiments.Service
	Lifecycle   *lifecycle.Service
	Publisher   *publish.Publisher
	Variants    ports.VariantRepository
	Buckets     ports.BucketRepository
	Recipes     ports.RecipeStore
	Catalog     *presets.Catalog
	Logger      *zap.Logger
}

type Server struct {
	cfg         Config
	router      chi.Router
	experiments *experiments.Service
	lifecycle   *lifecycle.Service
	publisher   *publish.Publisher
	variants    ports.VariantRepository
	buckets     ports.BucketRepository
	recipes     ports.RecipeStore
	catalog     *presets.Catalog
	logger      *zap.Logger
}

func NewServer(cfg Config, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:         cfg,
		router:      chi.NewRouter(),
		experiments: d.Experiments,
		lifecycle:   d.Lifecycle,
		publisher:   d.Publisher,
		variants:    d.Variants,
		buckets:     d.Buckets,
		recipes:     d.Recipes,
		catalog:     d.Catalog,
		logger:      logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/experiments", http.StatusFound)
	})
	r.Get("/experiments", s.handleExperimentsPage)

	r.Route("/api/v4", func(r chi.Router) {
		r.Get("/presets", s.handlePresets)

		r.Get("/experiments", s.handleListExperiments)
		r.Post("/experiments", s.handleCreateExperiment)
		r.Route("/experiments/{slug}", func(r chi.Router) {
			r.Get("/", s.handleGetExperiment)
			r.Patch("/", s.handleUpdateExperiment)
			r.Delete("/", s.handleDeleteExperiment)
			r.Put("/type", s.handleSetType)
			r.Get("/variants", s.handleListVariants)
			r.Post("/variants", s.handleCreateVariant)
			r.Post("/buckets", s.handleRequestBuckets)
			r.Get("/recipe", s.handlePreviewRecipe)
			r.Post("/publish", s.handlePublish)
			r.Get("/changelog", s.handleChangeLog)
			r.Post("/{action}", s.handleLifecycle)
		})

		r.Get("/namespaces/{name}", s.handleNamespace)

		r.Get("/recipes", s.handleListRecipes)
		r.Get("/recipes/{slug}", s.handleGetRecipe)
	})
}

// ServeHTTP lets tests drive the router without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves until ctx is cancelled, then shuts down within the
// configured timeout.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", s.cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
