package api

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/nycair/internal/dataset"
	"github.com/lox/nycair/internal/imagegen"
	"github.com/lox/nycair/internal/models"
	"github.com/lox/nycair/internal/scene"
)

// Dataset is the loaded air quality data behind the server.
type Dataset interface {
	Load(ctx context.Context) ([]models.Measurement, error)
	Stats() (dataset.ParseStats, bool)
}

// Options configure a Server. Zero values select the defaults.
type Options struct {
	Addr       string
	OGCacheTTL time.Duration
	Clock      clockwork.Clock
}

const (
	DefaultAddr       = ":8080"
	DefaultOGCacheTTL = 10 * time.Minute
)

type Server struct {
	controller *scene.Controller
	data       Dataset
	logger     *slog.Logger
	addr       string
	tmpl       *template.Template
	ogCache    *imagegen.Cache
}

func NewServer(controller *scene.Controller, data Dataset, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.OGCacheTTL <= 0 {
		opts.OGCacheTTL = DefaultOGCacheTTL
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Server{
		controller: controller,
		data:       data,
		logger:     logger,
		addr:       opts.Addr,
		tmpl:       newTemplates(),
		ogCache:    imagegen.NewCache(opts.OGCacheTTL, opts.Clock),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/chart.svg", s.handleCurrentSVG)
	r.Get("/chart.png", s.handleCurrentPNG)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/scenes/{index}", func(r chi.Router) {
		r.Get("/", s.handleScene)
		r.Post("/filter", s.handleFilter)
		r.Get("/chart.svg", s.handleSceneSVG)
		r.Get("/chart.png", s.handleScenePNG)
		r.Get("/report.pdf", s.handleScenePDF)
	})
	r.Get("/og/{index}.png", s.handlePreview)

	r.Route("/api", func(r chi.Router) {
		r.Get("/scenes/{index}", s.handleAPIScene)
		r.Get("/yearly", s.handleAPIYearly)
		r.Get("/locations", s.handleAPILocations)
	})
	return r
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("listening", "addr", s.addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
