// Package api serves chunking and page processing over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/gaurav-prasanna/pagechunk/config"
	"github.com/gaurav-prasanna/pagechunk/core"
	"github.com/gaurav-prasanna/pagechunk/crawl"
	"github.com/gaurav-prasanna/pagechunk/metrics"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Server is the HTTP API server for pagechunk.
type Server struct {
	router    chi.Router
	fetcher   core.Fetcher
	processor crawl.PageProcessor
	metrics   *metrics.Metrics
	log       log.FieldLogger
	cfg       *config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(fetcher core.Fetcher, processor crawl.PageProcessor, m *metrics.Metrics, logger log.FieldLogger, cfg *config.Config) *Server {
	s := &Server{
		fetcher:   fetcher,
		processor: processor,
		metrics:   m,
		log:       logger,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/chunk", s.handleChunk)
		r.Post("/page", s.handlePage)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
