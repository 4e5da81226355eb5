// Package httpserver provides the HTTP REST API server for the literature
// search service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/scholia/literature-search-service/internal/database"
	"github.com/scholia/literature-search-service/internal/domain"
	"github.com/scholia/literature-search-service/internal/observability"
	"github.com/scholia/literature-search-service/internal/recommend"
	"github.com/scholia/literature-search-service/internal/repository"
	"github.com/scholia/literature-search-service/internal/search"
)

// SearchService runs the end-to-end search flows.
type SearchService interface {
	SearchInternal(ctx context.Context, query string, limit int, threshold float64) (*search.InternalResult, error)
	SearchExternal(ctx context.Context, query string, limit int) (*search.ExternalResult, error)
}

// Recommender produces ranked recommendations from the citation graph.
type Recommender interface {
	CoCitation(ctx context.Context, paperID string, limit int) ([]domain.Recommendation, error)
	BibliographicCoupling(ctx context.Context, paperID string, limit int) ([]domain.Recommendation, error)
	CollectionBased(ctx context.Context, paperIDs []string, limit int) ([]domain.Recommendation, error)
	AuthorBased(ctx context.Context, authorID string, limit int) ([]domain.Recommendation, error)
	RecencyBiased(ctx context.Context, paperID string, years, limit int) ([]domain.Recommendation, error)
}

// Compile-time checks against the concrete implementations.
var (
	_ SearchService = (*search.Orchestrator)(nil)
	_ Recommender   = (*recommend.Engine)(nil)
)

// Server is the HTTP REST API server.
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	searcher    SearchService
	recommender Recommender
	citations   repository.CitationRepository
	collections repository.CollectionRepository
	db          *database.DB
	metrics     *observability.Metrics
	validate    *validator.Validate
	logger      zerolog.Logger
}

// Config holds HTTP server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg Config,
	searcher SearchService,
	recommender Recommender,
	citations repository.CitationRepository,
	collections repository.CollectionRepository,
	db *database.DB,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		searcher:    searcher,
		recommender: recommender,
		citations:   citations,
		collections: collections,
		db:          db,
		metrics:     metrics,
		validate:    newRequestValidator(),
		logger:      logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(correlationIDMiddleware)

	// Health and metrics endpoints
	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Post("/search/internal", s.searchInternal)
		r.Post("/search/external", s.searchExternal)

		r.Route("/papers/{paperID}", func(r chi.Router) {
			r.Get("/", s.getPaper)
			r.Get("/references", s.getPaperReferences)
			r.Get("/citations", s.getPaperCitations)
			r.Get("/network", s.getCitationNetwork)
			r.Get("/similar", s.getSimilarPapers)
			r.Get("/recent", s.getRecentPapers)
		})

		r.Get("/authors/{authorID}/recommendations", s.getAuthorRecommendations)

		r.Route("/collections/{collectionID}", func(r chi.Router) {
			r.Get("/papers", s.getCollectionPapers)
			r.Get("/recommendations", s.getCollectionRecommendations)
			r.Get("/stats", s.getCollectionStats)
		})
	})

	return r
}

// newRequestValidator builds a validator that reports field names from their
// JSON tags so error messages match the wire format.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	health := s.db.Health(r.Context())
	if health.Status == "healthy" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": health.Status})
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status":   "unhealthy",
		"database": health.Status,
		"error":    health.Error,
	})
}

// readinessHandler returns readiness status including database connectivity.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	health := s.db.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort; headers already sent.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
