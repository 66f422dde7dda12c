package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docedit/internal/config"
	"github.com/dgallion1/docedit/internal/tools"
	"github.com/dgallion1/docedit/internal/workspace"
)

// Server is the HTTP API server for docedit.
type Server struct {
	router chi.Router
	store  *workspace.Store
	tools  *tools.Registry
	stats  *tools.Stats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil, in
// which case the stats endpoint reports itself unavailable.
func NewServer(store *workspace.Store, registry *tools.Registry, stats *tools.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store: store,
		tools: registry,
		stats: stats,
		log:   log,
		cfg:   cfg,
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

	r.Route("/api", func(r chi.Router) {
		r.Get("/tools", s.handleListTools)
		r.Get("/stats/tools", s.handleToolStats)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.handleListDocuments)
			r.Post("/", s.handleCreateDocument)
			r.Post("/import", s.handleImportDocument)

			r.Route("/{docID}", func(r chi.Router) {
				r.Get("/", s.handleGetDocument)
				r.Delete("/", s.handleDeleteDocument)
				r.Get("/markdown", s.handleExportMarkdown)
				r.Post("/tools/{tool}", s.handleRunTool)
			})
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.store.Len(),
	})
}
