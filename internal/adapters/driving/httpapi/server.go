// Package httpapi serves annotated pages and a JSON API for managing the
// identifier configuration.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/highlight/internal/adapters/driven/source"
	"github.com/custodia-labs/highlight/internal/annotator"
	"github.com/custodia-labs/highlight/internal/core/domain"
	"github.com/custodia-labs/highlight/internal/core/ports/driving"
	"github.com/custodia-labs/highlight/internal/logger"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// PagesDir is the directory served under /pages/.
	PagesDir string

	// Regions are the content roots annotated in served pages.
	// Defaults to annotator.GitHubRegions().
	Regions []annotator.Region
}

// Server serves annotated pages and the config API.
type Server struct {
	cfg        Config
	config     driving.ConfigService
	loader     *source.Loader
	router     chi.Router
	httpServer *http.Server
}

// New creates a server backed by the given config service.
func New(cfg Config, config driving.ConfigService, loader *source.Loader) *Server {
	if len(cfg.Regions) == 0 {
		cfg.Regions = annotator.GitHubRegions()
	}
	if loader == nil {
		loader = source.NewLoader()
	}
	s := &Server{
		cfg:    cfg,
		config: config,
		loader: loader,
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/pages/*", s.handlePage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.handleGetConfig)
		r.Put("/viewer", s.handleSetViewer)
		r.Post("/identifiers", s.handleAddIdentifier)
		r.Put("/identifiers/{text}", s.handleRecolourIdentifier)
		r.Delete("/identifiers/{text}", s.handleRemoveIdentifier)
	})

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening on the configured address. It blocks until the
// server stops.
func (s *Server) Start() error {
	logger.Info("Serving %s on %s", s.cfg.PagesDir, s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// configResponse is the JSON shape of the configuration.
type configResponse struct {
	Viewer          domain.ViewerIdentity `json:"viewer"`
	Watchlist       []domain.Identifier   `json:"watchlist"`
	IdentifierCount int                   `json:"identifier_count"`
}

type identifierRequest struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	cfg, err := s.config.Get()
	if err != nil {
		writeError(w, err)
		return
	}
	list := cfg.Watchlist
	if list == nil {
		list = []domain.Identifier{}
	}
	writeJSON(w, http.StatusOK, configResponse{
		Viewer:          cfg.Viewer,
		Watchlist:       list,
		IdentifierCount: len(list),
	})
}

func (s *Server) handleSetViewer(w http.ResponseWriter, r *http.Request) {
	var req identifierRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.config.SetViewer(req.Text, req.Color); err != nil {
		writeError(w, err)
		return
	}
	s.handleGetConfig(w, r)
}

func (s *Server) handleAddIdentifier(w http.ResponseWriter, r *http.Request) {
	var req identifierRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.config.AddIdentifier(req.Text, req.Color); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRecolourIdentifier(w http.ResponseWriter, r *http.Request) {
	var req identifierRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.config.SetIdentifierColor(chi.URLParam(r, "text"), req.Color); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveIdentifier(w http.ResponseWriter, r *http.Request) {
	if err := s.config.RemoveIdentifier(chi.URLParam(r, "text")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePage loads a page from PagesDir, annotates it with the current
// configuration and returns the result.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	rel := path.Clean("/" + chi.URLParam(r, "*"))
	if rel == "/" {
		http.Error(w, "page path required", http.StatusBadRequest)
		return
	}
	file := filepath.Join(s.cfg.PagesDir, filepath.FromSlash(rel))

	if info, err := os.Stat(file); err != nil || info.IsDir() {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	page, err := s.loader.Load(r.Context(), file)
	if err != nil {
		writeError(w, err)
		return
	}

	cfg, err := s.config.Get()
	if err != nil {
		logger.Error("loading config for %s: %v", rel, err)
	}
	stats := annotator.AnnotateDocument(page.Doc, cfg, s.cfg.Regions)
	logger.Debug("Served %s with %d marker(s)", rel, stats.Markers)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := page.Doc.Render(w); err != nil {
		logger.Error("rendering %s: %v", rel, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
