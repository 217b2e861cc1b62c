// Package server exposes the built invitation graph over an HTTP API with
// server-sent events for live updates. The server owns a single application
// state controller; LOD and highlight mutations are applied synchronously
// per request so every response reflects a consistent scene.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	apperrors "github.com/lobstergraph/lobstergraph/pkg/errors"
)

// =============================================================================
// Server
// =============================================================================

// Options configures the HTTP server.
type Options struct {
	// StaticDir optionally serves a viewer front-end from disk at /.
	// Empty disables static serving.
	StaticDir string
}

// Server wires the application controller into a chi router.
type Server struct {
	app    *App
	hub    *Hub
	router chi.Router
	logger *log.Logger
}

// New creates a server around an application controller.
func New(app *App, hub *Hub, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		app:    app,
		hub:    hub,
		logger: logger,
	}
	s.router = s.routes(opts)
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes(opts Options) chi.Router {
	r := chi.NewRouter()
	r.Use(requestID(s.logger))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/layout", s.handleLayout)
		r.Get("/scene", s.handleScene)
		r.Get("/lod", s.handleLOD)
		r.Get("/node/{name}", s.handleNode)
		r.Get("/enrichment/{name}", s.handleEnrichment)
		r.Get("/search", s.handleSearch)
		r.Post("/highlight", s.handleHighlight)
		r.Post("/reset", s.handleReset)
		r.Get("/events", s.handleEvents)
	})

	if opts.StaticDir != "" {
		fs := http.FileServer(http.Dir(opts.StaticDir))
		r.Handle("/*", fs)
	}
	return r
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ready":  s.app.Ready(),
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	res := s.app.Result()
	if res == nil {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInternal, "graph not built yet"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dataset":      res.Dataset,
		"dataset_hash": res.DatasetHash,
		"root":         res.Index.Root(),
		"max_depth":    res.Index.MaxDepth(),
		"orphans":      res.Index.Orphans(),
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	res := s.app.Result()
	if res == nil {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInternal, "graph not built yet"))
		return
	}
	writeJSON(w, http.StatusOK, res.Layout)
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	snap, err := s.app.SceneSnapshot()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLOD(w http.ResponseWriter, r *http.Request) {
	zoomParam := r.URL.Query().Get("zoom")
	zoom, err := strconv.ParseFloat(zoomParam, 64)
	if err != nil {
		s.writeError(w, apperrors.New(apperrors.ErrCodeInvalidZoom, "invalid zoom %q", zoomParam))
		return
	}
	visible, err := s.app.OnZoom(zoom)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"zoom":    zoom,
		"visible": visible,
	})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	detail, err := s.app.Node(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleEnrichment(w http.ResponseWriter, r *http.Request) {
	profile, err := s.app.Enrichment(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	resp, err := s.app.Highlight(HighlightRequest{
		Mode:  "search",
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req HighlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	resp, err := s.app.Highlight(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.app.ResetHighlight()
	writeJSON(w, http.StatusOK, map[string]any{"mode": "none"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	events, cancel := s.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := WriteSSE(w, ev); err != nil {
				return
			}
		}
	}
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors to HTTP statuses and emits a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidUser,
		apperrors.ErrCodeInvalidFilter, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidZoom, apperrors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeUserNotFound,
		apperrors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeDataMalformed, apperrors.ErrCodeNoRoot:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{
		"error": apperrors.UserMessage(err),
		"code":  string(apperrors.GetCode(err)),
	})
}
