// Package server implements the graphmorph preview server: an HTTP API that
// runs the pipeline on posted edge lists and serves the resulting artifacts.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gmerrors "github.com/matzehuels/graphmorph/pkg/errors"
	graphio "github.com/matzehuels/graphmorph/pkg/io"
	"github.com/matzehuels/graphmorph/pkg/layout"
	"github.com/matzehuels/graphmorph/pkg/observability"
	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// MaxRequestBytes bounds the size of a posted run.
const MaxRequestBytes = 8 << 20

// DefaultRunTimeout bounds a single pipeline run.
const DefaultRunTimeout = 2 * time.Minute

// Server serves the preview API.
type Server struct {
	runner   *pipeline.Runner
	store    *Store
	defaults pipeline.Options
	metrics  http.Handler
	logger   *log.Logger
	timeout  time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithStore replaces the default run store.
func WithStore(s *Store) Option { return func(srv *Server) { srv.store = s } }

// WithDefaults sets options applied to requests that leave them empty.
func WithDefaults(o pipeline.Options) Option { return func(srv *Server) { srv.defaults = o } }

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option { return func(srv *Server) { srv.metrics = h } }

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(srv *Server) { srv.logger = l } }

// WithRunTimeout bounds each pipeline run.
func WithRunTimeout(d time.Duration) Option { return func(srv *Server) { srv.timeout = d } }

// New creates a server around runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:  runner,
		logger:  log.New(io.Discard),
		timeout: DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewStore(0, 0)
	}
	return s
}

// Store returns the run store.
func (s *Server) Store() *Store { return s.store }

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/layouts", s.handleLayouts)
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/runs/{id}/artifacts/{name}", s.handleArtifact)
	})
	return r
}

// instrument reports requests to the HTTP hooks and the logger.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, dur)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "duration", dur)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "runs": s.store.Len()})
}

type layoutInfo struct {
	Name  string `json:"name"`
	Order int    `json:"display_order"`
}

func (s *Server) handleLayouts(w http.ResponseWriter, _ *http.Request) {
	out := make([]layoutInfo, len(layout.DisplayOrder))
	for i, n := range layout.DisplayOrder {
		out[i] = layoutInfo{Name: string(n), Order: i}
	}
	writeJSON(w, http.StatusOK, out)
}

// runRequest is the body of POST /api/v1/runs. Edges and nodes use the same
// shape as JSON input files.
type runRequest struct {
	Options pipeline.Options `json:"options"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	in, err := graphio.ReadJSON(bytes.NewReader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req runRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, gmerrors.Wrap(gmerrors.ErrCodeInvalidInput, err, "decode options"))
		return
	}
	opts := s.withDefaults(req.Options)

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.runner.Execute(ctx, in, opts)
	if err != nil {
		s.logger.Warn("run failed", "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	s.store.Set(r.Context(), res)

	w.Header().Set("Location", "/api/v1/runs/"+res.RunID)
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, gmerrors.New(gmerrors.ErrCodeNotFound, "run not found"))
		return
	}
	writeJSON(w, http.StatusOK, run.Result)
}

func (s *Server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	run, ok := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, gmerrors.New(gmerrors.ErrCodeNotFound, "run not found"))
		return
	}
	name := chi.URLParam(r, "name")
	data, ok := run.Result.Artifacts[name]
	if !ok {
		writeError(w, http.StatusNotFound, gmerrors.New(gmerrors.ErrCodeNotFound, "run has no %s artifact", name))
		return
	}

	w.Header().Set("Content-Type", contentType(name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// withDefaults fills request options from the server defaults.
func (s *Server) withDefaults(o pipeline.Options) pipeline.Options {
	d := s.defaults
	if len(o.Layouts) == 0 {
		o.Layouts = d.Layouts
	}
	if len(o.Formats) == 0 {
		o.Formats = d.Formats
	}
	if o.Seed == 0 {
		o.Seed = d.Seed
	}
	if len(o.Modules) == 0 {
		o.Modules = d.Modules
	}
	return o
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(gmerrors.GetCode(err))})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch gmerrors.GetCode(err) {
	case gmerrors.ErrCodeValidation, gmerrors.ErrCodeUnsupportedLayout,
		gmerrors.ErrCodeInvalidInput, gmerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case gmerrors.ErrCodeMissingCoordinate:
		return http.StatusUnprocessableEntity
	case gmerrors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func contentType(name string) string {
	switch ext := path.Ext("." + name); ext {
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".html":
		return "text/html; charset=utf-8"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully. Expired runs are swept once per run TTL.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	sweep := time.NewTicker(s.store.ttl)
	defer sweep.Stop()

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-sweep.C:
			if n := s.store.Cleanup(ctx); n > 0 {
				s.logger.Debug("expired runs removed", "count", n)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}
}
