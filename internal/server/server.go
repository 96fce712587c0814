// Package server exposes deadlock analysis over HTTP.
//
// Routes:
//
//	POST /v1/analyze            graph body -> {id, graphHash, cached, report}
//	GET  /v1/analyses/{id}      stored record
//	POST /v1/render?format=svg  graph body -> artifact bytes
//	GET  /healthz               liveness and build info
//	GET  /metrics               Prometheus exposition
//
// Request bodies are JSON graphs by default; ?input=yaml|toml|hcl selects
// another decoder. Errors are returned as {"code": ..., "message": ...}.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	goio "io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/waitgraph/pkg/buildinfo"
	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/io"
	"github.com/matzehuels/waitgraph/pkg/observability"
	"github.com/matzehuels/waitgraph/pkg/pipeline"
	"github.com/matzehuels/waitgraph/pkg/rag"
	"github.com/matzehuels/waitgraph/pkg/store"
)

// Server holds the dependencies shared by all handlers.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	now     func() time.Time
	maxBody int64
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the time source for report timestamps and record times.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithMaxBodyBytes caps request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBody = n }
}

// New creates a Server. A nil store falls back to a MemoryStore.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger, opts ...Option) *Server {
	if st == nil {
		st = store.NewMemoryStore(0)
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		store:   st,
		logger:  logger,
		now:     time.Now,
		maxBody: 4 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the chi router serving all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Post("/render", s.handleRender)
	})
	return r
}

// =============================================================================
// Handlers
// =============================================================================

// analyzeResponse is the body returned by POST /v1/analyze.
type analyzeResponse struct {
	ID        string           `json:"id"`
	GraphHash string           `json:"graphHash"`
	Cached    bool             `json:"cached"`
	Report    *deadlock.Report `json:"report"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := s.decodeGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rep, hash, hit, err := s.runner.AnalyzeWithCacheInfo(ctx, g, pipeline.Options{Now: s.now, Logger: s.logger})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec := store.NewRecord(hash, rep, s.now())
	if err := s.store.Put(ctx, rec); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store analysis"))
		return
	}

	writeJSON(w, http.StatusCreated, analyzeResponse{
		ID:        rec.ID,
		GraphHash: hash,
		Cached:    hit,
		Report:    rep,
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRecordID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, store.ErrNotFound) {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeNotFound, err, "analysis %s not found", id))
		return
	}
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "load analysis"))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))

	g, err := s.decodeGraph(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := pipeline.Options{
		Formats:  []string{format},
		Detailed: detailed,
		Now:      s.now,
		Logger:   s.logger,
	}
	rep, hash, _, err := s.runner.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, hit, err := s.runner.RenderWithCacheInfo(ctx, g, hash, rep, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Graph-Hash", hash)
	w.Header().Set("X-Cache", cacheHeader(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Current(),
	})
}

// =============================================================================
// Helpers
// =============================================================================

// decodeGraph reads the request body as a graph in the ?input format.
func (s *Server) decodeGraph(r *http.Request) (rag.Graph, error) {
	format := io.FormatJSON
	if in := r.URL.Query().Get("input"); in != "" {
		format = io.Format(in)
	}

	body, err := goio.ReadAll(http.MaxBytesReader(nil, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return rag.Graph{}, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return rag.Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	return io.DecodeGraph(body, format, "request."+string(format))
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err)
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

// logRequests logs each request and reports it to the HTTP hooks under its
// route pattern, so metrics are not split per record ID.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))

		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Run
// =============================================================================

// Run serves h on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg Config, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}
