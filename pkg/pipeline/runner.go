package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waitgraph/pkg/cache"
	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/observability"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner holds no per-run state; multiple goroutines can share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load -> analyze -> render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	opts.Logger.Debug("loaded graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	rep, hash, hit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Report = rep
	result.GraphHash = hash
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.AnalyzeHit = hit

	opts.Logger.Info("analyzed graph",
		"deadlocked", rep.IsDeadlocked,
		"processes", len(rep.DeadlockedProcessIDs),
		"cycles", len(rep.Cycles),
		"cached", hit,
		"duration", result.Stats.AnalyzeTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, hash, rep, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GraphHash returns the content hash of g used in cache keys.
func GraphHash(g rag.Graph) (string, error) {
	return cache.HashJSON(g)
}

// AnalyzeWithCacheInfo returns the report for g together with the graph hash
// and whether the report came from cache.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g rag.Graph, opts Options) (*deadlock.Report, string, bool, error) {
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	hash, err := GraphHash(g)
	if err != nil {
		return nil, "", false, err
	}
	cacheKey := r.Keyer.ReportKey(hash)

	start := time.Now()
	hooks.OnAnalyzeStart(ctx, g.NodeCount(), g.EdgeCount())

	if !opts.Refresh {
		if rep, ok := r.cachedReport(ctx, cacheKey); ok {
			hooks.OnAnalyzeComplete(ctx, analyzeResult(rep, true), time.Since(start), nil)
			return rep, hash, true, nil
		}
	}

	rep := deadlock.Detect(g, opts.detectOptions()...).Report

	if data, err := json.Marshal(rep); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ReportTTL); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", len(data))
		}
	}

	hooks.OnAnalyzeComplete(ctx, analyzeResult(rep, false), time.Since(start), nil)
	return rep, hash, false, nil
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and keeps only the report.
func (r *Runner) Analyze(ctx context.Context, g rag.Graph, opts Options) (*deadlock.Report, error) {
	rep, _, _, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	return rep, err
}

func (r *Runner) cachedReport(ctx context.Context, key string) (*deadlock.Report, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	var rep deadlock.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		observability.Cache().OnCacheMiss(ctx, "report")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "report")
	return &rep, true
}

func analyzeResult(rep *deadlock.Report, cached bool) observability.AnalyzeResult {
	return observability.AnalyzeResult{
		Deadlocked: rep.IsDeadlocked,
		Processes:  len(rep.DeadlockedProcessIDs),
		Cycles:     len(rep.Cycles),
		Cached:     cached,
	}
}

// RenderWithCacheInfo renders every requested format, serving all of them
// from cache when possible, and reports whether it did.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g rag.Graph, graphHash string, rep *deadlock.Report, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if graphHash == "" {
		h, err := GraphHash(g)
		if err != nil {
			return nil, false, err
		}
		graphHash = h
	}

	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(graphHash, cache.ArtifactKeyOpts{Format: format, Detailed: opts.Detailed})
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, keyFor(format))
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		start := time.Now()
		hooks.OnRenderStart(ctx, format)
		out, err := Render(ctx, g, rep, Options{Formats: []string{format}, Detailed: opts.Detailed})
		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, false, err
		}
		rendered[format] = out[format]
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, keyFor(format), data, cache.ArtifactTTL); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
