// Package pipeline runs the load -> analyze -> render sequence shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Load: decode a graph from a file path or from in-memory bytes
//  2. Analyze: run [deadlock.Detect] and produce a report
//  3. Render: produce DOT, SVG or JSON artifacts with the deadlock highlighted
//
// Analyze and Render consult the [cache.Cache] first. Both are keyed by the
// hash of the canonical graph JSON, so repeated requests for the same graph
// skip the work entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "scenario.hcl",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waitgraph/pkg/deadlock"
	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/io"
	"github.com/matzehuels/waitgraph/pkg/rag"
)

// Format constants for render outputs.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats lists the supported render formats in display order.
var ValidFormats = []string{FormatDOT, FormatSVG, FormatJSON}

// ValidateFormat checks that format is a supported render format.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats validates each format in the slice. An empty slice is valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Load options. Data takes precedence over Path; InputFormat is
	// required with Data and inferred from the extension for Path.
	Path        string    `json:"path,omitempty"`
	Data        []byte    `json:"-"`
	InputFormat io.Format `json:"input_format,omitempty"`

	// Render options. No formats means analyze only.
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Now    func() time.Time `json:"-"`
	Logger *log.Logger      `json:"-"`
}

// ValidateForLoad checks the load options.
func (o Options) ValidateForLoad() error {
	if len(o.Data) > 0 {
		if o.InputFormat == "" {
			return errors.New(errors.ErrCodeInvalidInput, "input format is required for in-memory graphs")
		}
		return nil
	}
	if o.Path == "" {
		return errors.New(errors.ErrCodeInvalidInput, "either a path or graph data is required")
	}
	return errors.ValidateGraphPath(o.Path, io.Extensions())
}

// ValidateForRender checks the render options.
func (o Options) ValidateForRender() error {
	return ValidateFormats(o.Formats)
}

// detectOptions converts runtime options into deadlock options.
func (o Options) detectOptions() []deadlock.Option {
	if o.Now == nil {
		return nil
	}
	return []deadlock.Option{deadlock.WithClock(o.Now)}
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded input graph.
	Graph rag.Graph

	// GraphHash is the content hash used for cache keys and API responses.
	GraphHash string

	// Report is the deadlock report, possibly read from cache.
	Report *deadlock.Report

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalyzeHit bool
	RenderHit  bool
}
