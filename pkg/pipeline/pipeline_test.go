package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/waitgraph/pkg/cache"
	"github.com/matzehuels/waitgraph/pkg/errors"
	"github.com/matzehuels/waitgraph/pkg/io"
	"github.com/matzehuels/waitgraph/pkg/observability"
)

const deadlockJSON = `{
  "nodes": [
    {"id": "P1", "kind": "process"},
    {"id": "P2", "kind": "process"},
    {"id": "RX", "kind": "resource"},
    {"id": "RY", "kind": "resource"}
  ],
  "edges": [
    {"source": "RX", "target": "P1"},
    {"source": "P1", "target": "RY"},
    {"source": "RY", "target": "P2"},
    {"source": "P2", "target": "RX"}
  ]
}`

var fixedNow = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

func quietLogger() *log.Logger {
	return log.NewWithOptions(&strings.Builder{}, log.Options{Level: log.FatalLevel})
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "pdf"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateForLoad(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"nothing", Options{}, errors.ErrCodeInvalidInput},
		{"data without format", Options{Data: []byte("{}")}, errors.ErrCodeInvalidInput},
		{"bad extension", Options{Path: "graph.xml"}, errors.ErrCodeInvalidFormat},
		{"data", Options{Data: []byte("{}"), InputFormat: io.FormatJSON}, ""},
		{"path", Options{Path: "graph.hcl"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLoad()
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateForLoad() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateForLoad() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteFromData(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{
		Data:        []byte(deadlockJSON),
		InputFormat: io.FormatJSON,
		Formats:     []string{FormatDOT, FormatJSON},
		Now:         fixedNow,
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if !res.Report.IsDeadlocked {
		t.Error("Execute() report should be deadlocked")
	}
	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 4 {
		t.Errorf("Stats = %+v, want 4 nodes 4 edges", res.Stats)
	}
	if len(res.GraphHash) != 64 {
		t.Errorf("GraphHash = %q, want 64 hex chars", res.GraphHash)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatDOT]), "digraph G {") {
		t.Errorf("dot artifact = %s", res.Artifacts[FormatDOT])
	}

	var b Bundle
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &b); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(b.Graph.Nodes) != 4 || !b.Report.IsDeadlocked {
		t.Errorf("json artifact bundle = %+v", b)
	}
}

func TestExecuteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.json")
	if err := os.WriteFile(path, []byte(deadlockJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Path: path})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("Execute() without formats rendered %d artifacts", len(res.Artifacts))
	}
	if got := res.Report.DeadlockedProcessIDs; len(got) != 2 {
		t.Errorf("DeadlockedProcessIDs = %v, want 2 entries", got)
	}
}

func TestExecuteRejectsBadFormat(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(context.Background(), Options{
		Data:        []byte(deadlockJSON),
		InputFormat: io.FormatJSON,
		Formats:     []string{"png"},
	})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Execute() error = %v, want INVALID_FORMAT", err)
	}
}

func TestAnalyzeCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	g, err := io.DecodeGraph([]byte(deadlockJSON), io.FormatJSON, "")
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Now: fixedNow}

	first, hash1, hit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil || hit {
		t.Fatalf("first AnalyzeWithCacheInfo() hit = %v, err = %v", hit, err)
	}
	second, hash2, hit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil || !hit {
		t.Fatalf("second AnalyzeWithCacheInfo() hit = %v, err = %v", hit, err)
	}
	if hash1 != hash2 {
		t.Errorf("graph hash changed: %s vs %s", hash1, hash2)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("cached report differs:\n%s\n%s", a, b)
	}

	_, _, hit, _ = r.AnalyzeWithCacheInfo(ctx, g, Options{Now: fixedNow, Refresh: true})
	if hit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestRenderCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()
	opts := Options{
		Data:        []byte(deadlockJSON),
		InputFormat: io.FormatJSON,
		Formats:     []string{FormatDOT},
		Now:         fixedNow,
	}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.AnalyzeHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want no hits", first.CacheInfo)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.AnalyzeHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if string(first.Artifacts[FormatDOT]) != string(second.Artifacts[FormatDOT]) {
		t.Error("cached DOT differs from rendered DOT")
	}

	opts.Detailed = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("different render options should miss the artifact cache")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	results []observability.AnalyzeResult
}

func (h *recordingHooks) OnAnalyzeComplete(_ context.Context, res observability.AnalyzeResult, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, res)
}

func TestAnalyzeEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	g, _ := io.DecodeGraph([]byte(deadlockJSON), io.FormatJSON, "")
	r := NewRunner(nil, nil, quietLogger())
	if _, err := r.Analyze(context.Background(), g, Options{}); err != nil {
		t.Fatal(err)
	}

	if len(hooks.results) != 1 {
		t.Fatalf("OnAnalyzeComplete called %d times, want 1", len(hooks.results))
	}
	got := hooks.results[0]
	if !got.Deadlocked || got.Processes != 2 || got.Cycles != 1 || got.Cached {
		t.Errorf("AnalyzeResult = %+v", got)
	}
}
