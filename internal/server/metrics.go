package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/waitgraph/pkg/observability"
)

var (
	// analysesTotal counts analyses by outcome.
	// Labels: result ("deadlock", "safe"), cached ("true", "false")
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waitgraph_analyses_total",
		Help: "Total analyses by result",
	}, []string{"result", "cached"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "waitgraph_analysis_duration_seconds",
		Help:    "Analysis duration including cache lookup",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
	})

	graphNodes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "waitgraph_graph_nodes",
		Help:    "Node count of analyzed graphs",
		Buckets: []float64{1, 10, 100, 1000, 10000},
	})

	cyclesFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "waitgraph_cycles_found",
		Help:    "Cycles reported per deadlocked analysis",
		Buckets: []float64{1, 2, 5, 10, 50},
	})

	renderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waitgraph_renders_total",
		Help: "Total renders by format and status",
	}, []string{"format", "status"})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "waitgraph_render_duration_seconds",
		Help:    "Render duration by format",
		Buckets: []float64{0.001, 0.01, 0.1, 1, 10},
	}, []string{"format"})

	cacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waitgraph_cache_events_total",
		Help: "Cache hits, misses and writes by key type",
	}, []string{"type", "event"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waitgraph_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "waitgraph_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Metrics implements the observability hooks on top of Prometheus
// collectors registered with the default registry.
type Metrics struct{}

// RegisterMetrics installs Metrics as the process-wide hooks.
func RegisterMetrics() *Metrics {
	m := &Metrics{}
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
	return m
}

func (*Metrics) OnAnalyzeStart(_ context.Context, nodeCount, _ int) {
	graphNodes.Observe(float64(nodeCount))
}

func (*Metrics) OnAnalyzeComplete(_ context.Context, res observability.AnalyzeResult, d time.Duration, _ error) {
	result := "safe"
	if res.Deadlocked {
		result = "deadlock"
		cyclesFound.Observe(float64(res.Cycles))
	}
	analysesTotal.WithLabelValues(result, strconv.FormatBool(res.Cached)).Inc()
	analysisDuration.Observe(d.Seconds())
}

func (*Metrics) OnRenderStart(context.Context, string) {}

func (*Metrics) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	renderTotal.WithLabelValues(format, status).Inc()
	renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (*Metrics) OnCacheHit(_ context.Context, keyType string) {
	cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (*Metrics) OnCacheMiss(_ context.Context, keyType string) {
	cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (*Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (*Metrics) OnRequest(context.Context, string, string) {}

func (*Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
