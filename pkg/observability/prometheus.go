package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flowlens"

// Metrics implements every hook interface on top of Prometheus collectors.
// Each Metrics owns its registry so tests and embedded servers do not share
// global state.
type Metrics struct {
	registry *prometheus.Registry

	files        *prometheus.CounterVec
	fileDuration prometheus.Histogram
	parsed       *prometheus.CounterVec
	nodes        prometheus.Histogram
	diffNodes    *prometheus.CounterVec
	renders      *prometheus.CounterVec
	renderTime   *prometheus.HistogramVec
	cacheOps     *prometheus.CounterVec
	cacheBytes   prometheus.Counter
	requests     *prometheus.CounterVec
	requestTime  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Flow files processed, by outcome.",
		}, []string{"outcome"}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "file_duration_seconds",
			Help:      "Time spent processing one flow file.",
			Buckets:   prometheus.DefBuckets,
		}),
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parses_total",
			Help:      "Flow versions parsed, by outcome.",
		}, []string{"outcome"}),
		nodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flow_nodes",
			Help:      "Number of nodes per parsed flow.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		diffNodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diff_nodes_total",
			Help:      "Nodes tagged by the diff engine, by status.",
		}, []string{"status"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Diagrams rendered, by tool, format and outcome.",
		}, []string{"tool", "format", "outcome"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering one diagram.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool", "format"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes, by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.files, m.fileDuration, m.parsed, m.nodes, m.diffNodes,
		m.renders, m.renderTime, m.cacheOps, m.cacheBytes,
		m.requests, m.requestTime,
	)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the current metrics to path for the node_exporter
// textfile collector. CI runs use it since nothing scrapes them.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) OnFileStart(context.Context, string) {}

func (m *Metrics) OnFileComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.files.WithLabelValues(outcome(err)).Inc()
	m.fileDuration.Observe(d.Seconds())
}

func (m *Metrics) OnParseComplete(_ context.Context, _ string, nodes, _ int, _ time.Duration, err error) {
	m.parsed.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.nodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnDiffComplete(_ context.Context, _ string, added, deleted, modified int) {
	m.diffNodes.WithLabelValues("added").Add(float64(added))
	m.diffNodes.WithLabelValues("deleted").Add(float64(deleted))
	m.diffNodes.WithLabelValues("modified").Add(float64(modified))
}

func (m *Metrics) OnRenderComplete(_ context.Context, tool, format string, d time.Duration, err error) {
	m.renders.WithLabelValues(tool, format, outcome(err)).Inc()
	m.renderTime.WithLabelValues(tool, format).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
