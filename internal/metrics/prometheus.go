// Package metrics exports rewrite and upstream-call metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quilllink"

// Outcome labels for rewrite requests.
const (
	OutcomeSuccess     = "success"
	OutcomeInvalid     = "invalid"
	OutcomeUpstream    = "upstream_error"
	OutcomeEmptyOutput = "empty_output"
)

// Exporter holds the collectors on its own registry.
type Exporter struct {
	registry *prometheus.Registry

	rewriteRequests  *prometheus.CounterVec
	upstreamAttempts *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	inflight         prometheus.Gauge
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}
}

// NewExporter creates and registers all collectors.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{
		registry: registry,
		rewriteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_requests_total",
			Help:      "Rewrite requests by outcome.",
		}, []string{"outcome"}),
		upstreamAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_attempts_total",
			Help:      "Upstream model attempts by result.",
		}, []string{"result"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_seconds",
			Help:      "Latency of single upstream model attempts.",
			Buckets:   cfg.LatencyBuckets,
		}, []string{"result"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "upstream_inflight",
			Help:      "Upstream calls currently holding a worker slot.",
		}),
	}

	registry.MustRegister(e.rewriteRequests, e.upstreamAttempts, e.upstreamLatency, e.inflight)
	return e
}

// RecordRewrite counts one finished rewrite request.
func (e *Exporter) RecordRewrite(outcome string) {
	if e == nil {
		return
	}
	e.rewriteRequests.WithLabelValues(outcome).Inc()
}

// RecordAttempt counts one upstream attempt and observes its latency.
func (e *Exporter) RecordAttempt(success bool, d time.Duration) {
	if e == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	e.upstreamAttempts.WithLabelValues(result).Inc()
	e.upstreamLatency.WithLabelValues(result).Observe(d.Seconds())
}

// AddInflight adjusts the in-flight gauge.
func (e *Exporter) AddInflight(delta float64) {
	if e == nil {
		return
	}
	e.inflight.Add(delta)
}

// Handler returns the /metrics handler for this registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
