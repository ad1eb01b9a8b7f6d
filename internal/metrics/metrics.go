package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics bundles the engine's instrumentation on a private registry so tests
// never trip duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	Requests       *prometheus.CounterVec
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	Clarifications prometheus.Counter
	AnalyzerTime   *prometheus.HistogramVec
}

// New creates the metric set on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfsight_requests_total",
		Help: "Answered questions by detected intent.",
	}, []string{"intent"})
	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelfsight_mart_cache_hits_total",
		Help: "Mart cache hits.",
	})
	m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelfsight_mart_cache_misses_total",
		Help: "Mart cache misses (including negative rebuilds).",
	})
	m.Clarifications = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shelfsight_clarifications_total",
		Help: "Responses that asked back instead of answering.",
	})
	m.AnalyzerTime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shelfsight_analyzer_seconds",
		Help:    "Analyzer execution time by analyzer id.",
		Buckets: prometheus.DefBuckets,
	}, []string{"analyzer"})

	m.registry.MustRegister(m.Requests, m.CacheHits, m.CacheMisses, m.Clarifications, m.AnalyzerTime)
	return m
}

// Registry exposes the underlying registry for the HTTP /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Summary gathers the registry into a flat name -> value view for the
// /metrics/summary endpoint and for tests.
func (m *Metrics) Summary() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			out[metricKey(fam, metric)] += metricValue(fam, metric)
		}
	}
	return out, nil
}

func metricKey(fam *dto.MetricFamily, m *dto.Metric) string {
	key := fam.GetName()
	labels := m.GetLabel()
	if len(labels) == 0 {
		return key
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, l.GetName()+"="+l.GetValue())
	}
	sort.Strings(parts)
	for _, p := range parts {
		key += ";" + p
	}
	return key
}

func metricValue(fam *dto.MetricFamily, m *dto.Metric) float64 {
	switch fam.GetType() {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}
