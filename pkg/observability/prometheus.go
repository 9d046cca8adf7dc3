package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a dedicated Prometheus registry.
// Each metric name gets one vector whose label names are fixed by the first
// call; later calls map their tags onto those labels and leave unknown
// labels empty.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	labels     map[string][]string
}

// NewPrometheusMetrics creates a collector with Go runtime and process metrics registered.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:   reg,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		labels:     make(map[string][]string),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: promName(name),
			Help: name,
		}, m.labelNames(name, tags))
		m.registry.MustRegister(vec)
		m.counters[name] = vec
	}
	vec.With(m.labelValues(name, tags)).Add(float64(value))
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vec, ok := m.gauges[name]
	if !ok {
		vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: promName(name),
			Help: name,
		}, m.labelNames(name, tags))
		m.registry.MustRegister(vec)
		m.gauges[name] = vec
	}
	vec.With(m.labelValues(name, tags)).Set(value)
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.observe(name, "", value, tags)
}

// Timing records the duration in seconds on a histogram suffixed with _seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.observe(name, "_seconds", duration.Seconds(), tags)
}

func (m *PrometheusMetrics) observe(name, suffix string, value float64, tags []Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := name + suffix
	vec, ok := m.histograms[key]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    promName(name) + suffix,
			Help:    name,
			Buckets: prometheus.DefBuckets,
		}, m.labelNames(key, tags))
		m.registry.MustRegister(vec)
		m.histograms[key] = vec
	}
	vec.With(m.labelValues(key, tags)).Observe(value)
}

// labelNames fixes the label set for a metric on first use. Caller holds mu.
func (m *PrometheusMetrics) labelNames(name string, tags []Tag) []string {
	if names, ok := m.labels[name]; ok {
		return names
	}
	names := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		label := promName(t.Key)
		if !seen[label] {
			seen[label] = true
			names = append(names, label)
		}
	}
	sort.Strings(names)
	m.labels[name] = names
	return names
}

func (m *PrometheusMetrics) labelValues(name string, tags []Tag) prometheus.Labels {
	names := m.labels[name]
	values := make(prometheus.Labels, len(names))
	for _, n := range names {
		values[n] = ""
	}
	for _, t := range tags {
		label := promName(t.Key)
		if _, ok := values[label]; ok {
			values[label] = t.Value
		}
	}
	return values
}

func promName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
