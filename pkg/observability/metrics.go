package observability

import (
	"strings"
	"sync"
	"time"
)

// Metrics records counters, gauges and distributions. Implementations must
// be safe for concurrent use.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is one metric label.
type Tag struct {
	Key   string
	Value string
}

func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

type series struct {
	count   int64
	gauge   float64
	samples []float64
	timings []time.Duration
}

// InMemoryMetrics keeps every series in memory. Tests read it back through
// the Get methods, passing tags in the order they were recorded with.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	series map[string]*series
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: make(map[string]*series)}
}

func (m *InMemoryMetrics) update(name string, tags []Tag, fn func(*series)) {
	key := seriesKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.series[key]
	if !ok {
		s = &series{}
		m.series[key] = s
	}
	fn(s)
}

func (m *InMemoryMetrics) read(name string, tags []Tag) series {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.series[seriesKey(name, tags)]; ok {
		return *s
	}
	return series{}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.count += value })
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.gauge = value })
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.samples = append(s.samples, value) })
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.update(name, tags, func(s *series) { s.timings = append(s.timings, duration) })
}

func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	return m.read(name, tags).count
}

func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	return m.read(name, tags).gauge
}

func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	return append([]float64(nil), m.read(name, tags).samples...)
}

func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	return append([]time.Duration(nil), m.read(name, tags).timings...)
}

// seriesKey renders name:k1=v1:k2=v2.
func seriesKey(name string, tags []Tag) string {
	var b strings.Builder
	b.WriteString(name)
	for _, t := range tags {
		b.WriteByte(':')
		b.WriteString(t.Key)
		b.WriteByte('=')
		b.WriteString(t.Value)
	}
	return b.String()
}

// Metric names. Prometheus exports them with dots replaced by underscores.
const (
	MetricOperationTotal    = "folio.operation.total"
	MetricOperationDuration = "folio.operation.duration"
	MetricOperationErrors   = "folio.operation.errors"

	MetricCapabilityCalls       = "folio.capability.calls"
	MetricCapabilityErrors      = "folio.capability.errors"
	MetricCapabilityDuration    = "folio.capability.duration"
	MetricCapabilityCircuitOpen = "folio.capability.circuit_open"
	MetricCapabilityMisses      = "folio.capability.misses"

	MetricSectionsRendered = "folio.sections.rendered"
	MetricSectionsSkipped  = "folio.sections.skipped"
	MetricPageCacheHits    = "folio.page_cache.hits"
	MetricPageCacheMisses  = "folio.page_cache.misses"

	MetricEventsPublished = "folio.events.published"
	MetricEventsConsumed  = "folio.events.consumed"
)
