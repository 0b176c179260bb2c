// Package metrics provides the Prometheus-backed implementation of the
// ports.MetricsCollector interface for the interview pipeline.
package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-parley/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector records pipeline metrics through a Prometheus
// registry. Collectors are created lazily per metric name with a stable
// label-key order.
type PrometheusCollector struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusCollector creates a collector registering against the given
// registerer. A nil registerer uses the default registry.
func NewPrometheusCollector(registerer prometheus.Registerer) *PrometheusCollector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusCollector{
		registerer: registerer,
		counters:   map[string]*prometheus.CounterVec{},
		gauges:     map[string]*prometheus.GaugeVec{},
		histograms: map[string]*prometheus.HistogramVec{},
	}
}

// RecordLatency records a duration observation in seconds.
func (c *PrometheusCollector) RecordLatency(name string, duration time.Duration, labels map[string]string) {
	c.RecordHistogram(name, duration.Seconds(), labels)
}

// RecordCounter adds value to the named counter.
func (c *PrometheusCollector) RecordCounter(name string, value float64, labels map[string]string) {
	keys, values := splitLabels(labels)

	c.mu.Lock()
	vec, ok := c.counters[name]
	if !ok {
		vec = promauto.With(c.registerer).NewCounterVec(
			prometheus.CounterOpts{Name: name, Help: name}, keys)
		c.counters[name] = vec
	}
	c.mu.Unlock()

	vec.WithLabelValues(values...).Add(value)
}

// RecordGauge sets the named gauge.
func (c *PrometheusCollector) RecordGauge(name string, value float64, labels map[string]string) {
	keys, values := splitLabels(labels)

	c.mu.Lock()
	vec, ok := c.gauges[name]
	if !ok {
		vec = promauto.With(c.registerer).NewGaugeVec(
			prometheus.GaugeOpts{Name: name, Help: name}, keys)
		c.gauges[name] = vec
	}
	c.mu.Unlock()

	vec.WithLabelValues(values...).Set(value)
}

// RecordHistogram records an observation in the named histogram.
func (c *PrometheusCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	keys, values := splitLabels(labels)

	c.mu.Lock()
	vec, ok := c.histograms[name]
	if !ok {
		vec = promauto.With(c.registerer).NewHistogramVec(
			prometheus.HistogramOpts{Name: name, Help: name, Buckets: prometheus.DefBuckets}, keys)
		c.histograms[name] = vec
	}
	c.mu.Unlock()

	vec.WithLabelValues(values...).Observe(value)
}

// splitLabels returns label keys sorted alphabetically with values in the
// matching order, so a metric's label schema is stable across calls.
func splitLabels(labels map[string]string) ([]string, []string) {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = labels[k]
	}
	return keys, values
}
