package testdoubles

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/TomasJani/bookshelf/messagebus"
)

// MetricRecord is one captured metrics call. Duration is set for durations and Value for values.
type MetricRecord struct {
	Metric   string
	Duration time.Duration
	Value    float64
	Labels   map[string]string
}

// MetricsCollectorSpy captures metrics calls. It implements the contextual collector interface, so the
// bus always reaches it through the ...Context methods.
type MetricsCollectorSpy struct {
	mu        sync.Mutex
	durations []MetricRecord
	counters  []MetricRecord
	values    []MetricRecord
}

// NewMetricsCollectorSpy creates an empty MetricsCollectorSpy.
func NewMetricsCollectorSpy() *MetricsCollectorSpy {
	return &MetricsCollectorSpy{}
}

func (s *MetricsCollectorSpy) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations = append(s.durations, MetricRecord{Metric: metric, Duration: duration, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) IncrementCounter(metric string, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = append(s.counters, MetricRecord{Metric: metric, Value: 1, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordValue(metric string, value float64, labels map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = append(s.values, MetricRecord{Metric: metric, Value: value, Labels: maps.Clone(labels)})
}

func (s *MetricsCollectorSpy) RecordDurationContext(_ context.Context, metric string, duration time.Duration, labels map[string]string) {
	s.RecordDuration(metric, duration, labels)
}

func (s *MetricsCollectorSpy) IncrementCounterContext(_ context.Context, metric string, labels map[string]string) {
	s.IncrementCounter(metric, labels)
}

func (s *MetricsCollectorSpy) RecordValueContext(_ context.Context, metric string, value float64, labels map[string]string) {
	s.RecordValue(metric, value, labels)
}

// Counters returns the counter increments recorded for metric.
func (s *MetricsCollectorSpy) Counters(metric string) []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filterMetric(s.counters, metric)
}

// Durations returns the durations recorded for metric.
func (s *MetricsCollectorSpy) Durations(metric string) []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filterMetric(s.durations, metric)
}

// Values returns the values recorded for metric.
func (s *MetricsCollectorSpy) Values(metric string) []MetricRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return filterMetric(s.values, metric)
}

func filterMetric(records []MetricRecord, metric string) []MetricRecord {
	var out []MetricRecord

	for _, record := range records {
		if record.Metric == metric {
			out = append(out, record)
		}
	}

	return out
}

var _ messagebus.ContextualMetricsCollector = (*MetricsCollectorSpy)(nil)
