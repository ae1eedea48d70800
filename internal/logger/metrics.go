package logger

import (
	"sync"
	"time"
)

// Metrics holds counters, gauges and timing samples. Safe for concurrent use.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string][]time.Duration
}

var stdMetrics = NewMetrics()

// NewMetrics creates an empty tracker
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	m.counters[name]++
	m.mu.Unlock()
}

// Counter returns the current value of a counter, zero if never incremented
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	m.gauges[name] = value
	m.mu.Unlock()
}

func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	m.timings[name] = append(m.timings[name], d)
	m.mu.Unlock()
}

// GetSnapshot copies the current values under the keys "counters", "gauges"
// and "timings". Each timing is summarised as count, total, average, min and
// max, with durations formatted as strings.
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	counters := make(map[string]int64, len(m.counters))
	for name, v := range m.counters {
		counters[name] = v
	}

	gauges := make(map[string]float64, len(m.gauges))
	for name, v := range m.gauges {
		gauges[name] = v
	}

	timings := make(map[string]map[string]interface{}, len(m.timings))
	for name, samples := range m.timings {
		if len(samples) > 0 {
			timings[name] = summarize(samples)
		}
	}

	return map[string]interface{}{
		"counters": counters,
		"gauges":   gauges,
		"timings":  timings,
	}
}

func summarize(samples []time.Duration) map[string]interface{} {
	lo, hi := samples[0], samples[0]
	var total time.Duration
	for _, d := range samples {
		total += d
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return map[string]interface{}{
		"count":   len(samples),
		"total":   total.String(),
		"average": (total / time.Duration(len(samples))).String(),
		"min":     lo.String(),
		"max":     hi.String(),
	}
}

// DefaultMetrics returns the tracker behind the package-level functions
func DefaultMetrics() *Metrics {
	return stdMetrics
}

func IncrCounter(name string) { stdMetrics.IncrCounter(name) }

func SetGauge(name string, value float64) { stdMetrics.SetGauge(name, value) }

func RecordTiming(name string, d time.Duration) { stdMetrics.RecordTiming(name, d) }

// GetMetricsSnapshot snapshots the default tracker
func GetMetricsSnapshot() map[string]interface{} {
	return stdMetrics.GetSnapshot()
}
