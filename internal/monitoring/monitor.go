package monitoring

import (
	"sync"
	"time"
)

// Monitor collects and provides operational metrics for the service
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	// Add system metrics
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// RecordSubmission records the outcome of an inspection submission
func (m *Monitor) RecordSubmission(status string) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	key := "submissions_" + status
	count, _ := m.metrics[key].(int)
	m.metrics[key] = count + 1
	m.metrics["last_submission_at"] = time.Now().Format(time.RFC3339)
}

// RecordIdentification records the outcome of an identification call
func (m *Monitor) RecordIdentification(success bool, duration time.Duration) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	key := "identifications_failed"
	if success {
		key = "identifications_succeeded"
	}
	count, _ := m.metrics[key].(int)
	m.metrics[key] = count + 1
	m.metrics["last_identification_ms"] = duration.Milliseconds()
}
