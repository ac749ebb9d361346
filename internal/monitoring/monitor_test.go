package monitoring

import (
	"testing"
	"time"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordSubmission(t *testing.T) {
	m := NewMonitor()

	m.RecordSubmission("Safe")
	m.RecordSubmission("Safe")
	m.RecordSubmission("Action Required")

	metrics := m.GetMetrics()

	value, exists := metrics["submissions_Safe"]
	if !exists {
		t.Fatalf("Expected 'submissions_Safe' to be present in metrics, but it was not")
	}
	if value != 2 {
		t.Errorf("Expected 'submissions_Safe' to be 2, but got %v", value)
	}

	value, exists = metrics["submissions_Action Required"]
	if !exists {
		t.Fatalf("Expected 'submissions_Action Required' to be present in metrics, but it was not")
	}
	if value != 1 {
		t.Errorf("Expected 'submissions_Action Required' to be 1, but got %v", value)
	}

	// Check timestamp is recorded
	_, exists = metrics["last_submission_at"]
	if !exists {
		t.Errorf("Expected 'last_submission_at' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordIdentification(t *testing.T) {
	m := NewMonitor()

	m.RecordIdentification(true, 150*time.Millisecond)
	m.RecordIdentification(false, 80*time.Millisecond)

	metrics := m.GetMetrics()

	value, exists := metrics["identifications_succeeded"]
	if !exists {
		t.Fatalf("Expected 'identifications_succeeded' to be present in metrics, but it was not")
	}
	if value != 1 {
		t.Errorf("Expected 'identifications_succeeded' to be 1, but got %v", value)
	}

	value, exists = metrics["identifications_failed"]
	if !exists {
		t.Fatalf("Expected 'identifications_failed' to be present in metrics, but it was not")
	}
	if value != 1 {
		t.Errorf("Expected 'identifications_failed' to be 1, but got %v", value)
	}

	value, exists = metrics["last_identification_ms"]
	if !exists {
		t.Fatalf("Expected 'last_identification_ms' to be present in metrics, but it was not")
	}
	if value != int64(80) {
		t.Errorf("Expected 'last_identification_ms' to be 80, but got %v", value)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	m.Reset()

	metrics := m.GetMetrics()

	// Our test metric should be gone, but uptime should still be there
	_, exists := metrics["test_metric"]
	if exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}

	// Uptime should still be present (it's added on GetMetrics call)
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}
