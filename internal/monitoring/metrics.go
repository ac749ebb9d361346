package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus collectors for the inspection workflow
var (
	inspectionsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspections_submitted_total",
			Help: "Inspection records persisted, by overall status",
		},
		[]string{"status"},
	)

	submissionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_submission_failures_total",
			Help: "Failed submission attempts, by failure kind",
		},
		[]string{"kind"},
	)

	identificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "equipment_identification_duration_seconds",
			Help:    "Time taken by the image identification model",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	identificationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "equipment_identification_failures_total",
			Help: "Identification calls that failed or returned unusable output",
		},
	)

	checklistFetchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "checklist_fetch_failures_total",
			Help: "Checklist repository queries that failed",
		},
	)
)

func init() {
	prometheus.MustRegister(
		inspectionsSubmitted,
		submissionFailures,
		identificationDuration,
		identificationFailures,
		checklistFetchFailures,
	)
}

// ObserveSubmission counts a persisted inspection record
func ObserveSubmission(status string) {
	inspectionsSubmitted.WithLabelValues(status).Inc()
}

// ObserveSubmissionFailure counts a failed submission attempt
func ObserveSubmissionFailure(kind string) {
	submissionFailures.WithLabelValues(kind).Inc()
}

// ObserveIdentification records one identification call
func ObserveIdentification(duration time.Duration, err error) {
	identificationDuration.Observe(duration.Seconds())
	if err != nil {
		identificationFailures.Inc()
	}
}

// ObserveChecklistFetchFailure counts a failed checklist fetch
func ObserveChecklistFetchFailure() {
	checklistFetchFailures.Inc()
}
