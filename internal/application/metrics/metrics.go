package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the instructor-application module.
type Metrics struct {
	ApplicationsCreated   prometheus.Counter
	SubmissionsIncomplete prometheus.Counter
	TransitionsTotal      *prometheus.CounterVec
	TransitionConflicts   prometheus.Counter
	SubmitDuration        prometheus.Histogram
}

// New creates a Metrics instance with all application module metrics registered.
func New() *Metrics {
	return &Metrics{
		ApplicationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scouthub_instructor_applications_created_total",
			Help: "Total number of instructor applications created",
		}),
		SubmissionsIncomplete: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scouthub_instructor_submissions_incomplete_total",
			Help: "Submit attempts rejected for unfulfilled mandatory requirements",
		}),
		TransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scouthub_instructor_application_transitions_total",
			Help: "Committed application status transitions by target status",
		}, []string{"target"}),
		TransitionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scouthub_instructor_application_transition_conflicts_total",
			Help: "Status transitions lost to a concurrent writer",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scouthub_instructor_application_submit_duration_seconds",
			Help:    "Duration of submit operations (fulfillment check critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveSubmit records the duration of a submit operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSubmit(start time.Time) {
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

// IncrementTransition records a committed transition to the target status.
func (m *Metrics) IncrementTransition(target string) {
	m.TransitionsTotal.WithLabelValues(target).Inc()
}
