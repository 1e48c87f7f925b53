package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	plannerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_operations_total",
			Help: "Total planner mutating operations",
		},
		[]string{"operation", "status"},
	)

	guestCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "planner_guest_count",
			Help: "Current guest count per event",
		},
		[]string{"event_id"},
	)

	budgetSpent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "planner_budget_spent",
			Help: "Current spent budget per event",
		},
		[]string{"event_id"},
	)

	paymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planner_payment_verifications_total",
			Help: "Split payment verification outcomes",
		},
		[]string{"outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planner_operation_duration_seconds",
			Help:    "Duration of planner operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation"},
	)
)

// TrackOperation records one mutating operation outcome.
func TrackOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	plannerOperations.WithLabelValues(operation, outcome).Inc()
}

// TrackEvent refreshes the per-event gauges after a committed
// operation.
func TrackEvent(eventID string, guests int, spent float64) {
	guestCount.WithLabelValues(eventID).Set(float64(guests))
	budgetSpent.WithLabelValues(eventID).Set(spent)
}

// TrackVerification records a payment verification outcome
// (applied, duplicate, invalid, error).
func TrackVerification(outcome string) {
	paymentVerifications.WithLabelValues(outcome).Inc()
}

// TrackDuration records how long an operation took.
func TrackDuration(operation string, start time.Time) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
