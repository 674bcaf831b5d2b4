package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casamira",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "casamira",
			Name:      "bookings_created_total",
			Help:      "Booking requests submitted by guests.",
		},
	)

	bookingStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "casamira",
			Name:      "booking_status_changes_total",
			Help:      "Booking status transitions by new status.",
		},
		[]string{"status"},
	)

	feedbackReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "casamira",
			Name:      "feedback_received_total",
			Help:      "Feedback messages submitted through the contact form.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, bookingStatusChanges, feedbackReceived)
	})
}

// IncHTTP increments the request counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a new booking request.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingStatus counts a status transition.
func IncBookingStatus(status string) {
	bookingStatusChanges.WithLabelValues(status).Inc()
}

// IncFeedback counts a submitted feedback entry.
func IncFeedback() {
	feedbackReceived.Inc()
}
