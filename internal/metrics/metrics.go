package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	BookingsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total number of bookings created",
		},
		[]string{"service_type"},
	)

	BookingTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status transition attempts by outcome",
		},
		[]string{"from", "to", "role", "result"},
	)

	PaymentsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Total number of payments recorded",
		},
		[]string{"method"},
	)

	DuplicateRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duplicate_rejections_total",
			Help: "Payments and reviews rejected as duplicates",
		},
		[]string{"kind"},
	)

	ReviewsAddedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_added_total",
			Help: "Total number of reviews added",
		},
	)

	GoroutinePanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goroutine_panics_total",
			Help: "Panics recovered in background goroutines",
		},
		[]string{"task"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		BookingsCreatedTotal,
		BookingTransitionsTotal,
		PaymentsRecordedTotal,
		DuplicateRejectionsTotal,
		ReviewsAddedTotal,
		GoroutinePanicsTotal,
	)
}

func RecordTransition(from, to, role, result string) {
	BookingTransitionsTotal.WithLabelValues(from, to, role, result).Inc()
}

func RecordDuplicate(kind string) {
	DuplicateRejectionsTotal.WithLabelValues(kind).Inc()
}
