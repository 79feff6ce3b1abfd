package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "subcentre", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "subcentre", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	PatientOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "subcentre", Name: "patient_operations_total", Help: "Record Store operations by kind and outcome."},
		[]string{"op", "outcome"},
	)
	ContactMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "subcentre", Name: "contact_messages_total", Help: "Contact form messages by relay and outcome."},
		[]string{"relay", "outcome"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "subcentre", Name: "http_request_duration_seconds", Help: "HTTP request latency by route and status class.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "class"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(PatientOps)
	reg.MustRegister(ContactMessages)
	reg.MustRegister(HTTPDuration)
}
