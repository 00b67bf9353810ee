package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Donations
	DonationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "donations_created_total",
			Help: "Donation orders created",
		},
	)
	DonationTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "donation_transitions_total",
			Help: "Donation status transitions",
		},
		[]string{"to", "reason"}, // reason: verified|bad_signature|abandoned|gateway_error
	)
	SignatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_signature_failures_total",
			Help: "Payment verifications rejected for a bad signature",
		},
	)
	GatewayErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_gateway_errors_total",
			Help: "Failed order creations at the payment gateway",
		},
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// /metrics endpoint handler
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(DonationsCreated)
	prometheus.MustRegister(DonationTransitions)
	prometheus.MustRegister(SignatureFailures)
	prometheus.MustRegister(GatewayErrors)
	prometheus.MustRegister(WorkerQueueDepth)
}
