package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	enqueue(
		VerifyRequests,
		VerifyDuration,
		PaymentInitTotal,
	)
}

var (
	// Count of orchestrator verify runs grouped by result and bounded reason.
	// result: ok|already_processed|fail
	// reason (fail only): gateway_error|gateway_declined|not_found|db_error|unknown
	VerifyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verify_requests_total",
			Help: "Count of payment verification runs by result and reason.",
		},
		[]string{"result", "reason"},
	)

	// Latency of the full verification path grouped by result.
	VerifyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of payment verification in seconds.",
			Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	// Payment initializations grouped by provider and outcome.
	PaymentInitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_init_total",
			Help: "Payment initializations by provider and status.",
		},
		[]string{"provider", "status"},
	)
)
