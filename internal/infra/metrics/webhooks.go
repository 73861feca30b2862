package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	enqueue(
		WebhookRequests,
		MailTotal,
	)
}

var (
	// Inbound webhook deliveries grouped by provider and outcome.
	// outcome: accepted|bad_signature|bad_payload|no_secret|rate_limited
	WebhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_requests_total",
			Help: "Inbound provider webhook deliveries by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	// Confirmation mails grouped by delivery status.
	// status: sent|error
	MailTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "confirmation_mail_total",
			Help: "Confirmation e-mails by delivery status.",
		},
		[]string{"status"},
	)
)
