package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	enqueue(
		LiveChannels,
		LivePushTotal,
		WatcherOutcomes,
	)
}

var (
	// Currently open live-update channels.
	LiveChannels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_channels_open",
			Help: "Number of currently open live-update channels.",
		},
	)

	// Pushed events grouped by delivery status.
	// status: delivered|dropped
	LivePushTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_push_total",
			Help: "Live-update pushes by delivery status.",
		},
		[]string{"status"},
	)

	// Terminal watcher states.
	// state: resolved|timed_out|cancelled
	WatcherOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_watcher_outcomes_total",
			Help: "Terminal payment watcher states.",
		},
		[]string{"state"},
	)
)
