package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	installOnce sync.Once
	pending     []prometheus.Collector
)

// enqueue gathers collectors from the per-concern init functions; nothing
// reaches the default registry until main calls MustRegister.
func enqueue(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister installs every enqueued collector. Later calls are no-ops, so
// tests that build more than one composition root stay safe.
func MustRegister() {
	installOnce.Do(func() {
		prometheus.MustRegister(pending...)
	})
}
