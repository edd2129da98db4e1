// Package metrics exposes Prometheus collectors for update handling and the
// HTTP endpoint that serves them.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector

	updatesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_received_total",
			Help: "Telegram updates received, by kind.",
		},
		[]string{"kind"},
	)

	updatesLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_updates_rate_limited_total",
			Help: "Updates dropped by the per-user rate limiter.",
		},
	)

	handlerTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_handler_total",
			Help: "Handled updates by handler and status.",
		},
		[]string{"handler", "status"},
	)

	handlerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_handler_duration_ms",
			Help:    "Handler latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"handler"},
	)

	panicsRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_panics_recovered_total",
			Help: "Handler panics caught by the recover middleware.",
		},
	)
)

func init() {
	Register(updatesReceived, updatesLimited, handlerTotal, handlerDuration, panicsRecovered)
}

// Register queues collectors for MustRegister. Call it from init functions.
func Register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers all queued collectors with the default registry exactly once.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

// UpdateReceived counts an inbound update of the given kind.
func UpdateReceived(kind string) {
	updatesReceived.WithLabelValues(norm(kind)).Inc()
}

// UpdateLimited counts an update dropped by rate limiting.
func UpdateLimited() {
	updatesLimited.Inc()
}

// PanicRecovered counts a recovered handler panic.
func PanicRecovered() {
	panicsRecovered.Inc()
}

// ObserveHandler records the outcome and latency of one handler run.
func ObserveHandler(handler, status string, d time.Duration) {
	h := norm(handler)
	handlerTotal.WithLabelValues(h, norm(status)).Inc()
	handlerDuration.WithLabelValues(h).Observe(float64(d) / float64(time.Millisecond))
}

// SenderFailures exposes a failure count read from fn, such as an outbound queue's error counter.
func SenderFailures(fn func() uint64) prometheus.Collector {
	return prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "bot_sender_failures_total",
			Help: "Outbound Telegram calls that failed after retries.",
		},
		func() float64 { return float64(fn()) },
	)
}

// SenderQueue exposes the number of outbound calls waiting for a worker.
func SenderQueue(fn func() int) prometheus.Collector {
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "bot_sender_queue_depth",
			Help: "Outbound Telegram calls waiting in the sender queue.",
		},
		func() float64 { return float64(fn()) },
	)
}

func norm(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.ToLower(s)
}
