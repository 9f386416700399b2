package metrics

import (
	"errors"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	checks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "procguard",
			Subsystem: "guard",
			Name:      "checks_total",
			Help:      "Number of guard invocations by outcome (running, started, error).",
		}, []string{"name", "outcome"},
	)
	starts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "procguard",
			Subsystem: "guard",
			Name:      "starts_total",
			Help:      "Number of processes launched by the guard.",
		}, []string{"name"},
	)
	checkDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "procguard",
			Subsystem: "guard",
			Name:      "check_duration_seconds",
			Help:      "Time spent enumerating processes and deciding.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name"},
	)
	lastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "procguard",
			Subsystem: "guard",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last guard invocation.",
		}, []string{"name"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{checks, starts, checkDuration, lastRun}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for node_exporter's textfile collector. The write is atomic.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

// Helpers below no-op if Register hasn't been called.

func IncCheck(name, outcome string) {
	if regOK.Load() {
		checks.WithLabelValues(name, outcome).Inc()
	}
}

func IncStart(name string) {
	if regOK.Load() {
		starts.WithLabelValues(name).Inc()
	}
}

func ObserveCheckDuration(name string, seconds float64) {
	if regOK.Load() {
		checkDuration.WithLabelValues(name).Observe(seconds)
	}
}

func SetLastRun(name string, unix float64) {
	if regOK.Load() {
		lastRun.WithLabelValues(name).Set(unix)
	}
}
