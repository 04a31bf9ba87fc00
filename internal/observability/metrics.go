package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const OutcomeLaunched = "launched"

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	workersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workerctl",
			Name:      "workers_total",
			Help:      "Workers seen per run by outcome (launched or skip reason).",
		},
		[]string{"outcome"},
	)
	discoveredProcesses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "workerctl",
			Name:      "discovered_processes",
			Help:      "Worker processes matched in the process table after the last launch.",
		},
	)
	enumerationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "workerctl",
			Name:      "process_enumeration_failures_total",
			Help:      "Process table reads that failed after a launch.",
		},
	)
	settleSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "workerctl",
			Name:      "launch_settle_seconds",
			Help:      "Time waited between starting the launch script and reading the process table.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)
	lastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "workerctl",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		},
		[]string{"run_id"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		registry.MustRegister(workersTotal, discoveredProcesses, enumerationFailures, settleSeconds, lastRun)
	})
}

// Gatherer exposes the workerctl registry.
func Gatherer() prometheus.Gatherer {
	RegisterMetrics()
	return registry
}

func RecordWorker(outcome string) {
	RegisterMetrics()
	workersTotal.WithLabelValues(outcome).Inc()
}

func RecordLaunch(discovered int, settled time.Duration, enumerationFailed bool) {
	RegisterMetrics()
	if enumerationFailed {
		enumerationFailures.Inc()
	} else {
		discoveredProcesses.Set(float64(discovered))
	}
	settleSeconds.Observe(settled.Seconds())
}

func RecordRun(runID string, at time.Time) {
	RegisterMetrics()
	lastRun.Reset()
	lastRun.WithLabelValues(runID).Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Gatherer()); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
