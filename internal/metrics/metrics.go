// Package metrics exposes prometheus instrumentation for the collector.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsIngested counts normalized events emitted to the sink, per input.
	EventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "szaudit",
		Name:      "events_ingested_total",
		Help:      "Number of audit events emitted to the sink.",
	}, []string{"input"})

	// RunsTotal counts per-input run outcomes. Status is "success" or the
	// error category ("config", "api", "parse", "checkpoint").
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "szaudit",
		Name:      "runs_total",
		Help:      "Number of per-input collection runs by outcome.",
	}, []string{"input", "status"})

	// LastSuccessfulRun records the wall-clock time of the last run that
	// advanced the checkpoint, per input.
	LastSuccessfulRun = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "szaudit",
		Name:      "last_successful_run_timestamp_seconds",
		Help:      "Unix time of the last successful collection run.",
	}, []string{"input"})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
