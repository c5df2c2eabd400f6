package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	RunsScanned      = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_runs_scanned_total", Help: "Workflow runs inspected"})
	JobsMatched      = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_jobs_matched_total", Help: "Jobs matched by a target keyword"})
	LogsArchived     = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_logs_archived_total", Help: "Archive entries written"})
	ArchiveSkips     = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_archive_skips_total", Help: "Archive writes skipped because the entry existed"})
	ResultsRecorded  = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_results_recorded_total", Help: "Ledger rows added"})
	DuplicateResults = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_duplicate_results_total", Help: "Ledger appends skipped as already recorded"})
	ProviderFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_provider_failures_total", Help: "Failed provider queries"})
	PassesCompleted  = prometheus.NewCounter(prometheus.CounterOpts{Name: "nightwatch_passes_completed_total", Help: "Collection passes run to completion"})
	LastPassUnix     = prometheus.NewGauge(prometheus.GaugeOpts{Name: "nightwatch_last_pass_timestamp_seconds", Help: "Unix time of the last completed pass"})
)

// Handler exposes /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			RunsScanned,
			JobsMatched,
			LogsArchived,
			ArchiveSkips,
			ResultsRecorded,
			DuplicateResults,
			ProviderFailures,
			PassesCompleted,
			LastPassUnix,
		)
	})
	return promhttp.Handler()
}
