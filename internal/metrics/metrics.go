// Package metrics registers the service's Prometheus collectors on the default registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smartmeter"

var (
	readingsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readings_ingested_total",
		Help:      "Readings persisted by the ingestion service.",
	})
	alertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_raised_total",
		Help:      "Alerts raised during ingestion, by type.",
	}, []string{"type"})
	sideEffectFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "side_effect_failures_total",
		Help:      "Failed best-effort side effects (notify, mirror, cache), by target.",
	}, []string{"target"})
	workerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_runs_total",
		Help:      "Periodic worker iterations, by worker and result.",
	}, []string{"worker", "result"})
	workerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "worker_run_duration_seconds",
		Help:      "Duration of periodic worker iterations.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"worker"})
	workerSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_skipped_ticks_total",
		Help:      "Ticks skipped because the previous iteration was still running.",
	}, []string{"worker"})
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by method and status code.",
	}, []string{"method", "status"})
)

func ReadingIngested() { readingsIngested.Inc() }

func AlertRaised(alertType string) { alertsRaised.WithLabelValues(alertType).Inc() }

func SideEffectFailed(target string) { sideEffectFailures.WithLabelValues(target).Inc() }

func ObserveWorkerRun(worker string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	workerRuns.WithLabelValues(worker, result).Inc()
	workerDuration.WithLabelValues(worker).Observe(d.Seconds())
}

func WorkerSkipped(worker string) { workerSkipped.WithLabelValues(worker).Inc() }

func HTTPRequest(method string, status int) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler { return promhttp.Handler() }
