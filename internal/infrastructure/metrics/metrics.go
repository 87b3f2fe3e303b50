// Package metrics exposes Prometheus metrics for the backup daemon.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RunCount tracks scheduled backup runs by outcome.
	RunCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custos_backup_runs_total",
		Help: "The total number of backup runs performed",
	}, []string{"database", "status"})

	// RunDuration measures the wall time of one backup run.
	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custos_backup_run_duration_seconds",
		Help:    "Time taken by one backup run, trigger to notification",
		Buckets: prometheus.DefBuckets,
	}, []string{"database"})

	// LastSuccessTimestamp records when the last artifact was produced.
	LastSuccessTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "custos_backup_last_success_timestamp",
		Help: "Unix timestamp of the last successful backup",
	}, []string{"database"})

	// NotifyFailures counts swallowed notification transport errors.
	NotifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custos_notify_failures_total",
		Help: "The total number of failed notification deliveries",
	}, []string{"channel"})
)

// NewServer builds the HTTP server exposing /metrics and /healthz. The
// caller owns its lifecycle.
func NewServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}
