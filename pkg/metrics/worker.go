package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkerMetrics records each refresh cycle of a background worker.
type WorkerMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	skipped  *prometheus.CounterVec
}

// NewWorkerMetrics registers the worker metrics on the provided registerer.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		return &WorkerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_cycle_duration_seconds",
		Help:    "Duration of worker cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_cycle_success_total",
		Help: "Successful worker cycles.",
	}, []string{"task"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_cycle_failure_total",
		Help: "Failed worker cycles.",
	}, []string{"task"})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_cycle_skipped_total",
		Help: "Worker cycles skipped because another replica held the lock.",
	}, []string{"task"})
	reg.MustRegister(duration, success, failure, skipped)
	return &WorkerMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		skipped:  skipped,
	}
}

// ObserveDuration records the duration for the named task.
func (w *WorkerMetrics) ObserveDuration(task string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(task)).Observe(duration.Seconds())
}

func (w *WorkerMetrics) IncSuccess(task string) {
	if w == nil || w.success == nil {
		return
	}
	w.success.WithLabelValues(normalizeLabel(task)).Inc()
}

func (w *WorkerMetrics) IncFailure(task string) {
	if w == nil || w.failure == nil {
		return
	}
	w.failure.WithLabelValues(normalizeLabel(task)).Inc()
}

func (w *WorkerMetrics) IncSkipped(task string) {
	if w == nil || w.skipped == nil {
		return
	}
	w.skipped.WithLabelValues(normalizeLabel(task)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
