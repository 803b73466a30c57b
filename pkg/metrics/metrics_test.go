package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWorkerMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkerMetrics(reg)
	task := "status_refresh"
	metrics.ObserveDuration(task, 250*time.Millisecond)
	metrics.IncSuccess(task)
	metrics.IncFailure(task)
	metrics.IncSkipped("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "worker_cycle_success_total", "task", task); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "worker_cycle_failure_total", "task", task); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "worker_cycle_skipped_total", "task", "unknown"); err != nil {
		t.Fatalf("fetch skipped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected skipped=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "worker_cycle_duration_seconds", "task", task); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewWorkerMetrics(nil).IncSuccess("x")
	NewStatusMetrics(nil).Set([]StatusCount{{Verdict: "open", Count: 1}})
	NewHTTPMetrics(nil).Observe("GET", "/", 200, time.Millisecond)
	var nilMetrics *WorkerMetrics
	nilMetrics.IncFailure("x")
}

func TestStatusMetricsResetsBetweenCycles(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStatusMetrics(reg)
	m.Set([]StatusCount{
		{Verdict: "open", Count: 3},
		{Verdict: "closed", Reason: "outside_hours", Count: 2},
	})
	m.Set([]StatusCount{{Verdict: "open", Count: 5}})

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "restaurants_by_status")
	if mf == nil {
		t.Fatal("gauge not exported")
	}
	if len(mf.GetMetric()) != 1 {
		t.Fatalf("expected stale samples to be reset, got %d", len(mf.GetMetric()))
	}
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 5 {
		t.Fatalf("expected open=5, got %f", got)
	}
	if !matchesLabel(mf.GetMetric()[0].GetLabel(), "reason", "none") {
		t.Fatalf("expected empty reason to export as none")
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("GET", "/api/v1/cart", 200, 20*time.Millisecond)
	m.Observe("GET", "/api/v1/cart", 200, 30*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "route", "/api/v1/cart"); err != nil || got != 2 {
		t.Fatalf("expected 2 requests, got %f err=%v", got, err)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
