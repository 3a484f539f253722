package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLabMetricsCounters(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.RecordOrderSubmitted(20 * time.Millisecond)
	m.RecordOrderSubmitted(30 * time.Millisecond)
	m.RecordSubmitFailure()
	m.RecordVesselConflict()
	m.RecordStatusChange("completed")
	m.RecordStatusChange("completed")
	m.RecordStatusChange("cancelled")
	m.RecordLogin(true)
	m.RecordLogin(false)
	m.RecordLogin(false)
	m.RecordExport("xlsx")

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"orders submitted", testutil.ToFloat64(m.ordersSubmitted), 2},
		{"submit failures", testutil.ToFloat64(m.submitFailures), 1},
		{"vessel conflicts", testutil.ToFloat64(m.vesselConflicts), 1},
		{"status completed", testutil.ToFloat64(m.statusChanges.WithLabelValues("completed")), 2},
		{"status cancelled", testutil.ToFloat64(m.statusChanges.WithLabelValues("cancelled")), 1},
		{"login success", testutil.ToFloat64(m.logins.WithLabelValues("success")), 1},
		{"login failure", testutil.ToFloat64(m.logins.WithLabelValues("failure")), 2},
		{"xlsx exports", testutil.ToFloat64(m.exports.WithLabelValues("xlsx")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLabMetricsDuration(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegisterer(registry)
	m.RecordOrderSubmitted(time.Second)

	if n := testutil.CollectAndCount(m.submitDuration); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestNewWithRegistererReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewWithRegisterer(registry)
	second := NewWithRegisterer(registry)

	first.RecordVesselConflict()
	if got := testutil.ToFloat64(second.vesselConflicts); got != 1 {
		t.Fatalf("expected shared collector, got %v", got)
	}
}

func TestNewWithRegistererNilFallsBackToDefault(t *testing.T) {
	if NewWithRegisterer(nil) == nil {
		t.Fatal("expected metrics instance")
	}
}
