package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncCheckIn("present")
	m.IncCheckInFailure("not_found")
	m.ObserveDistance(0.3)
	m.IncEnrollment("student")
	m.IncCaptureRetry()
	m.ObserveCapture("accepted", time.Second)
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncCheckIn("present")
	m.IncCheckIn("present")
	m.IncCheckIn("absent")
	m.IncEnrollment("teacher")
	m.IncCaptureRetry()

	if got := testutil.ToFloat64(m.CheckIns.WithLabelValues("present")); got != 2 {
		t.Errorf("present check-ins = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CheckIns.WithLabelValues("absent")); got != 1 {
		t.Errorf("absent check-ins = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Enrollments.WithLabelValues("teacher")); got != 1 {
		t.Errorf("teacher enrollments = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CaptureRetries); got != 1 {
		t.Errorf("capture retries = %v, want 1", got)
	}
}

func TestNewOnSeparateRegistries(t *testing.T) {
	// Two instances must not collide when each has its own registry.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
