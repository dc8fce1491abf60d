// Package metrics exposes prometheus instrumentation for enrollment, capture and check-in.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attendance services.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Check-in outcomes by status (present, absent)
	CheckIns *prometheus.CounterVec

	// Check-in failures by error kind
	CheckInFailures *prometheus.CounterVec

	// Euclidean distance of every verification
	MatchDistance prometheus.Histogram

	// Enrollments by role
	Enrollments *prometheus.CounterVec

	// Captures rejected for not showing exactly one face
	CaptureRetries prometheus.Counter

	// Time from Begin until a session settles, by final state
	CaptureDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CheckIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_checkins_total",
			Help: "Total check-ins by resulting status",
		}, []string{"status"}),

		CheckInFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_checkin_failures_total",
			Help: "Check-ins that ended in an error, by error kind",
		}, []string{"kind"}),

		MatchDistance: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_match_distance",
			Help:    "Euclidean distance between reference and candidate encodings",
			Buckets: []float64{0.1, 0.2, 0.3, 0.35, 0.4, 0.45, 0.5, 0.6, 0.8, 1.0},
		}),

		Enrollments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_enrollments_total",
			Help: "Total enrollments by role",
		}, []string{"role"}),

		CaptureRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "attendance_capture_retries_total",
			Help: "Capture attempts rejected because the frame did not show exactly one face",
		}),

		CaptureDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_capture_duration_seconds",
			Help:    "Duration of capture sessions by final state",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"state"}),
	}
}

// IncCheckIn records a completed check-in.
func (m *Metrics) IncCheckIn(status string) {
	if m != nil {
		m.CheckIns.WithLabelValues(status).Inc()
	}
}

// IncCheckInFailure records a check-in that returned an error.
func (m *Metrics) IncCheckInFailure(kind string) {
	if m != nil {
		m.CheckInFailures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveDistance(d float64) {
	if m != nil {
		m.MatchDistance.Observe(d)
	}
}

func (m *Metrics) IncEnrollment(role string) {
	if m != nil {
		m.Enrollments.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) IncCaptureRetry() {
	if m != nil {
		m.CaptureRetries.Inc()
	}
}

// ObserveCapture records how long a session ran before reaching state.
func (m *Metrics) ObserveCapture(state string, d time.Duration) {
	if m != nil {
		m.CaptureDuration.WithLabelValues(state).Observe(d.Seconds())
	}
}
