// Package metrics provides Prometheus collectors for the attendance core
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AttendanceMetrics contains Prometheus metrics for punch processing
type AttendanceMetrics struct {
	punchesTotal         *prometheus.CounterVec
	punchDuration        *prometheus.HistogramVec
	geofenceRejections   prometheus.Counter
	sensorFailuresTotal  *prometheus.CounterVec
	pendingPunchesTotal  *prometheus.CounterVec
	pendingPunchesActive prometheus.Gauge
	tierTotal            *prometheus.CounterVec
}

// NewAttendanceMetrics creates and registers the attendance metrics
func NewAttendanceMetrics(registry prometheus.Registerer) (*AttendanceMetrics, error) {
	m := &AttendanceMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *AttendanceMetrics) initMetrics() {
	m.punchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_punches_total",
			Help: "Total number of punch attempts",
		},
		[]string{"kind", "status"}, // kind: entry, exit, unknown; status: recorded, pending, rejected, error
	)

	m.punchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "attendance_punch_duration_seconds",
			Help:    "Time taken to process a punch, photo upload included",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"status"},
	)

	m.geofenceRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_geofence_rejections_total",
			Help: "Total number of punches rejected for being outside the work zone",
		},
	)

	m.sensorFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_sensor_failures_total",
			Help: "Total number of punches aborted because a device sensor failed",
		},
		[]string{"sensor"},
	)

	m.pendingPunchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_pending_punches_total",
			Help: "Total number of punches held for confirmation, by outcome",
		},
		[]string{"outcome"}, // outcome: created, confirmed, cancelled
	)

	m.pendingPunchesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "attendance_pending_punches",
			Help: "Number of punches currently waiting for confirmation",
		},
	)

	m.tierTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_compliance_tier_total",
			Help: "Total number of entries per compliance tier",
		},
		[]string{"tier"},
	)
}

// Describe implements the Collector interface
func (m *AttendanceMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.punchesTotal.Describe(ch)
	m.punchDuration.Describe(ch)
	m.geofenceRejections.Describe(ch)
	m.sensorFailuresTotal.Describe(ch)
	m.pendingPunchesTotal.Describe(ch)
	m.pendingPunchesActive.Describe(ch)
	m.tierTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *AttendanceMetrics) Collect(ch chan<- prometheus.Metric) {
	m.punchesTotal.Collect(ch)
	m.punchDuration.Collect(ch)
	m.geofenceRejections.Collect(ch)
	m.sensorFailuresTotal.Collect(ch)
	m.pendingPunchesTotal.Collect(ch)
	m.pendingPunchesActive.Collect(ch)
	m.tierTotal.Collect(ch)
}

// The Record methods are no-ops on a nil receiver so callers can run without metrics.

func (m *AttendanceMetrics) RecordPunch(kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.punchesTotal.WithLabelValues(kind, status).Inc()
	m.punchDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *AttendanceMetrics) RecordGeofenceRejection() {
	if m == nil {
		return
	}
	m.geofenceRejections.Inc()
}

func (m *AttendanceMetrics) RecordSensorFailure(sensor string) {
	if m == nil {
		return
	}
	m.sensorFailuresTotal.WithLabelValues(sensor).Inc()
}

func (m *AttendanceMetrics) RecordPending(outcome string) {
	if m == nil {
		return
	}
	m.pendingPunchesTotal.WithLabelValues(outcome).Inc()
}

func (m *AttendanceMetrics) SetPendingActive(n int) {
	if m == nil {
		return
	}
	m.pendingPunchesActive.Set(float64(n))
}

func (m *AttendanceMetrics) RecordTier(tier string) {
	if m == nil || tier == "" {
		return
	}
	m.tierTotal.WithLabelValues(tier).Inc()
}
