package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPunch(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewAttendanceMetrics(registry)
	require.NoError(t, err)

	m.RecordPunch("entry", "recorded", 20*time.Millisecond)
	m.RecordPunch("entry", "recorded", 30*time.Millisecond)
	m.RecordPunch("exit", "rejected", time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.punchesTotal.WithLabelValues("entry", "recorded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.punchesTotal.WithLabelValues("exit", "rejected")))
}

func TestRecordPendingAndTier(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewAttendanceMetrics(registry)
	require.NoError(t, err)

	m.RecordPending("created")
	m.SetPendingActive(3)
	m.RecordTier("rojo")
	m.RecordTier("")
	m.RecordGeofenceRejection()
	m.RecordSensorFailure("camera")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.pendingPunchesTotal.WithLabelValues("created")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.pendingPunchesActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.tierTotal.WithLabelValues("rojo")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.geofenceRejections))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sensorFailuresTotal.WithLabelValues("camera")))
}

func TestNewAttendanceMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewAttendanceMetrics(registry)
	require.NoError(t, err)

	_, err = NewAttendanceMetrics(registry)
	assert.Error(t, err)
}

func TestAttendanceMetrics_NilReceiver(t *testing.T) {
	var m *AttendanceMetrics
	assert.NotPanics(t, func() {
		m.RecordPunch("entry", "recorded", time.Second)
		m.RecordPending("created")
		m.SetPendingActive(1)
		m.RecordTier("a_tiempo")
		m.RecordGeofenceRejection()
		m.RecordSensorFailure("location")
	})
}
