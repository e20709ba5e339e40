package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// Punch errors
	ErrNoLocationAssigned = errors.New("no work location assigned")
	ErrOutOfGeofence      = errors.New("punch is outside the allowed work zone")
	ErrSensorUnavailable  = errors.New("device sensor unavailable")

	// Pending confirmation errors
	ErrPendingPunchNotFound = errors.New("pending punch not found or expired")

	// Record errors
	ErrShiftNotFound                = errors.New("shift record not found")
	ErrExitWithoutEntry             = errors.New("exit time cannot be set on a shift without entry")
	ErrExitBeforeEntry              = errors.New("exit time must not be before entry time")
	ErrJustificationAlreadyResolved = errors.New("justification has already been resolved")
	ErrNothingToJustify             = errors.New("shift has no entry to justify")

	// General errors
	ErrUnauthorized = errors.New("unauthorized to access this shift record")
)

// OutOfGeofenceError carries the context shown to the employee when a punch
// lands outside the zone.
type OutOfGeofenceError struct {
	LocationName   string
	DistanceMeters float64
	RadiusMeters   int
}

func (e *OutOfGeofenceError) Error() string {
	return fmt.Sprintf("you are %.0f m from %s (allowed %d m)", e.DistanceMeters, e.LocationName, e.RadiusMeters)
}

func (e *OutOfGeofenceError) Is(target error) bool {
	return target == ErrOutOfGeofence
}

type Sensor string

const (
	SensorLocation Sensor = "location"
	SensorCamera   Sensor = "camera"
)

// SensorUnavailableError means the device could not provide a coordinate or
// photo. The attempt is aborted and may be retried.
type SensorUnavailableError struct {
	Sensor Sensor
	Reason string
}

func (e *SensorUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %s", e.Sensor, e.Reason)
}

func (e *SensorUnavailableError) Is(target error) bool {
	return target == ErrSensorUnavailable
}

// Retryable is always true; sensor failures are transient from our side.
func (e *SensorUnavailableError) Retryable() bool { return true }

// PersistenceError wraps a store failure. Nothing was committed when it is
// returned, so the caller may retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Retryable() bool { return true }
