package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Typed punch errors carry context for the client
	var fenceErr *attendance.OutOfGeofenceError
	if errors.As(err, &fenceErr) {
		UnprocessableEntity(w, "OUT_OF_GEOFENCE", fenceErr.Error(), map[string]string{
			"location_name":   fenceErr.LocationName,
			"distance_meters": fmt.Sprintf("%.1f", fenceErr.DistanceMeters),
			"radius_meters":   fmt.Sprintf("%d", fenceErr.RadiusMeters),
		})
		return
	}

	var sensorErr *attendance.SensorUnavailableError
	if errors.As(err, &sensorErr) {
		RetryableError(w, http.StatusServiceUnavailable, "SENSOR_UNAVAILABLE", sensorErr.Error())
		return
	}

	var persistenceErr *attendance.PersistenceError
	if errors.As(err, &persistenceErr) {
		slog.Error("persistence failure", "op", persistenceErr.Op, "error", persistenceErr.Err)
		RetryableError(w, http.StatusInternalServerError, "PERSISTENCE_FAILURE", "Attendance storage is unavailable, please try again")
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrMissingClaims):
		Unauthorized(w, "Invalid token claims")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrNoLocationAssigned):
		UnprocessableEntity(w, "NO_LOCATION_ASSIGNED", "No work location assigned; contact your administrator", nil)
	case errors.Is(err, attendance.ErrPendingPunchNotFound):
		NotFound(w, "Pending punch not found or expired")
	case errors.Is(err, attendance.ErrShiftNotFound):
		NotFound(w, "Shift record not found")
	case errors.Is(err, attendance.ErrExitWithoutEntry),
		errors.Is(err, attendance.ErrExitBeforeEntry):
		UnprocessableEntity(w, "INVALID_SHIFT_TIMES", err.Error(), nil)
	case errors.Is(err, attendance.ErrJustificationAlreadyResolved):
		Conflict(w, "Justification already resolved")
	case errors.Is(err, attendance.ErrNothingToJustify):
		BadRequest(w, "Shift has nothing to justify", nil)
	case errors.Is(err, attendance.ErrUnauthorized),
		errors.Is(err, report.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive):
		Forbidden(w, "Employee is inactive")

	// Location domain errors
	case errors.Is(err, location.ErrLocationNotFound):
		NotFound(w, "Work location not found")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
