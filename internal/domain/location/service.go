package location

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
)

// GeofenceService decides whether a coordinate lies inside a work zone
type GeofenceService interface {
	// ValidateLocation checks point against the employee's assigned location.
	// An employee without a usable assignment gets attendance.ErrNoLocationAssigned.
	ValidateLocation(ctx context.Context, point geo.Point, employeeID string) (ValidationResult, error)

	// NearestLocation finds the closest active location of the caller's company.
	// Reporting only, never gates a punch.
	NearestLocation(ctx context.Context, point geo.Point) (NearestLocationResponse, error)
}
