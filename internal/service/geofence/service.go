package geofence

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
)

type GeofenceServiceImpl struct {
	employee.EmployeeRepository
	location.WorkLocationRepository
	defaultRadius int
}

// ValidateLocation implements location.GeofenceService.
func (g *GeofenceServiceImpl) ValidateLocation(ctx context.Context, point geo.Point, employeeID string) (location.ValidationResult, error) {
	if !point.Valid() {
		return location.ValidationResult{}, fmt.Errorf("invalid coordinate %s", point)
	}

	emp, err := g.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return location.ValidationResult{}, storeError("get employee", err)
	}

	if emp.WorkLocationID == nil || *emp.WorkLocationID == "" {
		return location.ValidationResult{}, attendance.ErrNoLocationAssigned
	}

	loc, err := g.WorkLocationRepository.GetByID(ctx, *emp.WorkLocationID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			return location.ValidationResult{}, attendance.ErrNoLocationAssigned
		}
		return location.ValidationResult{}, storeError("get work location", err)
	}
	if !loc.IsActive {
		return location.ValidationResult{}, attendance.ErrNoLocationAssigned
	}

	return g.evaluate(point, loc), nil
}

// storeError reports repository failures as retryable persistence errors.
// Not-found and cancellation keep their identity.
func storeError(op string, err error) error {
	if errors.Is(err, employee.ErrEmployeeNotFound) ||
		errors.Is(err, location.ErrLocationNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &attendance.PersistenceError{Op: op, Err: err}
}

func (g *GeofenceServiceImpl) evaluate(point geo.Point, loc location.WorkLocation) location.ValidationResult {
	radius := loc.EffectiveRadius(g.defaultRadius)
	distance := geo.DistanceMeters(point, loc.Center)

	result := location.ValidationResult{
		IsValid:        within(distance, radius),
		DistanceMeters: math.Round(distance*10) / 10,
		RadiusMeters:   radius,
		Location:       loc,
	}
	if result.IsValid {
		result.Message = fmt.Sprintf("inside %s (%.0f m of %d m allowed)", loc.Name, distance, radius)
	} else {
		result.Message = fmt.Sprintf("you are %.0f m from %s, the allowed radius is %d m", distance, loc.Name, radius)
	}
	return result
}

// within is inclusive: a punch exactly on the circle is accepted.
func within(distanceMeters float64, radiusMeters int) bool {
	return distanceMeters <= float64(radiusMeters)
}

// NearestLocation implements location.GeofenceService.
func (g *GeofenceServiceImpl) NearestLocation(ctx context.Context, point geo.Point) (location.NearestLocationResponse, error) {
	if !point.Valid() {
		return location.NearestLocationResponse{}, fmt.Errorf("invalid coordinate %s", point)
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return location.NearestLocationResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	locations, err := g.WorkLocationRepository.ListActive(ctx, actor.CompanyID)
	if err != nil {
		return location.NearestLocationResponse{}, storeError("list work locations", err)
	}

	var (
		nearest *location.WorkLocation
		best    = math.Inf(1)
	)
	for i := range locations {
		d := geo.DistanceMeters(point, locations[i].Center)
		if d < best {
			best = d
			nearest = &locations[i]
		}
	}
	if nearest == nil {
		return location.NearestLocationResponse{}, location.ErrLocationNotFound
	}

	result := g.evaluate(point, *nearest)
	return location.NearestLocationResponse{
		LocationID:     nearest.ID,
		LocationName:   nearest.Name,
		DistanceMeters: result.DistanceMeters,
		RadiusMeters:   result.RadiusMeters,
		Inside:         result.IsValid,
	}, nil
}

func NewGeofenceService(
	employeeRepo employee.EmployeeRepository,
	locationRepo location.WorkLocationRepository,
	defaultRadius int,
) location.GeofenceService {
	if defaultRadius <= 0 {
		defaultRadius = location.DefaultRadiusMeters
	}
	return &GeofenceServiceImpl{
		EmployeeRepository:     employeeRepo,
		WorkLocationRepository: locationRepo,
		defaultRadius:          defaultRadius,
	}
}
