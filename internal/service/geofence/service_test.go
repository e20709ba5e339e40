package geofence

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmployees map[string]employee.Employee

func (f fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeEmployees) GetActiveByCompanyID(_ context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f {
		if e.CompanyID == companyID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeLocations map[string]location.WorkLocation

func (f fakeLocations) GetByID(_ context.Context, id string) (location.WorkLocation, error) {
	l, ok := f[id]
	if !ok {
		return location.WorkLocation{}, location.ErrLocationNotFound
	}
	return l, nil
}

func (f fakeLocations) ListActive(_ context.Context, companyID string) ([]location.WorkLocation, error) {
	var out []location.WorkLocation
	for _, l := range f {
		if l.CompanyID == companyID && l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}

var office = geo.Point{Latitude: 4.6097, Longitude: -74.0817}

// northOf returns the point meters north of p along its meridian.
func northOf(p geo.Point, meters float64) geo.Point {
	deg := meters / (geo.EarthRadiusKm * 1000) * 180 / 3.141592653589793
	return geo.Point{Latitude: p.Latitude + deg, Longitude: p.Longitude}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTestService() location.GeofenceService {
	employees := fakeEmployees{
		"emp-1":        {ID: "emp-1", CompanyID: "c1", FullName: "Ana", WorkLocationID: strPtr("loc-1"), IsActive: true},
		"emp-unset":    {ID: "emp-unset", CompanyID: "c1", FullName: "Luis", IsActive: true},
		"emp-missing":  {ID: "emp-missing", CompanyID: "c1", WorkLocationID: strPtr("loc-gone"), IsActive: true},
		"emp-inactive": {ID: "emp-inactive", CompanyID: "c1", WorkLocationID: strPtr("loc-closed"), IsActive: true},
		"emp-default":  {ID: "emp-default", CompanyID: "c1", WorkLocationID: strPtr("loc-noradius"), IsActive: true},
	}
	locations := fakeLocations{
		"loc-1":        {ID: "loc-1", CompanyID: "c1", Name: "Sede Centro", Center: office, RadiusMeters: intPtr(100), IsActive: true},
		"loc-closed":   {ID: "loc-closed", CompanyID: "c1", Name: "Bodega", Center: office, RadiusMeters: intPtr(100), IsActive: false},
		"loc-noradius": {ID: "loc-noradius", CompanyID: "c1", Name: "Planta", Center: northOf(office, 5000), IsActive: true},
	}
	return NewGeofenceService(employees, locations, 0)
}

func TestGeofenceService_ValidateLocation_Inside(t *testing.T) {
	svc := newTestService()

	result, err := svc.ValidateLocation(context.Background(), northOf(office, 40), "emp-1")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 100, result.RadiusMeters)
	assert.InDelta(t, 40, result.DistanceMeters, 0.5)
	assert.Equal(t, "Sede Centro", result.Location.Name)
}

func TestGeofenceService_ValidateLocation_OutsideRadius(t *testing.T) {
	svc := newTestService()

	result, err := svc.ValidateLocation(context.Background(), northOf(office, 150), "emp-1")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.InDelta(t, 150, result.DistanceMeters, 0.5)
	assert.Contains(t, result.Message, "Sede Centro")
}

func TestGeofenceService_ValidateLocation_Boundary(t *testing.T) {
	assert.True(t, within(100, 100))
	assert.False(t, within(100.0001, 100))

	svc := newTestService()
	result, err := svc.ValidateLocation(context.Background(), northOf(office, 99.9), "emp-1")
	require.NoError(t, err)
	assert.True(t, result.IsValid)

	result, err = svc.ValidateLocation(context.Background(), northOf(office, 100.1), "emp-1")
	require.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestGeofenceService_ValidateLocation_NoLocationAssigned(t *testing.T) {
	svc := newTestService()

	for _, id := range []string{"emp-unset", "emp-missing", "emp-inactive"} {
		_, err := svc.ValidateLocation(context.Background(), office, id)
		assert.ErrorIs(t, err, attendance.ErrNoLocationAssigned, id)
	}
}

func TestGeofenceService_ValidateLocation_DefaultRadius(t *testing.T) {
	svc := newTestService()
	planta := northOf(office, 5000)

	result, err := svc.ValidateLocation(context.Background(), northOf(planta, 80), "emp-default")
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, location.DefaultRadiusMeters, result.RadiusMeters)
}

func TestGeofenceService_ValidateLocation_UnknownEmployee(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateLocation(context.Background(), office, "nobody")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestGeofenceService_NearestLocation(t *testing.T) {
	svc := newTestService()
	ctx, err := jwt.ContextWithActor(context.Background(), jwt.NewJWTService("secret", "1h").JWTAuth(), jwt.Actor{
		UserID:    "u1",
		CompanyID: "c1",
		Role:      user.RoleManager,
	})
	require.NoError(t, err)

	nearest, err := svc.NearestLocation(ctx, northOf(office, 4800))
	require.NoError(t, err)
	assert.Equal(t, "loc-noradius", nearest.LocationID)
	assert.InDelta(t, 200, nearest.DistanceMeters, 1)
	assert.False(t, nearest.Inside)

	nearest, err = svc.NearestLocation(ctx, northOf(office, 10))
	require.NoError(t, err)
	assert.Equal(t, "loc-1", nearest.LocationID)
	assert.True(t, nearest.Inside)
}

type brokenLocations struct{}

func (brokenLocations) GetByID(_ context.Context, _ string) (location.WorkLocation, error) {
	return location.WorkLocation{}, errors.New("connection reset by peer")
}

func (brokenLocations) ListActive(_ context.Context, _ string) ([]location.WorkLocation, error) {
	return nil, errors.New("connection reset by peer")
}

func TestGeofenceService_StoreFailureIsRetryable(t *testing.T) {
	employees := fakeEmployees{
		"emp-1": {ID: "emp-1", CompanyID: "c1", WorkLocationID: strPtr("loc-1"), IsActive: true},
	}
	svc := NewGeofenceService(employees, brokenLocations{}, 0)

	_, err := svc.ValidateLocation(context.Background(), office, "emp-1")
	var pe *attendance.PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "get work location", pe.Op)
	assert.NotErrorIs(t, err, attendance.ErrNoLocationAssigned)

	ctx, err := jwt.ContextWithActor(context.Background(), jwt.NewJWTService("secret", "1h").JWTAuth(), jwt.Actor{
		UserID:    "u1",
		CompanyID: "c1",
		Role:      user.RoleEmployee,
	})
	require.NoError(t, err)

	_, err = svc.NearestLocation(ctx, office)
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "list work locations", pe.Op)
	assert.True(t, pe.Retryable())
}
