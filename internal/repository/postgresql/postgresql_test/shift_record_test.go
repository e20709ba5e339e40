package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func openShift(employeeID, companyID string, day time.Time, entry time.Time) attendance.ShiftRecord {
	point := geo.Point{Latitude: 4.6097, Longitude: -74.0817}
	photo := "attendance/" + day.Format("2006-01-02") + "/entry.jpg"
	return attendance.ShiftRecord{
		EmployeeID:         employeeID,
		CompanyID:          companyID,
		Date:               day,
		EntryTime:          &entry,
		EntryLocation:      &point,
		EntryPhotoURL:      &photo,
		MinutesLate:        3,
		Tier:               attendance.TierEarlyWarning,
		JustificationState: attendance.JustificationNone,
	}
}

func TestShiftRecordRepository_CreateFindClose(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	_, employeeID := setup.seed(t, companyID)
	repo := postgresql.NewShiftRecordRepository(setup.DB)

	day := date(2024, 3, 5)
	created, err := repo.Create(ctx, openShift(employeeID, companyID, day, day.Add(13*time.Hour+3*time.Minute)))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	open, err := repo.FindOpenOnDate(ctx, employeeID, day)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, created.ID, open.ID)
	assert.Equal(t, day, open.Date.UTC())
	assert.Equal(t, attendance.TierEarlyWarning, open.Tier)
	require.NotNil(t, open.EntryLocation)
	assert.InDelta(t, 4.6097, open.EntryLocation.Latitude, 1e-9)
	require.NotNil(t, open.EmployeeName)
	assert.Equal(t, "Ana Torres", *open.EmployeeName)

	exit := day.Add(22 * time.Hour)
	exitPoint := geo.Point{Latitude: 4.6098, Longitude: -74.0816}
	open.ExitTime = &exit
	open.ExitLocation = &exitPoint
	require.NoError(t, repo.Update(ctx, *open))

	open, err = repo.FindOpenOnDate(ctx, employeeID, day)
	require.NoError(t, err)
	assert.Nil(t, open)

	count, err := repo.CountByEmployeeAndDate(ctx, employeeID, day)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := repo.GetByID(ctx, created.ID, companyID)
	require.NoError(t, err)
	assert.True(t, stored.IsComplete())
	assert.Equal(t, exitPoint, *stored.ExitLocation)

	var raw string
	require.NoError(t, setup.DB.QueryRow(ctx, `SELECT exit_location FROM shift_records WHERE id = $1`, created.ID).Scan(&raw))
	assert.Equal(t, "(4.6098,-74.0816)", raw)
}

func TestShiftRecordRepository_FindLatestOpenBefore(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	_, employeeID := setup.seed(t, companyID)
	repo := postgresql.NewShiftRecordRepository(setup.DB)

	older := date(2024, 3, 1)
	newer := date(2024, 3, 4)
	_, err := repo.Create(ctx, openShift(employeeID, companyID, older, older.Add(13*time.Hour)))
	require.NoError(t, err)
	want, err := repo.Create(ctx, openShift(employeeID, companyID, newer, newer.Add(13*time.Hour)))
	require.NoError(t, err)

	got, err := repo.FindLatestOpenBefore(ctx, employeeID, date(2024, 3, 5))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)

	got, err = repo.FindLatestOpenBefore(ctx, employeeID, older)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestShiftRecordRepository_NotFound(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewShiftRecordRepository(setup.DB)

	_, err := repo.GetByID(ctx, uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrShiftNotFound)

	err = repo.Delete(ctx, uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, attendance.ErrShiftNotFound)

	err = repo.Update(ctx, attendance.ShiftRecord{ID: uuid.NewString(), CompanyID: uuid.NewString(), JustificationState: attendance.JustificationNone})
	assert.ErrorIs(t, err, attendance.ErrShiftNotFound)
}

func TestShiftRecordRepository_ExitBeforeEntryRejectedByStore(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	_, employeeID := setup.seed(t, companyID)
	repo := postgresql.NewShiftRecordRepository(setup.DB)

	day := date(2024, 3, 5)
	created, err := repo.Create(ctx, openShift(employeeID, companyID, day, day.Add(13*time.Hour)))
	require.NoError(t, err)

	exit := day.Add(12 * time.Hour)
	created.ExitTime = &exit
	assert.Error(t, repo.Update(ctx, created))
}

func TestShiftRecordRepository_ListFilters(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	_, employeeID := setup.seed(t, companyID)
	repo := postgresql.NewShiftRecordRepository(setup.DB)

	for d := 4; d <= 8; d++ {
		day := date(2024, 3, d)
		_, err := repo.Create(ctx, openShift(employeeID, companyID, day, day.Add(13*time.Hour)))
		require.NoError(t, err)
	}

	start, end := "2024-03-05", "2024-03-07"
	filter := attendance.ShiftFilter{StartDate: &start, EndDate: &end}
	require.NoError(t, filter.Validate())

	records, total, err := repo.List(ctx, filter, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, records, 3)
	assert.Equal(t, date(2024, 3, 7), records[0].Date.UTC())

	filter.Limit = 2
	filter.Page = 2
	records, total, err = repo.List(ctx, filter, companyID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, records, 1)

	inRange, err := repo.ListByEmployeeInRange(ctx, employeeID, date(2024, 3, 4), date(2024, 3, 5))
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	_, total, err = repo.List(ctx, attendance.ShiftFilter{Page: 1, Limit: 20}, uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestShiftRecordRepository_LockEmployeeSerializes(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	_, employeeID := setup.seed(t, companyID)
	repo := postgresql.NewShiftRecordRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	day := date(2024, 3, 5)
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
				if err := repo.LockEmployee(ctx, employeeID); err != nil {
					return err
				}
				open, err := repo.FindOpenOnDate(ctx, employeeID, day)
				if err != nil {
					return err
				}
				if open != nil {
					exit := open.EntryTime.Add(time.Minute)
					open.ExitTime = &exit
					return repo.Update(ctx, *open)
				}
				_, err = repo.Create(ctx, openShift(employeeID, companyID, day, day.Add(13*time.Hour)))
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := repo.ListByEmployeeAndDate(ctx, employeeID, day)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	for _, r := range records {
		assert.True(t, r.IsComplete())
	}
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	_, employeeID := setup.seed(t, companyID)
	repo := postgresql.NewShiftRecordRepository(setup.DB)

	day := date(2024, 3, 5)
	boom := errors.New("boom")
	err := postgresql.NewTransactor(setup.DB).WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, openShift(employeeID, companyID, day, day.Add(13*time.Hour))); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := repo.CountByEmployeeAndDate(ctx, employeeID, day)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestEmployeeAndLocationRepositories(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	locationID, employeeID := setup.seed(t, companyID)

	employees := postgresql.NewEmployeeRepository(setup.DB)
	emp, err := employees.GetByID(ctx, employeeID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", emp.FullName)
	require.NotNil(t, emp.WorkLocationID)
	assert.Equal(t, locationID, *emp.WorkLocationID)
	assert.True(t, emp.HasSchedule())

	_, err = employees.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	active, err := employees.GetActiveByCompanyID(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	locations := postgresql.NewWorkLocationRepository(setup.DB)
	loc, err := locations.GetByID(ctx, locationID)
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Latitude: 4.6097, Longitude: -74.0817}, loc.Center)
	assert.Equal(t, 100, loc.EffectiveRadius(location.DefaultRadiusMeters))

	_, err = locations.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, location.ErrLocationNotFound)

	all, err := locations.ListActive(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLeaveStateRepository_GetStateOn(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	companyID := uuid.NewString()
	_, employeeID := setup.seed(t, companyID)

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO leave_requests (employee_id, leave_category, start_date, end_date, status)
		VALUES ($1, 'vacation', '2024-03-04', '2024-03-08', 'approved'),
		       ($1, 'permit', '2024-03-11', '2024-03-11', 'rejected')
	`, employeeID)
	require.NoError(t, err)

	repo := postgresql.NewLeaveStateRepository(setup.DB)

	state, err := repo.GetStateOn(ctx, employeeID, date(2024, 3, 6))
	require.NoError(t, err)
	assert.Equal(t, leave.StateVacation, state)

	state, err = repo.GetStateOn(ctx, employeeID, date(2024, 3, 11))
	require.NoError(t, err)
	assert.Equal(t, leave.StateNone, state)
}
