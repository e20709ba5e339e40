package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/jackc/pgx/v5"
)

type shiftRecordRepository struct {
	db *database.DB
}

func NewShiftRecordRepository(db *database.DB) attendance.ShiftRecordRepository {
	return &shiftRecordRepository{db: db}
}

const shiftColumns = `
	s.id, s.employee_id, s.company_id, s.date,
	s.entry_time, s.entry_location, s.entry_photo_url,
	s.exit_time, s.exit_location, s.exit_photo_url,
	s.minutes_late, s.tier, s.justification_state, s.observations,
	s.created_at, s.updated_at, e.full_name`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (attendance.ShiftRecord, error) {
	var (
		r                   attendance.ShiftRecord
		entryLoc, exitLoc   *string
		tier, justification string
	)
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.CompanyID, &r.Date,
		&r.EntryTime, &entryLoc, &r.EntryPhotoURL,
		&r.ExitTime, &exitLoc, &r.ExitPhotoURL,
		&r.MinutesLate, &tier, &justification, &r.Observations,
		&r.CreatedAt, &r.UpdatedAt, &r.EmployeeName,
	)
	if err != nil {
		return attendance.ShiftRecord{}, err
	}

	if r.EntryLocation, err = geo.ParsePointPtr(entryLoc); err != nil {
		return attendance.ShiftRecord{}, fmt.Errorf("shift %s entry_location: %w", r.ID, err)
	}
	if r.ExitLocation, err = geo.ParsePointPtr(exitLoc); err != nil {
		return attendance.ShiftRecord{}, fmt.Errorf("shift %s exit_location: %w", r.ID, err)
	}
	r.Tier = attendance.Tier(tier)
	r.JustificationState = attendance.JustificationState(justification)
	return r, nil
}

func collectShifts(rows pgx.Rows) ([]attendance.ShiftRecord, error) {
	defer rows.Close()

	var records []attendance.ShiftRecord
	for rows.Next() {
		r, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift records: %w", err)
	}
	return records, nil
}

// LockEmployee implements attendance.ShiftRecordRepository. The lock is held
// until the surrounding transaction ends.
func (s *shiftRecordRepository) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, s.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
		return fmt.Errorf("failed to lock employee %s: %w", employeeID, err)
	}
	return nil
}

// Create implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) Create(ctx context.Context, r attendance.ShiftRecord) (attendance.ShiftRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO shift_records (
			employee_id, company_id, date,
			entry_time, entry_location, entry_photo_url,
			exit_time, exit_location, exit_photo_url,
			minutes_late, tier, justification_state, observations
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		r.EmployeeID, r.CompanyID, r.Date,
		r.EntryTime, geo.FormatPointPtr(r.EntryLocation), r.EntryPhotoURL,
		r.ExitTime, geo.FormatPointPtr(r.ExitLocation), r.ExitPhotoURL,
		r.MinutesLate, string(r.Tier), string(r.JustificationState), r.Observations,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return attendance.ShiftRecord{}, fmt.Errorf("failed to create shift record: %w", err)
	}

	return r, nil
}

// GetByID implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.ShiftRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + shiftColumns + `
		FROM shift_records s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.id = $1 AND s.company_id = $2
	`

	r, err := scanShift(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ShiftRecord{}, attendance.ErrShiftNotFound
		}
		return attendance.ShiftRecord{}, fmt.Errorf("failed to get shift record by id: %w", err)
	}
	return r, nil
}

func (s *shiftRecordRepository) findOpen(ctx context.Context, where string, args ...any) (*attendance.ShiftRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + shiftColumns + `
		FROM shift_records s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.employee_id = $1
		  AND s.entry_time IS NOT NULL
		  AND s.exit_time IS NULL
		  AND ` + where + `
		ORDER BY s.date DESC, s.entry_time DESC
		LIMIT 1
	`

	r, err := scanShift(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open shift record: %w", err)
	}
	return &r, nil
}

// FindOpenOnDate implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) FindOpenOnDate(ctx context.Context, employeeID string, date time.Time) (*attendance.ShiftRecord, error) {
	return s.findOpen(ctx, "s.date = $2", employeeID, date)
}

// FindLatestOpenBefore implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) FindLatestOpenBefore(ctx context.Context, employeeID string, date time.Time) (*attendance.ShiftRecord, error) {
	return s.findOpen(ctx, "s.date < $2", employeeID, date)
}

// ListByEmployeeAndDate implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]attendance.ShiftRecord, error) {
	return s.ListByEmployeeInRange(ctx, employeeID, date, date)
}

// CountByEmployeeAndDate implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) CountByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (int, error) {
	q := GetQuerier(ctx, s.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM shift_records WHERE employee_id = $1 AND date = $2`,
		employeeID, date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count shift records: %w", err)
	}
	return count, nil
}

// ListByEmployeeInRange implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) ListByEmployeeInRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.ShiftRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + shiftColumns + `
		FROM shift_records s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.employee_id = $1 AND s.date BETWEEN $2 AND $3
		ORDER BY s.date ASC, s.entry_time ASC NULLS LAST, s.created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift records: %w", err)
	}
	return collectShifts(rows)
}

// Update implements attendance.ShiftRecordRepository. Every mutable column is
// written; callers pass the full record.
func (s *shiftRecordRepository) Update(ctx context.Context, r attendance.ShiftRecord) error {
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE shift_records SET
			entry_time = $1, entry_location = $2, entry_photo_url = $3,
			exit_time = $4, exit_location = $5, exit_photo_url = $6,
			minutes_late = $7, tier = $8, justification_state = $9, observations = $10,
			updated_at = NOW()
		WHERE id = $11 AND company_id = $12
	`

	tag, err := q.Exec(ctx, query,
		r.EntryTime, geo.FormatPointPtr(r.EntryLocation), r.EntryPhotoURL,
		r.ExitTime, geo.FormatPointPtr(r.ExitLocation), r.ExitPhotoURL,
		r.MinutesLate, string(r.Tier), string(r.JustificationState), r.Observations,
		r.ID, r.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrShiftNotFound
	}
	return nil
}

// Delete implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, s.db)

	tag, err := q.Exec(ctx, `DELETE FROM shift_records WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete shift record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrShiftNotFound
	}
	return nil
}

// List implements attendance.ShiftRecordRepository.
func (s *shiftRecordRepository) List(ctx context.Context, filter attendance.ShiftFilter, companyID string) ([]attendance.ShiftRecord, int64, error) {
	q := GetQuerier(ctx, s.db)

	// Build WHERE clause
	baseWhere := "s.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Employee name filter (search)
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		baseWhere += fmt.Sprintf(" AND e.full_name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND s.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND s.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND s.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Tier != nil && *filter.Tier != "" {
		baseWhere += fmt.Sprintf(" AND s.tier = $%d", argIdx)
		args = append(args, *filter.Tier)
		argIdx++
	}
	if filter.JustificationState != nil && *filter.JustificationState != "" {
		baseWhere += fmt.Sprintf(" AND s.justification_state = $%d", argIdx)
		args = append(args, *filter.JustificationState)
		argIdx++
	}
	if filter.OpenOnly {
		baseWhere += " AND s.entry_time IS NOT NULL AND s.exit_time IS NULL"
	}

	countQuery := `
		SELECT COUNT(*)
		FROM shift_records s
		JOIN employees e ON e.id = s.employee_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shift records: %w", err)
	}

	// Build ORDER BY
	orderByField := "s.date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.full_name"
	case "entry_time":
		orderByField = "s.entry_time"
	case "exit_time":
		orderByField = "s.exit_time"
	case "minutes_late":
		orderByField = "s.minutes_late"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM shift_records s
		JOIN employees e ON e.id = s.employee_id
		WHERE %s
		ORDER BY %s %s, s.entry_time %s
		LIMIT $%d OFFSET $%d
	`, shiftColumns, baseWhere, orderByField, sortOrder, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shift records: %w", err)
	}
	records, err := collectShifts(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
