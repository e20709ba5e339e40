package attendance

import (
	"context"
	"time"
)

// ShiftRecordRepository defines data access methods for shift records.
// Lookups by ID include companyID to prevent cross-company access.
type ShiftRecordRepository interface {
	// LockEmployee serializes punches of one employee until the surrounding
	// transaction ends. Must be called inside a transaction.
	LockEmployee(ctx context.Context, employeeID string) error

	Create(ctx context.Context, record ShiftRecord) (ShiftRecord, error)

	GetByID(ctx context.Context, id string, companyID string) (ShiftRecord, error)

	// FindOpenOnDate returns the record on date that has an entry and no exit, or nil.
	FindOpenOnDate(ctx context.Context, employeeID string, date time.Time) (*ShiftRecord, error)

	// FindLatestOpenBefore returns the most recent open record dated before the given date, or nil.
	FindLatestOpenBefore(ctx context.Context, employeeID string, date time.Time) (*ShiftRecord, error)

	// ListByEmployeeAndDate returns the day's records ordered by entry time.
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]ShiftRecord, error)

	CountByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (int, error)

	// ListByEmployeeInRange returns records with start <= date <= end, oldest first.
	ListByEmployeeInRange(ctx context.Context, employeeID string, start, end time.Time) ([]ShiftRecord, error)

	Update(ctx context.Context, record ShiftRecord) error

	Delete(ctx context.Context, id string, companyID string) error

	List(ctx context.Context, filter ShiftFilter, companyID string) ([]ShiftRecord, int64, error)
}
