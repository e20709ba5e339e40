package employee

import (
	"time"
)

// Employee is the reference data a punch needs: who, where and when they are
// expected. Maintained by the HR screens, read-only here.
type Employee struct {
	ID             string
	CompanyID      string
	EmployeeCode   string
	FullName       string
	JobTitle       string
	WorkLocationID *string
	ScheduledEntry *string // HH:MM, local to the company timezone
	ScheduledExit  *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasSchedule reports whether both ends of the working day are configured.
func (e Employee) HasSchedule() bool {
	return e.ScheduledEntry != nil && e.ScheduledExit != nil
}
