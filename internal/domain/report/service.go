package report

import (
	"context"
	"time"
)

// ReportService rolls shift records up into punctuality statistics.
type ReportService interface {
	// EmployeeStatistics summarizes one employee. Employees may only ask for themselves.
	EmployeeStatistics(ctx context.Context, req StatisticsRequest) (EmployeeStatisticsResponse, error)

	// FleetStatistics summarizes every active employee of the caller's company.
	FleetStatistics(ctx context.Context, req StatisticsRequest) (FleetStatisticsResponse, error)
}

// Calendar tells which dates an employee is expected to work.
type Calendar interface {
	IsWorkday(date time.Time) bool
}
