package report

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// MaxRangeDays bounds a statistics request.
const MaxRangeDays = 366

// DateRange is an inclusive range of calendar dates, each stored as UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns every date of the range in order.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ========================================
// STATISTICS
// ========================================

type StatisticsRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD
}

func (r *StatisticsRequest) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required and must be in YYYY-MM-DD format",
		})
	}

	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required and must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if int(end.Sub(start).Hours()/24)+1 > MaxRangeDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "range must not exceed 366 days",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range returns the parsed range. Call Validate first.
func (r *StatisticsRequest) Range() DateRange {
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return DateRange{Start: start, End: end}
}

// Summary is the punctuality roll-up of one employee over a range.
type Summary struct {
	TotalDays          int     `json:"total_days"`
	OnTimeDays         int     `json:"on_time_days"`
	LateDays           int     `json:"late_days"`
	AvgLateMinutes     float64 `json:"avg_late_minutes"`
	Absences           int     `json:"absences"`
	LeaveDays          int     `json:"leave_days"`
	JustifiedDays      int     `json:"justified_days"`
	EarlyWarningDays   int     `json:"early_warning_days"`
	PunctualityPercent int     `json:"punctuality_percent"`
}

type EmployeeStatisticsResponse struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	GeneratedAt  string  `json:"generated_at"`
	Summary      Summary `json:"summary"`
}

type FleetStatisticsResponse struct {
	StartDate                 string                       `json:"start_date"`
	EndDate                   string                       `json:"end_date"`
	GeneratedAt               string                       `json:"generated_at"`
	TotalEmployees            int                          `json:"total_employees"`
	AveragePunctualityPercent float64                      `json:"average_punctuality_percent"`
	Employees                 []EmployeeStatisticsResponse `json:"employees"`
}
