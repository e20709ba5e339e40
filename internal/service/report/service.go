package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

type Config struct {
	Location *time.Location
	// Concurrency bounds the per-employee fan-out of FleetStatistics.
	Concurrency int
	Now         func() time.Time
}

type ReportServiceImpl struct {
	attendance.ShiftRecordRepository
	employee.EmployeeRepository
	leave.StateRepository
	calendar    report.Calendar
	loc         *time.Location
	now         func() time.Time
	concurrency int
}

func NewReportService(
	shiftRepo attendance.ShiftRecordRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.StateRepository,
	calendar report.Calendar,
	cfg Config,
) report.ReportService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if calendar == nil {
		calendar = NewWeekdayCalendar()
	}
	return &ReportServiceImpl{
		ShiftRecordRepository: shiftRepo,
		EmployeeRepository:    employeeRepo,
		StateRepository:       leaveRepo,
		calendar:              calendar,
		loc:                   cfg.Location,
		now:                   cfg.Now,
		concurrency:           cfg.Concurrency,
	}
}

// storeError wraps repository failures so callers can retry them.
func storeError(op string, err error) error {
	if errors.Is(err, employee.ErrEmployeeNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &attendance.PersistenceError{Op: op, Err: err}
}

func (s *ReportServiceImpl) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// summarize loads one employee's records and leave days and rolls them up.
func (s *ReportServiceImpl) summarize(ctx context.Context, emp employee.Employee, rng report.DateRange) (report.EmployeeStatisticsResponse, error) {
	records, err := s.ShiftRecordRepository.ListByEmployeeInRange(ctx, emp.ID, rng.Start, rng.End)
	if err != nil {
		return report.EmployeeStatisticsResponse{}, storeError("list shifts of employee "+emp.ID, err)
	}

	punched := make(map[string]bool, len(records))
	for _, r := range records {
		punched[r.Date.Format(dateLayout)] = true
	}

	// Leave only matters on workdays nobody punched.
	today := s.today()
	onLeave := make(map[string]bool)
	for _, day := range rng.Days() {
		key := day.Format(dateLayout)
		if day.After(today) || punched[key] || !s.calendar.IsWorkday(day) {
			continue
		}
		state, err := s.StateRepository.GetStateOn(ctx, emp.ID, day)
		if err != nil {
			return report.EmployeeStatisticsResponse{}, storeError("get leave state of employee "+emp.ID, err)
		}
		if state.Active() {
			onLeave[key] = true
		}
	}

	return report.EmployeeStatisticsResponse{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		StartDate:    rng.Start.Format(dateLayout),
		EndDate:      rng.End.Format(dateLayout),
		GeneratedAt:  s.now().In(s.loc).Format(time.RFC3339),
		Summary:      Summarize(records, rng, s.calendar, today, onLeave),
	}, nil
}

// EmployeeStatistics implements report.ReportService.
func (s *ReportServiceImpl) EmployeeStatistics(ctx context.Context, req report.StatisticsRequest) (report.EmployeeStatisticsResponse, error) {
	if err := req.Validate(); err != nil {
		return report.EmployeeStatisticsResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return report.EmployeeStatisticsResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return report.EmployeeStatisticsResponse{}, fmt.Errorf("%w: employee_id", jwt.ErrMissingClaims)
	}
	if employeeID != actor.EmployeeID && !actor.IsManager() {
		return report.EmployeeStatisticsResponse{}, report.ErrUnauthorized
	}

	emp, err := s.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return report.EmployeeStatisticsResponse{}, storeError("get employee", err)
	}
	if emp.CompanyID != actor.CompanyID {
		return report.EmployeeStatisticsResponse{}, report.ErrUnauthorized
	}

	return s.summarize(ctx, emp, req.Range())
}

// FleetStatistics implements report.ReportService.
func (s *ReportServiceImpl) FleetStatistics(ctx context.Context, req report.StatisticsRequest) (report.FleetStatisticsResponse, error) {
	if err := req.Validate(); err != nil {
		return report.FleetStatisticsResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return report.FleetStatisticsResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if !actor.IsManager() {
		return report.FleetStatisticsResponse{}, report.ErrUnauthorized
	}

	employees, err := s.EmployeeRepository.GetActiveByCompanyID(ctx, actor.CompanyID)
	if err != nil {
		return report.FleetStatisticsResponse{}, storeError("list employees", err)
	}

	rng := req.Range()
	results := make([]report.EmployeeStatisticsResponse, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, emp := range employees {
		g.Go(func() error {
			res, err := s.summarize(gctx, emp, rng)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.FleetStatisticsResponse{}, err
	}

	percents := make([]int, len(results))
	for i, r := range results {
		percents[i] = r.Summary.PunctualityPercent
	}

	slog.Info("fleet statistics generated",
		"company_id", actor.CompanyID,
		"employees", len(results),
		"start_date", req.StartDate,
		"end_date", req.EndDate,
	)

	return report.FleetStatisticsResponse{
		StartDate:                 rng.Start.Format(dateLayout),
		EndDate:                   rng.End.Format(dateLayout),
		GeneratedAt:               s.now().In(s.loc).Format(time.RFC3339),
		TotalEmployees:            len(results),
		AveragePunctualityPercent: FleetPunctuality(percents),
		Employees:                 results,
	}, nil
}
