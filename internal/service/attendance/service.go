package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/compliance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/file"
)

type Config struct {
	// Location is the timezone punches are dated and evaluated in.
	Location   *time.Location
	PendingTTL time.Duration
	Now        func() time.Time
}

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.ShiftRecordRepository
	employee.EmployeeRepository
	leave.StateRepository
	geofence  location.GeofenceService
	photos    file.PhotoService
	schedules *compliance.ScheduleResolver
	metrics   *metrics.AttendanceMetrics
	pending   *PendingStore
	locks     *keylock.Locker
	loc       *time.Location
	now       func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	shiftRepo attendance.ShiftRecordRepository,
	employeeRepo employee.EmployeeRepository,
	leaveRepo leave.StateRepository,
	geofence location.GeofenceService,
	photos file.PhotoService,
	schedules *compliance.ScheduleResolver,
	m *metrics.AttendanceMetrics,
	cfg Config,
) *AttendanceServiceImpl {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if schedules == nil {
		schedules = compliance.NewScheduleResolver(compliance.DefaultScheduleConfig())
	}
	return &AttendanceServiceImpl{
		tx:                    tx,
		ShiftRecordRepository: shiftRepo,
		EmployeeRepository:    employeeRepo,
		StateRepository:       leaveRepo,
		geofence:              geofence,
		photos:                photos,
		schedules:             schedules,
		metrics:               m,
		pending:               NewPendingStore(cfg.PendingTTL, cfg.Now),
		locks:                 keylock.New(),
		loc:                   cfg.Location,
		now:                   cfg.Now,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

// dateOf returns the calendar date of t in the service timezone, as UTC midnight.
func (a *AttendanceServiceImpl) dateOf(t time.Time) time.Time {
	y, m, d := t.In(a.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// storeError marks unexpected repository failures as retryable persistence
// errors. Domain errors pass through unchanged.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *attendance.PersistenceError
	if errors.As(err, &pe) ||
		errors.Is(err, attendance.ErrShiftNotFound) ||
		errors.Is(err, employee.ErrEmployeeNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &attendance.PersistenceError{Op: op, Err: err}
}

// resolveEmployee returns the employee a request acts on. Employees act on
// themselves only; managers may act on anyone in their company.
func (a *AttendanceServiceImpl) resolveEmployee(ctx context.Context, actor jwt.Actor, employeeID string) (employee.Employee, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if employeeID == "" {
		return employee.Employee{}, fmt.Errorf("%w: employee_id", jwt.ErrMissingClaims)
	}
	if employeeID != actor.EmployeeID && !actor.IsManager() {
		return employee.Employee{}, attendance.ErrUnauthorized
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, storeError("get employee", err)
	}
	if emp.CompanyID != actor.CompanyID {
		return employee.Employee{}, attendance.ErrUnauthorized
	}
	return emp, nil
}

// ========================================
// PUNCH REGISTRATION
// ========================================

type punchOutcome struct {
	kind       attendance.PunchKind
	record     attendance.ShiftRecord
	compliance *compliance.Result
	pattern    *attendance.PatternCheck
}

// RegisterPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RegisterPunch(ctx context.Context, req attendance.PunchRequest) (attendance.PunchResponse, error) {
	started := time.Now()
	kindLabel := "unknown"
	status := "error"
	defer func() {
		a.metrics.RecordPunch(kindLabel, status, time.Since(started))
	}()

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	if err := req.SensorFailure(); err != nil {
		var sensorErr *attendance.SensorUnavailableError
		if errors.As(err, &sensorErr) {
			a.metrics.RecordSensorFailure(string(sensorErr.Sensor))
		}
		status = "rejected"
		return attendance.PunchResponse{}, err
	}
	if err := req.Validate(); err != nil {
		status = "rejected"
		return attendance.PunchResponse{}, err
	}

	emp, err := a.resolveEmployee(ctx, actor, req.EmployeeID)
	if err != nil {
		return attendance.PunchResponse{}, err
	}
	if !emp.IsActive {
		status = "rejected"
		return attendance.PunchResponse{}, employee.ErrEmployeeInactive
	}

	point := geo.Point{Latitude: *req.Latitude, Longitude: *req.Longitude}

	// Geofence runs before anything is written.
	fence, err := a.geofence.ValidateLocation(ctx, point, emp.ID)
	if err != nil {
		if errors.Is(err, attendance.ErrNoLocationAssigned) {
			status = "rejected"
		}
		return attendance.PunchResponse{}, err
	}
	if !fence.IsValid {
		status = "rejected"
		a.metrics.RecordGeofenceRejection()
		return attendance.PunchResponse{}, &attendance.OutOfGeofenceError{
			LocationName:   fence.Location.Name,
			DistanceMeters: fence.DistanceMeters,
			RadiusMeters:   fence.RadiusMeters,
		}
	}

	unlock, err := a.locks.Lock(ctx, emp.ID)
	if err != nil {
		return attendance.PunchResponse{}, err
	}
	defer unlock()

	punchedAt := a.now()
	today := a.dateOf(punchedAt)
	fix := punchFix{at: punchedAt, point: point, photo: req.Photo, filename: req.PhotoFilename}

	var outcome punchOutcome
	err = a.withPhotoCleanup(ctx, func(ctx context.Context, uploaded *[]string) error {
		if err := a.ShiftRecordRepository.LockEmployee(ctx, emp.ID); err != nil {
			return storeError("lock employee", err)
		}

		open, err := a.ShiftRecordRepository.FindOpenOnDate(ctx, emp.ID, today)
		if err != nil {
			return storeError("find open shift", err)
		}
		if open != nil {
			outcome, err = a.closeShift(ctx, *open, fix, uploaded)
			return err
		}

		count, err := a.ShiftRecordRepository.CountByEmployeeAndDate(ctx, emp.ID, today)
		if err != nil {
			return storeError("count shifts", err)
		}
		if count == 0 {
			check, err := a.detectPattern(ctx, emp.ID, today)
			if err != nil {
				return err
			}
			if check.NeedsAlert {
				outcome = punchOutcome{pattern: &check}
				return nil
			}
		}

		outcome, err = a.openShift(ctx, emp, today, count == 0, fix, uploaded)
		return err
	})
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	geofenceResp := &attendance.GeofenceResponse{
		LocationName:   fence.Location.Name,
		DistanceMeters: fence.DistanceMeters,
		RadiusMeters:   fence.RadiusMeters,
		Message:        fence.Message,
	}

	if outcome.pattern != nil {
		p := a.pending.Put(attendance.PendingPunch{
			EmployeeID:    emp.ID,
			CompanyID:     emp.CompanyID,
			ActorUserID:   actor.UserID,
			Date:          today,
			PunchedAt:     punchedAt,
			Location:      point,
			Accuracy:      req.Accuracy,
			Photo:         req.Photo,
			PhotoFilename: req.PhotoFilename,
			Check:         *outcome.pattern,
		})
		a.metrics.RecordPending("created")
		a.metrics.SetPendingActive(a.pending.Len())
		status = "pending"

		slog.Info("punch held for confirmation",
			"employee_id", emp.ID,
			"kind", p.Check.Kind,
			"open_shift_id", p.Check.OpenShift.ID,
		)

		return attendance.PunchResponse{
			Status:   attendance.PunchStatusPendingConfirmation,
			State:    attendance.StateNoEntry,
			Geofence: geofenceResp,
			Pending:  a.mapPendingToResponse(p),
		}, nil
	}

	kindLabel = string(outcome.kind)
	status = "recorded"
	return a.buildPunchResponse(outcome, geofenceResp), nil
}

type punchFix struct {
	at       time.Time
	point    geo.Point
	photo    []byte
	filename string
}

// withPhotoCleanup runs fn in a transaction and deletes the photos it
// uploaded when the transaction does not commit.
func (a *AttendanceServiceImpl) withPhotoCleanup(ctx context.Context, fn func(ctx context.Context, uploaded *[]string) error) error {
	var uploaded []string
	err := a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return fn(ctx, &uploaded)
	})
	if err != nil {
		for _, path := range uploaded {
			if delErr := a.photos.DeletePhoto(context.WithoutCancel(ctx), path); delErr != nil {
				slog.Error("failed to delete orphaned punch photo", "path", path, "error", delErr)
			}
		}
	}
	return err
}

func (a *AttendanceServiceImpl) uploadPhoto(ctx context.Context, employeeID string, date time.Time, kind attendance.PunchKind, fix punchFix, uploaded *[]string) (*string, error) {
	path, err := a.photos.UploadPunchPhoto(ctx, employeeID, date, string(kind), fix.photo, fix.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to upload punch photo: %w", err)
	}
	*uploaded = append(*uploaded, path)
	return &path, nil
}

// openShift creates the entry record. Only the first entry of the day is
// evaluated against the schedule.
func (a *AttendanceServiceImpl) openShift(ctx context.Context, emp employee.Employee, date time.Time, firstOfDay bool, fix punchFix, uploaded *[]string) (punchOutcome, error) {
	record := attendance.ShiftRecord{
		EmployeeID:         emp.ID,
		CompanyID:          emp.CompanyID,
		Date:               date,
		EntryTime:          &fix.at,
		EntryLocation:      &fix.point,
		JustificationState: attendance.JustificationNone,
	}

	var result *compliance.Result
	if firstOfDay {
		r, err := a.evaluateEntry(ctx, emp, date, fix.at)
		if err != nil {
			return punchOutcome{}, err
		}
		record.MinutesLate = r.MinutesLate
		record.Tier = r.Tier
		result = &r
	}

	photoURL, err := a.uploadPhoto(ctx, emp.ID, date, attendance.PunchEntry, fix, uploaded)
	if err != nil {
		return punchOutcome{}, err
	}
	record.EntryPhotoURL = photoURL

	created, err := a.ShiftRecordRepository.Create(ctx, record)
	if err != nil {
		return punchOutcome{}, storeError("create shift", err)
	}
	if created.EmployeeName == nil {
		created.EmployeeName = &emp.FullName
	}

	if result != nil {
		a.metrics.RecordTier(string(result.Tier))
	}
	slog.Info("entry recorded",
		"employee_id", emp.ID,
		"shift_id", created.ID,
		"minutes_late", created.MinutesLate,
		"tier", created.Tier,
	)
	return punchOutcome{kind: attendance.PunchEntry, record: created, compliance: result}, nil
}

// closeShift fills the exit fields of an open record.
func (a *AttendanceServiceImpl) closeShift(ctx context.Context, open attendance.ShiftRecord, fix punchFix, uploaded *[]string) (punchOutcome, error) {
	if open.EntryTime != nil && fix.at.Before(*open.EntryTime) {
		return punchOutcome{}, attendance.ErrExitBeforeEntry
	}

	photoURL, err := a.uploadPhoto(ctx, open.EmployeeID, open.Date, attendance.PunchExit, fix, uploaded)
	if err != nil {
		return punchOutcome{}, err
	}

	open.ExitTime = &fix.at
	open.ExitLocation = &fix.point
	open.ExitPhotoURL = photoURL
	open.UpdatedAt = fix.at

	if err := a.ShiftRecordRepository.Update(ctx, open); err != nil {
		return punchOutcome{}, storeError("update shift", err)
	}

	slog.Info("exit recorded",
		"employee_id", open.EmployeeID,
		"shift_id", open.ID,
		"shift_date", open.Date.Format("2006-01-02"),
	)
	return punchOutcome{kind: attendance.PunchExit, record: open}, nil
}

// evaluateEntry classifies an entry against the schedule and the leave state.
func (a *AttendanceServiceImpl) evaluateEntry(ctx context.Context, emp employee.Employee, date time.Time, entry time.Time) (compliance.Result, error) {
	state, err := a.StateRepository.GetStateOn(ctx, emp.ID, date)
	if err != nil {
		return compliance.Result{}, storeError("get leave state", err)
	}

	schedule, _ := a.schedules.Resolve(emp)
	scheduled, err := schedule.EntryOn(date, a.loc)
	if err != nil {
		return compliance.Result{}, fmt.Errorf("invalid schedule for employee %s: %w", emp.ID, err)
	}

	return compliance.Classify(entry, scheduled, state), nil
}

// ========================================
// CROSS-DAY ANOMALY
// ========================================

// detectPattern flags a punch that might have to close yesterday's shift.
// Callers check that today has no records yet.
func (a *AttendanceServiceImpl) detectPattern(ctx context.Context, employeeID string, today time.Time) (attendance.PatternCheck, error) {
	yesterday := today.AddDate(0, 0, -1)
	open, err := a.ShiftRecordRepository.FindOpenOnDate(ctx, employeeID, yesterday)
	if err != nil {
		return attendance.PatternCheck{}, storeError("find open shift", err)
	}
	if open == nil {
		return attendance.PatternCheck{}, nil
	}

	entry := "an unknown time"
	if open.EntryTime != nil {
		entry = open.EntryTime.In(a.loc).Format("15:04")
	}
	return attendance.PatternCheck{
		NeedsAlert: true,
		Kind:       attendance.PatternMissingExit,
		Message: fmt.Sprintf(
			"the shift opened on %s at %s has no exit; this punch may need to close it instead of starting a new shift",
			open.Date.Format("2006-01-02"), entry,
		),
		OpenShift: open,
	}, nil
}

// CheckPattern implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckPattern(ctx context.Context, employeeID string) (attendance.PatternCheckResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.PatternCheckResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	emp, err := a.resolveEmployee(ctx, actor, employeeID)
	if err != nil {
		return attendance.PatternCheckResponse{}, err
	}

	today := a.dateOf(a.now())
	count, err := a.ShiftRecordRepository.CountByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.PatternCheckResponse{}, storeError("count shifts", err)
	}
	if count > 0 {
		return attendance.PatternCheckResponse{}, nil
	}

	check, err := a.detectPattern(ctx, emp.ID, today)
	if err != nil {
		return attendance.PatternCheckResponse{}, err
	}
	return mapPatternToResponse(check), nil
}

// ConfirmPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ConfirmPunch(ctx context.Context, token string) (attendance.PunchResponse, error) {
	started := time.Now()
	kindLabel := "unknown"
	status := "error"
	defer func() {
		a.metrics.RecordPunch(kindLabel, status, time.Since(started))
	}()

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	p, ok := a.pending.Peek(token)
	if !ok {
		return attendance.PunchResponse{}, attendance.ErrPendingPunchNotFound
	}
	if !canActOnPending(actor, p) {
		return attendance.PunchResponse{}, attendance.ErrUnauthorized
	}

	unlock, err := a.locks.Lock(ctx, p.EmployeeID)
	if err != nil {
		return attendance.PunchResponse{}, err
	}
	defer unlock()

	// Take after locking so a concurrent confirm of the same token loses.
	p, ok = a.pending.Take(token)
	if !ok {
		return attendance.PunchResponse{}, attendance.ErrPendingPunchNotFound
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, p.EmployeeID)
	if err != nil {
		a.pending.Restore(p)
		return attendance.PunchResponse{}, storeError("get employee", err)
	}

	fix := punchFix{at: p.PunchedAt, point: p.Location, photo: p.Photo, filename: p.PhotoFilename}

	var outcome punchOutcome
	err = a.withPhotoCleanup(ctx, func(ctx context.Context, uploaded *[]string) error {
		if err := a.ShiftRecordRepository.LockEmployee(ctx, p.EmployeeID); err != nil {
			return storeError("lock employee", err)
		}

		// Re-classify, this time looking at any prior date.
		open, err := a.ShiftRecordRepository.FindOpenOnDate(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return storeError("find open shift", err)
		}
		if open == nil {
			open, err = a.ShiftRecordRepository.FindLatestOpenBefore(ctx, p.EmployeeID, p.Date)
			if err != nil {
				return storeError("find open shift", err)
			}
		}
		if open != nil {
			outcome, err = a.closeShift(ctx, *open, fix, uploaded)
			return err
		}

		count, err := a.ShiftRecordRepository.CountByEmployeeAndDate(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return storeError("count shifts", err)
		}
		outcome, err = a.openShift(ctx, emp, p.Date, count == 0, fix, uploaded)
		return err
	})
	if err != nil {
		var pe *attendance.PersistenceError
		if errors.As(err, &pe) {
			a.pending.Restore(p)
		}
		return attendance.PunchResponse{}, err
	}

	a.metrics.RecordPending("confirmed")
	a.metrics.SetPendingActive(a.pending.Len())
	kindLabel = string(outcome.kind)
	status = "recorded"

	slog.Info("pending punch confirmed",
		"employee_id", p.EmployeeID,
		"kind", outcome.kind,
		"shift_id", outcome.record.ID,
	)
	return a.buildPunchResponse(outcome, nil), nil
}

// CancelPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CancelPunch(ctx context.Context, token string) error {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract claims from context: %w", err)
	}

	p, ok := a.pending.Peek(token)
	if !ok {
		return nil
	}
	if !canActOnPending(actor, p) {
		return attendance.ErrUnauthorized
	}

	a.pending.Delete(token)
	a.metrics.RecordPending("cancelled")
	a.metrics.SetPendingActive(a.pending.Len())

	slog.Info("pending punch cancelled", "employee_id", p.EmployeeID)
	return nil
}

func canActOnPending(actor jwt.Actor, p attendance.PendingPunch) bool {
	if actor.CompanyID != p.CompanyID {
		return false
	}
	return actor.UserID == p.ActorUserID || actor.EmployeeID == p.EmployeeID || actor.IsManager()
}

// ========================================
// SHIFT STATE
// ========================================

// GetShiftState implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetShiftState(ctx context.Context, req attendance.ShiftStateRequest) (attendance.ShiftStateResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ShiftStateResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ShiftStateResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	emp, err := a.resolveEmployee(ctx, actor, req.EmployeeID)
	if err != nil {
		return attendance.ShiftStateResponse{}, err
	}

	today := a.dateOf(a.now())
	date := today
	if req.Date != "" {
		date, _ = time.Parse("2006-01-02", req.Date)
	}

	records, err := a.ShiftRecordRepository.ListByEmployeeAndDate(ctx, emp.ID, date)
	if err != nil {
		return attendance.ShiftStateResponse{}, storeError("list shifts", err)
	}

	resp := attendance.ShiftStateResponse{
		EmployeeID: emp.ID,
		Date:       date.Format("2006-01-02"),
		State:      attendance.StateOf(records),
		Shifts:     make([]attendance.ShiftResponse, 0, len(records)),
		CanPunch:   emp.IsActive && date.Equal(today),
		NextPunch:  attendance.PunchEntry,
	}
	for _, r := range records {
		if r.EmployeeName == nil {
			r.EmployeeName = &emp.FullName
		}
		shift := a.mapShiftToResponse(r)
		resp.Shifts = append(resp.Shifts, shift)
		if r.IsOpen() {
			open := shift
			resp.OpenShift = &open
		}
	}

	switch resp.State {
	case attendance.StateNoEntry:
		resp.Message = "no entry recorded; the next punch opens a shift"
	case attendance.StateEntryRecorded:
		resp.NextPunch = attendance.PunchExit
		resp.Message = "shift open; the next punch records the exit"
	case attendance.StateComplete:
		resp.Message = "shift complete; the next punch opens a new shift"
	}

	if date.Equal(today) && len(records) == 0 {
		check, err := a.detectPattern(ctx, emp.ID, today)
		if err != nil {
			return attendance.ShiftStateResponse{}, err
		}
		if check.NeedsAlert {
			pattern := mapPatternToResponse(check)
			resp.Pattern = &pattern
			resp.Message = check.Message
		}
	}

	return resp, nil
}

// ========================================
// RESPONSE MAPPING
// ========================================

func (a *AttendanceServiceImpl) buildPunchResponse(outcome punchOutcome, fence *attendance.GeofenceResponse) attendance.PunchResponse {
	shift := a.mapShiftToResponse(outcome.record)
	resp := attendance.PunchResponse{
		Status:   attendance.PunchStatusRecorded,
		Kind:     outcome.kind,
		Shift:    &shift,
		Geofence: fence,
	}
	if outcome.kind == attendance.PunchEntry {
		resp.State = attendance.StateEntryRecorded
	} else {
		resp.State = attendance.StateComplete
	}
	if outcome.compliance != nil {
		resp.Compliance = &attendance.ComplianceResponse{
			MinutesLate:  outcome.compliance.MinutesLate,
			Tier:         string(outcome.compliance.Tier),
			EarlyWarning: outcome.compliance.EarlyWarning,
		}
	}
	return resp
}

func (a *AttendanceServiceImpl) mapPendingToResponse(p attendance.PendingPunch) *attendance.PendingPunchResponse {
	resp := &attendance.PendingPunchResponse{
		Token:     p.Token,
		Kind:      string(p.Check.Kind),
		Message:   p.Check.Message,
		ExpiresAt: p.ExpiresAt.In(a.loc).Format(time.RFC3339),
	}
	if p.Check.OpenShift != nil {
		resp.OpenShiftID = p.Check.OpenShift.ID
		resp.OpenShiftDate = p.Check.OpenShift.Date.Format("2006-01-02")
	}
	return resp
}

func mapPatternToResponse(check attendance.PatternCheck) attendance.PatternCheckResponse {
	resp := attendance.PatternCheckResponse{
		NeedsAlert: check.NeedsAlert,
		Kind:       string(check.Kind),
		Message:    check.Message,
	}
	if check.OpenShift != nil {
		resp.OpenShiftID = check.OpenShift.ID
		resp.OpenShiftDate = check.OpenShift.Date.Format("2006-01-02")
	}
	return resp
}

// timePtrToString safely converts a *time.Time to a string in the service timezone.
func (a *AttendanceServiceImpl) timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.In(a.loc).Format("2006-01-02 15:04:05")
	return &format
}

// mapShiftToResponse converts a ShiftRecord entity to ShiftResponse
func (a *AttendanceServiceImpl) mapShiftToResponse(r attendance.ShiftRecord) attendance.ShiftResponse {
	var employeeName string
	if r.EmployeeName != nil {
		employeeName = *r.EmployeeName
	}

	var workingHours *float64
	if r.IsComplete() {
		hours := float64(int(r.ExitTime.Sub(*r.EntryTime).Minutes())) / 60
		workingHours = &hours
	}

	resp := attendance.ShiftResponse{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		EmployeeName:       employeeName,
		Date:               r.Date.Format("2006-01-02"),
		EntryTime:          a.timePtrToString(r.EntryTime),
		ExitTime:           a.timePtrToString(r.ExitTime),
		EntryPhotoURL:      r.EntryPhotoURL,
		ExitPhotoURL:       r.ExitPhotoURL,
		WorkingHours:       workingHours,
		MinutesLate:        r.MinutesLate,
		Tier:               string(r.Tier),
		EarlyWarning:       r.Tier == attendance.TierEarlyWarning,
		JustificationState: string(r.JustificationState),
		Observations:       r.Observations,
		CreatedAt:          r.CreatedAt.In(a.loc).Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.In(a.loc).Format(time.RFC3339),
	}
	if r.EntryLocation != nil {
		resp.EntryLatitude = &r.EntryLocation.Latitude
		resp.EntryLongitude = &r.EntryLocation.Longitude
	}
	if r.ExitLocation != nil {
		resp.ExitLatitude = &r.ExitLocation.Latitude
		resp.ExitLongitude = &r.ExitLocation.Longitude
	}
	return resp
}
