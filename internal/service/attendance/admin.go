package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-attendance-go/internal/service/compliance"
)

// getOwnedShift loads a shift of the actor's company. Employees only see their own.
func (a *AttendanceServiceImpl) getOwnedShift(ctx context.Context, actor jwt.Actor, id string) (attendance.ShiftRecord, error) {
	record, err := a.ShiftRecordRepository.GetByID(ctx, id, actor.CompanyID)
	if err != nil {
		return attendance.ShiftRecord{}, storeError("get shift", err)
	}
	if !actor.IsManager() && record.EmployeeID != actor.EmployeeID {
		return attendance.ShiftRecord{}, attendance.ErrUnauthorized
	}
	return record, nil
}

// withLockedShift runs fn on a fresh read of the shift while punches of its
// employee are held off, in this process and in the store. The first read
// only learns whose shift it is; fn never sees it.
func (a *AttendanceServiceImpl) withLockedShift(ctx context.Context, actor jwt.Actor, id string, fn func(ctx context.Context, record attendance.ShiftRecord) error) error {
	owner, err := a.getOwnedShift(ctx, actor, id)
	if err != nil {
		return err
	}

	unlock, err := a.locks.Lock(ctx, owner.EmployeeID)
	if err != nil {
		return err
	}
	defer unlock()

	return a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := a.ShiftRecordRepository.LockEmployee(ctx, owner.EmployeeID); err != nil {
			return storeError("lock employee", err)
		}
		record, err := a.getOwnedShift(ctx, actor, id)
		if err != nil {
			return err
		}
		return fn(ctx, record)
	})
}

// GetShift implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetShift(ctx context.Context, id string) (attendance.ShiftResponse, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ShiftResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	record, err := a.getOwnedShift(ctx, actor, id)
	if err != nil {
		return attendance.ShiftResponse{}, err
	}
	return a.mapShiftToResponse(record), nil
}

// ListShifts implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListShifts(ctx context.Context, filter attendance.ShiftFilter) (attendance.ListShiftResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListShiftResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ListShiftResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	if !actor.IsManager() {
		if actor.EmployeeID == "" {
			return attendance.ListShiftResponse{}, fmt.Errorf("%w: employee_id", jwt.ErrMissingClaims)
		}
		filter.EmployeeID = &actor.EmployeeID
	}

	records, total, err := a.ShiftRecordRepository.List(ctx, filter, actor.CompanyID)
	if err != nil {
		return attendance.ListShiftResponse{}, storeError("list shifts", err)
	}

	// Map to response
	responses := make([]attendance.ShiftResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, a.mapShiftToResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListShiftResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Shifts:     responses,
	}, nil
}

// parseManualTime resolves a manual time against the shift date. Clock-only
// values are taken as local times on that date.
func (a *AttendanceServiceImpl) parseManualTime(value string, date time.Time) (time.Time, error) {
	parsed, ok := validator.ParseClockOrDateTime(value)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{Field: "time", Message: "invalid time " + value}}
	}
	t := parsed.Time
	if !parsed.HasDate {
		y, m, d := date.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, a.loc), nil
	}
	if !parsed.HasZone {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, a.loc), nil
	}
	return t, nil
}

// isFirstOfDay reports whether record holds the earliest entry of its day.
func (a *AttendanceServiceImpl) isFirstOfDay(ctx context.Context, record attendance.ShiftRecord) (bool, error) {
	records, err := a.ShiftRecordRepository.ListByEmployeeAndDate(ctx, record.EmployeeID, record.Date)
	if err != nil {
		return false, storeError("list shifts", err)
	}
	for _, r := range records {
		if r.EntryTime == nil || r.ID == record.ID {
			continue
		}
		if r.EntryTime.Before(*record.EntryTime) {
			return false, nil
		}
	}
	return true, nil
}

// UpdateShift implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateShift(ctx context.Context, req attendance.UpdateShiftRequest) (attendance.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ShiftResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ShiftResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if !actor.IsManager() {
		return attendance.ShiftResponse{}, attendance.ErrUnauthorized
	}

	var updated attendance.ShiftRecord
	err = a.withLockedShift(ctx, actor, req.ID, func(ctx context.Context, record attendance.ShiftRecord) error {
		var changes []string
		entryChanged := false

		if req.EntryTime != nil {
			entry, err := a.parseManualTime(*req.EntryTime, record.Date)
			if err != nil {
				return err
			}
			changes = append(changes, "entry "+a.describeTime(record.EntryTime)+" -> "+entry.In(a.loc).Format("15:04"))
			record.EntryTime = &entry
			entryChanged = true
		}

		if req.ExitTime != nil {
			exit, err := a.parseManualTime(*req.ExitTime, record.Date)
			if err != nil {
				return err
			}
			changes = append(changes, "exit "+a.describeTime(record.ExitTime)+" -> "+exit.In(a.loc).Format("15:04"))
			record.ExitTime = &exit
		}

		if record.ExitTime != nil && record.EntryTime == nil {
			return attendance.ErrExitWithoutEntry
		}
		if record.ExitTime != nil && record.ExitTime.Before(*record.EntryTime) {
			return attendance.ErrExitBeforeEntry
		}

		switch {
		case req.Tier != nil:
			tier := attendance.Tier(*req.Tier)
			changes = append(changes, "tier "+describeTier(record.Tier)+" -> "+string(tier))
			record.Tier = tier
			if tier.IsLeave() || tier == attendance.TierOnTime {
				record.MinutesLate = 0
			}
		case entryChanged:
			first, err := a.isFirstOfDay(ctx, record)
			if err != nil {
				return err
			}
			if first {
				emp, err := a.EmployeeRepository.GetByID(ctx, record.EmployeeID)
				if err != nil {
					return storeError("get employee", err)
				}
				result, err := a.evaluateEntry(ctx, emp, record.Date, *record.EntryTime)
				if err != nil {
					return err
				}
				record.MinutesLate = result.MinutesLate
				record.Tier = result.Tier
			} else {
				record.MinutesLate = 0
				record.Tier = ""
			}
		}

		text := "manual change (" + strings.Join(changes, ", ") + "): " + strings.TrimSpace(req.Justification)
		stamped := compliance.StampObservation(actor.UserID, a.now().In(a.loc), text, record.Observations)
		record.Observations = &stamped
		record.UpdatedAt = a.now()

		if err := a.ShiftRecordRepository.Update(ctx, record); err != nil {
			return storeError("update shift", err)
		}
		updated = record
		return nil
	})
	if err != nil {
		return attendance.ShiftResponse{}, err
	}

	slog.Info("shift updated manually",
		"shift_id", updated.ID,
		"employee_id", updated.EmployeeID,
		"actor", actor.UserID,
	)
	return a.mapShiftToResponse(updated), nil
}

func (a *AttendanceServiceImpl) describeTime(t *time.Time) string {
	if t == nil {
		return "none"
	}
	return t.In(a.loc).Format("15:04")
}

func describeTier(t attendance.Tier) string {
	if t == "" {
		return "none"
	}
	return string(t)
}

// needsJustification reports whether the shift has something to explain:
// lateness, or an exit that never came on a past day.
func (a *AttendanceServiceImpl) needsJustification(record attendance.ShiftRecord) bool {
	if record.EntryTime == nil {
		return false
	}
	if record.MinutesLate > 0 {
		return true
	}
	switch record.Tier {
	case attendance.TierEarlyWarning, attendance.TierYellow, attendance.TierRed:
		return true
	}
	return record.ExitTime == nil && record.Date.Before(a.dateOf(a.now()))
}

// SubmitJustification implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) SubmitJustification(ctx context.Context, req attendance.SubmitJustificationRequest) (attendance.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ShiftResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ShiftResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	var updated attendance.ShiftRecord
	err = a.withLockedShift(ctx, actor, req.ID, func(ctx context.Context, record attendance.ShiftRecord) error {
		if record.JustificationState.Resolved() {
			return attendance.ErrJustificationAlreadyResolved
		}
		if !a.needsJustification(record) {
			return attendance.ErrNothingToJustify
		}

		stamped := compliance.StampObservation(actor.UserID, a.now().In(a.loc), "justification: "+strings.TrimSpace(req.Reason), record.Observations)
		record.Observations = &stamped
		record.JustificationState = attendance.JustificationPending
		record.UpdatedAt = a.now()

		if err := a.ShiftRecordRepository.Update(ctx, record); err != nil {
			return storeError("update shift", err)
		}
		updated = record
		return nil
	})
	if err != nil {
		return attendance.ShiftResponse{}, err
	}

	slog.Info("justification submitted", "shift_id", updated.ID, "employee_id", updated.EmployeeID)
	return a.mapShiftToResponse(updated), nil
}

// ResolveJustification implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ResolveJustification(ctx context.Context, req attendance.ResolveJustificationRequest) (attendance.ShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ShiftResponse{}, err
	}

	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return attendance.ShiftResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if !actor.IsManager() {
		return attendance.ShiftResponse{}, attendance.ErrUnauthorized
	}

	text := "justification " + string(req.Decision)
	if req.Notes != nil && strings.TrimSpace(*req.Notes) != "" {
		text += ": " + strings.TrimSpace(*req.Notes)
	}

	var updated attendance.ShiftRecord
	err = a.withLockedShift(ctx, actor, req.ID, func(ctx context.Context, record attendance.ShiftRecord) error {
		if record.JustificationState.Resolved() {
			return attendance.ErrJustificationAlreadyResolved
		}

		stamped := compliance.StampObservation(actor.UserID, a.now().In(a.loc), text, record.Observations)
		record.Observations = &stamped
		record.JustificationState = attendance.JustificationState(req.Decision)
		record.UpdatedAt = a.now()

		if err := a.ShiftRecordRepository.Update(ctx, record); err != nil {
			return storeError("update shift", err)
		}
		updated = record
		return nil
	})
	if err != nil {
		return attendance.ShiftResponse{}, err
	}

	slog.Info("justification resolved",
		"shift_id", updated.ID,
		"decision", req.Decision,
		"actor", actor.UserID,
	)
	return a.mapShiftToResponse(updated), nil
}

// DeleteShift implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteShift(ctx context.Context, id string) error {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to extract claims from context: %w", err)
	}
	if !actor.IsManager() {
		return attendance.ErrUnauthorized
	}

	var record attendance.ShiftRecord
	err = a.withLockedShift(ctx, actor, id, func(ctx context.Context, current attendance.ShiftRecord) error {
		if err := a.ShiftRecordRepository.Delete(ctx, id, actor.CompanyID); err != nil {
			return storeError("delete shift", err)
		}
		record = current
		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range []*string{record.EntryPhotoURL, record.ExitPhotoURL} {
		if path == nil {
			continue
		}
		if err := a.photos.DeletePhoto(ctx, *path); err != nil {
			slog.Warn("failed to delete punch photo", "path", *path, "error", err)
		}
	}

	slog.Info("shift deleted", "shift_id", id, "employee_id", record.EmployeeID, "actor", actor.UserID)
	return nil
}
