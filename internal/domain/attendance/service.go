package attendance

import (
	"context"
)

// AttendanceService defines business logic for punch registration and shift administration
type AttendanceService interface {
	// RegisterPunch classifies the punch as entry or exit, validates it and stores it.
	// A cross-day anomaly returns a pending confirmation instead of writing.
	RegisterPunch(ctx context.Context, req PunchRequest) (PunchResponse, error)

	// ConfirmPunch applies a pending punch as the exit of the open shift it was held for
	ConfirmPunch(ctx context.Context, token string) (PunchResponse, error)

	// CancelPunch discards a pending punch. Unknown tokens are a no-op.
	CancelPunch(ctx context.Context, token string) error

	// CheckPattern reports whether a punch now would need confirmation
	CheckPattern(ctx context.Context, employeeID string) (PatternCheckResponse, error)

	// GetShiftState returns the classifier state for an employee and date
	GetShiftState(ctx context.Context, req ShiftStateRequest) (ShiftStateResponse, error)

	GetShift(ctx context.Context, id string) (ShiftResponse, error)

	ListShifts(ctx context.Context, filter ShiftFilter) (ListShiftResponse, error)

	// UpdateShift is the justified manual override (manager)
	UpdateShift(ctx context.Context, req UpdateShiftRequest) (ShiftResponse, error)

	SubmitJustification(ctx context.Context, req SubmitJustificationRequest) (ShiftResponse, error)

	ResolveJustification(ctx context.Context, req ResolveJustificationRequest) (ShiftResponse, error)

	// DeleteShift removes an erroneous record (manager cleanup)
	DeleteShift(ctx context.Context, id string) error
}
