package leave

import (
	"context"
	"time"
)

// StateRepository resolves approved leave for an employee and day. Leave
// requests themselves are managed elsewhere.
type StateRepository interface {
	GetStateOn(ctx context.Context, employeeID string, date time.Time) (State, error)
}
