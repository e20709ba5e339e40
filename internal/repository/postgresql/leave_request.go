package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveStateRepositoryImpl struct {
	db *database.DB
}

func NewLeaveStateRepository(db *database.DB) leave.StateRepository {
	return &leaveStateRepositoryImpl{db: db}
}

// GetStateOn implements leave.StateRepository. The most recent approved
// request covering date wins.
func (r *leaveStateRepositoryImpl) GetStateOn(ctx context.Context, employeeID string, date time.Time) (leave.State, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT leave_category
		FROM leave_requests
		WHERE employee_id = $1
		  AND status = 'approved'
		  AND $2::date BETWEEN start_date AND end_date
		ORDER BY created_at DESC
		LIMIT 1
	`

	var category string
	err := q.QueryRow(ctx, query, employeeID, date).Scan(&category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.StateNone, nil
		}
		return leave.StateNone, fmt.Errorf("failed to get leave state: %w", err)
	}

	return leave.ParseState(category)
}
