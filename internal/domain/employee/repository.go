package employee

import "context"

type EmployeeRepository interface {
	// GetByID returns ErrEmployeeNotFound when no row matches.
	GetByID(ctx context.Context, id string) (Employee, error)

	// GetActiveByCompanyID lists active employees, ordered by full name.
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
