package location

import "context"

type WorkLocationRepository interface {
	// GetByID returns ErrLocationNotFound when no row matches.
	GetByID(ctx context.Context, id string) (WorkLocation, error)

	// ListActive returns every active location of the company.
	ListActive(ctx context.Context, companyID string) ([]WorkLocation, error)
}
