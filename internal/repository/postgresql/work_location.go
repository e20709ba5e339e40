package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/geo"
	"github.com/jackc/pgx/v5"
)

type workLocationRepository struct {
	db *database.DB
}

func NewWorkLocationRepository(db *database.DB) location.WorkLocationRepository {
	return &workLocationRepository{db: db}
}

const workLocationColumns = `
	id, company_id, name, address, center, radius_meters, is_active, created_at, updated_at`

func scanWorkLocation(row rowScanner) (location.WorkLocation, error) {
	var (
		loc    location.WorkLocation
		center string
	)
	err := row.Scan(
		&loc.ID, &loc.CompanyID, &loc.Name, &loc.Address, &center, &loc.RadiusMeters,
		&loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		return location.WorkLocation{}, err
	}

	if loc.Center, err = geo.ParsePoint(center); err != nil {
		return location.WorkLocation{}, fmt.Errorf("work location %s center: %w", loc.ID, err)
	}
	return loc, nil
}

// GetByID implements location.WorkLocationRepository.
func (w *workLocationRepository) GetByID(ctx context.Context, id string) (location.WorkLocation, error) {
	q := GetQuerier(ctx, w.db)

	query := `SELECT ` + workLocationColumns + ` FROM work_locations WHERE id = $1`

	loc, err := scanWorkLocation(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.WorkLocation{}, location.ErrLocationNotFound
		}
		return location.WorkLocation{}, fmt.Errorf("failed to get work location: %w", err)
	}

	return loc, nil
}

// ListActive implements location.WorkLocationRepository.
func (w *workLocationRepository) ListActive(ctx context.Context, companyID string) ([]location.WorkLocation, error) {
	q := GetQuerier(ctx, w.db)

	query := `SELECT ` + workLocationColumns + `
		FROM work_locations
		WHERE company_id = $1 AND is_active
		ORDER BY name ASC
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work locations: %w", err)
	}
	defer rows.Close()

	var locations []location.WorkLocation
	for rows.Next() {
		loc, err := scanWorkLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work location: %w", err)
		}
		locations = append(locations, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}
