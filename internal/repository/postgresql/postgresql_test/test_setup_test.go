package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps the database the repository tests run against.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. The
// test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, postgresql.Migrate(ctx, db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	return setup
}

// TruncateAllTables removes all rows from the attendance tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"shift_records",
		"leave_requests",
		"employees",
		"work_locations",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// seed inserts a company location and one employee assigned to it.
func (s *TestDatabaseSetup) seed(t *testing.T, companyID string) (locationID, employeeID string) {
	t.Helper()
	ctx := context.Background()

	err := s.DB.QueryRow(ctx, `
		INSERT INTO work_locations (company_id, name, address, center, radius_meters)
		VALUES ($1, 'Sede Centro', 'Calle 10 # 5-20', '(4.6097,-74.0817)', 100)
		RETURNING id
	`, companyID).Scan(&locationID)
	require.NoError(t, err)

	err = s.DB.QueryRow(ctx, `
		INSERT INTO employees (company_id, employee_code, full_name, job_title, work_location_id, scheduled_entry, scheduled_exit)
		VALUES ($1, 'EMP-001', 'Ana Torres', 'Operaria', $2, '08:00', '17:00')
		RETURNING id
	`, companyID, locationID).Scan(&employeeID)
	require.NoError(t, err)

	return locationID, employeeID
}
