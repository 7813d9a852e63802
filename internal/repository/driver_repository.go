package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetflow/console/internal/domain"
)

// DriverFilter narrows driver listings.
type DriverFilter struct {
	Statuses []string
	Search   string
	Page     Page
}

// DriverRepository reads fleet drivers.
type DriverRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Driver, error)
	List(ctx context.Context, filter DriverFilter) ([]domain.Driver, error)
}

type driverRepository struct {
	pool *pgxpool.Pool
}

// NewDriverRepository returns a Postgres-backed implementation.
func NewDriverRepository(pool *pgxpool.Pool) DriverRepository {
	return &driverRepository{pool: pool}
}

const driverColumns = `id, driver_id, first_name, last_name, email, phone_number, license_number,
        license_type, license_expiry_date, status, safety_score, total_trips_completed, created_at, updated_at`

func (r *driverRepository) GetByCode(ctx context.Context, code string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE driver_id=$1`
	return scanDriver(r.pool.QueryRow(ctx, query, code))
}

func (r *driverRepository) List(ctx context.Context, filter DriverFilter) ([]domain.Driver, error) {
	b := newClauseBuilder()
	b.in("status", filter.Statuses)
	b.search(filter.Search, "driver_id", "first_name", "last_name", "license_number")

	limit, offset := filter.Page.bounds()
	query := fmt.Sprintf(`SELECT %s FROM drivers WHERE %s ORDER BY driver_id LIMIT %d OFFSET %d`,
		driverColumns, b.where(), limit, offset)

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var d domain.Driver
	if err := row.Scan(
		&d.ID,
		&d.Code,
		&d.FirstName,
		&d.LastName,
		&d.Email,
		&d.PhoneNumber,
		&d.LicenseNumber,
		&d.LicenseType,
		&d.LicenseExpiryDate,
		&d.Status,
		&d.SafetyScore,
		&d.TotalTripsCompleted,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}
