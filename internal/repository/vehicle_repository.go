package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetflow/console/internal/domain"
)

// VehicleFilter narrows vehicle listings.
type VehicleFilter struct {
	Statuses []string
	Type     string
	Search   string
	Page     Page
}

// VehicleRepository reads fleet vehicles.
type VehicleRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Vehicle, error)
	List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, error)
}

type vehicleRepository struct {
	pool *pgxpool.Pool
}

// NewVehicleRepository returns a Postgres-backed implementation.
func NewVehicleRepository(pool *pgxpool.Pool) VehicleRepository {
	return &vehicleRepository{pool: pool}
}

const vehicleColumns = `id, vehicle_id, name, vehicle_type, make, model, year, license_plate,
        max_capacity_kg, current_odometer_km, status, created_at, updated_at`

func (r *vehicleRepository) GetByCode(ctx context.Context, code string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE vehicle_id=$1`
	return scanVehicle(r.pool.QueryRow(ctx, query, code))
}

func (r *vehicleRepository) List(ctx context.Context, filter VehicleFilter) ([]domain.Vehicle, error) {
	b := newClauseBuilder()
	b.in("status", filter.Statuses)
	if filter.Type != "" {
		b.eq("vehicle_type", filter.Type)
	}
	b.search(filter.Search, "vehicle_id", "name", "license_plate")

	limit, offset := filter.Page.bounds()
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE %s ORDER BY vehicle_id LIMIT %d OFFSET %d`,
		vehicleColumns, b.where(), limit, offset)

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(
		&v.ID,
		&v.Code,
		&v.Name,
		&v.Type,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.LicensePlate,
		&v.MaxCapacityKg,
		&v.CurrentOdometerKm,
		&v.Status,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
