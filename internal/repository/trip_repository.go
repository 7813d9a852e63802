package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetflow/console/internal/domain"
)

// TripFilter narrows trip listings.
type TripFilter struct {
	Statuses    []string
	VehicleCode string
	DriverCode  string
	Page        Page
}

// TripRepository reads dispatched trips.
type TripRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Trip, error)
	List(ctx context.Context, filter TripFilter) ([]domain.Trip, error)
}

type tripRepository struct {
	pool *pgxpool.Pool
}

// NewTripRepository returns a Postgres-backed implementation.
func NewTripRepository(pool *pgxpool.Pool) TripRepository {
	return &tripRepository{pool: pool}
}

const tripSelect = `SELECT t.id, t.trip_id, t.vehicle_id, v.vehicle_id, t.driver_id,
               d.first_name || ' ' || d.last_name,
               t.pickup_location, t.dropoff_location, t.cargo_description, t.cargo_weight_kg,
               t.scheduled_pickup_time, t.scheduled_delivery_time, t.actual_pickup_time,
               t.actual_delivery_time, t.status, t.created_at, t.updated_at
        FROM trips t
        JOIN vehicles v ON v.id = t.vehicle_id
        JOIN drivers d ON d.id = t.driver_id`

func (r *tripRepository) GetByCode(ctx context.Context, code string) (*domain.Trip, error) {
	return scanTrip(r.pool.QueryRow(ctx, tripSelect+` WHERE t.trip_id=$1`, code))
}

func (r *tripRepository) List(ctx context.Context, filter TripFilter) ([]domain.Trip, error) {
	b := newClauseBuilder()
	b.in("t.status", filter.Statuses)
	if filter.VehicleCode != "" {
		b.eq("v.vehicle_id", filter.VehicleCode)
	}
	if filter.DriverCode != "" {
		b.eq("d.driver_id", filter.DriverCode)
	}

	limit, offset := filter.Page.bounds()
	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		tripSelect, b.where(), limit, offset)

	rows, err := r.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var t domain.Trip
	if err := row.Scan(
		&t.ID,
		&t.Code,
		&t.VehicleID,
		&t.VehicleCode,
		&t.DriverID,
		&t.DriverName,
		&t.PickupLocation,
		&t.DropoffLocation,
		&t.CargoDescription,
		&t.CargoWeightKg,
		&t.ScheduledPickupTime,
		&t.ScheduledDeliveryTime,
		&t.ActualPickupTime,
		&t.ActualDeliveryTime,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
