package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/fleetflow/console/internal/domain"
)

// DashboardRepository computes the command-center KPIs.
type DashboardRepository interface {
	Metrics(ctx context.Context, now time.Time) (*domain.DashboardMetrics, error)
}

type dashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository returns a Postgres-backed implementation.
func NewDashboardRepository(pool *pgxpool.Pool) DashboardRepository {
	return &dashboardRepository{pool: pool}
}

// Each section is one round trip; the sections run concurrently on the pool.
func (r *dashboardRepository) Metrics(ctx context.Context, now time.Time) (*domain.DashboardMetrics, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	out := &domain.DashboardMetrics{LastUpdated: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		const query = `
            SELECT COUNT(*),
                   COUNT(*) FILTER (WHERE status = 'AVAILABLE'),
                   COUNT(*) FILTER (WHERE status = 'ON_TRIP'),
                   COUNT(*) FILTER (WHERE status = 'IN_SHOP')
            FROM vehicles`
		v := &out.Vehicles
		return r.pool.QueryRow(ctx, query).Scan(&v.Total, &v.Available, &v.OnTrip, &v.InShop)
	})
	g.Go(func() error {
		const query = `
            SELECT COUNT(*),
                   COUNT(*) FILTER (WHERE status = 'ON_DUTY'),
                   COUNT(*) FILTER (WHERE status = 'ON_TRIP'),
                   COALESCE(AVG(safety_score), 0)::float8,
                   COUNT(*) FILTER (WHERE license_expiry_date < $1::date)
            FROM drivers`
		d := &out.Drivers
		return r.pool.QueryRow(ctx, query, today).Scan(&d.Total, &d.OnDuty, &d.OnTrip, &d.AvgSafetyScore, &d.ExpiredLicenses)
	})
	g.Go(func() error {
		const query = `
            SELECT COUNT(*),
                   COUNT(*) FILTER (WHERE status IN ('DISPATCHED', 'IN_PROGRESS')),
                   COUNT(*) FILTER (WHERE status = 'COMPLETED' AND actual_delivery_time::date = $1::date),
                   COALESCE(SUM(cargo_weight_kg) FILTER (WHERE status = 'DRAFT'), 0)::float8 / 1000
            FROM trips`
		t := &out.Trips
		return r.pool.QueryRow(ctx, query, today).Scan(&t.Total, &t.Active, &t.CompletedToday, &t.PendingCargoTons)
	})
	g.Go(func() error {
		const query = `
            SELECT COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
                   COUNT(*) FILTER (WHERE status = 'SCHEDULED' AND scheduled_date BETWEEN $1::date AND $1::date + 7),
                   COUNT(*) FILTER (WHERE status = 'SCHEDULED' AND scheduled_date < $1::date)
            FROM maintenance_records`
		m := &out.Maintenance
		return r.pool.QueryRow(ctx, query, today).Scan(&m.InProgress, &m.ScheduledThisWeek, &m.Overdue)
	})
	g.Go(func() error {
		const query = `
            SELECT
                (SELECT COALESCE(SUM(total_cost), 0) FROM fuel_expenses WHERE date >= $1::date)::float8,
                (SELECT COALESCE(SUM(labor_cost + parts_cost), 0) FROM maintenance_records
                  WHERE status = 'COMPLETED' AND completed_date >= $1::date)::float8,
                (SELECT COALESCE(SUM(amount), 0) FROM other_expenses WHERE date >= $1::date)::float8`
		f := &out.Financial
		since := today.AddDate(0, 0, -30)
		return r.pool.QueryRow(ctx, query, since).Scan(&f.FuelCost30d, &f.MaintenanceCost30d, &f.OtherCost30d)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Finalize()
	return out, nil
}
