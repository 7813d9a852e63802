package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fleetflow/console/internal/clock"
	"github.com/fleetflow/console/internal/domain"
	"github.com/fleetflow/console/internal/repository"
	apperrors "github.com/fleetflow/console/pkg/util/errorutil"
)

// FleetReader is the read side the realtime subscriptions poll.
type FleetReader interface {
	Dashboard(ctx context.Context) (*domain.DashboardMetrics, error)
	GetVehicle(ctx context.Context, code string) (*domain.Vehicle, error)
	GetDriver(ctx context.Context, code string) (*domain.Driver, error)
	GetTrip(ctx context.Context, code string) (*domain.Trip, error)
}

// FleetDependencies bundles repositories for the fleet service.
type FleetDependencies struct {
	Vehicles  repository.VehicleRepository
	Drivers   repository.DriverRepository
	Trips     repository.TripRepository
	Dashboard repository.DashboardRepository
	Clock     clock.Clock
}

// FleetService serves fleet records and dashboard KPIs.
type FleetService struct {
	vehicles  repository.VehicleRepository
	drivers   repository.DriverRepository
	trips     repository.TripRepository
	dashboard repository.DashboardRepository
	clock     clock.Clock
}

// NewFleetService builds the service.
func NewFleetService(deps FleetDependencies) *FleetService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &FleetService{
		vehicles:  deps.Vehicles,
		drivers:   deps.Drivers,
		trips:     deps.Trips,
		dashboard: deps.Dashboard,
		clock:     clk,
	}
}

// Dashboard computes the command-center KPIs as of now.
func (s *FleetService) Dashboard(ctx context.Context) (*domain.DashboardMetrics, error) {
	return s.dashboard.Metrics(ctx, s.clock.Now())
}

// ListVehicles returns vehicles matching filter.
func (s *FleetService) ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]domain.Vehicle, error) {
	return s.vehicles.List(ctx, filter)
}

// GetVehicle loads a vehicle by its code.
func (s *FleetService) GetVehicle(ctx context.Context, code string) (*domain.Vehicle, error) {
	v, err := s.vehicles.GetByCode(ctx, code)
	return v, notFound(err, "vehicle", code)
}

// ListDrivers returns drivers matching filter.
func (s *FleetService) ListDrivers(ctx context.Context, filter repository.DriverFilter) ([]domain.Driver, error) {
	return s.drivers.List(ctx, filter)
}

// GetDriver loads a driver by its code.
func (s *FleetService) GetDriver(ctx context.Context, code string) (*domain.Driver, error) {
	d, err := s.drivers.GetByCode(ctx, code)
	return d, notFound(err, "driver", code)
}

// ListTrips returns trips matching filter.
func (s *FleetService) ListTrips(ctx context.Context, filter repository.TripFilter) ([]domain.Trip, error) {
	return s.trips.List(ctx, filter)
}

// GetTrip loads a trip by its code.
func (s *FleetService) GetTrip(ctx context.Context, code string) (*domain.Trip, error) {
	t, err := s.trips.GetByCode(ctx, code)
	return t, notFound(err, "trip", code)
}

// Now exposes the service clock for derived fields.
func (s *FleetService) Now() time.Time {
	return s.clock.Now()
}

func notFound(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}
