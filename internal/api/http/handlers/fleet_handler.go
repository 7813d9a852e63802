package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fleetflow/console/internal/api/dto"
	"github.com/fleetflow/console/internal/repository"
	"github.com/fleetflow/console/internal/service"
)

// FleetHandler serves the read-only fleet endpoints.
type FleetHandler struct {
	fleet *service.FleetService
}

// NewFleetHandler constructs handler.
func NewFleetHandler(fleet *service.FleetService) *FleetHandler {
	return &FleetHandler{fleet: fleet}
}

// Dashboard GET /analytics/dashboard.
func (h *FleetHandler) Dashboard(c *fiber.Ctx) error {
	metrics, err := h.fleet.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}

// ListVehicles GET /vehicles.
func (h *FleetHandler) ListVehicles(c *fiber.Ctx) error {
	filter := repository.VehicleFilter{
		Statuses: parseList(c.Query("status")),
		Search:   c.Query("search"),
		Page:     parsePage(c),
	}
	if types := parseList(c.Query("type")); len(types) > 0 {
		filter.Type = types[0]
	}
	vehicles, err := h.fleet.ListVehicles(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		items = append(items, dto.NewVehicleResponse(&vehicles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetVehicle GET /vehicles/:id.
func (h *FleetHandler) GetVehicle(c *fiber.Ctx) error {
	vehicle, err := h.fleet.GetVehicle(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewVehicleResponse(vehicle)})
}

// ListDrivers GET /drivers.
func (h *FleetHandler) ListDrivers(c *fiber.Ctx) error {
	filter := repository.DriverFilter{
		Statuses: parseList(c.Query("status")),
		Search:   c.Query("search"),
		Page:     parsePage(c),
	}
	drivers, err := h.fleet.ListDrivers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	now := h.fleet.Now()
	items := make([]dto.DriverResponse, 0, len(drivers))
	for i := range drivers {
		items = append(items, dto.NewDriverResponse(&drivers[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetDriver GET /drivers/:id.
func (h *FleetHandler) GetDriver(c *fiber.Ctx) error {
	driver, err := h.fleet.GetDriver(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDriverResponse(driver, h.fleet.Now())})
}

// ListTrips GET /trips.
func (h *FleetHandler) ListTrips(c *fiber.Ctx) error {
	filter := repository.TripFilter{
		Statuses:    parseList(c.Query("status")),
		VehicleCode: c.Query("vehicle_id"),
		DriverCode:  c.Query("driver_id"),
		Page:        parsePage(c),
	}
	trips, err := h.fleet.ListTrips(c.UserContext(), filter)
	if err != nil {
		return err
	}
	now := h.fleet.Now()
	items := make([]dto.TripResponse, 0, len(trips))
	for i := range trips {
		items = append(items, dto.NewTripResponse(&trips[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTrip GET /trips/:id.
func (h *FleetHandler) GetTrip(c *fiber.Ctx) error {
	trip, err := h.fleet.GetTrip(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTripResponse(trip, h.fleet.Now())})
}
