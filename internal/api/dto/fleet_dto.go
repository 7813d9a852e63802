package dto

import (
	"time"

	"github.com/fleetflow/console/internal/domain"
)

// VehicleResponse is the public view of a vehicle.
type VehicleResponse struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Type              domain.VehicleType   `json:"vehicle_type"`
	Make              string               `json:"make"`
	Model             string               `json:"model"`
	Year              int                  `json:"year"`
	LicensePlate      string               `json:"license_plate"`
	MaxCapacityKg     float64              `json:"max_capacity_kg"`
	CurrentOdometerKm float64              `json:"current_odometer_km"`
	Status            domain.VehicleStatus `json:"status"`
	AvailableForTrip  bool                 `json:"available_for_trip"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// NewVehicleResponse maps a vehicle.
func NewVehicleResponse(v *domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:                v.Code,
		Name:              v.Name,
		Type:              v.Type,
		Make:              v.Make,
		Model:             v.Model,
		Year:              v.Year,
		LicensePlate:      v.LicensePlate,
		MaxCapacityKg:     v.MaxCapacityKg,
		CurrentOdometerKm: v.CurrentOdometerKm,
		Status:            v.Status,
		AvailableForTrip:  v.AvailableForTrip(),
		UpdatedAt:         v.UpdatedAt,
	}
}

// DriverResponse is the public view of a driver.
type DriverResponse struct {
	ID                  string              `json:"id"`
	FullName            string              `json:"full_name"`
	Email               string              `json:"email"`
	PhoneNumber         string              `json:"phone_number"`
	LicenseNumber       string              `json:"license_number"`
	LicenseType         string              `json:"license_type"`
	LicenseExpiryDate   string              `json:"license_expiry_date"`
	LicenseValid        bool                `json:"license_valid"`
	Status              domain.DriverStatus `json:"status"`
	SafetyScore         int                 `json:"safety_score"`
	TotalTripsCompleted int                 `json:"total_trips_completed"`
	AvailableForTrip    bool                `json:"available_for_trip"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// NewDriverResponse maps a driver; now decides license validity.
func NewDriverResponse(d *domain.Driver, now time.Time) DriverResponse {
	return DriverResponse{
		ID:                  d.Code,
		FullName:            d.FullName(),
		Email:               d.Email,
		PhoneNumber:         d.PhoneNumber,
		LicenseNumber:       d.LicenseNumber,
		LicenseType:         d.LicenseType,
		LicenseExpiryDate:   d.LicenseExpiryDate.Format(time.DateOnly),
		LicenseValid:        d.LicenseValid(now),
		Status:              d.Status,
		SafetyScore:         d.SafetyScore,
		TotalTripsCompleted: d.TotalTripsCompleted,
		AvailableForTrip:    d.AvailableForTrip(now),
		UpdatedAt:           d.UpdatedAt,
	}
}

// TripResponse is the public view of a trip.
type TripResponse struct {
	ID                    string            `json:"id"`
	VehicleID             string            `json:"vehicle_id"`
	DriverName            string            `json:"driver_name"`
	PickupLocation        string            `json:"pickup_location"`
	DropoffLocation       string            `json:"dropoff_location"`
	CargoDescription      string            `json:"cargo_description"`
	CargoWeightKg         float64           `json:"cargo_weight_kg"`
	ScheduledPickupTime   time.Time         `json:"scheduled_pickup_time"`
	ScheduledDeliveryTime time.Time         `json:"scheduled_delivery_time"`
	ActualPickupTime      *time.Time        `json:"actual_pickup_time"`
	ActualDeliveryTime    *time.Time        `json:"actual_delivery_time"`
	Status                domain.TripStatus `json:"status"`
	Delayed               bool              `json:"delayed"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// NewTripResponse maps a trip; now decides whether it is delayed.
func NewTripResponse(t *domain.Trip, now time.Time) TripResponse {
	return TripResponse{
		ID:                    t.Code,
		VehicleID:             t.VehicleCode,
		DriverName:            t.DriverName,
		PickupLocation:        t.PickupLocation,
		DropoffLocation:       t.DropoffLocation,
		CargoDescription:      t.CargoDescription,
		CargoWeightKg:         t.CargoWeightKg,
		ScheduledPickupTime:   t.ScheduledPickupTime,
		ScheduledDeliveryTime: t.ScheduledDeliveryTime,
		ActualPickupTime:      t.ActualPickupTime,
		ActualDeliveryTime:    t.ActualDeliveryTime,
		Status:                t.Status,
		Delayed:               t.Delayed(now),
		UpdatedAt:             t.UpdatedAt,
	}
}
