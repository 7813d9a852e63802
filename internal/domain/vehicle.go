package domain

import "time"

// VehicleStatus tracks where a vehicle is in its duty cycle.
type VehicleStatus string

const (
	VehicleStatusAvailable VehicleStatus = "AVAILABLE"
	VehicleStatusOnTrip    VehicleStatus = "ON_TRIP"
	VehicleStatusInShop    VehicleStatus = "IN_SHOP"
	VehicleStatusRetired   VehicleStatus = "RETIRED"
)

// VehicleType classifies fleet vehicles.
type VehicleType string

const (
	VehicleTypeTruck   VehicleType = "TRUCK"
	VehicleTypeVan     VehicleType = "VAN"
	VehicleTypeBike    VehicleType = "BIKE"
	VehicleTypeTrailer VehicleType = "TRAILER"
)

// Vehicle is a fleet asset. Code is the human facing identifier (VH-001).
type Vehicle struct {
	ID                int64
	Code              string
	Name              string
	Type              VehicleType
	Make              string
	Model             string
	Year              int
	LicensePlate      string
	MaxCapacityKg     float64
	CurrentOdometerKm float64
	Status            VehicleStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AvailableForTrip reports whether the vehicle can be dispatched.
func (v *Vehicle) AvailableForTrip() bool {
	return v.Status == VehicleStatusAvailable
}
