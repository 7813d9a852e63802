package domain

import "time"

// TripStatus tracks the dispatch lifecycle.
type TripStatus string

const (
	TripStatusDraft      TripStatus = "DRAFT"
	TripStatusDispatched TripStatus = "DISPATCHED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// Trip is one dispatch of a vehicle and driver. Code follows TRP-000001.
type Trip struct {
	ID                    int64
	Code                  string
	VehicleID             int64
	VehicleCode           string
	DriverID              int64
	DriverName            string
	PickupLocation        string
	DropoffLocation       string
	CargoDescription      string
	CargoWeightKg         float64
	ScheduledPickupTime   time.Time
	ScheduledDeliveryTime time.Time
	ActualPickupTime      *time.Time
	ActualDeliveryTime    *time.Time
	Status                TripStatus
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Delayed reports whether the trip ran or is running late.
func (t *Trip) Delayed(now time.Time) bool {
	switch t.Status {
	case TripStatusCompleted:
		return t.ActualDeliveryTime != nil && t.ActualDeliveryTime.After(t.ScheduledDeliveryTime)
	case TripStatusDispatched:
		return now.After(t.ScheduledPickupTime)
	}
	return false
}
