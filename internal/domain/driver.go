package domain

import "time"

// DriverStatus tracks a driver's duty state.
type DriverStatus string

const (
	DriverStatusOnDuty    DriverStatus = "ON_DUTY"
	DriverStatusOffDuty   DriverStatus = "OFF_DUTY"
	DriverStatusOnTrip    DriverStatus = "ON_TRIP"
	DriverStatusSuspended DriverStatus = "SUSPENDED"
)

// Driver is a licensed operator. Code follows the DRV-000001 pattern.
type Driver struct {
	ID                  int64
	Code                string
	FirstName           string
	LastName            string
	Email               string
	PhoneNumber         string
	LicenseNumber       string
	LicenseType         string
	LicenseExpiryDate   time.Time
	Status              DriverStatus
	SafetyScore         int
	TotalTripsCompleted int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FullName joins first and last name.
func (d *Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}

// LicenseValid reports whether the license is still valid on the given day.
func (d *Driver) LicenseValid(now time.Time) bool {
	y, m, day := now.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	ey, em, eday := d.LicenseExpiryDate.Date()
	expiry := time.Date(ey, em, eday, 0, 0, 0, 0, time.UTC)
	return !expiry.Before(today)
}

// AvailableForTrip reports whether the driver can take a new trip.
func (d *Driver) AvailableForTrip(now time.Time) bool {
	switch d.Status {
	case DriverStatusOnDuty, DriverStatusOffDuty:
		return d.LicenseValid(now)
	}
	return false
}
