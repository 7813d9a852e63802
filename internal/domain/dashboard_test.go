package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDashboardFinalize(t *testing.T) {
	d := DashboardMetrics{
		Vehicles:  VehicleStats{Total: 3, OnTrip: 1},
		Trips:     TripStats{PendingCargoTons: 12.3456},
		Financial: FinancialStats{FuelCost30d: 100, MaintenanceCost30d: 50.5, OtherCost30d: 9.5},
	}
	d.Finalize()

	assert.Equal(t, 33.33, d.Vehicles.UtilizationRate)
	assert.Equal(t, 12.35, d.Trips.PendingCargoTons)
	assert.Equal(t, 160.0, d.Financial.TotalCost30d)
}

func TestDashboardFinalizeEmptyFleet(t *testing.T) {
	var d DashboardMetrics
	d.Finalize()
	assert.Zero(t, d.Vehicles.UtilizationRate)
}

func TestDriverAvailability(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	d := Driver{Status: DriverStatusOnDuty, LicenseExpiryDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)}
	assert.True(t, d.LicenseValid(now), "license valid through its expiry day")
	assert.True(t, d.AvailableForTrip(now))

	d.LicenseExpiryDate = now.AddDate(0, 0, -1)
	assert.False(t, d.AvailableForTrip(now))

	d.LicenseExpiryDate = now.AddDate(1, 0, 0)
	d.Status = DriverStatusOnTrip
	assert.False(t, d.AvailableForTrip(now))
}

func TestTripDelayed(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	late := now.Add(time.Hour)
	trip := Trip{
		Status:                TripStatusCompleted,
		ScheduledPickupTime:   now.Add(-2 * time.Hour),
		ScheduledDeliveryTime: now,
		ActualDeliveryTime:    &late,
	}
	assert.True(t, trip.Delayed(now))

	trip.Status = TripStatusDispatched
	assert.True(t, trip.Delayed(now))

	trip.Status = TripStatusDraft
	assert.False(t, trip.Delayed(now))
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "ops@fleet.io", (&User{Email: "ops@fleet.io"}).FullName())
	assert.Equal(t, "Ana Diaz", (&User{FirstName: "Ana", LastName: "Diaz"}).FullName())
	assert.Equal(t, "Diaz", (&User{LastName: "Diaz"}).FullName())
}
