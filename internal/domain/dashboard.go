package domain

import (
	"math"
	"time"
)

// VehicleStats summarises fleet availability.
type VehicleStats struct {
	Total           int64   `json:"total"`
	Available       int64   `json:"available"`
	OnTrip          int64   `json:"on_trip"`
	InShop          int64   `json:"in_shop"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// DriverStats summarises the driver pool.
type DriverStats struct {
	Total           int64   `json:"total"`
	OnDuty          int64   `json:"on_duty"`
	OnTrip          int64   `json:"on_trip"`
	AvgSafetyScore  float64 `json:"avg_safety_score"`
	ExpiredLicenses int64   `json:"expired_licenses"`
}

// TripStats summarises dispatch activity.
type TripStats struct {
	Total            int64   `json:"total"`
	Active           int64   `json:"active"`
	CompletedToday   int64   `json:"completed_today"`
	PendingCargoTons float64 `json:"pending_cargo_tons"`
}

// MaintenanceStats summarises workshop load.
type MaintenanceStats struct {
	InProgress        int64 `json:"in_progress"`
	ScheduledThisWeek int64 `json:"scheduled_this_week"`
	Overdue           int64 `json:"overdue"`
}

// FinancialStats summarises the last 30 days of spend.
type FinancialStats struct {
	FuelCost30d        float64 `json:"fuel_cost_30d"`
	MaintenanceCost30d float64 `json:"maintenance_cost_30d"`
	OtherCost30d       float64 `json:"other_cost_30d"`
	TotalCost30d       float64 `json:"total_operational_cost_30d"`
}

// DashboardMetrics is the command-center KPI payload.
type DashboardMetrics struct {
	Vehicles    VehicleStats     `json:"vehicles"`
	Drivers     DriverStats      `json:"drivers"`
	Trips       TripStats        `json:"trips"`
	Maintenance MaintenanceStats `json:"maintenance"`
	Financial   FinancialStats   `json:"financial"`
	LastUpdated time.Time        `json:"last_updated"`
}

// Finalize derives the computed ratios and totals.
func (d *DashboardMetrics) Finalize() {
	if d.Vehicles.Total > 0 {
		d.Vehicles.UtilizationRate = round2(float64(d.Vehicles.OnTrip) / float64(d.Vehicles.Total) * 100)
	}
	d.Trips.PendingCargoTons = round2(d.Trips.PendingCargoTons)
	d.Financial.TotalCost30d = d.Financial.FuelCost30d + d.Financial.MaintenanceCost30d + d.Financial.OtherCost30d
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
