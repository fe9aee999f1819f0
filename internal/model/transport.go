package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TruckSpecification struct {
	FuelConsumptionEmpty  decimal.Decimal `json:"fuel_consumption_empty"`
	FuelConsumptionLoaded decimal.Decimal `json:"fuel_consumption_loaded"`
	TollClass             string          `json:"toll_class"`
	EuroClass             string          `json:"euro_class"`
	CO2Class              string          `json:"co2_class"`
	MaintenanceRatePerKM  decimal.Decimal `json:"maintenance_rate_per_km"`
}

type DriverSpecification struct {
	DailyRate              decimal.Decimal `json:"daily_rate"`
	DrivingTimeRate        decimal.Decimal `json:"driving_time_rate"`
	MaxDrivingHours        decimal.Decimal `json:"max_driving_hours"`
	OvertimeRateMultiplier decimal.Decimal `json:"overtime_rate_multiplier"`
	RequiredLicenseType    string          `json:"required_license_type"`
	RequiredCertifications []string        `json:"required_certifications"`
}

type Transport struct {
	ID               uuid.UUID           `json:"id"`
	TransportTypeID  string              `json:"transport_type_id"`
	BusinessEntityID uuid.UUID           `json:"business_entity_id"`
	Truck            TruckSpecification  `json:"truck_specifications"`
	Driver           DriverSpecification `json:"driver_specifications"`
	IsActive         bool                `json:"is_active"`
}
