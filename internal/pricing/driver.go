package pricing

import (
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/refdata"
)

// CalculateDriverCost splits hours into regular and overtime at
// MaxDrivingHours. The daily rate is charged once per route.
func CalculateDriverCost(hours decimal.Decimal, spec model.DriverSpecification) model.DriverCost {
	if hours.IsNegative() {
		hours = decimal.Zero
	}
	spec = withDriverDefaults(spec)

	regular := decimal.Min(hours, spec.MaxDrivingHours)
	overtime := decimal.Max(hours.Sub(spec.MaxDrivingHours), decimal.Zero)

	regularCost := regular.Mul(spec.DrivingTimeRate)
	overtimeCost := overtime.Mul(spec.DrivingTimeRate).Mul(spec.OvertimeRateMultiplier)

	return model.DriverCost{
		BaseCost:         spec.DailyRate,
		RegularHours:     regular,
		OvertimeHours:    overtime,
		RegularHoursCost: regularCost,
		OvertimeCost:     overtimeCost,
		TotalCost:        spec.DailyRate.Add(regularCost).Add(overtimeCost),
	}
}

// Zero-valued time fields mean "not configured".
func withDriverDefaults(spec model.DriverSpecification) model.DriverSpecification {
	def := refdata.DefaultDriver()
	if spec.DrivingTimeRate.IsZero() {
		spec.DrivingTimeRate = def.DrivingTimeRate
	}
	if !spec.MaxDrivingHours.IsPositive() {
		spec.MaxDrivingHours = def.MaxDrivingHours
	}
	if spec.OvertimeRateMultiplier.IsZero() {
		spec.OvertimeRateMultiplier = def.OvertimeRateMultiplier
	}
	return spec
}
