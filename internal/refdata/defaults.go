package refdata

import (
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
)

var dec = decimal.RequireFromString

// DefaultUnknownRate is the per-km toll charged in countries missing from the table.
var DefaultUnknownRate = dec("0.200")

func defaultTollTable() map[string]CountryTolls {
	return map[string]CountryTolls{
		"DE": {
			TollClass: map[model.TollClass]decimal.Decimal{
				model.TollClass1: dec("0.187"),
				model.TollClass2: dec("0.208"),
				model.TollClass3: dec("0.228"),
				model.TollClass4: dec("0.248"),
			},
			EuroClass: map[model.EuroClass]decimal.Decimal{
				model.EuroVI:  dec("0.000"),
				model.EuroV:   dec("0.021"),
				model.EuroIV:  dec("0.042"),
				model.EuroIII: dec("0.063"),
			},
		},
		"FR": {
			TollClass: map[model.TollClass]decimal.Decimal{
				model.TollClass1: dec("0.176"),
				model.TollClass2: dec("0.196"),
				model.TollClass3: dec("0.216"),
				model.TollClass4: dec("0.236"),
			},
			EuroClass: map[model.EuroClass]decimal.Decimal{
				model.EuroVI:  dec("0.000"),
				model.EuroV:   dec("0.020"),
				model.EuroIV:  dec("0.040"),
				model.EuroIII: dec("0.060"),
			},
		},
	}
}

// DefaultRules mirrors the seeded rate_validation_rules rows.
func DefaultRules() []model.RateValidationRule {
	return []model.RateValidationRule{
		{RateType: model.RateFuel, MinValue: dec("0.5"), MaxValue: dec("5.0"), CountrySpecific: true, Description: "Fuel rate per liter"},
		{RateType: model.RateFuelSurcharge, MinValue: dec("0.01"), MaxValue: dec("0.5"), CountrySpecific: true, Description: "Additional fuel surcharge percentage"},
		{RateType: model.RateToll, MinValue: dec("0.1"), MaxValue: dec("2.0"), CountrySpecific: true, Description: "Toll rate per kilometer"},
		{RateType: model.RateDriverBase, MinValue: dec("100.0"), MaxValue: dec("500.0"), Description: "Base daily rate for driver"},
		{RateType: model.RateDriverTime, MinValue: dec("10.0"), MaxValue: dec("100.0"), Description: "Hourly rate for driver time"},
		{RateType: model.RateEvent, MinValue: dec("20.0"), MaxValue: dec("200.0"), Description: "Rate per timeline event"},
		{RateType: model.RateEventHourly, MinValue: dec("5.0"), MaxValue: dec("200.0"), Description: "Hourly rate per timeline event"},
		{RateType: model.RateOverheadAdmin, MinValue: dec("0.01"), MaxValue: dec("1000.0"), Description: "Administrative overhead costs per route"},
		{RateType: model.RateOverheadInsurance, MinValue: dec("0.01"), MaxValue: dec("1000.0"), Description: "Insurance overhead costs per route"},
		{RateType: model.RateOverheadFacilities, MinValue: dec("0.01"), MaxValue: dec("1000.0"), Description: "Facilities overhead costs per route"},
		{RateType: model.RateOverheadOther, MinValue: dec("0.0"), MaxValue: dec("1000.0"), Description: "Other overhead costs per route"},
	}
}

func defaultFuelPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"DE": dec("1.85"),
		"FR": dec("1.82"),
		"PL": dec("1.65"),
		"NL": dec("1.88"),
	}
}

func defaultEventRates() map[model.EventType]decimal.Decimal {
	return map[model.EventType]decimal.Decimal{
		model.EventPickup:   dec("50.00"),
		model.EventDelivery: dec("50.00"),
		model.EventRest:     dec("30.00"),
	}
}

// Special cargo requirements that imply an operator certification.
func defaultRequirementCertifications() map[string]string {
	return map[string]string{
		"hazardous":              "ADR",
		"adr":                    "ADR",
		"temperature_controlled": "ATP",
		"refrigerated":           "ATP",
		"livestock":              "Livestock",
		"oversized":              "Oversized",
		"container":              "Container",
	}
}

// DefaultDriver fills driver fields that a transport may leave unset.
func DefaultDriver() model.DriverSpecification {
	return model.DriverSpecification{
		DrivingTimeRate:        dec("25.00"),
		MaxDrivingHours:        dec("9"),
		OvertimeRateMultiplier: dec("1.50"),
	}
}

func DefaultTruck() model.TruckSpecification {
	return model.TruckSpecification{
		FuelConsumptionEmpty:  dec("0.22"),
		FuelConsumptionLoaded: dec("0.29"),
		TollClass:             string(model.TollClass1),
		EuroClass:             string(model.EuroIII),
	}
}

// Defaults builds the reference snapshot shipped with the service.
func Defaults() *Snapshot {
	return mustSnapshot(NewSnapshot(SnapshotOptions{
		Tolls:                     defaultTollTable(),
		UnknownRate:               DefaultUnknownRate,
		Rules:                     DefaultRules(),
		FuelPrices:                defaultFuelPrices(),
		EventRates:                defaultEventRates(),
		RequirementCertifications: defaultRequirementCertifications(),
	}))
}
