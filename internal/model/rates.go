package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TollClass string

const (
	TollClass1 TollClass = "1"
	TollClass2 TollClass = "2"
	TollClass3 TollClass = "3"
	TollClass4 TollClass = "4"
)

// ParseTollClass reports false for anything outside "1".."4" and returns class "1".
func ParseTollClass(s string) (TollClass, bool) {
	switch TollClass(s) {
	case TollClass1, TollClass2, TollClass3, TollClass4:
		return TollClass(s), true
	default:
		return TollClass1, false
	}
}

type EuroClass string

const (
	EuroIII EuroClass = "III"
	EuroIV  EuroClass = "IV"
	EuroV   EuroClass = "V"
	EuroVI  EuroClass = "VI"
)

// ParseEuroClass reports false for anything outside "III".."VI" and returns class "III".
func ParseEuroClass(s string) (EuroClass, bool) {
	switch EuroClass(s) {
	case EuroIII, EuroIV, EuroV, EuroVI:
		return EuroClass(s), true
	default:
		return EuroIII, false
	}
}

type TollRate struct {
	CountryCode         string          `json:"country_code"`
	TollClass           TollClass       `json:"toll_class"`
	EuroClass           EuroClass       `json:"euro_class"`
	BaseRate            decimal.Decimal `json:"base_rate"`
	EuroAdjustment      decimal.Decimal `json:"euro_adjustment"`
	EffectiveMultiplier decimal.Decimal `json:"effective_multiplier"`
	KnownCountry        bool            `json:"known_country"`
}

type TollRateOverride struct {
	ID               uuid.UUID       `json:"id"`
	BusinessEntityID uuid.UUID       `json:"business_entity_id"`
	CountryCode      string          `json:"country_code"`
	VehicleClass     string          `json:"vehicle_class"`
	RouteType        *string         `json:"route_type,omitempty"`
	RateMultiplier   decimal.Decimal `json:"rate_multiplier"`
}

type RateType string

const (
	RateFuel               RateType = "fuel_rate"
	RateFuelSurcharge      RateType = "fuel_surcharge_rate"
	RateToll               RateType = "toll_rate"
	RateDriverBase         RateType = "driver_base_rate"
	RateDriverTime         RateType = "driver_time_rate"
	RateEvent              RateType = "event_rate"
	RateEventHourly        RateType = "event_hourly_rate"
	RateOverheadAdmin      RateType = "overhead_admin_rate"
	RateOverheadInsurance  RateType = "overhead_insurance_rate"
	RateOverheadFacilities RateType = "overhead_facilities_rate"
	RateOverheadOther      RateType = "overhead_other_rate"
)

type RateValidationRule struct {
	RateType              RateType        `json:"rate_type"`
	MinValue              decimal.Decimal `json:"min_value"`
	MaxValue              decimal.Decimal `json:"max_value"`
	CountrySpecific       bool            `json:"country_specific"`
	RequiresCertification bool            `json:"requires_certification"`
	Certification         string          `json:"certification,omitempty"`
	Description           string          `json:"description,omitempty"`
}
