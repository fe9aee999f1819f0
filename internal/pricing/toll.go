package pricing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/refdata"
)

// EuroAdjustmentMode decides how a country's euro-class adjustment combines
// with the per-km base rate.
type EuroAdjustmentMode string

const (
	EuroAdjustmentAdd      EuroAdjustmentMode = "add"
	EuroAdjustmentSubtract EuroAdjustmentMode = "subtract"
	EuroAdjustmentIgnore   EuroAdjustmentMode = "ignore"
)

func ParseEuroAdjustmentMode(s string) (EuroAdjustmentMode, error) {
	switch mode := EuroAdjustmentMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case EuroAdjustmentAdd, EuroAdjustmentSubtract, EuroAdjustmentIgnore:
		return mode, nil
	case "":
		return EuroAdjustmentAdd, nil
	default:
		return "", fmt.Errorf("unknown euro adjustment mode %q", s)
	}
}

type TollQuery struct {
	CountryCode      string
	TollClass        string
	EuroClass        string
	BusinessEntityID uuid.UUID
	RouteType        string
}

// ResolveTollRate never fails: unknown countries get the default unknown rate
// with no euro adjustment, unknown classes fall back to class "1" and "III".
func ResolveTollRate(snap *refdata.Snapshot, q TollQuery) model.TollRate {
	country := strings.ToUpper(strings.TrimSpace(q.CountryCode))
	tollClass, _ := model.ParseTollClass(strings.TrimSpace(q.TollClass))
	euroClass, _ := model.ParseEuroClass(strings.ToUpper(strings.TrimSpace(q.EuroClass)))

	rate := model.TollRate{
		CountryCode:         country,
		TollClass:           tollClass,
		EuroClass:           euroClass,
		EffectiveMultiplier: decimal.NewFromInt(1),
	}

	if tolls, ok := snap.CountryTolls(country); ok {
		rate.KnownCountry = true
		rate.BaseRate = classRate(tolls.TollClass, tollClass, model.TollClass1)
		rate.EuroAdjustment = classRate(tolls.EuroClass, euroClass, model.EuroIII)
	} else {
		rate.BaseRate = snap.UnknownRate()
		rate.EuroAdjustment = decimal.Zero
	}

	if o, ok := selectOverride(snap.Overrides(q.BusinessEntityID), country, tollClass, q.RouteType); ok {
		rate.EffectiveMultiplier = o.RateMultiplier
	}

	return rate
}

func classRate[K comparable](table map[K]decimal.Decimal, class, fallback K) decimal.Decimal {
	if v, ok := table[class]; ok {
		return v
	}
	return table[fallback]
}

// selectOverride prefers a row matching the route type over the general row.
func selectOverride(overrides []model.TollRateOverride, country string, class model.TollClass, routeType string) (model.TollRateOverride, bool) {
	var general *model.TollRateOverride
	for i := range overrides {
		o := overrides[i]
		if o.CountryCode != country || o.VehicleClass != string(class) {
			continue
		}
		if o.RouteType == nil {
			if general == nil {
				general = &overrides[i]
			}
			continue
		}
		if routeType != "" && *o.RouteType == routeType {
			return o, true
		}
	}
	if general != nil {
		return *general, true
	}
	return model.TollRateOverride{}, false
}

// PerKM combines a base rate with the resolved adjustment and multiplier,
// clamped at zero.
func PerKM(base decimal.Decimal, rate model.TollRate, mode EuroAdjustmentMode) decimal.Decimal {
	adjusted := base
	switch mode {
	case EuroAdjustmentSubtract:
		adjusted = base.Sub(rate.EuroAdjustment)
	case EuroAdjustmentIgnore:
	default:
		adjusted = base.Add(rate.EuroAdjustment)
	}
	perKM := adjusted.Mul(rate.EffectiveMultiplier)
	if perKM.IsNegative() {
		return decimal.Zero
	}
	return perKM
}
