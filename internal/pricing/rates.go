package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/refdata"
)

// RateKey is a parsed settings key such as "fuel_rate_DE" or "event_rate_pickup".
type RateKey struct {
	Key       string
	Type      model.RateType
	Country   string
	EventType model.EventType
}

func countryKey(rateType model.RateType, country string) string {
	return string(rateType) + "_" + strings.ToUpper(country)
}

func eventKey(rateType model.RateType, eventType model.EventType) string {
	return string(rateType) + "_" + string(eventType)
}

// ParseRateKey resolves key against the snapshot's rules. Country suffixes are
// accepted only for country-specific rate types, event suffixes only for
// event rate types.
func ParseRateKey(snap *refdata.Snapshot, key string) (RateKey, error) {
	if _, ok := snap.Rule(model.RateType(key)); ok {
		return RateKey{Key: key, Type: model.RateType(key)}, nil
	}

	idx := strings.LastIndex(key, "_")
	if idx <= 0 || idx == len(key)-1 {
		return RateKey{}, &UnknownRateTypeError{Key: key}
	}
	prefix, suffix := model.RateType(key[:idx]), key[idx+1:]
	rule, ok := snap.Rule(prefix)
	if !ok {
		return RateKey{}, &UnknownRateTypeError{Key: key}
	}

	switch {
	case prefix == model.RateEvent || prefix == model.RateEventHourly:
		if et, ok := model.ParseEventType(suffix); ok {
			return RateKey{Key: key, Type: prefix, EventType: et}, nil
		}
	case rule.CountrySpecific && isCountryCode(suffix):
		return RateKey{Key: key, Type: prefix, Country: suffix}, nil
	}
	return RateKey{}, &UnknownRateTypeError{Key: key}
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// ValidateRate checks value against the rule for rateType. It has no side effects.
func ValidateRate(snap *refdata.Snapshot, rateType model.RateType, value decimal.Decimal, business model.BusinessEntity) error {
	rule, ok := snap.Rule(rateType)
	if !ok {
		return &UnknownRateTypeError{Key: string(rateType)}
	}
	if value.LessThan(rule.MinValue) || value.GreaterThan(rule.MaxValue) {
		return &InvalidRateError{RateType: rateType, Value: value, Min: rule.MinValue, Max: rule.MaxValue}
	}
	if rule.RequiresCertification && !business.HasCertification(rule.Certification) {
		return &MissingCertificationError{RateType: rateType, Certification: rule.Certification}
	}
	return nil
}

// ValidateRates checks every key in rates, in key order, and returns the first failure.
func ValidateRates(snap *refdata.Snapshot, rates map[string]decimal.Decimal, business model.BusinessEntity) error {
	keys := make([]string, 0, len(rates))
	for k := range rates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		parsed, err := ParseRateKey(snap, k)
		if err != nil {
			return err
		}
		if err := ValidateRate(snap, parsed.Type, rates[k], business); err != nil {
			if invalid, ok := err.(*InvalidRateError); ok {
				invalid.Key = k
			}
			return err
		}
	}
	return nil
}
