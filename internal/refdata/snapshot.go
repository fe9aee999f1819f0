package refdata

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
)

var (
	ErrInvalidRule     = errors.New("invalid rate validation rule")
	ErrInvalidOverride = errors.New("invalid toll rate override")
	ErrInvalidTable    = errors.New("invalid toll rate table")
)

type CountryTolls struct {
	TollClass map[model.TollClass]decimal.Decimal
	EuroClass map[model.EuroClass]decimal.Decimal
}

type SnapshotOptions struct {
	Tolls                     map[string]CountryTolls
	UnknownRate               decimal.Decimal
	Rules                     []model.RateValidationRule
	Overrides                 []model.TollRateOverride
	FuelPrices                map[string]decimal.Decimal
	EventRates                map[model.EventType]decimal.Decimal
	RequirementCertifications map[string]string
}

// Snapshot is an immutable view of all reference data. Callers never mutate
// it; updates produce a new Snapshot.
type Snapshot struct {
	tolls            map[string]CountryTolls
	unknownRate      decimal.Decimal
	rules            map[model.RateType]model.RateValidationRule
	overrides        map[uuid.UUID][]model.TollRateOverride
	fuelPrices       map[string]decimal.Decimal
	eventRates       map[model.EventType]decimal.Decimal
	requirementCerts map[string]string
}

func NewSnapshot(opts SnapshotOptions) (*Snapshot, error) {
	for country, tolls := range opts.Tolls {
		if _, ok := tolls.TollClass[model.TollClass1]; !ok {
			return nil, fmt.Errorf("%w: %s has no toll class 1", ErrInvalidTable, country)
		}
		if _, ok := tolls.EuroClass[model.EuroIII]; !ok {
			return nil, fmt.Errorf("%w: %s has no euro class III", ErrInvalidTable, country)
		}
	}
	if err := ValidateRules(opts.Rules); err != nil {
		return nil, err
	}
	if err := ValidateOverrides(opts.Overrides); err != nil {
		return nil, err
	}

	s := &Snapshot{
		tolls:            make(map[string]CountryTolls, len(opts.Tolls)),
		unknownRate:      opts.UnknownRate,
		rules:            indexRules(opts.Rules),
		overrides:        indexOverrides(opts.Overrides),
		fuelPrices:       copyMap(opts.FuelPrices),
		eventRates:       copyMap(opts.EventRates),
		requirementCerts: make(map[string]string, len(opts.RequirementCertifications)),
	}
	for country, tolls := range opts.Tolls {
		s.tolls[strings.ToUpper(country)] = CountryTolls{
			TollClass: copyMap(tolls.TollClass),
			EuroClass: copyMap(tolls.EuroClass),
		}
	}
	for req, cert := range opts.RequirementCertifications {
		s.requirementCerts[strings.ToLower(req)] = cert
	}
	return s, nil
}

func mustSnapshot(s *Snapshot, err error) *Snapshot {
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Snapshot) CountryTolls(country string) (CountryTolls, bool) {
	t, ok := s.tolls[strings.ToUpper(country)]
	return t, ok
}

func (s *Snapshot) UnknownRate() decimal.Decimal {
	return s.unknownRate
}

func (s *Snapshot) Rule(rateType model.RateType) (model.RateValidationRule, bool) {
	r, ok := s.rules[rateType]
	return r, ok
}

func (s *Snapshot) Rules() []model.RateValidationRule {
	result := make([]model.RateValidationRule, 0, len(s.rules))
	for _, r := range s.rules {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RateType < result[j].RateType })
	return result
}

func (s *Snapshot) Overrides(businessID uuid.UUID) []model.TollRateOverride {
	return s.overrides[businessID]
}

func (s *Snapshot) FuelPrice(country string) (decimal.Decimal, bool) {
	p, ok := s.fuelPrices[strings.ToUpper(country)]
	return p, ok
}

func (s *Snapshot) EventRate(eventType model.EventType) (decimal.Decimal, bool) {
	r, ok := s.eventRates[eventType]
	return r, ok
}

// CertificationFor maps a cargo special requirement to the certification it implies.
func (s *Snapshot) CertificationFor(requirement string) (string, bool) {
	c, ok := s.requirementCerts[strings.ToLower(strings.TrimSpace(requirement))]
	return c, ok
}

func (s *Snapshot) withRules(rules []model.RateValidationRule) (*Snapshot, error) {
	if err := ValidateRules(rules); err != nil {
		return nil, err
	}
	next := *s
	next.rules = indexRules(rules)
	return &next, nil
}

func (s *Snapshot) withOverrides(businessID uuid.UUID, overrides []model.TollRateOverride) (*Snapshot, error) {
	for _, o := range overrides {
		if o.BusinessEntityID != businessID {
			return nil, fmt.Errorf("%w: override %s belongs to another business entity", ErrInvalidOverride, o.ID)
		}
	}
	if err := ValidateOverrides(overrides); err != nil {
		return nil, err
	}
	next := *s
	next.overrides = make(map[uuid.UUID][]model.TollRateOverride, len(s.overrides)+1)
	for id, rows := range s.overrides {
		next.overrides[id] = rows
	}
	if len(overrides) == 0 {
		delete(next.overrides, businessID)
	} else {
		rows := make([]model.TollRateOverride, len(overrides))
		for i, o := range overrides {
			o.CountryCode = strings.ToUpper(o.CountryCode)
			rows[i] = o
		}
		next.overrides[businessID] = rows
	}
	return &next, nil
}

func (s *Snapshot) withAllOverrides(overrides []model.TollRateOverride) (*Snapshot, error) {
	if err := ValidateOverrides(overrides); err != nil {
		return nil, err
	}
	next := *s
	next.overrides = indexOverrides(overrides)
	return &next, nil
}

// ValidateRules checks min <= max, certification naming and duplicate types.
func ValidateRules(rules []model.RateValidationRule) error {
	seen := make(map[model.RateType]struct{}, len(rules))
	for _, r := range rules {
		if r.RateType == "" {
			return fmt.Errorf("%w: empty rate type", ErrInvalidRule)
		}
		if _, dup := seen[r.RateType]; dup {
			return fmt.Errorf("%w: duplicate rate type %s", ErrInvalidRule, r.RateType)
		}
		seen[r.RateType] = struct{}{}
		if r.MinValue.GreaterThan(r.MaxValue) {
			return fmt.Errorf("%w: %s min %s exceeds max %s", ErrInvalidRule, r.RateType, r.MinValue, r.MaxValue)
		}
		if r.RequiresCertification && strings.TrimSpace(r.Certification) == "" {
			return fmt.Errorf("%w: %s requires certification but names none", ErrInvalidRule, r.RateType)
		}
	}
	return nil
}

func ValidateOverrides(overrides []model.TollRateOverride) error {
	type key struct {
		business  uuid.UUID
		country   string
		class     string
		routeType string
	}
	seen := make(map[key]struct{}, len(overrides))
	for _, o := range overrides {
		if !o.RateMultiplier.IsPositive() {
			return fmt.Errorf("%w: rate multiplier must be > 0, got %s", ErrInvalidOverride, o.RateMultiplier)
		}
		if len(o.CountryCode) != 2 {
			return fmt.Errorf("%w: country code %q", ErrInvalidOverride, o.CountryCode)
		}
		if _, ok := model.ParseTollClass(o.VehicleClass); !ok {
			return fmt.Errorf("%w: vehicle class %q", ErrInvalidOverride, o.VehicleClass)
		}
		k := key{business: o.BusinessEntityID, country: strings.ToUpper(o.CountryCode), class: o.VehicleClass}
		if o.RouteType != nil {
			k.routeType = *o.RouteType
		}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate override for %s class %s", ErrInvalidOverride, k.country, k.class)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func indexRules(rules []model.RateValidationRule) map[model.RateType]model.RateValidationRule {
	result := make(map[model.RateType]model.RateValidationRule, len(rules))
	for _, r := range rules {
		result[r.RateType] = r
	}
	return result
}

func indexOverrides(overrides []model.TollRateOverride) map[uuid.UUID][]model.TollRateOverride {
	result := make(map[uuid.UUID][]model.TollRateOverride)
	for _, o := range overrides {
		o.CountryCode = strings.ToUpper(o.CountryCode)
		result[o.BusinessEntityID] = append(result[o.BusinessEntityID], o)
	}
	return result
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// WithUnknownRate returns a copy charging rate in countries missing from the toll table.
func (s *Snapshot) WithUnknownRate(rate decimal.Decimal) *Snapshot {
	next := *s
	next.unknownRate = rate
	return &next
}
