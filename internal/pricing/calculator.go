package pricing

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/refdata"
)

type CostInput struct {
	Route    model.Route
	Settings model.CostSettings
	Truck    model.TruckSpecification
	Driver   model.DriverSpecification
	Business model.BusinessEntity
}

// Calculator prices one route against a fixed reference snapshot.
type Calculator struct {
	snap  *refdata.Snapshot
	mode  EuroAdjustmentMode
	now   func() time.Time
	newID func() uuid.UUID
}

func NewCalculator(snap *refdata.Snapshot, mode EuroAdjustmentMode) *Calculator {
	return &Calculator{
		snap:  snap,
		mode:  mode,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.New,
	}
}

// rateLookup searches the settings first, then the business defaults.
type rateLookup struct {
	sources []map[string]decimal.Decimal
}

func (l rateLookup) find(keys ...string) (decimal.Decimal, bool) {
	for _, src := range l.sources {
		for _, k := range keys {
			if v, ok := src[k]; ok {
				return v, true
			}
		}
	}
	return decimal.Zero, false
}

func (c *Calculator) lookup(in CostInput) rateLookup {
	return rateLookup{sources: []map[string]decimal.Decimal{in.Settings.Rates, in.Business.DefaultRates}}
}

// CheckSettings validates the settings before any calculation: every enabled
// component must be known, every configured rate and business default must pass
// its rule, and every rate the route requires must resolve.
func (c *Calculator) CheckSettings(in CostInput) error {
	for _, comp := range in.Settings.EnabledComponents {
		if _, ok := model.ParseComponent(string(comp)); !ok {
			return &UnknownComponentError{Component: string(comp)}
		}
	}
	if err := ValidateRates(c.snap, in.Settings.Rates, in.Business); err != nil {
		return err
	}
	if err := ValidateRates(c.snap, in.Business.DefaultRates, in.Business); err != nil {
		return err
	}
	if missing := c.MissingRates(in); len(missing) > 0 {
		return &IncompleteSettingsError{MissingKeys: missing}
	}
	return nil
}

// MissingRates returns the sorted required rate keys that cannot be resolved.
func (c *Calculator) MissingRates(in CostInput) []string {
	rates := c.lookup(in)
	missing := make(map[string]struct{})

	if in.Settings.Enabled(model.ComponentFuel) {
		for _, country := range in.Route.Countries() {
			if _, ok := c.fuelRate(rates, country); !ok {
				missing[countryKey(model.RateFuel, country)] = struct{}{}
			}
		}
		if in.Route.EmptyDriving != nil && len(in.Route.CountrySegments) == 0 {
			if _, ok := rates.find(string(model.RateFuel)); !ok {
				missing[string(model.RateFuel)] = struct{}{}
			}
		}
	}

	if in.Settings.Enabled(model.ComponentDriver) {
		if _, ok := c.driverSpec(rates, in.Driver); !ok {
			missing[string(model.RateDriverBase)] = struct{}{}
		}
	}

	if in.Settings.Enabled(model.ComponentEvents) {
		for _, ev := range in.Route.TimelineEvents {
			if _, _, ok := c.eventRate(rates, ev.Type); !ok {
				missing[eventKey(model.RateEvent, ev.Type)] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(missing))
	for k := range missing {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

// Calculate builds a fresh breakdown from the settings snapshot in the input.
func (c *Calculator) Calculate(in CostInput) (model.CostBreakdown, error) {
	if err := c.CheckSettings(in); err != nil {
		return model.CostBreakdown{}, err
	}
	rates := c.lookup(in)

	breakdown := model.CostBreakdown{
		ID:         c.newID(),
		RouteID:    in.Route.ID,
		SettingsID: in.Settings.ID,
		CreatedAt:  c.now(),
	}

	if in.Settings.Enabled(model.ComponentFuel) {
		breakdown.FuelCosts, breakdown.EmptyDrivingFuelCost = c.fuelCosts(rates, in)
	}
	if in.Settings.Enabled(model.ComponentToll) {
		breakdown.TollCosts = c.tollCosts(rates, in)
	}
	if in.Settings.Enabled(model.ComponentDriver) {
		spec, _ := c.driverSpec(rates, in.Driver)
		cost := CalculateDriverCost(in.Route.DrivingHours(), spec)
		breakdown.DriverCosts = &cost
	}
	if in.Settings.Enabled(model.ComponentOverhead) {
		overhead := c.overheads(rates, in.Business.CostOverheads).Total()
		breakdown.OverheadCosts = &overhead
	}
	if in.Settings.Enabled(model.ComponentEvents) {
		breakdown.TimelineEventCosts = c.eventCosts(rates, in.Route.TimelineEvents)
	}

	breakdown.TotalCost = breakdown.Sum()
	return breakdown, nil
}

func (c *Calculator) fuelRate(rates rateLookup, country string) (decimal.Decimal, bool) {
	if v, ok := rates.find(countryKey(model.RateFuel, country), string(model.RateFuel)); ok {
		return v, true
	}
	return c.snap.FuelPrice(country)
}

func (c *Calculator) fuelCosts(rates rateLookup, in CostInput) (map[string]decimal.Decimal, *decimal.Decimal) {
	truck := withTruckDefaults(in.Truck)
	costs := make(map[string]decimal.Decimal, len(in.Route.CountrySegments))

	for _, seg := range in.Route.CountrySegments {
		country := strings.ToUpper(seg.CountryCode)
		rate, _ := c.fuelRate(rates, country)
		cost := seg.DistanceKM.Mul(truck.FuelConsumptionLoaded).Mul(rate)
		costs[country] = costs[country].Add(cost)
	}

	if in.Route.EmptyDriving == nil {
		return costs, nil
	}

	// The empty leg ends at the cargo origin, so it is priced at the first
	// country's fuel rate but kept out of the country map.
	var rate decimal.Decimal
	if len(in.Route.CountrySegments) > 0 {
		rate, _ = c.fuelRate(rates, strings.ToUpper(in.Route.CountrySegments[0].CountryCode))
	} else {
		rate, _ = rates.find(string(model.RateFuel))
	}
	empty := in.Route.EmptyDriving.DistanceKM.Mul(truck.FuelConsumptionEmpty).Mul(rate)
	return costs, &empty
}

func (c *Calculator) tollCosts(rates rateLookup, in CostInput) map[string]decimal.Decimal {
	costs := make(map[string]decimal.Decimal, len(in.Route.CountrySegments))
	for _, seg := range in.Route.CountrySegments {
		country := strings.ToUpper(seg.CountryCode)
		resolved := ResolveTollRate(c.snap, TollQuery{
			CountryCode:      country,
			TollClass:        in.Truck.TollClass,
			EuroClass:        in.Truck.EuroClass,
			BusinessEntityID: in.Business.ID,
			RouteType:        in.Route.RouteType,
		})
		base, mode := resolved.BaseRate, c.mode
		// A configured toll rate is the final tariff; only the business multiplier applies.
		if v, ok := rates.find(countryKey(model.RateToll, country), string(model.RateToll)); ok {
			base, mode = v, EuroAdjustmentIgnore
		}
		cost := seg.DistanceKM.Mul(PerKM(base, resolved, mode))
		costs[country] = costs[country].Add(cost)
	}
	return costs
}

func (c *Calculator) driverSpec(rates rateLookup, spec model.DriverSpecification) (model.DriverSpecification, bool) {
	if v, ok := rates.find(string(model.RateDriverBase)); ok {
		spec.DailyRate = v
	}
	if v, ok := rates.find(string(model.RateDriverTime)); ok {
		spec.DrivingTimeRate = v
	}
	return spec, spec.DailyRate.IsPositive()
}

func (c *Calculator) overheads(rates rateLookup, o model.CostOverheads) model.CostOverheads {
	if v, ok := rates.find(string(model.RateOverheadAdmin)); ok {
		o.Admin = v
	}
	if v, ok := rates.find(string(model.RateOverheadInsurance)); ok {
		o.Insurance = v
	}
	if v, ok := rates.find(string(model.RateOverheadFacilities)); ok {
		o.Facilities = v
	}
	if v, ok := rates.find(string(model.RateOverheadOther)); ok {
		o.Other = v
	}
	return o
}

// eventRate returns the rate and whether it is charged per hour. A configured
// hourly rate wins over the flat per-event rate.
func (c *Calculator) eventRate(rates rateLookup, eventType model.EventType) (decimal.Decimal, bool, bool) {
	if v, ok := rates.find(eventKey(model.RateEventHourly, eventType), string(model.RateEventHourly)); ok {
		return v, true, true
	}
	if v, ok := rates.find(eventKey(model.RateEvent, eventType), string(model.RateEvent)); ok {
		return v, false, true
	}
	v, ok := c.snap.EventRate(eventType)
	return v, false, ok
}

func (c *Calculator) eventCosts(rates rateLookup, events []model.TimelineEvent) map[string]decimal.Decimal {
	costs := make(map[string]decimal.Decimal, len(events))
	for _, ev := range events {
		rate, hourly, _ := c.eventRate(rates, ev.Type)
		cost := rate
		if hourly {
			cost = rate.Mul(ev.DurationHours)
		}
		key := string(ev.Type)
		costs[key] = costs[key].Add(cost)
	}
	return costs
}

func withTruckDefaults(t model.TruckSpecification) model.TruckSpecification {
	def := refdata.DefaultTruck()
	if t.FuelConsumptionLoaded.IsZero() {
		t.FuelConsumptionLoaded = def.FuelConsumptionLoaded
	}
	if t.FuelConsumptionEmpty.IsZero() {
		t.FuelConsumptionEmpty = def.FuelConsumptionEmpty
	}
	return t
}
