package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Component string

const (
	ComponentFuel     Component = "fuel"
	ComponentToll     Component = "toll"
	ComponentDriver   Component = "driver"
	ComponentOverhead Component = "overhead"
	ComponentEvents   Component = "events"
)

func ParseComponent(s string) (Component, bool) {
	switch Component(s) {
	case ComponentFuel, ComponentToll, ComponentDriver, ComponentOverhead, ComponentEvents:
		return Component(s), true
	default:
		return "", false
	}
}

// CostSettings is one immutable version of the pricing inputs for a route.
type CostSettings struct {
	ID                uuid.UUID                  `json:"id"`
	RouteID           uuid.UUID                  `json:"route_id"`
	BusinessEntityID  uuid.UUID                  `json:"business_entity_id"`
	Version           int                        `json:"version"`
	EnabledComponents []Component                `json:"enabled_components"`
	Rates             map[string]decimal.Decimal `json:"rates"`
	CreatedAt         time.Time                  `json:"created_at"`
}

func (s CostSettings) Enabled(c Component) bool {
	for _, e := range s.EnabledComponents {
		if e == c {
			return true
		}
	}
	return false
}

type DriverCost struct {
	BaseCost         decimal.Decimal `json:"base_cost"`
	RegularHours     decimal.Decimal `json:"regular_hours"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours"`
	RegularHoursCost decimal.Decimal `json:"regular_hours_cost"`
	OvertimeCost     decimal.Decimal `json:"overtime_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
}

// CostBreakdown holds only the enabled components; disabled ones stay nil.
type CostBreakdown struct {
	ID                   uuid.UUID                  `json:"id"`
	RouteID              uuid.UUID                  `json:"route_id"`
	SettingsID           uuid.UUID                  `json:"settings_id"`
	FuelCosts            map[string]decimal.Decimal `json:"fuel_costs,omitempty"`
	EmptyDrivingFuelCost *decimal.Decimal           `json:"empty_driving_fuel_cost,omitempty"`
	TollCosts            map[string]decimal.Decimal `json:"toll_costs,omitempty"`
	DriverCosts          *DriverCost                `json:"driver_costs,omitempty"`
	OverheadCosts        *decimal.Decimal           `json:"overhead_costs,omitempty"`
	TimelineEventCosts   map[string]decimal.Decimal `json:"timeline_event_costs,omitempty"`
	TotalCost            decimal.Decimal            `json:"total_cost"`
	CreatedAt            time.Time                  `json:"created_at"`
}

// Sum recomputes the total from the present components.
func (b CostBreakdown) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b.FuelCosts {
		total = total.Add(v)
	}
	if b.EmptyDrivingFuelCost != nil {
		total = total.Add(*b.EmptyDrivingFuelCost)
	}
	for _, v := range b.TollCosts {
		total = total.Add(v)
	}
	if b.DriverCosts != nil {
		total = total.Add(b.DriverCosts.TotalCost)
	}
	if b.OverheadCosts != nil {
		total = total.Add(*b.OverheadCosts)
	}
	for _, v := range b.TimelineEventCosts {
		total = total.Add(v)
	}
	return total
}
