package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/service"
)

// amount renders money with exactly two decimals; values are kept exact
// internally and only rounded here.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + decimal.Decimal(a).StringFixed(2) + `"`), nil
}

func amounts(in map[string]decimal.Decimal) map[string]amount {
	if in == nil {
		return nil
	}
	out := make(map[string]amount, len(in))
	for k, v := range in {
		out[k] = amount(v)
	}
	return out
}

func optionalAmount(d *decimal.Decimal) *amount {
	if d == nil {
		return nil
	}
	a := amount(*d)
	return &a
}

type createRouteRequest struct {
	BusinessEntityID uuid.UUID              `json:"business_entity_id"`
	TransportID      uuid.UUID              `json:"transport_id"`
	CargoID          *uuid.UUID             `json:"cargo_id"`
	Origin           model.Location         `json:"origin"`
	Destination      model.Location         `json:"destination"`
	RouteType        string                 `json:"route_type"`
	PickupTime       time.Time              `json:"pickup_time" binding:"required"`
	DeliveryTime     time.Time              `json:"delivery_time" binding:"required"`
	EmptyDriving     *model.EmptyDriving    `json:"empty_driving"`
	CountrySegments  []model.CountrySegment `json:"country_segments" binding:"required,min=1"`
	TimelineEvents   []model.TimelineEvent  `json:"timeline_events"`
}

func (r createRouteRequest) toInput() service.CreateRouteInput {
	return service.CreateRouteInput{
		BusinessEntityID: r.BusinessEntityID,
		TransportID:      r.TransportID,
		CargoID:          r.CargoID,
		Origin:           r.Origin,
		Destination:      r.Destination,
		RouteType:        r.RouteType,
		PickupTime:       r.PickupTime,
		DeliveryTime:     r.DeliveryTime,
		EmptyDriving:     r.EmptyDriving,
		CountrySegments:  r.CountrySegments,
		TimelineEvents:   r.TimelineEvents,
	}
}

type statusRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

type settingsRequest struct {
	EnabledComponents []string                   `json:"enabled_components" binding:"required"`
	Rates             map[string]decimal.Decimal `json:"rates"`
}

type cloneSettingsRequest struct {
	TargetRouteID uuid.UUID                  `json:"target_route_id"`
	Modifications map[string]decimal.Decimal `json:"modifications"`
}

type validateRatesRequest struct {
	BusinessEntityID uuid.UUID                  `json:"business_entity_id"`
	Rates            map[string]decimal.Decimal `json:"rates" binding:"required"`
}

type driverCostRequest struct {
	DurationHours decimal.Decimal           `json:"duration_hours"`
	Driver        model.DriverSpecification `json:"driver_specifications"`
}

type createCargoRequest struct {
	BusinessEntityID    uuid.UUID       `json:"business_entity_id"`
	Weight              decimal.Decimal `json:"weight"`
	Volume              decimal.Decimal `json:"volume"`
	CargoType           string          `json:"cargo_type" binding:"required"`
	Value               decimal.Decimal `json:"value"`
	SpecialRequirements []string        `json:"special_requirements"`
}

func (r createCargoRequest) toModel() model.Cargo {
	return model.Cargo{
		BusinessEntityID:    r.BusinessEntityID,
		Weight:              r.Weight,
		Volume:              r.Volume,
		CargoType:           r.CargoType,
		Value:               r.Value,
		SpecialRequirements: r.SpecialRequirements,
	}
}

type createOfferRequest struct {
	RouteID          uuid.UUID        `json:"route_id"`
	MarginPercentage *decimal.Decimal `json:"margin_percentage"`
}

type finalizeOfferRequest struct {
	Comment string `json:"comment"`
}

type replaceRulesRequest struct {
	Rules []model.RateValidationRule `json:"rules" binding:"required"`
}

type replaceOverridesRequest struct {
	Overrides []model.TollRateOverride `json:"overrides"`
}

type driverCostResponse struct {
	BaseCost         amount          `json:"base_cost"`
	RegularHours     decimal.Decimal `json:"regular_hours"`
	OvertimeHours    decimal.Decimal `json:"overtime_hours"`
	RegularHoursCost amount          `json:"regular_hours_cost"`
	OvertimeCost     amount          `json:"overtime_cost"`
	TotalCost        amount          `json:"total_cost"`
}

func newDriverCostResponse(d model.DriverCost) driverCostResponse {
	return driverCostResponse{
		BaseCost:         amount(d.BaseCost),
		RegularHours:     d.RegularHours,
		OvertimeHours:    d.OvertimeHours,
		RegularHoursCost: amount(d.RegularHoursCost),
		OvertimeCost:     amount(d.OvertimeCost),
		TotalCost:        amount(d.TotalCost),
	}
}

type breakdownResponse struct {
	ID                   uuid.UUID           `json:"id"`
	RouteID              uuid.UUID           `json:"route_id"`
	SettingsID           uuid.UUID           `json:"settings_id"`
	FuelCosts            map[string]amount   `json:"fuel_costs,omitempty"`
	EmptyDrivingFuelCost *amount             `json:"empty_driving_fuel_cost,omitempty"`
	TollCosts            map[string]amount   `json:"toll_costs,omitempty"`
	DriverCosts          *driverCostResponse `json:"driver_costs,omitempty"`
	OverheadCosts        *amount             `json:"overhead_costs,omitempty"`
	TimelineEventCosts   map[string]amount   `json:"timeline_event_costs,omitempty"`
	TotalCost            amount              `json:"total_cost"`
	CreatedAt            time.Time           `json:"created_at"`
}

func newBreakdownResponse(b model.CostBreakdown) breakdownResponse {
	resp := breakdownResponse{
		ID:                   b.ID,
		RouteID:              b.RouteID,
		SettingsID:           b.SettingsID,
		FuelCosts:            amounts(b.FuelCosts),
		EmptyDrivingFuelCost: optionalAmount(b.EmptyDrivingFuelCost),
		TollCosts:            amounts(b.TollCosts),
		OverheadCosts:        optionalAmount(b.OverheadCosts),
		TimelineEventCosts:   amounts(b.TimelineEventCosts),
		TotalCost:            amount(b.TotalCost),
		CreatedAt:            b.CreatedAt,
	}
	if b.DriverCosts != nil {
		d := newDriverCostResponse(*b.DriverCosts)
		resp.DriverCosts = &d
	}
	return resp
}

type settingsResponse struct {
	Settings  model.CostSettings `json:"settings"`
	Breakdown breakdownResponse  `json:"breakdown"`
}

type offerResponse struct {
	ID               uuid.UUID         `json:"id"`
	RouteID          uuid.UUID         `json:"route_id"`
	CostBreakdownID  uuid.UUID         `json:"cost_breakdown_id"`
	MarginPercentage decimal.Decimal   `json:"margin_percentage"`
	FinalPrice       amount            `json:"final_price"`
	Status           model.OfferStatus `json:"status"`
	FinalizedAt      *time.Time        `json:"finalized_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

func newOfferResponse(o model.Offer) offerResponse {
	return offerResponse{
		ID:               o.ID,
		RouteID:          o.RouteID,
		CostBreakdownID:  o.CostBreakdownID,
		MarginPercentage: o.MarginPercentage,
		FinalPrice:       amount(o.FinalPrice),
		Status:           o.Status,
		FinalizedAt:      o.FinalizedAt,
		CreatedAt:        o.CreatedAt,
	}
}
