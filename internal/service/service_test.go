package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"freight-pricing-service/internal/lifecycle"
	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/pricing"
	"freight-pricing-service/internal/refdata"
	"freight-pricing-service/internal/repository"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ticker returns strictly increasing timestamps so history order is stable.
func ticker() func() time.Time {
	at := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Second)
		return at
	}
}

type fixture struct {
	catalog *CatalogService
	routes  *RouteService
	costs   *CostService
	cargos  *CargoService
	offers  *OfferService
	rates   *RateService

	admin     model.Principal
	planner   model.Principal
	viewer    model.Principal
	business  model.BusinessEntity
	transport model.Transport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := zerolog.Nop()
	businesses := repository.NewBusinessRepository(db)
	transports := repository.NewTransportRepository(db)
	routes := repository.NewRouteRepository(db)
	costs := repository.NewCostRepository(db)
	cargos := repository.NewCargoRepository(db)
	offers := repository.NewOfferRepository(db)
	history := repository.NewHistoryRepository(db)
	rates := repository.NewRateRepository(db)
	store := refdata.NewStore(refdata.Defaults(), log)

	clock := ticker()
	f := &fixture{
		catalog: NewCatalogService(businesses, transports, store, log),
		routes:  NewRouteService(routes, businesses, transports, cargos, history, store, log),
		costs:   NewCostService(costs, routes, businesses, transports, store, pricing.EuroAdjustmentAdd, log),
		cargos:  NewCargoService(cargos, businesses, history, log),
		offers:  NewOfferService(offers, costs, routes, cargos, dec("15"), log),
		rates:   NewRateService(rates, businesses, store, log),
	}
	f.routes.now = clock
	f.costs.now = clock
	f.cargos.now = clock
	f.offers.now = clock

	ctx := context.Background()
	if err := f.rates.LoadReferenceData(ctx); err != nil {
		t.Fatalf("load reference data: %v", err)
	}

	f.admin = model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	f.business, err = f.catalog.CreateBusiness(ctx, f.admin, model.BusinessEntity{
		Name:               "Spedition Nord",
		OperatingCountries: []string{"de", "pl"},
		Certifications:     []string{"ADR"},
		CostOverheads: model.CostOverheads{
			Admin:      dec("100"),
			Insurance:  dec("250"),
			Facilities: dec("150"),
			Other:      dec("0"),
		},
	})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	f.planner = model.Principal{UserID: uuid.New(), BusinessEntityID: &f.business.ID, Role: model.RolePlanner}
	f.viewer = model.Principal{UserID: uuid.New(), BusinessEntityID: &f.business.ID, Role: model.RoleViewer}

	f.transport, err = f.catalog.CreateTransport(ctx, f.planner, model.Transport{
		TransportTypeID:  "tractor-trailer",
		BusinessEntityID: f.business.ID,
		Truck: model.TruckSpecification{
			FuelConsumptionEmpty:  dec("0.2"),
			FuelConsumptionLoaded: dec("0.3"),
			TollClass:             "1",
			EuroClass:             "VI",
		},
		Driver: model.DriverSpecification{
			DailyRate:              dec("200"),
			DrivingTimeRate:        dec("25"),
			MaxDrivingHours:        dec("9"),
			OvertimeRateMultiplier: dec("1.5"),
		},
	})
	if err != nil {
		t.Fatalf("create transport: %v", err)
	}
	return f
}

func (f *fixture) routeInput(cargoID *uuid.UUID) CreateRouteInput {
	pickup := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	return CreateRouteInput{
		BusinessEntityID: f.business.ID,
		TransportID:      f.transport.ID,
		CargoID:          cargoID,
		Origin:           model.Location{Latitude: 52.52, Longitude: 13.405, Address: "Berlin"},
		Destination:      model.Location{Latitude: 52.2297, Longitude: 21.0122, Address: "Warsaw"},
		PickupTime:       pickup,
		DeliveryTime:     pickup.Add(12 * time.Hour),
		CountrySegments: []model.CountrySegment{
			{CountryCode: "de", DistanceKM: dec("100"), DurationHours: dec("7"), SegmentOrder: 0},
			{CountryCode: "PL", DistanceKM: dec("50"), DurationHours: dec("4"), SegmentOrder: 1},
		},
		TimelineEvents: []model.TimelineEvent{
			{Type: model.EventPickup, PlannedTime: pickup, DurationHours: dec("1"), EventOrder: 1},
			{Type: model.EventDelivery, PlannedTime: pickup.Add(12 * time.Hour), DurationHours: dec("1"), EventOrder: 2},
		},
	}
}

var referenceSettings = SettingsInput{
	EnabledComponents: []string{"fuel", "toll", "driver", "overhead", "events"},
	Rates: map[string]decimal.Decimal{
		"fuel_rate":    dec("1.5"),
		"toll_rate_de": dec("0.2"),
		"toll_rate_PL": dec("0.15"),
	},
}

func TestRouteCreateAndFeasibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rt, err := f.routes.Create(ctx, f.planner, f.routeInput(nil))
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if rt.Status != model.RouteDraft {
		t.Fatalf("expected draft, got %s", rt.Status)
	}
	if !rt.TotalDistanceKM.Equal(dec("150")) || !rt.TotalDurationHours.Equal(dec("11")) {
		t.Fatalf("unexpected totals %s km / %s h", rt.TotalDistanceKM, rt.TotalDurationHours)
	}
	if rt.CountrySegments[0].CountryCode != "DE" {
		t.Fatalf("country code must be upper-cased, got %s", rt.CountrySegments[0].CountryCode)
	}

	res, err := f.routes.ValidateFeasibility(ctx, f.viewer, rt.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.IsFeasible {
		t.Fatalf("expected feasible route, got %+v", res)
	}
	stored, err := f.routes.Get(ctx, f.viewer, rt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.IsFeasible || !stored.OperatingCountriesValidated || stored.ValidationTimestamp == nil {
		t.Fatalf("feasibility not persisted: %+v", stored)
	}
}

func TestRouteCreateDefaultTimeline(t *testing.T) {
	f := newFixture(t)
	in := f.routeInput(nil)
	in.TimelineEvents = nil

	rt, err := f.routes.Create(context.Background(), f.planner, in)
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	if len(rt.TimelineEvents) != 3 {
		t.Fatalf("expected 3 default events, got %d", len(rt.TimelineEvents))
	}
	if rt.TimelineEvents[0].Type != model.EventPickup || rt.TimelineEvents[2].Type != model.EventDelivery {
		t.Fatalf("unexpected default timeline %+v", rt.TimelineEvents)
	}
}

func TestRouteCreateRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name      string
		principal model.Principal
		mutate    func(*CreateRouteInput)
		want      error
	}{
		{name: "viewer", principal: f.viewer, mutate: func(*CreateRouteInput) {}, want: ErrPermissionDenied},
		{name: "other business", principal: f.planner, mutate: func(in *CreateRouteInput) { in.BusinessEntityID = uuid.New() }, want: ErrPermissionDenied},
		{name: "segment gap", principal: f.planner, mutate: func(in *CreateRouteInput) { in.CountrySegments[1].SegmentOrder = 2 }, want: ErrInvalidInput},
		{name: "bad country", principal: f.planner, mutate: func(in *CreateRouteInput) { in.CountrySegments[0].CountryCode = "DEU" }, want: ErrInvalidInput},
		{name: "delivery before pickup", principal: f.planner, mutate: func(in *CreateRouteInput) { in.DeliveryTime = in.PickupTime.Add(-time.Hour) }, want: ErrInvalidInput},
		{name: "unknown event type", principal: f.planner, mutate: func(in *CreateRouteInput) { in.TimelineEvents[1].Type = "lunch" }, want: ErrInvalidInput},
		{name: "negative event duration", principal: f.planner, mutate: func(in *CreateRouteInput) { in.TimelineEvents[0].DurationHours = dec("-1") }, want: ErrInvalidInput},
		{name: "unknown transport", principal: f.planner, mutate: func(in *CreateRouteInput) { in.TransportID = uuid.New() }, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.routeInput(nil)
			tt.mutate(&in)
			if _, err := f.routes.Create(ctx, tt.principal, in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRouteStatusTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rt, err := f.routes.Create(ctx, f.planner, f.routeInput(nil))
	if err != nil {
		t.Fatalf("create route: %v", err)
	}

	if _, err := f.routes.UpdateStatus(ctx, f.planner, rt.ID, model.RouteCompleted, ""); err == nil {
		t.Fatal("expected draft -> completed to fail")
	} else {
		var invalid *lifecycle.InvalidStatusTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidStatusTransitionError, got %T", err)
		}
	}
	if _, err := f.routes.UpdateStatus(ctx, f.planner, rt.ID, "archived", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected unknown status to be invalid input, got %v", err)
	}
	for _, next := range []model.RouteStatus{model.RoutePlanned, model.RouteInProgress} {
		if _, err := f.routes.UpdateStatus(ctx, f.planner, rt.ID, next, "ok"); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if err := f.routes.Delete(ctx, f.planner, rt.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected in-progress delete to fail, got %v", err)
	}

	history, err := f.routes.History(ctx, f.viewer, rt.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	got := make([]string, 0, len(history))
	for _, h := range history {
		got = append(got, h.Status)
	}
	want := []string{"draft", "planned", "in_progress"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected history %v, got %v", want, got)
	}
}

func TestCostServiceEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rt, err := f.routes.Create(ctx, f.planner, f.routeInput(nil))
	if err != nil {
		t.Fatalf("create route: %v", err)
	}

	settings, breakdown, err := f.costs.SaveSettings(ctx, f.planner, rt.ID, referenceSettings)
	if err != nil {
		t.Fatalf("save settings: %v", err)
	}
	if settings.Version != 1 {
		t.Fatalf("expected version 1, got %d", settings.Version)
	}
	if breakdown.TotalCost.StringFixed(2) != "1195.00" {
		t.Fatalf("expected total 1195.00, got %s", breakdown.TotalCost.StringFixed(2))
	}
	if !breakdown.TollCosts["DE"].Equal(dec("20")) {
		t.Fatalf("lower-case rate key must apply to DE, got %s", breakdown.TollCosts["DE"])
	}
	if breakdown.SettingsID != settings.ID {
		t.Fatal("breakdown must reference its settings version")
	}

	again, _, err := f.costs.Recalculate(ctx, f.planner, rt.ID)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if again.Version != 2 {
		t.Fatalf("expected version 2, got %d", again.Version)
	}
	versions, err := f.costs.SettingsVersions(ctx, f.viewer, rt.ID)
	if err != nil {
		t.Fatalf("settings versions: %v", err)
	}
	if len(versions) != 2 || versions[0].Version != 1 || versions[1].ID != again.ID {
		t.Fatalf("unexpected settings versions %+v", versions)
	}
	latest, err := f.costs.LatestBreakdown(ctx, f.viewer, rt.ID)
	if err != nil {
		t.Fatalf("latest breakdown: %v", err)
	}
	if latest.SettingsID != again.ID || !latest.TotalCost.Equal(breakdown.TotalCost) {
		t.Fatalf("latest breakdown mismatch: %+v", latest)
	}
}

func TestCostServiceRejectsInvalidRates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	rt, err := f.routes.Create(ctx, f.planner, f.routeInput(nil))
	if err != nil {
		t.Fatalf("create route: %v", err)
	}

	tests := []struct {
		name  string
		input SettingsInput
		check func(error) bool
	}{
		{
			name:  "out of range",
			input: SettingsInput{EnabledComponents: []string{"fuel"}, Rates: map[string]decimal.Decimal{"fuel_rate": dec("9")}},
			check: func(err error) bool { var e *pricing.InvalidRateError; return errors.As(err, &e) && e.Key == "fuel_rate" },
		},
		{
			name:  "unknown rate",
			input: SettingsInput{EnabledComponents: []string{"fuel"}, Rates: map[string]decimal.Decimal{"magic_rate": dec("1")}},
			check: func(err error) bool { var e *pricing.UnknownRateTypeError; return errors.As(err, &e) },
		},
		{
			name:  "unknown component",
			input: SettingsInput{EnabledComponents: []string{"catering"}},
			check: func(err error) bool { var e *pricing.UnknownComponentError; return errors.As(err, &e) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.costs.SaveSettings(ctx, f.planner, rt.ID, tt.input)
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	if _, err := f.costs.LatestSettings(ctx, f.planner, rt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected settings must not be stored, got %v", err)
	}
	if _, _, err := f.costs.SaveSettings(ctx, f.viewer, rt.ID, referenceSettings); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected viewer to be denied, got %v", err)
	}
}

func TestCostServiceCloneSettings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	source, err := f.routes.Create(ctx, f.planner, f.routeInput(nil))
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	target, err := f.routes.Create(ctx, f.planner, f.routeInput(nil))
	if err != nil {
		t.Fatalf("create target: %v", err)
	}
	if _, _, err := f.costs.SaveSettings(ctx, f.planner, source.ID, referenceSettings); err != nil {
		t.Fatalf("save source settings: %v", err)
	}

	settings, breakdown, err := f.costs.CloneSettings(ctx, f.planner, source.ID, target.ID, map[string]decimal.Decimal{"toll_rate_DE": dec("0.3")})
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if settings.RouteID != target.ID || settings.Version != 1 {
		t.Fatalf("unexpected cloned settings %+v", settings)
	}
	if !breakdown.TollCosts["DE"].Equal(dec("30")) {
		t.Fatalf("modification must replace the source rate, got %s", breakdown.TollCosts["DE"])
	}
	if !breakdown.TotalCost.Equal(dec("1205")) {
		t.Fatalf("expected total 1205, got %s", breakdown.TotalCost)
	}

	_, _, err = f.costs.CloneSettings(ctx, f.planner, source.ID, target.ID, map[string]decimal.Decimal{"fuel_rate": dec("-1")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected negative modification to fail, got %v", err)
	}
}

func TestOfferLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cargo, err := f.cargos.Create(ctx, f.planner, model.Cargo{
		BusinessEntityID: f.business.ID,
		Weight:           dec("12000"),
		Volume:           dec("40"),
		CargoType:        "pallets",
		Value:            dec("50000"),
	})
	if err != nil {
		t.Fatalf("create cargo: %v", err)
	}
	rt, err := f.routes.Create(ctx, f.planner, f.routeInput(&cargo.ID))
	if err != nil {
		t.Fatalf("create route: %v", err)
	}

	if _, err := f.offers.Create(ctx, f.planner, rt.ID, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected offer without breakdown to fail, got %v", err)
	}
	if _, _, err := f.costs.SaveSettings(ctx, f.planner, rt.ID, referenceSettings); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	tooHigh := dec("120")
	if _, err := f.offers.Create(ctx, f.planner, rt.ID, &tooHigh); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected margin 120 to fail, got %v", err)
	}

	offer, err := f.offers.Create(ctx, f.planner, rt.ID, nil)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if offer.Status != model.OfferDraft || !offer.FinalPrice.Equal(dec("1374.25")) {
		t.Fatalf("unexpected offer %+v", offer)
	}

	if _, _, err := f.costs.Recalculate(ctx, f.planner, rt.ID); err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	priced, err := f.offers.Breakdown(ctx, f.viewer, offer.ID)
	if err != nil {
		t.Fatalf("offer breakdown: %v", err)
	}
	if priced.ID != offer.CostBreakdownID {
		t.Fatalf("offer must keep the breakdown it was priced from, got %s", priced.ID)
	}

	finalized, err := f.offers.Finalize(ctx, f.planner, offer.ID, "accepted")
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finalized.Status != model.OfferFinalized || finalized.FinalizedAt == nil {
		t.Fatalf("unexpected finalized offer %+v", finalized)
	}

	moved, err := f.cargos.Get(ctx, f.viewer, cargo.ID)
	if err != nil {
		t.Fatalf("get cargo: %v", err)
	}
	if moved.Status != model.CargoInTransit {
		t.Fatalf("expected cargo in transit, got %s", moved.Status)
	}
	history, err := f.cargos.History(ctx, f.viewer, cargo.ID)
	if err != nil {
		t.Fatalf("cargo history: %v", err)
	}
	last := history[len(history)-1]
	if last.Trigger != TriggerOfferFinalization || last.TriggerID != offer.ID.String() {
		t.Fatalf("unexpected cargo history entry %+v", last)
	}

	var invalid *lifecycle.InvalidStatusTransitionError
	if _, err := f.offers.Finalize(ctx, f.planner, offer.ID, ""); !errors.As(err, &invalid) {
		t.Fatalf("expected second finalize to fail, got %v", err)
	}
	if err := f.cargos.Delete(ctx, f.planner, cargo.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected cargo in transit delete to fail, got %v", err)
	}
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		total, margin, want string
	}{
		{"1000", "0", "1000"},
		{"1000", "15", "1150"},
		{"1195", "10", "1314.5"},
		{"1000", "100", "2000"},
	}
	for _, tt := range tests {
		got := FinalPrice(dec(tt.total), dec(tt.margin))
		if !got.Equal(dec(tt.want)) {
			t.Fatalf("FinalPrice(%s, %s): expected %s, got %s", tt.total, tt.margin, tt.want, got)
		}
	}
}

func TestCargoServiceStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cargo, err := f.cargos.Create(ctx, f.planner, model.Cargo{
		BusinessEntityID:    f.business.ID,
		Weight:              dec("800"),
		CargoType:           "chemicals",
		SpecialRequirements: []string{" Hazardous "},
	})
	if err != nil {
		t.Fatalf("create cargo: %v", err)
	}
	if cargo.SpecialRequirements[0] != "hazardous" {
		t.Fatalf("requirements must be normalized, got %q", cargo.SpecialRequirements[0])
	}
	if _, err := f.cargos.UpdateStatus(ctx, f.planner, cargo.ID, model.CargoDelivered, ""); err == nil {
		t.Fatal("expected pending -> delivered to fail")
	}
	if _, err := f.cargos.UpdateStatus(ctx, f.planner, cargo.ID, model.CargoCancelled, "client withdrew"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := f.cargos.Delete(ctx, f.planner, cargo.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.cargos.Get(ctx, f.planner, cargo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted cargo to be gone, got %v", err)
	}
	if _, err := f.cargos.Create(ctx, f.planner, model.Cargo{BusinessEntityID: f.business.ID, CargoType: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected zero weight to fail, got %v", err)
	}
}

func TestRateServiceOverridesAndRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.rates.ReplaceOverrides(ctx, f.planner, f.business.ID, []model.TollRateOverride{
		{CountryCode: "de", VehicleClass: "1", RateMultiplier: dec("0.5")},
	})
	if err != nil {
		t.Fatalf("replace overrides: %v", err)
	}
	rate, err := f.costs.ResolveTollRate(f.viewer, pricing.TollQuery{CountryCode: "DE", TollClass: "1", EuroClass: "VI", BusinessEntityID: f.business.ID})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !rate.EffectiveMultiplier.Equal(dec("0.5")) {
		t.Fatalf("expected multiplier 0.5, got %s", rate.EffectiveMultiplier)
	}

	_, err = f.rates.ReplaceOverrides(ctx, f.planner, f.business.ID, []model.TollRateOverride{
		{CountryCode: "DE", VehicleClass: "1", RateMultiplier: dec("0")},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected zero multiplier to fail, got %v", err)
	}
	current, err := f.rates.Overrides(f.viewer, f.business.ID)
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if len(current) != 1 || !current[0].RateMultiplier.Equal(dec("0.5")) {
		t.Fatalf("rejected replacement must keep the old set, got %+v", current)
	}

	if _, err := f.rates.ReplaceRules(ctx, f.planner, refdata.DefaultRules()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected planner to be denied, got %v", err)
	}
	rules := refdata.DefaultRules()
	for i := range rules {
		if rules[i].RateType == model.RateFuel {
			rules[i].MaxValue = dec("1.0")
		}
	}
	if _, err := f.rates.ReplaceRules(ctx, f.admin, rules); err != nil {
		t.Fatalf("replace rules: %v", err)
	}
	for _, rule := range f.rates.Rules() {
		if rule.RateType == model.RateFuel && !rule.MaxValue.Equal(dec("1")) {
			t.Fatalf("published rules must match the committed rows, got fuel max %s", rule.MaxValue)
		}
	}
	err = f.costs.ValidateRates(ctx, f.planner, f.business.ID, map[string]decimal.Decimal{"fuel_rate": dec("1.5")})
	var invalidRate *pricing.InvalidRateError
	if !errors.As(err, &invalidRate) {
		t.Fatalf("expected new rule to apply, got %v", err)
	}
}

func TestCatalogServiceValidatesDefaultRates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name  string
		rates map[string]decimal.Decimal
		check func(error) bool
	}{
		{
			name:  "out of range",
			rates: map[string]decimal.Decimal{"fuel_rate": dec("999")},
			check: func(err error) bool { var e *pricing.InvalidRateError; return errors.As(err, &e) && e.Key == "fuel_rate" },
		},
		{
			name:  "unknown key",
			rates: map[string]decimal.Decimal{"bogus_key": dec("1")},
			check: func(err error) bool { var e *pricing.UnknownRateTypeError; return errors.As(err, &e) },
		},
		{
			name:  "country suffix normalized",
			rates: map[string]decimal.Decimal{"fuel_rate_de": dec("1.6")},
			check: func(err error) bool { return err == nil },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := f.catalog.CreateBusiness(ctx, f.admin, model.BusinessEntity{
				Name:               "Transporte Sur",
				OperatingCountries: []string{"DE"},
				DefaultRates:       tt.rates,
			})
			if !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
			if err == nil {
				if _, ok := b.DefaultRates["fuel_rate_DE"]; !ok {
					t.Fatalf("expected normalized key, got %v", b.DefaultRates)
				}
			}
		})
	}
}
