package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"freight-pricing-service/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleRoute(businessID uuid.UUID) model.Route {
	id := uuid.New()
	pickup := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	return model.Route{
		ID:               id,
		TransportID:      uuid.New(),
		BusinessEntityID: businessID,
		Origin:           model.Location{Latitude: 52.52, Longitude: 13.405, Address: "Berlin"},
		Destination:      model.Location{Latitude: 52.2297, Longitude: 21.0122, Address: "Warsaw"},
		PickupTime:       pickup,
		DeliveryTime:     pickup.Add(12 * time.Hour),
		TotalDistanceKM:  dec("150"),
		Status:           model.RouteDraft,
		EmptyDriving:     &model.EmptyDriving{DistanceKM: dec("20"), DurationHours: dec("0.5")},
		CountrySegments: []model.CountrySegment{
			{CountryCode: "PL", DistanceKM: dec("50"), DurationHours: dec("4"), SegmentOrder: 1, SegmentType: model.SegmentTypeRoute},
			{CountryCode: "DE", DistanceKM: dec("100"), DurationHours: dec("7"), SegmentOrder: 0, SegmentType: model.SegmentTypeRoute,
				StartLocation: &model.Location{Address: "Berlin"}},
		},
		TimelineEvents: []model.TimelineEvent{
			{Type: model.EventDelivery, PlannedTime: pickup.Add(12 * time.Hour), DurationHours: dec("1"), EventOrder: 2, Status: "pending"},
			{Type: model.EventPickup, PlannedTime: pickup, DurationHours: dec("1"), EventOrder: 1, Status: "pending"},
		},
	}
}

func TestRouteRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRouteRepository(openTestDB(t))
	rt := sampleRoute(uuid.New())

	if err := repo.Create(ctx, rt, model.StatusHistoryEntry{Status: string(model.RouteDraft), Timestamp: time.Now()}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, rt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.CountrySegments) != 2 || got.CountrySegments[0].CountryCode != "DE" {
		t.Fatalf("expected segments ordered by segment_order, got %+v", got.CountrySegments)
	}
	if got.CountrySegments[0].StartLocation == nil || got.CountrySegments[1].StartLocation != nil {
		t.Fatalf("unexpected start locations: %+v", got.CountrySegments)
	}
	if len(got.TimelineEvents) != 2 || got.TimelineEvents[0].Type != model.EventPickup {
		t.Fatalf("expected events ordered by event_order, got %+v", got.TimelineEvents)
	}
	if got.EmptyDriving == nil || !got.EmptyDriving.DistanceKM.Equal(dec("20")) {
		t.Fatalf("unexpected empty driving: %+v", got.EmptyDriving)
	}
	if got.Origin.Address != "Berlin" || got.Status != model.RouteDraft {
		t.Fatalf("unexpected route: %+v", got)
	}
}

func TestRouteRepositoryStatusAndHistory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRouteRepository(db)
	history := NewHistoryRepository(db)
	rt := sampleRoute(uuid.New())
	start := time.Date(2026, 6, 1, 7, 0, 0, 0, time.UTC)

	if err := repo.Create(ctx, rt, model.StatusHistoryEntry{Status: "draft", Timestamp: start}); err != nil {
		t.Fatalf("create: %v", err)
	}
	entry := model.StatusHistoryEntry{PreviousStatus: "draft", Status: "planned", Comment: "ready", Timestamp: start.Add(time.Minute)}
	if err := repo.UpdateStatus(ctx, rt.ID, entry); err != nil {
		t.Fatalf("update status: %v", err)
	}

	// A second writer still believing the route is a draft loses.
	stale := model.StatusHistoryEntry{PreviousStatus: "draft", Status: "cancelled", Timestamp: start.Add(2 * time.Minute)}
	if err := repo.UpdateStatus(ctx, rt.ID, stale); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	entries, err := history.List(ctx, model.KindRoute, rt.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 || entries[1].Status != "planned" || entries[1].Comment != "ready" {
		t.Fatalf("unexpected history: %+v", entries)
	}

	got, err := repo.Get(ctx, rt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.RoutePlanned {
		t.Fatalf("expected planned, got %s", got.Status)
	}
}

func TestRouteRepositoryFeasibilityAndDelete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewRouteRepository(db)
	rt := sampleRoute(uuid.New())
	if err := repo.Create(ctx, rt, model.StatusHistoryEntry{Status: "draft", Timestamp: time.Now()}); err != nil {
		t.Fatalf("create: %v", err)
	}

	res := model.FeasibilityResult{
		IsFeasible:          false,
		Validations:         map[string]bool{"operating_countries": true, "certifications": false},
		ValidationTimestamp: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveFeasibility(ctx, rt.ID, res); err != nil {
		t.Fatalf("save feasibility: %v", err)
	}
	got, err := repo.Get(ctx, rt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsFeasible || !got.OperatingCountriesValidated || got.CertificationsValidated {
		t.Fatalf("unexpected flags: %+v", got)
	}
	if got.ValidationDetails["certifications"] || !got.ValidationDetails["operating_countries"] {
		t.Fatalf("unexpected validation details: %v", got.ValidationDetails)
	}

	if err := repo.Delete(ctx, rt.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, rt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var segments int64
	db.Model(&segmentRecord{}).Where("route_id = ?", rt.ID).Count(&segments)
	if segments != 0 {
		t.Fatalf("expected segments removed with route, found %d", segments)
	}
	if err := repo.Delete(ctx, rt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCostRepositoryVersions(t *testing.T) {
	ctx := context.Background()
	repo := NewCostRepository(openTestDB(t))
	routeID := uuid.New()

	compute := func(total string) ComputeFunc {
		return func(s model.CostSettings) (model.CostBreakdown, error) {
			overhead := dec("500")
			return model.CostBreakdown{
				ID:            uuid.New(),
				RouteID:       s.RouteID,
				FuelCosts:     map[string]decimal.Decimal{"DE": dec("45")},
				OverheadCosts: &overhead,
				TotalCost:     dec(total),
				CreatedAt:     time.Now().UTC(),
			}, nil
		}
	}
	settings := func() model.CostSettings {
		return model.CostSettings{
			ID:                uuid.New(),
			RouteID:           routeID,
			BusinessEntityID:  uuid.New(),
			EnabledComponents: []model.Component{model.ComponentFuel, model.ComponentOverhead},
			Rates:             map[string]decimal.Decimal{"fuel_rate": dec("1.5")},
			CreatedAt:         time.Now().UTC(),
		}
	}

	first, _, err := repo.SaveVersion(ctx, settings(), compute("545"))
	if err != nil {
		t.Fatalf("save v1: %v", err)
	}
	second, b2, err := repo.SaveVersion(ctx, settings(), compute("600"))
	if err != nil {
		t.Fatalf("save v2: %v", err)
	}
	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("expected versions 1 and 2, got %d and %d", first.Version, second.Version)
	}

	latest, err := repo.LatestBreakdown(ctx, routeID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != b2.ID || latest.SettingsID != second.ID {
		t.Fatalf("latest breakdown must belong to latest settings: %+v", latest)
	}
	if latest.TollCosts != nil || latest.DriverCosts != nil || latest.EmptyDrivingFuelCost != nil {
		t.Fatalf("absent components must stay absent: %+v", latest)
	}
	if !latest.FuelCosts["DE"].Equal(dec("45")) || !latest.TotalCost.Equal(dec("600")) {
		t.Fatalf("unexpected amounts: %+v", latest)
	}

	failing := func(model.CostSettings) (model.CostBreakdown, error) {
		return model.CostBreakdown{}, errors.New("boom")
	}
	if _, _, err := repo.SaveVersion(ctx, settings(), failing); err == nil {
		t.Fatal("expected compute error")
	}
	all, err := repo.ListSettings(ctx, routeID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("failed compute must not leave a settings version, got %d versions", len(all))
	}

	if _, err := repo.LatestBreakdown(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCostRepositoryKeepsFullPrecision(t *testing.T) {
	ctx := context.Background()
	repo := NewCostRepository(openTestDB(t))
	routeID := uuid.New()
	overhead := dec("500.000001")
	empty := dec("12.345678")

	compute := func(s model.CostSettings) (model.CostBreakdown, error) {
		b := model.CostBreakdown{
			ID:                   uuid.New(),
			RouteID:              s.RouteID,
			FuelCosts:            map[string]decimal.Decimal{"DE": dec("731.755607")},
			EmptyDrivingFuelCost: &empty,
			OverheadCosts:        &overhead,
			CreatedAt:            time.Now().UTC(),
		}
		b.TotalCost = b.Sum()
		return b, nil
	}
	settings := model.CostSettings{
		ID:                uuid.New(),
		RouteID:           routeID,
		BusinessEntityID:  uuid.New(),
		EnabledComponents: []model.Component{model.ComponentFuel, model.ComponentOverhead},
		CreatedAt:         time.Now().UTC(),
	}
	if _, _, err := repo.SaveVersion(ctx, settings, compute); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.LatestBreakdown(ctx, routeID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !got.TotalCost.Equal(dec("1244.101286")) {
		t.Fatalf("expected total 1244.101286, got %s", got.TotalCost)
	}
	if !got.TotalCost.Equal(got.Sum()) {
		t.Fatalf("reloaded total %s must equal component sum %s", got.TotalCost, got.Sum())
	}
	if !got.EmptyDrivingFuelCost.Equal(empty) || !got.OverheadCosts.Equal(overhead) {
		t.Fatalf("scalar components lost precision: %s %s", got.EmptyDrivingFuelCost, got.OverheadCosts)
	}
}

func TestOfferFinalizeMovesCargo(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	offers := NewOfferRepository(db)
	cargos := NewCargoRepository(db)
	history := NewHistoryRepository(db)
	now := time.Date(2026, 6, 2, 10, 0, 0, 0, time.UTC)

	cargo := model.Cargo{ID: uuid.New(), BusinessEntityID: uuid.New(), Weight: dec("1000"), Volume: dec("10"), CargoType: "pallets", Status: model.CargoPending, IsActive: true}
	if err := cargos.Create(ctx, cargo, model.StatusHistoryEntry{Status: "pending", Timestamp: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("create cargo: %v", err)
	}
	offer := model.Offer{ID: uuid.New(), RouteID: uuid.New(), CostBreakdownID: uuid.New(), MarginPercentage: dec("15"), FinalPrice: dec("1374.25"), Status: model.OfferDraft, CreatedAt: now}
	if err := offers.Create(ctx, offer, model.StatusHistoryEntry{Status: "DRAFT", Timestamp: now}); err != nil {
		t.Fatalf("create offer: %v", err)
	}

	entry := model.StatusHistoryEntry{PreviousStatus: "DRAFT", Status: "FINALIZED", Timestamp: now}
	move := &CargoTransition{CargoID: cargo.ID, Entry: model.StatusHistoryEntry{
		PreviousStatus: "pending", Status: "in_transit", Trigger: "offer_finalization", TriggerID: offer.ID.String(), Timestamp: now,
	}}
	if err := offers.Finalize(ctx, offer.ID, entry, now, move); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	gotOffer, err := offers.Get(ctx, offer.ID)
	if err != nil {
		t.Fatalf("get offer: %v", err)
	}
	if gotOffer.Status != model.OfferFinalized || gotOffer.FinalizedAt == nil {
		t.Fatalf("unexpected offer: %+v", gotOffer)
	}
	gotCargo, err := cargos.Get(ctx, cargo.ID)
	if err != nil {
		t.Fatalf("get cargo: %v", err)
	}
	if gotCargo.Status != model.CargoInTransit {
		t.Fatalf("expected cargo in transit, got %s", gotCargo.Status)
	}
	entries, err := history.List(ctx, model.KindCargo, cargo.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 || entries[1].Trigger != "offer_finalization" || entries[1].TriggerID != offer.ID.String() {
		t.Fatalf("unexpected cargo history: %+v", entries)
	}

	// Finalizing twice fails and leaves the cargo alone.
	if err := offers.Finalize(ctx, offer.ID, entry, now, move); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := cargos.Deactivate(ctx, cargo.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected in-transit cargo to stay, got %v", err)
	}
}

func TestCargoDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := NewCargoRepository(openTestDB(t))
	cargo := model.Cargo{ID: uuid.New(), BusinessEntityID: uuid.New(), CargoType: "bulk", Status: model.CargoPending, IsActive: true,
		SpecialRequirements: []string{"hazardous"}}
	if err := repo.Create(ctx, cargo, model.StatusHistoryEntry{Status: "pending", Timestamp: time.Now()}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.Get(ctx, cargo.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.SpecialRequirements) != 1 || got.SpecialRequirements[0] != "hazardous" {
		t.Fatalf("unexpected requirements: %v", got.SpecialRequirements)
	}
	if err := repo.Deactivate(ctx, cargo.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := repo.Get(ctx, cargo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after deactivation, got %v", err)
	}
}

func TestRateRepositoryReplace(t *testing.T) {
	ctx := context.Background()
	repo := NewRateRepository(openTestDB(t))
	rules := []model.RateValidationRule{
		{RateType: model.RateFuel, MinValue: dec("0.5"), MaxValue: dec("5"), CountrySpecific: true},
		{RateType: model.RateToll, MinValue: dec("0.1"), MaxValue: dec("2"), CountrySpecific: true},
	}

	seeded, err := repo.SeedRules(ctx, rules)
	if err != nil || !seeded {
		t.Fatalf("expected seed, got %v (%v)", seeded, err)
	}
	if seeded, err = repo.SeedRules(ctx, rules); err != nil || seeded {
		t.Fatalf("expected no second seed, got %v (%v)", seeded, err)
	}

	duplicated := []model.RateValidationRule{rules[0], rules[0]}
	if err := repo.ReplaceRules(ctx, duplicated); err == nil {
		t.Fatal("expected duplicate rate types to fail")
	}
	got, err := repo.Rules(ctx)
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("failed replacement must roll back, got %d rules", len(got))
	}

	if err := repo.ReplaceRules(ctx, rules[:1]); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, _ = repo.Rules(ctx); len(got) != 1 || got[0].RateType != model.RateFuel {
		t.Fatalf("unexpected rules after replace: %+v", got)
	}

	business := uuid.New()
	highway := "highway"
	overrides := []model.TollRateOverride{
		{BusinessEntityID: business, CountryCode: "DE", VehicleClass: "2", RateMultiplier: dec("0.9")},
		{BusinessEntityID: business, CountryCode: "DE", VehicleClass: "2", RouteType: &highway, RateMultiplier: dec("0.8")},
	}
	if err := repo.ReplaceOverrides(ctx, business, overrides); err != nil {
		t.Fatalf("replace overrides: %v", err)
	}
	if err := repo.ReplaceOverrides(ctx, business, overrides[:1]); err != nil {
		t.Fatalf("replace overrides: %v", err)
	}
	stored, err := repo.Overrides(ctx, business)
	if err != nil {
		t.Fatalf("overrides: %v", err)
	}
	if len(stored) != 1 || stored[0].RouteType != nil || !stored[0].RateMultiplier.Equal(dec("0.9")) {
		t.Fatalf("unexpected overrides: %+v", stored)
	}
}

func TestBusinessAndTransportRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	businesses := NewBusinessRepository(db)
	transports := NewTransportRepository(db)

	b := model.BusinessEntity{
		ID:                 uuid.New(),
		Name:               "Nordfracht",
		Certifications:     []string{"ADR"},
		OperatingCountries: []string{"DE", "PL"},
		CostOverheads:      model.CostOverheads{Admin: dec("100"), Insurance: dec("250"), Facilities: dec("150"), Other: dec("0")},
		DefaultRates:       map[string]decimal.Decimal{"fuel_rate": dec("1.6")},
		IsActive:           true,
	}
	if err := businesses.Create(ctx, b); err != nil {
		t.Fatalf("create business: %v", err)
	}
	if err := businesses.Create(ctx, b); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate, got %v", err)
	}
	got, err := businesses.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get business: %v", err)
	}
	if !got.CostOverheads.Total().Equal(dec("500")) || !got.DefaultRates["fuel_rate"].Equal(dec("1.6")) || !got.OperatesIn("PL") {
		t.Fatalf("unexpected business: %+v", got)
	}
	if err := businesses.Deactivate(ctx, b.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := businesses.Deactivate(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second deactivate, got %v", err)
	}
	if got, _ = businesses.Get(ctx, b.ID); got.IsActive {
		t.Fatal("business must be inactive")
	}

	tr := model.Transport{
		ID:               uuid.New(),
		TransportTypeID:  "semi_trailer",
		BusinessEntityID: b.ID,
		Truck:            model.TruckSpecification{FuelConsumptionEmpty: dec("0.22"), FuelConsumptionLoaded: dec("0.29"), TollClass: "2", EuroClass: "VI"},
		Driver:           model.DriverSpecification{DailyRate: dec("200"), DrivingTimeRate: dec("25"), MaxDrivingHours: dec("9"), OvertimeRateMultiplier: dec("1.5"), RequiredCertifications: []string{"ADR"}},
		IsActive:         true,
	}
	if err := transports.Create(ctx, tr); err != nil {
		t.Fatalf("create transport: %v", err)
	}
	gotT, err := transports.Get(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get transport: %v", err)
	}
	if gotT.Truck.TollClass != "2" || !gotT.Driver.DailyRate.Equal(dec("200")) || len(gotT.Driver.RequiredCertifications) != 1 {
		t.Fatalf("unexpected transport: %+v", gotT)
	}
	if _, err := transports.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
