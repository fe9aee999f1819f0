package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/pricing"
	"freight-pricing-service/internal/refdata"
	"freight-pricing-service/internal/repository"
)

type CostService struct {
	costs      *repository.CostRepository
	routes     *repository.RouteRepository
	businesses *repository.BusinessRepository
	transports *repository.TransportRepository
	refs       *refdata.Store
	mode       pricing.EuroAdjustmentMode
	log        zerolog.Logger
	now        func() time.Time
}

func NewCostService(
	costs *repository.CostRepository,
	routes *repository.RouteRepository,
	businesses *repository.BusinessRepository,
	transports *repository.TransportRepository,
	refs *refdata.Store,
	mode pricing.EuroAdjustmentMode,
	log zerolog.Logger,
) *CostService {
	return &CostService{
		costs:      costs,
		routes:     routes,
		businesses: businesses,
		transports: transports,
		refs:       refs,
		mode:       mode,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type SettingsInput struct {
	EnabledComponents []string
	Rates             map[string]decimal.Decimal
}

// SaveSettings validates the settings against the route, then stores them as
// a new version together with a freshly computed breakdown.
func (s *CostService) SaveSettings(ctx context.Context, principal model.Principal, routeID uuid.UUID, in SettingsInput) (model.CostSettings, model.CostBreakdown, error) {
	pricingInput, err := s.loadInput(ctx, principal, routeID, true)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, err
	}
	components, err := parseComponents(in.EnabledComponents)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, err
	}
	pricingInput.Settings = model.CostSettings{
		ID:                uuid.New(),
		RouteID:           routeID,
		BusinessEntityID:  pricingInput.Route.BusinessEntityID,
		EnabledComponents: components,
		Rates:             normalizeRates(in.Rates),
		CreatedAt:         s.now(),
	}
	return s.save(ctx, pricingInput)
}

// Recalculate prices the route again with its latest settings, for example
// after reference data changed.
func (s *CostService) Recalculate(ctx context.Context, principal model.Principal, routeID uuid.UUID) (model.CostSettings, model.CostBreakdown, error) {
	pricingInput, err := s.loadInput(ctx, principal, routeID, true)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, err
	}
	latest, err := s.costs.LatestSettings(ctx, routeID)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, fromRepo(err)
	}
	latest.ID = uuid.New()
	latest.CreatedAt = s.now()
	pricingInput.Settings = latest
	return s.save(ctx, pricingInput)
}

// CloneSettings copies the source route's latest settings to target. Both
// routes must share the business entity and the transport type.
func (s *CostService) CloneSettings(ctx context.Context, principal model.Principal, sourceID, targetID uuid.UUID, modifications map[string]decimal.Decimal) (model.CostSettings, model.CostBreakdown, error) {
	source, err := s.loadInput(ctx, principal, sourceID, false)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, err
	}
	target, err := s.loadInput(ctx, principal, targetID, true)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, err
	}
	if source.Route.BusinessEntityID != target.Route.BusinessEntityID {
		return model.CostSettings{}, model.CostBreakdown{}, invalid("target_route_id", "routes belong to different business entities")
	}
	sourceTransport, err := s.transports.Get(ctx, source.Route.TransportID)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, fromRepo(err)
	}
	targetTransport, err := s.transports.Get(ctx, target.Route.TransportID)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, fromRepo(err)
	}
	if sourceTransport.TransportTypeID != targetTransport.TransportTypeID {
		return model.CostSettings{}, model.CostBreakdown{}, invalid("target_route_id", "routes use different transport types")
	}

	settings, err := s.costs.LatestSettings(ctx, sourceID)
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, fromRepo(err)
	}
	rates := make(map[string]decimal.Decimal, len(settings.Rates)+len(modifications))
	for k, v := range settings.Rates {
		rates[k] = v
	}
	for k, v := range normalizeRates(modifications) {
		if v.IsNegative() {
			return model.CostSettings{}, model.CostBreakdown{}, invalid("modifications", "%s must not be negative", k)
		}
		rates[k] = v
	}

	target.Settings = model.CostSettings{
		ID:                uuid.New(),
		RouteID:           targetID,
		BusinessEntityID:  target.Route.BusinessEntityID,
		EnabledComponents: append([]model.Component(nil), settings.EnabledComponents...),
		Rates:             rates,
		CreatedAt:         s.now(),
	}
	return s.save(ctx, target)
}

func (s *CostService) save(ctx context.Context, in pricing.CostInput) (model.CostSettings, model.CostBreakdown, error) {
	// One snapshot for validation and calculation so a concurrent rule
	// swap cannot split them.
	calc := pricing.NewCalculator(s.refs.Snapshot(), s.mode)
	if err := calc.CheckSettings(in); err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, err
	}

	settings, breakdown, err := s.costs.SaveVersion(ctx, in.Settings, func(versioned model.CostSettings) (model.CostBreakdown, error) {
		in.Settings = versioned
		return calc.Calculate(in)
	})
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, fromRepo(err)
	}
	s.log.Debug().
		Str("route_id", settings.RouteID.String()).
		Int("version", settings.Version).
		Str("total_cost", breakdown.TotalCost.String()).
		Msg("route costs calculated")
	return settings, breakdown, nil
}

func (s *CostService) LatestSettings(ctx context.Context, principal model.Principal, routeID uuid.UUID) (model.CostSettings, error) {
	if _, err := s.loadRoute(ctx, principal, routeID, false); err != nil {
		return model.CostSettings{}, err
	}
	settings, err := s.costs.LatestSettings(ctx, routeID)
	if err != nil {
		return model.CostSettings{}, fromRepo(err)
	}
	return settings, nil
}

// SettingsVersions lists every settings version of the route, oldest first.
func (s *CostService) SettingsVersions(ctx context.Context, principal model.Principal, routeID uuid.UUID) ([]model.CostSettings, error) {
	if _, err := s.loadRoute(ctx, principal, routeID, false); err != nil {
		return nil, err
	}
	versions, err := s.costs.ListSettings(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (s *CostService) LatestBreakdown(ctx context.Context, principal model.Principal, routeID uuid.UUID) (model.CostBreakdown, error) {
	if _, err := s.loadRoute(ctx, principal, routeID, false); err != nil {
		return model.CostBreakdown{}, err
	}
	breakdown, err := s.costs.LatestBreakdown(ctx, routeID)
	if err != nil {
		return model.CostBreakdown{}, fromRepo(err)
	}
	return breakdown, nil
}

// ResolveTollRate exposes the resolver against the current reference snapshot.
func (s *CostService) ResolveTollRate(principal model.Principal, q pricing.TollQuery) (model.TollRate, error) {
	if q.BusinessEntityID != uuid.Nil && !principal.CanAccess(q.BusinessEntityID) {
		return model.TollRate{}, ErrPermissionDenied
	}
	if strings.TrimSpace(q.CountryCode) == "" {
		return model.TollRate{}, invalid("country_code", "is required")
	}
	return pricing.ResolveTollRate(s.refs.Snapshot(), q), nil
}

// ValidateRates checks proposed rates for a business entity without saving them.
func (s *CostService) ValidateRates(ctx context.Context, principal model.Principal, businessID uuid.UUID, rates map[string]decimal.Decimal) error {
	if !principal.CanAccess(businessID) {
		return ErrPermissionDenied
	}
	business, err := s.businesses.Get(ctx, businessID)
	if err != nil {
		return fromRepo(err)
	}
	return pricing.ValidateRates(s.refs.Snapshot(), normalizeRates(rates), business)
}

func (s *CostService) DriverCost(hours decimal.Decimal, spec model.DriverSpecification) (model.DriverCost, error) {
	if hours.IsNegative() {
		return model.DriverCost{}, invalid("duration_hours", "must not be negative")
	}
	return pricing.CalculateDriverCost(hours, spec), nil
}

func (s *CostService) loadRoute(ctx context.Context, principal model.Principal, routeID uuid.UUID, write bool) (model.Route, error) {
	rt, err := s.routes.Get(ctx, routeID)
	if err != nil {
		return model.Route{}, fromRepo(err)
	}
	if !principal.CanAccess(rt.BusinessEntityID) || (write && !principal.CanWrite()) {
		return model.Route{}, ErrPermissionDenied
	}
	return rt, nil
}

func (s *CostService) loadInput(ctx context.Context, principal model.Principal, routeID uuid.UUID, write bool) (pricing.CostInput, error) {
	rt, err := s.loadRoute(ctx, principal, routeID, write)
	if err != nil {
		return pricing.CostInput{}, err
	}
	business, err := s.businesses.Get(ctx, rt.BusinessEntityID)
	if err != nil {
		return pricing.CostInput{}, fromRepo(err)
	}
	transport, err := s.transports.Get(ctx, rt.TransportID)
	if err != nil {
		return pricing.CostInput{}, fromRepo(err)
	}
	return pricing.CostInput{
		Route:    rt,
		Truck:    transport.Truck,
		Driver:   transport.Driver,
		Business: business,
	}, nil
}

func parseComponents(raw []string) ([]model.Component, error) {
	seen := make(map[model.Component]struct{}, len(raw))
	result := make([]model.Component, 0, len(raw))
	for _, r := range raw {
		c, ok := model.ParseComponent(strings.ToLower(strings.TrimSpace(r)))
		if !ok {
			return nil, &pricing.UnknownComponentError{Component: r}
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

// normalizeRates upper-cases country suffixes so "fuel_rate_de" and
// "fuel_rate_DE" name the same rate.
func normalizeRates(rates map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		key := strings.TrimSpace(k)
		if idx := strings.LastIndex(key, "_"); idx > 0 && len(key)-idx-1 == 2 {
			key = key[:idx+1] + strings.ToUpper(key[idx+1:])
		}
		out[key] = v
	}
	return out
}
