package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/lifecycle"
	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/pricing"
	"freight-pricing-service/internal/refdata"
	"freight-pricing-service/internal/repository"
)

type RouteService struct {
	routes     *repository.RouteRepository
	businesses *repository.BusinessRepository
	transports *repository.TransportRepository
	cargos     *repository.CargoRepository
	history    *repository.HistoryRepository
	refs       *refdata.Store
	log        zerolog.Logger
	now        func() time.Time
}

func NewRouteService(
	routes *repository.RouteRepository,
	businesses *repository.BusinessRepository,
	transports *repository.TransportRepository,
	cargos *repository.CargoRepository,
	history *repository.HistoryRepository,
	refs *refdata.Store,
	log zerolog.Logger,
) *RouteService {
	return &RouteService{
		routes:     routes,
		businesses: businesses,
		transports: transports,
		cargos:     cargos,
		history:    history,
		refs:       refs,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateRouteInput carries a route already decomposed into country segments.
type CreateRouteInput struct {
	BusinessEntityID uuid.UUID
	TransportID      uuid.UUID
	CargoID          *uuid.UUID
	Origin           model.Location
	Destination      model.Location
	RouteType        string
	PickupTime       time.Time
	DeliveryTime     time.Time
	EmptyDriving     *model.EmptyDriving
	CountrySegments  []model.CountrySegment
	TimelineEvents   []model.TimelineEvent
}

func (s *RouteService) Create(ctx context.Context, principal model.Principal, in CreateRouteInput) (model.Route, error) {
	if !principal.CanWrite() || !principal.CanAccess(in.BusinessEntityID) {
		return model.Route{}, ErrPermissionDenied
	}
	if err := validateRouteInput(in); err != nil {
		return model.Route{}, err
	}

	transport, err := s.transports.Get(ctx, in.TransportID)
	if err != nil {
		return model.Route{}, fromRepo(err)
	}
	if transport.BusinessEntityID != in.BusinessEntityID {
		return model.Route{}, invalid("transport_id", "transport belongs to another business entity")
	}
	if in.CargoID != nil {
		cargo, err := s.cargos.Get(ctx, *in.CargoID)
		if err != nil {
			return model.Route{}, fromRepo(err)
		}
		if cargo.BusinessEntityID != in.BusinessEntityID {
			return model.Route{}, invalid("cargo_id", "cargo belongs to another business entity")
		}
	}

	now := s.now()
	rt := model.Route{
		ID:               uuid.New(),
		TransportID:      in.TransportID,
		BusinessEntityID: in.BusinessEntityID,
		CargoID:          in.CargoID,
		Origin:           in.Origin,
		Destination:      in.Destination,
		RouteType:        strings.TrimSpace(in.RouteType),
		PickupTime:       in.PickupTime.UTC(),
		DeliveryTime:     in.DeliveryTime.UTC(),
		Status:           model.RouteDraft,
		EmptyDriving:     in.EmptyDriving,
		CountrySegments:  make([]model.CountrySegment, 0, len(in.CountrySegments)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	total := decimal.Zero
	for _, seg := range in.CountrySegments {
		seg.ID = uuid.New()
		seg.RouteID = rt.ID
		seg.CountryCode = strings.ToUpper(seg.CountryCode)
		if seg.SegmentType == "" {
			seg.SegmentType = model.SegmentTypeRoute
		}
		total = total.Add(seg.DistanceKM)
		rt.CountrySegments = append(rt.CountrySegments, seg)
	}
	rt.TotalDistanceKM = total
	rt.TotalDurationHours = rt.DrivingHours()
	if rt.EmptyDriving != nil {
		rt.EmptyDriving.ID = uuid.New()
		rt.EmptyDriving.RouteID = rt.ID
	}

	if len(in.TimelineEvents) == 0 {
		rt.TimelineEvents = defaultTimeline(rt)
	} else {
		for _, ev := range in.TimelineEvents {
			ev.ID = uuid.New()
			ev.RouteID = rt.ID
			ev.Type, _ = model.ParseEventType(strings.ToLower(strings.TrimSpace(string(ev.Type))))
			if ev.Status == "" {
				ev.Status = "pending"
			}
			rt.TimelineEvents = append(rt.TimelineEvents, ev)
		}
	}
	if !pricing.TimelineOrderValid(rt.TimelineEvents) {
		return model.Route{}, invalid("timeline_events", "event_order must be strictly increasing with non-decreasing planned_time")
	}

	initial := model.StatusHistoryEntry{Status: string(model.RouteDraft), Comment: "route created", Timestamp: now}
	if err := s.routes.Create(ctx, rt, initial); err != nil {
		return model.Route{}, fromRepo(err)
	}
	s.log.Debug().Str("route_id", rt.ID.String()).Int("segments", len(rt.CountrySegments)).Msg("route created")
	return rt, nil
}

func validateRouteInput(in CreateRouteInput) error {
	if in.PickupTime.IsZero() || in.DeliveryTime.IsZero() {
		return invalid("pickup_time", "pickup_time and delivery_time are required")
	}
	if !in.DeliveryTime.After(in.PickupTime) {
		return invalid("delivery_time", "must be after pickup_time")
	}
	for _, seg := range in.CountrySegments {
		if !isCountryCode(strings.ToUpper(seg.CountryCode)) {
			return invalid("country_segments", "%q is not an ISO-2 country code", seg.CountryCode)
		}
		if seg.DistanceKM.IsNegative() || seg.DurationHours.IsNegative() {
			return invalid("country_segments", "distance and duration must not be negative")
		}
	}
	if !pricing.SegmentOrderValid(in.CountrySegments) {
		return invalid("country_segments", "segment_order must be 0..n-1 without gaps or duplicates")
	}
	for _, ev := range in.TimelineEvents {
		if _, ok := model.ParseEventType(strings.ToLower(strings.TrimSpace(string(ev.Type)))); !ok {
			return invalid("timeline_events", "unknown event type %q, expected pickup, rest or delivery", ev.Type)
		}
		if ev.DurationHours.IsNegative() {
			return invalid("timeline_events", "duration_hours must not be negative")
		}
	}
	if in.EmptyDriving != nil && (in.EmptyDriving.DistanceKM.IsNegative() || in.EmptyDriving.DurationHours.IsNegative()) {
		return invalid("empty_driving", "distance and duration must not be negative")
	}
	return nil
}

// defaultTimeline plans pickup, a midpoint rest and delivery, one hour each.
func defaultTimeline(rt model.Route) []model.TimelineEvent {
	one := decimal.NewFromInt(1)
	mid := rt.PickupTime.Add(rt.DeliveryTime.Sub(rt.PickupTime) / 2)
	origin, destination := rt.Origin, rt.Destination

	events := []model.TimelineEvent{
		{Type: model.EventPickup, Location: &origin, PlannedTime: rt.PickupTime, EventOrder: 1},
		{Type: model.EventRest, PlannedTime: mid, EventOrder: 2},
		{Type: model.EventDelivery, Location: &destination, PlannedTime: rt.DeliveryTime, EventOrder: 3},
	}
	for i := range events {
		events[i].ID = uuid.New()
		events[i].RouteID = rt.ID
		events[i].DurationHours = one
		events[i].Status = "pending"
	}
	return events
}

func (s *RouteService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (model.Route, error) {
	rt, err := s.routes.Get(ctx, id)
	if err != nil {
		return model.Route{}, fromRepo(err)
	}
	if !principal.CanAccess(rt.BusinessEntityID) {
		return model.Route{}, ErrPermissionDenied
	}
	return rt, nil
}

func (s *RouteService) List(ctx context.Context, principal model.Principal, filter repository.RouteFilter) ([]model.Route, error) {
	if !principal.IsAdmin() {
		if principal.BusinessEntityID == nil {
			return nil, ErrPermissionDenied
		}
		filter.BusinessEntityID = principal.BusinessEntityID
	}
	routes, err := s.routes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *RouteService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	rt, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	if rt.Status == model.RouteInProgress {
		return invalid("status", "a route in progress cannot be deleted")
	}
	return fromRepo(s.routes.Delete(ctx, id))
}

// ValidateFeasibility recomputes and persists the route's feasibility.
func (s *RouteService) ValidateFeasibility(ctx context.Context, principal model.Principal, id uuid.UUID) (model.FeasibilityResult, error) {
	rt, err := s.Get(ctx, principal, id)
	if err != nil {
		return model.FeasibilityResult{}, err
	}
	business, err := s.businesses.Get(ctx, rt.BusinessEntityID)
	if err != nil {
		return model.FeasibilityResult{}, fromRepo(err)
	}
	transport, err := s.transports.Get(ctx, rt.TransportID)
	if err != nil {
		return model.FeasibilityResult{}, fromRepo(err)
	}
	var requirements []string
	if rt.CargoID != nil {
		cargo, err := s.cargos.Get(ctx, *rt.CargoID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return model.FeasibilityResult{}, err
		}
		requirements = cargo.SpecialRequirements
	}

	result := pricing.ValidateFeasibility(s.refs.Snapshot(), pricing.FeasibilityInput{
		Route:               rt,
		Business:            business,
		CargoRequirements:   requirements,
		Driver:              transport.Driver,
		ValidationTimestamp: s.now(),
	})
	if err := s.routes.SaveFeasibility(ctx, id, result); err != nil {
		return model.FeasibilityResult{}, fromRepo(err)
	}
	s.log.Debug().Str("route_id", id.String()).Bool("feasible", result.IsFeasible).Msg("route feasibility validated")
	return result, nil
}

func (s *RouteService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, requested model.RouteStatus, comment string) (model.Route, error) {
	rt, err := s.Get(ctx, principal, id)
	if err != nil {
		return model.Route{}, err
	}
	if !principal.CanWrite() {
		return model.Route{}, ErrPermissionDenied
	}
	if !lifecycle.Route.Known(requested) {
		return model.Route{}, invalid("status", "unknown route status %q", requested)
	}
	entry, err := lifecycle.Route.Transition(rt.Status, requested, comment, s.now())
	if err != nil {
		return model.Route{}, err
	}
	if err := s.routes.UpdateStatus(ctx, id, entry); err != nil {
		return model.Route{}, fromRepo(err)
	}
	rt.Status = requested
	rt.UpdatedAt = entry.Timestamp
	return rt, nil
}

func (s *RouteService) History(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.StatusHistoryEntry, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	return s.history.List(ctx, model.KindRoute, id)
}
