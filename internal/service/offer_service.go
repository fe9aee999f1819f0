package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/lifecycle"
	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/repository"
)

// TriggerOfferFinalization marks cargo transitions caused by finalizing an offer.
const TriggerOfferFinalization = "offer_finalization"

var hundred = decimal.NewFromInt(100)

type OfferService struct {
	offers        *repository.OfferRepository
	costs         *repository.CostRepository
	routes        *repository.RouteRepository
	cargos        *repository.CargoRepository
	defaultMargin decimal.Decimal
	log           zerolog.Logger
	now           func() time.Time
}

func NewOfferService(
	offers *repository.OfferRepository,
	costs *repository.CostRepository,
	routes *repository.RouteRepository,
	cargos *repository.CargoRepository,
	defaultMargin decimal.Decimal,
	log zerolog.Logger,
) *OfferService {
	return &OfferService{
		offers:        offers,
		costs:         costs,
		routes:        routes,
		cargos:        cargos,
		defaultMargin: defaultMargin,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Create prices a draft offer from the route's latest breakdown. A nil margin
// uses the configured default.
func (s *OfferService) Create(ctx context.Context, principal model.Principal, routeID uuid.UUID, margin *decimal.Decimal) (model.Offer, error) {
	rt, err := s.routes.Get(ctx, routeID)
	if err != nil {
		return model.Offer{}, fromRepo(err)
	}
	if !principal.CanWrite() || !principal.CanAccess(rt.BusinessEntityID) {
		return model.Offer{}, ErrPermissionDenied
	}

	m := s.defaultMargin
	if margin != nil {
		m = *margin
	}
	if m.IsNegative() || m.GreaterThan(hundred) {
		return model.Offer{}, invalid("margin_percentage", "must be within [0, 100]")
	}

	breakdown, err := s.costs.LatestBreakdown(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Offer{}, invalid("route_id", "route has no cost breakdown yet")
		}
		return model.Offer{}, err
	}

	now := s.now()
	offer := model.Offer{
		ID:               uuid.New(),
		RouteID:          routeID,
		CostBreakdownID:  breakdown.ID,
		MarginPercentage: m,
		FinalPrice:       FinalPrice(breakdown.TotalCost, m),
		Status:           model.OfferDraft,
		CreatedAt:        now,
	}
	initial := model.StatusHistoryEntry{Status: string(model.OfferDraft), Comment: "offer created", Timestamp: now}
	if err := s.offers.Create(ctx, offer, initial); err != nil {
		return model.Offer{}, fromRepo(err)
	}
	return offer, nil
}

// FinalPrice applies a percentage margin on top of the total cost.
func FinalPrice(total, marginPercent decimal.Decimal) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(1).Add(marginPercent.Div(hundred)))
}

func (s *OfferService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (model.Offer, error) {
	offer, err := s.offers.Get(ctx, id)
	if err != nil {
		return model.Offer{}, fromRepo(err)
	}
	rt, err := s.routes.Get(ctx, offer.RouteID)
	if err != nil {
		return model.Offer{}, fromRepo(err)
	}
	if !principal.CanAccess(rt.BusinessEntityID) {
		return model.Offer{}, ErrPermissionDenied
	}
	return offer, nil
}

// Breakdown returns the cost breakdown the offer was priced from, which may be
// older than the route's latest breakdown.
func (s *OfferService) Breakdown(ctx context.Context, principal model.Principal, id uuid.UUID) (model.CostBreakdown, error) {
	offer, err := s.Get(ctx, principal, id)
	if err != nil {
		return model.CostBreakdown{}, err
	}
	breakdown, err := s.costs.GetBreakdown(ctx, offer.CostBreakdownID)
	if err != nil {
		return model.CostBreakdown{}, fromRepo(err)
	}
	return breakdown, nil
}

// Finalize moves the offer to FINALIZED. Pending cargo on the route goes in
// transit within the same transaction.
func (s *OfferService) Finalize(ctx context.Context, principal model.Principal, id uuid.UUID, comment string) (model.Offer, error) {
	offer, err := s.offers.Get(ctx, id)
	if err != nil {
		return model.Offer{}, fromRepo(err)
	}
	rt, err := s.routes.Get(ctx, offer.RouteID)
	if err != nil {
		return model.Offer{}, fromRepo(err)
	}
	if !principal.CanWrite() || !principal.CanAccess(rt.BusinessEntityID) {
		return model.Offer{}, ErrPermissionDenied
	}

	now := s.now()
	entry, err := lifecycle.Offer.Transition(offer.Status, model.OfferFinalized, comment, now)
	if err != nil {
		return model.Offer{}, err
	}

	var move *repository.CargoTransition
	if rt.CargoID != nil {
		cargo, err := s.cargos.Get(ctx, *rt.CargoID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return model.Offer{}, err
		case cargo.Status == model.CargoPending:
			cargoEntry, err := lifecycle.Cargo.Transition(cargo.Status, model.CargoInTransit, "offer finalized", now)
			if err != nil {
				return model.Offer{}, err
			}
			cargoEntry.Trigger = TriggerOfferFinalization
			cargoEntry.TriggerID = offer.ID.String()
			move = &repository.CargoTransition{CargoID: cargo.ID, Entry: cargoEntry}
		}
	}

	if err := s.offers.Finalize(ctx, id, entry, now, move); err != nil {
		return model.Offer{}, fromRepo(err)
	}
	offer.Status = model.OfferFinalized
	offer.FinalizedAt = &now
	s.log.Info().Str("offer_id", id.String()).Bool("cargo_moved", move != nil).Msg("offer finalized")
	return offer, nil
}
