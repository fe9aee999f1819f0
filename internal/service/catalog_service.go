package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/pricing"
	"freight-pricing-service/internal/refdata"
	"freight-pricing-service/internal/repository"
)

// CatalogService manages the business entities and transports routes refer to.
type CatalogService struct {
	businesses *repository.BusinessRepository
	transports *repository.TransportRepository
	refs       *refdata.Store
	log        zerolog.Logger
}

func NewCatalogService(businesses *repository.BusinessRepository, transports *repository.TransportRepository, refs *refdata.Store, log zerolog.Logger) *CatalogService {
	return &CatalogService{businesses: businesses, transports: transports, refs: refs, log: log}
}

func (s *CatalogService) CreateBusiness(ctx context.Context, principal model.Principal, b model.BusinessEntity) (model.BusinessEntity, error) {
	if !principal.IsAdmin() {
		return model.BusinessEntity{}, ErrPermissionDenied
	}
	if strings.TrimSpace(b.Name) == "" {
		return model.BusinessEntity{}, invalid("name", "is required")
	}
	for i, c := range b.OperatingCountries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if !isCountryCode(c) {
			return model.BusinessEntity{}, invalid("operating_countries", "%q is not an ISO-2 country code", b.OperatingCountries[i])
		}
		b.OperatingCountries[i] = c
	}
	o := b.CostOverheads
	if o.Admin.IsNegative() || o.Insurance.IsNegative() || o.Facilities.IsNegative() || o.Other.IsNegative() {
		return model.BusinessEntity{}, invalid("cost_overheads", "must not be negative")
	}
	if len(b.DefaultRates) > 0 {
		b.DefaultRates = normalizeRates(b.DefaultRates)
		if err := pricing.ValidateRates(s.refs.Snapshot(), b.DefaultRates, b); err != nil {
			return model.BusinessEntity{}, err
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.IsActive = true
	if err := s.businesses.Create(ctx, b); err != nil {
		return model.BusinessEntity{}, fromRepo(err)
	}
	s.log.Info().Str("business_entity_id", b.ID.String()).Msg("business entity created")
	return b, nil
}

func (s *CatalogService) GetBusiness(ctx context.Context, principal model.Principal, id uuid.UUID) (model.BusinessEntity, error) {
	if !principal.CanAccess(id) {
		return model.BusinessEntity{}, ErrPermissionDenied
	}
	b, err := s.businesses.Get(ctx, id)
	if err != nil {
		return model.BusinessEntity{}, fromRepo(err)
	}
	return b, nil
}

func (s *CatalogService) DeactivateBusiness(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.businesses.Deactivate(ctx, id); err != nil {
		return fromRepo(err)
	}
	s.log.Info().Str("business_entity_id", id.String()).Msg("business entity deactivated")
	return nil
}

func (s *CatalogService) CreateTransport(ctx context.Context, principal model.Principal, t model.Transport) (model.Transport, error) {
	if !principal.CanWrite() || !principal.CanAccess(t.BusinessEntityID) {
		return model.Transport{}, ErrPermissionDenied
	}
	if strings.TrimSpace(t.TransportTypeID) == "" {
		return model.Transport{}, invalid("transport_type_id", "is required")
	}
	if _, ok := model.ParseTollClass(t.Truck.TollClass); !ok && t.Truck.TollClass != "" {
		return model.Transport{}, invalid("truck_specifications.toll_class", "must be 1-4")
	}
	if _, ok := model.ParseEuroClass(t.Truck.EuroClass); !ok && t.Truck.EuroClass != "" {
		return model.Transport{}, invalid("truck_specifications.euro_class", "must be III-VI")
	}
	if _, err := s.businesses.Get(ctx, t.BusinessEntityID); err != nil {
		return model.Transport{}, fromRepo(err)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.IsActive = true
	if err := s.transports.Create(ctx, t); err != nil {
		return model.Transport{}, fromRepo(err)
	}
	return t, nil
}

func (s *CatalogService) GetTransport(ctx context.Context, principal model.Principal, id uuid.UUID) (model.Transport, error) {
	t, err := s.transports.Get(ctx, id)
	if err != nil {
		return model.Transport{}, fromRepo(err)
	}
	if !principal.CanAccess(t.BusinessEntityID) {
		return model.Transport{}, ErrPermissionDenied
	}
	return t, nil
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
