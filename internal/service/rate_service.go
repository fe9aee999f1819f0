package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/refdata"
	"freight-pricing-service/internal/repository"
)

// RateService administers the reference data shared by every calculation:
// validation rules and per-business toll overrides.
type RateService struct {
	rates      *repository.RateRepository
	businesses *repository.BusinessRepository
	refs       *refdata.Store
	log        zerolog.Logger
}

func NewRateService(rates *repository.RateRepository, businesses *repository.BusinessRepository, refs *refdata.Store, log zerolog.Logger) *RateService {
	return &RateService{rates: rates, businesses: businesses, refs: refs, log: log}
}

// LoadReferenceData seeds the default rules on an empty database and publishes
// the persisted rules and overrides to the store.
func (s *RateService) LoadReferenceData(ctx context.Context) error {
	seeded, err := s.rates.SeedRules(ctx, refdata.DefaultRules())
	if err != nil {
		return err
	}
	if seeded {
		s.log.Info().Msg("default rate validation rules seeded")
	}

	rules, err := s.rates.Rules(ctx)
	if err != nil {
		return err
	}
	if err := s.refs.ReplaceRules(rules); err != nil {
		return fmt.Errorf("publish rate rules: %w", err)
	}

	overrides, err := s.rates.AllOverrides(ctx)
	if err != nil {
		return err
	}
	if err := s.refs.LoadOverrides(overrides); err != nil {
		return fmt.Errorf("publish toll overrides: %w", err)
	}
	return nil
}

func (s *RateService) Rules() []model.RateValidationRule {
	return s.refs.Snapshot().Rules()
}

func (s *RateService) ReplaceRules(ctx context.Context, principal model.Principal, rules []model.RateValidationRule) ([]model.RateValidationRule, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	for i := range rules {
		rules[i].RateType = model.RateType(strings.TrimSpace(string(rules[i].RateType)))
	}
	if err := refdata.ValidateRules(rules); err != nil {
		return nil, invalid("rules", "%v", err)
	}
	if err := s.rates.ReplaceRules(ctx, rules); err != nil {
		return nil, fromRepo(err)
	}
	stored, err := s.rates.Rules(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.refs.ReplaceRules(stored); err != nil {
		s.log.Error().Err(err).Msg("committed rate rules could not be published")
		return nil, fmt.Errorf("publish rate rules: %w", err)
	}
	s.log.Info().Int("rules", len(stored)).Msg("rate validation rules replaced")
	return s.refs.Snapshot().Rules(), nil
}

func (s *RateService) Overrides(principal model.Principal, businessID uuid.UUID) ([]model.TollRateOverride, error) {
	if !principal.CanAccess(businessID) {
		return nil, ErrPermissionDenied
	}
	return s.refs.Snapshot().Overrides(businessID), nil
}

func (s *RateService) ReplaceOverrides(ctx context.Context, principal model.Principal, businessID uuid.UUID, overrides []model.TollRateOverride) ([]model.TollRateOverride, error) {
	if !principal.CanWrite() || !principal.CanAccess(businessID) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.businesses.Get(ctx, businessID); err != nil {
		return nil, fromRepo(err)
	}
	for i := range overrides {
		overrides[i].ID = uuid.New()
		overrides[i].BusinessEntityID = businessID
		overrides[i].CountryCode = strings.ToUpper(strings.TrimSpace(overrides[i].CountryCode))
		if rt := overrides[i].RouteType; rt != nil && strings.TrimSpace(*rt) == "" {
			overrides[i].RouteType = nil
		}
	}
	if err := refdata.ValidateOverrides(overrides); err != nil {
		return nil, invalid("overrides", "%v", err)
	}
	if err := s.rates.ReplaceOverrides(ctx, businessID, overrides); err != nil {
		return nil, fromRepo(err)
	}
	stored, err := s.rates.Overrides(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if err := s.refs.ReplaceOverrides(businessID, stored); err != nil {
		s.log.Error().Err(err).Str("business_entity_id", businessID.String()).Msg("committed toll overrides could not be published")
		return nil, fmt.Errorf("publish toll overrides: %w", err)
	}
	return s.refs.Snapshot().Overrides(businessID), nil
}
