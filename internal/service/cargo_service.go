package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"freight-pricing-service/internal/lifecycle"
	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/repository"
)

type CargoService struct {
	cargos     *repository.CargoRepository
	businesses *repository.BusinessRepository
	history    *repository.HistoryRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewCargoService(cargos *repository.CargoRepository, businesses *repository.BusinessRepository, history *repository.HistoryRepository, log zerolog.Logger) *CargoService {
	return &CargoService{
		cargos:     cargos,
		businesses: businesses,
		history:    history,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *CargoService) Create(ctx context.Context, principal model.Principal, c model.Cargo) (model.Cargo, error) {
	if !principal.CanWrite() || !principal.CanAccess(c.BusinessEntityID) {
		return model.Cargo{}, ErrPermissionDenied
	}
	if strings.TrimSpace(c.CargoType) == "" {
		return model.Cargo{}, invalid("cargo_type", "is required")
	}
	if !c.Weight.IsPositive() {
		return model.Cargo{}, invalid("weight", "must be positive")
	}
	if c.Volume.IsNegative() || c.Value.IsNegative() {
		return model.Cargo{}, invalid("volume", "volume and value must not be negative")
	}
	if _, err := s.businesses.Get(ctx, c.BusinessEntityID); err != nil {
		return model.Cargo{}, fromRepo(err)
	}

	now := s.now()
	c.ID = uuid.New()
	c.Status = model.CargoPending
	c.IsActive = true
	c.CreatedAt = now
	c.UpdatedAt = now
	for i, req := range c.SpecialRequirements {
		c.SpecialRequirements[i] = strings.ToLower(strings.TrimSpace(req))
	}

	initial := model.StatusHistoryEntry{Status: string(model.CargoPending), Comment: "cargo created", Timestamp: now}
	if err := s.cargos.Create(ctx, c, initial); err != nil {
		return model.Cargo{}, fromRepo(err)
	}
	return c, nil
}

func (s *CargoService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (model.Cargo, error) {
	c, err := s.cargos.Get(ctx, id)
	if err != nil {
		return model.Cargo{}, fromRepo(err)
	}
	if !principal.CanAccess(c.BusinessEntityID) {
		return model.Cargo{}, ErrPermissionDenied
	}
	return c, nil
}

func (s *CargoService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, requested model.CargoStatus, comment string) (model.Cargo, error) {
	c, err := s.Get(ctx, principal, id)
	if err != nil {
		return model.Cargo{}, err
	}
	if !principal.CanWrite() {
		return model.Cargo{}, ErrPermissionDenied
	}
	if !lifecycle.Cargo.Known(requested) {
		return model.Cargo{}, invalid("status", "unknown cargo status %q", requested)
	}
	entry, err := lifecycle.Cargo.Transition(c.Status, requested, comment, s.now())
	if err != nil {
		return model.Cargo{}, err
	}
	entry.Trigger = "manual"
	if err := s.cargos.UpdateStatus(ctx, id, entry); err != nil {
		return model.Cargo{}, fromRepo(err)
	}
	c.Status = requested
	c.UpdatedAt = entry.Timestamp
	return c, nil
}

// Delete soft-deletes cargo; cargo in transit stays.
func (s *CargoService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	c, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	if c.Status == model.CargoInTransit {
		return invalid("status", "cargo in transit cannot be deleted")
	}
	if err := s.cargos.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return invalid("status", "cargo in transit cannot be deleted")
		}
		return fromRepo(err)
	}
	return nil
}

func (s *CargoService) History(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.StatusHistoryEntry, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	return s.history.List(ctx, model.KindCargo, id)
}
