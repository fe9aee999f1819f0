package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

type CargoRepository struct {
	db *gorm.DB
}

func NewCargoRepository(db *gorm.DB) *CargoRepository {
	return &CargoRepository{db: db}
}

func (r *CargoRepository) Create(ctx context.Context, c model.Cargo, initial model.StatusHistoryEntry) error {
	rec := newCargoRecord(c)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create cargo: %w", translate(err))
		}
		initial.EntityKind = model.KindCargo
		initial.EntityID = c.ID
		return appendHistory(tx, initial)
	})
}

// Get returns active cargo only; soft-deleted rows read as ErrNotFound.
func (r *CargoRepository) Get(ctx context.Context, id uuid.UUID) (model.Cargo, error) {
	var rec cargoRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return model.Cargo{}, fmt.Errorf("get cargo %s: %w", id, translate(err))
	}
	return rec.toModel(), nil
}

func (r *CargoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, entry model.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionCargo(tx, id, entry)
	})
}

func transitionCargo(tx *gorm.DB, id uuid.UUID, entry model.StatusHistoryEntry) error {
	if err := updateStatus(tx, "cargos", id, entry.PreviousStatus, entry.Status, map[string]any{"updated_at": entry.Timestamp}); err != nil {
		return fmt.Errorf("update cargo status: %w", err)
	}
	entry.EntityKind = model.KindCargo
	entry.EntityID = id
	return appendHistory(tx, entry)
}

// Deactivate soft-deletes cargo that is not in transit.
func (r *CargoRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&cargoRecord{}).
		Where("id = ? AND is_active = ? AND status <> ?", id, true, string(model.CargoInTransit)).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate cargo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deactivate cargo %s: %w", id, ErrConflict)
	}
	return nil
}
