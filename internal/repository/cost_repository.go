package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

type CostRepository struct {
	db *gorm.DB
}

func NewCostRepository(db *gorm.DB) *CostRepository {
	return &CostRepository{db: db}
}

// ComputeFunc derives a breakdown from the settings version being saved.
type ComputeFunc func(settings model.CostSettings) (model.CostBreakdown, error)

// SaveVersion appends a settings version and the breakdown computed from it in
// one transaction, so the latest breakdown always belongs to the latest
// settings. A concurrent save for the same route yields ErrConflict.
func (r *CostRepository) SaveVersion(ctx context.Context, settings model.CostSettings, compute ComputeFunc) (model.CostSettings, model.CostBreakdown, error) {
	var breakdown model.CostBreakdown

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current int
		if err := tx.Model(&costSettingsRecord{}).
			Where("route_id = ?", settings.RouteID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&current).Error; err != nil {
			return fmt.Errorf("read settings version: %w", err)
		}
		settings.Version = current + 1

		rec := newCostSettingsRecord(settings)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert cost settings: %w", translate(err))
		}

		var err error
		breakdown, err = compute(settings)
		if err != nil {
			return err
		}
		breakdown.SettingsID = settings.ID

		brec := newCostBreakdownRecord(breakdown)
		if err := tx.Create(&brec).Error; err != nil {
			return fmt.Errorf("insert cost breakdown: %w", translate(err))
		}
		return nil
	})
	if err != nil {
		return model.CostSettings{}, model.CostBreakdown{}, err
	}
	return settings, breakdown, nil
}

func (r *CostRepository) LatestSettings(ctx context.Context, routeID uuid.UUID) (model.CostSettings, error) {
	var rec costSettingsRecord
	err := r.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("version DESC").
		First(&rec).Error
	if err != nil {
		return model.CostSettings{}, fmt.Errorf("latest cost settings for route %s: %w", routeID, translate(err))
	}
	return rec.toModel(), nil
}

// LatestBreakdown returns the breakdown tied to the newest settings version.
func (r *CostRepository) LatestBreakdown(ctx context.Context, routeID uuid.UUID) (model.CostBreakdown, error) {
	settings, err := r.LatestSettings(ctx, routeID)
	if err != nil {
		return model.CostBreakdown{}, err
	}
	var rec costBreakdownRecord
	if err := r.db.WithContext(ctx).First(&rec, "settings_id = ?", settings.ID).Error; err != nil {
		return model.CostBreakdown{}, fmt.Errorf("cost breakdown for settings %s: %w", settings.ID, translate(err))
	}
	return rec.toModel(), nil
}

func (r *CostRepository) GetBreakdown(ctx context.Context, id uuid.UUID) (model.CostBreakdown, error) {
	var rec costBreakdownRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return model.CostBreakdown{}, fmt.Errorf("get cost breakdown %s: %w", id, translate(err))
	}
	return rec.toModel(), nil
}

func (r *CostRepository) ListSettings(ctx context.Context, routeID uuid.UUID) ([]model.CostSettings, error) {
	var rows []costSettingsRecord
	if err := r.db.WithContext(ctx).Where("route_id = ?", routeID).Order("version ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list cost settings: %w", err)
	}
	result := make([]model.CostSettings, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}
