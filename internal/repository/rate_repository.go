package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

// RateRepository persists validation rules and toll overrides. Replacements
// are whole-set and transactional.
type RateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) *RateRepository {
	return &RateRepository{db: db}
}

func (r *RateRepository) Rules(ctx context.Context) ([]model.RateValidationRule, error) {
	var rows []rateRuleRecord
	if err := r.db.WithContext(ctx).Order("rate_type ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load rate rules: %w", err)
	}
	result := make([]model.RateValidationRule, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}

// SeedRules inserts rules only when the table is empty and reports whether it did.
func (r *RateRepository) SeedRules(ctx context.Context, rules []model.RateValidationRule) (bool, error) {
	seeded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&rateRuleRecord{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := insertRules(tx, rules); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed rate rules: %w", err)
	}
	return seeded, nil
}

// ReplaceRules swaps the full rule set in one transaction.
func (r *RateRepository) ReplaceRules(ctx context.Context, rules []model.RateValidationRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&rateRuleRecord{}).Error; err != nil {
			return fmt.Errorf("clear rate rules: %w", err)
		}
		if err := insertRules(tx, rules); err != nil {
			return fmt.Errorf("insert rate rules: %w", translate(err))
		}
		return nil
	})
}

func insertRules(tx *gorm.DB, rules []model.RateValidationRule) error {
	if len(rules) == 0 {
		return nil
	}
	rows := make([]rateRuleRecord, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, newRateRuleRecord(rule))
	}
	return tx.Create(&rows).Error
}

func (r *RateRepository) AllOverrides(ctx context.Context) ([]model.TollRateOverride, error) {
	var rows []tollOverrideRecord
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load toll overrides: %w", err)
	}
	return overridesToModel(rows), nil
}

func (r *RateRepository) Overrides(ctx context.Context, businessID uuid.UUID) ([]model.TollRateOverride, error) {
	var rows []tollOverrideRecord
	if err := r.db.WithContext(ctx).Where("business_entity_id = ?", businessID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load toll overrides: %w", err)
	}
	return overridesToModel(rows), nil
}

// ReplaceOverrides swaps one business entity's overrides in one transaction.
func (r *RateRepository) ReplaceOverrides(ctx context.Context, businessID uuid.UUID, overrides []model.TollRateOverride) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("business_entity_id = ?", businessID).Delete(&tollOverrideRecord{}).Error; err != nil {
			return fmt.Errorf("clear toll overrides: %w", err)
		}
		if len(overrides) == 0 {
			return nil
		}
		rows := make([]tollOverrideRecord, 0, len(overrides))
		for _, o := range overrides {
			rows = append(rows, newTollOverrideRecord(o))
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert toll overrides: %w", translate(err))
		}
		return nil
	})
}

func overridesToModel(rows []tollOverrideRecord) []model.TollRateOverride {
	result := make([]model.TollRateOverride, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result
}
