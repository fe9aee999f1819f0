package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

type BusinessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Create(ctx context.Context, b model.BusinessEntity) error {
	rec := newBusinessRecord(b)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create business entity: %w", translate(err))
	}
	return nil
}

func (r *BusinessRepository) Get(ctx context.Context, id uuid.UUID) (model.BusinessEntity, error) {
	var rec businessRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return model.BusinessEntity{}, fmt.Errorf("get business entity %s: %w", id, translate(err))
	}
	return rec.toModel(), nil
}

// Deactivate soft-deletes an active business entity. Its routes and settings
// stay readable for admins.
func (r *BusinessRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&businessRecord{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate business entity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deactivate business entity %s: %w", id, ErrNotFound)
	}
	return nil
}
