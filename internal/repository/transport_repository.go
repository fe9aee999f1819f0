package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

type TransportRepository struct {
	db *gorm.DB
}

func NewTransportRepository(db *gorm.DB) *TransportRepository {
	return &TransportRepository{db: db}
}

func (r *TransportRepository) Create(ctx context.Context, t model.Transport) error {
	rec := newTransportRecord(t)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("create transport: %w", translate(err))
	}
	return nil
}

func (r *TransportRepository) Get(ctx context.Context, id uuid.UUID) (model.Transport, error) {
	var rec transportRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return model.Transport{}, fmt.Errorf("get transport %s: %w", id, translate(err))
	}
	return rec.toModel(), nil
}
