package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, o model.Offer, initial model.StatusHistoryEntry) error {
	rec := newOfferRecord(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create offer: %w", translate(err))
		}
		initial.EntityKind = model.KindOffer
		initial.EntityID = o.ID
		return appendHistory(tx, initial)
	})
}

func (r *OfferRepository) Get(ctx context.Context, id uuid.UUID) (model.Offer, error) {
	var rec offerRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return model.Offer{}, fmt.Errorf("get offer %s: %w", id, translate(err))
	}
	return rec.toModel(), nil
}

// CargoTransition is a cargo status change applied alongside another update.
type CargoTransition struct {
	CargoID uuid.UUID
	Entry   model.StatusHistoryEntry
}

// Finalize marks the offer finalized and, when given, moves its cargo in the
// same transaction.
func (r *OfferRepository) Finalize(ctx context.Context, id uuid.UUID, entry model.StatusHistoryEntry, finalizedAt time.Time, cargo *CargoTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateStatus(tx, "offers", id, entry.PreviousStatus, entry.Status, map[string]any{"finalized_at": finalizedAt}); err != nil {
			return fmt.Errorf("finalize offer: %w", err)
		}
		entry.EntityKind = model.KindOffer
		entry.EntityID = id
		if err := appendHistory(tx, entry); err != nil {
			return err
		}
		if cargo == nil {
			return nil
		}
		return transitionCargo(tx, cargo.CargoID, cargo.Entry)
	})
}
