package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

// HistoryRepository reads the append-only status history. Writes happen inside
// the transaction that changes the status.
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) List(ctx context.Context, kind model.EntityKind, entityID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	var rows []statusHistoryRecord
	err := r.db.WithContext(ctx).
		Where("entity_kind = ? AND entity_id = ?", string(kind), entityID).
		Order("recorded_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list %s history: %w", kind, err)
	}
	result := make([]model.StatusHistoryEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}

func appendHistory(tx *gorm.DB, entry model.StatusHistoryEntry) error {
	rec := newHistoryRecord(entry)
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("append %s history: %w", entry.EntityKind, err)
	}
	return nil
}

// updateStatus moves one row from one status to another only if nobody
// changed it in between.
func updateStatus(tx *gorm.DB, table string, id uuid.UUID, from, to string, extra map[string]any) error {
	values := map[string]any{"status": to}
	for k, v := range extra {
		values[k] = v
	}
	res := tx.Table(table).Where("id = ? AND status = ?", id, from).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
