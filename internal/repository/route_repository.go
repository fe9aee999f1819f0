package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"freight-pricing-service/internal/model"
)

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create stores the route with its segments, empty leg and timeline, plus the
// initial history entry.
func (r *RouteRepository) Create(ctx context.Context, rt model.Route, initial model.StatusHistoryEntry) error {
	rec := newRouteRecord(rt)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create route: %w", translate(err))
		}
		initial.EntityKind = model.KindRoute
		initial.EntityID = rt.ID
		return appendHistory(tx, initial)
	})
}

func (r *RouteRepository) Get(ctx context.Context, id uuid.UUID) (model.Route, error) {
	var rec routeRecord
	err := r.db.WithContext(ctx).
		Preload("EmptyDriving").
		Preload("CountrySegments", func(db *gorm.DB) *gorm.DB { return db.Order("segment_order ASC") }).
		Preload("TimelineEvents", func(db *gorm.DB) *gorm.DB { return db.Order("event_order ASC") }).
		First(&rec, "id = ?", id).Error
	if err != nil {
		return model.Route{}, fmt.Errorf("get route %s: %w", id, translate(err))
	}
	return rec.toModel(), nil
}

type RouteFilter struct {
	BusinessEntityID *uuid.UUID
	Status           string
	Limit            int
	Offset           int
}

// List returns routes without their child rows, newest first.
func (r *RouteRepository) List(ctx context.Context, filter RouteFilter) ([]model.Route, error) {
	query := r.db.WithContext(ctx).Model(&routeRecord{}).Order("created_at DESC")
	if filter.BusinessEntityID != nil {
		query = query.Where("business_entity_id = ?", *filter.BusinessEntityID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []routeRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	result := make([]model.Route, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result, nil
}

func (r *RouteRepository) SaveFeasibility(ctx context.Context, id uuid.UUID, res model.FeasibilityResult) error {
	ts := res.ValidationTimestamp
	out := r.db.WithContext(ctx).Model(&routeRecord{}).Where("id = ?", id).Updates(map[string]any{
		"is_feasible":                   res.IsFeasible,
		"validation_details":            datatypes.NewJSONType(res.Validations),
		"validation_timestamp":          &ts,
		"certifications_validated":      res.Validations["certifications"],
		"operating_countries_validated": res.Validations["operating_countries"],
		"updated_at":                    time.Now().UTC(),
	})
	if out.Error != nil {
		return fmt.Errorf("save route feasibility: %w", out.Error)
	}
	if out.RowsAffected == 0 {
		return fmt.Errorf("save route feasibility %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateStatus applies a validated transition. ErrConflict means the stored
// status no longer matches entry.PreviousStatus.
func (r *RouteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, entry model.StatusHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateStatus(tx, "routes", id, entry.PreviousStatus, entry.Status, map[string]any{"updated_at": entry.Timestamp}); err != nil {
			return fmt.Errorf("update route status: %w", err)
		}
		entry.EntityKind = model.KindRoute
		entry.EntityID = id
		return appendHistory(tx, entry)
	})
}

// Delete removes the route and everything it owns. History rows stay.
func (r *RouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []any{
			&offerRecord{},
			&costBreakdownRecord{},
			&costSettingsRecord{},
			&timelineEventRecord{},
			&segmentRecord{},
			&emptyDrivingRecord{},
		}
		for _, m := range owned {
			if err := tx.Where("route_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("delete route children: %w", err)
			}
		}
		res := tx.Delete(&routeRecord{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete route: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("delete route %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
