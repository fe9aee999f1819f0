package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CargoStatus string

const (
	CargoPending   CargoStatus = "pending"
	CargoInTransit CargoStatus = "in_transit"
	CargoDelivered CargoStatus = "delivered"
	CargoCancelled CargoStatus = "cancelled"
)

type OfferStatus string

const (
	OfferDraft     OfferStatus = "DRAFT"
	OfferFinalized OfferStatus = "FINALIZED"
)

type EntityKind string

const (
	KindRoute EntityKind = "route"
	KindCargo EntityKind = "cargo"
	KindOffer EntityKind = "offer"
)

type Cargo struct {
	ID                  uuid.UUID       `json:"id"`
	BusinessEntityID    uuid.UUID       `json:"business_entity_id"`
	Weight              decimal.Decimal `json:"weight"`
	Volume              decimal.Decimal `json:"volume"`
	CargoType           string          `json:"cargo_type"`
	Value               decimal.Decimal `json:"value"`
	SpecialRequirements []string        `json:"special_requirements"`
	Status              CargoStatus     `json:"status"`
	IsActive            bool            `json:"is_active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

type Offer struct {
	ID               uuid.UUID       `json:"id"`
	RouteID          uuid.UUID       `json:"route_id"`
	CostBreakdownID  uuid.UUID       `json:"cost_breakdown_id"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
	FinalPrice       decimal.Decimal `json:"final_price"`
	Status           OfferStatus     `json:"status"`
	FinalizedAt      *time.Time      `json:"finalized_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// StatusHistoryEntry is one append-only lifecycle record.
type StatusHistoryEntry struct {
	ID             uuid.UUID  `json:"id"`
	EntityKind     EntityKind `json:"entity_kind"`
	EntityID       uuid.UUID  `json:"entity_id"`
	PreviousStatus string     `json:"previous_status"`
	Status         string     `json:"status"`
	Comment        string     `json:"comment,omitempty"`
	Trigger        string     `json:"trigger,omitempty"`
	TriggerID      string     `json:"trigger_id,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}
