package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RouteStatus string

const (
	RouteDraft      RouteStatus = "draft"
	RoutePlanned    RouteStatus = "planned"
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
	RouteCancelled  RouteStatus = "cancelled"
)

type EventType string

const (
	EventPickup   EventType = "pickup"
	EventRest     EventType = "rest"
	EventDelivery EventType = "delivery"
)

func ParseEventType(s string) (EventType, bool) {
	switch EventType(s) {
	case EventPickup, EventRest, EventDelivery:
		return EventType(s), true
	default:
		return "", false
	}
}

const SegmentTypeRoute = "route"

type Location struct {
	ID        uuid.UUID `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Address   string    `json:"address"`
}

// EmptyDriving is the unloaded leg from the truck's position to the cargo origin.
type EmptyDriving struct {
	ID            uuid.UUID       `json:"id"`
	RouteID       uuid.UUID       `json:"route_id"`
	DistanceKM    decimal.Decimal `json:"distance_km"`
	DurationHours decimal.Decimal `json:"duration_hours"`
}

type CountrySegment struct {
	ID            uuid.UUID       `json:"id"`
	RouteID       uuid.UUID       `json:"route_id"`
	CountryCode   string          `json:"country_code"`
	DistanceKM    decimal.Decimal `json:"distance_km"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	StartLocation *Location       `json:"start_location,omitempty"`
	EndLocation   *Location       `json:"end_location,omitempty"`
	SegmentOrder  int             `json:"segment_order"`
	SegmentType   string          `json:"segment_type"`
}

type TimelineEvent struct {
	ID            uuid.UUID       `json:"id"`
	RouteID       uuid.UUID       `json:"route_id"`
	Type          EventType       `json:"type"`
	Location      *Location       `json:"location,omitempty"`
	PlannedTime   time.Time       `json:"planned_time"`
	ActualTime    *time.Time      `json:"actual_time,omitempty"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	EventOrder    int             `json:"event_order"`
	Status        string          `json:"status"`
}

type Route struct {
	ID                          uuid.UUID        `json:"id"`
	TransportID                 uuid.UUID        `json:"transport_id"`
	BusinessEntityID            uuid.UUID        `json:"business_entity_id"`
	CargoID                     *uuid.UUID       `json:"cargo_id,omitempty"`
	Origin                      Location         `json:"origin"`
	Destination                 Location         `json:"destination"`
	RouteType                   string           `json:"route_type,omitempty"`
	PickupTime                  time.Time        `json:"pickup_time"`
	DeliveryTime                time.Time        `json:"delivery_time"`
	TotalDistanceKM             decimal.Decimal  `json:"total_distance_km"`
	TotalDurationHours          decimal.Decimal  `json:"total_duration_hours"`
	IsFeasible                  bool             `json:"is_feasible"`
	ValidationDetails           map[string]bool  `json:"validation_details"`
	ValidationTimestamp         *time.Time       `json:"validation_timestamp,omitempty"`
	CertificationsValidated     bool             `json:"certifications_validated"`
	OperatingCountriesValidated bool             `json:"operating_countries_validated"`
	Status                      RouteStatus      `json:"status"`
	EmptyDriving                *EmptyDriving    `json:"empty_driving,omitempty"`
	CountrySegments             []CountrySegment `json:"country_segments"`
	TimelineEvents              []TimelineEvent  `json:"timeline_events"`
	CreatedAt                   time.Time        `json:"created_at"`
	UpdatedAt                   time.Time        `json:"updated_at"`
}

// Countries returns the distinct upper-cased country codes in traversal order.
func (r Route) Countries() []string {
	seen := make(map[string]struct{}, len(r.CountrySegments))
	result := make([]string, 0, len(r.CountrySegments))
	for _, seg := range r.CountrySegments {
		code := strings.ToUpper(seg.CountryCode)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		result = append(result, code)
	}
	return result
}

// DrivingHours sums segment durations including the empty-driving leg.
func (r Route) DrivingHours() decimal.Decimal {
	total := decimal.Zero
	for _, seg := range r.CountrySegments {
		total = total.Add(seg.DurationHours)
	}
	if r.EmptyDriving != nil {
		total = total.Add(r.EmptyDriving.DurationHours)
	}
	return total
}

type FeasibilityResult struct {
	IsFeasible            bool            `json:"is_feasible"`
	Validations           map[string]bool `json:"validations"`
	MissingCountries      []string        `json:"missing_countries,omitempty"`
	MissingCertifications []string        `json:"missing_certifications,omitempty"`
	ValidationTimestamp   time.Time       `json:"validation_timestamp"`
}
