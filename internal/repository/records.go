package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"freight-pricing-service/internal/model"
)

type decimalMap = map[string]decimal.Decimal

type businessRecord struct {
	ID                 uuid.UUID                     `gorm:"type:uuid;primaryKey"`
	Name               string                        `gorm:"not null"`
	Certifications     datatypes.JSONSlice[string]   `gorm:"not null"`
	OperatingCountries datatypes.JSONSlice[string]   `gorm:"not null"`
	OverheadAdmin      decimal.Decimal               `gorm:"type:numeric(12,2);not null"`
	OverheadInsurance  decimal.Decimal               `gorm:"type:numeric(12,2);not null"`
	OverheadFacilities decimal.Decimal               `gorm:"type:numeric(12,2);not null"`
	OverheadOther      decimal.Decimal               `gorm:"type:numeric(12,2);not null"`
	DefaultRates       datatypes.JSONType[decimalMap]
	IsActive           bool `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (businessRecord) TableName() string { return "business_entities" }

type transportRecord struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TransportTypeID       string          `gorm:"not null;index"`
	BusinessEntityID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	FuelConsumptionEmpty  decimal.Decimal `gorm:"type:numeric(8,3);not null"`
	FuelConsumptionLoaded decimal.Decimal `gorm:"type:numeric(8,3);not null"`
	TollClass             string          `gorm:"not null"`
	EuroClass             string          `gorm:"not null"`
	CO2Class              string
	MaintenanceRatePerKM  decimal.Decimal `gorm:"type:numeric(8,3);not null"`
	DailyRate             decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	DrivingTimeRate       decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MaxDrivingHours       decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	OvertimeMultiplier    decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	RequiredLicenseType   string
	RequiredCerts         datatypes.JSONSlice[string]
	IsActive              bool `gorm:"not null"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (transportRecord) TableName() string { return "transports" }

type routeRecord struct {
	ID                          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TransportID                 uuid.UUID  `gorm:"type:uuid;not null;index"`
	BusinessEntityID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	CargoID                     *uuid.UUID `gorm:"type:uuid;index"`
	Origin                      datatypes.JSONType[model.Location]
	Destination                 datatypes.JSONType[model.Location]
	RouteType                   string
	PickupTime                  time.Time       `gorm:"not null"`
	DeliveryTime                time.Time       `gorm:"not null"`
	TotalDistanceKM             decimal.Decimal `gorm:"column:total_distance_km;type:numeric(12,3);not null"`
	TotalDurationHours          decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	IsFeasible                  bool            `gorm:"not null"`
	ValidationDetails           datatypes.JSONType[map[string]bool]
	ValidationTimestamp         *time.Time
	CertificationsValidated     bool   `gorm:"not null"`
	OperatingCountriesValidated bool   `gorm:"not null"`
	Status                      string `gorm:"not null;index"`
	EmptyDriving                *emptyDrivingRecord   `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	CountrySegments             []segmentRecord       `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	TimelineEvents              []timelineEventRecord `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

func (routeRecord) TableName() string { return "routes" }

type emptyDrivingRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RouteID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DistanceKM    decimal.Decimal `gorm:"column:distance_km;type:numeric(12,3);not null"`
	DurationHours decimal.Decimal `gorm:"type:numeric(10,3);not null"`
}

func (emptyDrivingRecord) TableName() string { return "empty_drivings" }

type segmentRecord struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RouteID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_segment_route_order"`
	CountryCode   string          `gorm:"size:2;not null"`
	DistanceKM    decimal.Decimal `gorm:"column:distance_km;type:numeric(12,3);not null"`
	DurationHours decimal.Decimal `gorm:"type:numeric(10,3);not null"`
	StartLocation datatypes.JSONType[*model.Location]
	EndLocation   datatypes.JSONType[*model.Location]
	SegmentOrder  int    `gorm:"not null;uniqueIndex:idx_segment_route_order"`
	SegmentType   string `gorm:"not null"`
}

func (segmentRecord) TableName() string { return "country_segments" }

type timelineEventRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RouteID       uuid.UUID `gorm:"type:uuid;not null;index"`
	EventType     string    `gorm:"not null"`
	Location      datatypes.JSONType[*model.Location]
	PlannedTime   time.Time `gorm:"not null"`
	ActualTime    *time.Time
	DurationHours decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	EventOrder    int             `gorm:"not null"`
	Status        string          `gorm:"not null"`
}

func (timelineEventRecord) TableName() string { return "timeline_events" }

type costSettingsRecord struct {
	ID                uuid.UUID                            `gorm:"type:uuid;primaryKey"`
	RouteID           uuid.UUID                            `gorm:"type:uuid;not null;uniqueIndex:idx_settings_route_version"`
	BusinessEntityID  uuid.UUID                            `gorm:"type:uuid;not null"`
	Version           int                                  `gorm:"not null;uniqueIndex:idx_settings_route_version"`
	EnabledComponents datatypes.JSONSlice[model.Component] `gorm:"not null"`
	Rates             datatypes.JSONType[decimalMap]
	CreatedAt         time.Time
}

func (costSettingsRecord) TableName() string { return "cost_settings" }

type costBreakdownRecord struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	RouteID              uuid.UUID `gorm:"type:uuid;not null;index"`
	SettingsID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	FuelCosts            datatypes.JSONType[decimalMap]
	EmptyDrivingFuelCost *decimal.Decimal `gorm:"type:numeric"`
	TollCosts            datatypes.JSONType[decimalMap]
	DriverCosts          datatypes.JSONType[*model.DriverCost]
	OverheadCosts        *decimal.Decimal `gorm:"type:numeric"`
	TimelineEventCosts   datatypes.JSONType[decimalMap]
	TotalCost            decimal.Decimal `gorm:"type:numeric;not null"`
	CreatedAt            time.Time
}

func (costBreakdownRecord) TableName() string { return "cost_breakdowns" }

type cargoRecord struct {
	ID                  uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	BusinessEntityID    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Weight              decimal.Decimal             `gorm:"type:numeric(12,3);not null"`
	Volume              decimal.Decimal             `gorm:"type:numeric(12,3);not null"`
	CargoType           string                      `gorm:"not null"`
	Value               decimal.Decimal             `gorm:"type:numeric(14,2)"`
	SpecialRequirements datatypes.JSONSlice[string]
	Status              string `gorm:"not null;index"`
	IsActive            bool   `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (cargoRecord) TableName() string { return "cargos" }

type offerRecord struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RouteID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostBreakdownID  uuid.UUID       `gorm:"type:uuid;not null"`
	MarginPercentage decimal.Decimal `gorm:"type:numeric;not null"`
	FinalPrice       decimal.Decimal `gorm:"type:numeric;not null"`
	Status           string          `gorm:"not null"`
	FinalizedAt      *time.Time
	CreatedAt        time.Time
}

func (offerRecord) TableName() string { return "offers" }

type statusHistoryRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	EntityKind     string    `gorm:"not null;index:idx_history_entity"`
	EntityID       uuid.UUID `gorm:"type:uuid;not null;index:idx_history_entity"`
	PreviousStatus string
	Status         string `gorm:"not null"`
	Comment        string
	TriggeredBy    string
	TriggerID      string
	Timestamp      time.Time `gorm:"column:recorded_at;not null"`
}

func (statusHistoryRecord) TableName() string { return "status_history" }

type rateRuleRecord struct {
	RateType              string          `gorm:"primaryKey"`
	MinValue              decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	MaxValue              decimal.Decimal `gorm:"type:numeric(12,4);not null"`
	CountrySpecific       bool            `gorm:"not null"`
	RequiresCertification bool            `gorm:"not null"`
	Certification         string
	Description           string
}

func (rateRuleRecord) TableName() string { return "rate_validation_rules" }

type tollOverrideRecord struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BusinessEntityID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CountryCode      string          `gorm:"size:2;not null"`
	VehicleClass     string          `gorm:"not null"`
	RouteType        *string
	RateMultiplier   decimal.Decimal `gorm:"type:numeric(6,4);not null"`
}

func (tollOverrideRecord) TableName() string { return "toll_rate_overrides" }

// Models lists every persisted record for AutoMigrate, parents first.
func Models() []any {
	return []any{
		&businessRecord{},
		&transportRecord{},
		&cargoRecord{},
		&routeRecord{},
		&emptyDrivingRecord{},
		&segmentRecord{},
		&timelineEventRecord{},
		&costSettingsRecord{},
		&costBreakdownRecord{},
		&offerRecord{},
		&statusHistoryRecord{},
		&rateRuleRecord{},
		&tollOverrideRecord{},
	}
}
