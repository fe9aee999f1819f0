package repository

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"freight-pricing-service/internal/model"
)

func newBusinessRecord(b model.BusinessEntity) businessRecord {
	return businessRecord{
		ID:                 b.ID,
		Name:               b.Name,
		Certifications:     datatypes.NewJSONSlice(nonNil(b.Certifications)),
		OperatingCountries: datatypes.NewJSONSlice(nonNil(b.OperatingCountries)),
		OverheadAdmin:      b.CostOverheads.Admin,
		OverheadInsurance:  b.CostOverheads.Insurance,
		OverheadFacilities: b.CostOverheads.Facilities,
		OverheadOther:      b.CostOverheads.Other,
		DefaultRates:       datatypes.NewJSONType(b.DefaultRates),
		IsActive:           b.IsActive,
	}
}

func (r businessRecord) toModel() model.BusinessEntity {
	return model.BusinessEntity{
		ID:                 r.ID,
		Name:               r.Name,
		Certifications:     []string(r.Certifications),
		OperatingCountries: []string(r.OperatingCountries),
		CostOverheads: model.CostOverheads{
			Admin:      r.OverheadAdmin,
			Insurance:  r.OverheadInsurance,
			Facilities: r.OverheadFacilities,
			Other:      r.OverheadOther,
		},
		DefaultRates: r.DefaultRates.Data(),
		IsActive:     r.IsActive,
	}
}

func newTransportRecord(t model.Transport) transportRecord {
	return transportRecord{
		ID:                    t.ID,
		TransportTypeID:       t.TransportTypeID,
		BusinessEntityID:      t.BusinessEntityID,
		FuelConsumptionEmpty:  t.Truck.FuelConsumptionEmpty,
		FuelConsumptionLoaded: t.Truck.FuelConsumptionLoaded,
		TollClass:             t.Truck.TollClass,
		EuroClass:             t.Truck.EuroClass,
		CO2Class:              t.Truck.CO2Class,
		MaintenanceRatePerKM:  t.Truck.MaintenanceRatePerKM,
		DailyRate:             t.Driver.DailyRate,
		DrivingTimeRate:       t.Driver.DrivingTimeRate,
		MaxDrivingHours:       t.Driver.MaxDrivingHours,
		OvertimeMultiplier:    t.Driver.OvertimeRateMultiplier,
		RequiredLicenseType:   t.Driver.RequiredLicenseType,
		RequiredCerts:         datatypes.NewJSONSlice(nonNil(t.Driver.RequiredCertifications)),
		IsActive:              t.IsActive,
	}
}

func (r transportRecord) toModel() model.Transport {
	return model.Transport{
		ID:               r.ID,
		TransportTypeID:  r.TransportTypeID,
		BusinessEntityID: r.BusinessEntityID,
		Truck: model.TruckSpecification{
			FuelConsumptionEmpty:  r.FuelConsumptionEmpty,
			FuelConsumptionLoaded: r.FuelConsumptionLoaded,
			TollClass:             r.TollClass,
			EuroClass:             r.EuroClass,
			CO2Class:              r.CO2Class,
			MaintenanceRatePerKM:  r.MaintenanceRatePerKM,
		},
		Driver: model.DriverSpecification{
			DailyRate:              r.DailyRate,
			DrivingTimeRate:        r.DrivingTimeRate,
			MaxDrivingHours:        r.MaxDrivingHours,
			OvertimeRateMultiplier: r.OvertimeMultiplier,
			RequiredLicenseType:    r.RequiredLicenseType,
			RequiredCertifications: []string(r.RequiredCerts),
		},
		IsActive: r.IsActive,
	}
}

func newRouteRecord(rt model.Route) routeRecord {
	rec := routeRecord{
		ID:                          rt.ID,
		TransportID:                 rt.TransportID,
		BusinessEntityID:            rt.BusinessEntityID,
		CargoID:                     rt.CargoID,
		Origin:                      datatypes.NewJSONType(rt.Origin),
		Destination:                 datatypes.NewJSONType(rt.Destination),
		RouteType:                   rt.RouteType,
		PickupTime:                  rt.PickupTime,
		DeliveryTime:                rt.DeliveryTime,
		TotalDistanceKM:             rt.TotalDistanceKM,
		TotalDurationHours:          rt.TotalDurationHours,
		IsFeasible:                  rt.IsFeasible,
		ValidationDetails:           datatypes.NewJSONType(rt.ValidationDetails),
		ValidationTimestamp:         rt.ValidationTimestamp,
		CertificationsValidated:     rt.CertificationsValidated,
		OperatingCountriesValidated: rt.OperatingCountriesValidated,
		Status:                      string(rt.Status),
		CreatedAt:                   rt.CreatedAt,
		UpdatedAt:                   rt.UpdatedAt,
	}
	if rt.EmptyDriving != nil {
		rec.EmptyDriving = &emptyDrivingRecord{
			ID:            ensureID(rt.EmptyDriving.ID),
			RouteID:       rt.ID,
			DistanceKM:    rt.EmptyDriving.DistanceKM,
			DurationHours: rt.EmptyDriving.DurationHours,
		}
	}
	for _, seg := range rt.CountrySegments {
		rec.CountrySegments = append(rec.CountrySegments, segmentRecord{
			ID:            ensureID(seg.ID),
			RouteID:       rt.ID,
			CountryCode:   seg.CountryCode,
			DistanceKM:    seg.DistanceKM,
			DurationHours: seg.DurationHours,
			StartLocation: datatypes.NewJSONType(seg.StartLocation),
			EndLocation:   datatypes.NewJSONType(seg.EndLocation),
			SegmentOrder:  seg.SegmentOrder,
			SegmentType:   seg.SegmentType,
		})
	}
	for _, ev := range rt.TimelineEvents {
		rec.TimelineEvents = append(rec.TimelineEvents, timelineEventRecord{
			ID:            ensureID(ev.ID),
			RouteID:       rt.ID,
			EventType:     string(ev.Type),
			Location:      datatypes.NewJSONType(ev.Location),
			PlannedTime:   ev.PlannedTime,
			ActualTime:    ev.ActualTime,
			DurationHours: ev.DurationHours,
			EventOrder:    ev.EventOrder,
			Status:        ev.Status,
		})
	}
	return rec
}

func (r routeRecord) toModel() model.Route {
	rt := model.Route{
		ID:                          r.ID,
		TransportID:                 r.TransportID,
		BusinessEntityID:            r.BusinessEntityID,
		CargoID:                     r.CargoID,
		Origin:                      r.Origin.Data(),
		Destination:                 r.Destination.Data(),
		RouteType:                   r.RouteType,
		PickupTime:                  r.PickupTime,
		DeliveryTime:                r.DeliveryTime,
		TotalDistanceKM:             r.TotalDistanceKM,
		TotalDurationHours:          r.TotalDurationHours,
		IsFeasible:                  r.IsFeasible,
		ValidationDetails:           r.ValidationDetails.Data(),
		ValidationTimestamp:         r.ValidationTimestamp,
		CertificationsValidated:     r.CertificationsValidated,
		OperatingCountriesValidated: r.OperatingCountriesValidated,
		Status:                      model.RouteStatus(r.Status),
		CountrySegments:             make([]model.CountrySegment, 0, len(r.CountrySegments)),
		TimelineEvents:              make([]model.TimelineEvent, 0, len(r.TimelineEvents)),
		CreatedAt:                   r.CreatedAt,
		UpdatedAt:                   r.UpdatedAt,
	}
	if r.EmptyDriving != nil {
		rt.EmptyDriving = &model.EmptyDriving{
			ID:            r.EmptyDriving.ID,
			RouteID:       r.EmptyDriving.RouteID,
			DistanceKM:    r.EmptyDriving.DistanceKM,
			DurationHours: r.EmptyDriving.DurationHours,
		}
	}
	for _, seg := range r.CountrySegments {
		rt.CountrySegments = append(rt.CountrySegments, model.CountrySegment{
			ID:            seg.ID,
			RouteID:       seg.RouteID,
			CountryCode:   seg.CountryCode,
			DistanceKM:    seg.DistanceKM,
			DurationHours: seg.DurationHours,
			StartLocation: seg.StartLocation.Data(),
			EndLocation:   seg.EndLocation.Data(),
			SegmentOrder:  seg.SegmentOrder,
			SegmentType:   seg.SegmentType,
		})
	}
	for _, ev := range r.TimelineEvents {
		rt.TimelineEvents = append(rt.TimelineEvents, model.TimelineEvent{
			ID:            ev.ID,
			RouteID:       ev.RouteID,
			Type:          model.EventType(ev.EventType),
			Location:      ev.Location.Data(),
			PlannedTime:   ev.PlannedTime,
			ActualTime:    ev.ActualTime,
			DurationHours: ev.DurationHours,
			EventOrder:    ev.EventOrder,
			Status:        ev.Status,
		})
	}
	return rt
}

func newCostSettingsRecord(s model.CostSettings) costSettingsRecord {
	return costSettingsRecord{
		ID:                s.ID,
		RouteID:           s.RouteID,
		BusinessEntityID:  s.BusinessEntityID,
		Version:           s.Version,
		EnabledComponents: datatypes.NewJSONSlice(nonNil(s.EnabledComponents)),
		Rates:             datatypes.NewJSONType(s.Rates),
		CreatedAt:         s.CreatedAt,
	}
}

func (r costSettingsRecord) toModel() model.CostSettings {
	return model.CostSettings{
		ID:                r.ID,
		RouteID:           r.RouteID,
		BusinessEntityID:  r.BusinessEntityID,
		Version:           r.Version,
		EnabledComponents: []model.Component(r.EnabledComponents),
		Rates:             r.Rates.Data(),
		CreatedAt:         r.CreatedAt,
	}
}

func newCostBreakdownRecord(b model.CostBreakdown) costBreakdownRecord {
	return costBreakdownRecord{
		ID:                   b.ID,
		RouteID:              b.RouteID,
		SettingsID:           b.SettingsID,
		FuelCosts:            datatypes.NewJSONType(b.FuelCosts),
		EmptyDrivingFuelCost: b.EmptyDrivingFuelCost,
		TollCosts:            datatypes.NewJSONType(b.TollCosts),
		DriverCosts:          datatypes.NewJSONType(b.DriverCosts),
		OverheadCosts:        b.OverheadCosts,
		TimelineEventCosts:   datatypes.NewJSONType(b.TimelineEventCosts),
		TotalCost:            b.TotalCost,
		CreatedAt:            b.CreatedAt,
	}
}

func (r costBreakdownRecord) toModel() model.CostBreakdown {
	return model.CostBreakdown{
		ID:                   r.ID,
		RouteID:              r.RouteID,
		SettingsID:           r.SettingsID,
		FuelCosts:            r.FuelCosts.Data(),
		EmptyDrivingFuelCost: r.EmptyDrivingFuelCost,
		TollCosts:            r.TollCosts.Data(),
		DriverCosts:          r.DriverCosts.Data(),
		OverheadCosts:        r.OverheadCosts,
		TimelineEventCosts:   r.TimelineEventCosts.Data(),
		TotalCost:            r.TotalCost,
		CreatedAt:            r.CreatedAt,
	}
}

func newCargoRecord(c model.Cargo) cargoRecord {
	return cargoRecord{
		ID:                  c.ID,
		BusinessEntityID:    c.BusinessEntityID,
		Weight:              c.Weight,
		Volume:              c.Volume,
		CargoType:           c.CargoType,
		Value:               c.Value,
		SpecialRequirements: datatypes.NewJSONSlice(nonNil(c.SpecialRequirements)),
		Status:              string(c.Status),
		IsActive:            c.IsActive,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

func (r cargoRecord) toModel() model.Cargo {
	return model.Cargo{
		ID:                  r.ID,
		BusinessEntityID:    r.BusinessEntityID,
		Weight:              r.Weight,
		Volume:              r.Volume,
		CargoType:           r.CargoType,
		Value:               r.Value,
		SpecialRequirements: []string(r.SpecialRequirements),
		Status:              model.CargoStatus(r.Status),
		IsActive:            r.IsActive,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func newOfferRecord(o model.Offer) offerRecord {
	return offerRecord{
		ID:               o.ID,
		RouteID:          o.RouteID,
		CostBreakdownID:  o.CostBreakdownID,
		MarginPercentage: o.MarginPercentage,
		FinalPrice:       o.FinalPrice,
		Status:           string(o.Status),
		FinalizedAt:      o.FinalizedAt,
		CreatedAt:        o.CreatedAt,
	}
}

func (r offerRecord) toModel() model.Offer {
	return model.Offer{
		ID:               r.ID,
		RouteID:          r.RouteID,
		CostBreakdownID:  r.CostBreakdownID,
		MarginPercentage: r.MarginPercentage,
		FinalPrice:       r.FinalPrice,
		Status:           model.OfferStatus(r.Status),
		FinalizedAt:      r.FinalizedAt,
		CreatedAt:        r.CreatedAt,
	}
}

func newHistoryRecord(e model.StatusHistoryEntry) statusHistoryRecord {
	return statusHistoryRecord{
		ID:             ensureID(e.ID),
		EntityKind:     string(e.EntityKind),
		EntityID:       e.EntityID,
		PreviousStatus: e.PreviousStatus,
		Status:         e.Status,
		Comment:        e.Comment,
		TriggeredBy:    e.Trigger,
		TriggerID:      e.TriggerID,
		Timestamp:      e.Timestamp,
	}
}

func (r statusHistoryRecord) toModel() model.StatusHistoryEntry {
	return model.StatusHistoryEntry{
		ID:             r.ID,
		EntityKind:     model.EntityKind(r.EntityKind),
		EntityID:       r.EntityID,
		PreviousStatus: r.PreviousStatus,
		Status:         r.Status,
		Comment:        r.Comment,
		Trigger:        r.TriggeredBy,
		TriggerID:      r.TriggerID,
		Timestamp:      r.Timestamp,
	}
}

func newRateRuleRecord(r model.RateValidationRule) rateRuleRecord {
	return rateRuleRecord{
		RateType:              string(r.RateType),
		MinValue:              r.MinValue,
		MaxValue:              r.MaxValue,
		CountrySpecific:       r.CountrySpecific,
		RequiresCertification: r.RequiresCertification,
		Certification:         r.Certification,
		Description:           r.Description,
	}
}

func (r rateRuleRecord) toModel() model.RateValidationRule {
	return model.RateValidationRule{
		RateType:              model.RateType(r.RateType),
		MinValue:              r.MinValue,
		MaxValue:              r.MaxValue,
		CountrySpecific:       r.CountrySpecific,
		RequiresCertification: r.RequiresCertification,
		Certification:         r.Certification,
		Description:           r.Description,
	}
}

func newTollOverrideRecord(o model.TollRateOverride) tollOverrideRecord {
	return tollOverrideRecord{
		ID:               ensureID(o.ID),
		BusinessEntityID: o.BusinessEntityID,
		CountryCode:      o.CountryCode,
		VehicleClass:     o.VehicleClass,
		RouteType:        o.RouteType,
		RateMultiplier:   o.RateMultiplier,
	}
}

func (r tollOverrideRecord) toModel() model.TollRateOverride {
	return model.TollRateOverride{
		ID:               r.ID,
		BusinessEntityID: r.BusinessEntityID,
		CountryCode:      r.CountryCode,
		VehicleClass:     r.VehicleClass,
		RouteType:        r.RouteType,
		RateMultiplier:   r.RateMultiplier,
	}
}

func ensureID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
