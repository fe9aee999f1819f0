package pricing

import (
	"sort"
	"strings"
	"time"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/refdata"
)

// Check names used in FeasibilityResult.Validations.
const (
	CheckOperatingCountries = "operating_countries"
	CheckCertifications     = "certifications"
	CheckSegmentOrder       = "segment_order"
	CheckTimelineOrder      = "timeline_order"
)

type FeasibilityInput struct {
	Route               model.Route
	Business            model.BusinessEntity
	CargoRequirements   []string
	Driver              model.DriverSpecification
	ValidationTimestamp time.Time
}

// ValidateFeasibility composes every check into one result. Cargo
// requirements with no certification mapping impose nothing.
func ValidateFeasibility(snap *refdata.Snapshot, in FeasibilityInput) model.FeasibilityResult {
	var missingCountries []string
	for _, country := range in.Route.Countries() {
		if !in.Business.OperatesIn(country) {
			missingCountries = append(missingCountries, country)
		}
	}

	required := make(map[string]struct{})
	for _, req := range in.CargoRequirements {
		if cert, ok := snap.CertificationFor(req); ok {
			required[cert] = struct{}{}
		}
	}
	for _, cert := range in.Driver.RequiredCertifications {
		if cert = strings.TrimSpace(cert); cert != "" {
			required[cert] = struct{}{}
		}
	}
	var missingCerts []string
	for cert := range required {
		if !in.Business.HasCertification(cert) {
			missingCerts = append(missingCerts, cert)
		}
	}
	sort.Strings(missingCerts)

	validations := map[string]bool{
		CheckOperatingCountries: len(missingCountries) == 0,
		CheckCertifications:     len(missingCerts) == 0,
		CheckSegmentOrder:       SegmentOrderValid(in.Route.CountrySegments),
		CheckTimelineOrder:      TimelineOrderValid(in.Route.TimelineEvents),
	}
	feasible := true
	for _, ok := range validations {
		feasible = feasible && ok
	}

	ts := in.ValidationTimestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return model.FeasibilityResult{
		IsFeasible:            feasible,
		Validations:           validations,
		MissingCountries:      missingCountries,
		MissingCertifications: missingCerts,
		ValidationTimestamp:   ts,
	}
}

// SegmentOrderValid reports whether the orders form exactly {0..n-1}.
func SegmentOrderValid(segments []model.CountrySegment) bool {
	seen := make([]bool, len(segments))
	for _, seg := range segments {
		if seg.SegmentOrder < 0 || seg.SegmentOrder >= len(segments) || seen[seg.SegmentOrder] {
			return false
		}
		seen[seg.SegmentOrder] = true
	}
	return true
}

// TimelineOrderValid requires strictly increasing event_order and planned
// times that never go backwards along that order.
func TimelineOrderValid(events []model.TimelineEvent) bool {
	sorted := make([]model.TimelineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EventOrder < sorted[j].EventOrder })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].EventOrder == sorted[i-1].EventOrder {
			return false
		}
		if sorted[i].PlannedTime.Before(sorted[i-1].PlannedTime) {
			return false
		}
	}
	return true
}
