package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
	"freight-pricing-service/internal/refdata"
)

func TestValidateRateBounds(t *testing.T) {
	snap := refdata.Defaults()

	tests := []struct {
		name     string
		rateType model.RateType
		value    string
		wantErr  bool
	}{
		{name: "other overhead negative", rateType: model.RateOverheadOther, value: "-1", wantErr: true},
		{name: "other overhead zero", rateType: model.RateOverheadOther, value: "0", wantErr: false},
		{name: "other overhead in range", rateType: model.RateOverheadOther, value: "999.99", wantErr: false},
		{name: "other overhead upper bound", rateType: model.RateOverheadOther, value: "1000", wantErr: false},
		{name: "other overhead above max", rateType: model.RateOverheadOther, value: "1000.01", wantErr: true},
		{name: "admin overhead zero", rateType: model.RateOverheadAdmin, value: "0", wantErr: true},
		{name: "fuel in range", rateType: model.RateFuel, value: "1.5", wantErr: false},
		{name: "fuel too cheap", rateType: model.RateFuel, value: "0.49", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRate(snap, tt.rateType, dec(tt.value), model.BusinessEntity{})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var invalid *InvalidRateError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidRateError, got %v", err)
			}
			if invalid.RateType != tt.rateType {
				t.Fatalf("expected rate type %s, got %s", tt.rateType, invalid.RateType)
			}
		})
	}
}

func TestValidateRateCertification(t *testing.T) {
	rules := append(refdata.DefaultRules(), model.RateValidationRule{
		RateType:              "hazmat_surcharge_rate",
		MinValue:              dec("0"),
		MaxValue:              dec("100"),
		RequiresCertification: true,
		Certification:         "ADR",
	})
	store := refdata.NewStore(refdata.Defaults(), testLogger())
	if err := store.ReplaceRules(rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := store.Snapshot()

	err := ValidateRate(snap, "hazmat_surcharge_rate", dec("10"), model.BusinessEntity{Certifications: []string{"ATP"}})
	var missing *MissingCertificationError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingCertificationError, got %v", err)
	}
	if missing.Certification != "ADR" {
		t.Fatalf("expected ADR, got %q", missing.Certification)
	}

	if err := ValidateRate(snap, "hazmat_surcharge_rate", dec("10"), model.BusinessEntity{Certifications: []string{"ADR"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRateKey(t *testing.T) {
	snap := refdata.Defaults()

	tests := []struct {
		key     string
		want    RateKey
		wantErr bool
	}{
		{key: "fuel_rate", want: RateKey{Key: "fuel_rate", Type: model.RateFuel}},
		{key: "fuel_rate_DE", want: RateKey{Key: "fuel_rate_DE", Type: model.RateFuel, Country: "DE"}},
		{key: "toll_rate_PL", want: RateKey{Key: "toll_rate_PL", Type: model.RateToll, Country: "PL"}},
		{key: "event_rate_pickup", want: RateKey{Key: "event_rate_pickup", Type: model.RateEvent, EventType: model.EventPickup}},
		{key: "event_hourly_rate_rest", want: RateKey{Key: "event_hourly_rate_rest", Type: model.RateEventHourly, EventType: model.EventRest}},
		{key: "overhead_admin_rate", want: RateKey{Key: "overhead_admin_rate", Type: model.RateOverheadAdmin}},
		{key: "driver_base_rate_DE", wantErr: true},
		{key: "fuel_rate_de", wantErr: true},
		{key: "event_rate_lunch", wantErr: true},
		{key: "parking_rate", wantErr: true},
		{key: "fuel_rate_", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := ParseRateKey(snap, tt.key)
			if tt.wantErr {
				var unknown *UnknownRateTypeError
				if !errors.As(err, &unknown) {
					t.Fatalf("expected UnknownRateTypeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestValidateRatesReportsKey(t *testing.T) {
	snap := refdata.Defaults()
	rates := map[string]decimal.Decimal{
		"fuel_rate":    dec("1.5"),
		"toll_rate_DE": dec("5"),
	}

	err := ValidateRates(snap, rates, model.BusinessEntity{})
	var invalid *InvalidRateError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRateError, got %v", err)
	}
	if invalid.Key != "toll_rate_DE" {
		t.Fatalf("expected key toll_rate_DE, got %q", invalid.Key)
	}
	if !invalid.Max.Equal(dec("2")) {
		t.Fatalf("expected max 2.0, got %s", invalid.Max)
	}
}
