package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"freight-pricing-service/internal/model"
)

// InvalidRateError reports a rate outside its configured bounds.
type InvalidRateError struct {
	RateType model.RateType
	Key      string
	Value    decimal.Decimal
	Min      decimal.Decimal
	Max      decimal.Decimal
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("rate %s=%s outside allowed range [%s, %s]", e.key(), e.Value.String(), e.Min.String(), e.Max.String())
}

func (e *InvalidRateError) key() string {
	if e.Key != "" {
		return e.Key
	}
	return string(e.RateType)
}

type MissingCertificationError struct {
	RateType      model.RateType
	Certification string
}

func (e *MissingCertificationError) Error() string {
	return fmt.Sprintf("rate %s requires certification %q", e.RateType, e.Certification)
}

// IncompleteSettingsError lists rate keys that are required by the enabled
// components and have neither a configured value nor a system default.
type IncompleteSettingsError struct {
	MissingKeys []string
}

func (e *IncompleteSettingsError) Error() string {
	return "cost settings incomplete, missing rates: " + strings.Join(e.MissingKeys, ", ")
}

type UnknownRateTypeError struct {
	Key string
}

func (e *UnknownRateTypeError) Error() string {
	return fmt.Sprintf("unknown rate type %q", e.Key)
}

type UnknownComponentError struct {
	Component string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown cost component %q", e.Component)
}
