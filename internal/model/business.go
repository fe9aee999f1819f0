package model

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CostOverheads struct {
	Admin      decimal.Decimal `json:"admin"`
	Insurance  decimal.Decimal `json:"insurance"`
	Facilities decimal.Decimal `json:"facilities"`
	Other      decimal.Decimal `json:"other"`
}

func (o CostOverheads) Total() decimal.Decimal {
	return o.Admin.Add(o.Insurance).Add(o.Facilities).Add(o.Other)
}

type BusinessEntity struct {
	ID                 uuid.UUID                  `json:"id"`
	Name               string                     `json:"name"`
	Certifications     []string                   `json:"certifications"`
	OperatingCountries []string                   `json:"operating_countries"`
	CostOverheads      CostOverheads              `json:"cost_overheads"`
	DefaultRates       map[string]decimal.Decimal `json:"default_rates,omitempty"`
	IsActive           bool                       `json:"is_active"`
}

func (b BusinessEntity) HasCertification(name string) bool {
	for _, c := range b.Certifications {
		if c == name {
			return true
		}
	}
	return false
}

func (b BusinessEntity) OperatesIn(country string) bool {
	for _, c := range b.OperatingCountries {
		if strings.EqualFold(c, country) {
			return true
		}
	}
	return false
}
