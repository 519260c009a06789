package models

import "time"

// Service is a catalog entry carrying the default price and duration used
// whenever no pricing override is in effect for a vehicle model.
type Service struct {
	ID                  string  `bson:"id" json:"id"`
	Name                string  `bson:"name" json:"name"`
	CategoryID          string  `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	BasePrice           float64 `bson:"basePrice" json:"basePrice"`
	StandardTimeMinutes int     `bson:"standardTimeMinutes" json:"standardTimeMinutes"`
	IsActive            bool    `bson:"isActive" json:"isActive"`
}

// ModelServicePricing is a time-bounded pricing override for a
// (vehicle model, service) pair. Nil CustomPrice/CustomTime fall through to
// the catalog defaults at resolution time. Nil EffectiveDate/ExpiryDate mean
// the range is unbounded on that side.
type ModelServicePricing struct {
	ID            string    `bson:"id" json:"id"`
	ModelID       string    `bson:"modelId" json:"modelId"`
	ServiceID     string    `bson:"serviceId" json:"serviceId"`
	CustomPrice   *float64  `bson:"customPrice,omitempty" json:"customPrice,omitempty"`
	CustomTime    *int      `bson:"customTime,omitempty" json:"customTime,omitempty"`
	EffectiveDate *string   `bson:"effectiveDate,omitempty" json:"effectiveDate,omitempty"` // "2006-01-02"
	ExpiryDate    *string   `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	IsActive      bool      `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// IsCurrentlyActiveOn reports whether the record is active as of the given
// calendar date ("2006-01-02" strings compare correctly lexically).
func (p *ModelServicePricing) IsCurrentlyActiveOn(date string) bool {
	if !p.IsActive {
		return false
	}
	if p.EffectiveDate != nil && *p.EffectiveDate > date {
		return false
	}
	if p.ExpiryDate != nil && date > *p.ExpiryDate {
		return false
	}
	return true
}

// FinalPrice applies the defaults-with-override pattern against the catalog.
func (p *ModelServicePricing) FinalPrice(catalogBase float64) float64 {
	if p.CustomPrice != nil {
		return *p.CustomPrice
	}
	return catalogBase
}

// FinalTime returns the override duration or the catalog standard time.
func (p *ModelServicePricing) FinalTime(catalogStandard int) int {
	if p.CustomTime != nil {
		return *p.CustomTime
	}
	return catalogStandard
}
