package models

import "time"

// PricingType enumerates the supported billing models for a service.
type PricingType string

const (
	PricingFixedMonthly PricingType = "FIXED_MONTHLY"
	PricingHourly       PricingType = "HOURLY"
	PricingCommission   PricingType = "COMMISSION"
	PricingFixedOneTime PricingType = "FIXED_ONE_TIME"
)

// Valid returns true when the pricing type is a supported value.
func (p PricingType) Valid() bool {
	switch p {
	case PricingFixedMonthly, PricingHourly, PricingCommission, PricingFixedOneTime:
		return true
	default:
		return false
	}
}

// Service is a billable offering in the agency catalog. Names are unique
// case-insensitively across the catalog.
type Service struct {
	ID          string      `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Description *string     `db:"description" json:"description,omitempty"`
	PricingType PricingType `db:"pricing_type" json:"pricing_type"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// ServiceFilter scopes service listing queries.
type ServiceFilter struct {
	Search      string
	PricingType *PricingType
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
