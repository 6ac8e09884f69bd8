package dto

import "github.com/brainspot/timesheet-api/internal/models"

// CreateClientRequest captures POST /clients payload.
type CreateClientRequest struct {
	Name    string  `json:"name" validate:"required"`
	Company *string `json:"company,omitempty"`
	TaxID   *string `json:"tax_id,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// UpdateClientRequest captures PUT /clients/{id} payload.
type UpdateClientRequest struct {
	Name    string  `json:"name" validate:"required"`
	Company *string `json:"company,omitempty"`
	TaxID   *string `json:"tax_id,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string `json:"phone,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// AttachServiceRequest captures POST /clients/{id}/services payload.
type AttachServiceRequest struct {
	ServiceID         string             `json:"service_id" validate:"required"`
	PricingType       models.PricingType `json:"pricing_type" validate:"required"`
	MonthlyFixedPrice *float64           `json:"monthly_fixed_price,omitempty" validate:"omitempty,gte=0"`
	HourlyRate        *float64           `json:"hourly_rate,omitempty" validate:"omitempty,gte=0"`
	OneTimePrice      *float64           `json:"one_time_price,omitempty" validate:"omitempty,gte=0"`
	CommissionRatePct *float64           `json:"commission_rate_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// UpdateClientServiceRequest captures PUT /clients/{id}/services/{csid} payload.
type UpdateClientServiceRequest struct {
	PricingType       models.PricingType `json:"pricing_type" validate:"required"`
	MonthlyFixedPrice *float64           `json:"monthly_fixed_price,omitempty" validate:"omitempty,gte=0"`
	HourlyRate        *float64           `json:"hourly_rate,omitempty" validate:"omitempty,gte=0"`
	OneTimePrice      *float64           `json:"one_time_price,omitempty" validate:"omitempty,gte=0"`
	CommissionRatePct *float64           `json:"commission_rate_pct,omitempty" validate:"omitempty,gte=0,lte=100"`
}
