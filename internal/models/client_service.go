package models

import "time"

// ClientService attaches a catalog service to a client with client-specific
// pricing. The (client, service) pair is unique.
type ClientService struct {
	ID                string      `db:"id" json:"id"`
	ClientID          string      `db:"client_id" json:"client_id"`
	ServiceID         string      `db:"service_id" json:"service_id"`
	PricingType       PricingType `db:"pricing_type" json:"pricing_type"`
	MonthlyFixedPrice *float64    `db:"monthly_fixed_price" json:"monthly_fixed_price,omitempty"`
	HourlyRate        *float64    `db:"hourly_rate" json:"hourly_rate,omitempty"`
	OneTimePrice      *float64    `db:"one_time_price" json:"one_time_price,omitempty"`
	CommissionRatePct *float64    `db:"commission_rate_pct" json:"commission_rate_pct,omitempty"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// ClientServiceDetail extends the attachment with display names.
type ClientServiceDetail struct {
	ClientService
	ClientName  string `db:"client_name" json:"client_name"`
	ServiceName string `db:"service_name" json:"service_name"`
}
