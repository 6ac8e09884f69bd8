package dto

import "github.com/brainspot/timesheet-api/internal/models"

// CreateEntryRequest captures POST /reports/{id}/entries payload.
type CreateEntryRequest struct {
	ClientID        string  `json:"client_id" validate:"required"`
	ClientServiceID string  `json:"client_service_id" validate:"required"`
	ServiceID       string  `json:"service_id" validate:"required"`
	TaskID          string  `json:"task_id" validate:"required"`
	Hours           float64 `json:"hours" validate:"required,gt=0"`
	Notes           *string `json:"notes,omitempty"`
}

// UpdateEntryRequest captures PUT /entries/{id} payload.
type UpdateEntryRequest struct {
	ClientID        string  `json:"client_id" validate:"required"`
	ClientServiceID string  `json:"client_service_id" validate:"required"`
	ServiceID       string  `json:"service_id" validate:"required"`
	TaskID          string  `json:"task_id" validate:"required"`
	Hours           float64 `json:"hours" validate:"required,gt=0"`
	Notes           *string `json:"notes,omitempty"`
}

// DecideEditRequestPayload captures POST /edit-requests/{id}/approve|deny bodies.
type DecideEditRequestPayload struct {
	Reason string `json:"reason,omitempty"`
}

// UpdateSpendRequest captures PATCH /reports/{id}/spend payload.
type UpdateSpendRequest struct {
	MetaSpend   *float64 `json:"meta_spend,omitempty" validate:"omitempty,gte=0"`
	GoogleSpend *float64 `json:"google_spend,omitempty" validate:"omitempty,gte=0"`
}

// ReportWithEntryCount pairs a report with its entry tally for admin views.
type ReportWithEntryCount struct {
	models.MonthlyReport
	EntryCount int `json:"entry_count"`
}

// EmployeeReportRow is one line of the admin month overview.
type EmployeeReportRow struct {
	EmployeeID   string               `json:"employee_id"`
	EmployeeName string               `json:"employee_name"`
	Report       *ReportWithEntryCount `json:"report,omitempty"`
}
