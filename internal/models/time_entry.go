package models

import "time"

// TimeEntry is a single logged unit of work. It belongs to exactly one
// monthly report owned by the same employee; the month bucket is always
// derived by joining through the report.
type TimeEntry struct {
	ID              string    `db:"id" json:"id"`
	ReportID        string    `db:"report_id" json:"report_id"`
	EmployeeID      string    `db:"employee_id" json:"employee_id"`
	ClientID        string    `db:"client_id" json:"client_id"`
	ClientServiceID string    `db:"client_service_id" json:"client_service_id"`
	ServiceID       string    `db:"service_id" json:"service_id"`
	TaskID          string    `db:"task_id" json:"task_id"`
	Hours           float64   `db:"hours" json:"hours"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// TimeEntryFilter scopes entry listing queries.
type TimeEntryFilter struct {
	ReportID   string
	EmployeeID string
	ClientID   string
}
