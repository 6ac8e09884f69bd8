package models

import "time"

// EditRequestStatus captures workflow states for report unlock requests.
type EditRequestStatus string

const (
	EditRequestPending  EditRequestStatus = "PENDING"
	EditRequestApproved EditRequestStatus = "APPROVED"
	EditRequestDenied   EditRequestStatus = "DENIED"
)

// Valid returns true when the status is a supported value.
func (s EditRequestStatus) Valid() bool {
	switch s {
	case EditRequestPending, EditRequestApproved, EditRequestDenied:
		return true
	default:
		return false
	}
}

// EditRequest is raised by an employee against a SUBMITTED report.
// Approving one unlocks the report; APPROVED and DENIED are terminal.
// At most one PENDING request exists per (employee, report).
type EditRequest struct {
	ID         string            `db:"id" json:"id"`
	ReportID   string            `db:"report_id" json:"report_id"`
	EmployeeID string            `db:"employee_id" json:"employee_id"`
	// MonthKey is denormalized from the report for display without a join.
	MonthKey   string            `db:"month_key" json:"month_key"`
	Status     EditRequestStatus `db:"status" json:"status"`
	AdminID    *string           `db:"admin_id" json:"admin_id,omitempty"`
	DecidedAt  *time.Time        `db:"decided_at" json:"decided_at,omitempty"`
	Reason     *string           `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// EditRequestFilter constrains listing queries.
type EditRequestFilter struct {
	Status     []EditRequestStatus
	EmployeeID string
	ReportID   string
	MonthKey   string
	Limit      int
	Offset     int
}
