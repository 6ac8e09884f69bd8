package models

import (
	"fmt"
	"math"
	"time"
)

// ReportStatus captures the lifecycle state of a monthly report.
type ReportStatus string

const (
	ReportStatusOpen      ReportStatus = "OPEN"
	ReportStatusSubmitted ReportStatus = "SUBMITTED"
	ReportStatusUnlocked  ReportStatus = "UNLOCKED"
)

// Valid returns true when the status is a supported value.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusOpen, ReportStatusSubmitted, ReportStatusUnlocked:
		return true
	default:
		return false
	}
}

// Editable reports accept entry creation, edits and deletes. An UNLOCKED
// report behaves like OPEN for editing purposes.
func (s ReportStatus) Editable() bool {
	return s == ReportStatusOpen || s == ReportStatusUnlocked
}

// MonthlyReport is the per-employee-per-month report record. The
// (employee, month key) pair is unique.
type MonthlyReport struct {
	ID          string       `db:"id" json:"id"`
	EmployeeID  string       `db:"employee_id" json:"employee_id"`
	MonthKey    string       `db:"month_key" json:"month_key"`
	Status      ReportStatus `db:"status" json:"status"`
	SubmittedAt *time.Time   `db:"submitted_at" json:"submitted_at,omitempty"`
	UnlockedAt  *time.Time   `db:"unlocked_at" json:"unlocked_at,omitempty"`
	MetaSpend   *float64     `db:"meta_spend" json:"meta_spend,omitempty"`
	GoogleSpend *float64     `db:"google_spend" json:"google_spend,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// MonthKeyFor returns the "YYYY-MM" bucket for the given time.
func MonthKeyFor(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ValidMonthKey checks the "YYYY-MM" shape without being strict about the era.
func ValidMonthKey(key string) bool {
	if len(key) != 7 || key[4] != '-' {
		return false
	}
	var year, month int
	if _, err := fmt.Sscanf(key, "%04d-%02d", &year, &month); err != nil {
		return false
	}
	return year >= 2000 && month >= 1 && month <= 12
}

// MinEntryHours is the smallest bookable unit of work.
const MinEntryHours = 0.25

// ValidEntryHours enforces the 0.25h granularity on entry hours.
func ValidEntryHours(hours float64) bool {
	if hours < MinEntryHours {
		return false
	}
	quarters := hours / MinEntryHours
	return math.Abs(quarters-math.Round(quarters)) < 1e-9
}
