package models

import "time"

// EmployeeRole represents the available roles for the RBAC system.
type EmployeeRole string

const (
	RoleAdmin    EmployeeRole = "ADMIN"
	RoleEmployee EmployeeRole = "EMPLOYEE"
)

// Valid returns true when the role is a supported value.
func (r EmployeeRole) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// WorkdayHours is the contracted length of an employee's workday.
type WorkdayHours int

// Supported workday lengths.
const (
	Workday4 WorkdayHours = 4
	Workday6 WorkdayHours = 6
	Workday8 WorkdayHours = 8
)

// Valid returns true when the value is one of the supported workday lengths.
func (w WorkdayHours) Valid() bool {
	switch w {
	case Workday4, Workday6, Workday8:
		return true
	default:
		return false
	}
}

// Employee represents a member of the agency staff.
type Employee struct {
	ID            string       `db:"id" json:"id"`
	FullName      string       `db:"full_name" json:"full_name"`
	Email         string       `db:"email" json:"email"`
	Role          EmployeeRole `db:"role" json:"role"`
	WorkdayHours  WorkdayHours `db:"workday_hours" json:"workday_hours"`
	SalaryFixed   float64      `db:"salary_fixed" json:"salary_fixed"`
	BonusFixed    float64      `db:"bonus_fixed" json:"bonus_fixed"`
	VouchersFixed float64      `db:"vouchers_fixed" json:"vouchers_fixed"`
	HourlyCost    float64      `db:"hourly_cost" json:"hourly_cost"`
	Active        bool         `db:"active" json:"active"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Role      *EmployeeRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
