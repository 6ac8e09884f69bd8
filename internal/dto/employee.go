package dto

import "github.com/brainspot/timesheet-api/internal/models"

// CreateEmployeeRequest captures POST /employees payload.
type CreateEmployeeRequest struct {
	FullName      string              `json:"full_name" validate:"required"`
	Email         string              `json:"email" validate:"required,email"`
	Role          models.EmployeeRole `json:"role" validate:"required"`
	WorkdayHours  models.WorkdayHours `json:"workday_hours" validate:"required"`
	SalaryFixed   float64             `json:"salary_fixed" validate:"gte=0"`
	BonusFixed    float64             `json:"bonus_fixed" validate:"gte=0"`
	VouchersFixed float64             `json:"vouchers_fixed" validate:"gte=0"`
}

// UpdateEmployeeRequest captures PUT /employees/{id} payload.
type UpdateEmployeeRequest struct {
	FullName      string              `json:"full_name" validate:"required"`
	Email         string              `json:"email" validate:"required,email"`
	Role          models.EmployeeRole `json:"role" validate:"required"`
	WorkdayHours  models.WorkdayHours `json:"workday_hours" validate:"required"`
	SalaryFixed   float64             `json:"salary_fixed" validate:"gte=0"`
	BonusFixed    float64             `json:"bonus_fixed" validate:"gte=0"`
	VouchersFixed float64             `json:"vouchers_fixed" validate:"gte=0"`
	Active        *bool               `json:"active,omitempty"`
}
