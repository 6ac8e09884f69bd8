package dto

import "github.com/brainspot/timesheet-api/internal/models"

// CreateServiceRequest captures POST /services payload.
type CreateServiceRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description *string            `json:"description,omitempty"`
	PricingType models.PricingType `json:"pricing_type" validate:"required"`
}

// UpdateServiceRequest captures PUT /services/{id} payload.
type UpdateServiceRequest struct {
	Name        string             `json:"name" validate:"required"`
	Description *string            `json:"description,omitempty"`
	PricingType models.PricingType `json:"pricing_type" validate:"required"`
}

// CreateTaskRequest captures POST /services/{id}/tasks payload.
type CreateTaskRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateTaskRequest captures PUT /tasks/{id} payload.
type UpdateTaskRequest struct {
	Name   string `json:"name" validate:"required"`
	Active *bool  `json:"active,omitempty"`
}
