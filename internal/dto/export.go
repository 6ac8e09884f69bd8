package dto

import "github.com/brainspot/timesheet-api/internal/models"

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	ClientID string              `json:"client_id" validate:"required"`
	MonthKey string              `json:"month_key" validate:"required"`
	Format   models.ExportFormat `json:"format" validate:"required"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID          string              `json:"id"`
	Status      models.ExportStatus `json:"status"`
	DownloadURL *string             `json:"download_url,omitempty"`
	Error       *string             `json:"error,omitempty"`
}
