package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
	"github.com/brainspot/timesheet-api/pkg/response"
)

type auditReader interface {
	Trail(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
	ActorTrail(ctx context.Context, employeeID string, limit int) ([]models.AuditLog, error)
}

// AuditHandler exposes the admin audit trail endpoints.
type AuditHandler struct {
	audit auditReader
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit auditReader) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Trail godoc
// @Summary Audit trail for one resource
// @Tags Audit
// @Produce json
// @Param resource query string true "Resource kind"
// @Param resourceId query string true "Resource ID"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /admin/audit [get]
func (h *AuditHandler) Trail(c *gin.Context) {
	resource := c.Query("resource")
	resourceID := c.Query("resourceId")
	if resource == "" || resourceID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "resource and resourceId are required"))
		return
	}
	logs, err := h.audit.Trail(c.Request.Context(), resource, resourceID, queryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// ActorTrail godoc
// @Summary Audit trail of one employee's actions
// @Tags Audit
// @Produce json
// @Param id path string true "Employee ID"
// @Param limit query int false "Max entries"
// @Success 200 {object} response.Envelope
// @Router /admin/audit/employees/{id} [get]
func (h *AuditHandler) ActorTrail(c *gin.Context) {
	logs, err := h.audit.ActorTrail(c.Request.Context(), c.Param("id"), queryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
