package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brainspot/timesheet-api/internal/rollup"
	"github.com/brainspot/timesheet-api/pkg/response"
)

type rollupService interface {
	ClientRows(ctx context.Context, monthKey string) ([]rollup.ClientMonthRow, error)
	ClientDetail(ctx context.Context, clientID, monthKey string) (*rollup.ClientMonthDetail, error)
	EmployeeSummary(ctx context.Context, employeeID, monthKey string) (*rollup.EmployeeMonthSummary, error)
}

// RollupHandler exposes the aggregated month views.
type RollupHandler struct {
	rollups rollupService
}

// NewRollupHandler constructs RollupHandler.
func NewRollupHandler(rollups rollupService) *RollupHandler {
	return &RollupHandler{rollups: rollups}
}

// ClientRows godoc
// @Summary Per-client month rollup rows
// @Tags Rollups
// @Produce json
// @Param month query string true "Month key YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /rollups/clients [get]
func (h *RollupHandler) ClientRows(c *gin.Context) {
	rows, err := h.rollups.ClientRows(c.Request.Context(), strings.TrimSpace(c.Query("month")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ClientDetail godoc
// @Summary One client's month rollup detail
// @Tags Rollups
// @Produce json
// @Param id path string true "Client ID"
// @Param month query string true "Month key YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /rollups/clients/{id} [get]
func (h *RollupHandler) ClientDetail(c *gin.Context) {
	detail, err := h.rollups.ClientDetail(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("month")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// EmployeeSummary godoc
// @Summary One employee's month rollup
// @Tags Rollups
// @Produce json
// @Param id path string true "Employee ID"
// @Param month query string true "Month key YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /rollups/employees/{id} [get]
func (h *RollupHandler) EmployeeSummary(c *gin.Context) {
	summary, err := h.rollups.EmployeeSummary(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("month")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
