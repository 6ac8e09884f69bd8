package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
	"github.com/brainspot/timesheet-api/pkg/response"
)

type reportService interface {
	GetOrCreate(ctx context.Context, employeeID, monthKey string) (*models.MonthlyReport, error)
	Get(ctx context.Context, id string, actor *models.Claims) (*models.MonthlyReport, error)
	ListMine(ctx context.Context, employeeID string) ([]models.MonthlyReport, error)
	MonthOverview(ctx context.Context, monthKey string) ([]dto.EmployeeReportRow, error)
	Submit(ctx context.Context, reportID string, actor *models.Claims) (*models.MonthlyReport, error)
	UpdateSpend(ctx context.Context, reportID string, req dto.UpdateSpendRequest) (*models.MonthlyReport, error)
	ListEntries(ctx context.Context, reportID string, actor *models.Claims) ([]models.TimeEntry, error)
	AddEntry(ctx context.Context, reportID string, req dto.CreateEntryRequest, actor *models.Claims) (*models.TimeEntry, error)
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, actor *models.Claims) (*models.TimeEntry, error)
	DeleteEntry(ctx context.Context, entryID string, actor *models.Claims) error
}

// ReportHandler exposes monthly report and time entry endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Current godoc
// @Summary Get or create the caller's report for a month
// @Tags Reports
// @Produce json
// @Param month query string false "Month key YYYY-MM, defaults to the current month"
// @Success 200 {object} response.Envelope
// @Router /reports/current [get]
func (h *ReportHandler) Current(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		month = models.MonthKeyFor(time.Now())
	}
	report, err := h.reports.GetOrCreate(c.Request.Context(), claims.EmployeeID, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ListMine godoc
// @Summary List the caller's reports
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	reports, err := h.reports.ListMine(c.Request.Context(), claims.EmployeeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Get godoc
// @Summary Get report detail
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// MonthOverview godoc
// @Summary Admin overview of all employee reports for a month
// @Tags Reports
// @Produce json
// @Param month query string true "Month key YYYY-MM"
// @Success 200 {object} response.Envelope
// @Router /admin/reports [get]
func (h *ReportHandler) MonthOverview(c *gin.Context) {
	rows, err := h.reports.MonthOverview(c.Request.Context(), strings.TrimSpace(c.Query("month")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Submit godoc
// @Summary Submit a report, locking its entries
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/submit [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.reports.Submit(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// UpdateSpend godoc
// @Summary Patch ad-spend figures on a report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.UpdateSpendRequest true "Spend payload"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/spend [patch]
func (h *ReportHandler) UpdateSpend(c *gin.Context) {
	var req dto.UpdateSpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	report, err := h.reports.UpdateSpend(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ListEntries godoc
// @Summary List time entries of a report
// @Tags Entries
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/entries [get]
func (h *ReportHandler) ListEntries(c *gin.Context) {
	entries, err := h.reports.ListEntries(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// AddEntry godoc
// @Summary Book hours on a report
// @Tags Entries
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.CreateEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Router /reports/{id}/entries [post]
func (h *ReportHandler) AddEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entry, err := h.reports.AddEntry(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// UpdateEntry godoc
// @Summary Edit a time entry
// @Tags Entries
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body dto.UpdateEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Router /entries/{id} [put]
func (h *ReportHandler) UpdateEntry(c *gin.Context) {
	var req dto.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	entry, err := h.reports.UpdateEntry(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeleteEntry godoc
// @Summary Delete a time entry
// @Tags Entries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 204
// @Router /entries/{id} [delete]
func (h *ReportHandler) DeleteEntry(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.reports.DeleteEntry(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
