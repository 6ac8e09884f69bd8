package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
	"github.com/brainspot/timesheet-api/pkg/response"
)

type editRequestService interface {
	Request(ctx context.Context, reportID string, actor *models.Claims) (*models.EditRequest, error)
	List(ctx context.Context, filter models.EditRequestFilter, actor *models.Claims) ([]models.EditRequest, int, error)
	Get(ctx context.Context, id string, actor *models.Claims) (*models.EditRequest, error)
	Approve(ctx context.Context, id string, adminID string, reason *string) (*models.EditRequest, error)
	Deny(ctx context.Context, id string, adminID string, reason *string) (*models.EditRequest, error)
}

// EditRequestHandler exposes the report unlock workflow endpoints.
type EditRequestHandler struct {
	requests editRequestService
}

// NewEditRequestHandler constructs EditRequestHandler.
func NewEditRequestHandler(requests editRequestService) *EditRequestHandler {
	return &EditRequestHandler{requests: requests}
}

// Create godoc
// @Summary Request an unlock of a submitted report
// @Tags EditRequests
// @Produce json
// @Param id path string true "Report ID"
// @Success 201 {object} response.Envelope
// @Router /reports/{id}/edit-requests [post]
func (h *EditRequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.requests.Request(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil)
}

// List godoc
// @Summary List edit requests
// @Tags EditRequests
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param month query string false "Month key YYYY-MM"
// @Param reportId query string false "Report ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /edit-requests [get]
func (h *EditRequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var filter models.EditRequestFilter
	for _, raw := range strings.Split(c.Query("status"), ",") {
		status := models.EditRequestStatus(strings.ToUpper(strings.TrimSpace(raw)))
		if status.Valid() {
			filter.Status = append(filter.Status, status)
		}
	}
	filter.MonthKey = strings.TrimSpace(c.Query("month"))
	filter.ReportID = c.Query("reportId")
	filter.Limit = queryInt(c, "limit", 0)
	filter.Offset = queryInt(c, "offset", 0)

	requests, total, err := h.requests.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil, map[string]interface{}{"total": total})
}

// Get godoc
// @Summary Get edit request detail
// @Tags EditRequests
// @Produce json
// @Param id path string true "Edit request ID"
// @Success 200 {object} response.Envelope
// @Router /edit-requests/{id} [get]
func (h *EditRequestHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.requests.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Approve godoc
// @Summary Approve an edit request, unlocking its report
// @Tags EditRequests
// @Accept json
// @Produce json
// @Param id path string true "Edit request ID"
// @Param payload body dto.DecideEditRequestPayload false "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /edit-requests/{id}/approve [post]
func (h *EditRequestHandler) Approve(c *gin.Context) {
	h.decide(c, h.requests.Approve)
}

// Deny godoc
// @Summary Deny an edit request, leaving its report locked
// @Tags EditRequests
// @Accept json
// @Produce json
// @Param id path string true "Edit request ID"
// @Param payload body dto.DecideEditRequestPayload false "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /edit-requests/{id}/deny [post]
func (h *EditRequestHandler) Deny(c *gin.Context) {
	h.decide(c, h.requests.Deny)
}

func (h *EditRequestHandler) decide(c *gin.Context, fn func(ctx context.Context, id string, adminID string, reason *string) (*models.EditRequest, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.DecideEditRequestPayload
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
			return
		}
	}
	var reason *string
	if trimmed := strings.TrimSpace(payload.Reason); trimmed != "" {
		reason = &trimmed
	}
	request, err := fn(c.Request.Context(), c.Param("id"), claims.EmployeeID, reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
