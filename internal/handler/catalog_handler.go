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

type catalogService interface {
	ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	CreateService(ctx context.Context, req dto.CreateServiceRequest) (*models.Service, error)
	UpdateService(ctx context.Context, id string, req dto.UpdateServiceRequest) (*models.Service, error)
	DeleteService(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	CreateTask(ctx context.Context, serviceID string, req dto.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// CatalogHandler exposes the service and task catalog endpoints.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListServices godoc
// @Summary List services
// @Tags Catalog
// @Produce json
// @Param search query string false "Search by name"
// @Param pricingType query string false "Filter by pricing type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	var filter models.ServiceFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if pricing := models.PricingType(c.Query("pricingType")); pricing.Valid() {
		filter.PricingType = &pricing
	}
	filter.Page = queryInt(c, "page", 1)
	filter.PageSize = queryInt(c, "limit", 20)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	services, total, err := h.catalog.ListServices(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, services, paginationFor(filter.Page, filter.PageSize, total))
}

// GetService godoc
// @Summary Get service detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} response.Envelope
// @Router /services/{id} [get]
func (h *CatalogHandler) GetService(c *gin.Context) {
	service, err := h.catalog.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, service, nil)
}

// CreateService godoc
// @Summary Create service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateServiceRequest true "Service payload"
// @Success 201 {object} response.Envelope
// @Router /services [post]
func (h *CatalogHandler) CreateService(c *gin.Context) {
	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	service, err := h.catalog.CreateService(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, service)
}

// UpdateService godoc
// @Summary Update service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param payload body dto.UpdateServiceRequest true "Service payload"
// @Success 200 {object} response.Envelope
// @Router /services/{id} [put]
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	var req dto.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	service, err := h.catalog.UpdateService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, service, nil)
}

// DeleteService godoc
// @Summary Delete service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Success 204
// @Router /services/{id} [delete]
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	if err := h.catalog.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListTasks godoc
// @Summary List tasks of a service
// @Tags Catalog
// @Produce json
// @Param id path string true "Service ID"
// @Param active query bool false "Filter by active state"
// @Param search query string false "Search by name"
// @Success 200 {object} response.Envelope
// @Router /services/{id}/tasks [get]
func (h *CatalogHandler) ListTasks(c *gin.Context) {
	var filter models.TaskFilter
	filter.ServiceID = c.Param("id")
	filter.Active = queryBool(c, "active")
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page = queryInt(c, "page", 1)
	filter.PageSize = queryInt(c, "limit", 20)

	tasks, total, err := h.catalog.ListTasks(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, paginationFor(filter.Page, filter.PageSize, total))
}

// CreateTask godoc
// @Summary Create task under a service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Service ID"
// @Param payload body dto.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /services/{id}/tasks [post]
func (h *CatalogHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.catalog.CreateTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// UpdateTask godoc
// @Summary Update task
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body dto.UpdateTaskRequest true "Task payload"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id} [put]
func (h *CatalogHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	task, err := h.catalog.UpdateTask(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// DeleteTask godoc
// @Summary Delete task
// @Tags Catalog
// @Produce json
// @Param id path string true "Task ID"
// @Success 204
// @Router /tasks/{id} [delete]
func (h *CatalogHandler) DeleteTask(c *gin.Context) {
	if err := h.catalog.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
