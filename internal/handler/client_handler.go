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

type clientService interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, req dto.CreateClientRequest) (*models.Client, error)
	Update(ctx context.Context, id string, req dto.UpdateClientRequest) (*models.Client, error)
	Delete(ctx context.Context, id string) error
	ListServices(ctx context.Context, clientID string) ([]models.ClientServiceDetail, error)
	AttachService(ctx context.Context, clientID string, req dto.AttachServiceRequest) (*models.ClientService, error)
	UpdateAssignment(ctx context.Context, clientID, assignmentID string, req dto.UpdateClientServiceRequest) (*models.ClientService, error)
	DetachService(ctx context.Context, clientID, assignmentID string) error
}

// ClientHandler exposes client and client-service assignment endpoints.
type ClientHandler struct {
	clients clientService
}

// NewClientHandler constructs ClientHandler.
func NewClientHandler(clients clientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	var filter models.ClientFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Page = queryInt(c, "page", 1)
	filter.PageSize = queryInt(c, "limit", 20)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	clients, total, err := h.clients.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, paginationFor(filter.Page, filter.PageSize, total))
}

// Get godoc
// @Summary Get client detail
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body dto.CreateClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	client, err := h.clients.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Update godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body dto.UpdateClientRequest true "Client payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	client, err := h.clients.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Delete godoc
// @Summary Delete client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 204
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListServices godoc
// @Summary List services assigned to a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/services [get]
func (h *ClientHandler) ListServices(c *gin.Context) {
	assignments, err := h.clients.ListServices(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// AttachService godoc
// @Summary Assign a service to a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body dto.AttachServiceRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /clients/{id}/services [post]
func (h *ClientHandler) AttachService(c *gin.Context) {
	var req dto.AttachServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.clients.AttachService(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// UpdateAssignment godoc
// @Summary Update a client-service assignment
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param assignmentId path string true "Assignment ID"
// @Param payload body dto.UpdateClientServiceRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/services/{assignmentId} [put]
func (h *ClientHandler) UpdateAssignment(c *gin.Context) {
	var req dto.UpdateClientServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.clients.UpdateAssignment(c.Request.Context(), c.Param("id"), c.Param("assignmentId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// DetachService godoc
// @Summary Remove a service assignment from a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Router /clients/{id}/services/{assignmentId} [delete]
func (h *ClientHandler) DetachService(c *gin.Context) {
	if err := h.clients.DetachService(c.Request.Context(), c.Param("id"), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
