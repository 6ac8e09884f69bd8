package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/middleware"
	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type editRequestServiceMock struct {
	request    *models.EditRequest
	requests   []models.EditRequest
	total      int
	err        error
	lastFilter models.EditRequestFilter
	lastReason *string
}

func (m *editRequestServiceMock) Request(ctx context.Context, reportID string, actor *models.Claims) (*models.EditRequest, error) {
	return m.request, m.err
}

func (m *editRequestServiceMock) List(ctx context.Context, filter models.EditRequestFilter, actor *models.Claims) ([]models.EditRequest, int, error) {
	m.lastFilter = filter
	return m.requests, m.total, m.err
}

func (m *editRequestServiceMock) Get(ctx context.Context, id string, actor *models.Claims) (*models.EditRequest, error) {
	return m.request, m.err
}

func (m *editRequestServiceMock) Approve(ctx context.Context, id string, adminID string, reason *string) (*models.EditRequest, error) {
	m.lastReason = reason
	return m.request, m.err
}

func (m *editRequestServiceMock) Deny(ctx context.Context, id string, adminID string, reason *string) (*models.EditRequest, error) {
	m.lastReason = reason
	return m.request, m.err
}

func TestEditRequestHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &editRequestServiceMock{
		request: &models.EditRequest{ID: "req-1", ReportID: "rep-1", Status: models.EditRequestPending},
	}
	handler := NewEditRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/reports/rep-1/edit-requests", nil)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestEditRequestHandlerListParsesStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &editRequestServiceMock{}
	handler := NewEditRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/edit-requests?status=pending,denied,bogus&month=2026-02", nil)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []models.EditRequestStatus{models.EditRequestPending, models.EditRequestDenied}, mockSvc.lastFilter.Status)
	require.Equal(t, "2026-02", mockSvc.lastFilter.MonthKey)
}

func TestEditRequestHandlerApproveWithReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &editRequestServiceMock{
		request: &models.EditRequest{ID: "req-1", Status: models.EditRequestApproved},
	}
	handler := NewEditRequestHandler(mockSvc)

	payload, _ := json.Marshal(dto.DecideEditRequestPayload{Reason: "typo in hours"})
	c, w := newGinContext(http.MethodPost, "/edit-requests/req-1/approve", payload)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastReason)
	require.Equal(t, "typo in hours", *mockSvc.lastReason)
}

func TestEditRequestHandlerDenyWithoutBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &editRequestServiceMock{
		request: &models.EditRequest{ID: "req-1", Status: models.EditRequestDenied},
	}
	handler := NewEditRequestHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/edit-requests/req-1/deny", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Deny(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, mockSvc.lastReason)
}

func TestEditRequestHandlerDecideConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEditRequestHandler(&editRequestServiceMock{err: appErrors.ErrAlreadyDecided})

	c, w := newGinContext(http.MethodPost, "/edit-requests/req-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.Approve(c)
	require.Equal(t, appErrors.ErrAlreadyDecided.Status, w.Code)
}
