package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/middleware"
	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type reportServiceMock struct {
	report    *models.MonthlyReport
	reports   []models.MonthlyReport
	overview  []dto.EmployeeReportRow
	entries   []models.TimeEntry
	entry     *models.TimeEntry
	err       error
	lastMonth string
}

func (m *reportServiceMock) GetOrCreate(ctx context.Context, employeeID, monthKey string) (*models.MonthlyReport, error) {
	m.lastMonth = monthKey
	return m.report, m.err
}

func (m *reportServiceMock) Get(ctx context.Context, id string, actor *models.Claims) (*models.MonthlyReport, error) {
	return m.report, m.err
}

func (m *reportServiceMock) ListMine(ctx context.Context, employeeID string) ([]models.MonthlyReport, error) {
	return m.reports, m.err
}

func (m *reportServiceMock) MonthOverview(ctx context.Context, monthKey string) ([]dto.EmployeeReportRow, error) {
	m.lastMonth = monthKey
	return m.overview, m.err
}

func (m *reportServiceMock) Submit(ctx context.Context, reportID string, actor *models.Claims) (*models.MonthlyReport, error) {
	return m.report, m.err
}

func (m *reportServiceMock) UpdateSpend(ctx context.Context, reportID string, req dto.UpdateSpendRequest) (*models.MonthlyReport, error) {
	return m.report, m.err
}

func (m *reportServiceMock) ListEntries(ctx context.Context, reportID string, actor *models.Claims) ([]models.TimeEntry, error) {
	return m.entries, m.err
}

func (m *reportServiceMock) AddEntry(ctx context.Context, reportID string, req dto.CreateEntryRequest, actor *models.Claims) (*models.TimeEntry, error) {
	return m.entry, m.err
}

func (m *reportServiceMock) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, actor *models.Claims) (*models.TimeEntry, error) {
	return m.entry, m.err
}

func (m *reportServiceMock) DeleteEntry(ctx context.Context, entryID string, actor *models.Claims) error {
	return m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func employeeClaims() *models.Claims {
	return &models.Claims{EmployeeID: "emp-1", Email: "ana@brainspot.example", Role: models.RoleEmployee}
}

func adminClaims() *models.Claims {
	return &models.Claims{EmployeeID: "admin-1", Email: "boss@brainspot.example", Role: models.RoleAdmin}
}

func TestReportHandlerCurrent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		report: &models.MonthlyReport{ID: "rep-1", EmployeeID: "emp-1", MonthKey: "2026-02", Status: models.ReportStatusOpen},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/current?month=2026-02", nil)
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.Current(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-02", mockSvc.lastMonth)
}

func TestReportHandlerCurrentDefaultsToThisMonth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		report: &models.MonthlyReport{ID: "rep-1", EmployeeID: "emp-1", Status: models.ReportStatusOpen},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/current", nil)
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.Current(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.MonthKeyFor(time.Now()), mockSvc.lastMonth)
}

func TestReportHandlerCurrentRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{})

	c, w := newGinContext(http.MethodGet, "/reports/current?month=2026-02", nil)

	handler.Current(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		report: &models.MonthlyReport{ID: "rep-1", EmployeeID: "emp-1", MonthKey: "2026-02", Status: models.ReportStatusSubmitted},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/reports/rep-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.Submit(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestReportHandlerSubmitConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{err: appErrors.ErrInvalidState})

	c, w := newGinContext(http.MethodPost, "/reports/rep-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.Submit(c)
	require.Equal(t, appErrors.ErrInvalidState.Status, w.Code)
}

func TestReportHandlerAddEntry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		entry: &models.TimeEntry{ID: "entry-1", ReportID: "rep-1", Hours: 1.5},
	}
	handler := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.CreateEntryRequest{
		ClientID:        "client-1",
		ClientServiceID: "cs-1",
		ServiceID:       "svc-1",
		TaskID:          "task-1",
		Hours:           1.5,
	})
	c, w := newGinContext(http.MethodPost, "/reports/rep-1/entries", payload)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.AddEntry(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestReportHandlerAddEntryRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/reports/rep-1/entries", []byte("{"))
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.AddEntry(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerAddEntryLocked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{err: appErrors.ErrReportLocked})

	payload, _ := json.Marshal(dto.CreateEntryRequest{
		ClientID:        "client-1",
		ClientServiceID: "cs-1",
		ServiceID:       "svc-1",
		TaskID:          "task-1",
		Hours:           1.5,
	})
	c, w := newGinContext(http.MethodPost, "/reports/rep-1/entries", payload)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.AddEntry(c)
	require.Equal(t, appErrors.ErrReportLocked.Status, w.Code)
}

func TestReportHandlerMonthOverview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		overview: []dto.EmployeeReportRow{{EmployeeID: "emp-1", EmployeeName: "Ana Pereira"}},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/admin/reports?month=2026-02", nil)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.MonthOverview(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-02", mockSvc.lastMonth)
}

func TestReportHandlerUpdateSpend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	spend := 120.5
	mockSvc := &reportServiceMock{
		report: &models.MonthlyReport{ID: "rep-1", MetaSpend: &spend},
	}
	handler := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.UpdateSpendRequest{MetaSpend: &spend})
	c, w := newGinContext(http.MethodPatch, "/reports/rep-1/spend", payload)
	c.Params = gin.Params{{Key: "id", Value: "rep-1"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.UpdateSpend(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestReportHandlerDeleteEntry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{})

	c, w := newGinContext(http.MethodDelete, "/entries/entry-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "entry-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.DeleteEntry(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
}
