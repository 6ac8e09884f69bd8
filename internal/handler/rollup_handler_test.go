package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/middleware"
	"github.com/brainspot/timesheet-api/internal/models"
	"github.com/brainspot/timesheet-api/internal/rollup"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type rollupServiceMock struct {
	rows      []rollup.ClientMonthRow
	detail    *rollup.ClientMonthDetail
	summary   *rollup.EmployeeMonthSummary
	err       error
	lastMonth string
}

func (m *rollupServiceMock) ClientRows(ctx context.Context, monthKey string) ([]rollup.ClientMonthRow, error) {
	m.lastMonth = monthKey
	return m.rows, m.err
}

func (m *rollupServiceMock) ClientDetail(ctx context.Context, clientID, monthKey string) (*rollup.ClientMonthDetail, error) {
	m.lastMonth = monthKey
	return m.detail, m.err
}

func (m *rollupServiceMock) EmployeeSummary(ctx context.Context, employeeID, monthKey string) (*rollup.EmployeeMonthSummary, error) {
	m.lastMonth = monthKey
	return m.summary, m.err
}

func TestRollupHandlerClientRows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rollupServiceMock{
		rows: []rollup.ClientMonthRow{{Client: models.Client{ID: "client-1", Name: "Acme"}, TotalHours: 12}},
	}
	handler := NewRollupHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/rollups/clients?month=2026-02", nil)
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.ClientRows(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-02", mockSvc.lastMonth)

	var envelope struct {
		Data []rollup.ClientMonthRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, "Acme", envelope.Data[0].Client.Name)
}

func TestRollupHandlerClientDetailNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewRollupHandler(&rollupServiceMock{err: appErrors.ErrNotFound})

	c, w := newGinContext(http.MethodGet, "/rollups/clients/nope?month=2026-02", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	c.Set(middleware.ContextUserKey, adminClaims())

	handler.ClientDetail(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRollupHandlerEmployeeSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &rollupServiceMock{
		summary: &rollup.EmployeeMonthSummary{EmployeeID: "emp-1", MonthKey: "2026-02", TotalHours: 8},
	}
	handler := NewRollupHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/rollups/employees/emp-1?month=2026-02", nil)
	c.Params = gin.Params{{Key: "id", Value: "emp-1"}}
	c.Set(middleware.ContextUserKey, employeeClaims())

	handler.EmployeeSummary(c)
	require.Equal(t, http.StatusOK, w.Code)
}
