package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type editRequestRepoStub struct {
	requests   map[string]*models.EditRequest
	reports    *reportRepoStub
	approveErr error
}

func newEditRequestRepoStub() *editRequestRepoStub {
	return &editRequestRepoStub{requests: make(map[string]*models.EditRequest)}
}

func (r *editRequestRepoStub) Create(ctx context.Context, req *models.EditRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.Status = models.EditRequestPending
	copy := *req
	r.requests[req.ID] = &copy
	return nil
}

func (r *editRequestRepoStub) FindByID(ctx context.Context, id string) (*models.EditRequest, error) {
	if req, ok := r.requests[id]; ok {
		copy := *req
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *editRequestRepoStub) FindPending(ctx context.Context, employeeID, reportID string) (*models.EditRequest, error) {
	for _, req := range r.requests {
		if req.EmployeeID == employeeID && req.ReportID == reportID && req.Status == models.EditRequestPending {
			copy := *req
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *editRequestRepoStub) List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, int, error) {
	var out []models.EditRequest
	for _, req := range r.requests {
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, *req)
	}
	return out, len(out), nil
}

func (r *editRequestRepoStub) Decide(ctx context.Context, id string, status models.EditRequestStatus, adminID string, reason *string, at time.Time) error {
	req, ok := r.requests[id]
	if !ok || req.Status != models.EditRequestPending {
		return sql.ErrNoRows
	}
	req.Status = status
	req.AdminID = &adminID
	req.Reason = reason
	req.DecidedAt = &at
	return nil
}

// Approve mirrors the repository transaction: either the decision and the
// unlock both land, or neither does.
func (r *editRequestRepoStub) Approve(ctx context.Context, id, reportID, adminID string, reason *string, at time.Time) error {
	if r.approveErr != nil {
		return r.approveErr
	}
	if err := r.Decide(ctx, id, models.EditRequestApproved, adminID, reason, at); err != nil {
		return err
	}
	return r.reports.Unlock(ctx, reportID, at)
}

func newEditRequestFixture() (*EditRequestService, *editRequestRepoStub, *reportRepoStub, *auditRecorderStub) {
	requests := newEditRequestRepoStub()
	reports := newReportRepoStub()
	requests.reports = reports
	audit := &auditRecorderStub{}
	svc := NewEditRequestService(requests, reports, audit, &invalidatorStub{}, nil)
	return svc, requests, reports, audit
}

func submittedReport(reports *reportRepoStub, employeeID string) *models.MonthlyReport {
	now := time.Now().UTC()
	report := &models.MonthlyReport{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		MonthKey:    "2026-02",
		Status:      models.ReportStatusSubmitted,
		SubmittedAt: &now,
		CreatedAt:   now,
	}
	reports.reports[report.ID] = report
	return report
}

func TestEditRequestServiceRequest(t *testing.T) {
	svc, _, reports, audit := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	actor := &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee}

	request, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)
	require.Equal(t, models.EditRequestPending, request.Status)
	require.Equal(t, report.MonthKey, request.MonthKey)
	require.Len(t, audit.logs, 1)
}

func TestEditRequestServiceRequestIdempotent(t *testing.T) {
	svc, _, reports, _ := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	actor := &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee}

	first, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)
	second, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestEditRequestServiceRequestNeedsSubmittedReport(t *testing.T) {
	svc, _, reports, _ := newEditRequestFixture()
	report := &models.MonthlyReport{
		ID:         uuid.NewString(),
		EmployeeID: "emp-1",
		MonthKey:   "2026-02",
		Status:     models.ReportStatusOpen,
	}
	reports.reports[report.ID] = report
	actor := &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee}

	_, err := svc.Request(context.Background(), report.ID, actor)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestEditRequestServiceRequestForeignReport(t *testing.T) {
	svc, _, reports, _ := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	actor := &models.Claims{EmployeeID: "emp-2", Role: models.RoleEmployee}

	_, err := svc.Request(context.Background(), report.ID, actor)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEditRequestServiceApproveUnlocksReport(t *testing.T) {
	svc, _, reports, _ := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	actor := &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee}

	request, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)

	reason := "need to fix hours"
	approved, err := svc.Approve(context.Background(), request.ID, "admin-1", &reason)
	require.NoError(t, err)
	require.Equal(t, models.EditRequestApproved, approved.Status)
	require.NotNil(t, approved.DecidedAt)

	unlocked, err := reports.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusUnlocked, unlocked.Status)
	require.NotNil(t, unlocked.UnlockedAt)
}

func TestEditRequestServiceApproveFailureLeavesRequestPending(t *testing.T) {
	svc, requests, reports, _ := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	actor := &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee}

	request, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)

	requests.approveErr = sql.ErrConnDone
	_, err = svc.Approve(context.Background(), request.ID, "admin-1", nil)
	require.Error(t, err)

	// Nothing committed: the request stays PENDING and the report locked,
	// so the same approval can simply be retried.
	still, err := requests.FindByID(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, models.EditRequestPending, still.Status)
	locked, err := reports.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusSubmitted, locked.Status)

	requests.approveErr = nil
	approved, err := svc.Approve(context.Background(), request.ID, "admin-1", nil)
	require.NoError(t, err)
	require.Equal(t, models.EditRequestApproved, approved.Status)
	unlocked, err := reports.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusUnlocked, unlocked.Status)
}

func TestEditRequestServiceDecisionIsTerminal(t *testing.T) {
	svc, _, reports, _ := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	actor := &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee}

	request, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), request.ID, "admin-1", nil)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), request.ID, "admin-1", nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAlreadyDecided.Code, appErrors.FromError(err).Code)

	_, err = svc.Deny(context.Background(), request.ID, "admin-1", nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrAlreadyDecided.Code, appErrors.FromError(err).Code)
}

func TestEditRequestServiceDenyKeepsReportLocked(t *testing.T) {
	svc, _, reports, _ := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	actor := &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee}

	request, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)

	denied, err := svc.Deny(context.Background(), request.ID, "admin-1", nil)
	require.NoError(t, err)
	require.Equal(t, models.EditRequestDenied, denied.Status)

	still, err := reports.FindByID(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusSubmitted, still.Status)

	// After a denial the employee may raise a fresh request.
	fresh, err := svc.Request(context.Background(), report.ID, actor)
	require.NoError(t, err)
	require.NotEqual(t, request.ID, fresh.ID)
}

func TestEditRequestServiceListScopesToOwner(t *testing.T) {
	svc, requests, reports, _ := newEditRequestFixture()
	report := submittedReport(reports, "emp-1")
	other := submittedReport(reports, "emp-2")

	_, err := svc.Request(context.Background(), report.ID, &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee})
	require.NoError(t, err)
	_, err = svc.Request(context.Background(), other.ID, &models.Claims{EmployeeID: "emp-2", Role: models.RoleEmployee})
	require.NoError(t, err)
	require.Len(t, requests.requests, 2)

	mine, total, err := svc.List(context.Background(), models.EditRequestFilter{}, &models.Claims{EmployeeID: "emp-1", Role: models.RoleEmployee})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, mine, 1)
	require.Equal(t, "emp-1", mine[0].EmployeeID)

	all, total, err := svc.List(context.Background(), models.EditRequestFilter{}, &models.Claims{EmployeeID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 2)
}
