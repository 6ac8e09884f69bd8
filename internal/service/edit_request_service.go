package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type editRequestStore interface {
	Create(ctx context.Context, req *models.EditRequest) error
	FindByID(ctx context.Context, id string) (*models.EditRequest, error)
	FindPending(ctx context.Context, employeeID, reportID string) (*models.EditRequest, error)
	List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, int, error)
	Decide(ctx context.Context, id string, status models.EditRequestStatus, adminID string, reason *string, at time.Time) error
	Approve(ctx context.Context, id, reportID, adminID string, reason *string, at time.Time) error
}

type reportLookup interface {
	FindByID(ctx context.Context, id string) (*models.MonthlyReport, error)
}

// EditRequestService runs the unlock workflow for submitted reports.
// Approval unlocks the report exactly once; both decisions are terminal.
type EditRequestService struct {
	requests editRequestStore
	reports  reportLookup
	audit    auditWriter
	rollups  rollupInvalidator
	logger   *zap.Logger
}

// NewEditRequestService constructs an EditRequestService.
func NewEditRequestService(requests editRequestStore, reports reportLookup, audit auditWriter, rollups rollupInvalidator, logger *zap.Logger) *EditRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditRequestService{requests: requests, reports: reports, audit: audit, rollups: rollups, logger: logger}
}

// Request raises an unlock request against the actor's submitted report.
// An existing PENDING request is returned as is instead of stacking a
// duplicate.
func (s *EditRequestService) Request(ctx context.Context, reportID string, actor *models.Claims) (*models.EditRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if report.EmployeeID != actor.EmployeeID {
		return nil, appErrors.ErrForbidden
	}
	if report.Status != models.ReportStatusSubmitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only submitted reports can be unlocked")
	}

	existing, err := s.requests.FindPending(ctx, actor.EmployeeID, reportID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check pending request")
	}

	request := &models.EditRequest{
		ReportID:   reportID,
		EmployeeID: actor.EmployeeID,
		MonthKey:   report.MonthKey,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create edit request")
	}

	s.emitAudit(ctx, actor.EmployeeID, models.AuditActionEditRequestCreate, request.ID)
	s.logger.Info("edit request created",
		zap.String("request_id", request.ID),
		zap.String("report_id", reportID))
	return request, nil
}

// List returns edit requests. Non-admin actors only see their own.
func (s *EditRequestService) List(ctx context.Context, filter models.EditRequestFilter, actor *models.Claims) ([]models.EditRequest, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		filter.EmployeeID = actor.EmployeeID
	}
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list edit requests")
	}
	return requests, total, nil
}

// Get returns a single request enforcing ownership.
func (s *EditRequestService) Get(ctx context.Context, id string, actor *models.Claims) (*models.EditRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "edit request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load edit request")
	}
	if actor != nil && actor.Role != models.RoleAdmin && request.EmployeeID != actor.EmployeeID {
		return nil, appErrors.ErrForbidden
	}
	return request, nil
}

// Approve grants a pending request and unlocks its report. Decision and
// unlock commit in one transaction, so the cascade runs exactly once and
// a failed unlock leaves the request PENDING for a retry.
func (s *EditRequestService) Approve(ctx context.Context, id string, adminID string, reason *string) (*models.EditRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "edit request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load edit request")
	}
	if request.Status != models.EditRequestPending {
		return nil, appErrors.ErrAlreadyDecided
	}

	now := time.Now().UTC()
	if err := s.requests.Approve(ctx, id, request.ReportID, adminID, reason, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAlreadyDecided
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve edit request")
	}

	request.Status = models.EditRequestApproved
	request.AdminID = &adminID
	request.DecidedAt = &now
	request.Reason = reason

	s.emitAudit(ctx, adminID, models.AuditActionEditRequestApprove, request.ID)
	s.invalidateRollups(ctx)
	s.logger.Info("edit request approved",
		zap.String("request_id", request.ID),
		zap.String("report_id", request.ReportID))
	return request, nil
}

// Deny refuses a pending request; the report stays submitted.
func (s *EditRequestService) Deny(ctx context.Context, id string, adminID string, reason *string) (*models.EditRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "edit request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load edit request")
	}
	if request.Status != models.EditRequestPending {
		return nil, appErrors.ErrAlreadyDecided
	}

	now := time.Now().UTC()
	if err := s.requests.Decide(ctx, id, models.EditRequestDenied, adminID, reason, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrAlreadyDecided
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deny edit request")
	}

	request.Status = models.EditRequestDenied
	request.AdminID = &adminID
	request.DecidedAt = &now
	request.Reason = reason

	s.emitAudit(ctx, adminID, models.AuditActionEditRequestDeny, request.ID)
	return request, nil
}

func (s *EditRequestService) emitAudit(ctx context.Context, actorID, action, resourceID string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, &models.AuditLog{
		EmployeeID: &actorID,
		Action:     action,
		Resource:   "edit_request",
		ResourceID: &resourceID,
	})
}

func (s *EditRequestService) invalidateRollups(ctx context.Context) {
	if s.rollups != nil {
		s.rollups.Invalidate(ctx)
	}
}
