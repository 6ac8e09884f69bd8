package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/brainspot/timesheet-api/internal/models"
)

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListByResource(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]models.AuditLog, error)
}

// AuditService writes the audit trail. Recording is best effort; a failed
// write never fails the business operation that triggered it.
type AuditService struct {
	repo   auditStore
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditStore, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Record appends an audit entry, logging instead of propagating failures.
func (s *AuditService) Record(ctx context.Context, log *models.AuditLog) {
	if log == nil {
		return
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("action", log.Action),
			zap.String("resource", log.Resource),
			zap.Error(err))
	}
}

// Trail returns the audit entries for a resource, newest first.
func (s *AuditService) Trail(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	return s.repo.ListByResource(ctx, resource, resourceID, limit)
}

// ActorTrail returns actions taken by an employee, newest first.
func (s *AuditService) ActorTrail(ctx context.Context, employeeID string, limit int) ([]models.AuditLog, error) {
	return s.repo.ListByEmployee(ctx, employeeID, limit)
}
