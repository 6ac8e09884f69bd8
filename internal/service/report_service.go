package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type reportStore interface {
	GetOrCreate(ctx context.Context, employeeID, monthKey string) (*models.MonthlyReport, error)
	FindByID(ctx context.Context, id string) (*models.MonthlyReport, error)
	FindByEmployeeMonth(ctx context.Context, employeeID, monthKey string) (*models.MonthlyReport, error)
	ListByMonth(ctx context.Context, monthKey string) ([]models.MonthlyReport, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.MonthlyReport, error)
	Submit(ctx context.Context, id string, at time.Time) error
	UpdateSpend(ctx context.Context, id string, metaSpend, googleSpend *float64) error
}

type entryStore interface {
	List(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, error)
	FindByID(ctx context.Context, id string) (*models.TimeEntry, error)
	CountByReport(ctx context.Context, reportID string) (int, error)
	Create(ctx context.Context, entry *models.TimeEntry) error
	Update(ctx context.Context, entry *models.TimeEntry) error
	Delete(ctx context.Context, id string) error
}

type assignmentLookup interface {
	FindByID(ctx context.Context, id string) (*models.ClientService, error)
}

type employeeLookup interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
}

type submissionMetrics interface {
	RecordSubmission()
}

// ReportService owns the monthly report lifecycle and the time entries
// inside it. All writes go through the report's status gate.
type ReportService struct {
	reports     reportStore
	entries     entryStore
	assignments assignmentLookup
	employees   employeeLookup
	audit       auditWriter
	rollups     rollupInvalidator
	metrics     submissionMetrics
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(reports reportStore, entries entryStore, assignments assignmentLookup, employees employeeLookup, audit auditWriter, rollups rollupInvalidator, metrics submissionMetrics, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{
		reports:     reports,
		entries:     entries,
		assignments: assignments,
		employees:   employees,
		audit:       audit,
		rollups:     rollups,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// GetOrCreate resolves the caller's report for a month, creating an OPEN
// one on first touch.
func (s *ReportService) GetOrCreate(ctx context.Context, employeeID, monthKey string) (*models.MonthlyReport, error) {
	if !models.ValidMonthKey(monthKey) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month key must look like 2026-02")
	}
	report, err := s.reports.GetOrCreate(ctx, employeeID, monthKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report")
	}
	return report, nil
}

// Get returns a report enforcing ownership. Admins see every report.
func (s *ReportService) Get(ctx context.Context, id string, actor *models.Claims) (*models.MonthlyReport, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if actor != nil && actor.Role != models.RoleAdmin && report.EmployeeID != actor.EmployeeID {
		return nil, appErrors.ErrForbidden
	}
	return report, nil
}

// ListMine returns the caller's reports, newest month first.
func (s *ReportService) ListMine(ctx context.Context, employeeID string) ([]models.MonthlyReport, error) {
	reports, err := s.reports.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, nil
}

// MonthOverview builds the admin per-employee view of a month: every
// active employee with their report and entry count, or no report when the
// month was never touched.
func (s *ReportService) MonthOverview(ctx context.Context, monthKey string) ([]dto.EmployeeReportRow, error) {
	if !models.ValidMonthKey(monthKey) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month key must look like 2026-02")
	}

	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	reports, err := s.reports.ListByMonth(ctx, monthKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}

	byEmployee := make(map[string]models.MonthlyReport, len(reports))
	for _, r := range reports {
		byEmployee[r.EmployeeID] = r
	}

	rows := make([]dto.EmployeeReportRow, 0, len(employees))
	for _, emp := range employees {
		row := dto.EmployeeReportRow{EmployeeID: emp.ID, EmployeeName: emp.FullName}
		if report, ok := byEmployee[emp.ID]; ok {
			count, err := s.entries.CountByReport(ctx, report.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count entries")
			}
			row.Report = &dto.ReportWithEntryCount{MonthlyReport: report, EntryCount: count}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Submit locks an editable report. An empty report cannot be submitted.
func (s *ReportService) Submit(ctx context.Context, reportID string, actor *models.Claims) (*models.MonthlyReport, error) {
	report, err := s.Get(ctx, reportID, actor)
	if err != nil {
		return nil, err
	}
	if !report.Status.Editable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "report is already submitted")
	}

	count, err := s.entries.CountByReport(ctx, reportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count entries")
	}
	if count == 0 {
		return nil, appErrors.ErrEmptyReport
	}

	now := time.Now().UTC()
	if err := s.reports.Submit(ctx, reportID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "report is already submitted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit report")
	}

	report.Status = models.ReportStatusSubmitted
	report.SubmittedAt = &now
	if s.metrics != nil {
		s.metrics.RecordSubmission()
	}
	s.emitAudit(ctx, actor, models.AuditActionReportSubmit, reportID)
	s.invalidateRollups(ctx)
	s.logger.Info("report submitted",
		zap.String("report_id", reportID),
		zap.String("month_key", report.MonthKey))
	return report, nil
}

// UpdateSpend patches the ad spend figures on a report.
func (s *ReportService) UpdateSpend(ctx context.Context, reportID string, req dto.UpdateSpendRequest) (*models.MonthlyReport, error) {
	if req.MetaSpend == nil && req.GoogleSpend == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one spend figure is required")
	}
	if err := s.reports.UpdateSpend(ctx, reportID, req.MetaSpend, req.GoogleSpend); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update spend")
	}
	s.invalidateRollups(ctx)
	return s.Get(ctx, reportID, nil)
}

// ListEntries returns the entries of a report, newest first.
func (s *ReportService) ListEntries(ctx context.Context, reportID string, actor *models.Claims) ([]models.TimeEntry, error) {
	if _, err := s.Get(ctx, reportID, actor); err != nil {
		return nil, err
	}
	entries, err := s.entries.List(ctx, models.TimeEntryFilter{ReportID: reportID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list entries")
	}
	return entries, nil
}

// AddEntry books hours on an editable report owned by the actor.
func (s *ReportService) AddEntry(ctx context.Context, reportID string, req dto.CreateEntryRequest, actor *models.Claims) (*models.TimeEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	report, err := s.Get(ctx, reportID, actor)
	if err != nil {
		return nil, err
	}
	if actor != nil && report.EmployeeID != actor.EmployeeID {
		return nil, appErrors.ErrForbidden
	}
	if !report.Status.Editable() {
		return nil, appErrors.ErrReportLocked
	}
	if !models.ValidEntryHours(req.Hours) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hours must be at least 0.25 in steps of 0.25")
	}
	if err := s.checkAssignment(ctx, req.ClientServiceID, req.ClientID, req.ServiceID); err != nil {
		return nil, err
	}

	entry := &models.TimeEntry{
		ReportID:        reportID,
		EmployeeID:      report.EmployeeID,
		ClientID:        req.ClientID,
		ClientServiceID: req.ClientServiceID,
		ServiceID:       req.ServiceID,
		TaskID:          req.TaskID,
		Hours:           req.Hours,
		Notes:           req.Notes,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create entry")
	}
	s.invalidateRollups(ctx)
	return entry, nil
}

// UpdateEntry edits an existing entry while its report is editable.
func (s *ReportService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, actor *models.Claims) (*models.TimeEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	entry, report, err := s.loadEntryWithReport(ctx, entryID, actor)
	if err != nil {
		return nil, err
	}
	if !report.Status.Editable() {
		return nil, appErrors.ErrReportLocked
	}
	if !models.ValidEntryHours(req.Hours) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hours must be at least 0.25 in steps of 0.25")
	}
	if err := s.checkAssignment(ctx, req.ClientServiceID, req.ClientID, req.ServiceID); err != nil {
		return nil, err
	}

	entry.ClientID = req.ClientID
	entry.ClientServiceID = req.ClientServiceID
	entry.ServiceID = req.ServiceID
	entry.TaskID = req.TaskID
	entry.Hours = req.Hours
	entry.Notes = req.Notes
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update entry")
	}
	s.invalidateRollups(ctx)
	return entry, nil
}

// DeleteEntry removes an entry while its report is editable.
func (s *ReportService) DeleteEntry(ctx context.Context, entryID string, actor *models.Claims) error {
	_, report, err := s.loadEntryWithReport(ctx, entryID, actor)
	if err != nil {
		return err
	}
	if !report.Status.Editable() {
		return appErrors.ErrReportLocked
	}
	if err := s.entries.Delete(ctx, entryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete entry")
	}
	s.invalidateRollups(ctx)
	return nil
}

func (s *ReportService) loadEntryWithReport(ctx context.Context, entryID string, actor *models.Claims) (*models.TimeEntry, *models.MonthlyReport, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "entry not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entry")
	}
	if actor != nil && actor.Role != models.RoleAdmin && entry.EmployeeID != actor.EmployeeID {
		return nil, nil, appErrors.ErrForbidden
	}
	report, err := s.reports.FindByID(ctx, entry.ReportID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return entry, report, nil
}

// checkAssignment verifies the booked assignment belongs to the booked
// client and carries the booked service.
func (s *ReportService) checkAssignment(ctx context.Context, assignmentID, clientID, serviceID string) error {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "client service not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client service")
	}
	if assignment.ClientID != clientID {
		return appErrors.Clone(appErrors.ErrValidation, "client service does not belong to client")
	}
	if assignment.ServiceID != serviceID {
		return appErrors.Clone(appErrors.ErrValidation, "client service does not carry this service")
	}
	return nil
}

func (s *ReportService) emitAudit(ctx context.Context, actor *models.Claims, action, resourceID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "report",
		ResourceID: &resourceID,
	}
	if actor != nil {
		id := actor.EmployeeID
		log.EmployeeID = &id
	}
	s.audit.Record(ctx, log)
}

func (s *ReportService) invalidateRollups(ctx context.Context) {
	if s.rollups != nil {
		s.rollups.Invalidate(ctx)
	}
}
