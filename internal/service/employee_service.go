package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type employeeStore interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	ListAll(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Deactivate(ctx context.Context, id string) error
}

type auditWriter interface {
	Record(ctx context.Context, log *models.AuditLog)
}

// EmployeeService manages agency staff records. Hourly cost is derived from
// the fixed compensation figures, never accepted from the caller.
type EmployeeService struct {
	repo                employeeStore
	audit               auditWriter
	workingDaysPerMonth int
	validator           *validator.Validate
	logger              *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeStore, audit auditWriter, workingDaysPerMonth int, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if workingDaysPerMonth <= 0 {
		workingDaysPerMonth = 20
	}
	return &EmployeeService{repo: repo, audit: audit, workingDaysPerMonth: workingDaysPerMonth, validator: validate, logger: logger}
}

// HourlyCost derives the cost of one worked hour from monthly compensation
// spread over the contracted workday length.
func (s *EmployeeService) HourlyCost(salary, bonus, vouchers float64, workday models.WorkdayHours) float64 {
	monthlyHours := float64(workday) * float64(s.workingDaysPerMonth)
	if monthlyHours == 0 {
		return 0
	}
	return (salary + bonus + vouchers) / monthlyHours
}

// List returns employees matching the filter plus pagination metadata.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, total, nil
}

// Get returns a single employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create validates and stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, req dto.CreateEmployeeRequest, actorID string) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be ADMIN or EMPLOYEE")
	}
	if !req.WorkdayHours.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workday_hours must be 4, 6 or 8")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "email already in use")
	}

	employee := &models.Employee{
		FullName:      strings.TrimSpace(req.FullName),
		Email:         email,
		Role:          req.Role,
		WorkdayHours:  req.WorkdayHours,
		SalaryFixed:   req.SalaryFixed,
		BonusFixed:    req.BonusFixed,
		VouchersFixed: req.VouchersFixed,
		HourlyCost:    s.HourlyCost(req.SalaryFixed, req.BonusFixed, req.VouchersFixed, req.WorkdayHours),
		Active:        true,
	}
	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	s.emitAudit(ctx, actorID, models.AuditActionEmployeeCreate, employee.ID)
	s.logger.Info("employee created", zap.String("employee_id", employee.ID))
	return employee, nil
}

// Update validates and applies changes to an employee, recomputing the
// derived hourly cost.
func (s *EmployeeService) Update(ctx context.Context, id string, req dto.UpdateEmployeeRequest, actorID string) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "role must be ADMIN or EMPLOYEE")
	}
	if !req.WorkdayHours.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workday_hours must be 4, 6 or 8")
	}

	employee, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != employee.Email {
		exists, err := s.repo.ExistsByEmail(ctx, email, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "email already in use")
		}
	}

	employee.FullName = strings.TrimSpace(req.FullName)
	employee.Email = email
	employee.Role = req.Role
	employee.WorkdayHours = req.WorkdayHours
	employee.SalaryFixed = req.SalaryFixed
	employee.BonusFixed = req.BonusFixed
	employee.VouchersFixed = req.VouchersFixed
	employee.HourlyCost = s.HourlyCost(req.SalaryFixed, req.BonusFixed, req.VouchersFixed, req.WorkdayHours)
	if req.Active != nil {
		employee.Active = *req.Active
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}

	s.emitAudit(ctx, actorID, models.AuditActionEmployeeUpdate, employee.ID)
	return employee, nil
}

// Deactivate soft-deletes an employee. Historical reports and entries stay.
func (s *EmployeeService) Deactivate(ctx context.Context, id string, actorID string) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate employee")
	}
	s.emitAudit(ctx, actorID, models.AuditActionEmployeeDeactivate, id)
	return nil
}

func (s *EmployeeService) emitAudit(ctx context.Context, actorID, action, resourceID string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, &models.AuditLog{
		EmployeeID: &actorID,
		Action:     action,
		Resource:   "employee",
		ResourceID: &resourceID,
	})
}
