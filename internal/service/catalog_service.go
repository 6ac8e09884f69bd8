package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type serviceStore interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error)
	ListAll(ctx context.Context) ([]models.Service, error)
	FindByID(ctx context.Context, id string) (*models.Service, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	Delete(ctx context.Context, id string) error
}

type taskStore interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	ListAll(ctx context.Context) ([]models.Task, error)
	FindByID(ctx context.Context, id string) (*models.Task, error)
	ExistsByName(ctx context.Context, serviceID, name string, excludeID string) (bool, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
}

// CatalogService manages the service and task catalog that time entries
// reference.
type CatalogService struct {
	services serviceStore
	tasks    taskStore
	logger   *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(services serviceStore, tasks taskStore, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{services: services, tasks: tasks, logger: logger}
}

// ListServices returns catalog services matching the filter.
func (s *CatalogService) ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error) {
	services, total, err := s.services.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	return services, total, nil
}

// GetService returns a single catalog service.
func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return svc, nil
}

// CreateService stores a new catalog service. Names are unique ignoring case.
func (s *CatalogService) CreateService(ctx context.Context, req dto.CreateServiceRequest) (*models.Service, error) {
	if !req.PricingType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported pricing type")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	exists, err := s.services.ExistsByName(ctx, name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check service name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "service name already exists")
	}

	svc := &models.Service{
		Name:        name,
		Description: req.Description,
		PricingType: req.PricingType,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service")
	}
	return svc, nil
}

// UpdateService applies changes to a catalog service.
func (s *CatalogService) UpdateService(ctx context.Context, id string, req dto.UpdateServiceRequest) (*models.Service, error) {
	if !req.PricingType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported pricing type")
	}
	svc, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if !strings.EqualFold(name, svc.Name) {
		exists, err := s.services.ExistsByName(ctx, name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check service name")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "service name already exists")
		}
	}

	svc.Name = name
	svc.Description = req.Description
	svc.PricingType = req.PricingType
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service")
	}
	return svc, nil
}

// DeleteService removes a catalog service.
func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete service")
	}
	return nil
}

// ListTasks returns tasks matching the filter.
func (s *CatalogService) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, total, nil
}

// CreateTask stores a new task under a service. Names are unique per
// service ignoring case.
func (s *CatalogService) CreateTask(ctx context.Context, serviceID string, req dto.CreateTaskRequest) (*models.Task, error) {
	if _, err := s.GetService(ctx, serviceID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	exists, err := s.tasks.ExistsByName(ctx, serviceID, name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check task name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "task name already exists for this service")
	}

	task := &models.Task{
		ServiceID: serviceID,
		Name:      name,
		Active:    true,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	return task, nil
}

// UpdateTask applies changes to a task.
func (s *CatalogService) UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if !strings.EqualFold(name, task.Name) {
		exists, err := s.tasks.ExistsByName(ctx, task.ServiceID, name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check task name")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "task name already exists for this service")
		}
	}

	task.Name = name
	if req.Active != nil {
		task.Active = *req.Active
	}
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	return task, nil
}

// DeleteTask removes a task template.
func (s *CatalogService) DeleteTask(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}
