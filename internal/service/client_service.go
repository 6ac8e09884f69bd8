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

type clientStore interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	ListAll(ctx context.Context) ([]models.Client, error)
	FindByID(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

type clientServiceStore interface {
	ListByClient(ctx context.Context, clientID string) ([]models.ClientServiceDetail, error)
	FindByID(ctx context.Context, id string) (*models.ClientService, error)
	ExistsByPair(ctx context.Context, clientID, serviceID string) (bool, error)
	Create(ctx context.Context, assignment *models.ClientService) error
	Update(ctx context.Context, assignment *models.ClientService) error
	Delete(ctx context.Context, id string) error
}

type serviceLookup interface {
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

type rollupInvalidator interface {
	Invalidate(ctx context.Context)
}

// ClientService manages client accounts and their service assignments.
type ClientService struct {
	clients     clientStore
	assignments clientServiceStore
	services    serviceLookup
	rollups     rollupInvalidator
	logger      *zap.Logger
}

// NewClientService constructs a ClientService.
func NewClientService(clients clientStore, assignments clientServiceStore, services serviceLookup, rollups rollupInvalidator, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{clients: clients, assignments: assignments, services: services, rollups: rollups, logger: logger}
}

// List returns clients matching the filter plus pagination metadata.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	clients, total, err := s.clients.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	return clients, total, nil
}

// Get returns a single client.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

// Create stores a new client account.
func (s *ClientService) Create(ctx context.Context, req dto.CreateClientRequest) (*models.Client, error) {
	client := &models.Client{
		Name:    strings.TrimSpace(req.Name),
		Company: req.Company,
		TaxID:   req.TaxID,
		Email:   req.Email,
		Phone:   req.Phone,
		Notes:   req.Notes,
	}
	if client.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	s.invalidateRollups(ctx)
	return client, nil
}

// Update applies changes to a client account.
func (s *ClientService) Update(ctx context.Context, id string, req dto.UpdateClientRequest) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = strings.TrimSpace(req.Name)
	if client.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	client.Company = req.Company
	client.TaxID = req.TaxID
	client.Email = req.Email
	client.Phone = req.Phone
	client.Notes = req.Notes

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client")
	}
	s.invalidateRollups(ctx)
	return client, nil
}

// Delete removes a client account.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.clients.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete client")
	}
	s.invalidateRollups(ctx)
	return nil
}

// ListServices returns a client's service assignments with display names.
func (s *ClientService) ListServices(ctx context.Context, clientID string) ([]models.ClientServiceDetail, error) {
	if _, err := s.Get(ctx, clientID); err != nil {
		return nil, err
	}
	details, err := s.assignments.ListByClient(ctx, clientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list client services")
	}
	return details, nil
}

// AttachService assigns a catalog service to a client with pricing.
func (s *ClientService) AttachService(ctx context.Context, clientID string, req dto.AttachServiceRequest) (*models.ClientService, error) {
	if _, err := s.Get(ctx, clientID); err != nil {
		return nil, err
	}
	if !req.PricingType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported pricing type")
	}
	if _, err := s.services.FindByID(ctx, req.ServiceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}

	exists, err := s.assignments.ExistsByPair(ctx, clientID, req.ServiceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "service already attached to client")
	}

	assignment := &models.ClientService{
		ClientID:          clientID,
		ServiceID:         req.ServiceID,
		PricingType:       req.PricingType,
		MonthlyFixedPrice: req.MonthlyFixedPrice,
		HourlyRate:        req.HourlyRate,
		OneTimePrice:      req.OneTimePrice,
		CommissionRatePct: req.CommissionRatePct,
	}
	if err := validatePricing(assignment); err != nil {
		return nil, err
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach service")
	}
	s.invalidateRollups(ctx)
	return assignment, nil
}

// UpdateAssignment changes the pricing of an existing assignment.
func (s *ClientService) UpdateAssignment(ctx context.Context, clientID, assignmentID string, req dto.UpdateClientServiceRequest) (*models.ClientService, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client service")
	}
	if assignment.ClientID != clientID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "client service not found")
	}
	if !req.PricingType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported pricing type")
	}

	assignment.PricingType = req.PricingType
	assignment.MonthlyFixedPrice = req.MonthlyFixedPrice
	assignment.HourlyRate = req.HourlyRate
	assignment.OneTimePrice = req.OneTimePrice
	assignment.CommissionRatePct = req.CommissionRatePct
	if err := validatePricing(assignment); err != nil {
		return nil, err
	}

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client service")
	}
	s.invalidateRollups(ctx)
	return assignment, nil
}

// DetachService removes a service assignment from a client.
func (s *ClientService) DetachService(ctx context.Context, clientID, assignmentID string) error {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "client service not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client service")
	}
	if assignment.ClientID != clientID {
		return appErrors.Clone(appErrors.ErrNotFound, "client service not found")
	}
	if err := s.assignments.Delete(ctx, assignmentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detach service")
	}
	s.invalidateRollups(ctx)
	return nil
}

func (s *ClientService) invalidateRollups(ctx context.Context) {
	if s.rollups != nil {
		s.rollups.Invalidate(ctx)
	}
}

// validatePricing requires the rate field matching the pricing type.
func validatePricing(assignment *models.ClientService) error {
	switch assignment.PricingType {
	case models.PricingFixedMonthly:
		if assignment.MonthlyFixedPrice == nil {
			return appErrors.Clone(appErrors.ErrValidation, "monthly_fixed_price is required for FIXED_MONTHLY pricing")
		}
	case models.PricingHourly:
		if assignment.HourlyRate == nil {
			return appErrors.Clone(appErrors.ErrValidation, "hourly_rate is required for HOURLY pricing")
		}
	case models.PricingCommission:
		if assignment.CommissionRatePct == nil {
			return appErrors.Clone(appErrors.ErrValidation, "commission_rate_pct is required for COMMISSION pricing")
		}
	case models.PricingFixedOneTime:
		if assignment.OneTimePrice == nil {
			return appErrors.Clone(appErrors.ErrValidation, "one_time_price is required for FIXED_ONE_TIME pricing")
		}
	}
	return nil
}
