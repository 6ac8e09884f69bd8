package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brainspot/timesheet-api/internal/models"
	"github.com/brainspot/timesheet-api/internal/rollup"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type rollupCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type reportReader interface {
	ListAll(ctx context.Context) ([]models.MonthlyReport, error)
}

type entryReader interface {
	ListAll(ctx context.Context) ([]models.TimeEntry, error)
}

type clientReader interface {
	ListAll(ctx context.Context) ([]models.Client, error)
}

type catalogReader interface {
	ListAll(ctx context.Context) ([]models.Service, error)
}

type taskReader interface {
	ListAll(ctx context.Context) ([]models.Task, error)
}

type rollupMetrics interface {
	RecordRollupLookup(hit bool)
}

const rollupKeyPrefix = "rollup:"

// RollupService aggregates logged hours into client-month and
// employee-month views. Results are cached per key and invalidated
// wholesale whenever any underlying data changes.
type RollupService struct {
	clients   clientReader
	reports   reportReader
	entries   entryReader
	employees employeeLookup
	services  catalogReader
	tasks     taskReader
	cache     rollupCache
	ttl       time.Duration
	enabled   bool
	metrics   rollupMetrics
	logger    *zap.Logger
}

// NewRollupService constructs a RollupService. A nil cache or a zero TTL
// disables caching.
func NewRollupService(
	clients clientReader,
	reports reportReader,
	entries entryReader,
	employees employeeLookup,
	services catalogReader,
	tasks taskReader,
	cache rollupCache,
	ttl time.Duration,
	enabled bool,
	metrics rollupMetrics,
	logger *zap.Logger,
) *RollupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil || ttl <= 0 {
		enabled = false
	}
	return &RollupService{
		clients:   clients,
		reports:   reports,
		entries:   entries,
		employees: employees,
		services:  services,
		tasks:     tasks,
		cache:     cache,
		ttl:       ttl,
		enabled:   enabled,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *RollupService) recordLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordRollupLookup(hit)
	}
}

// ClientRows returns the per-client summary for a month. Clients without
// hours appear with zero totals at the end.
func (s *RollupService) ClientRows(ctx context.Context, monthKey string) ([]rollup.ClientMonthRow, error) {
	if !models.ValidMonthKey(monthKey) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month key must look like 2026-02")
	}

	key := fmt.Sprintf("%sclients:%s", rollupKeyPrefix, monthKey)
	if s.enabled {
		var cached []rollup.ClientMonthRow
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordLookup(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("rollup cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.recordLookup(false)
	}

	clients, reports, entries, services, _, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	rows := rollup.BuildClientMonthRows(monthKey, clients, reports, entries, services)
	s.store(ctx, key, rows)
	return rows, nil
}

// ClientDetail returns the full breakdown for one client and month.
func (s *RollupService) ClientDetail(ctx context.Context, clientID, monthKey string) (*rollup.ClientMonthDetail, error) {
	if !models.ValidMonthKey(monthKey) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month key must look like 2026-02")
	}

	key := fmt.Sprintf("%sclient:%s:%s", rollupKeyPrefix, clientID, monthKey)
	if s.enabled {
		var cached rollup.ClientMonthDetail
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordLookup(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("rollup cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.recordLookup(false)
	}

	clients, reports, entries, services, employees, tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	detail := rollup.BuildClientMonthDetail(clientID, monthKey, clients, reports, entries, employees, services, tasks)
	if detail == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
	}
	s.store(ctx, key, detail)
	return detail, nil
}

// EmployeeSummary returns what an employee logged in a month, grouped by
// client.
func (s *RollupService) EmployeeSummary(ctx context.Context, employeeID, monthKey string) (*rollup.EmployeeMonthSummary, error) {
	if !models.ValidMonthKey(monthKey) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month key must look like 2026-02")
	}

	key := fmt.Sprintf("%semployee:%s:%s", rollupKeyPrefix, employeeID, monthKey)
	if s.enabled {
		var cached rollup.EmployeeMonthSummary
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordLookup(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("rollup cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.recordLookup(false)
	}

	clients, reports, entries, services, employees, tasks, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	summary := rollup.BuildEmployeeMonthSummary(employeeID, monthKey, clients, reports, entries, employees, services, tasks)
	s.store(ctx, key, summary)
	return &summary, nil
}

// Invalidate drops every cached rollup payload.
func (s *RollupService) Invalidate(ctx context.Context) {
	if !s.enabled {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, rollupKeyPrefix+"*"); err != nil {
		s.logger.Warn("rollup cache invalidation failed", zap.Error(err))
	}
}

func (s *RollupService) load(ctx context.Context) (
	[]models.Client,
	[]models.MonthlyReport,
	[]models.TimeEntry,
	[]models.Service,
	[]models.Employee,
	[]models.Task,
	error,
) {
	clients, err := s.clients.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clients")
	}
	reports, err := s.reports.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reports")
	}
	entries, err := s.entries.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entries")
	}
	services, err := s.services.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load services")
	}
	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load tasks")
	}
	return clients, reports, entries, services, employees, tasks, nil
}

func (s *RollupService) store(ctx context.Context, key string, value interface{}) {
	if !s.enabled {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("rollup cache write failed", zap.String("key", key), zap.Error(err))
	}
}
