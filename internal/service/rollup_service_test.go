package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/models"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
)

type memoryCacheStub struct {
	values map[string][]byte
	gets   int
	hits   int
}

func newMemoryCacheStub() *memoryCacheStub {
	return &memoryCacheStub{values: make(map[string][]byte)}
}

func (c *memoryCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	c.hits++
	return json.Unmarshal(raw, dest)
}

func (c *memoryCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *memoryCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.values {
		if strings.HasPrefix(key, prefix) {
			delete(c.values, key)
		}
	}
	return nil
}

type clientListStub struct {
	clients []models.Client
}

func (s *clientListStub) ListAll(ctx context.Context) ([]models.Client, error) { return s.clients, nil }

type reportListStub struct {
	reports []models.MonthlyReport
}

func (s *reportListStub) ListAll(ctx context.Context) ([]models.MonthlyReport, error) {
	return s.reports, nil
}

type entryListStub struct {
	entries []models.TimeEntry
}

func (s *entryListStub) ListAll(ctx context.Context) ([]models.TimeEntry, error) {
	return s.entries, nil
}

type serviceListStub struct {
	services []models.Service
}

func (s *serviceListStub) ListAll(ctx context.Context) ([]models.Service, error) {
	return s.services, nil
}

type taskListStub struct {
	tasks []models.Task
}

func (s *taskListStub) ListAll(ctx context.Context) ([]models.Task, error) { return s.tasks, nil }

func newRollupFixture(cache rollupCache) *RollupService {
	clients := &clientListStub{clients: []models.Client{{ID: "client-1", Name: "Acme"}}}
	reports := &reportListStub{reports: []models.MonthlyReport{
		{ID: "rep-1", EmployeeID: "emp-1", MonthKey: "2026-02", Status: models.ReportStatusSubmitted},
	}}
	entries := &entryListStub{entries: []models.TimeEntry{
		{ID: "e1", ReportID: "rep-1", EmployeeID: "emp-1", ClientID: "client-1", ServiceID: "svc-1", TaskID: "task-1", Hours: 3},
	}}
	employees := &employeeListStub{employees: []models.Employee{{ID: "emp-1", FullName: "Ana Pereira"}}}
	services := &serviceListStub{services: []models.Service{{ID: "svc-1", Name: "SEO"}}}
	tasks := &taskListStub{tasks: []models.Task{{ID: "task-1", ServiceID: "svc-1", Name: "Audit"}}}
	return NewRollupService(clients, reports, entries, employees, services, tasks, cache, time.Minute, true, nil, nil)
}

func TestRollupServiceClientRowsCaches(t *testing.T) {
	cache := newMemoryCacheStub()
	svc := newRollupFixture(cache)

	rows, err := svc.ClientRows(context.Background(), "2026-02")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.InDelta(t, 3.0, rows[0].TotalHours, 1e-9)
	require.Equal(t, 0, cache.hits)

	again, err := svc.ClientRows(context.Background(), "2026-02")
	require.NoError(t, err)
	require.Equal(t, rows, again)
	require.Equal(t, 1, cache.hits)
}

func TestRollupServiceInvalidateDropsCache(t *testing.T) {
	cache := newMemoryCacheStub()
	svc := newRollupFixture(cache)

	_, err := svc.ClientRows(context.Background(), "2026-02")
	require.NoError(t, err)
	require.NotEmpty(t, cache.values)

	svc.Invalidate(context.Background())
	require.Empty(t, cache.values)
}

func TestRollupServiceClientDetailUnknownClient(t *testing.T) {
	svc := newRollupFixture(newMemoryCacheStub())

	_, err := svc.ClientDetail(context.Background(), "missing", "2026-02")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRollupServiceEmployeeSummary(t *testing.T) {
	svc := newRollupFixture(newMemoryCacheStub())

	summary, err := svc.EmployeeSummary(context.Background(), "emp-1", "2026-02")
	require.NoError(t, err)
	require.InDelta(t, 3.0, summary.TotalHours, 1e-9)
	require.Equal(t, 1, summary.EntryCount)
	require.Len(t, summary.ByClient, 1)
	require.Equal(t, "Acme", summary.ByClient[0].ClientName)
}

func TestRollupServiceRejectsBadMonth(t *testing.T) {
	svc := newRollupFixture(newMemoryCacheStub())

	_, err := svc.ClientRows(context.Background(), "feb-2026")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRollupServiceDisabledCacheStillServes(t *testing.T) {
	svc := newRollupFixture(nil)

	rows, err := svc.ClientRows(context.Background(), "2026-02")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
