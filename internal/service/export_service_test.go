package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/models"
	"github.com/brainspot/timesheet-api/internal/rollup"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
	"github.com/brainspot/timesheet-api/pkg/export"
	"github.com/brainspot/timesheet-api/pkg/jobs"
	"github.com/brainspot/timesheet-api/pkg/storage"
)

type exportJobRepoStub struct {
	jobsByID map[string]*models.ExportJob
}

func newExportJobRepoStub() *exportJobRepoStub {
	return &exportJobRepoStub{jobsByID: make(map[string]*models.ExportJob)}
}

func (r *exportJobRepoStub) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.Status = models.ExportStatusQueued
	copy := *job
	r.jobsByID[job.ID] = &copy
	return nil
}

func (r *exportJobRepoStub) FindByID(ctx context.Context, id string) (*models.ExportJob, error) {
	if job, ok := r.jobsByID[id]; ok {
		copy := *job
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *exportJobRepoStub) MarkProcessing(ctx context.Context, id string) error {
	job, ok := r.jobsByID[id]
	if !ok || job.Status != models.ExportStatusQueued {
		return sql.ErrNoRows
	}
	job.Status = models.ExportStatusProcessing
	return nil
}

func (r *exportJobRepoStub) MarkFinished(ctx context.Context, id, resultPath string, at time.Time) error {
	job, ok := r.jobsByID[id]
	if !ok {
		return sql.ErrNoRows
	}
	job.Status = models.ExportStatusFinished
	job.ResultPath = &resultPath
	job.FinishedAt = &at
	return nil
}

func (r *exportJobRepoStub) MarkFailed(ctx context.Context, id, message string, at time.Time) error {
	job, ok := r.jobsByID[id]
	if !ok {
		return sql.ErrNoRows
	}
	job.Status = models.ExportStatusFailed
	job.ErrorMessage = &message
	job.FinishedAt = &at
	return nil
}

type detailProviderStub struct {
	detail *rollup.ClientMonthDetail
	err    error
}

func (s *detailProviderStub) ClientDetail(ctx context.Context, clientID, monthKey string) (*rollup.ClientMonthDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

type captureQueue struct {
	queued []jobs.Job
}

func (q *captureQueue) Enqueue(job jobs.Job) error {
	q.queued = append(q.queued, job)
	return nil
}

func sampleDetail() *rollup.ClientMonthDetail {
	notes := "keyword research"
	return &rollup.ClientMonthDetail{
		Client:        models.Client{ID: "client-1", Name: "Acme"},
		MonthKey:      "2026-02",
		TotalHours:    3,
		EmployeeCount: 1,
		ServiceCount:  1,
		TaskCount:     1,
		ByService:     []rollup.ServiceBreakdown{{ServiceID: "svc-1", ServiceName: "SEO", Hours: 3}},
		Entries: []rollup.EnrichedEntry{{
			TimeEntry: models.TimeEntry{
				ID: "e1", Hours: 3, Notes: &notes, CreatedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
			},
			EmployeeName: "Ana Pereira",
			ServiceName:  "SEO",
			TaskName:     "Audit",
		}},
	}
}

func newExportFixture(t *testing.T) (*ExportService, *exportJobRepoStub, *captureQueue) {
	t.Helper()
	repo := newExportJobRepoStub()
	queue := &captureQueue{}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	renderers := map[models.ExportFormat]DetailRenderer{
		models.ExportFormatCSV: export.NewCSVExporter(),
		models.ExportFormatPDF: export.NewPDFExporter(),
	}
	svc := NewExportService(repo, &detailProviderStub{detail: sampleDetail()}, renderers, queue, store, signer, nil, nil)
	return svc, repo, queue
}

func TestExportServiceEnqueue(t *testing.T) {
	svc, repo, queue := newExportFixture(t)

	job, err := svc.Enqueue(context.Background(), dto.ExportRequest{
		ClientID: "client-1",
		MonthKey: "2026-02",
		Format:   models.ExportFormatCSV,
	}, "admin-1")
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusQueued, job.Status)
	require.Len(t, queue.queued, 1)
	require.Equal(t, job.ID, queue.queued[0].ID)
	require.Contains(t, repo.jobsByID, job.ID)
}

func TestExportServiceEnqueueValidation(t *testing.T) {
	svc, _, _ := newExportFixture(t)

	_, err := svc.Enqueue(context.Background(), dto.ExportRequest{
		ClientID: "client-1", MonthKey: "bad", Format: models.ExportFormatCSV,
	}, "admin-1")
	require.Error(t, err)

	_, err = svc.Enqueue(context.Background(), dto.ExportRequest{
		ClientID: "client-1", MonthKey: "2026-02", Format: "xlsx",
	}, "admin-1")
	require.Error(t, err)
}

func TestExportServiceProcessAndDownload(t *testing.T) {
	svc, repo, queue := newExportFixture(t)

	job, err := svc.Enqueue(context.Background(), dto.ExportRequest{
		ClientID: "client-1", MonthKey: "2026-02", Format: models.ExportFormatCSV,
	}, "admin-1")
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), queue.queued[0]))

	stored := repo.jobsByID[job.ID]
	require.Equal(t, models.ExportStatusFinished, stored.Status)
	require.NotNil(t, stored.ResultPath)

	status, err := svc.Status(context.Background(), job.ID, &models.Claims{EmployeeID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, models.ExportStatusFinished, status.Status)
	require.NotNil(t, status.DownloadURL)

	token := (*status.DownloadURL)[len("/exports/download?token="):]
	file, opened, err := svc.Open(context.Background(), token)
	require.NoError(t, err)
	defer file.Close()
	require.Equal(t, job.ID, opened.ID)
}

func TestExportServiceProcessFailureMarksJob(t *testing.T) {
	repo := newExportJobRepoStub()
	queue := &captureQueue{}
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	provider := &detailProviderStub{err: appErrors.Clone(appErrors.ErrNotFound, "client not found")}
	renderers := map[models.ExportFormat]DetailRenderer{
		models.ExportFormatCSV: export.NewCSVExporter(),
	}
	svc := NewExportService(repo, provider, renderers, queue, store, signer, nil, nil)

	job, err := svc.Enqueue(context.Background(), dto.ExportRequest{
		ClientID: "missing", MonthKey: "2026-02", Format: models.ExportFormatCSV,
	}, "admin-1")
	require.NoError(t, err)

	require.Error(t, svc.Process(context.Background(), queue.queued[0]))
	require.Equal(t, models.ExportStatusFailed, repo.jobsByID[job.ID].Status)
	require.NotNil(t, repo.jobsByID[job.ID].ErrorMessage)
}

func TestExportServiceStatusForbidsStrangers(t *testing.T) {
	svc, _, _ := newExportFixture(t)

	job, err := svc.Enqueue(context.Background(), dto.ExportRequest{
		ClientID: "client-1", MonthKey: "2026-02", Format: models.ExportFormatPDF,
	}, "emp-1")
	require.NoError(t, err)

	_, err = svc.Status(context.Background(), job.ID, &models.Claims{EmployeeID: "emp-2", Role: models.RoleEmployee})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
