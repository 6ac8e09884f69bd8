package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/brainspot/timesheet-api/internal/dto"
	"github.com/brainspot/timesheet-api/internal/models"
	"github.com/brainspot/timesheet-api/internal/rollup"
	appErrors "github.com/brainspot/timesheet-api/pkg/errors"
	"github.com/brainspot/timesheet-api/pkg/jobs"
)

const exportJobType = "client_month_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	FindByID(ctx context.Context, id string) (*models.ExportJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkFinished(ctx context.Context, id, resultPath string, at time.Time) error
	MarkFailed(ctx context.Context, id, message string, at time.Time) error
}

type detailProvider interface {
	ClientDetail(ctx context.Context, clientID, monthKey string) (*rollup.ClientMonthDetail, error)
}

// DetailRenderer turns a client-month detail into a downloadable artifact.
type DetailRenderer interface {
	Render(detail *rollup.ClientMonthDetail) ([]byte, error)
}

type artifactStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type urlSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string) (jobID, relPath string, err error)
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
}

type exportMetrics interface {
	RecordExport(status string)
}

// ExportService produces downloadable client-month reports in the
// background. Job state is persisted; the in-memory queue only carries
// delivery.
type ExportService struct {
	repo      exportJobStore
	rollups   detailProvider
	renderers map[models.ExportFormat]DetailRenderer
	queue     jobQueue
	storage   artifactStore
	signer    urlSigner
	metrics   exportMetrics
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(
	repo exportJobStore,
	rollups detailProvider,
	renderers map[models.ExportFormat]DetailRenderer,
	queue jobQueue,
	storage artifactStore,
	signer urlSigner,
	metrics exportMetrics,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:      repo,
		rollups:   rollups,
		renderers: renderers,
		queue:     queue,
		storage:   storage,
		signer:    signer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Enqueue validates the request, persists a QUEUED job and pushes it onto
// the worker queue.
func (s *ExportService) Enqueue(ctx context.Context, req dto.ExportRequest, actorID string) (*models.ExportJob, error) {
	if !models.ValidMonthKey(req.MonthKey) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "month key must look like 2026-02")
	}
	if _, ok := s.renderers[req.Format]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	job := &models.ExportJob{
		Params: models.ExportJobParams{
			ClientID: req.ClientID,
			MonthKey: req.MonthKey,
			Format:   req.Format,
		},
		CreatedBy: actorID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType}); err != nil {
		now := time.Now().UTC()
		if markErr := s.repo.MarkFailed(ctx, job.ID, "queue unavailable", now); markErr != nil {
			s.logger.Error("failed to mark export job", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}

	s.logger.Info("export enqueued",
		zap.String("job_id", job.ID),
		zap.String("client_id", req.ClientID),
		zap.String("month_key", req.MonthKey))
	return job, nil
}

// Process is the queue handler. It renders the artifact and records the
// terminal state on the persisted job.
func (s *ExportService) Process(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.FindByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load export job %s: %w", queued.ID, err)
	}
	if job.Status != models.ExportStatusQueued {
		return nil
	}
	if err := s.repo.MarkProcessing(ctx, job.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("mark export job processing: %w", err)
	}

	path, err := s.render(ctx, job)
	now := time.Now().UTC()
	if err != nil {
		if markErr := s.repo.MarkFailed(ctx, job.ID, err.Error(), now); markErr != nil {
			s.logger.Error("failed to mark export job", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		s.recordMetric(string(models.ExportStatusFailed))
		return err
	}

	if err := s.repo.MarkFinished(ctx, job.ID, path, now); err != nil {
		return fmt.Errorf("mark export job finished: %w", err)
	}
	s.recordMetric(string(models.ExportStatusFinished))
	s.logger.Info("export finished", zap.String("job_id", job.ID), zap.String("path", path))
	return nil
}

// Status reports job progress. Finished jobs carry a signed download URL.
func (s *ExportService) Status(ctx context.Context, jobID string, actor *models.Claims) (*dto.ExportStatusResponse, error) {
	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if actor != nil && actor.Role != models.RoleAdmin && job.CreatedBy != actor.EmployeeID {
		return nil, appErrors.ErrForbidden
	}

	resp := &dto.ExportStatusResponse{ID: job.ID, Status: job.Status, Error: job.ErrorMessage}
	if job.Status == models.ExportStatusFinished && job.ResultPath != nil {
		token, _, err := s.signer.Generate(job.ID, *job.ResultPath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
		}
		url := "/exports/download?token=" + token
		resp.DownloadURL = &url
	}
	return resp, nil
}

// Open validates a download token and returns the artifact file handle plus
// the persisted job for content type resolution.
func (s *ExportService) Open(ctx context.Context, token string) (*os.File, *models.ExportJob, error) {
	jobID, relPath, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.Status != models.ExportStatusFinished || job.ResultPath == nil || *job.ResultPath != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "export artifact not available")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export artifact")
	}
	return file, job, nil
}

func (s *ExportService) render(ctx context.Context, job *models.ExportJob) (string, error) {
	renderer, ok := s.renderers[job.Params.Format]
	if !ok {
		return "", fmt.Errorf("unsupported export format %q", job.Params.Format)
	}

	detail, err := s.rollups.ClientDetail(ctx, job.Params.ClientID, job.Params.MonthKey)
	if err != nil {
		return "", fmt.Errorf("build client detail: %w", err)
	}

	data, err := renderer.Render(detail)
	if err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}

	filename := fmt.Sprintf("%s/%s-%s.%s", job.Params.MonthKey, job.Params.ClientID, job.ID, job.Params.Format)
	path, err := s.storage.Save(filename, data)
	if err != nil {
		return "", fmt.Errorf("store export: %w", err)
	}
	return path, nil
}

func (s *ExportService) recordMetric(status string) {
	if s.metrics != nil {
		s.metrics.RecordExport(status)
	}
}
