package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brainspot/timesheet-api/internal/models"
)

const editRequestColumns = `id, report_id, employee_id, month_key, status, admin_id, decided_at, reason, created_at`

// EditRequestRepository manages unlock request rows. Decisions are guarded
// conditional UPDATEs so a request can be decided at most once.
type EditRequestRepository struct {
	db *sqlx.DB
}

// NewEditRequestRepository constructs an EditRequestRepository.
func NewEditRequestRepository(db *sqlx.DB) *EditRequestRepository {
	return &EditRequestRepository{db: db}
}

// Create inserts a new PENDING request.
func (r *EditRequestRepository) Create(ctx context.Context, req *models.EditRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.Status = models.EditRequestPending

	const query = `INSERT INTO edit_requests (id, report_id, employee_id, month_key, status, created_at)
		VALUES (:id, :report_id, :employee_id, :month_key, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create edit request: %w", err)
	}
	return nil
}

// FindByID fetches a request by ID.
func (r *EditRequestRepository) FindByID(ctx context.Context, id string) (*models.EditRequest, error) {
	query := fmt.Sprintf("SELECT %s FROM edit_requests WHERE id = $1", editRequestColumns)
	var req models.EditRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// FindPending returns the open request for (employee, report) if one exists.
func (r *EditRequestRepository) FindPending(ctx context.Context, employeeID, reportID string) (*models.EditRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM edit_requests
		WHERE employee_id = $1 AND report_id = $2 AND status = $3
		ORDER BY created_at DESC LIMIT 1`, editRequestColumns)
	var req models.EditRequest
	if err := r.db.GetContext(ctx, &req, query, employeeID, reportID, models.EditRequestPending); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests matching the filter, newest first, plus total count.
func (r *EditRequestRepository) List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, int, error) {
	base := "FROM edit_requests WHERE 1=1"
	var conditions []string
	var args []interface{}

	if len(filter.Status) > 0 {
		placeholders := make([]string, 0, len(filter.Status))
		for _, status := range filter.Status {
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.ReportID != "" {
		conditions = append(conditions, fmt.Sprintf("report_id = $%d", len(args)+1))
		args = append(args, filter.ReportID)
	}
	if filter.MonthKey != "" {
		conditions = append(conditions, fmt.Sprintf("month_key = $%d", len(args)+1))
		args = append(args, filter.MonthKey)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", editRequestColumns, base, limit, offset)
	var requests []models.EditRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list edit requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count edit requests: %w", err)
	}

	return requests, total, nil
}

// Approve decides a PENDING request and unlocks its report in a single
// transaction, so a committed approval always carries its cascade. A
// request that is no longer PENDING surfaces as sql.ErrNoRows.
func (r *EditRequestRepository) Approve(ctx context.Context, id, reportID, adminID string, reason *string, at time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve edit request: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const decide = `UPDATE edit_requests
		SET status = $1, admin_id = $2, reason = $3, decided_at = $4
		WHERE id = $5 AND status = $6`
	result, err := tx.ExecContext(ctx, decide,
		models.EditRequestApproved, adminID, reason, at.UTC(), id, models.EditRequestPending)
	if err != nil {
		return fmt.Errorf("approve edit request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check approve rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	const unlock = `UPDATE monthly_reports
		SET status = $1, unlocked_at = $2
		WHERE id = $3 AND status = $4`
	if _, err := tx.ExecContext(ctx, unlock,
		models.ReportStatusUnlocked, at.UTC(), reportID, models.ReportStatusSubmitted); err != nil {
		return fmt.Errorf("unlock report: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve edit request: %w", err)
	}
	commit = true
	return nil
}

// Decide moves a PENDING request to a terminal status and records who
// decided, when, and the optional reason. A request that is no longer
// PENDING surfaces as sql.ErrNoRows.
func (r *EditRequestRepository) Decide(ctx context.Context, id string, status models.EditRequestStatus, adminID string, reason *string, at time.Time) error {
	const query = `UPDATE edit_requests
		SET status = $1, admin_id = $2, reason = $3, decided_at = $4
		WHERE id = $5 AND status = $6`
	result, err := r.db.ExecContext(ctx, query, status, adminID, reason, at.UTC(), id, models.EditRequestPending)
	if err != nil {
		return fmt.Errorf("decide edit request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check decide rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
