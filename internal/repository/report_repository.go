package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/brainspot/timesheet-api/internal/models"
)

const reportColumns = `id, employee_id, month_key, status, submitted_at, unlocked_at, meta_spend, google_spend, created_at`

// ReportRepository manages monthly report rows and their guarded lifecycle
// transitions. All state changes are single conditional UPDATEs so that a
// concurrent transition loses cleanly instead of overwriting.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// GetOrCreate returns the report for (employee, monthKey), creating an OPEN
// one if none exists. The insert is idempotent under the unique
// (employee_id, month_key) constraint, so concurrent callers converge on the
// same row.
func (r *ReportRepository) GetOrCreate(ctx context.Context, employeeID, monthKey string) (*models.MonthlyReport, error) {
	report := models.MonthlyReport{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		MonthKey:   monthKey,
		Status:     models.ReportStatusOpen,
		CreatedAt:  time.Now().UTC(),
	}

	const insert = `INSERT INTO monthly_reports (id, employee_id, month_key, status, created_at)
		VALUES (:id, :employee_id, :month_key, :status, :created_at)
		ON CONFLICT (employee_id, month_key) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, insert, &report); err != nil {
		return nil, fmt.Errorf("upsert report: %w", err)
	}

	return r.FindByEmployeeMonth(ctx, employeeID, monthKey)
}

// FindByID fetches a report by ID.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.MonthlyReport, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_reports WHERE id = $1", reportColumns)
	var report models.MonthlyReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// FindByEmployeeMonth fetches the unique report for an employee and month.
func (r *ReportRepository) FindByEmployeeMonth(ctx context.Context, employeeID, monthKey string) (*models.MonthlyReport, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_reports WHERE employee_id = $1 AND month_key = $2", reportColumns)
	var report models.MonthlyReport
	if err := r.db.GetContext(ctx, &report, query, employeeID, monthKey); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListByMonth returns every report for a month.
func (r *ReportRepository) ListByMonth(ctx context.Context, monthKey string) ([]models.MonthlyReport, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_reports WHERE month_key = $1 ORDER BY created_at ASC", reportColumns)
	var reports []models.MonthlyReport
	if err := r.db.SelectContext(ctx, &reports, query, monthKey); err != nil {
		return nil, fmt.Errorf("list reports by month: %w", err)
	}
	return reports, nil
}

// ListByEmployee returns an employee's reports, most recent month first.
func (r *ReportRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.MonthlyReport, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_reports WHERE employee_id = $1 ORDER BY month_key DESC", reportColumns)
	var reports []models.MonthlyReport
	if err := r.db.SelectContext(ctx, &reports, query, employeeID); err != nil {
		return nil, fmt.Errorf("list reports by employee: %w", err)
	}
	return reports, nil
}

// ListAll returns every report for rollup queries.
func (r *ReportRepository) ListAll(ctx context.Context) ([]models.MonthlyReport, error) {
	query := fmt.Sprintf("SELECT %s FROM monthly_reports", reportColumns)
	var reports []models.MonthlyReport
	if err := r.db.SelectContext(ctx, &reports, query); err != nil {
		return nil, fmt.Errorf("list all reports: %w", err)
	}
	return reports, nil
}

// Submit moves an editable report to SUBMITTED. The status guard in the
// WHERE clause makes a lost race surface as sql.ErrNoRows.
func (r *ReportRepository) Submit(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE monthly_reports
		SET status = $1, submitted_at = $2
		WHERE id = $3 AND status IN ($4, $5)`
	result, err := r.db.ExecContext(ctx, query,
		models.ReportStatusSubmitted, at.UTC(), id,
		models.ReportStatusOpen, models.ReportStatusUnlocked)
	if err != nil {
		return fmt.Errorf("submit report: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check submit rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateSpend patches the ad spend figures on a report. Nil values leave the
// stored figure untouched.
func (r *ReportRepository) UpdateSpend(ctx context.Context, id string, metaSpend, googleSpend *float64) error {
	const query = `UPDATE monthly_reports
		SET meta_spend = COALESCE($1, meta_spend),
			google_spend = COALESCE($2, google_spend)
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, metaSpend, googleSpend, id)
	if err != nil {
		return fmt.Errorf("update report spend: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check spend rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
