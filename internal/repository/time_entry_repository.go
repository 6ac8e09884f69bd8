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

const timeEntryColumns = `id, report_id, employee_id, client_id, client_service_id, service_id, task_id, hours, notes, created_at, updated_at`

// TimeEntryRepository manages persistence for logged work entries.
type TimeEntryRepository struct {
	db *sqlx.DB
}

// NewTimeEntryRepository constructs a TimeEntryRepository.
func NewTimeEntryRepository(db *sqlx.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// List returns entries matching the filter, most recent first.
func (r *TimeEntryRepository) List(ctx context.Context, filter models.TimeEntryFilter) ([]models.TimeEntry, error) {
	base := "FROM time_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ReportID != "" {
		conditions = append(conditions, fmt.Sprintf("report_id = $%d", len(args)+1))
		args = append(args, filter.ReportID)
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC", timeEntryColumns, base)
	var entries []models.TimeEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return entries, nil
}

// ListAll returns every entry for rollup queries.
func (r *TimeEntryRepository) ListAll(ctx context.Context) ([]models.TimeEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM time_entries", timeEntryColumns)
	var entries []models.TimeEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list all time entries: %w", err)
	}
	return entries, nil
}

// FindByID fetches an entry by ID.
func (r *TimeEntryRepository) FindByID(ctx context.Context, id string) (*models.TimeEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM time_entries WHERE id = $1", timeEntryColumns)
	var entry models.TimeEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountByReport returns how many entries a report carries.
func (r *TimeEntryRepository) CountByReport(ctx context.Context, reportID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM time_entries WHERE report_id = $1`, reportID); err != nil {
		return 0, fmt.Errorf("count report entries: %w", err)
	}
	return count, nil
}

// Create inserts a new entry record.
func (r *TimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO time_entries (id, report_id, employee_id, client_id, client_service_id, service_id, task_id, hours, notes, created_at, updated_at)
		VALUES (:id, :report_id, :employee_id, :client_id, :client_service_id, :service_id, :task_id, :hours, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create time entry: %w", err)
	}
	return nil
}

// Update modifies an existing entry. The owning report and employee stay
// fixed; only what was worked on and for how long can change.
func (r *TimeEntryRepository) Update(ctx context.Context, entry *models.TimeEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_entries
		SET client_id = :client_id, client_service_id = :client_service_id, service_id = :service_id,
			task_id = :task_id, hours = :hours, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update time entry: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (r *TimeEntryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
