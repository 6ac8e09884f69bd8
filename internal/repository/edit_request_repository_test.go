package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/models"
)

func newEditRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func editRequestRows(id, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "report_id", "employee_id", "month_key", "status", "admin_id", "decided_at", "reason", "created_at"}).
		AddRow(id, "rep-1", "emp-1", "2026-02", status, nil, nil, nil, time.Now())
}

func TestEditRequestRepositoryCreateAndFindPending(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()

	repo := NewEditRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO edit_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.EditRequest{
		ReportID:   "rep-1",
		EmployeeID: "emp-1",
		MonthKey:   "2026-02",
	}
	require.NoError(t, repo.Create(context.Background(), req))
	require.NotEmpty(t, req.ID)
	require.Equal(t, models.EditRequestPending, req.Status)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, report_id, employee_id")).
		WithArgs("emp-1", "rep-1", models.EditRequestPending).
		WillReturnRows(editRequestRows(req.ID, "PENDING"))

	found, err := repo.FindPending(context.Background(), "emp-1", "rep-1")
	require.NoError(t, err)
	require.Equal(t, req.ID, found.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryFindPendingNone(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()

	repo := NewEditRequestRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, report_id, employee_id")).
		WithArgs("emp-1", "rep-1", models.EditRequestPending).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindPending(context.Background(), "emp-1", "rep-1")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEditRequestRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()

	repo := NewEditRequestRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, report_id, employee_id")).
		WithArgs("PENDING", "2026-02").
		WillReturnRows(editRequestRows("req-1", "PENDING"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("PENDING", "2026-02").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.EditRequestFilter{
		Status:   []models.EditRequestStatus{models.EditRequestPending},
		MonthKey: "2026-02",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "req-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryApproveCascadesInOneTx(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()

	repo := NewEditRequestRepository(db)
	now := time.Now()
	reason := "typo in hours"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE edit_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_reports")).
		WithArgs(models.ReportStatusUnlocked, now.UTC(), "rep-1", models.ReportStatusSubmitted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Approve(context.Background(), "req-1", "rep-1", "admin-1", &reason, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryApproveAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()

	repo := NewEditRequestRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE edit_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "req-1", "rep-1", "admin-1", nil, now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryApproveRollsBackOnUnlockFailure(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()

	repo := NewEditRequestRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE edit_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_reports")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), "req-1", "rep-1", "admin-1", nil, now)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEditRequestRepositoryDecideOnce(t *testing.T) {
	db, mock, cleanup := newEditRequestRepoMock(t)
	defer cleanup()

	repo := NewEditRequestRepository(db)
	now := time.Now()
	reason := "resubmit with corrected hours"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE edit_requests")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Decide(context.Background(), "req-1", models.EditRequestApproved, "admin-1", &reason, now))

	// A second decision finds no PENDING row and must fail.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE edit_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Decide(context.Background(), "req-1", models.EditRequestDenied, "admin-1", nil, now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
