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
)

func newReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func reportRows(id, employeeID, monthKey, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "employee_id", "month_key", "status", "submitted_at", "unlocked_at", "meta_spend", "google_spend", "created_at"}).
		AddRow(id, employeeID, monthKey, status, nil, nil, nil, nil, time.Now())
}

func TestReportRepositoryGetOrCreateInsertsOnce(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_reports")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, month_key")).
		WithArgs("emp-1", "2026-02").
		WillReturnRows(reportRows("rep-1", "emp-1", "2026-02", "OPEN"))

	report, err := repo.GetOrCreate(context.Background(), "emp-1", "2026-02")
	require.NoError(t, err)
	require.Equal(t, "rep-1", report.ID)
	require.Equal(t, "OPEN", string(report.Status))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryGetOrCreateReturnsExisting(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)

	// The conflict clause swallows the insert; the re-read still resolves
	// the row another caller created.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO monthly_reports")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, employee_id, month_key")).
		WithArgs("emp-1", "2026-02").
		WillReturnRows(reportRows("rep-existing", "emp-1", "2026-02", "SUBMITTED"))

	report, err := repo.GetOrCreate(context.Background(), "emp-1", "2026-02")
	require.NoError(t, err)
	require.Equal(t, "rep-existing", report.ID)
	require.Equal(t, "SUBMITTED", string(report.Status))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositorySubmitGuard(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_reports")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Submit(context.Background(), "rep-1", now))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_reports")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Submit(context.Background(), "rep-1", now)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateSpend(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	meta := 1250.0

	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_reports")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateSpend(context.Background(), "rep-1", &meta, nil))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE monthly_reports")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateSpend(context.Background(), "missing", &meta, nil)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
