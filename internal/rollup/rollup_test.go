package rollup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brainspot/timesheet-api/internal/models"
)

func fixtureMonth() (clients []models.Client, employees []models.Employee, services []models.Service, tasks []models.Task, reports []models.MonthlyReport, entries []models.TimeEntry) {
	clients = []models.Client{
		{ID: "cli-acme", Name: "Acme"},
		{ID: "cli-idle", Name: "Idle Co"},
	}
	employees = []models.Employee{
		{ID: "emp-a", FullName: "Anna Kowalska"},
		{ID: "emp-b", FullName: "Martin Vasilev"},
	}
	services = []models.Service{
		{ID: "svc-seo", Name: "SEO"},
		{ID: "svc-ppc", Name: "PPC"},
	}
	tasks = []models.Task{
		{ID: "tsk-audit", ServiceID: "svc-seo", Name: "Audit"},
		{ID: "tsk-setup", ServiceID: "svc-ppc", Name: "Setup"},
	}
	reports = []models.MonthlyReport{
		{ID: "rep-a", EmployeeID: "emp-a", MonthKey: "2026-02", Status: models.ReportStatusOpen},
		{ID: "rep-b", EmployeeID: "emp-b", MonthKey: "2026-02", Status: models.ReportStatusOpen},
		{ID: "rep-a-jan", EmployeeID: "emp-a", MonthKey: "2026-01", Status: models.ReportStatusSubmitted},
	}
	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	entries = []models.TimeEntry{
		{ID: "e1", ReportID: "rep-a", EmployeeID: "emp-a", ClientID: "cli-acme", ServiceID: "svc-seo", TaskID: "tsk-audit", Hours: 3, CreatedAt: base},
		{ID: "e2", ReportID: "rep-a", EmployeeID: "emp-a", ClientID: "cli-acme", ServiceID: "svc-seo", TaskID: "tsk-audit", Hours: 2, CreatedAt: base.Add(time.Hour)},
		{ID: "e3", ReportID: "rep-b", EmployeeID: "emp-b", ClientID: "cli-acme", ServiceID: "svc-ppc", TaskID: "tsk-setup", Hours: 4, CreatedAt: base.Add(2 * time.Hour)},
		// January entry must never leak into February rollups.
		{ID: "e4", ReportID: "rep-a-jan", EmployeeID: "emp-a", ClientID: "cli-acme", ServiceID: "svc-seo", TaskID: "tsk-audit", Hours: 8, CreatedAt: base.AddDate(0, -1, 0)},
	}
	return
}

func TestBuildClientMonthRows(t *testing.T) {
	clients, _, services, _, reports, entries := fixtureMonth()

	rows := BuildClientMonthRows("2026-02", clients, reports, entries, services)
	require.Len(t, rows, 2)

	acme := rows[0]
	require.Equal(t, "Acme", acme.Client.Name)
	require.InDelta(t, 9.0, acme.TotalHours, 1e-9)
	require.Equal(t, 2, acme.EmployeeCount)
	require.Len(t, acme.TopServices, 2)
	require.Equal(t, "SEO", acme.TopServices[0].ServiceName)
	require.InDelta(t, 5.0, acme.TopServices[0].Hours, 1e-9)
	require.Equal(t, "PPC", acme.TopServices[1].ServiceName)
	require.InDelta(t, 4.0, acme.TopServices[1].Hours, 1e-9)

	// Zero-hour clients stay visible and sort last.
	idle := rows[1]
	require.Equal(t, "Idle Co", idle.Client.Name)
	require.Zero(t, idle.TotalHours)
	require.Zero(t, idle.EmployeeCount)
	require.Empty(t, idle.TopServices)
}

func TestBuildClientMonthRowsEmptyMonth(t *testing.T) {
	clients, _, services, _, reports, entries := fixtureMonth()

	rows := BuildClientMonthRows("2026-05", clients, reports, entries, services)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.Zero(t, row.TotalHours)
		require.Zero(t, row.EmployeeCount)
	}
}

func TestBuildClientMonthDetail(t *testing.T) {
	clients, employees, services, tasks, reports, entries := fixtureMonth()

	detail := BuildClientMonthDetail("cli-acme", "2026-02", clients, reports, entries, employees, services, tasks)
	require.NotNil(t, detail)
	require.InDelta(t, 9.0, detail.TotalHours, 1e-9)
	require.Equal(t, 2, detail.EmployeeCount)
	require.Equal(t, 2, detail.ServiceCount)
	require.Equal(t, 2, detail.TaskCount)

	require.Len(t, detail.ByEmployee, 2)
	require.Equal(t, "Anna Kowalska", detail.ByEmployee[0].EmployeeName)
	require.InDelta(t, 5.0, detail.ByEmployee[0].Hours, 1e-9)
	require.InDelta(t, 4.0, detail.ByEmployee[1].Hours, 1e-9)

	require.Len(t, detail.ByService, 2)
	require.Equal(t, "SEO", detail.ByService[0].ServiceName)
	require.InDelta(t, 5.0, detail.ByService[0].Hours, 1e-9)
	require.Equal(t, "PPC", detail.ByService[1].ServiceName)
	require.InDelta(t, 4.0, detail.ByService[1].Hours, 1e-9)

	// Entries are most recent first.
	require.Len(t, detail.Entries, 3)
	require.Equal(t, "e3", detail.Entries[0].ID)
	require.Equal(t, "e1", detail.Entries[2].ID)
}

func TestBuildClientMonthDetailPartitionSums(t *testing.T) {
	clients, employees, services, tasks, reports, entries := fixtureMonth()

	detail := BuildClientMonthDetail("cli-acme", "2026-02", clients, reports, entries, employees, services, tasks)
	require.NotNil(t, detail)

	sum := func(vals []float64) float64 {
		var s float64
		for _, v := range vals {
			s += v
		}
		return s
	}

	var byEmp, bySvc, byTsk []float64
	for _, b := range detail.ByEmployee {
		byEmp = append(byEmp, b.Hours)
	}
	for _, b := range detail.ByService {
		bySvc = append(bySvc, b.Hours)
	}
	for _, b := range detail.ByTask {
		byTsk = append(byTsk, b.Hours)
	}

	require.InDelta(t, detail.TotalHours, sum(byEmp), 1e-9)
	require.InDelta(t, detail.TotalHours, sum(bySvc), 1e-9)
	require.InDelta(t, detail.TotalHours, sum(byTsk), 1e-9)
}

func TestBuildClientMonthDetailUnknownClient(t *testing.T) {
	clients, employees, services, tasks, reports, entries := fixtureMonth()

	detail := BuildClientMonthDetail("cli-missing", "2026-02", clients, reports, entries, employees, services, tasks)
	require.Nil(t, detail)
}

func TestDanglingReferencesResolveToUnknown(t *testing.T) {
	clients, employees, services, _, reports, entries := fixtureMonth()

	// Task dimension wiped entirely: every task reference dangles.
	detail := BuildClientMonthDetail("cli-acme", "2026-02", clients, reports, entries, employees, services, nil)
	require.NotNil(t, detail)
	for _, b := range detail.ByTask {
		require.Equal(t, UnknownName, b.TaskName)
	}
	for _, e := range detail.Entries {
		require.Equal(t, UnknownName, e.TaskName)
	}
	// Totals are unaffected by dangling references.
	require.InDelta(t, 9.0, detail.TotalHours, 1e-9)
}

func TestBuildEmployeeMonthSummary(t *testing.T) {
	clients, employees, services, tasks, reports, entries := fixtureMonth()

	summary := BuildEmployeeMonthSummary("emp-a", "2026-02", clients, reports, entries, employees, services, tasks)
	require.InDelta(t, 5.0, summary.TotalHours, 1e-9)
	require.Equal(t, 2, summary.EntryCount)
	require.Len(t, summary.ByClient, 1)
	require.Equal(t, "Acme", summary.ByClient[0].ClientName)
	require.Len(t, summary.Entries, 2)
	require.Equal(t, "e2", summary.Entries[0].ID)
}

func TestMonthFilterRoundTrip(t *testing.T) {
	_, _, _, _, reports, entries := fixtureMonth()

	filtered := entriesForMonth(entries, reports, "2026-02")
	require.Len(t, filtered, 3)
	seen := make(map[string]bool)
	for _, e := range filtered {
		seen[e.ID] = true
	}
	require.True(t, seen["e1"] && seen["e2"] && seen["e3"])
	require.False(t, seen["e4"])
}

func TestTopServicesTieKeepsFirstEncountered(t *testing.T) {
	clients := []models.Client{{ID: "cli-1", Name: "Tie"}}
	services := []models.Service{
		{ID: "svc-1", Name: "Design"},
		{ID: "svc-2", Name: "Copy"},
		{ID: "svc-3", Name: "Video"},
	}
	reports := []models.MonthlyReport{{ID: "rep-1", EmployeeID: "emp-1", MonthKey: "2026-03"}}
	entries := []models.TimeEntry{
		{ID: "t1", ReportID: "rep-1", EmployeeID: "emp-1", ClientID: "cli-1", ServiceID: "svc-1", Hours: 2},
		{ID: "t2", ReportID: "rep-1", EmployeeID: "emp-1", ClientID: "cli-1", ServiceID: "svc-2", Hours: 2},
		{ID: "t3", ReportID: "rep-1", EmployeeID: "emp-1", ClientID: "cli-1", ServiceID: "svc-3", Hours: 1},
	}

	rows := BuildClientMonthRows("2026-03", clients, reports, entries, services)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].TopServices, 2)
	require.Equal(t, "Design", rows[0].TopServices[0].ServiceName)
	require.Equal(t, "Copy", rows[0].TopServices[1].ServiceName)
}
