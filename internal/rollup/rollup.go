// Package rollup computes monthly hour aggregations over fully
// materialized entity collections. Every function is pure: no I/O, no
// mutation of inputs, output derived on each call.
package rollup

import (
	"sort"

	"github.com/brainspot/timesheet-api/internal/models"
)

// UnknownName is the display placeholder for dangling dimension
// references, e.g. a deleted service still referenced by old entries.
const UnknownName = "Unknown"

// ServiceHours is one slot of a top-services list.
type ServiceHours struct {
	ServiceName string  `json:"service_name"`
	Hours       float64 `json:"hours"`
}

// ClientMonthRow is one line of the admin client overview for a month.
type ClientMonthRow struct {
	Client        models.Client  `json:"client"`
	TotalHours    float64        `json:"total_hours"`
	EmployeeCount int            `json:"employee_count"`
	TopServices   []ServiceHours `json:"top_services"`
}

// EmployeeHours is a per-employee breakdown line.
type EmployeeHours struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Hours        float64 `json:"hours"`
}

// ServiceBreakdown is a per-service breakdown line.
type ServiceBreakdown struct {
	ServiceID   string  `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Hours       float64 `json:"hours"`
}

// TaskBreakdown is a per-task breakdown line.
type TaskBreakdown struct {
	TaskID   string  `json:"task_id"`
	TaskName string  `json:"task_name"`
	Hours    float64 `json:"hours"`
}

// ClientHours is a per-client breakdown line for employee-facing views.
type ClientHours struct {
	ClientID   string  `json:"client_id"`
	ClientName string  `json:"client_name"`
	Hours      float64 `json:"hours"`
}

// EnrichedEntry is a time entry decorated with display names.
type EnrichedEntry struct {
	models.TimeEntry
	EmployeeName string `json:"employee_name"`
	ClientName   string `json:"client_name"`
	ServiceName  string `json:"service_name"`
	TaskName     string `json:"task_name"`
}

// ClientMonthDetail is the drill-down view for one client and month.
type ClientMonthDetail struct {
	Client        models.Client      `json:"client"`
	MonthKey      string             `json:"month_key"`
	TotalHours    float64            `json:"total_hours"`
	EmployeeCount int                `json:"employee_count"`
	ServiceCount  int                `json:"service_count"`
	TaskCount     int                `json:"task_count"`
	ByEmployee    []EmployeeHours    `json:"by_employee"`
	ByService     []ServiceBreakdown `json:"by_service"`
	ByTask        []TaskBreakdown    `json:"by_task"`
	Entries       []EnrichedEntry    `json:"entries"`
}

// EmployeeMonthSummary is the employee-facing rollup of one report month.
type EmployeeMonthSummary struct {
	EmployeeID string          `json:"employee_id"`
	MonthKey   string          `json:"month_key"`
	TotalHours float64         `json:"total_hours"`
	EntryCount int             `json:"entry_count"`
	ByClient   []ClientHours   `json:"by_client"`
	Entries    []EnrichedEntry `json:"entries"`
}

func reportMonthIndex(reports []models.MonthlyReport) map[string]string {
	idx := make(map[string]string, len(reports))
	for _, r := range reports {
		idx[r.ID] = r.MonthKey
	}
	return idx
}

func clientNames(clients []models.Client) map[string]string {
	idx := make(map[string]string, len(clients))
	for _, c := range clients {
		idx[c.ID] = c.Name
	}
	return idx
}

func employeeNames(employees []models.Employee) map[string]string {
	idx := make(map[string]string, len(employees))
	for _, e := range employees {
		idx[e.ID] = e.FullName
	}
	return idx
}

func serviceNames(services []models.Service) map[string]string {
	idx := make(map[string]string, len(services))
	for _, s := range services {
		idx[s.ID] = s.Name
	}
	return idx
}

func taskNames(tasks []models.Task) map[string]string {
	idx := make(map[string]string, len(tasks))
	for _, t := range tasks {
		idx[t.ID] = t.Name
	}
	return idx
}

func resolve(idx map[string]string, id string) string {
	if name, ok := idx[id]; ok {
		return name
	}
	return UnknownName
}

// entriesForMonth filters entries to one month by joining through the
// owning report. Entries never carry a month field of their own.
func entriesForMonth(entries []models.TimeEntry, reports []models.MonthlyReport, monthKey string) []models.TimeEntry {
	months := reportMonthIndex(reports)
	filtered := make([]models.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if months[e.ReportID] == monthKey {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// hourAccumulator sums hours per key preserving first-encountered order.
type hourAccumulator struct {
	order []string
	sums  map[string]float64
}

func newHourAccumulator() *hourAccumulator {
	return &hourAccumulator{sums: make(map[string]float64)}
}

func (a *hourAccumulator) add(key string, hours float64) {
	if _, seen := a.sums[key]; !seen {
		a.order = append(a.order, key)
	}
	a.sums[key] += hours
}

// sortedDesc returns keys ordered by summed hours descending; ties keep
// first-encountered order (stable sort over insertion order).
func (a *hourAccumulator) sortedDesc() []string {
	keys := append([]string(nil), a.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return a.sums[keys[i]] > a.sums[keys[j]]
	})
	return keys
}

// BuildClientMonthRows builds the admin overview for a month: one row
// per client, including clients with zero hours, sorted by total hours
// descending.
func BuildClientMonthRows(
	monthKey string,
	clients []models.Client,
	reports []models.MonthlyReport,
	entries []models.TimeEntry,
	services []models.Service,
) []ClientMonthRow {
	filtered := entriesForMonth(entries, reports, monthKey)
	svcNames := serviceNames(services)

	byClient := make(map[string][]models.TimeEntry)
	for _, e := range filtered {
		byClient[e.ClientID] = append(byClient[e.ClientID], e)
	}

	rows := make([]ClientMonthRow, 0, len(clients))
	for _, client := range clients {
		clientEntries := byClient[client.ID]

		var total float64
		employees := make(map[string]struct{})
		svcHours := newHourAccumulator()
		for _, e := range clientEntries {
			total += e.Hours
			employees[e.EmployeeID] = struct{}{}
			svcHours.add(e.ServiceID, e.Hours)
		}

		top := make([]ServiceHours, 0, 2)
		for _, id := range svcHours.sortedDesc() {
			if len(top) == 2 {
				break
			}
			top = append(top, ServiceHours{
				ServiceName: resolve(svcNames, id),
				Hours:       svcHours.sums[id],
			})
		}

		rows = append(rows, ClientMonthRow{
			Client:        client,
			TotalHours:    total,
			EmployeeCount: len(employees),
			TopServices:   top,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalHours > rows[j].TotalHours
	})
	return rows
}

// BuildClientMonthDetail builds the drill-down view for one client and month.
// It returns nil when the client id does not resolve; dangling dimension
// references inside entries degrade to "Unknown" instead.
func BuildClientMonthDetail(
	clientID string,
	monthKey string,
	clients []models.Client,
	reports []models.MonthlyReport,
	entries []models.TimeEntry,
	employees []models.Employee,
	services []models.Service,
	tasks []models.Task,
) *ClientMonthDetail {
	var client *models.Client
	for i := range clients {
		if clients[i].ID == clientID {
			client = &clients[i]
			break
		}
	}
	if client == nil {
		return nil
	}

	empNames := employeeNames(employees)
	svcNames := serviceNames(services)
	tskNames := taskNames(tasks)
	cliNames := clientNames(clients)

	filtered := make([]models.TimeEntry, 0)
	for _, e := range entriesForMonth(entries, reports, monthKey) {
		if e.ClientID == clientID {
			filtered = append(filtered, e)
		}
	}

	var total float64
	empSet := make(map[string]struct{})
	svcSet := make(map[string]struct{})
	tskSet := make(map[string]struct{})
	empHours := newHourAccumulator()
	svcHours := newHourAccumulator()
	tskHours := newHourAccumulator()

	for _, e := range filtered {
		total += e.Hours
		empSet[e.EmployeeID] = struct{}{}
		svcSet[e.ServiceID] = struct{}{}
		tskSet[e.TaskID] = struct{}{}
		empHours.add(e.EmployeeID, e.Hours)
		svcHours.add(e.ServiceID, e.Hours)
		tskHours.add(e.TaskID, e.Hours)
	}

	byEmployee := make([]EmployeeHours, 0, len(empHours.order))
	for _, id := range empHours.sortedDesc() {
		byEmployee = append(byEmployee, EmployeeHours{
			EmployeeID:   id,
			EmployeeName: resolve(empNames, id),
			Hours:        empHours.sums[id],
		})
	}

	byService := make([]ServiceBreakdown, 0, len(svcHours.order))
	for _, id := range svcHours.sortedDesc() {
		byService = append(byService, ServiceBreakdown{
			ServiceID:   id,
			ServiceName: resolve(svcNames, id),
			Hours:       svcHours.sums[id],
		})
	}

	byTask := make([]TaskBreakdown, 0, len(tskHours.order))
	for _, id := range tskHours.sortedDesc() {
		byTask = append(byTask, TaskBreakdown{
			TaskID:   id,
			TaskName: resolve(tskNames, id),
			Hours:    tskHours.sums[id],
		})
	}

	enriched := enrichEntries(filtered, empNames, cliNames, svcNames, tskNames)

	return &ClientMonthDetail{
		Client:        *client,
		MonthKey:      monthKey,
		TotalHours:    total,
		EmployeeCount: len(empSet),
		ServiceCount:  len(svcSet),
		TaskCount:     len(tskSet),
		ByEmployee:    byEmployee,
		ByService:     byService,
		ByTask:        byTask,
		Entries:       enriched,
	}
}

// BuildEmployeeMonthSummary rolls up one employee's month for the
// employee-facing report view.
func BuildEmployeeMonthSummary(
	employeeID string,
	monthKey string,
	clients []models.Client,
	reports []models.MonthlyReport,
	entries []models.TimeEntry,
	employees []models.Employee,
	services []models.Service,
	tasks []models.Task,
) EmployeeMonthSummary {
	empNames := employeeNames(employees)
	svcNames := serviceNames(services)
	tskNames := taskNames(tasks)
	cliNames := clientNames(clients)

	filtered := make([]models.TimeEntry, 0)
	for _, e := range entriesForMonth(entries, reports, monthKey) {
		if e.EmployeeID == employeeID {
			filtered = append(filtered, e)
		}
	}

	var total float64
	cliHours := newHourAccumulator()
	for _, e := range filtered {
		total += e.Hours
		cliHours.add(e.ClientID, e.Hours)
	}

	byClient := make([]ClientHours, 0, len(cliHours.order))
	for _, id := range cliHours.sortedDesc() {
		byClient = append(byClient, ClientHours{
			ClientID:   id,
			ClientName: resolve(cliNames, id),
			Hours:      cliHours.sums[id],
		})
	}

	return EmployeeMonthSummary{
		EmployeeID: employeeID,
		MonthKey:   monthKey,
		TotalHours: total,
		EntryCount: len(filtered),
		ByClient:   byClient,
		Entries:    enrichEntries(filtered, empNames, cliNames, svcNames, tskNames),
	}
}

// enrichEntries decorates entries with display names and orders them most
// recent first.
func enrichEntries(
	entries []models.TimeEntry,
	empNames, cliNames, svcNames, tskNames map[string]string,
) []EnrichedEntry {
	enriched := make([]EnrichedEntry, 0, len(entries))
	for _, e := range entries {
		enriched = append(enriched, EnrichedEntry{
			TimeEntry:    e,
			EmployeeName: resolve(empNames, e.EmployeeID),
			ClientName:   resolve(cliNames, e.ClientID),
			ServiceName:  resolve(svcNames, e.ServiceID),
			TaskName:     resolve(tskNames, e.TaskID),
		})
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].CreatedAt.After(enriched[j].CreatedAt)
	})
	return enriched
}
