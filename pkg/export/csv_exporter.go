package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/brainspot/timesheet-api/internal/rollup"
)

// CSVExporter renders a client month breakdown into CSV bytes. One line per
// logged entry, preceded by a summary header block.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces a CSV document for the breakdown.
func (e *CSVExporter) Render(detail *rollup.ClientMonthDetail) ([]byte, error) {
	if detail == nil {
		return nil, fmt.Errorf("nothing to export")
	}

	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	summary := [][]string{
		{"client", detail.Client.Name},
		{"month", detail.MonthKey},
		{"total_hours", formatHours(detail.TotalHours)},
		{},
	}
	for _, row := range summary {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv summary: %w", err)
		}
	}

	header := []string{"date", "employee", "service", "task", "hours", "notes"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range detail.Entries {
		notes := ""
		if entry.Notes != nil {
			notes = *entry.Notes
		}
		record := []string{
			entry.CreatedAt.Format("2006-01-02"),
			entry.EmployeeName,
			entry.ServiceName,
			entry.TaskName,
			formatHours(entry.Hours),
			notes,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv entry: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', 2, 64)
}
