package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/brainspot/timesheet-api/internal/rollup"
)

// PDFExporter renders a client month breakdown into a printable report.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with the month summary, the per-service breakdown
// and the full entry table.
func (e *PDFExporter) Render(detail *rollup.ClientMonthDetail) ([]byte, error) {
	if detail == nil {
		return nil, fmt.Errorf("nothing to export")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("%s - %s", detail.Client.Name, detail.MonthKey), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total hours: %s", formatHours(detail.TotalHours)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Employees: %d   Services: %d   Tasks: %d",
		detail.EmployeeCount, detail.ServiceCount, detail.TaskCount), "", 1, "", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, "Hours by service", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(130, 7, "Service", "1", 0, "", false, 0, "")
	pdf.CellFormat(60, 7, "Hours", "1", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, row := range detail.ByService {
		pdf.CellFormat(130, 6, row.ServiceName, "1", 0, "", false, 0, "")
		pdf.CellFormat(60, 6, formatHours(row.Hours), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, "Entries", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "B", 9)
	widths := []float64{25, 45, 45, 45, 30}
	headers := []string{"Date", "Employee", "Service", "Task", "Hours"}
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, entry := range detail.Entries {
		cells := []string{
			entry.CreatedAt.Format("2006-01-02"),
			entry.EmployeeName,
			entry.ServiceName,
			entry.TaskName,
			formatHours(entry.Hours),
		}
		for i, cell := range cells {
			align := ""
			if i == len(cells)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
