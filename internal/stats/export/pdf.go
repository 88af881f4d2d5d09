package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/stats"
)

// BuildDashboardPDF renders the aggregated dashboard as a printable report.
func BuildDashboardPDF(dash stats.Dashboard, tag ledger.RangeTag, rng ledger.Range) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Practice Dashboard")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Range: %s", tag))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("From: %s", rng.Start.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("To: %s", rng.End.Format("2006-01-02")))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Total Billed: %.2f", dash.Totals.TotalAmount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Collected: %.2f", dash.Totals.PaidAmount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Pending: %.2f", dash.Totals.PendingAmount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Overdue: %.2f", dash.Totals.OverdueAmount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Completion Rate: %d%%", dash.CompletionRate))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Active Patients: %d", dash.ActivePatients))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("New Patients: %d", dash.NewPatients))
	pdf.Ln(8)

	writeSeriesTable(pdf, "Income Over Time", dash.IncomeOverTime, true)
	writeSeriesTable(pdf, "Sessions Over Time", dash.SessionsOverTime, false)
	writeSeriesTable(pdf, "Sessions By Hour", dash.SessionsByHour, false)
	writeSeriesTable(pdf, "Sessions By Weekday", dash.SessionsByWeekday, false)

	if len(dash.TopPatients) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(90, 6, "Patient", "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, "Sessions", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, entry := range dash.TopPatients {
			pdf.CellFormat(90, 6, entry.PatientName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(50, 6, fmt.Sprintf("%d", entry.Sessions), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSeriesTable(pdf *gofpdf.Fpdf, title string, points []stats.SeriesPoint, withAmount bool) {
	if len(points) == 0 {
		return
	}
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, title, "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Count", "1", 0, "C", false, 0, "")
	if withAmount {
		pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, point := range points {
		pdf.CellFormat(60, 6, point.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", point.Count), "1", 0, "R", false, 0, "")
		if withAmount {
			pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", point.Amount), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
