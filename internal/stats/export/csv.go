package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/stats"
)

// WriteTotalsCSV serialises the dashboard headline metrics.
func WriteTotalsCSV(w io.Writer, dash stats.Dashboard, rng ledger.Range) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"From", rng.Start.Format("2006-01-02")},
		{"To", rng.End.Format("2006-01-02")},
		{"Total Billed", formatFloat(dash.Totals.TotalAmount)},
		{"Collected", formatFloat(dash.Totals.PaidAmount)},
		{"Pending", formatFloat(dash.Totals.PendingAmount)},
		{"Overdue", formatFloat(dash.Totals.OverdueAmount)},
		{"Entries", strconv.Itoa(dash.Totals.TotalCount)},
		{"Completion Rate %", strconv.Itoa(dash.CompletionRate)},
		{"Active Patients", strconv.Itoa(dash.ActivePatients)},
		{"New Patients", strconv.Itoa(dash.NewPatients)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSeriesCSV emits one time-bucketed series as CSV.
func WriteSeriesCSV(w io.Writer, title string, points []stats.SeriesPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{title, "Count", "Amount"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Label,
			strconv.Itoa(point.Count),
			formatFloat(point.Amount),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteStatusCSV prints a categorical breakdown to CSV.
func WriteStatusCSV(w io.Writer, title string, rows []stats.StatusCount) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{title, "Count"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{row.Status, strconv.Itoa(row.Count)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTopPatientsCSV prints the patient ranking to CSV.
func WriteTopPatientsCSV(w io.Writer, top []stats.PatientVolume) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Patient", "Sessions"}); err != nil {
		return err
	}
	for _, entry := range top {
		if err := writer.Write([]string{entry.PatientName, strconv.Itoa(entry.Sessions)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
