package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/praxis-pm/praxis/internal/ledger"
)

// WriteLedgerCSV serialises reconciled ledger items to a CSV representation.
func WriteLedgerCSV(w io.Writer, items []ledger.Item) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Date", "Patient", "Status", "Amount", "Source", "Description"}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			item.Date.Format("2006-01-02"),
			item.PatientName,
			string(item.Status),
			formatAmount(item.Amount),
			sourceLabel(item),
			item.Description,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func sourceLabel(item ledger.Item) string {
	if item.IsVirtual {
		return "projected"
	}
	return "payment"
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
