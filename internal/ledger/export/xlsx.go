package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/ledger"
)

// BuildLedgerXLSX renders the reconciled ledger as a two-sheet workbook:
// a summary sheet with the window and totals, and an items sheet with one
// row per ledger entry.
func BuildLedgerXLSX(items []ledger.Item, rng ledger.Range) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	itemsSheet := "items"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(itemsSheet)

	var billed, collected, outstanding float64
	for _, item := range items {
		billed += item.Amount
		if item.Status == billing.StatusPaid {
			collected += item.Amount
		} else {
			outstanding += item.Amount
		}
	}

	_ = f.SetCellValue(summarySheet, "A1", "Billing Ledger")
	_ = f.SetCellValue(summarySheet, "A3", "From")
	_ = f.SetCellValue(summarySheet, "B3", rng.Start.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A4", "To")
	_ = f.SetCellValue(summarySheet, "B4", rng.End.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Entries")
	_ = f.SetCellValue(summarySheet, "B5", len(items))
	_ = f.SetCellValue(summarySheet, "A6", "Total Billed")
	_ = f.SetCellValue(summarySheet, "B6", billed)
	_ = f.SetCellValue(summarySheet, "A7", "Collected")
	_ = f.SetCellValue(summarySheet, "B7", collected)
	_ = f.SetCellValue(summarySheet, "A8", "Outstanding")
	_ = f.SetCellValue(summarySheet, "B8", outstanding)

	_ = f.SetCellValue(itemsSheet, "A1", "Date")
	_ = f.SetCellValue(itemsSheet, "B1", "Patient")
	_ = f.SetCellValue(itemsSheet, "C1", "Status")
	_ = f.SetCellValue(itemsSheet, "D1", "Amount")
	_ = f.SetCellValue(itemsSheet, "E1", "Source")
	_ = f.SetCellValue(itemsSheet, "F1", "Description")
	for i, item := range items {
		row := i + 2
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", row), item.Date.Format("2006-01-02"))
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("B%d", row), item.PatientName)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("C%d", row), string(item.Status))
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("D%d", row), item.Amount)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("E%d", row), sourceLabel(item))
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("F%d", row), item.Description)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
