package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/praxis-pm/praxis/internal/billing"
	"github.com/praxis-pm/praxis/internal/ledger"
)

func sampleItems() []ledger.Item {
	return []ledger.Item{
		{
			ID:          "pay-1",
			Status:      billing.StatusPaid,
			Amount:      7500,
			Date:        time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC),
			PatientName: "Maria Garcia",
			Description: "Monthly invoice",
		},
		{
			ID:          "virtual-abc",
			IsVirtual:   true,
			Status:      billing.StatusPending,
			Amount:      6000,
			Date:        time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			PatientName: "Juan Perez",
			Description: "Unpaid session",
		},
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteLedgerCSV(buf, sampleItems()); err != nil {
		t.Fatalf("ledger csv error: %v", err)
	}
	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus two rows, got %d", len(records))
	}
	if got := records[1][4]; got != "payment" {
		t.Fatalf("expected payment source, got %q", got)
	}
	if got := records[2][4]; got != "projected" {
		t.Fatalf("expected projected source, got %q", got)
	}
	if got := records[2][3]; got != "6000.00" {
		t.Fatalf("unexpected amount %q", got)
	}
}

func TestBuildLedgerXLSX(t *testing.T) {
	rng := ledger.Range{
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
	data, err := BuildLedgerXLSX(sampleItems(), rng)
	if err != nil {
		t.Fatalf("ledger xlsx error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	patient, err := f.GetCellValue("items", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if patient != "Maria Garcia" {
		t.Fatalf("unexpected patient %q", patient)
	}
	entries, err := f.GetCellValue("summary", "B5")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if entries != "2" {
		t.Fatalf("unexpected entry count %q", entries)
	}
}
