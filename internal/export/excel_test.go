package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/dashboard"
	"TreasuryDash/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDashboard() dashboard.Dashboard {
	snap := ledger.Snapshot{
		AsOf:     cashflow.NewDate(2024, 6, 3),
		Balances: []ledger.BankBalance{{Bank: "Santander", Currency: "CLP", Available: decimal.NewFromInt(80_000_000)}},
		Receivables: []cashflow.LedgerDocument{
			{CounterpartyName: "Walmart", DocumentRef: "FV-1", EmissionDate: cashflow.NewDate(2024, 5, 27), Balance: decimal.NewFromInt(4_000_000)},
		},
		Payables: []cashflow.LedgerDocument{
			{CounterpartyName: "Maersk", DocumentRef: "FC-1", DueDate: cashflow.NewDate(2024, 6, 4), Balance: decimal.NewFromInt(-1_500_000)},
		},
	}
	return dashboard.Build(snap, cashflow.DefaultConfig(), dashboard.Options{})
}

func TestWriteWorkbook(t *testing.T) {
	d := sampleDashboard()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FromDashboard(d)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetProjection, SheetSummary, SheetAging, SheetWeeks, SheetOutlook}, f.GetSheetList())

	rows, err := f.GetRows(SheetProjection)
	require.NoError(t, err)
	require.Len(t, rows, dashboard.MonthlyHorizon+1)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2024-06-03", rows[1][0])

	// 2024-06-04 carries the payable
	payables, err := f.GetCellValue(SheetProjection, "C3", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500000", payables)

	aging, err := f.GetRows(SheetAging)
	require.NoError(t, err)
	require.Len(t, aging, 7)
	assert.Equal(t, "vigente", aging[1][0])
	assert.Equal(t, "Total", aging[6][0])

	outlook, err := f.GetRows(SheetOutlook)
	require.NoError(t, err)
	assert.Len(t, outlook, 13)
}

func TestSaveWithoutOptionalSheets(t *testing.T) {
	d := sampleDashboard()
	rep := Report{
		Projection:      d.Weekly.Projection,
		Summary:         d.Weekly.Summary,
		ReceivableAging: d.ReceivableAging,
		PayableAging:    d.PayableAging,
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, Save(path, rep))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetProjection, SheetSummary, SheetAging}, f.GetSheetList())

	value, err := f.GetCellValue(SheetSummary, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Start", value)
}
