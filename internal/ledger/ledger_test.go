package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"TreasuryDash/internal/cashflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const snapshotJSON = `{
	"asOf": "2024-06-03",
	"balances": [
		{"bank": "Santander", "currency": "CLP", "available": 150000000},
		{"bank": "BCI", "currency": "usd", "available": "10000"}
	],
	"receivables": [
		{"counterpartyName": "Walmart Chile", "counterpartyId": "76.042.014-K", "documentRef": "FV-100",
		 "emissionDate": "2024-05-20T00:00:00", "dueDate": "2024-06-19", "balance": 12500000},
		{"counterpartyName": "Cencosud", "documentRef": "FV-101", "emissionDate": "bad", "balance": "$3,000,000"},
		{"counterpartyName": "Broken", "documentRef": "FV-102", "balance": "n/a"}
	],
	"payables": [
		{"counterpartyName": "Maersk", "documentRef": "FC-9", "dueDate": "2024-06-08", "balance": -8000000, "originTag": "Internacional"}
	]
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseSnapshot(t *testing.T) {
	s, err := ParseSnapshot([]byte(snapshotJSON))
	require.NoError(t, err)

	assert.Equal(t, cashflow.NewDate(2024, 6, 3), s.AsOf)
	require.Len(t, s.Balances, 2)
	assert.True(t, s.Balances[1].Available.Equal(decimal.NewFromInt(10_000)))

	require.Len(t, s.Receivables, 2)
	assert.Equal(t, 1, s.SkippedRows)
	assert.Equal(t, cashflow.NewDate(2024, 5, 20), s.Receivables[0].EmissionDate)
	assert.Equal(t, "76.042.014-K", s.Receivables[0].CounterpartyID)
	assert.False(t, s.Receivables[1].EmissionDate.Valid)
	assert.True(t, s.Receivables[1].Balance.Equal(decimal.NewFromInt(3_000_000)))

	require.Len(t, s.Payables, 1)
	assert.Equal(t, cashflow.OriginInternational, s.Payables[0].OriginTag)
	assert.True(t, s.Payables[0].Balance.Equal(decimal.NewFromInt(-8_000_000)))
}

func TestParseSnapshotInvalidJSON(t *testing.T) {
	_, err := ParseSnapshot([]byte(`{"receivables": [`))
	assert.Error(t, err)
}

func TestParseRates(t *testing.T) {
	rates, err := ParseRates("USD=890, eur=1030,,")
	require.NoError(t, err)
	assert.True(t, rates["USD"].Equal(decimal.NewFromInt(890)))
	assert.True(t, rates["EUR"].Equal(decimal.NewFromInt(1030)))

	_, err = ParseRates("USD")
	assert.Error(t, err)
	_, err = ParseRates("USD=abc")
	assert.Error(t, err)
	_, err = ParseRates("USD=0")
	assert.Error(t, err)
}

func TestConsolidate(t *testing.T) {
	rates := Rates{"USD": decimal.NewFromInt(890)}
	c := Consolidate([]BankBalance{
		{Bank: "Santander", Currency: "CLP", Available: decimal.NewFromInt(1_000_000)},
		{Bank: "Chile", Currency: "", Available: decimal.NewFromInt(500)},
		{Bank: "BCI", Currency: "usd", Available: decimal.NewFromInt(100)},
		{Bank: "Itau", Currency: "GBP", Available: decimal.NewFromInt(50)},
		{Bank: "Scotia", Currency: "BRL", Available: decimal.NewFromInt(7)},
	}, rates, "clp")

	assert.Equal(t, "CLP", c.Base)
	assert.True(t, c.Total.Equal(decimal.NewFromInt(1_000_000+500+89_000)))
	assert.True(t, c.ByCurrency["CLP"].Equal(decimal.NewFromInt(1_000_500)))
	assert.True(t, c.ByCurrency["USD"].Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []string{"BRL", "GBP"}, c.Unknown)
}

func TestConsolidateKeepsMinorUnits(t *testing.T) {
	balances := []BankBalance{
		{Bank: "Chase", Currency: "USD", Available: decimal.RequireFromString("1000.25")},
		{Bank: "Santander ES", Currency: "EUR", Available: decimal.RequireFromString("100.10")},
	}
	rates := Rates{"EUR": decimal.RequireFromString("1.0835"), "USD": decimal.NewFromInt(900)}

	usd := Consolidate(balances, rates, "USD")
	// 100.10 * 1.0835 = 108.45835
	assert.Equal(t, "1108.71", usd.Total.String())

	clp := Consolidate([]BankBalance{
		{Bank: "BCI", Currency: "USD", Available: decimal.RequireFromString("10.25")},
	}, rates, "CLP")
	assert.Equal(t, "9225", clp.Total.String())
}

func TestLoadDocumentsCSV(t *testing.T) {
	path := writeTemp(t, "cxc.csv",
		"Auxiliar,IdAuxiliar,Documento,Emision,Vencimiento,Saldo\n"+
			"Walmart Chile,76042014-K,FV-1,2024-05-20,2024-06-19,\"1,250,000\"\n"+
			",,,,,\n"+
			"Tottus,96.1,FV-2,20/05/2024,,oops\n"+
			"Unimarc,77.2,FV-3,,,450000\n")

	imp, err := LoadDocuments(path)
	require.NoError(t, err)
	assert.Equal(t, 1, imp.SkippedRows)
	require.Len(t, imp.Documents, 2)

	assert.Equal(t, "Walmart Chile", imp.Documents[0].CounterpartyName)
	assert.Equal(t, "FV-1", imp.Documents[0].DocumentRef)
	assert.Equal(t, cashflow.NewDate(2024, 6, 19), imp.Documents[0].DueDate)
	assert.True(t, imp.Documents[0].Balance.Equal(decimal.NewFromInt(1_250_000)))
	assert.False(t, imp.Documents[1].EmissionDate.Valid)
}

func TestLoadDocumentsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Counterparty", "Document Ref", "Due Date", "Balance", "Origin"},
		{"Maersk", "FC-9", "2024-06-08", "-8000000", "international"},
		{"Copec", "FC-10", "2024-06-10", "-120000", "nacional"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "cxp.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	imp, err := LoadDocuments(path)
	require.NoError(t, err)
	require.Len(t, imp.Documents, 2)
	assert.Equal(t, cashflow.OriginInternational, imp.Documents[0].OriginTag)
	assert.Equal(t, cashflow.OriginDomestic, imp.Documents[1].OriginTag)
	assert.Equal(t, cashflow.NewDate(2024, 6, 10), imp.Documents[1].DueDate)
	assert.True(t, imp.Documents[0].Balance.Equal(decimal.NewFromInt(-8_000_000)))
}

func TestLoadDocumentsErrors(t *testing.T) {
	_, err := LoadDocuments(writeTemp(t, "cxc.txt", "a,b\n1,2\n"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = LoadDocuments(writeTemp(t, "cxc.csv", "Documento,Saldo\nFV-1,100\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = LoadDocuments(writeTemp(t, "cxc.csv", "Auxiliar,Saldo\n"))
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestFileSource(t *testing.T) {
	snap := writeTemp(t, "snapshot.json", snapshotJSON)
	cxc := writeTemp(t, "cxc.csv", "cliente,saldo,emision\nFalabella,999,2024-06-01\n")

	s, err := FileSource{SnapshotPath: snap, ReceivablesPath: cxc}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Receivables, 1)
	assert.Equal(t, "Falabella", s.Receivables[0].CounterpartyName)
	require.Len(t, s.Payables, 1)
	assert.Len(t, s.Balances, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileSource{SnapshotPath: snap}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = FileSource{SnapshotPath: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	assert.Error(t, err)
}
