package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerFixture = `{
  "asOf": "2024-06-03",
  "balances": [
    {"bank": "Santander", "currency": "CLP", "available": 20000000},
    {"bank": "BCI", "currency": "USD", "available": "10000"}
  ],
  "receivables": [
    {"counterpartyName": "Walmart Chile", "documentRef": "FV-1", "emissionDate": "2024-05-20", "balance": 12000000},
    {"counterpartyName": "Cencosud", "documentRef": "FV-2", "emissionDate": "10/01/2024", "balance": "3000000"}
  ],
  "payables": [
    {"counterpartyName": "Maersk", "documentRef": "FC-1", "dueDate": "2024-06-08", "balance": -1500000}
  ]
}`

// run executes the root command against a fresh settings load.
func run(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger_snapshot.json")
	require.NoError(t, os.WriteFile(ledgerPath, []byte(ledgerFixture), 0644))

	t.Setenv("TREASURY_CONFIG_PATH", filepath.Join(dir, "cashflow_config.json"))
	t.Setenv("TREASURY_LEDGER_PATH", ledgerPath)
	t.Setenv("TREASURY_OUTPUT_DIR", filepath.Join(dir, "output"))
	t.Setenv("TREASURY_FX_RATES", "USD=900")
	settings = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestProjectCommandJSON(t *testing.T) {
	out := run(t, "project", "--horizon", "14", "--json")

	var body struct {
		Projection struct {
			Start          string `json:"start"`
			OpeningBalance string `json:"openingBalance"`
			Days           []struct {
				Date    string `json:"date"`
				Inflows string `json:"inflows"`
			} `json:"days"`
		} `json:"projection"`
		Summary struct {
			TotalOutflows string `json:"totalOutflows"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "2024-06-03", body.Projection.Start)
	assert.Equal(t, "29000000", body.Projection.OpeningBalance)
	require.Len(t, body.Projection.Days, 14)
	// 2024-05-20 + 20 days is Sunday 9 June, collected Friday 14 June
	assert.Equal(t, "2024-06-14", body.Projection.Days[11].Date)
	assert.Equal(t, "12000000", body.Projection.Days[11].Inflows)
	assert.Equal(t, "1500000", body.Summary.TotalOutflows)
}

func TestProjectCommandTable(t *testing.T) {
	out := run(t, "project", "--horizon", "3", "--start", "2024-06-06", "--opening", "1000", "--json=false")
	assert.Contains(t, out, "Net flow")
	assert.Contains(t, out, "2024-06-07")
	assert.Contains(t, out, "Opening balance: 1000")
	assert.Contains(t, out, "Critical day:    2024-06-07 (-1500000)")
}

func TestAgingCommand(t *testing.T) {
	out := run(t, "aging", "--as-of", "2024-06-03")
	assert.Contains(t, out, "Aging as of 2024-06-03")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "15000000")
}

func TestSnapshotCommand(t *testing.T) {
	out := run(t, "snapshot")
	assert.Contains(t, out, "dashboard_snapshot.json")
	assert.Contains(t, out, "cashflow_report.xlsx")
	assert.Contains(t, out, "low_balance")

	_, err := os.Stat(filepath.Join(settings.OutputDir, "dashboard_snapshot.json"))
	assert.NoError(t, err)
}
