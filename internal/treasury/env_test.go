package treasury

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/config"
	"TreasuryDash/internal/ledger"
	"TreasuryDash/internal/notification"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(t *testing.T) *config.Settings {
	dir := t.TempDir()
	return &config.Settings{
		ConfigPath:   filepath.Join(dir, "cashflow_config.json"),
		LedgerPath:   filepath.Join(dir, "ledger_snapshot.json"),
		OutputDir:    dir,
		TimeZone:     "America/Santiago",
		BaseCurrency: "CLP",
		FXRates:      "USD=900",
	}
}

func TestNewEnv(t *testing.T) {
	env, err := NewEnv(testSettings(t))
	require.NoError(t, err)
	assert.True(t, env.Rates["USD"].Equal(decimal.NewFromInt(900)))
	assert.Equal(t, "America/Santiago", env.Location.String())
	assert.True(t, env.Store.Current().UsedDefaults())

	bad := testSettings(t)
	bad.FXRates = "USD=lots"
	_, err = NewEnv(bad)
	assert.Error(t, err)
}

func TestBuildAndPublish(t *testing.T) {
	env, err := NewEnv(testSettings(t))
	require.NoError(t, err)
	env.Source = ledger.StaticSource{Snapshot: ledger.Snapshot{
		AsOf:     cashflow.NewDate(2024, 6, 3),
		Balances: []ledger.BankBalance{{Bank: "BCI", Currency: "USD", Available: decimal.NewFromInt(100_000)}},
	}}

	d, err := env.BuildDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cashflow.NewDate(2024, 6, 3), d.Start)
	assert.True(t, d.OpeningBalance.Total.Equal(decimal.NewFromInt(90_000_000)))
	assert.True(t, d.ConfigDefaults)

	// 90M stays above the 50M floor, so only the defaults warning is raised
	raised := env.Publish(d)
	require.Len(t, raised, 1)
	assert.Equal(t, notification.KindConfig, raised[0].Kind)
	assert.NotEmpty(t, raised[0].ID)
	assert.Len(t, env.Alerts.GetNotifications(), 1)
}

func TestStartFor(t *testing.T) {
	env := &Env{Location: time.UTC}
	explicit := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, explicit, env.StartFor(explicit, ledger.Snapshot{}))
	assert.Equal(t, cashflow.Today(time.UTC), env.StartFor(time.Time{}, ledger.Snapshot{}))
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		env.StartFor(time.Time{}, ledger.Snapshot{AsOf: cashflow.NewDate(2024, 6, 3)}))
}
