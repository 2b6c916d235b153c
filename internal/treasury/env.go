package treasury

import (
	"context"
	"fmt"
	"time"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/config"
	"TreasuryDash/internal/dashboard"
	"TreasuryDash/internal/ledger"
	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/notification"
)

// Env is the state shared by the HTTP service, the cron job and the CLI:
// where ledger snapshots come from, the live engine configuration and the
// alert channels.
type Env struct {
	Settings *config.Settings
	Store    *cashflow.ConfigStore
	Source   ledger.Source
	Rates    ledger.Rates
	Location *time.Location
	Sign     cashflow.SignConvention
	Alerts   *notification.NotificationService
	SSE      *dashboard.SSEServer
}

// NewEnv wires an Env from process settings. The SSE server is not started
// here; services that stream create it.
func NewEnv(s *config.Settings) (*Env, error) {
	const op = "treasury.NewEnv"

	rates, err := ledger.ParseRates(s.FXRates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Env{
		Settings: s,
		Store:    cashflow.NewConfigStore(s.ConfigPath),
		Source:   ledger.FileSource{SnapshotPath: s.LedgerPath},
		Rates:    rates,
		Location: s.Location(),
		Sign:     cashflow.CreditNegative,
		Alerts:   notification.NewNotificationService(),
	}, nil
}

// Today is the current date in the reporting time zone.
func (e *Env) Today() time.Time {
	return cashflow.Today(e.Location)
}

func (e *Env) baseCurrency() string {
	if e.Settings != nil && e.Settings.BaseCurrency != "" {
		return e.Settings.BaseCurrency
	}
	return config.DefaultBaseCurrency
}

// LoadSnapshot fetches the current ledger snapshot.
func (e *Env) LoadSnapshot(ctx context.Context) (ledger.Snapshot, error) {
	return e.Source.Load(ctx)
}

// Options returns dashboard options for a projection starting at start
// (zero means the snapshot date, then today).
func (e *Env) Options(start time.Time) dashboard.Options {
	return dashboard.Options{
		Start:        start,
		Rates:        e.Rates,
		BaseCurrency: e.baseCurrency(),
		Sign:         e.Sign,
	}
}

// StartFor resolves the projection start for snapshot.
func (e *Env) StartFor(start time.Time, snapshot ledger.Snapshot) time.Time {
	if start.IsZero() && !snapshot.AsOf.Valid {
		start = e.Today()
	}
	return dashboard.StartDate(start, snapshot)
}

// OpeningBalance consolidates the snapshot's bank balances.
func (e *Env) OpeningBalance(snapshot ledger.Snapshot) ledger.Consolidation {
	return ledger.Consolidate(snapshot.Balances, e.Rates, e.baseCurrency())
}

// BuildDashboard loads a snapshot and builds the dashboard from it with the
// current configuration.
func (e *Env) BuildDashboard(ctx context.Context) (dashboard.Dashboard, error) {
	snapshot, err := e.LoadSnapshot(ctx)
	if err != nil {
		return dashboard.Dashboard{}, err
	}
	return dashboard.Build(snapshot, e.Store.Current(), e.Options(e.StartFor(time.Time{}, snapshot))), nil
}

// Publish raises the weekly view's alerts into the inbox and pushes them and
// the dashboard id to connected clients.
func (e *Env) Publish(d dashboard.Dashboard) []notification.Alert {
	alerts := notification.FromSummary(d.Weekly.Summary)
	if d.ConfigDefaults {
		alerts = append(alerts, notification.Alert{
			Kind:    notification.KindConfig,
			Message: "Cash-flow configuration not found; default payment terms in use",
			Date:    d.Start,
		})
	}

	log := logger.WithComponent("alerts")
	raised := make([]notification.Alert, 0, len(alerts))
	for _, a := range alerts {
		a = e.Alerts.AddNotification(a)
		raised = append(raised, a)
		log.Warn().Str("kind", string(a.Kind)).Str("date", a.Date.String()).Msg(a.Message)
		if e.SSE != nil {
			e.SSE.Broadcast(dashboard.EventAlert, a)
		}
	}
	if e.SSE != nil {
		e.SSE.Broadcast(dashboard.EventSnapshot, map[string]interface{}{
			"id":          d.ID,
			"generatedAt": d.GeneratedAt,
			"start":       d.Start,
		})
	}
	return raised
}
