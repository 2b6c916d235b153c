package dashboard

import (
	"time"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/ledger"
	"TreasuryDash/internal/logger"

	"github.com/google/uuid"
)

// Horizons of the three dashboard views, in days.
const (
	WeeklyHorizon    = 7
	MonthlyHorizon   = 30
	QuarterlyHorizon = 90
)

// Options tune Build. The zero value projects from the snapshot date with
// no FX rates and CLP as base currency.
type Options struct {
	Start        time.Time
	Rates        ledger.Rates
	BaseCurrency string
	Sign         cashflow.SignConvention
	Summary      cashflow.SummaryOptions
}

// View is one projection horizon with its summary.
type View struct {
	Projection cashflow.Projection `json:"projection"`
	Summary    cashflow.Summary    `json:"summary"`
}

// MonthlyView adds the weekly roll-up to the 30-day view.
type MonthlyView struct {
	View
	Weeks []cashflow.WeekBucket `json:"weeks"`
}

// Dashboard is everything the treasury screens and exports render.
type Dashboard struct {
	ID              string                  `json:"id"`
	GeneratedAt     time.Time               `json:"generatedAt"`
	Start           cashflow.NullDate       `json:"start"`
	ConfigDefaults  bool                    `json:"configDefaults"`
	OpeningBalance  ledger.Consolidation    `json:"openingBalance"`
	Weekly          View                    `json:"weekly"`
	Monthly         MonthlyView             `json:"monthly"`
	Quarterly       View                    `json:"quarterly"`
	ReceivableAging cashflow.AgingReport    `json:"receivableAging"`
	PayableAging    cashflow.AgingReport    `json:"payableAging"`
	AnnualOutlook   []cashflow.MonthOutlook `json:"annualOutlook"`
	Skipped         []cashflow.Skipped      `json:"skipped"`
	SkippedRows     int                     `json:"skippedRows"`
}

// Normalized holds a snapshot's documents after normalization.
type Normalized struct {
	Receivables []cashflow.NormalizedReceivable
	Payables    []cashflow.NormalizedPayable
	Skipped     []cashflow.Skipped
}

// Normalize runs both normalizers over snapshot.
func Normalize(snapshot ledger.Snapshot, cfg cashflow.Config, sign cashflow.SignConvention) Normalized {
	recs, skippedRecs := cashflow.NormalizeReceivables(snapshot.Receivables, cfg)
	pays, skippedPays := cashflow.NormalizePayables(snapshot.Payables, sign)
	skipped := make([]cashflow.Skipped, 0, len(skippedRecs)+len(skippedPays))
	skipped = append(skipped, skippedRecs...)
	skipped = append(skipped, skippedPays...)
	return Normalized{Receivables: recs, Payables: pays, Skipped: skipped}
}

// StartDate picks the projection start: explicit start, else the snapshot
// date, else today in UTC.
func StartDate(explicit time.Time, snapshot ledger.Snapshot) time.Time {
	switch {
	case !explicit.IsZero():
		return cashflow.DateOf(explicit)
	case snapshot.AsOf.Valid:
		return snapshot.AsOf.Time
	}
	return cashflow.Today(time.UTC)
}

// Build projects snapshot over the weekly, monthly and quarterly horizons
// and adds aging and the annual outlook.
func Build(snapshot ledger.Snapshot, cfg cashflow.Config, opts Options) Dashboard {
	base := opts.BaseCurrency
	if base == "" {
		base = "CLP"
	}
	summaryOpts := opts.Summary
	if summaryOpts == (cashflow.SummaryOptions{}) {
		summaryOpts = cashflow.DefaultSummaryOptions()
	}

	start := StartDate(opts.Start, snapshot)
	opening := ledger.Consolidate(snapshot.Balances, opts.Rates, base)
	norm := Normalize(snapshot, cfg, opts.Sign)

	view := func(horizon int) View {
		p := cashflow.Project(cashflow.ProjectionInput{
			Start:          start,
			HorizonDays:    horizon,
			OpeningBalance: opening.Total,
			Receivables:    norm.Receivables,
			Payables:       norm.Payables,
		}, cfg)
		return View{Projection: p, Summary: cashflow.Summarize(p, cfg, summaryOpts)}
	}

	d := Dashboard{
		ID:              uuid.New().String(),
		GeneratedAt:     time.Now().UTC(),
		Start:           cashflow.Some(start),
		ConfigDefaults:  cfg.UsedDefaults(),
		OpeningBalance:  opening,
		Weekly:          view(WeeklyHorizon),
		Quarterly:       view(QuarterlyHorizon),
		ReceivableAging: cashflow.AgeReceivables(norm.Receivables, start),
		PayableAging:    cashflow.AgePayables(norm.Payables, start),
		Skipped:         norm.Skipped,
		SkippedRows:     snapshot.SkippedRows,
	}
	monthly := view(MonthlyHorizon)
	d.Monthly = MonthlyView{View: monthly, Weeks: cashflow.WeeklyRollup(monthly.Projection)}
	d.AnnualOutlook = cashflow.AnnualOutlook(monthly.Projection, d.ReceivableAging, cfg)

	logger.WithComponent("dashboard").Info().
		Str("id", d.ID).
		Str("start", d.Start.String()).
		Str("opening", opening.Total.String()).
		Int("receivables", len(norm.Receivables)).
		Int("payables", len(norm.Payables)).
		Int("skipped", len(norm.Skipped)).
		Bool("high_payment_alert", d.Weekly.Summary.HighPaymentAlert).
		Int("low_balance_days", len(d.Weekly.Summary.LowBalanceDays)).
		Msg("Dashboard built")
	return d
}
