package cashflow

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeekBucket aggregates seven consecutive projected days.
type WeekBucket struct {
	Week           int             `json:"week"`
	From           NullDate        `json:"from"`
	To             NullDate        `json:"to"`
	Inflows        decimal.Decimal `json:"inflows"`
	Outflows       decimal.Decimal `json:"outflows"`
	NetFlow        decimal.Decimal `json:"netFlow"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// WeeklyRollup groups p into weeks counted from its start date. The last
// week may be shorter than seven days.
func WeeklyRollup(p Projection) []WeekBucket {
	weeks := make([]WeekBucket, 0, (len(p.Days)+6)/7)
	for i, e := range p.Days {
		w := i / 7
		if w == len(weeks) {
			weeks = append(weeks, WeekBucket{
				Week:     w + 1,
				From:     e.Date,
				Inflows:  decimal.Zero,
				Outflows: decimal.Zero,
			})
		}
		b := &weeks[w]
		b.To = e.Date
		b.Inflows = b.Inflows.Add(e.Inflows)
		b.Outflows = b.Outflows.Add(e.TotalOutflows)
		b.NetFlow = b.Inflows.Sub(b.Outflows)
		b.RunningBalance = e.RunningBalance
	}
	return weeks
}

// MonthOutlook is one month of the twelve-month outlook.
type MonthOutlook struct {
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	Inflows        decimal.Decimal `json:"inflows"`
	Outflows       decimal.Decimal `json:"outflows"`
	NetFlow        decimal.Decimal `json:"netFlow"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	Estimated      bool            `json:"estimated"`
}

// receivableTurnoverMonths is how many months an open receivable book takes
// to be collected, for the outlook estimate.
const receivableTurnoverMonths = 3

// AnnualOutlook projects twelve months starting at the month of
// nearTerm.Start. The first month uses the totals of nearTerm (normally a
// 30-day projection); the following months are estimates: inflows are the
// receivable book collected over three months and outflows are the monthly
// recurring commitment.
func AnnualOutlook(nearTerm Projection, receivables AgingReport, cfg Config) []MonthOutlook {
	start := nearTerm.Start.Time
	if !nearTerm.Start.Valid {
		start = receivables.AsOf
	}
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)

	estimatedIn := receivables.Total.Div(decimal.NewFromInt(receivableTurnoverMonths)).Round(0)
	estimatedOut := cfg.MonthlyRecurringCommitment()

	out := make([]MonthOutlook, 0, 12)
	running := nearTerm.OpeningBalance
	for i := 0; i < 12; i++ {
		m := first.AddDate(0, i, 0)
		mo := MonthOutlook{Year: m.Year(), Month: m.Month(), Estimated: i > 0}
		if i == 0 {
			mo.Inflows, mo.Outflows = decimal.Zero, decimal.Zero
			for _, e := range nearTerm.Days {
				mo.Inflows = mo.Inflows.Add(e.Inflows)
				mo.Outflows = mo.Outflows.Add(e.TotalOutflows)
			}
		} else {
			mo.Inflows, mo.Outflows = estimatedIn, estimatedOut
		}
		mo.NetFlow = mo.Inflows.Sub(mo.Outflows)
		running = running.Add(mo.NetFlow)
		mo.RunningBalance = running
		out = append(out, mo)
	}
	return out
}
