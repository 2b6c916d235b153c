package cashflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidHorizon = errors.New("horizon must not be negative")

// FlowKind says where a projected movement comes from.
type FlowKind string

const (
	FlowReceivable FlowKind = "receivable"
	FlowPayable    FlowKind = "payable"
	FlowRecurring  FlowKind = "recurring"
)

// FlowDetail traces one document or recurring payment landing on a day.
type FlowDetail struct {
	Date            NullDate        `json:"date"`
	Kind            FlowKind        `json:"kind"`
	Counterparty    string          `json:"counterparty"`
	CounterpartyID  string          `json:"counterpartyId,omitempty"`
	DocumentRef     string          `json:"documentRef,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentTermDays int             `json:"paymentTermDays,omitempty"`
	OriginTag       string          `json:"originTag,omitempty"`
}

// DailyEntry is the projected cash movement of one calendar day.
type DailyEntry struct {
	Date                  NullDate        `json:"date"`
	Inflows               decimal.Decimal `json:"inflows"`
	OutflowsFromPayables  decimal.Decimal `json:"outflowsFromPayables"`
	OutflowsFromRecurring decimal.Decimal `json:"outflowsFromRecurring"`
	TotalOutflows         decimal.Decimal `json:"totalOutflows"`
	NetFlow               decimal.Decimal `json:"netFlow"`
	RunningBalance        decimal.Decimal `json:"runningBalance"`
	DetailInflows         []FlowDetail    `json:"detailInflows"`
	DetailOutflows        []FlowDetail    `json:"detailOutflows"`
}

// ProjectionInput gathers everything one projection run depends on.
type ProjectionInput struct {
	Start          time.Time
	HorizonDays    int
	OpeningBalance decimal.Decimal
	Receivables    []NormalizedReceivable
	Payables       []NormalizedPayable
}

func (in ProjectionInput) Validate() error {
	if in.HorizonDays < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidHorizon, in.HorizonDays)
	}
	return nil
}

// Projection is the day-by-day cash position over [Start, Start+HorizonDays).
type Projection struct {
	Start          NullDate        `json:"start"`
	HorizonDays    int             `json:"horizonDays"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Days           []DailyEntry    `json:"days"`
}

// Project builds the daily ledger of expected inflows and outflows. It is a
// pure function of its arguments; a non-positive horizon yields no days.
func Project(in ProjectionInput, cfg Config) Projection {
	start := DateOf(in.Start)
	horizon := in.HorizonDays
	if horizon < 0 {
		horizon = 0
	}

	p := Projection{
		Start:          Some(start),
		HorizonDays:    horizon,
		OpeningBalance: in.OpeningBalance,
		Days:           make([]DailyEntry, horizon),
	}
	for i := range p.Days {
		p.Days[i] = DailyEntry{
			Date:                  Some(start.AddDate(0, 0, i)),
			Inflows:               decimal.Zero,
			OutflowsFromPayables:  decimal.Zero,
			OutflowsFromRecurring: decimal.Zero,
			DetailInflows:         []FlowDetail{},
			DetailOutflows:        []FlowDetail{},
		}
	}

	for _, rec := range in.Receivables {
		e := p.entryAt(rec.ProjectedCollectionDate)
		if e == nil {
			continue
		}
		e.Inflows = e.Inflows.Add(rec.Balance)
		e.DetailInflows = append(e.DetailInflows, FlowDetail{
			Date:            e.Date,
			Kind:            FlowReceivable,
			Counterparty:    rec.CounterpartyName,
			CounterpartyID:  rec.CounterpartyID,
			DocumentRef:     rec.DocumentRef,
			Amount:          rec.Balance,
			PaymentTermDays: rec.PaymentTermDays,
		})
	}

	for _, pay := range in.Payables {
		e := p.entryAt(pay.AdjustedDueDate)
		if e == nil {
			continue
		}
		e.OutflowsFromPayables = e.OutflowsFromPayables.Add(pay.Balance)
		e.DetailOutflows = append(e.DetailOutflows, FlowDetail{
			Date:           e.Date,
			Kind:           FlowPayable,
			Counterparty:   pay.CounterpartyName,
			CounterpartyID: pay.CounterpartyID,
			DocumentRef:    pay.DocumentRef,
			Amount:         pay.Balance,
			OriginTag:      pay.OriginTag,
		})
	}

	recurring := cfg.recurring
	for i := range p.Days {
		e := &p.Days[i]
		for _, r := range recurring {
			if recurringDue(r, e.Date.Time, cfg.overflowPolicy) {
				e.OutflowsFromRecurring = e.OutflowsFromRecurring.Add(r.Amount)
				e.DetailOutflows = append(e.DetailOutflows, FlowDetail{
					Date:         e.Date,
					Kind:         FlowRecurring,
					Counterparty: r.Concept,
					Amount:       r.Amount,
				})
			}
		}
	}

	running := in.OpeningBalance
	for i := range p.Days {
		e := &p.Days[i]
		e.TotalOutflows = e.OutflowsFromPayables.Add(e.OutflowsFromRecurring)
		e.NetFlow = e.Inflows.Sub(e.TotalOutflows)
		running = running.Add(e.NetFlow)
		e.RunningBalance = running
	}
	return p
}

// recurringDue reports whether r is paid on day. Monthly payments fire on
// DayOfMonth, biweekly ones also on DayOfMonth+15. A target beyond the
// month's length is skipped, or moved to the last day under OverflowClamp;
// two targets landing on the same day pay once.
func recurringDue(r RecurringPayment, day time.Time, policy OverflowPolicy) bool {
	targets := [2]int{r.DayOfMonth, 0}
	if r.Frequency == Biweekly {
		targets[1] = r.DayOfMonth + 15
	}
	last := daysInMonth(day)
	for _, t := range targets {
		if t == 0 {
			continue
		}
		if t > last {
			if policy != OverflowClamp {
				continue
			}
			t = last
		}
		if t == day.Day() {
			return true
		}
	}
	return false
}

func (p *Projection) entryAt(d NullDate) *DailyEntry {
	if !d.Valid || !p.Start.Valid {
		return nil
	}
	i := DaysBetween(p.Start.Time, d.Time)
	if i < 0 || i >= len(p.Days) {
		return nil
	}
	return &p.Days[i]
}

// Entry returns the projected day for date, if it is inside the horizon.
func (p Projection) Entry(date time.Time) (DailyEntry, bool) {
	e := p.entryAt(Some(date))
	if e == nil {
		return DailyEntry{}, false
	}
	return *e, true
}

// ClosingBalance is the running balance after the last day, or the opening
// balance for an empty horizon.
func (p Projection) ClosingBalance() decimal.Decimal {
	if len(p.Days) == 0 {
		return p.OpeningBalance
	}
	return p.Days[len(p.Days)-1].RunningBalance
}
