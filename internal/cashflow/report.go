package cashflow

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SummaryOptions sizes the top-N lists of a Summary.
type SummaryOptions struct {
	TopInflows  int
	TopOutflows int
}

// DefaultSummaryOptions matches the weekly executive summary: three biggest
// collections, five biggest payments.
func DefaultSummaryOptions() SummaryOptions {
	return SummaryOptions{TopInflows: 3, TopOutflows: 5}
}

// CriticalDay is the day with the lowest net flow of the horizon.
type CriticalDay struct {
	Date    NullDate        `json:"date"`
	NetFlow decimal.Decimal `json:"netFlow"`
}

// LowBalanceDay is a day whose running balance falls under the configured
// low-balance threshold.
type LowBalanceDay struct {
	Date           NullDate        `json:"date"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// Summary holds the horizon-wide figures derived from a Projection.
type Summary struct {
	Start                NullDate        `json:"start"`
	HorizonDays          int             `json:"horizonDays"`
	OpeningBalance       decimal.Decimal `json:"openingBalance"`
	ClosingBalance       decimal.Decimal `json:"closingBalance"`
	TotalInflows         decimal.Decimal `json:"totalInflows"`
	TotalOutflows        decimal.Decimal `json:"totalOutflows"`
	FlowNet              decimal.Decimal `json:"flowNet"`
	CriticalDay          *CriticalDay    `json:"criticalDay"`
	HighPaymentThreshold decimal.Decimal `json:"highPaymentThreshold"`
	HighPaymentAlert     bool            `json:"highPaymentAlert"`
	LowBalanceThreshold  decimal.Decimal `json:"lowBalanceThreshold"`
	LowBalanceDays       []LowBalanceDay `json:"lowBalanceDays"`
	TopInflows           []FlowDetail    `json:"topInflows"`
	TopOutflows          []FlowDetail    `json:"topOutflows"`
}

// Summarize derives totals, the critical day, alerts and the largest
// movements from p. The critical day is the minimum net flow, earliest date
// on ties; it is nil only for an empty horizon.
func Summarize(p Projection, cfg Config, opts SummaryOptions) Summary {
	s := Summary{
		Start:                p.Start,
		HorizonDays:          p.HorizonDays,
		OpeningBalance:       p.OpeningBalance,
		ClosingBalance:       p.ClosingBalance(),
		TotalInflows:         decimal.Zero,
		TotalOutflows:        decimal.Zero,
		HighPaymentThreshold: cfg.highPaymentThreshold,
		LowBalanceThreshold:  cfg.lowBalanceThreshold,
		LowBalanceDays:       []LowBalanceDay{},
	}

	var inflows, outflows []FlowDetail
	for i, e := range p.Days {
		s.TotalInflows = s.TotalInflows.Add(e.Inflows)
		s.TotalOutflows = s.TotalOutflows.Add(e.TotalOutflows)

		if s.CriticalDay == nil || e.NetFlow.LessThan(s.CriticalDay.NetFlow) {
			s.CriticalDay = &CriticalDay{Date: p.Days[i].Date, NetFlow: e.NetFlow}
		}
		if e.RunningBalance.LessThan(cfg.lowBalanceThreshold) {
			s.LowBalanceDays = append(s.LowBalanceDays, LowBalanceDay{Date: e.Date, RunningBalance: e.RunningBalance})
		}

		inflows = append(inflows, e.DetailInflows...)
		outflows = append(outflows, e.DetailOutflows...)
	}

	s.FlowNet = s.TotalInflows.Sub(s.TotalOutflows)
	s.HighPaymentAlert = s.TotalOutflows.GreaterThan(cfg.highPaymentThreshold)
	s.TopInflows = topN(inflows, opts.TopInflows)
	s.TopOutflows = topN(outflows, opts.TopOutflows)
	return s
}

// topN returns the n largest details, keeping chronological insertion order
// among equal amounts.
func topN(details []FlowDetail, n int) []FlowDetail {
	sorted := append([]FlowDetail(nil), details...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []FlowDetail{}
	}
	return sorted
}
