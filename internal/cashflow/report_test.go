package cashflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectionWithNets(nets ...int64) Projection {
	p := Projection{Start: NewDate(2024, 1, 1), HorizonDays: len(nets), OpeningBalance: dec(1_000)}
	running := p.OpeningBalance
	for i, n := range nets {
		e := DailyEntry{Date: NewDate(2024, 1, 1).AddDays(i), Inflows: dec(0), TotalOutflows: dec(0)}
		if n >= 0 {
			e.Inflows = dec(n)
		} else {
			e.TotalOutflows = dec(-n)
			e.OutflowsFromPayables = dec(-n)
		}
		e.NetFlow = dec(n)
		running = running.Add(e.NetFlow)
		e.RunningBalance = running
		p.Days = append(p.Days, e)
	}
	return p
}

func TestSummarizeCriticalDayEarliestOnTies(t *testing.T) {
	p := projectionWithNets(10, -50, 5, -50, 0)
	s := Summarize(p, DefaultConfig(), DefaultSummaryOptions())

	require.NotNil(t, s.CriticalDay)
	assert.Equal(t, NewDate(2024, 1, 2), s.CriticalDay.Date)
	assert.True(t, s.CriticalDay.NetFlow.Equal(dec(-50)))
	assert.True(t, s.TotalInflows.Equal(dec(15)))
	assert.True(t, s.TotalOutflows.Equal(dec(100)))
	assert.True(t, s.FlowNet.Equal(dec(-85)))
	assert.True(t, s.ClosingBalance.Equal(dec(915)))
}

func TestSummarizeCriticalDayWhenAllPositive(t *testing.T) {
	s := Summarize(projectionWithNets(30, 20, 40), DefaultConfig(), DefaultSummaryOptions())
	require.NotNil(t, s.CriticalDay)
	assert.Equal(t, NewDate(2024, 1, 2), s.CriticalDay.Date)
}

func TestSummarizeEmptyHorizon(t *testing.T) {
	s := Summarize(projectionWithNets(), DefaultConfig(), DefaultSummaryOptions())
	assert.Nil(t, s.CriticalDay)
	assert.Empty(t, s.TopInflows)
	assert.Empty(t, s.TopOutflows)
	assert.False(t, s.HighPaymentAlert)
	assert.True(t, s.ClosingBalance.Equal(dec(1_000)))
}

func TestSummarizeHighPaymentAlertIsStrict(t *testing.T) {
	cfg := NewConfig(20, nil, nil, WithHighPaymentThreshold(dec(100)))

	assert.False(t, Summarize(projectionWithNets(-60, -40), cfg, DefaultSummaryOptions()).HighPaymentAlert)
	assert.True(t, Summarize(projectionWithNets(-60, -41), cfg, DefaultSummaryOptions()).HighPaymentAlert)
}

func TestSummarizeLowBalanceDays(t *testing.T) {
	cfg := NewConfig(20, nil, nil, WithLowBalanceThreshold(dec(900)))
	s := Summarize(projectionWithNets(-50, -60, 200), cfg, DefaultSummaryOptions())

	require.Len(t, s.LowBalanceDays, 1)
	assert.Equal(t, NewDate(2024, 1, 2), s.LowBalanceDays[0].Date)
	assert.True(t, s.LowBalanceDays[0].RunningBalance.Equal(dec(890)))
}

func TestSummarizeTopFlows(t *testing.T) {
	cfg := NewConfig(0, nil, nil)
	recs, _ := NormalizeReceivables([]LedgerDocument{
		{CounterpartyName: "small", EmissionDate: NewDate(2024, 1, 5), Balance: dec(10)},
		{CounterpartyName: "tie-first", EmissionDate: NewDate(2024, 1, 5), Balance: dec(50)},
		{CounterpartyName: "big", EmissionDate: NewDate(2024, 1, 12), Balance: dec(90)},
		{CounterpartyName: "tie-second", EmissionDate: NewDate(2024, 1, 12), Balance: dec(50)},
	}, cfg)
	pays, _ := NormalizePayables([]LedgerDocument{
		{CounterpartyName: "p1", DueDate: NewDate(2024, 1, 3), Balance: dec(-5)},
	}, CreditNegative)

	p := Project(ProjectionInput{Start: day(2024, 1, 1), HorizonDays: 20, Receivables: recs, Payables: pays}, cfg)
	s := Summarize(p, cfg, SummaryOptions{TopInflows: 3, TopOutflows: 5})

	names := make([]string, 0, len(s.TopInflows))
	for _, d := range s.TopInflows {
		names = append(names, d.Counterparty)
	}
	assert.Equal(t, []string{"big", "tie-first", "tie-second"}, names)
	require.Len(t, s.TopOutflows, 1)
	assert.Equal(t, "p1", s.TopOutflows[0].Counterparty)
}
