package cashflow

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestProjectReceivableLandsOnFriday(t *testing.T) {
	cfg := NewConfig(20, nil, nil)
	recs, _ := NormalizeReceivables([]LedgerDocument{
		{CounterpartyName: "Falabella", DocumentRef: "F-1", EmissionDate: NewDate(2024, 1, 1), Balance: dec(20_000_000)},
	}, cfg)

	p := Project(ProjectionInput{
		Start:          day(2024, 1, 1),
		HorizonDays:    30,
		OpeningBalance: dec(100_000_000),
		Receivables:    recs,
	}, cfg)

	require.Len(t, p.Days, 30)
	friday, ok := p.Entry(day(2024, 1, 26))
	require.True(t, ok)
	assert.True(t, friday.Inflows.Equal(dec(20_000_000)))
	require.Len(t, friday.DetailInflows, 1)
	assert.Equal(t, "F-1", friday.DetailInflows[0].DocumentRef)
	assert.Equal(t, 20, friday.DetailInflows[0].PaymentTermDays)

	sunday, _ := p.Entry(day(2024, 1, 21))
	assert.True(t, sunday.Inflows.IsZero())
	assert.True(t, p.ClosingBalance().Equal(dec(120_000_000)))
}

func TestProjectRecurringSkipsShortMonth(t *testing.T) {
	cfg := NewConfig(20, nil, []RecurringPayment{
		{DayOfMonth: 31, Concept: "Cuota", Amount: dec(1_000_000), Frequency: Monthly},
	})
	p := Project(ProjectionInput{Start: day(2023, 2, 1), HorizonDays: 28}, cfg)

	for _, e := range p.Days {
		assert.True(t, e.OutflowsFromRecurring.IsZero(), e.Date.String())
	}
}

func TestProjectRecurringClampPolicy(t *testing.T) {
	cfg := NewConfig(20, nil, []RecurringPayment{
		{DayOfMonth: 31, Concept: "Cuota", Amount: dec(1_000_000), Frequency: Monthly},
	}, WithOverflowPolicy(OverflowClamp))
	p := Project(ProjectionInput{Start: day(2023, 2, 1), HorizonDays: 28}, cfg)

	last, ok := p.Entry(day(2023, 2, 28))
	require.True(t, ok)
	assert.True(t, last.OutflowsFromRecurring.Equal(dec(1_000_000)))
}

func TestProjectPayableOnSaturdayMovesToFriday(t *testing.T) {
	pays, _ := NormalizePayables([]LedgerDocument{
		{CounterpartyName: "Proveedor", DocumentRef: "P-1", DueDate: NewDate(2024, 1, 6), Balance: dec(-5_000_000), OriginTag: OriginInternational},
	}, CreditNegative)

	p := Project(ProjectionInput{Start: day(2024, 1, 1), HorizonDays: 14, Payables: pays}, DefaultConfig())

	friday, ok := p.Entry(day(2024, 1, 5))
	require.True(t, ok)
	assert.True(t, friday.OutflowsFromPayables.Equal(dec(5_000_000)))
	require.Len(t, friday.DetailOutflows, 1)
	assert.Equal(t, OriginInternational, friday.DetailOutflows[0].OriginTag)

	saturday, _ := p.Entry(day(2024, 1, 6))
	assert.True(t, saturday.OutflowsFromPayables.IsZero())
}

func TestProjectRecurrenceAndConservation(t *testing.T) {
	cfg := NewConfig(10, nil, []RecurringPayment{
		{DayOfMonth: 5, Concept: "Remuneraciones", Amount: dec(3_000), Frequency: Biweekly},
		{DayOfMonth: 12, Concept: "Arriendo", Amount: dec(1_000), Frequency: Monthly},
	})
	recs, _ := NormalizeReceivables([]LedgerDocument{
		{CounterpartyName: "A", EmissionDate: NewDate(2024, 3, 1), Balance: dec(7_000)},
		{CounterpartyName: "B", EmissionDate: NewDate(2024, 3, 4), Balance: dec(2_500)},
		// beyond the horizon
		{CounterpartyName: "C", EmissionDate: NewDate(2024, 6, 1), Balance: dec(9_999)},
	}, cfg)
	pays, _ := NormalizePayables([]LedgerDocument{
		{CounterpartyName: "X", DueDate: NewDate(2024, 3, 20), Balance: dec(-4_000)},
		// before the start
		{CounterpartyName: "Y", DueDate: NewDate(2024, 2, 20), Balance: dec(-1)},
	}, CreditNegative)

	opening := dec(50_000)
	p := Project(ProjectionInput{
		Start:          day(2024, 3, 1),
		HorizonDays:    31,
		OpeningBalance: opening,
		Receivables:    recs,
		Payables:       pays,
	}, cfg)

	running := opening
	totalIn, totalOut := decimal.Zero, decimal.Zero
	for i, e := range p.Days {
		assert.Equal(t, day(2024, 3, 1).AddDate(0, 0, i), e.Date.Time)
		assert.True(t, e.TotalOutflows.Equal(e.OutflowsFromPayables.Add(e.OutflowsFromRecurring)))
		assert.True(t, e.NetFlow.Equal(e.Inflows.Sub(e.TotalOutflows)))
		running = running.Add(e.NetFlow)
		assert.True(t, e.RunningBalance.Equal(running))
		totalIn = totalIn.Add(e.Inflows)
		totalOut = totalOut.Add(e.TotalOutflows)
	}
	assert.True(t, totalIn.Equal(dec(9_500)))
	// two payroll installments, one rent, one payable
	assert.True(t, totalOut.Equal(dec(3_000*2+1_000+4_000)))
	assert.True(t, p.ClosingBalance().Equal(opening.Add(totalIn).Sub(totalOut)))

	fifth, _ := p.Entry(day(2024, 3, 5))
	twentieth, _ := p.Entry(day(2024, 3, 20))
	assert.True(t, fifth.OutflowsFromRecurring.Equal(dec(3_000)))
	assert.True(t, twentieth.OutflowsFromRecurring.Equal(dec(3_000)))
	assert.True(t, twentieth.OutflowsFromPayables.Equal(dec(4_000)))
	assert.Len(t, twentieth.DetailOutflows, 2)
}

func TestProjectBiweeklySecondInstallmentOverflow(t *testing.T) {
	payroll := RecurringPayment{DayOfMonth: 20, Concept: "Payroll", Amount: dec(100), Frequency: Biweekly}

	// 20 + 15 = 35 never exists
	skip := Project(ProjectionInput{Start: day(2024, 4, 1), HorizonDays: 30}, NewConfig(20, nil, []RecurringPayment{payroll}))
	total := decimal.Zero
	for _, e := range skip.Days {
		total = total.Add(e.OutflowsFromRecurring)
	}
	assert.True(t, total.Equal(dec(100)))

	clamp := Project(ProjectionInput{Start: day(2024, 4, 1), HorizonDays: 30},
		NewConfig(20, nil, []RecurringPayment{payroll}, WithOverflowPolicy(OverflowClamp)))
	last, _ := clamp.Entry(day(2024, 4, 30))
	assert.True(t, last.OutflowsFromRecurring.Equal(dec(100)))
}

func TestProjectClampedBiweeklyPaysOncePerDay(t *testing.T) {
	cfg := NewConfig(20, nil, []RecurringPayment{
		{DayOfMonth: 31, Concept: "Arriendo", Amount: dec(10), Frequency: Biweekly},
	}, WithOverflowPolicy(OverflowClamp))
	p := Project(ProjectionInput{Start: day(2024, 1, 1), HorizonDays: 60}, cfg)

	for _, d := range []time.Time{day(2024, 1, 31), day(2024, 2, 29)} {
		e, ok := p.Entry(d)
		require.True(t, ok)
		assert.True(t, e.OutflowsFromRecurring.Equal(dec(10)), d.Format("2006-01-02"))
		assert.Len(t, e.DetailOutflows, 1)
	}
}

func TestProjectDayThirtyOneIsMonthly(t *testing.T) {
	cfg := NewConfig(20, nil, []RecurringPayment{
		{DayOfMonth: 31, Concept: "Cuota", Amount: dec(10), Frequency: Monthly},
	})
	p := Project(ProjectionInput{Start: day(2024, 1, 1), HorizonDays: 91}, cfg)

	var fired []string
	for _, e := range p.Days {
		if !e.OutflowsFromRecurring.IsZero() {
			fired = append(fired, e.Date.String())
		}
	}
	assert.Equal(t, []string{"2024-01-31", "2024-03-31"}, fired)
}

func TestProjectEmptyHorizon(t *testing.T) {
	p := Project(ProjectionInput{Start: day(2024, 1, 1), HorizonDays: 0, OpeningBalance: dec(42)}, DefaultConfig())
	assert.Empty(t, p.Days)
	assert.True(t, p.ClosingBalance().Equal(dec(42)))

	neg := ProjectionInput{HorizonDays: -1}
	assert.ErrorIs(t, neg.Validate(), ErrInvalidHorizon)
	assert.Empty(t, Project(neg, DefaultConfig()).Days)
}

func TestProjectIsIdempotent(t *testing.T) {
	cfg := NewConfig(15, nil, []RecurringPayment{
		{DayOfMonth: 1, Concept: "Rent", Amount: dec(10), Frequency: Monthly},
	})
	recs, _ := NormalizeReceivables([]LedgerDocument{
		{CounterpartyName: "A", EmissionDate: NewDate(2024, 5, 2), Balance: dec(300)},
		{CounterpartyName: "B", EmissionDate: NewDate(2024, 5, 2), Balance: dec(300)},
	}, cfg)
	in := ProjectionInput{Start: day(2024, 5, 1), HorizonDays: 45, OpeningBalance: dec(5), Receivables: recs}

	a, err := json.Marshal(Project(in, cfg))
	require.NoError(t, err)
	b, err := json.Marshal(Project(in, cfg))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestProjectStartTruncatesTime(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)
	p := Project(ProjectionInput{Start: time.Date(2024, 1, 1, 23, 30, 0, 0, loc), HorizonDays: 1}, DefaultConfig())
	require.Len(t, p.Days, 1)
	assert.Equal(t, "2024-01-01", p.Days[0].Date.String())
}
