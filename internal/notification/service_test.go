package notification

import (
	"testing"

	"TreasuryDash/internal/cashflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationInbox(t *testing.T) {
	ns := NewNotificationService()
	a := ns.AddNotification(Alert{Kind: KindHighPayment, Message: "too much"})
	assert.NotEmpty(t, a.ID)
	assert.False(t, a.RaisedAt.IsZero())

	list := ns.GetNotifications()
	require.Len(t, list, 1)
	list[0].Message = "mutated"
	assert.Equal(t, "too much", ns.GetNotifications()[0].Message)

	ns.ClearNotifications()
	assert.Empty(t, ns.GetNotifications())
}

func TestNotificationInboxLimit(t *testing.T) {
	ns := NewNotificationService()
	ns.limit = 3
	for i := 0; i < 5; i++ {
		ns.AddNotification(Alert{Kind: KindLowBalance, Amount: decimal.NewFromInt(int64(i))})
	}
	list := ns.GetNotifications()
	require.Len(t, list, 3)
	assert.True(t, list[0].Amount.Equal(decimal.NewFromInt(2)))
	assert.True(t, list[2].Amount.Equal(decimal.NewFromInt(4)))
}

func TestFromSummary(t *testing.T) {
	s := cashflow.Summary{
		Start:                cashflow.NewDate(2024, 6, 3),
		HorizonDays:          7,
		TotalOutflows:        decimal.NewFromInt(150_000_000),
		HighPaymentThreshold: decimal.NewFromInt(100_000_000),
		HighPaymentAlert:     true,
		LowBalanceThreshold:  decimal.NewFromInt(50_000_000),
		LowBalanceDays: []cashflow.LowBalanceDay{
			{Date: cashflow.NewDate(2024, 6, 5), RunningBalance: decimal.NewFromInt(40_000_000)},
			{Date: cashflow.NewDate(2024, 6, 6), RunningBalance: decimal.NewFromInt(-1_000)},
		},
	}

	alerts := FromSummary(s)
	require.Len(t, alerts, 3)
	assert.Equal(t, KindHighPayment, alerts[0].Kind)
	assert.Contains(t, alerts[0].Message, "150000000")
	assert.Equal(t, KindLowBalance, alerts[1].Kind)
	assert.Contains(t, alerts[1].Message, "2024-06-05")
	assert.True(t, alerts[2].Amount.Equal(decimal.NewFromInt(-1_000)))

	assert.Empty(t, FromSummary(cashflow.Summary{}))
}
