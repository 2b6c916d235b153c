package notification

import (
	"fmt"
	"sync"
	"time"

	"TreasuryDash/internal/cashflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindHighPayment Kind = "high_payment"
	KindLowBalance  Kind = "low_balance"
	KindConfig      Kind = "config_defaults"
)

// Alert is one treasury warning shown in the dashboard inbox.
type Alert struct {
	ID       string            `json:"id"`
	Kind     Kind              `json:"kind"`
	Message  string            `json:"message"`
	Date     cashflow.NullDate `json:"date"`
	Amount   decimal.Decimal   `json:"amount"`
	RaisedAt time.Time         `json:"raisedAt"`
}

// NotificationService is the in-memory alert inbox. It keeps at most limit
// alerts, dropping the oldest.
type NotificationService struct {
	mu            sync.Mutex
	notifications []Alert
	limit         int
}

const DefaultLimit = 200

func NewNotificationService() *NotificationService {
	return &NotificationService{
		notifications: make([]Alert, 0),
		limit:         DefaultLimit,
	}
}

func (ns *NotificationService) AddNotification(a Alert) Alert {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.RaisedAt.IsZero() {
		a.RaisedAt = time.Now().UTC()
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.notifications = append(ns.notifications, a)
	if over := len(ns.notifications) - ns.limit; over > 0 {
		ns.notifications = append([]Alert(nil), ns.notifications[over:]...)
	}
	return a
}

// GetNotifications returns a copy of the inbox, oldest first.
func (ns *NotificationService) GetNotifications() []Alert {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return append([]Alert{}, ns.notifications...)
}

func (ns *NotificationService) ClearNotifications() {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.notifications = []Alert{}
}

// FromSummary derives the alerts of one projection summary: one for total
// outflows over the high-payment threshold and one per low-balance day.
func FromSummary(s cashflow.Summary) []Alert {
	var alerts []Alert
	if s.HighPaymentAlert {
		alerts = append(alerts, Alert{
			Kind:    KindHighPayment,
			Message: fmt.Sprintf("Payments of %s over the next %d days exceed %s", s.TotalOutflows.StringFixed(0), s.HorizonDays, s.HighPaymentThreshold.StringFixed(0)),
			Date:    s.Start,
			Amount:  s.TotalOutflows,
		})
	}
	for _, d := range s.LowBalanceDays {
		alerts = append(alerts, Alert{
			Kind:    KindLowBalance,
			Message: fmt.Sprintf("Projected balance %s on %s is below %s", d.RunningBalance.StringFixed(0), d.Date, s.LowBalanceThreshold.StringFixed(0)),
			Date:    d.Date,
			Amount:  d.RunningBalance,
		})
	}
	return alerts
}
