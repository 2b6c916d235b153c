package cashflow

import (
	"encoding/json"
	"strings"
	"time"
)

// DateFormat is the wire format of calendar dates.
const DateFormat = "2006-01-02"

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateFormat,
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
}

// NullDate is a calendar date that may be absent. A valid NullDate always
// holds midnight UTC of its day.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// DateOf truncates t to its calendar date (in t's own location) and returns it
// as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDate builds a valid NullDate for the given calendar day.
func NewDate(year int, month time.Month, day int) NullDate {
	return NullDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// Some wraps t as a valid NullDate.
func Some(t time.Time) NullDate {
	return NullDate{Time: DateOf(t), Valid: true}
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate is the only place raw date strings are interpreted. Anything it
// cannot read comes back as an invalid (null) date.
func ParseDate(raw string) NullDate {
	s := strings.TrimSpace(raw)
	if s == "" {
		return NullDate{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Some(t)
		}
	}
	if len(s) >= 10 {
		if t, err := time.Parse(DateFormat, s[:10]); err == nil {
			return Some(t)
		}
	}
	return NullDate{}
}

// AddDays shifts a valid date by n calendar days; null stays null.
func (d NullDate) AddDays(n int) NullDate {
	if !d.Valid {
		return d
	}
	return NullDate{Time: d.Time.AddDate(0, 0, n), Valid: true}
}

// String renders the date as YYYY-MM-DD, or "" when null.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateFormat)
}

func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(DateFormat))
}

func (d *NullDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDate(s)
	return nil
}

// DaysBetween counts calendar days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

// daysInMonth returns the length of the month containing t.
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ShiftWeekendBackToFriday is the payables policy: Saturday and Sunday move
// back to the preceding Friday, every other day is returned unchanged.
func ShiftWeekendBackToFriday(d NullDate) NullDate {
	if !d.Valid {
		return d
	}
	switch d.Time.Weekday() {
	case time.Saturday:
		return d.AddDays(-1)
	case time.Sunday:
		return d.AddDays(-2)
	}
	return d
}

// ForceToFridayCycle is the receivables policy: collections run weekly on
// Fridays, so any date moves forward to the first Friday on or after it.
func ForceToFridayCycle(d NullDate) NullDate {
	if !d.Valid {
		return d
	}
	offset := (int(time.Friday) - int(d.Time.Weekday()) + 7) % 7
	return d.AddDays(offset)
}
