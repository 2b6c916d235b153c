package cashflow

import "strings"

// PaymentTermOverride assigns a payment term to every counterparty whose name
// contains Pattern (case-insensitive).
type PaymentTermOverride struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Days    int    `json:"days" yaml:"days"`
}

// ResolvePaymentTermDays returns the days of the first override whose pattern
// is contained in name, or defaultDays when none matches. Overrides are scanned
// in configured order, so when two patterns match the earlier one wins.
// Overrides with an empty pattern or negative days never match.
func ResolvePaymentTermDays(name string, overrides []PaymentTermOverride, defaultDays int) int {
	upper := strings.ToUpper(name)
	for _, o := range overrides {
		if o.Pattern == "" || o.Days < 0 {
			continue
		}
		if strings.Contains(upper, strings.ToUpper(o.Pattern)) {
			return o.Days
		}
	}
	if defaultDays < 0 {
		return 0
	}
	return defaultDays
}

// PaymentTermDays resolves the payment term of a counterparty under c.
func (c Config) PaymentTermDays(counterparty string) int {
	return ResolvePaymentTermDays(counterparty, c.overrides, c.defaultPaymentTermDays)
}
