package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BankBalance is the available balance of one bank account.
type BankBalance struct {
	Bank      string          `json:"bank"`
	Account   string          `json:"account,omitempty"`
	Currency  string          `json:"currency"`
	Available decimal.Decimal `json:"available"`
}

// Rates maps a currency code to its value in the base currency.
type Rates map[string]decimal.Decimal

// ParseRates reads "USD=890,EUR=1030". The base currency does not need an
// entry; it always converts at 1.
func ParseRates(raw string) (Rates, error) {
	const op = "ledger.ParseRates"

	rates := Rates{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%s: %q is not CODE=RATE", op, part)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%s: rate for %s: %w", op, code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("%s: rate for %s must be positive", op, code)
		}
		rates[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}

// Consolidation is the opening balance of a projection expressed in the
// base currency.
type Consolidation struct {
	Base       string                     `json:"base"`
	ByCurrency map[string]decimal.Decimal `json:"byCurrency"`
	Total      decimal.Decimal            `json:"total"`
	// Unknown lists currencies without a rate; their balances are left out
	// of Total.
	Unknown []string `json:"unknown"`
}

// Consolidate converts every balance to base and sums them. Currency codes
// are compared case-insensitively; an empty code is taken as base.
func Consolidate(balances []BankBalance, rates Rates, base string) Consolidation {
	base = strings.ToUpper(base)
	c := Consolidation{
		Base:       base,
		ByCurrency: map[string]decimal.Decimal{},
		Total:      decimal.Zero,
		Unknown:    []string{},
	}
	unknown := map[string]bool{}

	for _, b := range balances {
		cur := strings.ToUpper(strings.TrimSpace(b.Currency))
		if cur == "" {
			cur = base
		}
		c.ByCurrency[cur] = c.ByCurrency[cur].Add(b.Available)

		rate := decimal.NewFromInt(1)
		if cur != base {
			r, ok := rates[cur]
			if !ok {
				unknown[cur] = true
				continue
			}
			rate = r
		}
		c.Total = c.Total.Add(b.Available.Mul(rate))
	}

	for cur := range unknown {
		c.Unknown = append(c.Unknown, cur)
	}
	sort.Strings(c.Unknown)
	c.Total = c.Total.Round(minorUnits(base))
	return c
}

// zeroDecimalCurrencies have no minor unit (ISO 4217 exponent 0).
var zeroDecimalCurrencies = map[string]bool{
	"CLP": true, "JPY": true, "KRW": true, "PYG": true, "ISK": true,
	"VND": true, "UGX": true, "XAF": true, "XOF": true,
}

// minorUnits is the number of decimals amounts in cur are kept to.
func minorUnits(cur string) int32 {
	if zeroDecimalCurrencies[cur] {
		return 0
	}
	return 2
}
