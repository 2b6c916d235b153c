package cashflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePaymentTermDays(t *testing.T) {
	overrides := []PaymentTermOverride{
		{Pattern: "walmart", Days: 45},
		{Pattern: "WAL", Days: 10},
		{Pattern: "", Days: 99},
		{Pattern: "acme", Days: -5},
		{Pattern: "ACME CORP", Days: 7},
		{Pattern: "Cencosud", Days: 30},
	}

	tests := []struct {
		name        string
		counterpart string
		defaultDays int
		want        int
	}{
		{"case-insensitive substring", "Walmart Chile S.A.", 20, 45},
		{"first match wins", "WALMART", 20, 45},
		{"later pattern when earlier misses", "Walton Ltda", 20, 10},
		{"no match uses default", "Falabella", 20, 20},
		{"empty pattern never matches", "Anything", 15, 15},
		{"empty name falls to default", "", 20, 20},
		{"negative default clamps to zero", "Falabella", -3, 0},
		{"negative override is ignored", "Acme Corp SpA", 20, 7},
		{"negative override falls to default", "Acme Ltda", 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePaymentTermDays(tt.counterpart, overrides, tt.defaultDays))
		})
	}
}

func TestResolvePaymentTermDaysOrderMatters(t *testing.T) {
	a := []PaymentTermOverride{{Pattern: "SMU", Days: 60}, {Pattern: "UNIMARC SMU", Days: 5}}
	b := []PaymentTermOverride{{Pattern: "UNIMARC SMU", Days: 5}, {Pattern: "SMU", Days: 60}}

	assert.Equal(t, 60, ResolvePaymentTermDays("Unimarc SMU", a, 20))
	assert.Equal(t, 5, ResolvePaymentTermDays("Unimarc SMU", b, 20))
}

func TestConfigPaymentTermDays(t *testing.T) {
	cfg := NewConfig(25, []PaymentTermOverride{{Pattern: "lider", Days: 40}}, nil)
	assert.Equal(t, 40, cfg.PaymentTermDays("Hiper Lider"))
	assert.Equal(t, 25, cfg.PaymentTermDays("Tottus"))
}
