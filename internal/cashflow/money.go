package cashflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Money is a decimal that reads and writes as a plain number in JSON and
// YAML files. Quoted numbers are accepted on input.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{d} }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("amount %s: %w", data, err)
		}
	}
	d, err := ParseAmount(raw)
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

func (m Money) MarshalYAML() (interface{}, error) {
	s := m.Decimal.String()
	tag := "!!int"
	if strings.Contains(s, ".") {
		tag = "!!float"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s}, nil
}

func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	d, err := ParseAmount(value.Value)
	if err != nil {
		return err
	}
	m.Decimal = d
	return nil
}

// ParseAmount reads a ledger amount. It tolerates currency symbols, spaces
// and thousands separators written as commas or underscores.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("$", "", " ", "", ",", "", "_", "").Replace(s)
	if s == "" || s == "-" {
		return decimal.Zero, fmt.Errorf("empty amount %q", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}
