package cashflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"TreasuryDash/internal/logger"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the configuration file is absent or incomplete.
const (
	DefaultPaymentTermDays = 20
)

var (
	DefaultHighPaymentThreshold = decimal.NewFromInt(100_000_000)
	DefaultLowBalanceThreshold  = decimal.NewFromInt(50_000_000)

	ErrInvalidConfig = errors.New("invalid cashflow configuration")
)

// Frequency of a recurring payment.
type Frequency string

const (
	Monthly  Frequency = "monthly"
	Biweekly Frequency = "biweekly"
)

// ParseFrequency accepts the canonical names and the legacy Spanish ones.
func ParseFrequency(s string) (Frequency, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly", "mensual":
		return Monthly, true
	case "biweekly", "quincenal":
		return Biweekly, true
	}
	return "", false
}

// OverflowPolicy decides what a recurring payment does in a month shorter
// than its day of month.
type OverflowPolicy string

const (
	// OverflowSkip: the payment does not fire that month.
	OverflowSkip OverflowPolicy = "skip"
	// OverflowClamp: the payment fires on the last day of the month.
	OverflowClamp OverflowPolicy = "clamp"
)

// RecurringPayment is a fixed obligation (payroll, taxes, leases) that does
// not come from the ledger.
type RecurringPayment struct {
	DayOfMonth int
	Concept    string
	Amount     decimal.Decimal
	Frequency  Frequency
}

// Config is the engine configuration. It is immutable once built: every
// engine call receives it by value and accessors hand out copies.
type Config struct {
	defaultPaymentTermDays int
	overrides              []PaymentTermOverride
	recurring              []RecurringPayment
	highPaymentThreshold   decimal.Decimal
	lowBalanceThreshold    decimal.Decimal
	overflowPolicy         OverflowPolicy
	usedDefaults           bool
	defaultsReason         string
}

// Option customises a Config built with NewConfig.
type Option func(*Config)

func WithHighPaymentThreshold(d decimal.Decimal) Option {
	return func(c *Config) { c.highPaymentThreshold = d }
}

func WithLowBalanceThreshold(d decimal.Decimal) Option {
	return func(c *Config) { c.lowBalanceThreshold = d }
}

func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(c *Config) { c.overflowPolicy = p }
}

// DefaultConfig is the fallback used when no configuration can be read.
func DefaultConfig() Config {
	return NewConfig(DefaultPaymentTermDays, nil, nil)
}

// NewConfig builds a Config, silently dropping invalid overrides and
// recurring payments. Use ConfigFromFile to get the reasons.
func NewConfig(defaultDays int, overrides []PaymentTermOverride, recurring []RecurringPayment, opts ...Option) Config {
	c, _ := buildConfig(defaultDays, overrides, recurring, opts...)
	return c
}

func buildConfig(defaultDays int, overrides []PaymentTermOverride, recurring []RecurringPayment, opts ...Option) (Config, []string) {
	var warnings []string
	if defaultDays < 0 {
		warnings = append(warnings, fmt.Sprintf("defaultPaymentTermDays %d is negative, using %d", defaultDays, DefaultPaymentTermDays))
		defaultDays = DefaultPaymentTermDays
	}

	c := Config{
		defaultPaymentTermDays: defaultDays,
		highPaymentThreshold:   DefaultHighPaymentThreshold,
		lowBalanceThreshold:    DefaultLowBalanceThreshold,
		overflowPolicy:         OverflowSkip,
	}

	for i, o := range overrides {
		switch {
		case strings.TrimSpace(o.Pattern) == "":
			warnings = append(warnings, fmt.Sprintf("paymentTermOverrides[%d]: empty pattern", i))
			continue
		case o.Days < 0:
			warnings = append(warnings, fmt.Sprintf("paymentTermOverrides[%d] %q: negative days %d", i, o.Pattern, o.Days))
			continue
		}
		c.overrides = append(c.overrides, PaymentTermOverride{Pattern: strings.TrimSpace(o.Pattern), Days: o.Days})
	}

	for i, r := range recurring {
		switch {
		case r.DayOfMonth < 1 || r.DayOfMonth > 31:
			warnings = append(warnings, fmt.Sprintf("recurringPayments[%d] %q: dayOfMonth %d outside 1..31", i, r.Concept, r.DayOfMonth))
			continue
		case !r.Amount.IsPositive():
			warnings = append(warnings, fmt.Sprintf("recurringPayments[%d] %q: amount must be positive", i, r.Concept))
			continue
		case r.Frequency != Monthly && r.Frequency != Biweekly:
			warnings = append(warnings, fmt.Sprintf("recurringPayments[%d] %q: unknown frequency %q", i, r.Concept, r.Frequency))
			continue
		}
		c.recurring = append(c.recurring, r)
	}

	for _, opt := range opts {
		opt(&c)
	}
	if c.overflowPolicy != OverflowClamp {
		c.overflowPolicy = OverflowSkip
	}
	return c, warnings
}

func (c Config) DefaultPaymentTermDays() int           { return c.defaultPaymentTermDays }
func (c Config) HighPaymentThreshold() decimal.Decimal { return c.highPaymentThreshold }
func (c Config) LowBalanceThreshold() decimal.Decimal  { return c.lowBalanceThreshold }
func (c Config) OverflowPolicy() OverflowPolicy        { return c.overflowPolicy }

// UsedDefaults reports whether the configuration source was missing or
// unreadable and the documented defaults were applied instead.
func (c Config) UsedDefaults() bool     { return c.usedDefaults }
func (c Config) DefaultsReason() string { return c.defaultsReason }

// Overrides returns a copy of the payment-term overrides in precedence order.
func (c Config) Overrides() []PaymentTermOverride {
	return append([]PaymentTermOverride(nil), c.overrides...)
}

// Recurring returns a copy of the recurring payments in configured order.
func (c Config) Recurring() []RecurringPayment {
	return append([]RecurringPayment(nil), c.recurring...)
}

// MonthlyRecurringCommitment is what the recurring payments cost in a full
// month: biweekly payments count twice.
func (c Config) MonthlyRecurringCommitment() decimal.Decimal {
	total := decimal.Zero
	for _, r := range c.recurring {
		if r.Frequency == Biweekly {
			total = total.Add(r.Amount.Mul(decimal.NewFromInt(2)))
			continue
		}
		total = total.Add(r.Amount)
	}
	return total
}

// ---------------------------------------------------------------------------
// File format
// ---------------------------------------------------------------------------

// ConfigFile is the persisted shape of the engine configuration. The Spanish
// keys are the ones written by the previous dashboard and are still read.
type ConfigFile struct {
	DefaultPaymentTermDays  *int                  `json:"defaultPaymentTermDays,omitempty" yaml:"defaultPaymentTermDays,omitempty"`
	PaymentTermOverrides    []PaymentTermOverride `json:"paymentTermOverrides" yaml:"paymentTermOverrides"`
	RecurringPayments       []RecurringEntry      `json:"recurringPayments" yaml:"recurringPayments"`
	HighPaymentThreshold    *Money                `json:"highPaymentThreshold,omitempty" yaml:"highPaymentThreshold,omitempty"`
	LowBalanceThreshold     *Money                `json:"lowBalanceThreshold,omitempty" yaml:"lowBalanceThreshold,omitempty"`
	RecurringOverflowPolicy string                `json:"recurringOverflowPolicy,omitempty" yaml:"recurringOverflowPolicy,omitempty"`

	LegacyDefaultDays *int              `json:"defaultDias,omitempty" yaml:"defaultDias,omitempty"`
	LegacyClients     []legacyClient    `json:"clientes,omitempty" yaml:"clientes,omitempty"`
	LegacyRecurring   []legacyRecurrent `json:"recurrentes,omitempty" yaml:"recurrentes,omitempty"`
}

// RecurringEntry is one recurring payment as written in the file.
type RecurringEntry struct {
	DayOfMonth int    `json:"dayOfMonth" yaml:"dayOfMonth"`
	Concept    string `json:"concept" yaml:"concept"`
	Amount     Money  `json:"amount" yaml:"amount"`
	Frequency  string `json:"frequency" yaml:"frequency"`
}

type legacyClient struct {
	Name string `json:"nombre" yaml:"nombre"`
	Days int    `json:"dias" yaml:"dias"`
}

type legacyRecurrent struct {
	Day       int    `json:"dia" yaml:"dia"`
	Concept   string `json:"concepto" yaml:"concepto"`
	Amount    Money  `json:"monto" yaml:"monto"`
	Frequency string `json:"frecuencia" yaml:"frecuencia"`
}

// ConfigFromFile validates a decoded file. Warnings describe every entry that
// was dropped or corrected.
func ConfigFromFile(f ConfigFile) (Config, []string) {
	defaultDays := DefaultPaymentTermDays
	switch {
	case f.DefaultPaymentTermDays != nil:
		defaultDays = *f.DefaultPaymentTermDays
	case f.LegacyDefaultDays != nil:
		defaultDays = *f.LegacyDefaultDays
	}

	overrides := append([]PaymentTermOverride(nil), f.PaymentTermOverrides...)
	for _, lc := range f.LegacyClients {
		overrides = append(overrides, PaymentTermOverride{Pattern: lc.Name, Days: lc.Days})
	}

	var warnings []string
	var recurring []RecurringPayment
	addRecurring := func(day int, concept string, amount Money, freq string) {
		fr, ok := ParseFrequency(freq)
		if !ok {
			// keep the raw value so buildConfig reports it
			fr = Frequency(freq)
		}
		recurring = append(recurring, RecurringPayment{DayOfMonth: day, Concept: concept, Amount: amount.Decimal, Frequency: fr})
	}
	for _, r := range f.RecurringPayments {
		addRecurring(r.DayOfMonth, r.Concept, r.Amount, r.Frequency)
	}
	for _, r := range f.LegacyRecurring {
		addRecurring(r.Day, r.Concept, r.Amount, r.Frequency)
	}

	var opts []Option
	if f.HighPaymentThreshold != nil {
		opts = append(opts, WithHighPaymentThreshold(f.HighPaymentThreshold.Decimal))
	}
	if f.LowBalanceThreshold != nil {
		opts = append(opts, WithLowBalanceThreshold(f.LowBalanceThreshold.Decimal))
	}
	if p := OverflowPolicy(strings.ToLower(strings.TrimSpace(f.RecurringOverflowPolicy))); p != "" {
		if p != OverflowSkip && p != OverflowClamp {
			warnings = append(warnings, fmt.Sprintf("recurringOverflowPolicy %q unknown, using %q", f.RecurringOverflowPolicy, OverflowSkip))
		}
		opts = append(opts, WithOverflowPolicy(p))
	}

	c, buildWarnings := buildConfig(defaultDays, overrides, recurring, opts...)
	return c, append(warnings, buildWarnings...)
}

// File converts c back into its persisted shape (canonical keys only).
func (c Config) File() ConfigFile {
	days := c.defaultPaymentTermDays
	high := Money{c.highPaymentThreshold}
	low := Money{c.lowBalanceThreshold}
	f := ConfigFile{
		DefaultPaymentTermDays:  &days,
		PaymentTermOverrides:    c.Overrides(),
		RecurringPayments:       make([]RecurringEntry, 0, len(c.recurring)),
		HighPaymentThreshold:    &high,
		LowBalanceThreshold:     &low,
		RecurringOverflowPolicy: string(c.overflowPolicy),
	}
	if f.PaymentTermOverrides == nil {
		f.PaymentTermOverrides = []PaymentTermOverride{}
	}
	for _, r := range c.recurring {
		f.RecurringPayments = append(f.RecurringPayments, RecurringEntry{
			DayOfMonth: r.DayOfMonth,
			Concept:    r.Concept,
			Amount:     Money{r.Amount},
			Frequency:  string(r.Frequency),
		})
	}
	return f
}

// isYAML reports whether path should be read as YAML rather than JSON.
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// DecodeConfigFile parses data as YAML or JSON.
func DecodeConfigFile(data []byte, yamlFormat bool) (ConfigFile, error) {
	var f ConfigFile
	if yamlFormat {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return f, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return f, nil
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return f, nil
}

// EncodeConfigFile renders f as YAML or indented JSON.
func EncodeConfigFile(f ConfigFile, yamlFormat bool) ([]byte, error) {
	if yamlFormat {
		return yaml.Marshal(f)
	}
	return json.MarshalIndent(f, "", "  ")
}

// LoadConfig reads the configuration at path. It never fails: a missing or
// unreadable file yields DefaultConfig with UsedDefaults set, and the reason
// is logged.
func LoadConfig(path string) Config {
	log := logger.WithComponent("cashflow-config")

	data, err := os.ReadFile(path)
	if err != nil {
		reason := fmt.Sprintf("cannot read %s: %v", path, err)
		if errors.Is(err, os.ErrNotExist) {
			reason = fmt.Sprintf("%s not found", path)
		}
		log.Warn().Str("path", path).Str("reason", reason).Msg("Using default cashflow configuration")
		return defaultsBecause(reason)
	}

	f, err := DecodeConfigFile(data, isYAML(path))
	if err != nil {
		reason := fmt.Sprintf("cannot parse %s: %v", path, err)
		log.Warn().Str("path", path).Str("reason", reason).Msg("Using default cashflow configuration")
		return defaultsBecause(reason)
	}

	c, warnings := ConfigFromFile(f)
	for _, w := range warnings {
		log.Warn().Str("path", path).Msg(w)
	}
	log.Info().
		Str("path", path).
		Int("default_days", c.defaultPaymentTermDays).
		Int("overrides", len(c.overrides)).
		Int("recurring", len(c.recurring)).
		Msg("Cashflow configuration loaded")
	return c
}

func defaultsBecause(reason string) Config {
	c := DefaultConfig()
	c.usedDefaults = true
	c.defaultsReason = reason
	return c
}
