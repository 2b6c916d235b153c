package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"TreasuryDash/internal/logger"
)

const (
	DefaultTimeZone       = "America/Santiago"
	DefaultReportSchedule = "0 8,18 * * *"
	DefaultConfigPath     = "cashflow_config.json"
	DefaultLedgerPath     = "ledger_snapshot.json"
	DefaultServicesPath   = "services.yaml"
	DefaultOutputDir      = "./output"
	DefaultBaseCurrency   = "CLP"
	DefaultFXRates        = "USD=890,EUR=1030"
	DefaultHorizonDays    = 14
	DefaultHTTPPort       = 6143
	MaxHorizonDays        = 366
	SnapshotFileName      = "dashboard_snapshot.json"
	WorkbookFileName      = "cashflow_report.xlsx"
)

// Settings are the process-level settings read from the environment.
type Settings struct {
	ConfigPath   string
	LedgerPath   string
	ServicesPath string
	OutputDir    string
	TimeZone     string
	BaseCurrency string
	FXRates      string

	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Settings, error) {
	s := &Settings{
		ConfigPath:    getEnv("TREASURY_CONFIG_PATH", DefaultConfigPath),
		LedgerPath:    getEnv("TREASURY_LEDGER_PATH", DefaultLedgerPath),
		ServicesPath:  getEnv("TREASURY_SERVICES_PATH", DefaultServicesPath),
		OutputDir:     getEnv("TREASURY_OUTPUT_DIR", DefaultOutputDir),
		TimeZone:      getEnv("TREASURY_TIMEZONE", DefaultTimeZone),
		BaseCurrency:  getEnv("TREASURY_BASE_CURRENCY", DefaultBaseCurrency),
		FXRates:       getEnv("TREASURY_FX_RATES", DefaultFXRates),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}

func (s *Settings) validate() error {
	if _, err := time.LoadLocation(s.TimeZone); err != nil {
		return fmt.Errorf("TREASURY_TIMEZONE %q: %w", s.TimeZone, err)
	}
	if s.BaseCurrency == "" {
		return fmt.Errorf("TREASURY_BASE_CURRENCY is required")
	}
	return nil
}

// Location returns the reporting time zone. validate guarantees it loads.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetLoggerConfig returns a logger configuration from the settings
func (s *Settings) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      s.LogLevel,
		Format:     s.LogFormat,
		TimeFormat: s.LogTimeFormat,
		Output:     s.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
