package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"TreasuryDash/internal/config"
	"TreasuryDash/internal/dashboard"
	"TreasuryDash/internal/export"
	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/treasury"
)

// ReportConfig drives the scheduled dashboard regeneration.
type ReportConfig struct {
	Schedule   string
	TimeZone   string
	OutputDir  string
	MaxRetries int
	RetryDelay time.Duration
}

// NewDefaultReportConfig creates a ReportConfig with default values from config package
func NewDefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Schedule:   config.DefaultReportSchedule,
		TimeZone:   config.DefaultTimeZone,
		OutputDir:  config.DefaultOutputDir,
		MaxRetries: 3,
		RetryDelay: 2 * time.Second,
	}
}

// ReportResult is what one run produced.
type ReportResult struct {
	Dashboard    dashboard.Dashboard
	SnapshotPath string
	WorkbookPath string
}

// RetryWithBackoff calls fn until it succeeds, doubling the delay after each
// failure. It gives up early when ctx is done.
func RetryWithBackoff(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	log := logger.WithComponent("jobs")
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * initialDelay
			log.Warn().Dur("delay", delay).Int("attempt", attempt).Int("max", maxRetries).Msg("Retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		log.Warn().Err(lastErr).Int("attempt", attempt+1).Msg("Attempt failed")
	}

	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}

// RunReportOnce builds the dashboard, writes the JSON snapshot and the
// workbook into cfg.OutputDir and publishes the alerts.
func RunReportOnce(ctx context.Context, cfg *ReportConfig, env *treasury.Env) (ReportResult, error) {
	const op = "jobs.RunReportOnce"

	var d dashboard.Dashboard
	err := RetryWithBackoff(ctx, cfg.MaxRetries, cfg.RetryDelay, func() error {
		var err error
		d, err = env.BuildDashboard(ctx)
		return err
	})
	if err != nil {
		return ReportResult{}, fmt.Errorf("%s: build dashboard: %w", op, err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return ReportResult{}, fmt.Errorf("%s: %w", op, err)
	}
	res := ReportResult{
		Dashboard:    d,
		SnapshotPath: filepath.Join(cfg.OutputDir, config.SnapshotFileName),
		WorkbookPath: filepath.Join(cfg.OutputDir, config.WorkbookFileName),
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return ReportResult{}, fmt.Errorf("%s: encode snapshot: %w", op, err)
	}
	if err := os.WriteFile(res.SnapshotPath, data, 0644); err != nil {
		return ReportResult{}, fmt.Errorf("%s: write snapshot: %w", op, err)
	}
	if err := export.Save(res.WorkbookPath, export.FromDashboard(d)); err != nil {
		return ReportResult{}, fmt.Errorf("%s: %w", op, err)
	}

	alerts := env.Publish(d)
	logger.Audit(fmt.Sprintf("Cash-flow report %s generated with %d alerts", d.ID, len(alerts)))
	return res, nil
}
