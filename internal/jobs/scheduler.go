package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/serviceiface"
	"TreasuryDash/internal/treasury"

	"github.com/robfig/cron/v3"
)

// CronService regenerates the dashboard snapshot, the workbook and the
// alerts on a cron schedule.
type CronService struct {
	config map[string]interface{}
	env    *treasury.Env

	mu     sync.Mutex
	cron   *cron.Cron
	report *ReportConfig
	ctx    context.Context
	cancel context.CancelFunc
}

func NewCronService(cfg map[string]interface{}, env *treasury.Env) serviceiface.Service {
	return &CronService{
		config: cfg,
		env:    env,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

// reportConfig merges services.yaml overrides over the defaults.
func (s *CronService) reportConfig() *ReportConfig {
	rc := NewDefaultReportConfig()
	if s.env != nil && s.env.Settings != nil {
		if s.env.Settings.TimeZone != "" {
			rc.TimeZone = s.env.Settings.TimeZone
		}
		if s.env.Settings.OutputDir != "" {
			rc.OutputDir = s.env.Settings.OutputDir
		}
	}
	if s.config == nil {
		return rc
	}
	if schedule, ok := s.config["schedule"].(string); ok && schedule != "" {
		rc.Schedule = schedule
	}
	if tz, ok := s.config["timezone"].(string); ok && tz != "" {
		rc.TimeZone = tz
	}
	if dir, ok := s.config["output_dir"].(string); ok && dir != "" {
		rc.OutputDir = dir
	}
	switch v := s.config["max_retries"].(type) {
	case int:
		rc.MaxRetries = v
	case float64:
		rc.MaxRetries = int(v)
	}
	if delay, ok := s.config["retry_delay"].(string); ok {
		if d, err := time.ParseDuration(delay); err == nil {
			rc.RetryDelay = d
		}
	}
	return rc
}

func (s *CronService) Start() error {
	log := logger.WithComponent("cron")

	rc := s.reportConfig()
	loc, err := time.LoadLocation(rc.TimeZone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %w", rc.TimeZone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(rc.Schedule, func() {
		log.Info().Msg("Starting scheduled cash-flow report")
		res, err := RunReportOnce(ctx, rc, s.env)
		if err != nil {
			log.Error().Err(err).Msg("Scheduled cash-flow report failed")
			logger.Audit(fmt.Sprintf("Cash-flow report failed: %v", err))
			return
		}
		log.Info().
			Str("id", res.Dashboard.ID).
			Str("snapshot", res.SnapshotPath).
			Str("workbook", res.WorkbookPath).
			Msg("Scheduled cash-flow report completed")
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule cash-flow report: %w", err)
	}
	c.Start()

	s.mu.Lock()
	s.cron, s.report, s.ctx, s.cancel = c, rc, ctx, cancel
	s.mu.Unlock()

	logger.Audit(fmt.Sprintf("Cron service started with schedule %q (%s)", rc.Schedule, rc.TimeZone))
	log.Info().Str("schedule", rc.Schedule).Str("timezone", rc.TimeZone).Msg("Cron service started")
	return nil
}

// RunNow triggers one report outside the schedule.
func (s *CronService) RunNow() (ReportResult, error) {
	s.mu.Lock()
	rc, ctx := s.report, s.ctx
	s.mu.Unlock()
	if rc == nil {
		rc, ctx = s.reportConfig(), context.Background()
	}
	return RunReportOnce(ctx, rc, s.env)
}

func (s *CronService) Stop() error {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	cancel()
	<-c.Stop().Done()
	logger.WithComponent("cron").Info().Msg("Cron service stopped")
	return nil
}
