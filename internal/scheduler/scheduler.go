package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/config"
	"github.com/bahsow/fleetdesk/internal/service/reporting"
)

// Scheduler manages the periodic anomaly scan and the monthly report export.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	cfg          config.ReportingConfig
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone.
func NewScheduler(cfg config.ReportingConfig, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []cron.Option{}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	} else {
		logger.Warn("invalid timezone, scheduler falls back to local time",
			zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	return &Scheduler{
		cron:         cron.New(opts...),
		reportingSvc: reportingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron loop. Jobs are skipped when no
// report owner is configured.
func (s *Scheduler) Start() {
	if s.cfg.OwnerID == "" {
		s.logger.Warn("REPORT_OWNER_ID not set, scheduled reports disabled")
		return
	}

	s.logger.Info("starting scheduler",
		zap.String("anomaly_cron", s.cfg.AnomalyCron),
		zap.String("export_cron", s.cfg.ExportCron))

	if _, err := s.cron.AddFunc(s.cfg.AnomalyCron, s.runAnomalyScan); err != nil {
		s.logger.Error("failed to schedule anomaly scan", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.ExportCron, s.runMonthlyExport); err != nil {
		s.logger.Error("failed to schedule monthly export", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runAnomalyScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	anomalies, err := s.reportingSvc.ScanAnomalies(ctx, s.cfg.OwnerID, now)
	if err != nil {
		s.logger.Error("anomaly scan failed", zap.Error(err))
		return
	}
	if len(anomalies) == 0 {
		s.logger.Info("anomaly scan clean")
		return
	}

	s.logger.Info("anomaly scan flagged dates", zap.Int("count", len(anomalies)))
	if err := s.reportingSvc.NotifyAnomalies(ctx, s.cfg.OwnerID, anomalies); err != nil {
		s.logger.Error("failed to send anomaly alert", zap.Error(err))
	}
}

func (s *Scheduler) runMonthlyExport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// The export job runs early in the new month and reports on the one before.
	previousMonth := time.Now().AddDate(0, -1, 0)
	if err := s.reportingSvc.ExportMonthlyReport(ctx, s.cfg.OwnerID, previousMonth); err != nil {
		s.logger.Error("monthly export failed", zap.Error(err))
		return
	}
	s.logger.Info("monthly report exported")
}
