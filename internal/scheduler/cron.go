package scheduler

import (
	"context"
	"fmt"

	"github.com/amaumene/cinetrack/internal/controllers"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron             *cron.Cron
	queue            *queue.Queue
	backupCtrl       *controllers.BackupController
	progressSchedule string
	backupSchedule   string
	logger           *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	q *queue.Queue,
	backupCtrl *controllers.BackupController,
	progressSchedule string,
	backupSchedule string,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		queue:            q,
		backupCtrl:       backupCtrl,
		progressSchedule: progressSchedule,
		backupSchedule:   backupSchedule,
		logger:           logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Report enrichment progress while work remains
	_, err := s.cron.AddFunc(s.progressSchedule, func() {
		s.runProgressReport()
	})
	if err != nil {
		return fmt.Errorf("failed to add progress report job: %w", err)
	}

	// Snapshot the library
	_, err = s.cron.AddFunc(s.backupSchedule, func() {
		s.runBackup()
	})
	if err != nil {
		return fmt.Errorf("failed to add backup job: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"progress_schedule": s.progressSchedule,
		"backup_schedule":   s.backupSchedule,
	}).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runProgressReport logs the enrichment queue progress
func (s *Scheduler) runProgressReport() {
	if s.queue.Len() == 0 {
		return
	}

	progress := s.queue.Progress()
	s.logger.WithFields(logrus.Fields{
		"processed": progress.Processed,
		"total":     progress.Total,
		"remaining": progress.Remaining,
		"percent":   fmt.Sprintf("%.1f", progress.Percent),
		"paused":    progress.Paused,
	}).Info("Enrichment progress")
}

// runBackup executes the backup job
func (s *Scheduler) runBackup() {
	s.logger.Info("Running scheduled backup")
	ctx := context.Background()

	if err := s.backupCtrl.Backup(ctx); err != nil {
		s.logger.WithError(err).Error("Backup job failed")
	} else {
		s.logger.Info("Backup job completed successfully")
	}
}
