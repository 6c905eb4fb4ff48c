package controllers

import (
	"context"
	"fmt"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/metrics"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/sirupsen/logrus"
)

// SnapshotStore keeps timestamped copies of the library
type SnapshotStore interface {
	SaveSnapshot(snapshot *models.Snapshot) error
	ListSnapshots(key string) ([]*models.Snapshot, error)
	DeleteSnapshot(id uint64) error
}

// BackupController stores and prunes library snapshots
type BackupController struct {
	store     SnapshotStore
	lib       *library.Library
	key       string
	retention int
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// NewBackupController creates a new backup controller
func NewBackupController(store SnapshotStore, lib *library.Library, key string, retention int, m *metrics.Metrics, logger *logrus.Logger) *BackupController {
	if retention < 1 {
		retention = 1
	}
	return &BackupController{
		store:     store,
		lib:       lib,
		key:       key,
		retention: retention,
		metrics:   m,
		logger:    logger,
	}
}

// Backup stores the current library as a snapshot and removes the oldest
// snapshots beyond the retention. An unloaded or empty library is skipped.
func (c *BackupController) Backup(ctx context.Context) (err error) {
	defer func() { c.metrics.Backup(err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !c.lib.Loaded() {
		c.logger.Debug("Library not loaded yet, skipping backup")
		return nil
	}
	records := c.lib.Records()
	if len(records) == 0 {
		c.logger.Debug("Library is empty, skipping backup")
		return nil
	}

	data, err := EncodeRecords(records)
	if err != nil {
		return err
	}

	snapshot := &models.Snapshot{
		Key:     c.key,
		Data:    data,
		Records: len(records),
	}
	if err := c.store.SaveSnapshot(snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"snapshot_id": snapshot.ID,
		"records":     snapshot.Records,
	}).Info("Library snapshot saved")

	return c.prune()
}

// prune deletes every snapshot past the retention, oldest first
func (c *BackupController) prune() error {
	snapshots, err := c.store.ListSnapshots(c.key)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snapshots) <= c.retention {
		return nil
	}

	pruned := 0
	for _, s := range snapshots[c.retention:] {
		if err := c.store.DeleteSnapshot(s.ID); err != nil {
			c.logger.WithError(err).WithField("snapshot_id", s.ID).Error("Failed to delete snapshot")
			continue
		}
		pruned++
	}

	c.logger.WithFields(logrus.Fields{
		"pruned":    pruned,
		"retention": c.retention,
	}).Info("Old snapshots pruned")
	return nil
}
