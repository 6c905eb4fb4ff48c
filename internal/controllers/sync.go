package controllers

import (
	"context"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/parser"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/sirupsen/logrus"
)

// SyncController builds the authoritative library from the viewing log and
// the stored library at startup
type SyncController struct {
	store      LibraryStore
	storageKey string
	parser     *parser.Parser
	lib        *library.Library
	queue      *queue.Queue
	logger     *logrus.Logger
}

// NewSyncController creates a new sync controller. q may be nil when only
// the reconciled set is needed.
func NewSyncController(store LibraryStore, storageKey string, p *parser.Parser, lib *library.Library, q *queue.Queue, logger *logrus.Logger) *SyncController {
	return &SyncController{
		store:      store,
		storageKey: storageKey,
		parser:     p,
		lib:        lib,
		queue:      q,
		logger:     logger,
	}
}

// Build parses raw and reconciles it with the stored library. An unreadable
// or undecodable stored library is logged and ignored.
func (c *SyncController) Build(raw string) ([]models.Record, []models.WorkItem) {
	// Step 1: Parse the viewing log
	parsed := c.parser.Parse(raw)
	c.logger.WithField("count", len(parsed)).Info("Parsed viewing log")

	// Step 2: Read the stored library
	persisted := c.readStored()

	// Step 3: Merge
	authoritative, work := Reconcile(parsed, persisted)
	c.logger.WithFields(logrus.Fields{
		"records": len(authoritative),
		"stored":  len(persisted),
		"pending": len(work),
	}).Info("Library reconciled")

	return authoritative, work
}

// Load builds the library, installs it and starts the enrichment queue.
// Installing the set completes the initial load, which triggers the first
// persistence write.
func (c *SyncController) Load(ctx context.Context, raw string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	authoritative, work := c.Build(raw)
	c.lib.Load(authoritative)

	if c.queue != nil {
		c.queue.EnqueueInitial(work)
	}
	return nil
}

func (c *SyncController) readStored() []models.Record {
	blob, err := c.store.LoadLibrary(c.storageKey)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to read stored library, using viewing log only")
		return nil
	}
	if blob == nil {
		c.logger.Info("No stored library found")
		return nil
	}

	records, err := DecodeRecords(blob)
	if err != nil {
		c.logger.WithError(err).Warn("Stored library is corrupt, using viewing log only")
		return nil
	}
	return records
}
