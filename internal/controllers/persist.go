package controllers

import (
	"sync"
	"time"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/metrics"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// LibraryStore persists the serialized library under a key
type LibraryStore interface {
	// LoadLibrary returns nil, nil when nothing is stored under key
	LoadLibrary(key string) ([]byte, error)
	SaveLibrary(key string, data []byte) error
}

const maxWriteRetries = 3

// PersistController mirrors the library to the store after every change
type PersistController struct {
	store   LibraryStore
	key     string
	metrics *metrics.Metrics
	logger  *logrus.Logger

	mu          sync.Mutex
	lastVersion uint64
	newBackOff  func() backoff.BackOff
}

// NewPersistController creates a new persist controller
func NewPersistController(store LibraryStore, key string, m *metrics.Metrics, logger *logrus.Logger) *PersistController {
	return &PersistController{
		store:   store,
		key:     key,
		metrics: m,
		logger:  logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = time.Second
			return backoff.WithMaxRetries(b, maxWriteRetries)
		},
	}
}

// Attach subscribes the controller to library changes
func (c *PersistController) Attach(lib *library.Library) {
	lib.Subscribe(c.OnChange)
}

// OnChange writes the snapshot unless a newer one was already written.
// Empty sets are never written. Write failures are retried, then logged.
func (c *PersistController) OnChange(snap library.Snapshot) {
	if len(snap.Records) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.Version <= c.lastVersion {
		c.logger.WithFields(logrus.Fields{
			"version": snap.Version,
			"written": c.lastVersion,
		}).Debug("Skipping stale library snapshot")
		return
	}

	data, err := EncodeRecords(snap.Records)
	if err != nil {
		c.logger.WithError(err).Error("Failed to encode library")
		return
	}

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		return c.store.SaveLibrary(c.key, data)
	}, c.newBackOff())
	c.metrics.StoreWrite(err)

	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"version":  snap.Version,
			"attempts": attempt,
		}).Error("Failed to persist library")
		return
	}

	c.lastVersion = snap.Version
	c.logger.WithFields(logrus.Fields{
		"version": snap.Version,
		"records": len(snap.Records),
	}).Debug("Library persisted")
}

// LastVersion returns the library version last written to the store
func (c *PersistController) LastVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastVersion
}
