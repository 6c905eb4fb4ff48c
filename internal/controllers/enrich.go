package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/metrics"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/amaumene/cinetrack/internal/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrRecordNotFound is returned when no record has the requested id
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned when a new record fails validation
	ErrInvalidRecord = errors.New("invalid record")
)

// Lookup is the external metadata source
type Lookup interface {
	CheckCommentary(ctx context.Context, title, year string) (models.CommentaryResult, error)
	FetchDetails(ctx context.Context, title, year string) (models.DetailsResult, error)
}

// EnrichController runs metadata lookups against library records
type EnrichController struct {
	lib     *library.Library
	lookup  Lookup
	queue   *queue.Queue
	metrics *metrics.Metrics
	logger  *logrus.Logger

	inflight sync.WaitGroup
	now      func() time.Time
	newID    func() string
}

// NewEnrichController creates a new enrich controller
func NewEnrichController(lib *library.Library, lookup Lookup, m *metrics.Metrics, logger *logrus.Logger) *EnrichController {
	return &EnrichController{
		lib:     lib,
		lookup:  lookup,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SetQueue attaches the queue used by manual checks. The queue is created
// with the controller as its processor, so it can only be attached after
// construction.
func (c *EnrichController) SetQueue(q *queue.Queue) {
	c.queue = q
}

// Process implements queue.Processor
func (c *EnrichController) Process(ctx context.Context, item models.WorkItem) {
	// Failures are logged by CheckCommentary
	_ = c.CheckCommentary(ctx, item.ID)
}

// CheckCommentary looks up commentary availability for a record and merges
// the result. On failure only the loading flag is cleared.
func (c *EnrichController) CheckCommentary(ctx context.Context, id string) error {
	rec, ok := c.lib.Get(id)
	if !ok {
		return ErrRecordNotFound
	}

	c.lib.Patch(id, func(r *models.Record) { r.IsLoadingMetadata = true })

	logger := c.logger.WithFields(logrus.Fields{
		"record_id": id,
		"title":     rec.Title,
		"year":      rec.YearViewed,
	})
	logger.Debug("Checking commentary availability")

	c.metrics.LookupStarted(models.LookupCommentary)
	start := time.Now()
	result, err := c.lookup.CheckCommentary(ctx, rec.Title, rec.YearViewed)
	c.metrics.LookupFinished(models.LookupCommentary, outcome(err), time.Since(start))

	if err != nil {
		c.lib.Patch(id, func(r *models.Record) { r.IsLoadingMetadata = false })
		logger.WithError(err).Warn("Commentary lookup failed")
		return fmt.Errorf("commentary lookup for %q: %w", rec.Title, err)
	}

	at := c.now()
	c.lib.Patch(id, func(r *models.Record) {
		result.Apply(r, at)
		r.IsLoadingMetadata = false
	})

	logger.WithFields(logrus.Fields{
		"has_commentary": result.HasCommentary,
		"format":         result.ReleaseFormat,
	}).Info("Commentary lookup completed")
	return nil
}

// LoadDetails looks up the general details of a record and merges them.
// On failure only the loading flag is cleared.
func (c *EnrichController) LoadDetails(ctx context.Context, id string) error {
	rec, ok := c.lib.Get(id)
	if !ok {
		return ErrRecordNotFound
	}

	c.lib.Patch(id, func(r *models.Record) { r.IsLoadingDetails = true })

	logger := c.logger.WithFields(logrus.Fields{
		"record_id": id,
		"title":     rec.Title,
	})

	c.metrics.LookupStarted(models.LookupDetails)
	start := time.Now()
	result, err := c.lookup.FetchDetails(ctx, rec.Title, rec.YearViewed)
	c.metrics.LookupFinished(models.LookupDetails, outcome(err), time.Since(start))

	if err != nil {
		c.lib.Patch(id, func(r *models.Record) { r.IsLoadingDetails = false })
		logger.WithError(err).Warn("Details lookup failed")
		return fmt.Errorf("details lookup for %q: %w", rec.Title, err)
	}

	c.lib.Patch(id, func(r *models.Record) {
		result.Apply(r)
		r.IsLoadingDetails = false
	})

	logger.Debug("Details lookup completed")
	return nil
}

// AddRecord validates and prepends a new record, then looks it up right
// away without going through the queue
func (c *EnrichController) AddRecord(ctx context.Context, title, year, notes string) (models.Record, error) {
	title = strings.TrimSpace(title)
	year = strings.TrimSpace(year)
	notes = strings.TrimSpace(notes)

	if title == "" {
		return models.Record{}, fmt.Errorf("%w: title is required", ErrInvalidRecord)
	}
	if !utils.IsYear(year) {
		return models.Record{}, fmt.Errorf("%w: year must be a 4-digit year, got %q", ErrInvalidRecord, year)
	}

	rec := models.Record{
		ID:                c.newID(),
		Title:             title,
		YearViewed:        year,
		Notes:             notes,
		Category:          models.CategoryStandard,
		IsLoadingMetadata: true,
	}
	c.lib.Prepend(rec)

	c.logger.WithFields(logrus.Fields{
		"record_id": rec.ID,
		"title":     rec.Title,
		"year":      rec.YearViewed,
	}).Info("Added record")

	c.launch(ctx, func(ctx context.Context) { _ = c.CheckCommentary(ctx, rec.ID) })
	return rec, nil
}

// ManualCheck removes the record from the queue, if queued, and checks it
// immediately
func (c *EnrichController) ManualCheck(id string) error {
	rec, ok := c.lib.Get(id)
	if !ok {
		return ErrRecordNotFound
	}
	if c.queue == nil {
		return fmt.Errorf("enrichment queue not attached")
	}

	c.queue.Prioritize(rec.WorkItem())
	return nil
}

// FetchDetails starts a details lookup for the record in the background
func (c *EnrichController) FetchDetails(ctx context.Context, id string) error {
	if _, ok := c.lib.Get(id); !ok {
		return ErrRecordNotFound
	}

	c.launch(ctx, func(ctx context.Context) { _ = c.LoadDetails(ctx, id) })
	return nil
}

// Wait blocks until every lookup started by AddRecord or FetchDetails has
// returned
func (c *EnrichController) Wait() {
	c.inflight.Wait()
}

// launch runs fn on its own goroutine. The lookup outlives the caller's
// request, so it keeps the values of ctx but not its cancellation.
func (c *EnrichController) launch(ctx context.Context, fn func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		fn(detached)
	}()
}

func outcome(err error) models.LookupOutcome {
	if err != nil {
		return models.OutcomeFailure
	}
	return models.OutcomeSuccess
}
