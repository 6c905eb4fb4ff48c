// Package queue implements the rate-limited enrichment work queue.
//
// A single owned timer drives Tick. Each tick dequeues at most one item and
// hands it to the processor on its own goroutine without waiting for the
// result, so at most one lookup is started per interval however slow the
// lookups are. Any change to the queue or the paused flag cancels the
// pending timer and arms a fresh one.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/amaumene/cinetrack/internal/models"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the wait between two automatic dequeues
const DefaultInterval = 2500 * time.Millisecond

// Processor performs the lookup for a dequeued item
type Processor interface {
	Process(ctx context.Context, item models.WorkItem)
}

// ProcessorFunc adapts a function to the Processor interface
type ProcessorFunc func(ctx context.Context, item models.WorkItem)

// Process calls f(ctx, item)
func (f ProcessorFunc) Process(ctx context.Context, item models.WorkItem) {
	f(ctx, item)
}

// Progress describes how far the initial work list has been processed
type Progress struct {
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Remaining int     `json:"remaining"`
	Percent   float64 `json:"percent"`
	Paused    bool    `json:"paused"`
}

// Queue is the enrichment work queue
type Queue struct {
	mu           sync.Mutex
	items        []models.WorkItem
	paused       bool
	totalInitial int
	interval     time.Duration
	timer        *time.Timer
	generation   uint64
	stopped      bool

	ctx       context.Context
	processor Processor
	inflight  sync.WaitGroup
	logger    *logrus.Logger
}

// New creates an empty queue. Lookups started by the queue run with ctx,
// which pausing never cancels.
func New(ctx context.Context, processor Processor, interval time.Duration, logger *logrus.Logger) *Queue {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Queue{
		ctx:       ctx,
		processor: processor,
		interval:  interval,
		logger:    logger,
	}
}

// EnqueueInitial replaces the queue with the initial work list and records
// its length as the progress total
func (q *Queue) EnqueueInitial(items []models.WorkItem) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append([]models.WorkItem(nil), items...)
	q.totalInitial = len(items)
	q.rescheduleLocked()

	q.logger.WithFields(logrus.Fields{
		"count":    len(items),
		"interval": q.interval.String(),
	}).Info("Enrichment queue initialized")
}

// Pause stops automatic dequeues. Lookups already started keep running.
func (q *Queue) Pause() {
	q.SetPaused(true)
}

// Resume restarts automatic dequeues
func (q *Queue) Resume() {
	q.SetPaused(false)
}

// SetPaused sets the paused flag
func (q *Queue) SetPaused(paused bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.paused == paused {
		return
	}
	q.paused = paused
	q.rescheduleLocked()

	q.logger.WithFields(logrus.Fields{
		"paused":    paused,
		"remaining": len(q.items),
	}).Info("Enrichment queue paused state changed")
}

// Paused reports whether the queue is paused
func (q *Queue) Paused() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.paused
}

// Prioritize removes the item from the queue, if queued, and starts its
// lookup right away. It reports whether the item was queued.
func (q *Queue) Prioritize(item models.WorkItem) bool {
	q.mu.Lock()
	removed := q.removeLocked(item.ID)
	if removed {
		q.rescheduleLocked()
	}
	q.mu.Unlock()

	q.logger.WithFields(logrus.Fields{
		"record_id":  item.ID,
		"title":      item.Title,
		"was_queued": removed,
	}).Debug("Prioritized enrichment lookup")

	q.launch(item)
	return removed
}

// Tick dequeues the head item and starts its lookup. It does nothing while
// paused or when the queue is empty.
func (q *Queue) Tick() {
	q.tick(0, false)
}

// tick dequeues one item. Timer-driven ticks are dropped when the timer
// that scheduled them has been cancelled in the meantime.
func (q *Queue) tick(gen uint64, fromTimer bool) {
	q.mu.Lock()
	if fromTimer && gen != q.generation {
		q.mu.Unlock()
		return
	}
	if q.paused || q.stopped || len(q.items) == 0 {
		q.mu.Unlock()
		return
	}

	item := q.items[0]
	q.items = q.items[1:]
	q.rescheduleLocked()
	remaining := len(q.items)
	q.mu.Unlock()

	q.logger.WithFields(logrus.Fields{
		"record_id": item.ID,
		"title":     item.Title,
		"remaining": remaining,
	}).Debug("Dequeued enrichment lookup")

	q.launch(item)
}

// Progress returns the progress counters
func (q *Queue) Progress() Progress {
	q.mu.Lock()
	defer q.mu.Unlock()

	processed := q.totalInitial - len(q.items)
	percent := 100.0
	if q.totalInitial > 0 {
		percent = float64(processed) / float64(q.totalInitial) * 100
	}

	return Progress{
		Processed: processed,
		Total:     q.totalInitial,
		Remaining: len(q.items),
		Percent:   percent,
		Paused:    q.paused,
	}
}

// Items returns the queued items in order
func (q *Queue) Items() []models.WorkItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.WorkItem(nil), q.items...)
}

// Contains reports whether an item with the given record id is queued
func (q *Queue) Contains(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range q.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Len returns the number of queued items
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Stop cancels the pending timer for good
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.cancelTimerLocked()
}

// Wait blocks until every lookup started by the queue has returned
func (q *Queue) Wait() {
	q.inflight.Wait()
}

func (q *Queue) launch(item models.WorkItem) {
	q.inflight.Add(1)
	go func() {
		defer q.inflight.Done()
		q.processor.Process(q.ctx, item)
	}()
}

func (q *Queue) removeLocked(id string) bool {
	for i, item := range q.items {
		if item.ID == id {
			next := make([]models.WorkItem, 0, len(q.items)-1)
			next = append(next, q.items[:i]...)
			q.items = append(next, q.items[i+1:]...)
			return true
		}
	}
	return false
}

// rescheduleLocked cancels the pending wait and arms a new one if there is
// work to do
func (q *Queue) rescheduleLocked() {
	q.cancelTimerLocked()
	if q.stopped || q.paused || len(q.items) == 0 {
		return
	}

	gen := q.generation
	q.timer = time.AfterFunc(q.interval, func() {
		q.tick(gen, true)
	})
}

func (q *Queue) cancelTimerLocked() {
	q.generation++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}
