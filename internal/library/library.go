// Package library owns the authoritative record set.
//
// All mutations replace the whole set (copy-on-write) under a single lock, so
// a snapshot handed out by the library is never modified afterwards. After
// Load has installed the initial set, every mutation is announced to the
// registered listeners with a versioned snapshot.
package library

import (
	"sync"

	"github.com/amaumene/cinetrack/internal/models"
)

// Snapshot is an immutable view of the record set at a given version
type Snapshot struct {
	Version uint64
	Records []models.Record
}

// Listener is notified after every mutation that follows the initial load
type Listener func(Snapshot)

// Library is the single authoritative record set
type Library struct {
	mu        sync.RWMutex
	records   []models.Record
	version   uint64
	loaded    bool
	listeners []Listener
}

// New creates an empty, not yet loaded library
func New() *Library {
	return &Library{}
}

// Subscribe registers a listener for change notifications
func (l *Library) Subscribe(listener Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, listener)
}

// Load installs the initial record set and marks the load as complete
func (l *Library) Load(records []models.Record) {
	l.mu.Lock()
	l.loaded = true
	snap := l.replaceLocked(records)
	listeners := l.listeners
	l.mu.Unlock()

	notify(listeners, snap)
}

// Loaded reports whether the initial load has completed
func (l *Library) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Snapshot returns the current record set
func (l *Library) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Snapshot{Version: l.version, Records: l.records}
}

// Records returns the current record set
func (l *Library) Records() []models.Record {
	return l.Snapshot().Records
}

// Len returns the number of records
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Get returns the record with the given id
func (l *Library) Get(id string) (models.Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.ID == id {
			return r, true
		}
	}
	return models.Record{}, false
}

// Update applies fn to the latest record set and installs its result.
// fn must not modify its argument in place.
func (l *Library) Update(fn func([]models.Record) []models.Record) {
	l.mu.Lock()
	next := fn(l.records)
	snap := l.replaceLocked(next)
	listeners := l.notifyListLocked()
	l.mu.Unlock()

	notify(listeners, snap)
}

// Patch applies fn to a copy of the record with the given id and replaces
// it. It returns false, without notifying, when no record has that id.
func (l *Library) Patch(id string, fn func(*models.Record)) bool {
	l.mu.Lock()
	idx := -1
	for i := range l.records {
		if l.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return false
	}

	next := make([]models.Record, len(l.records))
	copy(next, l.records)
	fn(&next[idx])

	snap := l.replaceLocked(next)
	listeners := l.notifyListLocked()
	l.mu.Unlock()

	notify(listeners, snap)
	return true
}

// Prepend inserts records ahead of the current set
func (l *Library) Prepend(records ...models.Record) {
	l.Update(func(current []models.Record) []models.Record {
		next := make([]models.Record, 0, len(records)+len(current))
		next = append(next, records...)
		return append(next, current...)
	})
}

func (l *Library) replaceLocked(records []models.Record) Snapshot {
	if records == nil {
		records = []models.Record{}
	}
	l.records = records
	l.version++
	return Snapshot{Version: l.version, Records: records}
}

// notifyListLocked returns the listeners to call, or nil before the initial load
func (l *Library) notifyListLocked() []Listener {
	if !l.loaded {
		return nil
	}
	return l.listeners
}

func notify(listeners []Listener, snap Snapshot) {
	for _, listener := range listeners {
		listener(snap)
	}
}
