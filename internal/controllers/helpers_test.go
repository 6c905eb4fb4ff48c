package controllers

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/amaumene/cinetrack/internal/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeLookup answers lookups from canned results. When gate is set, each
// lookup waits on it before answering.
type fakeLookup struct {
	mu         sync.Mutex
	commentary models.CommentaryResult
	details    models.DetailsResult
	err        error
	calls      []string
	gate       chan struct{}
	started    chan string
}

func (f *fakeLookup) CheckCommentary(ctx context.Context, title, year string) (models.CommentaryResult, error) {
	f.begin(title)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commentary, f.err
}

func (f *fakeLookup) FetchDetails(ctx context.Context, title, year string) (models.DetailsResult, error) {
	f.begin(title)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details, f.err
}

func (f *fakeLookup) begin(title string) {
	f.mu.Lock()
	f.calls = append(f.calls, title)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- title
	}
	if gate != nil {
		<-gate
	}
}

func (f *fakeLookup) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// memoryStore is an in-memory LibraryStore and SnapshotStore
type memoryStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	writes    int
	failures  int // number of SaveLibrary calls that fail before succeeding
	loadErr   error
	snapshots []*models.Snapshot
	nextID    uint64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: make(map[string][]byte)}
}

func (s *memoryStore) LoadLibrary(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.blobs[key], nil
}

func (s *memoryStore) SaveLibrary(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("store unavailable")
	}
	s.writes++
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *memoryStore) SaveSnapshot(snapshot *models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	snapshot.ID = s.nextID
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

func (s *memoryStore) ListSnapshots(key string) ([]*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Snapshot
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].Key == key {
			out = append(out, s.snapshots[i])
		}
	}
	return out, nil
}

func (s *memoryStore) DeleteSnapshot(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, snap := range s.snapshots {
		if snap.ID == id {
			s.snapshots = append(s.snapshots[:i], s.snapshots[i+1:]...)
			return nil
		}
	}
	return errors.New("snapshot not found")
}

func (s *memoryStore) blob(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[key]
}

func (s *memoryStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
