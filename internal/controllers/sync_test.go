package controllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/parser"
	"github.com/amaumene/cinetrack/internal/queue"
)

const sampleLog = "2020:\n1. Alpha - IMAX\n2. Beta\n"

func newTestSync(store LibraryStore, q *queue.Queue) (*SyncController, *library.Library) {
	lib := library.New()
	p := parser.New(parser.WithIDFunc(sequentialIDs("p")))
	return NewSyncController(store, testKey, p, lib, q, testLogger()), lib
}

func TestLoadMergesStoredLibrary(t *testing.T) {
	store := newMemoryStore()
	stored, _ := EncodeRecords([]models.Record{{
		ID: "old", Title: "Alpha", YearViewed: "2020",
		Enrichment: models.Enrichment{HasCommentary: boolPtr(true), CommentaryDetails: "director track"},
	}})
	store.blobs[testKey] = stored

	q := queue.New(context.Background(), queue.ProcessorFunc(func(context.Context, models.WorkItem) {}), time.Hour, testLogger())
	defer q.Stop()

	c, lib := newTestSync(store, q)
	persist := newTestPersist(store)
	persist.Attach(lib)

	if err := c.Load(context.Background(), sampleLog); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !lib.Loaded() || lib.Len() != 2 {
		t.Fatalf("Expected 2 loaded records, got %d", lib.Len())
	}
	alpha := lib.Records()[0]
	if !alpha.WithCommentary() || alpha.CommentaryDetails != "director track" {
		t.Errorf("Expected stored enrichment on Alpha, got %+v", alpha.Enrichment)
	}

	items := q.Items()
	if len(items) != 1 || items[0].Title != "Beta" {
		t.Errorf("Expected [Beta] queued, got %+v", items)
	}
	if progress := q.Progress(); progress.Total != 1 {
		t.Errorf("Expected total 1, got %d", progress.Total)
	}

	if store.writeCount() != 1 {
		t.Errorf("Expected initial load to be persisted, got %d writes", store.writeCount())
	}
}

func TestLoadIgnoresCorruptStore(t *testing.T) {
	store := newMemoryStore()
	store.blobs[testKey] = []byte("{corrupt")

	c, lib := newTestSync(store, nil)
	if err := c.Load(context.Background(), sampleLog); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if lib.Len() != 2 {
		t.Errorf("Expected parsed records only, got %d", lib.Len())
	}
}

func TestLoadIgnoresUnreadableStore(t *testing.T) {
	store := newMemoryStore()
	store.loadErr = errors.New("io error")

	c, lib := newTestSync(store, nil)
	authoritative, work := c.Build(sampleLog)
	if len(authoritative) != 2 || len(work) != 2 {
		t.Errorf("Expected parsed records with full work list, got %d and %d", len(authoritative), len(work))
	}
	if lib.Loaded() {
		t.Error("Build must not install the set")
	}
}

func TestLoadHonorsCancelledContext(t *testing.T) {
	c, lib := newTestSync(newMemoryStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Load(ctx, sampleLog); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if lib.Loaded() {
		t.Error("Expected library not loaded")
	}
}
