package models

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// LibraryBlob is the persisted JSON encoding of the full record set
type LibraryBlob struct {
	Key     string `boltholdKey:"Key"`
	Data    []byte
	SavedAt time.Time
}

// Snapshot is a timestamped backup copy of a library blob
type Snapshot struct {
	ID        uint64 `boltholdKey:"ID"`
	Key       string `boltholdIndex:"Key"`
	Data      []byte
	Records   int
	CreatedAt time.Time
}

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Library operations

// LoadLibrary returns the blob stored under key, or nil when nothing was saved yet
func (db *Database) LoadLibrary(key string) ([]byte, error) {
	var blob LibraryBlob
	err := db.store.Get(key, &blob)
	if errors.Is(err, bolthold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

// SaveLibrary replaces the blob stored under key
func (db *Database) SaveLibrary(key string, data []byte) error {
	return db.store.Upsert(key, &LibraryBlob{
		Key:     key,
		Data:    data,
		SavedAt: time.Now(),
	})
}

// Snapshot operations

// SaveSnapshot stores a new backup copy of a library blob
func (db *Database) SaveSnapshot(snapshot *Snapshot) error {
	snapshot.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), snapshot)
}

// ListSnapshots returns the snapshots taken for key, newest first
func (db *Database) ListSnapshots(key string) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	err := db.store.Find(&snapshots, bolthold.Where("Key").Eq(key))
	if err != nil {
		return nil, err
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].ID > snapshots[j].ID
	})
	return snapshots, nil
}

// DeleteSnapshot deletes a snapshot by ID
func (db *Database) DeleteSnapshot(id uint64) error {
	return db.store.Delete(id, &Snapshot{})
}
