package controllers

import (
	"encoding/json"
	"fmt"

	"github.com/amaumene/cinetrack/internal/models"
)

// Reconcile merges freshly parsed records with the persisted set.
//
// A nil persisted set means nothing was stored: the parsed records are used
// as they are. Otherwise every parsed record whose (title, yearViewed)
// matches a persisted one takes over that record's enrichment, and persisted
// records missing from the parse (added by hand, or dropped from the log)
// are kept ahead of the parsed ones. Loading flags never survive a restart.
//
// work lists the authoritative records that were never checked, in order.
func Reconcile(parsed, persisted []models.Record) (authoritative []models.Record, work []models.WorkItem) {
	if persisted == nil {
		authoritative = parsed
		if authoritative == nil {
			authoritative = []models.Record{}
		}
		return authoritative, pendingWork(authoritative)
	}

	stored := make(map[models.Key]models.Record, len(persisted))
	for _, r := range persisted {
		stored[r.Key()] = r
	}

	parsedKeys := make(map[models.Key]struct{}, len(parsed))
	merged := make([]models.Record, 0, len(parsed))
	for _, r := range parsed {
		parsedKeys[r.Key()] = struct{}{}
		if prev, ok := stored[r.Key()]; ok {
			r.Enrichment = prev.Enrichment
			r.IsLoadingMetadata = false
			r.IsLoadingDetails = false
		}
		merged = append(merged, r)
	}

	var extras []models.Record
	for _, r := range persisted {
		if _, ok := parsedKeys[r.Key()]; ok {
			continue
		}
		r.IsLoadingMetadata = false
		r.IsLoadingDetails = false
		extras = append(extras, r)
	}

	authoritative = make([]models.Record, 0, len(extras)+len(merged))
	authoritative = append(authoritative, extras...)
	authoritative = append(authoritative, merged...)

	return authoritative, pendingWork(authoritative)
}

// DecodeRecords decodes a persisted library blob. A nil blob decodes to a
// nil set, meaning nothing was stored.
func DecodeRecords(blob []byte) ([]models.Record, error) {
	if blob == nil {
		return nil, nil
	}

	var records []models.Record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("failed to decode stored library: %w", err)
	}
	if records == nil {
		// "null" is treated like an empty stored set
		records = []models.Record{}
	}
	return records, nil
}

// EncodeRecords serializes the full record sequence for storage
func EncodeRecords(records []models.Record) ([]byte, error) {
	if records == nil {
		records = []models.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode library: %w", err)
	}
	return data, nil
}

func pendingWork(records []models.Record) []models.WorkItem {
	work := make([]models.WorkItem, 0)
	for _, r := range records {
		if !r.Checked() {
			work = append(work, r.WorkItem())
		}
	}
	return work
}
