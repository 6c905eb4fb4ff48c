package models

import "time"

// Record is a single catalogue entry: one viewing event from the log or
// one entry added by hand
type Record struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	YearViewed string   `json:"yearViewed"` // year the film was seen, not its release year
	Notes      string   `json:"notes"`      // presentation format, e.g. "IMAX"
	Category   Category `json:"category,omitempty"`

	Enrichment

	IsLoadingMetadata bool `json:"isLoadingMetadata,omitempty"`
	IsLoadingDetails  bool `json:"isLoadingDetails,omitempty"`
}

// Enrichment holds the externally sourced fields of a record.
// A nil HasCommentary means the commentary lookup was never attempted.
type Enrichment struct {
	HasCommentary     *bool  `json:"hasCommentary,omitempty"`
	CommentaryDetails string `json:"commentaryDetails,omitempty"`
	ReleaseFormat     string `json:"releaseFormat,omitempty"`
	SourceURL         string `json:"sourceUrl,omitempty"`
	SourceTitle       string `json:"sourceTitle,omitempty"`

	Plot      string `json:"plot,omitempty"`
	Runtime   string `json:"runtime,omitempty"`
	Rated     string `json:"rated,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`

	MetadataLastUpdated *int64 `json:"metadataLastUpdated,omitempty"` // unix milliseconds
}

// Key is the stable identity of a record across reparses of the log
type Key struct {
	Title      string
	YearViewed string
}

// Key returns the (title, yearViewed) identity of the record
func (r Record) Key() Key {
	return Key{Title: r.Title, YearViewed: r.YearViewed}
}

// Checked reports whether a commentary lookup has ever completed for the record
func (r Record) Checked() bool {
	return r.HasCommentary != nil
}

// WithCommentary reports whether the record is known to have a commentary track
func (r Record) WithCommentary() bool {
	return r.HasCommentary != nil && *r.HasCommentary
}

// WorkItem returns the queue reference for the record
func (r Record) WorkItem() WorkItem {
	return WorkItem{ID: r.ID, Title: r.Title, Year: r.YearViewed}
}

// LastUpdated returns metadataLastUpdated as a time, or the zero time
func (r Record) LastUpdated() time.Time {
	if r.MetadataLastUpdated == nil {
		return time.Time{}
	}
	return time.UnixMilli(*r.MetadataLastUpdated)
}

// WorkItem is a pending automatic enrichment lookup. It only lives in the
// enrichment queue and is never persisted.
type WorkItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Year  string `json:"year"`
}
