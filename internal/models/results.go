package models

import "time"

// CommentaryResult is what the metadata lookup returns for a commentary check
type CommentaryResult struct {
	HasCommentary     bool   `json:"hasCommentary"`
	CommentaryDetails string `json:"commentaryDetails"`
	ReleaseFormat     string `json:"releaseFormat"`
	SourceURL         string `json:"sourceUrl,omitempty"`
	SourceTitle       string `json:"sourceTitle,omitempty"`
}

// Apply merges the result into the record and stamps metadataLastUpdated
func (c CommentaryResult) Apply(r *Record, at time.Time) {
	has := c.HasCommentary
	stamp := at.UnixMilli()

	r.HasCommentary = &has
	r.CommentaryDetails = c.CommentaryDetails
	r.ReleaseFormat = c.ReleaseFormat
	r.SourceURL = c.SourceURL
	r.SourceTitle = c.SourceTitle
	r.MetadataLastUpdated = &stamp
}

// DetailsResult is what the metadata lookup returns for a details fetch
type DetailsResult struct {
	Plot      string `json:"plot"`
	Runtime   string `json:"runtime"`
	Rated     string `json:"rated"`
	PosterURL string `json:"posterUrl"`
}

// Apply merges the general details into the record
func (d DetailsResult) Apply(r *Record) {
	r.Plot = d.Plot
	r.Runtime = d.Runtime
	r.Rated = d.Rated
	r.PosterURL = d.PosterURL
}
