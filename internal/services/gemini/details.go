package gemini

import (
	"context"
	"fmt"

	"github.com/amaumene/cinetrack/internal/models"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const detailsPrompt = `Find the following details for the movie "%s" released in %s:
1. Plot Summary (2-3 sentences max)
2. Runtime (e.g. "2h 15m")
3. MPAA Rating (e.g. "PG-13", "R")
4. A direct URL to the movie poster.
   IMPORTANT: Prefer a high-quality image URL from Wikimedia Commons (upload.wikimedia.org) or Wikipedia if available, as these are most reliable.
   Avoid generic IMDb or store page URLs that are not actual image files. The URL should end in .jpg, .png or .webp.

Return a valid JSON object. Do not use markdown:
{
  "plot": "string",
  "runtime": "string",
  "rated": "string",
  "posterUrl": "string"
}`

// detailsErrorResult is reported when the details request itself fails
var detailsErrorResult = models.DetailsResult{
	Plot:    "Could not load details.",
	Runtime: "--",
	Rated:   "--",
}

// FetchDetails looks up plot, runtime, rating and poster of a film.
// Answers are cached per title and year. Failures are reported as
// placeholder values, never as an error. The only errors are
// ErrMissingAPIKey and the context error when ctx ends first.
func (c *Client) FetchDetails(ctx context.Context, title, year string) (models.DetailsResult, error) {
	if c.genai == nil {
		return models.DetailsResult{}, ErrMissingAPIKey
	}

	key := title + "|" + year
	if c.details != nil {
		if cached, ok := c.details.Get(key); ok {
			c.logger.WithField("title", title).Debug("Details served from cache")
			return cached.(models.DetailsResult), nil
		}
	}

	logger := c.logger.WithFields(logrus.Fields{
		"title": title,
		"year":  year,
	})

	resp, err := c.generate(ctx, fmt.Sprintf(detailsPrompt, title, year))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.DetailsResult{}, ctxErr
		}
		logger.WithError(err).Error("Gemini details request failed")
		return detailsErrorResult, nil
	}

	fields, _, err := extractJSON(resp.Text())
	if err != nil {
		logger.WithError(err).Warn("Failed to parse details reply")
	}

	result := models.DetailsResult{
		Plot:      stringField(fields, "plot"),
		Runtime:   stringField(fields, "runtime"),
		Rated:     stringField(fields, "rated"),
		PosterURL: stringField(fields, "posterUrl"),
	}
	if result.Plot == "" {
		result.Plot = "Plot not available."
	}
	if result.Runtime == "" {
		result.Runtime = "Unknown"
	}
	if result.Rated == "" {
		result.Rated = "Unrated"
	}

	if c.details != nil {
		c.details.Set(key, result, cache.DefaultExpiration)
	}
	return result, nil
}
