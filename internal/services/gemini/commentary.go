package gemini

import (
	"context"
	"fmt"

	"github.com/amaumene/cinetrack/internal/models"
	"github.com/sirupsen/logrus"
)

const commentaryPrompt = `Search the web for the physical media releases (Blu-ray, 4K UHD, DVD) of the movie "%s" (%s).
Specifically look for 'special features', 'bonus features', or reviews of the home release to determine if there is an audio commentary track.

If a commentary exists, note who is on it (Director, Cast, etc.).
Identify the release format (e.g., "Collector's Edition", "Criterion", "Standard Blu-ray").

Return a valid JSON object in the following format. Do not include markdown formatting or code blocks:
{
  "hasCommentary": boolean,
  "commentaryDetails": "string summary",
  "releaseFormat": "string format"
}`

// Placeholders reported when a commentary check cannot produce an answer
const (
	CommentaryErrorDetails   = "Error checking availability"
	CommentaryParseDetails   = "Error parsing details"
	CommentaryNoDataDetails  = "No structured data found"
	CommentaryDefaultDetails = "Details not available"
	UnknownFormat            = "Unknown"
)

// CheckCommentary asks whether a home release of the film has an audio
// commentary. API and parse failures are reported as a negative result with
// a placeholder description, never as an error. The only errors are
// ErrMissingAPIKey and the context error when ctx ends first.
func (c *Client) CheckCommentary(ctx context.Context, title, year string) (models.CommentaryResult, error) {
	if c.genai == nil {
		return models.CommentaryResult{}, ErrMissingAPIKey
	}

	logger := c.logger.WithFields(logrus.Fields{
		"title": title,
		"year":  year,
	})

	resp, err := c.generate(ctx, fmt.Sprintf(commentaryPrompt, title, year))
	if err != nil {
		// An abandoned lookup is not an answer
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.CommentaryResult{}, ctxErr
		}
		logger.WithError(err).Error("Gemini commentary request failed")
		return commentaryPlaceholder(CommentaryErrorDetails), nil
	}

	text := resp.Text()
	if text == "" {
		logger.Error("Gemini returned no text")
		return commentaryPlaceholder(CommentaryErrorDetails), nil
	}

	result := commentaryPlaceholder(CommentaryDefaultDetails)
	fields, found, err := extractJSON(text)
	switch {
	case !found:
		logger.Warn("No JSON object in commentary reply")
		result.CommentaryDetails = CommentaryNoDataDetails
	case err != nil:
		logger.WithError(err).Warn("Failed to parse commentary reply")
		result.CommentaryDetails = CommentaryParseDetails
	default:
		result.HasCommentary = truthy(fields["hasCommentary"])
		if details := stringField(fields, "commentaryDetails"); details != "" {
			result.CommentaryDetails = details
		}
		if format := stringField(fields, "releaseFormat"); format != "" {
			result.ReleaseFormat = format
		}
	}
	result.SourceURL, result.SourceTitle = webSource(resp)

	return result, nil
}

func commentaryPlaceholder(details string) models.CommentaryResult {
	return models.CommentaryResult{
		HasCommentary:     false,
		CommentaryDetails: details,
		ReleaseFormat:     UnknownFormat,
	}
}
