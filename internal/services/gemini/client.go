package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/amaumene/cinetrack/internal/config"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"
	apiVersion     = "v1beta"
)

// ErrMissingAPIKey is returned by every lookup when no API key is configured
var ErrMissingAPIKey = errors.New("gemini API key not configured")

// jsonObjectRegex matches from the first '{' to the last '}' of a reply
var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// Client handles communication with the Gemini API
type Client struct {
	genai   *genai.Client // nil without an API key
	model   string
	details *cache.Cache
	logger  *logrus.Logger
}

// NewClient creates a new Gemini API client. Without an API key the client
// is still returned and every lookup fails with ErrMissingAPIKey.
func NewClient(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	model := cfg.GeminiModel
	if model == "" {
		model = defaultModel
	}

	// A zero TTL disables the details cache
	var details *cache.Cache
	if ttl := cfg.DetailsCacheTTL(); ttl > 0 {
		details = cache.New(ttl, ttl)
	}

	c := &Client{
		model:   model,
		details: details,
		logger:  logger,
	}
	if cfg.GeminiAPIKey == "" {
		return c, nil
	}

	baseURL := cfg.GeminiBaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.LookupTimeout()},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    baseURL,
			APIVersion: apiVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.genai = gc

	return c, nil
}

// generate sends prompt with web search grounding enabled
func (c *Client) generate(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	c.logger.WithField("model", c.model).Debug("Making Gemini API request")

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return nil, fmt.Errorf("generateContent failed: %w", err)
	}
	return resp, nil
}

// webSource returns the first grounding chunk that points to a web page
func webSource(resp *genai.GenerateContentResponse) (uri, title string) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return "", ""
	}
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk != nil && chunk.Web != nil && chunk.Web.URI != "" {
			return chunk.Web.URI, chunk.Web.Title
		}
	}
	return "", ""
}

// extractJSON decodes the JSON object embedded in a model reply. found is
// false when the reply holds no object at all. Only malformed JSON is an
// error; field types are coerced by the callers.
func extractJSON(text string) (fields map[string]any, found bool, err error) {
	match := jsonObjectRegex.FindString(text)
	if match == "" {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(match), &fields); err != nil {
		return nil, true, err
	}
	return fields, true, nil
}

// truthy reports loose truthiness: null, false, 0 and "" are false
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// stringField returns fields[key] as text. Numbers are formatted, other
// types count as missing.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
