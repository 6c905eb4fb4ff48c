// Package parser turns the hand-written viewing log into catalogue records.
//
// The log is a sequence of year headers ("2020:"), optional section markers
// ("Recuts/Edits:", "*Leftovers ...") and numbered items
// ("12. Title - notes"). Anything else is ignored.
package parser

import (
	"regexp"
	"strings"

	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/utils"
	"github.com/google/uuid"
)

// DefaultYear is the year assigned to items that appear before any year header
const DefaultYear = "2019"

const (
	recutMarker    = "Recuts/Edits:"
	leftoverMarker = "*Leftovers"
)

var (
	itemRegex       = regexp.MustCompile(`^(\d+)\.\s+(.*?)(?:\s-\s(.*))?$`)
	itemSimpleRegex = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
)

// Parser holds the parsing options
type Parser struct {
	defaultYear string
	newID       func() string
}

// Option configures a Parser
type Option func(*Parser)

// WithDefaultYear sets the year used before the first year header
func WithDefaultYear(year string) Option {
	return func(p *Parser) {
		if year != "" {
			p.defaultYear = year
		}
	}
}

// WithIDFunc overrides how record ids are generated
func WithIDFunc(fn func() string) Option {
	return func(p *Parser) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// New creates a parser
func New(opts ...Option) *Parser {
	p := &Parser{
		defaultYear: DefaultYear,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses raw with the default options
func Parse(raw string) []models.Record {
	return New().Parse(raw)
}

// Parse returns one record per numbered item, in input order.
// Records carry fresh ids and no enrichment.
func (p *Parser) Parse(raw string) []models.Record {
	records := []models.Record{}
	currentYear := p.defaultYear
	currentCategory := models.CategoryStandard

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if year, ok := yearHeader(line); ok {
			currentYear = year
			currentCategory = models.CategoryStandard
			continue
		}

		if strings.Contains(line, recutMarker) {
			currentCategory = models.CategoryRecutOrEdit
			continue
		}
		if strings.Contains(line, leftoverMarker) {
			currentCategory = models.CategoryLeftover
			continue
		}

		title, notes, ok := matchItem(line)
		if !ok {
			continue
		}

		records = append(records, models.Record{
			ID:         p.newID(),
			Title:      title,
			YearViewed: currentYear,
			Notes:      notes,
			Category:   currentCategory,
		})
	}

	return records
}

// yearHeader returns the year of a "2020:" header line
func yearHeader(line string) (string, bool) {
	year, ok := strings.CutSuffix(line, ":")
	if !ok || !utils.IsYear(year) {
		return "", false
	}
	return year, true
}

// matchItem splits a numbered list line into title and notes
func matchItem(line string) (title, notes string, ok bool) {
	match := itemRegex.FindStringSubmatch(line)
	if match == nil {
		match = itemSimpleRegex.FindStringSubmatch(line)
	}
	if match == nil {
		return "", "", false
	}

	title = strings.TrimSpace(match[2])
	if len(match) > 3 {
		notes = strings.TrimSpace(match[3])
	}
	return title, notes, true
}
