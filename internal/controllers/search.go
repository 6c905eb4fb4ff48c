package controllers

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/utils"
	"github.com/sirupsen/logrus"
)

// AllYears matches every year in a Filter
const AllYears = "All"

// DefaultFeaturedCount is the number of featured records when none is given
const DefaultFeaturedCount = 8

// suggestionMaxDistance bounds how far a suggested title may be from the query
const suggestionMaxDistance = 6

// Filter selects records for browsing
type Filter struct {
	Query          string // matched against title and notes, ignoring case
	Year           string // "" or AllYears for any year
	CommentaryOnly bool
}

// YearGroup is the set of records viewed in one year
type YearGroup struct {
	Year    string          `json:"year"`
	Records []models.Record `json:"records"`
}

// YearCount is the number of records viewed in one year
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// Summary counts the records in the library
type Summary struct {
	Total          int `json:"total"`
	WithCommentary int `json:"withCommentary"`
	Checked        int `json:"checked"`
}

// SearchController answers browse queries over the library
type SearchController struct {
	lib    *library.Library
	logger *logrus.Logger
	rand   *rand.Rand
}

// NewSearchController creates a new search controller
func NewSearchController(lib *library.Library, logger *logrus.Logger) *SearchController {
	return &SearchController{
		lib:    lib,
		logger: logger,
	}
}

// Search returns the records matching the filter, in library order
func (c *SearchController) Search(f Filter) []models.Record {
	query := strings.TrimSpace(f.Query)
	anyYear := f.Year == "" || f.Year == AllYears

	matches := make([]models.Record, 0)
	for _, r := range c.lib.Records() {
		if query != "" && !utils.ContainsFold(r.Title, query) && !utils.ContainsFold(r.Notes, query) {
			continue
		}
		if !anyYear && r.YearViewed != f.Year {
			continue
		}
		if f.CommentaryOnly && !r.WithCommentary() {
			continue
		}
		matches = append(matches, r)
	}

	c.logger.WithFields(logrus.Fields{
		"query":      query,
		"year":       f.Year,
		"commentary": f.CommentaryOnly,
		"matches":    len(matches),
	}).Debug("Search completed")

	return matches
}

// GroupByYear groups records by viewing year, most recent year first.
// Records keep their relative order within a group.
func GroupByYear(records []models.Record) []YearGroup {
	index := make(map[string]int)
	var groups []YearGroup
	for _, r := range records {
		i, ok := index[r.YearViewed]
		if !ok {
			i = len(groups)
			index[r.YearViewed] = i
			groups = append(groups, YearGroup{Year: r.YearViewed})
		}
		groups[i].Records = append(groups[i].Records, r)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return yearLess(groups[j].Year, groups[i].Year)
	})
	return groups
}

// Years returns the distinct viewing years, most recent first
func (c *SearchController) Years() []string {
	seen := make(map[string]struct{})
	years := make([]string, 0)
	for _, r := range c.lib.Records() {
		if _, ok := seen[r.YearViewed]; ok {
			continue
		}
		seen[r.YearViewed] = struct{}{}
		years = append(years, r.YearViewed)
	}

	sort.Slice(years, func(i, j int) bool { return yearLess(years[j], years[i]) })
	return years
}

// StatsByYear returns the number of records per viewing year, oldest first
func (c *SearchController) StatsByYear() []YearCount {
	counts := make(map[string]int)
	for _, r := range c.lib.Records() {
		counts[r.YearViewed]++
	}

	stats := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		stats = append(stats, YearCount{Year: year, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool { return yearLess(stats[i].Year, stats[j].Year) })
	return stats
}

// Featured returns up to n randomly chosen records that have a commentary
// track. n <= 0 selects DefaultFeaturedCount.
func (c *SearchController) Featured(n int) []models.Record {
	if n <= 0 {
		n = DefaultFeaturedCount
	}

	candidates := make([]models.Record, 0)
	for _, r := range c.lib.Records() {
		if r.WithCommentary() {
			candidates = append(candidates, r)
		}
	}

	shuffle := rand.Shuffle
	if c.rand != nil {
		shuffle = c.rand.Shuffle
	}
	shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// Suggest returns up to n titles close to query, for searches without hits
func (c *SearchController) Suggest(query string, n int) []string {
	records := c.lib.Records()
	titles := make([]string, 0, len(records))
	for _, r := range records {
		titles = append(titles, r.Title)
	}

	matches := utils.ClosestMatches(query, titles, n, suggestionMaxDistance)
	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, m.Value)
	}
	return suggestions
}

// Summary counts all, checked and with-commentary records
func (c *SearchController) Summary() Summary {
	var s Summary
	for _, r := range c.lib.Records() {
		s.Total++
		if r.Checked() {
			s.Checked++
		}
		if r.WithCommentary() {
			s.WithCommentary++
		}
	}
	return s
}

// yearLess orders years numerically, falling back to string order for
// values that are not numbers
func yearLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
