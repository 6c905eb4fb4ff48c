package utils

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

var yearRegex = regexp.MustCompile(`^\d{4}$`)

// IsYear reports whether s is a 4-digit year token
func IsYear(s string) bool {
	return yearRegex.MatchString(s)
}

// Fold returns the case-folded form of s for case-insensitive matching
func Fold(s string) string {
	// a Caser keeps state and cannot be shared between goroutines
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// Suggestion is a candidate string with its edit distance to a query
type Suggestion struct {
	Value    string `json:"value"`
	Distance int    `json:"distance"`
}

// ClosestMatches returns up to n distinct candidates ordered by Levenshtein
// distance to query, ignoring case. Ties keep candidate order.
// Candidates further away than maxDistance are dropped; maxDistance <= 0
// keeps them all.
func ClosestMatches(query string, candidates []string, n, maxDistance int) []Suggestion {
	query = Fold(strings.TrimSpace(query))
	if query == "" || n <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	suggestions := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}

		d := levenshtein.ComputeDistance(query, Fold(c))
		if maxDistance > 0 && d > maxDistance {
			continue
		}
		suggestions = append(suggestions, Suggestion{Value: c, Distance: d})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Distance < suggestions[j].Distance
	})

	if len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions
}
