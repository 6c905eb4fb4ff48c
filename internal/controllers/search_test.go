package controllers

import (
	"math/rand"
	"testing"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
)

func browseLibrary() *library.Library {
	lib := library.New()
	lib.Load([]models.Record{
		{ID: "1", Title: "Heat", YearViewed: "2019", Notes: "IMAX", Enrichment: models.Enrichment{HasCommentary: boolPtr(true)}},
		{ID: "2", Title: "Alien", YearViewed: "2020", Notes: "35mm"},
		{ID: "3", Title: "Aliens", YearViewed: "2020", Enrichment: models.Enrichment{HasCommentary: boolPtr(false)}},
		{ID: "4", Title: "Blade Runner", YearViewed: "2021", Notes: "Final Cut", Enrichment: models.Enrichment{HasCommentary: boolPtr(true)}},
		{ID: "5", Title: "Zodiac", YearViewed: "2009"},
	})
	return lib
}

func ids(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestSearch(t *testing.T) {
	c := NewSearchController(browseLibrary(), testLogger())

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"no filter", Filter{}, []string{"1", "2", "3", "4", "5"}},
		{"title ignoring case", Filter{Query: "ALIEN"}, []string{"2", "3"}},
		{"notes", Filter{Query: "imax"}, []string{"1"}},
		{"year", Filter{Year: "2020"}, []string{"2", "3"}},
		{"all years", Filter{Year: AllYears}, []string{"1", "2", "3", "4", "5"}},
		{"commentary only", Filter{CommentaryOnly: true}, []string{"1", "4"}},
		{"combined", Filter{Query: "cut", Year: "2021", CommentaryOnly: true}, []string{"4"}},
		{"no match", Filter{Query: "nothing"}, nil},
	}

	for _, tt := range tests {
		got := ids(c.Search(tt.filter))
		if !equalIDs(got, tt.want...) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestGroupByYear(t *testing.T) {
	lib := browseLibrary()
	lib.Prepend(models.Record{ID: "6", Title: "Tenet", YearViewed: "2010"})

	groups := GroupByYear(lib.Records())

	wantYears := []string{"2021", "2020", "2019", "2010", "2009"}
	if len(groups) != len(wantYears) {
		t.Fatalf("Expected %d groups, got %d", len(wantYears), len(groups))
	}
	for i, year := range wantYears {
		if groups[i].Year != year {
			t.Errorf("Group %d: expected %s, got %s", i, year, groups[i].Year)
		}
	}
	if !equalIDs(ids(groups[1].Records), "2", "3") {
		t.Errorf("Expected 2020 records in order, got %v", ids(groups[1].Records))
	}
}

func TestYearsAndStats(t *testing.T) {
	c := NewSearchController(browseLibrary(), testLogger())

	years := c.Years()
	if !equalIDs(years, "2021", "2020", "2019", "2009") {
		t.Errorf("Expected years descending, got %v", years)
	}

	stats := c.StatsByYear()
	want := []YearCount{{"2009", 1}, {"2019", 1}, {"2020", 2}, {"2021", 1}}
	if len(stats) != len(want) {
		t.Fatalf("Expected %d stats, got %d", len(want), len(stats))
	}
	for i := range want {
		if stats[i] != want[i] {
			t.Errorf("Stat %d: expected %+v, got %+v", i, want[i], stats[i])
		}
	}
}

func TestFeatured(t *testing.T) {
	c := NewSearchController(browseLibrary(), testLogger())
	c.rand = rand.New(rand.NewSource(1))

	featured := c.Featured(0)
	if len(featured) != 2 {
		t.Fatalf("Expected both commentary records, got %d", len(featured))
	}
	for _, r := range featured {
		if !r.WithCommentary() {
			t.Errorf("Featured record %s has no commentary", r.ID)
		}
	}

	if got := c.Featured(1); len(got) != 1 {
		t.Errorf("Expected 1 featured record, got %d", len(got))
	}
}

func TestSuggestAndSummary(t *testing.T) {
	c := NewSearchController(browseLibrary(), testLogger())

	suggestions := c.Suggest("hate", 1)
	if len(suggestions) != 1 || suggestions[0] != "Heat" {
		t.Errorf("Expected [Heat], got %v", suggestions)
	}

	summary := c.Summary()
	if summary.Total != 5 || summary.Checked != 3 || summary.WithCommentary != 2 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}
