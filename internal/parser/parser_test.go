package parser

import (
	"fmt"
	"testing"

	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/source"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestParseScenario(t *testing.T) {
	records := New(WithIDFunc(sequentialIDs())).Parse("2020:\n1. Alpha - IMAX\n2. Beta\n")

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	expected := []models.Record{
		{ID: "id-1", Title: "Alpha", Notes: "IMAX", YearViewed: "2020", Category: models.CategoryStandard},
		{ID: "id-2", Title: "Beta", Notes: "", YearViewed: "2020", Category: models.CategoryStandard},
	}
	for i, want := range expected {
		got := records[i]
		if got.ID != want.ID || got.Title != want.Title || got.Notes != want.Notes ||
			got.YearViewed != want.YearViewed || got.Category != want.Category {
			t.Errorf("Record %d: expected %+v, got %+v", i, want, got)
		}
		if got.Checked() {
			t.Errorf("Record %d should not carry enrichment", i)
		}
	}
}

func TestParseSectionsAndYears(t *testing.T) {
	raw := `
1. Before Any Header
2019:
1. Escape Room - AMC Prime
Recuts/Edits:
1. The Cotton Club: Encore
*Leftovers:
1. 1917 - Dolby Cinema & IMAX

   2020:
1. The Gentlemen - Early Screening
`
	records := Parse(raw)

	tests := []struct {
		title    string
		year     string
		notes    string
		category models.Category
	}{
		{"Before Any Header", DefaultYear, "", models.CategoryStandard},
		{"Escape Room", "2019", "AMC Prime", models.CategoryStandard},
		{"The Cotton Club: Encore", "2019", "", models.CategoryRecutOrEdit},
		{"1917", "2019", "Dolby Cinema & IMAX", models.CategoryLeftover},
		{"The Gentlemen", "2020", "Early Screening", models.CategoryStandard},
	}

	if len(records) != len(tests) {
		t.Fatalf("Expected %d records, got %d", len(tests), len(records))
	}
	for i, tt := range tests {
		r := records[i]
		if r.Title != tt.title || r.YearViewed != tt.year || r.Notes != tt.notes || r.Category != tt.category {
			t.Errorf("Record %d: expected {%s %s %s %s}, got {%s %s %s %s}",
				i, tt.title, tt.year, tt.notes, tt.category, r.Title, r.YearViewed, r.Notes, r.Category)
		}
	}
}

func TestParseSplitsAtFirstSeparator(t *testing.T) {
	tests := []struct {
		line  string
		title string
		notes string
	}{
		{"5. Alita: Battle Angel - IMAX", "Alita: Battle Angel", "IMAX"},
		{"6. Apollo 11 - IMAX - private screening", "Apollo 11", "IMAX - private screening"},
		{"2. Spider-Man: No Way Home - Extended Edition (Dolby Cinema)", "Spider-Man: No Way Home", "Extended Edition (Dolby Cinema)"},
		{"25. John Wick: Chapter 3 – Parabellum - Dolby Cinema", "John Wick: Chapter 3 – Parabellum", "Dolby Cinema"},
		{"26. Slaughterhouse Rulez (US release)", "Slaughterhouse Rulez (US release)", ""},
		{"   7.   Climax   ", "Climax", ""},
	}

	for _, tt := range tests {
		records := Parse(tt.line)
		if len(records) != 1 {
			t.Errorf("%q: expected 1 record, got %d", tt.line, len(records))
			continue
		}
		if records[0].Title != tt.title || records[0].Notes != tt.notes {
			t.Errorf("%q: expected (%q, %q), got (%q, %q)", tt.line, tt.title, tt.notes, records[0].Title, records[0].Notes)
		}
	}
}

func TestParseIgnoresMalformedLines(t *testing.T) {
	raw := "2021:\nNot a list item\n1.NoSpace\n- dash item\n20221:\nSeen 2022:\n3. Dune - IMAX\n"
	records := Parse(raw)

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Title != "Dune" {
		t.Errorf("Expected Dune, got %q", records[0].Title)
	}
	if records[0].YearViewed != "2021" {
		t.Errorf("Expected malformed headers to keep year 2021, got %q", records[0].YearViewed)
	}
}

func TestParseYearHeaderResetsCategory(t *testing.T) {
	raw := "2019:\n*Leftovers:\n1. Little Women\n2020:\n1. Underwater\n"
	records := Parse(raw)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Category != models.CategoryLeftover {
		t.Errorf("Expected Leftover, got %s", records[0].Category)
	}
	if records[1].Category != models.CategoryStandard {
		t.Errorf("Expected year header to reset category, got %s", records[1].Category)
	}
}

func TestParseWithDefaultYear(t *testing.T) {
	records := New(WithDefaultYear("2018")).Parse("1. Widows")
	if len(records) != 1 || records[0].YearViewed != "2018" {
		t.Fatalf("Expected record in 2018, got %+v", records)
	}
}

func TestParseIsIdempotentExceptIDs(t *testing.T) {
	raw := source.Default()
	first := Parse(raw)
	second := Parse(raw)

	if len(first) == 0 {
		t.Fatal("Expected built-in log to produce records")
	}
	if len(first) != len(second) {
		t.Fatalf("Expected equal lengths, got %d and %d", len(first), len(second))
	}

	seen := make(map[string]bool)
	for i := range first {
		a, b := first[i], second[i]
		if a.ID == b.ID {
			t.Errorf("Record %d: expected fresh ids across parses", i)
		}
		if seen[a.ID] {
			t.Errorf("Duplicate id %s", a.ID)
		}
		seen[a.ID] = true

		a.ID, b.ID = "", ""
		if a != b {
			t.Errorf("Record %d differs across parses: %+v vs %+v", i, a, b)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if records := Parse("\n  \n"); len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}
