package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scentdb/scentcrawl/internal/model"
)

func testRecord(url string) model.Record {
	rating := 4.2
	votes := 1234
	return model.Record{
		Brand:       "Diptyque",
		Name:        "Orpheon",
		Rating:      &rating,
		Votes:       &votes,
		URL:         url,
		LastCrawled: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Sex:         "women and men",
		Category:    "Woody Chypre",
	}
}

// TestOpenCreatesHeader tests that opening a fresh store writes the
// schema header and creates parent directories.
func TestOpenCreatesHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "perfumes.csv")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if s.Count() != 0 {
		t.Errorf("fresh store should be empty, got %d", s.Count())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read store file: %v", err)
	}
	if !strings.HasPrefix(string(data), "brand,name,rating,votes,url,last_crawled,sex,fragrance_category") {
		t.Errorf("unexpected header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

// TestAppendAndResume tests that appended URLs survive reopening the
// store, giving resumability across process restarts.
func TestAppendAndResume(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "perfumes.csv")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	url := "https://www.fragrantica.com/perfume/Diptyque/Orpheon-68930.html"
	if err := s.Append(testRecord(url)); err != nil {
		t.Fatalf("failed to append record: %v", err)
	}
	if !s.Known(url) {
		t.Error("appended URL should be known")
	}

	// Duplicate appends are rejected.
	if err := s.Append(testRecord(url)); err == nil {
		t.Error("expected duplicate append to fail")
	}

	// Reopen: dedup state must come back from the file alone.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	if !reopened.Known(url) {
		t.Error("URL should still be known after reopen")
	}
	if reopened.Count() != 1 {
		t.Errorf("expected 1 known URL after reopen, got %d", reopened.Count())
	}
}

// TestLoadAllRoundTrip tests that record fields survive the CSV round
// trip, including nil rating/votes.
func TestLoadAllRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "perfumes.csv")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	full := testRecord("https://www.fragrantica.com/perfume/Diptyque/Orpheon-68930.html")
	if err := s.Append(full); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	records, err := s.LoadAll()
	if err != nil {
		t.Fatalf("failed to load records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Brand != full.Brand || got.Name != full.Name || got.URL != full.URL {
		t.Errorf("identity fields mismatch: %+v", got)
	}
	if got.Rating == nil || *got.Rating != 4.2 {
		t.Errorf("rating = %v, want 4.2", got.Rating)
	}
	if got.Votes == nil || *got.Votes != 1234 {
		t.Errorf("votes = %v, want 1234", got.Votes)
	}
	if got.Sex != "women and men" || got.Category != "Woody Chypre" {
		t.Errorf("enrichment fields mismatch: sex=%q category=%q", got.Sex, got.Category)
	}
	if !got.LastCrawled.Equal(full.LastCrawled) {
		t.Errorf("last crawled = %v, want %v", got.LastCrawled, full.LastCrawled)
	}
}

// TestRewriteAll tests the atomic bulk rewrite.
func TestRewriteAll(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "perfumes.csv")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	first := testRecord("https://www.fragrantica.com/perfume/Diptyque/Orpheon-68930.html")
	if err := s.Append(first); err != nil {
		t.Fatalf("failed to append: %v", err)
	}

	updated := first
	updated.Category = "Amber Woody"
	second := testRecord("https://www.fragrantica.com/perfume/Chanel/Chance-21.html")

	if err := s.RewriteAll([]model.Record{updated, second}); err != nil {
		t.Fatalf("failed to rewrite store: %v", err)
	}

	records, err := s.LoadAll()
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records after rewrite, got %d", len(records))
	}
	if records[0].Category != "Amber Woody" {
		t.Errorf("rewrite did not apply update: %q", records[0].Category)
	}
	if !s.Known(second.URL) {
		t.Error("rewrite should refresh the known set")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to list store dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".scentcrawl-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

// TestLoadAllSkipsMalformedRows tests that damaged rows do not block
// loading the rest of the file.
func TestLoadAllSkipsMalformedRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "perfumes.csv")
	content := strings.Join([]string{
		"brand,name,rating,votes,url,last_crawled,sex,fragrance_category",
		"short,row",
		`Chanel,Chance,4.1,900,https://www.fragrantica.com/perfume/Chanel/Chance-21.html,2025-06-01T12:00:00Z,women,Chypre Floral`,
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if s.Count() != 1 {
		t.Errorf("expected 1 known URL, got %d", s.Count())
	}
}
