package model

import (
	"testing"
	"time"
)

// TestRecordComplete tests the persistence gate for records.
func TestRecordComplete(t *testing.T) {
	t.Parallel()

	rating := 4.2
	votes := 1234

	t.Run("all fields present", func(t *testing.T) {
		t.Parallel()

		r := Record{
			Brand:       "Diptyque",
			Name:        "Orpheon",
			Rating:      &rating,
			Votes:       &votes,
			URL:         "https://www.fragrantica.com/perfume/Diptyque/Orpheon-68930.html",
			LastCrawled: time.Now().UTC(),
		}
		if !r.Complete() {
			t.Error("expected record to be complete")
		}
	})

	t.Run("missing rating is incomplete", func(t *testing.T) {
		t.Parallel()

		r := Record{Brand: "Diptyque", Name: "Orpheon", Votes: &votes}
		if r.Complete() {
			t.Error("record without rating must not be complete")
		}
	})

	t.Run("whitespace-only name is incomplete", func(t *testing.T) {
		t.Parallel()

		r := Record{Brand: "Diptyque", Name: "   ", Rating: &rating, Votes: &votes}
		if r.Complete() {
			t.Error("record with blank name must not be complete")
		}
	})
}

// TestRecordNeedsEnrichment tests detection of rows the enrichment
// pass should revisit.
func TestRecordNeedsEnrichment(t *testing.T) {
	t.Parallel()

	t.Run("missing category", func(t *testing.T) {
		t.Parallel()

		r := Record{Sex: "women"}
		if !r.NeedsEnrichment() {
			t.Error("row without category should need enrichment")
		}
	})

	t.Run("both present", func(t *testing.T) {
		t.Parallel()

		r := Record{Sex: "women and men", Category: "Woody Chypre"}
		if r.NeedsEnrichment() {
			t.Error("fully enriched row should not need enrichment")
		}
	})
}

// TestRatingRoundTrip tests CSV cell formatting and parsing.
func TestRatingRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("nil rating formats as empty", func(t *testing.T) {
		t.Parallel()

		r := Record{}
		if got := r.RatingString(); got != "" {
			t.Errorf("expected empty rating string, got %q", got)
		}
		if got := r.VotesString(); got != "" {
			t.Errorf("expected empty votes string, got %q", got)
		}
	})

	t.Run("values survive formatting", func(t *testing.T) {
		t.Parallel()

		rating := 4.2
		votes := 1234
		r := Record{Rating: &rating, Votes: &votes}

		back := ParseRating(r.RatingString())
		if back == nil || *back != 4.2 {
			t.Errorf("rating round trip failed: %v", back)
		}
		v := ParseVotes(r.VotesString())
		if v == nil || *v != 1234 {
			t.Errorf("votes round trip failed: %v", v)
		}
	})

	t.Run("malformed cells parse to nil", func(t *testing.T) {
		t.Parallel()

		if ParseRating("abc") != nil {
			t.Error("malformed rating should parse to nil")
		}
		if ParseVotes("4.2") != nil {
			t.Error("non-integer votes should parse to nil")
		}
	})
}
