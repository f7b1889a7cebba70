package model

import (
	"strconv"
	"strings"
	"time"
)

// Record represents one fragrance detail page extracted from the site.
// It maps one-to-one onto a CSV row in the store.
type Record struct {
	// Brand is the designer/owner of the fragrance (e.g., "Chanel").
	Brand string

	// Name is the fragrance name with any trailing audience suffix
	// ("for men", "for women", "for unisex") stripped.
	Name string

	// Rating is the average user rating in [0, 5].
	// Nil means the page carried no rating sentence; a fragrance that
	// has not been rated yet is not the same as one rated 0.
	Rating *float64

	// Votes is the number of user votes behind Rating.
	// Nil when the rating sentence is absent.
	Votes *int

	// URL is the canonical (normalized, post-redirect) detail page URL.
	// It is the deduplication key for the store.
	URL string

	// LastCrawled is when the page was fetched, in UTC.
	LastCrawled time.Time

	// Sex is the target audience as written on the page
	// (e.g., "women and men"). Empty when not extracted yet.
	Sex string

	// Category is the fragrance category (e.g., "Woody Chypre").
	// Empty when not extracted yet.
	Category string
}

// Complete reports whether the record carries every field required for
// persistence. Partial records are not persisted; the URL stays
// unrecorded so a later run (or the enrichment pass) can retry it.
func (r *Record) Complete() bool {
	return strings.TrimSpace(r.Brand) != "" &&
		strings.TrimSpace(r.Name) != "" &&
		r.Rating != nil &&
		r.Votes != nil
}

// NeedsEnrichment reports whether the record is missing fields the
// enrichment pass can fill in.
func (r *Record) NeedsEnrichment() bool {
	return strings.TrimSpace(r.Category) == "" || strings.TrimSpace(r.Sex) == ""
}

// RatingString formats Rating for the CSV row. Nil becomes "".
func (r *Record) RatingString() string {
	if r.Rating == nil {
		return ""
	}
	return strconv.FormatFloat(*r.Rating, 'f', -1, 64)
}

// VotesString formats Votes for the CSV row. Nil becomes "".
func (r *Record) VotesString() string {
	if r.Votes == nil {
		return ""
	}
	return strconv.Itoa(*r.Votes)
}

// ParseRating parses a CSV rating cell back into a pointer.
// Empty or malformed cells return nil.
func ParseRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseVotes parses a CSV votes cell back into a pointer.
// Empty or malformed cells return nil.
func ParseVotes(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}
