package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scentdb/scentcrawl/internal/model"
)

// Columns is the fixed CSV schema, in order.
var Columns = []string{
	"brand", "name", "rating", "votes", "url", "last_crawled", "sex", "fragrance_category",
}

// timeLayout is the timestamp format of the last_crawled column.
const timeLayout = time.RFC3339

// Store is a CSV-backed record store. It keeps the set of known
// canonical URLs in memory and mirrors every append into it. Store is
// owned by the single crawl worker and is not safe for concurrent use.
type Store struct {
	path  string
	known map[string]struct{}
}

// Open opens the CSV store at path, creating the file (and parent
// directories) with a header row when it does not exist, and loads
// the set of already-recorded canonical URLs.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeHeader(path); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to check store file: %w", err)
	}

	s := &Store{
		path:  path,
		known: make(map[string]struct{}),
	}
	if err := s.loadKnown(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing CSV file.
func (s *Store) Path() string {
	return s.path
}

// Known reports whether the canonical URL is already recorded.
func (s *Store) Known(url string) bool {
	_, ok := s.known[url]
	return ok
}

// Count returns the number of recorded URLs.
func (s *Store) Count() int {
	return len(s.known)
}

// Append writes one record to the file and marks its URL as known.
// Appending a URL that is already known is rejected; the caller is
// expected to check Known first.
func (s *Store) Append(rec model.Record) error {
	if s.Known(rec.URL) {
		return fmt.Errorf("record for %s already exists", rec.URL)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644) //nolint:gosec // data file
	if err != nil {
		return fmt.Errorf("failed to open store for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(toRow(rec)); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush record: %w", err)
	}

	s.known[rec.URL] = struct{}{}
	return nil
}

// LoadAll reads every record currently in the file, preserving row
// order. Used by the enrichment pass and the exporter.
func (s *Store) LoadAll() ([]model.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var records []model.Record
	first := true
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read store row: %w", err)
		}
		if first {
			first = false
			if len(row) > 0 && row[0] == Columns[0] {
				continue
			}
		}
		if rec, ok := fromRow(row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// RewriteAll atomically replaces the whole file with the given
// records: rows are written to a temp file in the same directory and
// renamed over the original. A failure at any point discards the temp
// file and leaves the original untouched.
func (s *Store) RewriteAll(records []model.Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".scentcrawl-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	writeErr := w.Write(Columns)
	for _, rec := range records {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(toRow(rec))
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp store file: %w", writeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	s.known = make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.URL != "" {
			s.known[rec.URL] = struct{}{}
		}
	}
	return nil
}

// loadKnown scans the file and fills the known-URL set. Malformed
// rows are skipped so a partially damaged file does not block resume.
func (s *Store) loadKnown() error {
	records, err := s.LoadAll()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.URL != "" {
			s.known[rec.URL] = struct{}{}
		}
	}
	return nil
}

func writeHeader(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644) //nolint:gosec // data file
	if err != nil {
		return fmt.Errorf("failed to create store file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write store header: %w", err)
	}
	w.Flush()
	return w.Error()
}

func toRow(rec model.Record) []string {
	var crawled string
	if !rec.LastCrawled.IsZero() {
		crawled = rec.LastCrawled.UTC().Format(timeLayout)
	}
	return []string{
		rec.Brand,
		rec.Name,
		rec.RatingString(),
		rec.VotesString(),
		rec.URL,
		crawled,
		rec.Sex,
		rec.Category,
	}
}

func fromRow(row []string) (model.Record, bool) {
	if len(row) < 5 {
		return model.Record{}, false
	}
	// Older files may predate the sex and category columns.
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rec := model.Record{
		Brand:    get(0),
		Name:     get(1),
		Rating:   model.ParseRating(get(2)),
		Votes:    model.ParseVotes(get(3)),
		URL:      get(4),
		Sex:      get(6),
		Category: get(7),
	}
	if ts := get(5); ts != "" {
		if parsed, err := time.Parse(timeLayout, ts); err == nil {
			rec.LastCrawled = parsed
		}
	}
	return rec, rec.URL != ""
}
