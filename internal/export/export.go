package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/scentdb/scentcrawl/internal/model"
	"github.com/scentdb/scentcrawl/internal/store"
)

// ErrNoSheets is returned when every input store was missing or
// empty.
var ErrNoSheets = errors.New("no non-empty stores to export")

// maxSheetName is the sheet name length Excel accepts.
const maxSheetName = 31

// Input names one CSV store and the sheet label it maps to.
type Input struct {
	// Label becomes the sheet name, usually the brand.
	Label string

	// Path is the CSV store location.
	Path string
}

// Stats summarizes one export.
type Stats struct {
	Sheets  int
	Rows    int
	Skipped int
}

// Exporter writes XLSX workbooks from CSV stores.
type Exporter struct {
	// concurrency bounds parallel CSV loads.
	concurrency int

	logger *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithConcurrency bounds how many stores load in parallel.
func WithConcurrency(n int) Option {
	return func(e *Exporter) {
		e.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = logger
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// XLSX loads every input store and writes one workbook to outPath,
// one sheet per non-empty store, ordered as the inputs were given.
func (e *Exporter) XLSX(ctx context.Context, inputs []Input, outPath string) (*Stats, error) {
	stats := &Stats{}

	// Pre-allocated so sheet order follows input order regardless of
	// load completion order.
	loaded := make([][]model.Record, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if _, err := os.Stat(in.Path); err != nil {
				e.logger.Warn("store not found, skipping", "label", in.Label, "path", in.Path)
				return nil
			}
			st, err := store.Open(in.Path)
			if err != nil {
				return fmt.Errorf("failed to open store %s: %w", in.Path, err)
			}
			records, err := st.LoadAll()
			if err != nil {
				return fmt.Errorf("failed to load store %s: %w", in.Path, err)
			}
			loaded[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]struct{}, len(inputs))
	for i, in := range inputs {
		records := loaded[i]
		if len(records) == 0 {
			stats.Skipped++
			continue
		}

		sheet := uniqueSheetName(used, in.Label)
		if stats.Sheets == 0 {
			// Reuse the default sheet for the first brand.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return stats, fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return stats, fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}
		stats.Sheets++

		if err := writeSheet(f, sheet, records); err != nil {
			return stats, err
		}
		stats.Rows += len(records)
	}

	if stats.Sheets == 0 {
		return stats, ErrNoSheets
	}

	if err := f.SaveAs(outPath); err != nil {
		return stats, fmt.Errorf("failed to write workbook: %w", err)
	}
	e.logger.Info("workbook written",
		"path", outPath,
		"sheets", stats.Sheets,
		"rows", stats.Rows,
	)
	return stats, nil
}

// writeSheet writes the store schema header and one row per record.
func writeSheet(f *excelize.File, sheet string, records []model.Record) error {
	header := make([]any, len(store.Columns))
	for i, col := range store.Columns {
		header[i] = col
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, rec := range records {
		row := []any{
			rec.Brand,
			rec.Name,
			rec.RatingString(),
			rec.VotesString(),
			rec.URL,
			rec.LastCrawled.Format("2006-01-02"),
			rec.Sex,
			rec.Category,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", row, sheet, err)
	}
	return nil
}

// sheetName makes a label safe for Excel: forbidden characters become
// spaces and the result is truncated to 31 characters.
func sheetName(label string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, label)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = "Sheet"
	}
	if len(cleaned) > maxSheetName {
		cleaned = cleaned[:maxSheetName]
	}
	return cleaned
}

// uniqueSheetName dedupes sanitized labels with a numeric suffix.
// Excel treats sheet names case-insensitively, and NewSheet on an
// existing name would silently merge two stores into one sheet.
func uniqueSheetName(used map[string]struct{}, label string) string {
	name := sheetName(label)
	if _, dup := used[strings.ToLower(name)]; !dup {
		used[strings.ToLower(name)] = struct{}{}
		return name
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" %d", n)
		base := name
		if len(base)+len(suffix) > maxSheetName {
			base = strings.TrimSpace(base[:maxSheetName-len(suffix)])
		}
		candidate := base + suffix
		if _, dup := used[strings.ToLower(candidate)]; !dup {
			used[strings.ToLower(candidate)] = struct{}{}
			return candidate
		}
	}
}
