package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/schollz/progressbar/v3"

	"github.com/scentdb/scentcrawl/internal/extract"
	"github.com/scentdb/scentcrawl/internal/fetch"
	"github.com/scentdb/scentcrawl/internal/model"
	"github.com/scentdb/scentcrawl/internal/pace"
	"github.com/scentdb/scentcrawl/internal/store"
)

// rewriteEvery is how many enriched rows accumulate before the CSV is
// rewritten. The final rewrite happens regardless.
const rewriteEvery = 10

// Stats summarizes one enrichment pass.
type Stats struct {
	// Candidates is how many rows were missing category or audience,
	// after the skip offset.
	Candidates int

	// Visited is how many detail pages were actually fetched.
	Visited int

	// Enriched is how many rows gained at least one field.
	Enriched int

	// Failed is how many pages could not be fetched or yielded
	// nothing.
	Failed int

	Started  time.Time
	Duration time.Duration
}

// Enricher re-visits saved records missing category or audience data.
type Enricher struct {
	engine *fetch.Engine
	sched  *pace.Scheduler
	store  *store.Store

	// skipRows skips the first N candidates, resuming a pass that was
	// interrupted partway.
	skipRows int

	// maxPages caps fetches for this pass. 0 means no cap.
	maxPages int

	// progressOut receives the progress bar. nil disables it.
	progressOut io.Writer

	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithSkipRows resumes after the first n candidates.
func WithSkipRows(n int) Option {
	return func(e *Enricher) {
		e.skipRows = n
	}
}

// WithMaxPages caps how many pages the pass may fetch.
func WithMaxPages(n int) Option {
	return func(e *Enricher) {
		e.maxPages = n
	}
}

// WithProgress draws a progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(e *Enricher) {
		e.progressOut = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Enricher) {
		e.logger = logger
	}
}

// WithNow replaces the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(e *Enricher) {
		e.now = now
	}
}

// New creates an Enricher sharing the engine and scheduler with the
// rest of the process.
func New(engine *fetch.Engine, sched *pace.Scheduler, st *store.Store, opts ...Option) *Enricher {
	e := &Enricher{
		engine: engine,
		sched:  sched,
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run loads the store, visits every candidate row, and rewrites the
// CSV with whatever was gained. Rows that still yield nothing are kept
// as they were.
func (e *Enricher) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{Started: e.now()}
	defer func() {
		stats.Duration = e.now().Sub(stats.Started)
	}()

	records, err := e.store.LoadAll()
	if err != nil {
		return stats, fmt.Errorf("failed to load records: %w", err)
	}

	var candidates []int
	for i := range records {
		if records[i].NeedsEnrichment() {
			candidates = append(candidates, i)
		}
	}
	if e.skipRows > 0 {
		if e.skipRows >= len(candidates) {
			candidates = nil
		} else {
			candidates = candidates[e.skipRows:]
		}
	}
	if e.maxPages > 0 && len(candidates) > e.maxPages {
		candidates = candidates[:e.maxPages]
	}
	stats.Candidates = len(candidates)
	if len(candidates) == 0 {
		e.logger.Info("nothing to enrich")
		return stats, nil
	}

	bar := e.newBar(len(candidates))
	sinceRewrite := 0
	for i, idx := range candidates {
		if err := e.sched.BeforeRequest(ctx); err != nil {
			return stats, err
		}

		enriched, err := e.visit(ctx, &records[idx])
		if err != nil {
			return stats, err
		}
		stats.Visited++
		if enriched {
			stats.Enriched++
			sinceRewrite++
		} else {
			stats.Failed++
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		if sinceRewrite >= rewriteEvery {
			if err := e.store.RewriteAll(records); err != nil {
				return stats, fmt.Errorf("failed to rewrite store: %w", err)
			}
			sinceRewrite = 0
		}

		// Cooldown is skipped after the last candidate; the counter
		// carries to the next pass.
		if enriched && e.sched.RecordSave() && i < len(candidates)-1 {
			if err := e.sched.Cooldown(ctx); err != nil {
				return stats, err
			}
			e.engine.Rotate()
		}
	}

	if sinceRewrite > 0 {
		if err := e.store.RewriteAll(records); err != nil {
			return stats, fmt.Errorf("failed to rewrite store: %w", err)
		}
	}

	e.logger.Info("enrichment finished",
		"candidates", stats.Candidates,
		"enriched", stats.Enriched,
		"failed", stats.Failed,
	)
	return stats, nil
}

// visit fetches one record's page and fills missing fields in place.
func (e *Enricher) visit(ctx context.Context, rec *model.Record) (bool, error) {
	result, err := e.engine.Fetch(ctx, rec.URL)
	if err != nil {
		return false, err
	}
	if e.sched.RecordAttempts(result.Attempts) {
		e.engine.Rotate()
	}
	if result.Status != fetch.StatusFetched {
		e.logger.Debug("page not usable for enrichment",
			"url", rec.URL,
			"outcome", result.LastOutcome.Kind,
		)
		return false, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		e.logger.Warn("failed to parse HTML", "url", rec.URL, "err", err)
		return false, nil
	}

	category, sex := extract.CategoryAndSex(doc)
	enriched := false
	if rec.Category == "" && category != "" {
		rec.Category = category
		enriched = true
	}
	if rec.Sex == "" && sex != "" {
		rec.Sex = sex
		enriched = true
	}
	if enriched {
		rec.LastCrawled = e.now().UTC()
	}
	return enriched, nil
}

func (e *Enricher) newBar(total int) *progressbar.ProgressBar {
	if e.progressOut == nil {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("enriching"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(e.progressOut),
	)
}
