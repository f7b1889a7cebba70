package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/scentdb/scentcrawl/internal/extract"
	"github.com/scentdb/scentcrawl/internal/fetch"
	"github.com/scentdb/scentcrawl/internal/frontier"
	"github.com/scentdb/scentcrawl/internal/pace"
	"github.com/scentdb/scentcrawl/internal/robots"
	"github.com/scentdb/scentcrawl/internal/store"
)

// ErrNoSeeds is returned when none of the given seed URLs resolve to
// the target domain.
var ErrNoSeeds = errors.New("no usable in-domain seed URLs")

// Stats are the counters accumulated over one run, feeding the crawl
// report.
type Stats struct {
	// Brand is the scope's brand, empty for an unscoped run.
	Brand string

	// Seeds is how many seed URLs were accepted into the frontier.
	Seeds int

	// PagesFetched counts pages fetched successfully, hub pages
	// included.
	PagesFetched int

	// PagesProcessed counts in-scope detail pages that reached
	// extraction, whether or not a record was persisted. The page
	// budget caps this counter; hub traversal is free.
	PagesProcessed int

	// RecordsSaved counts records appended to the store.
	RecordsSaved int

	// Incomplete counts detail pages whose extraction missed a
	// required field and was therefore not persisted.
	Incomplete int

	// SkippedKnown counts URLs skipped because the store already
	// holds them. Known URLs are never fetched again.
	SkippedKnown int

	// SkippedRobots counts URLs the robots policy disallowed.
	SkippedRobots int

	// SkippedTerminal counts fetches that resolved to a terminal
	// skip (non-HTML, 404 and kin).
	SkippedTerminal int

	// GaveUp counts URLs abandoned after exhausting retries.
	GaveUp int

	// Rotations counts identity rotations from all causes.
	Rotations int

	Started  time.Time
	Duration time.Duration
}

// Spider runs the sequential crawl loop. It owns no long-lived state
// itself; the injected engine, scheduler, and store carry identity
// health, pacing counters, and the known-URL set across runs.
type Spider struct {
	engine   *fetch.Engine
	frontier *frontier.Frontier
	store    *store.Store
	sched    *pace.Scheduler

	// agent is the robots policy gate, nil to skip policy checks
	// entirely.
	agent *robots.Agent

	// scope restricts persistence to one brand. The frontier holds
	// its own copy for link filtering; this one gates extracted
	// records, which matters when a redirect lands outside the
	// requested slug.
	scope *frontier.Scope

	// pageBudget caps processed detail pages for the run.
	pageBudget int

	logger *slog.Logger
	now    func() time.Time
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithPageBudget caps how many detail pages the run may process.
func WithPageBudget(n int) SpiderOption {
	return func(s *Spider) {
		s.pageBudget = n
	}
}

// WithRobots sets the robots policy agent.
func WithRobots(agent *robots.Agent) SpiderOption {
	return func(s *Spider) {
		s.agent = agent
	}
}

// WithBrandScope restricts persisted records to the scope's brand.
func WithBrandScope(scope *frontier.Scope) SpiderOption {
	return func(s *Spider) {
		s.scope = scope
	}
}

// WithSpiderLogger sets the logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithNow replaces the clock, for tests that pin LastCrawled.
func WithNow(now func() time.Time) SpiderOption {
	return func(s *Spider) {
		s.now = now
	}
}

// NewSpider creates a Spider over the injected collaborators.
func NewSpider(engine *fetch.Engine, front *frontier.Frontier, st *store.Store, sched *pace.Scheduler, opts ...SpiderOption) *Spider {
	s := &Spider{
		engine:     engine,
		frontier:   front,
		store:      st,
		sched:      sched,
		pageBudget: 100,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run crawls from the seed URLs until the frontier drains, the page
// budget is spent, or the context is cancelled. Stats are returned
// even on error so partial progress reaches the report.
func (s *Spider) Run(ctx context.Context, seeds []string) (*Stats, error) {
	stats := &Stats{Started: s.now()}
	if s.scope != nil {
		stats.Brand = s.scope.Brand
	}
	defer func() {
		stats.Duration = s.now().Sub(stats.Started)
	}()

	if s.agent != nil {
		if err := s.agent.Load(ctx, frontier.Domain, s.engine.Identity()); err != nil {
			return stats, err
		}
	}

	stats.Seeds = s.frontier.EnqueueSeeds(seeds)
	if stats.Seeds == 0 {
		return stats, ErrNoSeeds
	}

	for stats.PagesProcessed < s.pageBudget {
		rawURL, ok := s.frontier.Pop()
		if !ok {
			break
		}

		if s.agent != nil && !s.agent.Allowed(rawURL) {
			s.logger.Debug("robots policy disallows URL", "url", rawURL)
			stats.SkippedRobots++
			continue
		}
		if frontier.IsDetailURL(rawURL) && s.store.Known(rawURL) {
			stats.SkippedKnown++
			continue
		}

		if err := s.sched.BeforeRequest(ctx); err != nil {
			return stats, err
		}

		result, err := s.engine.Fetch(ctx, rawURL)
		if err != nil {
			return stats, err
		}
		stats.Rotations += result.Rotations
		if s.sched.RecordAttempts(result.Attempts) {
			s.engine.Rotate()
			stats.Rotations++
		}

		switch result.Status {
		case fetch.StatusSkipped:
			s.logger.Debug("page not usable", "url", rawURL, "outcome", result.LastOutcome.Kind)
			stats.SkippedTerminal++
			continue
		case fetch.StatusGaveUp:
			s.logger.Warn("giving up on URL",
				"url", rawURL,
				"attempts", result.Attempts,
				"outcome", result.LastOutcome.Kind,
			)
			stats.GaveUp++
			continue
		}
		stats.PagesFetched++

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
		if err != nil {
			s.logger.Warn("failed to parse HTML", "url", rawURL, "err", err)
			continue
		}

		pageURL := result.FinalURL
		if canon, ok := frontier.Normalize(pageURL); ok {
			pageURL = canon
		}

		if frontier.IsDetailURL(pageURL) {
			if err := s.handleDetail(ctx, doc, pageURL, stats); err != nil {
				return stats, err
			}
		}

		if stats.PagesProcessed < s.pageBudget {
			s.frontier.Offer(extract.Links(doc, pageURL))
		}
	}

	s.logger.Info("crawl finished",
		"brand", stats.Brand,
		"pages", stats.PagesFetched,
		"saved", stats.RecordsSaved,
		"queued", s.frontier.Len(),
	)
	return stats, nil
}

// handleDetail extracts and persists one detail page. Extraction
// shortfalls and out-of-scope brands are logged and skipped; only
// store I/O failures and cancelled cooldowns abort the run.
func (s *Spider) handleDetail(ctx context.Context, doc *goquery.Document, pageURL string, stats *Stats) error {
	// A redirect may land on a detail page that was already saved.
	if s.store.Known(pageURL) {
		stats.SkippedKnown++
		stats.PagesProcessed++
		return nil
	}

	rec := extract.Record(doc, pageURL, s.now())

	// Out-of-scope pages do not count against the budget.
	if s.scope != nil && !s.scope.MatchesBrand(rec.Brand) {
		s.logger.Debug("detail page outside brand scope",
			"url", pageURL,
			"brand", rec.Brand,
			"want", stats.Brand,
		)
		return nil
	}
	stats.PagesProcessed++
	if !rec.Complete() {
		s.logger.Debug("incomplete record not persisted",
			"url", pageURL,
			"brand", rec.Brand,
			"name", rec.Name,
		)
		stats.Incomplete++
		return nil
	}

	if err := s.store.Append(rec); err != nil {
		return fmt.Errorf("failed to persist record for %s: %w", pageURL, err)
	}
	stats.RecordsSaved++
	s.logger.Info("saved record",
		"brand", rec.Brand,
		"name", rec.Name,
		"rating", rec.RatingString(),
		"votes", rec.VotesString(),
	)

	// Cooldown is deferred to the next sub-run when nothing is left
	// to fetch here; the save counter carries over.
	if s.sched.RecordSave() && s.frontier.Len() > 0 {
		if err := s.sched.Cooldown(ctx); err != nil {
			return err
		}
		s.engine.Rotate()
		stats.Rotations++
	}
	return nil
}
