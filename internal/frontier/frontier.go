package frontier

import (
	"log/slog"
	"math/rand"
	"net/url"
	"strings"
)

// Frontier is the FIFO queue of discovered links plus the seen set.
// A URL is enqueued at most once per run regardless of how many pages
// link to it. Frontier is owned by the single crawl worker and is not
// safe for concurrent use.
type Frontier struct {
	queue []string
	seen  map[string]struct{}

	// scope optionally restricts detail links to one brand.
	scope *Scope

	// hubSampleCap bounds how many detail links are taken from one
	// hub page. 0 disables sampling.
	hubSampleCap int

	rand   *rand.Rand
	logger *slog.Logger
}

// FrontierOption configures a Frontier.
type FrontierOption func(*Frontier)

// WithScope restricts detail links to one brand.
func WithScope(scope *Scope) FrontierOption {
	return func(f *Frontier) {
		f.scope = scope
	}
}

// WithHubSampleCap caps the number of detail links accepted from a
// single page. When a page offers more, a uniform random sample of
// that size is taken rather than a fixed prefix, so large hub pages
// cannot flood the queue with a systematically biased slice.
func WithHubSampleCap(cap int) FrontierOption {
	return func(f *Frontier) {
		f.hubSampleCap = cap
	}
}

// WithFrontierRand sets the random source used for hub sampling.
func WithFrontierRand(r *rand.Rand) FrontierOption {
	return func(f *Frontier) {
		f.rand = r
	}
}

// WithFrontierLogger sets the logger for skipped-seed warnings.
func WithFrontierLogger(logger *slog.Logger) FrontierOption {
	return func(f *Frontier) {
		f.logger = logger
	}
}

// New creates an empty Frontier.
func New(opts ...FrontierOption) *Frontier {
	f := &Frontier{
		seen:   make(map[string]struct{}),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rand == nil {
		f.rand = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // sampling only
	}
	return f
}

// EnqueueSeeds normalizes and enqueues seed URLs, returning how many
// were accepted. Seeds bypass scope and page-shape filtering but must
// still resolve to the target domain.
func (f *Frontier) EnqueueSeeds(seeds []string) int {
	accepted := 0
	for _, seed := range seeds {
		normalized, ok := Normalize(seed)
		if !ok {
			f.logger.Warn("skipping malformed seed URL", "url", seed)
			continue
		}
		u, err := url.Parse(normalized)
		if err != nil || !strings.EqualFold(u.Host, Domain) {
			f.logger.Warn("skipping out-of-domain seed URL", "url", seed)
			continue
		}
		if f.push(normalized) {
			accepted++
		}
	}
	return accepted
}

// Pop removes and returns the next URL. ok is false when the
// frontier is empty.
func (f *Frontier) Pop() (url string, ok bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	url = f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Offer filters the discovered links and enqueues the survivors,
// returning how many were added. Links are normalized first; only
// in-domain detail pages and hub pages pass, deny-listed sections and
// assets never do. Under a scope, hub pages always pass while detail
// links must match the scope's brand slug. When more detail links
// survive than the sample cap allows, a uniform random sample is
// enqueued.
func (f *Frontier) Offer(links []string) int {
	var details, hubs []string
	for _, link := range links {
		normalized, ok := Normalize(link)
		if !ok {
			continue
		}
		u, err := url.Parse(normalized)
		if err != nil || !strings.EqualFold(u.Host, Domain) {
			continue
		}
		if isAsset(normalized) || isDenied(u.Path) {
			continue
		}
		if _, dup := f.seen[normalized]; dup {
			continue
		}

		switch {
		case detailPathRE.MatchString(u.Path):
			if f.scope != nil && !f.scope.AllowsDetail(normalized) {
				continue
			}
			details = append(details, normalized)
		case hubPathRE.MatchString(u.Path):
			hubs = append(hubs, normalized)
		}
	}

	if f.hubSampleCap > 0 && len(details) > f.hubSampleCap {
		f.rand.Shuffle(len(details), func(i, j int) {
			details[i], details[j] = details[j], details[i]
		})
		details = details[:f.hubSampleCap]
	}

	added := 0
	for _, link := range hubs {
		if f.push(link) {
			added++
		}
	}
	for _, link := range details {
		if f.push(link) {
			added++
		}
	}
	return added
}

// push enqueues a normalized URL unless it was already seen.
func (f *Frontier) push(normalized string) bool {
	if _, dup := f.seen[normalized]; dup {
		return false
	}
	f.seen[normalized] = struct{}{}
	f.queue = append(f.queue, normalized)
	return true
}
