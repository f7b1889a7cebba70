package identity

import (
	"log/slog"
	"math/rand"
)

// maxProxyFailures is the failure count at which a proxy stops being
// selected while healthier proxies remain.
const maxProxyFailures = 3

// Provider issues identities and tracks proxy health.
//
// Selection is round-robin over the configured proxy list, skipping
// any proxy with maxProxyFailures or more recorded failures. At most
// 2 x len(proxies) candidates are examined per call; when every proxy
// is exhausted all failure counters are cleared and the next
// round-robin candidate is returned anyway, because making progress
// matters more than perfect proxy hygiene.
//
// Provider is not safe for concurrent use; the crawl is a single
// sequential worker and owns it exclusively.
type Provider struct {
	proxies  []string
	failures map[string]int
	index    int

	// pinnedUA is a caller-supplied User-Agent. When empty, Next
	// draws from the curated pool on every rotation.
	pinnedUA string

	rand   *rand.Rand
	logger *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithProxies sets the proxy pool. An empty pool means rotation only
// changes the user agent and accept-language.
func WithProxies(proxies []string) Option {
	return func(p *Provider) {
		p.proxies = proxies
	}
}

// WithUserAgent pins the User-Agent instead of drawing from the pool.
func WithUserAgent(ua string) Option {
	return func(p *Provider) {
		p.pinnedUA = ua
	}
}

// WithRand sets the random source. Tests use a seeded source.
func WithRand(r *rand.Rand) Option {
	return func(p *Provider) {
		p.rand = r
	}
}

// WithLogger sets the logger used for rotation and recovery events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a Provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		failures: make(map[string]int),
		index:    -1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rand == nil {
		p.rand = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // not used for security
	}
	return p
}

// HasProxies reports whether a proxy pool is configured. The fetch
// engine uses this to decide between rotating and plain backoff on
// rate-limit signals.
func (p *Provider) HasProxies() bool {
	return len(p.proxies) > 0
}

// Next issues a fresh identity: the next healthy proxy in round-robin
// order plus a user agent and accept-language from the pools.
func (p *Provider) Next() Identity {
	return Identity{
		Proxy:          p.nextProxy(),
		UserAgent:      p.userAgent(),
		AcceptLanguage: defaultAcceptLanguages[p.rand.Intn(len(defaultAcceptLanguages))],
	}
}

// RecordFailure increments the failure count for the given proxy.
// Empty proxies (direct connections) are ignored.
func (p *Provider) RecordFailure(proxy string) {
	if proxy == "" {
		return
	}
	p.failures[proxy]++
}

// RecordSuccess decrements the failure count for the given proxy,
// never below zero. A proxy that works again earns its way back.
func (p *Provider) RecordSuccess(proxy string) {
	if proxy == "" {
		return
	}
	if p.failures[proxy] > 0 {
		p.failures[proxy]--
	}
}

// Failures returns the current failure count for a proxy.
func (p *Provider) Failures(proxy string) int {
	return p.failures[proxy]
}

func (p *Provider) userAgent() string {
	if p.pinnedUA != "" {
		return p.pinnedUA
	}
	return defaultUserAgents[p.rand.Intn(len(defaultUserAgents))]
}

func (p *Provider) nextProxy() string {
	if len(p.proxies) == 0 {
		return ""
	}

	for tries := 0; tries < 2*len(p.proxies); tries++ {
		p.index = (p.index + 1) % len(p.proxies)
		candidate := p.proxies[p.index]
		if p.failures[candidate] < maxProxyFailures {
			return candidate
		}
	}

	// Every proxy is exhausted. Clear the slate and keep going.
	p.logger.Warn("all proxies have repeated failures, resetting counters")
	clear(p.failures)
	p.index = (p.index + 1) % len(p.proxies)
	return p.proxies[p.index]
}
