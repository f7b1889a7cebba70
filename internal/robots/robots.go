package robots

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/temoto/robotstxt"

	"github.com/scentdb/scentcrawl/internal/fetch"
	"github.com/scentdb/scentcrawl/internal/identity"
)

// Agent evaluates robots.txt rules for a single host. Load it once at
// the start of a crawl; Allowed is then a pure in-memory check.
type Agent struct {
	transport fetch.Transport
	ignore    bool
	logger    *slog.Logger

	group *robotstxt.Group
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithIgnorePolicy makes the agent permit everything. Load still
// attempts the fetch so the operator sees the warning, but failures
// and disallow rules no longer block the crawl.
func WithIgnorePolicy(ignore bool) AgentOption {
	return func(a *Agent) {
		a.ignore = ignore
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

// NewAgent creates an Agent that fetches robots.txt through the given
// transport.
func NewAgent(transport fetch.Transport, opts ...AgentOption) *Agent {
	a := &Agent{
		transport: transport,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load fetches and parses the robots.txt for the host, using the
// given identity for the request. A 404 means the site publishes no
// policy and everything is allowed. Any other failure is an error
// unless the agent was told to ignore the policy.
func (a *Agent) Load(ctx context.Context, host string, id identity.Identity) error {
	robotsURL := "https://" + host + "/robots.txt"

	resp, err := a.transport.Fetch(ctx, robotsURL, id)
	if err != nil {
		if a.ignore {
			a.logger.Warn("robots.txt fetch failed, policy ignored", "err", err)
			return nil
		}
		return fmt.Errorf("failed to fetch robots.txt: %w", err)
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		if a.ignore {
			a.logger.Warn("robots.txt unusable, policy ignored", "status", resp.StatusCode, "err", err)
			return nil
		}
		return fmt.Errorf("failed to parse robots.txt (status %d): %w", resp.StatusCode, err)
	}

	a.group = data.FindGroup(id.UserAgent)
	return nil
}

// Allowed reports whether the URL's path may be fetched. URLs that do
// not parse are rejected; with no loaded policy everything passes.
func (a *Agent) Allowed(rawURL string) bool {
	if a.ignore || a.group == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return a.group.Test(path)
}
