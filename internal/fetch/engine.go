package fetch

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/scentdb/scentcrawl/internal/identity"
)

// maxAttempts bounds retries per URL. Three attempts is enough to
// ride out a flaky proxy or a transient 503 without hammering a site
// that is actively refusing us.
const maxAttempts = 3

// Status is the terminal result of Engine.Fetch for one URL.
type Status int

const (
	// StatusFetched means the page was retrieved successfully.
	StatusFetched Status = iota

	// StatusSkipped means a non-retryable status or content type.
	// Not an error; the URL is simply not worth anything.
	StatusSkipped

	// StatusGaveUp means every attempt failed with a retryable
	// outcome. Links from this URL are not followed.
	StatusGaveUp
)

// Result is what one URL's fetch resolved to.
type Result struct {
	Status Status

	// Body and FinalURL are set only when Status is StatusFetched.
	Body     []byte
	FinalURL string

	// LastOutcome is the outcome of the final attempt, for logging.
	LastOutcome Outcome

	// Attempts is how many requests were issued.
	Attempts int

	// Rotations is how many identity rotations the retries forced.
	Rotations int
}

// Engine drives the retry/backoff state machine over a Transport. It
// owns the active identity and reports proxy health to the Provider:
// failures on transport errors and rate-limit signals, recovery decay
// on success.
//
// Engine is owned by the single crawl worker; it is not safe for
// concurrent use.
type Engine struct {
	transport Transport
	ids       *identity.Provider

	// baseDelay anchors server-error backoff, mirroring the crawl's
	// politeness delay.
	baseDelay time.Duration

	current identity.Identity

	sleep  func(ctx context.Context, d time.Duration) error
	rand   *rand.Rand
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithBaseDelay sets the backoff base for server errors.
func WithBaseDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.baseDelay = d
	}
}

// WithSleep replaces the sleep function. Tests use this to observe
// backoff durations without waiting them out.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) EngineOption {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// WithEngineRand sets the random source for backoff jitter.
func WithEngineRand(r *rand.Rand) EngineOption {
	return func(e *Engine) {
		e.rand = r
	}
}

// WithEngineLogger sets the logger for retry and rotation events.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine and draws its first identity from the
// provider.
func NewEngine(transport Transport, ids *identity.Provider, opts ...EngineOption) *Engine {
	e := &Engine{
		transport: transport,
		ids:       ids,
		baseDelay: 5 * time.Second,
		sleep:     sleepContext,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rand == nil {
		e.rand = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // jitter only
	}
	e.current = ids.Next()
	return e
}

// Identity returns the active identity.
func (e *Engine) Identity() identity.Identity {
	return e.current
}

// Rotate replaces the active identity with a fresh one. Called by the
// engine itself on failure signals and by the politeness scheduler on
// volume and cooldown boundaries.
func (e *Engine) Rotate() identity.Identity {
	e.current = e.ids.Next()
	e.logger.Debug("rotated identity",
		"proxy", e.current.Proxy,
		"user_agent", e.current.UserAgent,
	)
	return e.current
}

// Fetch retrieves one URL, retrying per the backoff policy. The
// returned error is non-nil only for context cancellation; every
// site-side failure mode is expressed through Result.Status.
func (e *Engine) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	result := &Result{}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := e.transport.Fetch(ctx, rawURL, e.current)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result.Attempts++
		outcome := Classify(resp, err)
		result.LastOutcome = outcome

		switch outcome.Kind {
		case KindSuccess:
			e.ids.RecordSuccess(e.current.Proxy)
			result.Status = StatusFetched
			result.Body = resp.Body
			result.FinalURL = resp.FinalURL
			return result, nil

		case KindSkip:
			e.logger.Debug("skipping URL",
				"url", rawURL,
				"status", outcome.StatusCode,
			)
			result.Status = StatusSkipped
			return result, nil

		case KindTransportError:
			e.ids.RecordFailure(e.current.Proxy)
			if attempt == maxAttempts {
				break
			}
			e.logger.Warn("transport error, rotating identity",
				"url", rawURL,
				"attempt", attempt,
				"error", outcome.Err,
			)
			e.Rotate()
			result.Rotations++
			if err := e.sleep(ctx, time.Duration(2*attempt)*time.Second); err != nil {
				return nil, err
			}

		case KindRateLimited:
			e.ids.RecordFailure(e.current.Proxy)
			if attempt == maxAttempts {
				break
			}
			if e.ids.HasProxies() {
				e.logger.Warn("rate limited, rotating identity",
					"url", rawURL,
					"status", outcome.StatusCode,
					"attempt", attempt,
				)
				e.Rotate()
				result.Rotations++
				if err := e.sleep(ctx, scaleBackoff(5*time.Second, attempt)); err != nil {
					return nil, err
				}
			} else {
				e.logger.Warn("rate limited, backing off",
					"url", rawURL,
					"status", outcome.StatusCode,
					"attempt", attempt,
				)
				if err := e.sleep(ctx, scaleBackoff(30*time.Second, attempt)); err != nil {
					return nil, err
				}
			}

		case KindServerError:
			if attempt == maxAttempts {
				break
			}
			e.logger.Warn("server error, backing off",
				"url", rawURL,
				"status", outcome.StatusCode,
				"attempt", attempt,
			)
			if err := e.sleep(ctx, e.serverErrorDelay(outcome, attempt)); err != nil {
				return nil, err
			}
		}

		if attempt == maxAttempts {
			e.logger.Warn("giving up on URL",
				"url", rawURL,
				"outcome", outcome.Kind.String(),
			)
			result.Status = StatusGaveUp
			return result, nil
		}
	}

	result.Status = StatusGaveUp
	return result, nil
}

// serverErrorDelay honors a numeric Retry-After header (floored at
// the base delay); otherwise exponential backoff on the base delay
// with up to 1.5s of jitter.
func (e *Engine) serverErrorDelay(outcome Outcome, attempt int) time.Duration {
	if outcome.RetryAfter != "" {
		if seconds, err := strconv.ParseFloat(outcome.RetryAfter, 64); err == nil {
			d := time.Duration(seconds * float64(time.Second))
			if d < e.baseDelay {
				d = e.baseDelay
			}
			return d
		}
	}
	jitter := time.Duration(e.rand.Float64() * 1.5 * float64(time.Second))
	return scaleBackoff(e.baseDelay, attempt) + jitter
}

// scaleBackoff returns base * 2^(attempt-1).
func scaleBackoff(base time.Duration, attempt int) time.Duration {
	return time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
