package pace

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Scheduler enforces the crawl's politeness cadences. It is owned by
// the top-level orchestrator and shared across scoped sub-runs so the
// cooldown cadence never resets between brands. Not safe for
// concurrent use.
type Scheduler struct {
	// baseDelay is the lower bound of the per-request delay. The
	// actual delay is uniform in [baseDelay, baseDelay+2s].
	baseDelay time.Duration

	// rotateEvery triggers identity rotation after that many
	// attempted requests, counting failures as well as successes.
	// 0 disables volume-based rotation.
	rotateEvery int

	// sessionSize triggers a cooldown after that many successful
	// persisted saves. 0 disables cooldowns.
	sessionSize int

	// sessionBreak is the cooldown duration, jittered by +/-15%.
	sessionBreak time.Duration

	attempts        int
	savedSinceBreak int
	firstRequest    bool

	sleep  func(ctx context.Context, d time.Duration) error
	rand   *rand.Rand
	logger *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithRotateEvery sets the attempted-request rotation threshold.
func WithRotateEvery(n int) SchedulerOption {
	return func(s *Scheduler) {
		s.rotateEvery = n
	}
}

// WithSession sets the cooldown trigger and duration.
func WithSession(size int, pause time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.sessionSize = size
		s.sessionBreak = pause
	}
}

// WithSleep replaces the sleep function for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) SchedulerOption {
	return func(s *Scheduler) {
		s.sleep = sleep
	}
}

// WithRand sets the random source for delay jitter.
func WithRand(r *rand.Rand) SchedulerOption {
	return func(s *Scheduler) {
		s.rand = r
	}
}

// WithLogger sets the logger for pause events.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// NewScheduler creates a Scheduler with the given base delay.
func NewScheduler(baseDelay time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		baseDelay:    baseDelay,
		firstRequest: true,
		sleep:        sleepContext,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // jitter only
	}
	return s
}

// BeforeRequest blocks for the politeness delay. The first request of
// the process goes out immediately; every later one waits a uniform
// random duration in [baseDelay, baseDelay+2s].
func (s *Scheduler) BeforeRequest(ctx context.Context) error {
	if s.firstRequest {
		s.firstRequest = false
		return nil
	}
	jitter := time.Duration(s.rand.Float64() * 2 * float64(time.Second))
	return s.sleep(ctx, s.baseDelay+jitter)
}

// RecordAttempts counts attempted requests (successes and failures
// both) and reports whether the volume threshold was crossed, in
// which case the caller must rotate identity. The counter resets when
// the threshold fires.
func (s *Scheduler) RecordAttempts(n int) (rotate bool) {
	if s.rotateEvery <= 0 {
		return false
	}
	s.attempts += n
	if s.attempts < s.rotateEvery {
		return false
	}
	s.logger.Info("identity rotation due", "attempts", s.attempts)
	s.attempts = 0
	return true
}

// RecordSave counts one successful persisted save and reports whether
// a cooldown is due. The caller decides whether work remains before
// actually pausing.
func (s *Scheduler) RecordSave() (cooldownDue bool) {
	if s.sessionSize <= 0 {
		return false
	}
	s.savedSinceBreak++
	if s.savedSinceBreak < s.sessionSize {
		return false
	}
	return true
}

// SavedSinceBreak returns the current save count, carried across
// sub-runs.
func (s *Scheduler) SavedSinceBreak() int {
	return s.savedSinceBreak
}

// Cooldown takes the long session break with +/-15% jitter and resets
// the save counter. The caller must rotate identity afterwards so the
// next session starts fresh.
func (s *Scheduler) Cooldown(ctx context.Context) error {
	s.savedSinceBreak = 0
	if s.sessionBreak <= 0 {
		return nil
	}

	jitter := 0.15 * float64(s.sessionBreak)
	low := float64(s.sessionBreak) - jitter
	if low < 0 {
		low = 0
	}
	span := float64(s.sessionBreak) + jitter - low
	d := time.Duration(low + s.rand.Float64()*span)

	s.logger.Info("session cooldown", "duration", d.Round(time.Second))
	return s.sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
