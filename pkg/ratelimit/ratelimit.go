package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/openlearnco/classgate/pkg/observability"
)

// Config defines login throttling configuration
type Config struct {
	// MaxAttempts is the number of attempts allowed per window
	MaxAttempts int
	// Window is the fixed window length
	Window time.Duration
}

// DefaultConfig returns the default login throttle settings
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
	}
}

// Result reports the outcome of a rate limit check
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter throttles attempts per string identifier. Implementations never
// fail a check outright: an identifier they cannot account for is treated
// as a first attempt.
type Limiter interface {
	// Check records one attempt against the identifier and reports
	// whether it is allowed
	Check(ctx context.Context, identifier string) Result
	// Reset forgets all attempts for the identifier
	Reset(ctx context.Context, identifier string)
}

type entry struct {
	count   int
	resetAt time.Time
}

// AttemptLimiter is a fixed-window in-memory limiter. Suitable for
// single-instance deployments; use RedisLimiter to share counters across
// instances.
type AttemptLimiter struct {
	config  *Config
	logger  *observability.Logger
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]*entry
}

// NewAttemptLimiter creates a new in-memory limiter
func NewAttemptLimiter(config *Config, logger *observability.Logger) *AttemptLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &AttemptLimiter{
		config:  config,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Check records one attempt. The read-modify-write of the counter happens
// under the map lock so two concurrent attempts cannot both observe the
// last free slot.
func (l *AttemptLimiter) Check(_ context.Context, identifier string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[identifier]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.config.Window)}
		l.entries[identifier] = e
		return Result{
			Allowed:   true,
			Remaining: l.config.MaxAttempts - 1,
			ResetAt:   e.resetAt,
		}
	}

	e.count++

	// First crossing of the limit is operator-relevant
	if e.count == l.config.MaxAttempts+1 && l.logger != nil {
		l.logger.WithField("identifier", identifier).
			WithField("attempts", e.count).
			Warn("rate limit exceeded")
	}

	remaining := l.config.MaxAttempts - e.count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   e.count <= l.config.MaxAttempts,
		Remaining: remaining,
		ResetAt:   e.resetAt,
	}
}

// Reset deletes the identifier's entry outright. Called after a confirmed
// successful login so prior typos do not penalize the user.
func (l *AttemptLimiter) Reset(_ context.Context, identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, identifier)
}

// Sweep deletes entries whose window has passed and returns how many were
// removed. Correctness does not depend on sweeping; Check treats expired
// entries as fresh. The sweep only bounds memory.
func (l *AttemptLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries
func (l *AttemptLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
