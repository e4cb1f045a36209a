package docauth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default throttle shape: a burst of 5 attempts, refilling one attempt
// every 30 seconds.
const (
	DefaultLoginBurst    = 5
	DefaultLoginInterval = 30 * time.Second
)

// LoginThrottle rate limits login attempts per account identifier so a
// single target cannot be brute forced, without affecting other users.
// Keys are normalized emails; unknown emails are throttled too, keyed
// by whatever the caller presented.
type LoginThrottle struct {
	mu       sync.Mutex
	limiters map[string]*throttleEntry

	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ThrottleOption customizes LoginThrottle construction.
type ThrottleOption func(*LoginThrottle)

// WithThrottleRate overrides the refill interval and burst.
func WithThrottleRate(interval time.Duration, burst int) ThrottleOption {
	return func(t *LoginThrottle) {
		if interval > 0 {
			t.limit = rate.Every(interval)
		}
		if burst > 0 {
			t.burst = burst
		}
	}
}

// WithThrottleClock injects a custom clock (useful for tests).
func WithThrottleClock(clock func() time.Time) ThrottleOption {
	return func(t *LoginThrottle) {
		if clock != nil {
			t.now = clock
		}
	}
}

// NewLoginThrottle creates a throttle with the default shape.
func NewLoginThrottle(opts ...ThrottleOption) *LoginThrottle {
	t := &LoginThrottle{
		limiters: make(map[string]*throttleEntry),
		limit:    rate.Every(DefaultLoginInterval),
		burst:    DefaultLoginBurst,
		ttl:      1 * time.Hour,
		now:      time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}

	return t
}

// Allow consumes one attempt for the key. It returns false once the
// key's burst is exhausted, until the limiter refills.
func (t *LoginThrottle) Allow(key string) bool {
	key = NormalizeEmail(key)

	t.mu.Lock()
	entry, ok := t.limiters[key]
	if !ok {
		entry = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[key] = entry
	}
	entry.lastSeen = t.now()
	t.mu.Unlock()

	return entry.limiter.Allow()
}

// Reset clears the key's limiter, typically after a successful login.
func (t *LoginThrottle) Reset(key string) {
	key = NormalizeEmail(key)

	t.mu.Lock()
	delete(t.limiters, key)
	t.mu.Unlock()
}

// Prune drops limiters idle longer than the retention window. Call it
// periodically from whatever scheduler the host application runs.
func (t *LoginThrottle) Prune() int {
	cutoff := t.now().Add(-t.ttl)

	t.mu.Lock()
	defer t.mu.Unlock()

	pruned := 0
	for key, entry := range t.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(t.limiters, key)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of tracked keys.
func (t *LoginThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}
