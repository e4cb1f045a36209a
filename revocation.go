package docauth

import (
	"sync"
	"time"
)

// DefaultEvictionInterval is how often the revocation list sweeps out
// entries whose natural expiry has passed.
const DefaultEvictionInterval = 5 * time.Minute

// RevocationList is the process-wide set of tokens invalidated before
// their natural expiry. It is an explicitly owned object injected into
// the TokenService at construction time, never an ambient global, so
// tests get clean isolation and the set can later be swapped for a
// shared external cache without touching call sites.
//
// Membership checks run concurrently with insertions; eviction runs on
// a background timer and never races an insertion for the same key.
type RevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time

	interval time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// RevocationOption customizes RevocationList construction.
type RevocationOption func(*RevocationList)

// WithEvictionInterval overrides the background sweep interval.
func WithEvictionInterval(interval time.Duration) RevocationOption {
	return func(b *RevocationList) {
		if interval > 0 {
			b.interval = interval
		}
	}
}

// WithRevocationClock injects a custom clock (useful for tests).
func WithRevocationClock(clock func() time.Time) RevocationOption {
	return func(b *RevocationList) {
		if clock != nil {
			b.now = clock
		}
	}
}

// NewRevocationList returns an empty revocation list. Call Start to run
// the background eviction loop, and Stop on shutdown.
func NewRevocationList(opts ...RevocationOption) *RevocationList {
	b := &RevocationList{
		entries:  make(map[string]time.Time),
		interval: DefaultEvictionInterval,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// Revoke inserts the token, keyed until expiresAt. Insertion is
// idempotent: revoking twice keeps the earliest recorded expiry and has
// no additional effect. The revocation is visible to concurrent
// membership checks before Revoke returns.
func (b *RevocationList) Revoke(token string, expiresAt time.Time) {
	if token == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.entries[token]; exists {
		return
	}
	b.entries[token] = expiresAt
}

// IsRevoked reports membership. A token stays revoked for as long as it
// remains in the set, regardless of remaining natural lifetime.
func (b *RevocationList) IsRevoked(token string) bool {
	if token == "" {
		return false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	_, exists := b.entries[token]
	return exists
}

// Len returns the current number of revoked entries.
func (b *RevocationList) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Start launches the background eviction loop. Safe to skip in tests;
// EvictExpired can be driven manually instead.
func (b *RevocationList) Start() {
	go func() {
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				b.EvictExpired()
			case <-b.done:
				return
			}
		}
	}()
}

// Stop terminates the background eviction loop. Idempotent.
func (b *RevocationList) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
	})
}

// EvictExpired removes entries whose natural expiry has passed. An
// expired token fails verification on its own, so dropping it from the
// set does not resurrect it.
func (b *RevocationList) EvictExpired() {
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	for token, expiresAt := range b.entries {
		if !expiresAt.IsZero() && expiresAt.Before(now) {
			delete(b.entries, token)
		}
	}
}
