// Package cooldown keeps per-key expiry timestamps with lazy eviction.
//
// Keys are composed from an action identifier, a scope and an actor ID:
//
//	st := cooldown.NewStore()
//	key := st.Key("ping", cooldown.ScopeUser, userID)
//	if left, ok := st.Remaining(key); ok {
//	    // still cooling down for left
//	}
//	st.Set(key, 3*time.Second)
//
// Expired entries are dropped opportunistically on every Key, Remaining and
// Set call; there is no background sweeper. Each operation is atomic, but a
// Remaining followed by a Set is not: callers racing on the same key may both
// observe "not on cooldown".
package cooldown

import (
	"fmt"
	"sync"
	"time"
)

// Scope is the dimension a cooldown is partitioned over.
type Scope string

// ScopeUser partitions cooldowns per acting user.
const ScopeUser Scope = "user"

// Store is a keyed table of absolute expiry instants.
type Store struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the store's clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key composes the lookup key for an action, scope and actor.
func (s *Store) Key(action string, scope Scope, actorID string) string {
	s.CleanupExpired()
	return fmt.Sprintf("%s-%s-%s", action, scope, actorID)
}

// Remaining reports how long key stays on cooldown. ok is false when the key
// is absent or already expired.
func (s *Store) Remaining(key string) (left time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expiry, exists := s.entries[key]
	s.cleanupLocked(now)
	if !exists || !expiry.After(now) {
		return 0, false
	}
	return expiry.Sub(now), true
}

// Set puts key on cooldown for d from now, overwriting any existing entry.
func (s *Store) Set(key string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = now.Add(d)
	s.cleanupLocked(now)
}

// Clear removes key unconditionally.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// CleanupExpired drops every entry whose expiry is not after now and returns
// how many were removed.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked(s.now())
}

// Len returns the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) cleanupLocked(now time.Time) int {
	removed := 0
	for key, expiry := range s.entries {
		if !expiry.After(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
