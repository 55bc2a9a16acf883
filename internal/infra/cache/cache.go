// Package cache provides the in-process, time-boxed result cache shared by
// every search path. Entries are cloned through JSON on write and read so
// cached payloads can never be mutated by callers; writes always overwrite
// and reads eagerly purge expired entries.
package cache

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// KeyPrefix namespaces every cache key so the whole cache can be
// enumerated and cleared in bulk.
const KeyPrefix = "parishfinder-"

// Clock returns the current time. Injected so tests control expiry.
type Clock func() time.Time

type entry struct {
	payload   []byte
	timestamp time.Time
	ttl       time.Duration
}

// Store is a TTL key-value cache. Safe for concurrent use; writes are
// last-write-wins, which is fine because payloads are immutable and key
// collisions just overwrite with an equally valid result.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     Clock
}

// New creates a Store using the real clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates a Store with an injected clock for tests.
func NewWithClock(now Clock) *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Set stores value under key with the given TTL, overwriting any previous
// entry. Serialization failures degrade to a no-op: the surrounding search
// must never fail because the cache could not store its result.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{payload: payload, timestamp: s.now(), ttl: ttl}
}

// Get loads the entry under key into dst. Returns false on a miss; an
// expired entry is treated as a miss and removed.
func (s *Store) Get(key string, dst any) bool {
	s.mu.Lock()
	ent, ok := s.entries[key]
	if ok && s.expired(ent) {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	if err := json.Unmarshal(ent.payload, dst); err != nil {
		return false
	}

	return true
}

// PurgeExpired removes every expired entry in one pass.
func (s *Store) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, ent := range s.entries {
		if s.expired(ent) {
			delete(s.entries, key)
		}
	}
}

// Clear removes all entries under the namespace prefix.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		if strings.HasPrefix(key, KeyPrefix) {
			delete(s.entries, key)
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// expired implements the validity invariant: valid iff now-timestamp <= ttl.
func (s *Store) expired(ent entry) bool {
	return s.now().Sub(ent.timestamp) > ent.ttl
}

// GeocodeKey derives the cache key for a free-text geocoding query:
// lowercase-trimmed so trivially different spellings share an entry.
func GeocodeKey(query string) string {
	return KeyPrefix + "geocode:" + strings.ToLower(strings.TrimSpace(query))
}

// ParishKey derives the cache key for a parish search, rounding the
// coordinate to 3 decimal places (~110 m) so near-identical repeat
// searches hit the same entry.
func ParishKey(lat, lng float64) string {
	return fmt.Sprintf("%sparishes:%g:%g", KeyPrefix, round3(lat), round3(lng))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
