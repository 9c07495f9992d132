// Package cache memoizes calculator results. Results are pure functions of
// their input, so an entry only ever saves recomputation and expires after
// its TTL.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache stores rendered results by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Key derives a cache key from a calculator kind and its canonical request
// payload.
func Key(kind string, payload []byte) string {
	h := xxhash.New()
	_, _ = h.WriteString(kind)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(payload)
	return kind + ":" + strconv.FormatUint(h.Sum64(), 16)
}

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

const (
	// DefaultMaxEntries bounds a cache built by NewMemoryCache.
	DefaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

// MemoryCache is an in-process Cache. Expired entries are swept on Set at
// most once per minute; when the cache is full the entry closest to expiry
// is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	nextSweep  time.Time
	now        func() time.Time
}

// NewMemoryCache creates an empty in-process cache holding up to
// DefaultMaxEntries results.
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheSize(DefaultMaxEntries)
}

// NewMemoryCacheSize creates an empty in-process cache holding up to
// maxEntries results. A non-positive size uses DefaultMaxEntries.
func NewMemoryCacheSize(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryCache{entries: make(map[string]entry), maxEntries: maxEntries, now: time.Now}
}

// Get returns the value stored under key unless it has expired.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key. A non-positive ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
	}
	if _, ok := m.entries[key]; !ok && len(m.entries) >= m.maxEntries {
		m.sweep(now)
		if len(m.entries) >= m.maxEntries {
			m.evict()
		}
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryCache) sweep(now time.Time) {
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
	m.nextSweep = now.Add(sweepInterval)
}

// evict removes the entry closest to expiry, preferring entries with a TTL.
func (m *MemoryCache) evict() {
	var victim string
	var soonest time.Time
	found := false
	for key, e := range m.entries {
		switch {
		case !found:
		case e.expiresAt.IsZero():
			continue
		case !soonest.IsZero() && !e.expiresAt.Before(soonest):
			continue
		}
		victim, soonest, found = key, e.expiresAt, true
	}
	if found {
		delete(m.entries, victim)
	}
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Nop is a Cache that stores nothing.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) (string, bool) { return "", false }

// Set discards the value.
func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }
