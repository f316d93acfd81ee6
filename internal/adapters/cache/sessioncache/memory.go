package sessioncache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/linepulse/internal/domain/model"
	"github.com/okian/linepulse/pkg/metrics"
)

const (
	memoryLabel       = "session_memory"
	defaultMaxEntries = 1024
)

type memEntry struct {
	sessions []model.Session
	expires  time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithMemoryTTL sets the entry lifetime.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithMaxEntries bounds the number of keys; least recently used keys go first.
func WithMaxEntries(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.maxEntries = n
		}
	}
}

// WithMemoryClock replaces time.Now, for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// Memory is an in-process Store. Expired entries are evicted lazily when read;
// Sweep is available but never called implicitly.
type Memory struct {
	// mu orders writes against expiry eviction so a read that saw a stale
	// entry never removes a fresher one stored meanwhile.
	mu         sync.Mutex
	entries    *lru.Cache[string, memEntry]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewMemory creates a Memory store.
func NewMemory(opts ...MemoryOption) (*Memory, error) {
	m := &Memory{
		ttl:        DefaultTTL,
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	entries, err := lru.New[string, memEntry](m.maxEntries)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	m.entries = entries
	return m, nil
}

// Get returns a copy of the cached sessions.
func (m *Memory) Get(_ context.Context, key string) ([]model.Session, bool) {
	e, ok := m.entries.Get(key)
	if !ok {
		metrics.RecordCacheMiss(memoryLabel)
		return nil, false
	}
	if !m.now().Before(e.expires) {
		m.evictExpired(key)
		metrics.RecordCacheMiss(memoryLabel)
		metrics.UpdateSessionCacheItems(m.entries.Len())
		return nil, false
	}
	metrics.RecordCacheHit(memoryLabel)
	return cloneSessions(e.sessions), true
}

// Set stores a copy of sessions.
func (m *Memory) Set(_ context.Context, key string, sessions []model.Session) error {
	e := memEntry{sessions: cloneSessions(sessions), expires: m.now().Add(m.ttl)}
	m.mu.Lock()
	m.entries.Add(key, e)
	m.mu.Unlock()
	metrics.RecordCacheWrite(memoryLabel)
	metrics.UpdateSessionCacheItems(m.entries.Len())
	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.now()
	removed := 0
	m.mu.Lock()
	for _, k := range m.entries.Keys() {
		if e, ok := m.entries.Peek(k); ok && !now.Before(e.expires) {
			m.entries.Remove(k)
			removed++
		}
	}
	m.mu.Unlock()
	metrics.UpdateSessionCacheItems(m.entries.Len())
	return removed
}

// evictExpired removes key only while the stored entry is still expired.
func (m *Memory) evictExpired(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries.Peek(key); ok && !m.now().Before(cur.expires) {
		m.entries.Remove(key)
	}
}

// Len reports stored keys, including expired ones not yet evicted.
func (m *Memory) Len() int { return m.entries.Len() }

// Purge drops every entry.
func (m *Memory) Purge() {
	m.entries.Purge()
	metrics.UpdateSessionCacheItems(0)
}

func cloneSessions(s []model.Session) []model.Session {
	if s == nil {
		return []model.Session{}
	}
	return slices.Clone(s)
}
