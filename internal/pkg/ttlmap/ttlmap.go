package ttlmap

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Map is a mutex-guarded string-keyed map whose entries expire after a TTL.
// Expired entries are removed lazily on read; Sweep removes them eagerly.
type Map[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
}

func New[V any]() *Map[V] {
	return &Map[V]{entries: make(map[string]entry[V])}
}

// Set stores value under key, expiring ttl from now. A second Set for the
// same key refreshes the expiration.
func (m *Map[V]) Set(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Get returns the live value for key. An entry whose expiration has passed
// is deleted on the spot and reported as absent, so a reader never observes
// a stale record even if no sweep ever runs.
func (m *Map[V]) Get(key string) (V, bool) {
	m.mu.RLock()
	ent, ok := m.entries[key]
	m.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if !time.Now().Before(ent.expiresAt) {
		m.mu.Lock()
		// Re-check: the entry may have been refreshed between unlock and lock.
		if cur, still := m.entries[key]; still && !time.Now().Before(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return zero, false
	}
	return ent.value, true
}

func (m *Map[V]) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Sweep removes every expired entry and returns how many were removed.
func (m *Map[V]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	removed := 0
	for key, ent := range m.entries {
		if !now.Before(ent.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *Map[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
