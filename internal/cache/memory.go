package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryBackend is a process-local cache backend. Expired entries are
// dropped lazily on read and by the periodic sweep. Safe for concurrent use.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// now is replaceable so tests can simulate the passage of time.
	now func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Name implements Backend.
func (m *MemoryBackend) Name() string { return "memory" }

// Get implements Backend. Reading an expired entry removes it.
func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the entry.
		if current, still := m.entries[key]; still && !m.now().Before(current.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set implements Backend.
func (m *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{
		value:     value,
		expiresAt: m.now().Add(ttl),
	}
	m.mu.Unlock()
	return nil
}

// Clear implements Backend.
func (m *MemoryBackend) Clear(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prefix == "" {
		m.entries = make(map[string]memoryEntry)
		return nil
	}

	full := prefix + ":"
	for key := range m.entries {
		if strings.HasPrefix(key, full) {
			delete(m.entries, key)
		}
	}
	return nil
}

// SweepExpired removes all expired entries and returns how many were removed.
func (m *MemoryBackend) SweepExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := m.now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, including any not yet swept.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
