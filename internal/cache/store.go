// Package cache provides best-effort caching for external data and rendered
// responses. Values are stored as msgpack blobs under namespaced, hashed keys.
// A Redis backend is used when reachable; otherwise a process-local map takes
// over for the lifetime of the process. Cache failures never propagate to
// callers: a failed read is a miss, a failed write is a no-op.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Backend is a key-value store with per-entry TTL.
type Backend interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key, expiring after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Clear removes all entries whose key starts with prefix+":", or every
	// entry when prefix is empty.
	Clear(ctx context.Context, prefix string) error
	// Name identifies the backend for logging and status reporting.
	Name() string
}

// DeriveKey builds a deterministic cache key from a namespace and a payload.
// String payloads are hashed as-is. Structured payloads are canonicalized
// (object keys sorted at every level) before hashing, so two structurally
// equal values produce the same key regardless of field order.
func DeriveKey(namespace string, payload any) string {
	var data []byte
	switch p := payload.(type) {
	case string:
		data = []byte(p)
	case []byte:
		data = p
	default:
		canonical, err := canonicalJSON(payload)
		if err != nil {
			// Fall back to the fmt rendering. Not canonical, but key
			// derivation must not fail.
			canonical = []byte(fmt.Sprintf("%+v", payload))
		}
		data = canonical
	}

	sum := md5.Sum(data)
	return namespace + ":" + hex.EncodeToString(sum[:])
}

// canonicalJSON marshals v with all object keys sorted. Go's encoding/json
// sorts map keys but preserves struct field order, so the value is routed
// through a generic decode first.
func canonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	return json.Marshal(generic)
}

// Store is the application-facing cache. It owns backend selection and hides
// every backend failure from callers.
type Store struct {
	backend Backend
	log     zerolog.Logger
}

// Options configures backend selection for New.
type Options struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// ConnectTimeout bounds the startup ping. Zero means 5 seconds.
	ConnectTimeout time.Duration
}

// New creates a Store. It attempts to connect to Redis with a short timeout;
// on any failure it falls back to the in-memory backend permanently. The
// caller never has to care which backend is active.
func New(opts Options, log zerolog.Logger) *Store {
	log = log.With().Str("component", "cache").Logger()

	timeout := opts.ConnectTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	backend, err := newRedisBackend(opts, timeout)
	if err != nil {
		log.Warn().Err(err).Msg("Redis not available, using in-memory cache")
		return &Store{backend: NewMemoryBackend(), log: log}
	}

	log.Info().Str("addr", opts.RedisAddr).Msg("Connected to Redis cache")
	return &Store{backend: backend, log: log}
}

// NewWithBackend creates a Store over an explicit backend. Used by tests and
// by callers that already decided on a backend.
func NewWithBackend(backend Backend, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log.With().Str("component", "cache").Logger(),
	}
}

// BackendName reports which backend is serving this store.
func (s *Store) BackendName() string {
	return s.backend.Name()
}

// Get decodes the cached value for key into out. Returns false on miss,
// expiry, decode failure, or any backend error.
func (s *Store) Get(ctx context.Context, key string, out any) bool {
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Cache get error")
		return false
	}
	if !ok {
		return false
	}

	if err := msgpack.Unmarshal(data, out); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Cache decode error")
		return false
	}

	return true
}

// Set stores value under key with the given TTL. Best-effort: encoding or
// backend errors are logged and swallowed.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Cache encode error")
		return
	}

	if err := s.backend.Set(ctx, key, data, ttl); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Cache set error")
	}
}

// Clear removes entries under prefix, or everything when prefix is empty.
func (s *Store) Clear(ctx context.Context, prefix string) {
	if err := s.backend.Clear(ctx, prefix); err != nil {
		s.log.Error().Err(err).Str("prefix", prefix).Msg("Cache clear error")
	}
}

// Sweep removes expired entries from the in-memory backend, if that is the
// active backend. Redis expires keys natively, so this is a no-op there.
// Returns the number of entries removed.
func (s *Store) Sweep() int {
	mem, ok := s.backend.(*MemoryBackend)
	if !ok {
		return 0
	}

	removed := mem.SweepExpired()
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Msg("Swept expired cache entries")
	}
	return removed
}
