package memory

import (
	"sync"

	"github.com/rs/zerolog"
)

// anonymousUser keys interactions from callers that did not supply a user ID.
const anonymousUser = "anonymous"

// Registry hands out one Manager per user ID. Managers are created lazily
// and live for the process lifetime.
type Registry struct {
	mu         sync.Mutex
	managers   map[string]*Manager
	maxHistory int
	log        zerolog.Logger
}

// NewRegistry creates a registry whose managers each retain maxHistory
// interactions.
func NewRegistry(maxHistory int, log zerolog.Logger) *Registry {
	return &Registry{
		managers:   make(map[string]*Manager),
		maxHistory: maxHistory,
		log:        log,
	}
}

// For returns the Manager for userID, creating it on first use. An empty
// userID maps to a shared anonymous conversation.
func (r *Registry) For(userID string) *Manager {
	if userID == "" {
		userID = anonymousUser
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[userID]
	if !ok {
		m = NewManager(r.maxHistory, r.log)
		r.managers[userID] = m
	}
	return m
}

// ClearAll wipes every conversation.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.managers {
		m.Clear()
	}
}

// Size returns the number of tracked conversations.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}
