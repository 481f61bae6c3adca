// Package memory provides a bounded, in-process conversation log with a naive
// keyword-overlap relevance lookup. One Manager serves one conversation; there
// is no persistence and no cross-instance sharing.
package memory

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxHistory is the number of interactions retained per conversation.
const DefaultMaxHistory = 10

// relevance lookup parameters: inspect the most recent window, require at
// least two overlapping words, include at most the last few matches.
const (
	relevanceWindow   = 5
	relevanceMinWords = 2
	relevanceMaxItems = 3
)

// Interaction is one user/assistant exchange.
type Interaction struct {
	ID        string
	Timestamp time.Time
	UserInput string
	Response  string
	Metadata  map[string]string
}

// Manager holds recent interactions, evicting oldest-first beyond maxHistory.
// Safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	history    []Interaction
	maxHistory int
	log        zerolog.Logger
}

// NewManager creates a conversation memory. maxHistory <= 0 selects the
// default cap.
func NewManager(maxHistory int, log zerolog.Logger) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		maxHistory: maxHistory,
		log:        log.With().Str("component", "memory").Logger(),
	}
}

// Add records an interaction, evicting the oldest entries beyond the cap.
func (m *Manager) Add(userInput, response string, metadata map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, Interaction{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		UserInput: userInput,
		Response:  response,
		Metadata:  metadata,
	})

	if len(m.history) > m.maxHistory {
		m.history = m.history[len(m.history)-m.maxHistory:]
	}
}

// History returns the most recent interactions formatted as alternating
// "User:"/"Assistant:" lines. limit <= 0 returns up to the full cap.
func (m *Manager) History(limit int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > m.maxHistory {
		limit = m.maxHistory
	}

	start := len(m.history) - limit
	if start < 0 {
		start = 0
	}

	var lines []string
	for _, item := range m.history[start:] {
		lines = append(lines, "User: "+item.UserInput)
		lines = append(lines, "Assistant: "+item.Response)
	}
	return lines
}

// Len returns the number of retained interactions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Context returns previous interactions relevant to the query, judged by
// word overlap between the query and each recent interaction's text. With no
// relevant history it returns a fixed sentence rather than an empty string so
// prompt builders never have to special-case it.
func (m *Manager) Context(query string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	queryWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		queryWords[w] = true
	}

	start := len(m.history) - relevanceWindow
	if start < 0 {
		start = 0
	}

	var relevant []Interaction
	for _, item := range m.history[start:] {
		combined := strings.ToLower(item.UserInput + " " + item.Response)
		matches := 0
		for w := range queryWords {
			if strings.Contains(combined, w) {
				matches++
			}
		}
		if matches >= relevanceMinWords {
			relevant = append(relevant, item)
		}
	}

	if len(relevant) == 0 {
		return "No relevant previous conversations."
	}

	if len(relevant) > relevanceMaxItems {
		relevant = relevant[len(relevant)-relevanceMaxItems:]
	}

	var b strings.Builder
	b.WriteString("Previous relevant conversations:")
	for _, item := range relevant {
		fmt.Fprintf(&b, "\nUser: %s\nAssistant: %s", item.UserInput, item.Response)
	}
	return b.String()
}

// Clear discards all retained interactions.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.history = nil
	m.mu.Unlock()
	m.log.Debug().Msg("Conversation memory cleared")
}
