package memory

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(maxHistory int) *Manager {
	return NewManager(maxHistory, zerolog.New(nil).Level(zerolog.Disabled))
}

func TestAddEvictsOldestBeyondCap(t *testing.T) {
	m := newTestManager(3)

	for i := 0; i < 5; i++ {
		m.Add(fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i), nil)
	}

	assert.Equal(t, 3, m.Len())

	lines := m.History(0)
	require.Len(t, lines, 6)
	assert.Equal(t, "User: question 2", lines[0])
	assert.Equal(t, "Assistant: answer 4", lines[5])
}

func TestHistoryLimit(t *testing.T) {
	m := newTestManager(10)
	m.Add("first", "one", nil)
	m.Add("second", "two", nil)
	m.Add("third", "three", nil)

	lines := m.History(2)
	require.Len(t, lines, 4)
	assert.Equal(t, "User: second", lines[0])
}

func TestContextFindsRelevantInteractions(t *testing.T) {
	m := newTestManager(10)
	m.Add("What is the NVIDIA stock price?", "NVDA trades at $180.93", nil)
	m.Add("Tell me about pasta recipes", "Try carbonara", nil)

	ctx := m.Context("NVIDIA stock analysis")
	assert.Contains(t, ctx, "Previous relevant conversations:")
	assert.Contains(t, ctx, "NVIDIA stock price")
	assert.NotContains(t, ctx, "pasta")
}

func TestContextRequiresTwoMatchingWords(t *testing.T) {
	m := newTestManager(10)
	m.Add("What about apples?", "Apples are fruit", nil)

	// Only one word of the query appears in the stored interaction.
	assert.Equal(t, "No relevant previous conversations.", m.Context("apples in orbit"))
}

func TestContextEmptyMemory(t *testing.T) {
	m := newTestManager(10)
	assert.Equal(t, "No relevant previous conversations.", m.Context("anything at all"))
}

func TestClear(t *testing.T) {
	m := newTestManager(10)
	m.Add("q", "a", map[string]string{"source": "test"})
	m.Clear()

	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.History(0))
}
