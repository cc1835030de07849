package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlasenkov/chatscribe/internal/ai"
)

func TestEstimator_Truncate(t *testing.T) {
	e := newTestEstimator()

	system := ai.Message{Role: ai.RoleSystem, Content: "be brief"}
	user := func(text string) ai.Message {
		return ai.Message{Role: ai.RoleUser, Content: text}
	}
	assistant := func(text string) ai.Message {
		return ai.Message{Role: ai.RoleAssistant, Content: text}
	}

	t.Run("FitsUnchanged", func(t *testing.T) {
		turns := []ai.Message{system, user("hi"), assistant("hello")}
		got := e.Truncate(turns, "test-model", 10)
		assert.Equal(t, turns, got)
	})

	t.Run("NoBudgetMeansEmpty", func(t *testing.T) {
		turns := []ai.Message{user("hi")}
		assert.Empty(t, e.Truncate(turns, "test-model", 100))
		assert.Empty(t, e.Truncate(turns, "test-model", 1000))
	})

	t.Run("OversizedSystemTurnMeansEmpty", func(t *testing.T) {
		huge := ai.Message{Role: ai.RoleSystem, Content: strings.Repeat("x", 2000)}
		turns := []ai.Message{huge, user("hi")}
		assert.Empty(t, e.Truncate(turns, "test-model", 10))
	})

	t.Run("SystemKeptWholeRecencyWins", func(t *testing.T) {
		old := user(strings.Repeat("a", 400))
		turns := []ai.Message{system, old, assistant("ok"), user("latest question")}
		got := e.Truncate(turns, "test-model", 10)

		require.NotEmpty(t, got)
		assert.Equal(t, system, got[0])
		assert.Equal(t, "latest question", got[len(got)-1].Content)
		assert.NotContains(t, got, old)
	})

	t.Run("ChronologicalOrderPreserved", func(t *testing.T) {
		turns := []ai.Message{system}
		for i := 0; i < 20; i++ {
			turns = append(turns, user(strings.Repeat("q", 40)), assistant(strings.Repeat("r", 40)))
		}
		got := e.Truncate(turns, "test-model", 10)
		require.NotEmpty(t, got)
		assert.Less(t, len(got), len(turns))

		// Retained non-system turns must be a suffix of the input.
		rest := got
		if rest[0].Role == ai.RoleSystem {
			rest = rest[1:]
		}
		assert.Equal(t, turns[len(turns)-len(rest):], rest)
	})

	t.Run("Idempotent", func(t *testing.T) {
		turns := []ai.Message{system}
		for i := 0; i < 20; i++ {
			turns = append(turns, user(strings.Repeat("q", 40)))
		}
		once := e.Truncate(turns, "test-model", 10)
		twice := e.Truncate(once, "test-model", 10)
		assert.Equal(t, once, twice)
	})

	t.Run("ImagePromptFitsWhole", func(t *testing.T) {
		turns := []ai.Message{user("short prompt")}
		assert.Equal(t, turns, e.Truncate(turns, "test-image", 0))
	})

	t.Run("ImagePromptKeepsNewestUserTurn", func(t *testing.T) {
		turns := []ai.Message{
			user(strings.Repeat("a", 60)),
			assistant(strings.Repeat("b", 60)),
			user("final"),
		}
		got := e.Truncate(turns, "test-image", 0)
		require.Len(t, got, 1)
		assert.Equal(t, "final", got[0].Content)
	})

	t.Run("ImagePromptNoUserTurnMeansEmpty", func(t *testing.T) {
		turns := []ai.Message{assistant(strings.Repeat("b", 200))}
		assert.Empty(t, e.Truncate(turns, "test-image", 0))
	})
}
