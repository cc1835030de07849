package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vlasenkov/chatscribe/internal/ai"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

// testRegistry avoids the builtin exact-strategy profiles so tests never
// touch tokenizer data files.
func testRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	r.Register(Profile{Name: "test-model", ContextWindow: 100, Strategy: StrategyHeuristic})
	r.Register(Profile{Name: "test-image", ContextWindow: 50, Strategy: StrategyHeuristic, ImageModel: true})
	return r
}

func newTestEstimator() *Estimator {
	return NewEstimator(testRegistry(), logger.NewTestLogger())
}

func TestEstimator_Count(t *testing.T) {
	e := newTestEstimator()

	t.Run("EmptyTextIsFree", func(t *testing.T) {
		assert.Equal(t, 0, e.Count("", "test-model"))
	})

	t.Run("HeuristicRoundsUp", func(t *testing.T) {
		assert.Equal(t, 1, e.Count("a", "test-model"))
		assert.Equal(t, 1, e.Count("abcd", "test-model"))
		assert.Equal(t, 2, e.Count("abcde", "test-model"))
	})

	t.Run("HeuristicCountsRunesNotBytes", func(t *testing.T) {
		// 4 cyrillic runes, 8 bytes
		assert.Equal(t, 1, e.Count("тест", "test-model"))
	})

	t.Run("ImageModelCountsCharacters", func(t *testing.T) {
		assert.Equal(t, 11, e.Count("draw a fish", "test-image"))
	})

	t.Run("UnknownModelFallsBackToHeuristic", func(t *testing.T) {
		assert.Equal(t, 3, e.Count(strings.Repeat("x", 12), "never-heard-of-it"))
	})

	t.Run("MonotonicInLength", func(t *testing.T) {
		prev := 0
		for n := 1; n <= 64; n *= 2 {
			count := e.Count(strings.Repeat("a", n), "test-model")
			assert.GreaterOrEqual(t, count, prev)
			prev = count
		}
	})
}

func TestEstimator_CountConversation(t *testing.T) {
	e := newTestEstimator()

	t.Run("EmptyConversationIsFree", func(t *testing.T) {
		assert.Equal(t, 0, e.CountConversation(nil, "test-model"))
	})

	t.Run("IncludesFramingAndPrimer", func(t *testing.T) {
		turns := []ai.Message{
			{Role: ai.RoleUser, Content: "abcd"},
		}
		// per-turn framing + 1 content token + reply primer
		want := e.TokensPerTurn + 1 + e.TokensReplyPrimer
		assert.Equal(t, want, e.CountConversation(turns, "test-model"))
	})

	t.Run("NamedTurnCostsMore", func(t *testing.T) {
		anon := []ai.Message{{Role: ai.RoleUser, Content: "abcd"}}
		named := []ai.Message{{Role: ai.RoleUser, Content: "abcd", Name: "bob"}}
		diff := e.CountConversation(named, "test-model") - e.CountConversation(anon, "test-model")
		assert.Equal(t, e.TokensPerName+e.Count("bob", "test-model"), diff)
	})

	t.Run("OverridableConstants", func(t *testing.T) {
		custom := newTestEstimator()
		custom.TokensPerTurn = 10
		custom.TokensReplyPrimer = 0
		turns := []ai.Message{{Role: ai.RoleUser, Content: "abcd"}}
		assert.Equal(t, 11, custom.CountConversation(turns, "test-model"))
	})

	t.Run("MoreTurnsNeverCheaper", func(t *testing.T) {
		var turns []ai.Message
		prev := 0
		for i := 0; i < 10; i++ {
			turns = append(turns, ai.Message{Role: ai.RoleUser, Content: "hello there"})
			count := e.CountConversation(turns, "test-model")
			assert.Greater(t, count, prev)
			prev = count
		}
	})
}
