package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlasenkov/chatscribe/internal/ai"
)

func TestMemoryStore(t *testing.T) {
	scope := Scope{ChatID: 1, UserID: 2}
	other := Scope{ChatID: 1, UserID: 3}

	t.Run("AppendAndRead", func(t *testing.T) {
		store := NewMemoryStore(10)
		require.NoError(t, store.Append(t.Context(), scope,
			ai.Message{Role: ai.RoleUser, Content: "hi"},
			ai.Message{Role: ai.RoleAssistant, Content: "hello"},
		))

		turns, err := store.Turns(t.Context(), scope)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		assert.Equal(t, ai.RoleUser, turns[0].Role)
		assert.Equal(t, "hello", turns[1].Content)
	})

	t.Run("ScopesAreIsolated", func(t *testing.T) {
		store := NewMemoryStore(10)
		require.NoError(t, store.Append(t.Context(), scope, ai.Message{Role: ai.RoleUser, Content: "mine"}))

		turns, err := store.Turns(t.Context(), other)
		require.NoError(t, err)
		assert.Empty(t, turns)
	})

	t.Run("CapEvictsOldest", func(t *testing.T) {
		store := NewMemoryStore(3)
		for _, text := range []string{"one", "two", "three", "four"} {
			require.NoError(t, store.Append(t.Context(), scope, ai.Message{Role: ai.RoleUser, Content: text}))
		}

		turns, err := store.Turns(t.Context(), scope)
		require.NoError(t, err)
		require.Len(t, turns, 3)
		assert.Equal(t, "two", turns[0].Content)
		assert.Equal(t, "four", turns[2].Content)
	})

	t.Run("ResetClearsOnlyScope", func(t *testing.T) {
		store := NewMemoryStore(10)
		require.NoError(t, store.Append(t.Context(), scope, ai.Message{Role: ai.RoleUser, Content: "a"}))
		require.NoError(t, store.Append(t.Context(), other, ai.Message{Role: ai.RoleUser, Content: "b"}))

		require.NoError(t, store.Reset(t.Context(), scope))

		turns, _ := store.Turns(t.Context(), scope)
		assert.Empty(t, turns)
		turns, _ = store.Turns(t.Context(), other)
		assert.Len(t, turns, 1)
	})

	t.Run("ReadIsACopy", func(t *testing.T) {
		store := NewMemoryStore(10)
		require.NoError(t, store.Append(t.Context(), scope, ai.Message{Role: ai.RoleUser, Content: "original"}))

		turns, _ := store.Turns(t.Context(), scope)
		turns[0].Content = "mutated"

		fresh, _ := store.Turns(t.Context(), scope)
		assert.Equal(t, "original", fresh[0].Content)
	})
}
