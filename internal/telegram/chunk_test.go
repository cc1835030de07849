package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessage(t *testing.T) {
	t.Run("ShortMessageUntouched", func(t *testing.T) {
		chunks := SplitMessage("hello")
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello", chunks[0])
	})

	t.Run("ExactLimitUntouched", func(t *testing.T) {
		text := strings.Repeat("a", MaxMessageLength)
		chunks := SplitMessage(text)
		require.Len(t, chunks, 1)
	})

	t.Run("EveryChunkWithinLimit", func(t *testing.T) {
		text := strings.Repeat("word ", 3000)
		for _, chunk := range SplitMessage(text) {
			assert.LessOrEqual(t, len([]rune(chunk)), MaxMessageLength)
			assert.NotEmpty(t, chunk)
		}
	})

	t.Run("PrefersParagraphBreaks", func(t *testing.T) {
		first := strings.Repeat("a", 3000)
		second := strings.Repeat("b", 3000)
		chunks := SplitMessage(first + "\n\n" + second)
		require.Len(t, chunks, 2)
		assert.Equal(t, first, chunks[0])
		assert.Equal(t, second, chunks[1])
	})

	t.Run("NoSeparatorCutsHard", func(t *testing.T) {
		text := strings.Repeat("a", MaxMessageLength+10)
		chunks := SplitMessage(text)
		require.Len(t, chunks, 2)
		assert.Len(t, chunks[0], MaxMessageLength)
		assert.Len(t, chunks[1], 10)
	})

	t.Run("ContentPreservedAcrossChunks", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 500; i++ {
			b.WriteString("line of reasonable length number\n")
		}
		text := strings.TrimRight(b.String(), "\n")
		joined := strings.Join(SplitMessage(text), "\n")
		assert.Equal(t, strings.ReplaceAll(text, "\n", ""), strings.ReplaceAll(joined, "\n", ""))
	})

	t.Run("MultibyteSafe", func(t *testing.T) {
		text := strings.Repeat("щ", MaxMessageLength+100)
		chunks := SplitMessage(text)
		require.Len(t, chunks, 2)
		for _, chunk := range chunks {
			assert.True(t, strings.HasPrefix(chunk, "щ"))
		}
	})
}
