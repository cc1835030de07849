package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaCanvasSize(t *testing.T) {
	t.Run("ShortFormulaGetsNarrowCanvas", func(t *testing.T) {
		w, h := formulaCanvasSize("x+1")
		assert.InDelta(t, 18, w, 0.01)
		assert.InDelta(t, 15, h, 0.01)
	})

	t.Run("GrowsWithLength", func(t *testing.T) {
		w, h := formulaCanvasSize(strings.Repeat("x", 20))
		assert.InDelta(t, 120, w, 0.01)
		assert.InDelta(t, 24, h, 0.01)
	})

	t.Run("ClampedAtTripleBase", func(t *testing.T) {
		w, h := formulaCanvasSize(strings.Repeat("x", 100))
		assert.InDelta(t, 180, w, 0.01)
		assert.InDelta(t, 36, h, 0.01)
	})
}

func TestCompileExpression(t *testing.T) {
	t.Run("Arithmetic", func(t *testing.T) {
		eval, err := compileExpression("x * x")
		require.NoError(t, err)
		assert.InDelta(t, 9.0, eval(3), 0.0001)
	})

	t.Run("Division", func(t *testing.T) {
		eval, err := compileExpression("1.0 / x")
		require.NoError(t, err)
		assert.InDelta(t, 0.5, eval(2), 0.0001)
	})

	t.Run("EmptyExpression", func(t *testing.T) {
		_, err := compileExpression("")
		assert.Error(t, err)
	})

	t.Run("InvalidExpression", func(t *testing.T) {
		_, err := compileExpression("x +* 2")
		assert.Error(t, err)
	})
}
