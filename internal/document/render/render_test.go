package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlasenkov/chatscribe/internal/document"
)

func TestParseHexColor(t *testing.T) {
	t.Run("WithHash", func(t *testing.T) {
		r, g, b, ok := ParseHexColor("#FF8000")
		require.True(t, ok)
		assert.Equal(t, uint8(0xFF), r)
		assert.Equal(t, uint8(0x80), g)
		assert.Equal(t, uint8(0x00), b)
	})

	t.Run("WithoutHash", func(t *testing.T) {
		_, _, _, ok := ParseHexColor("00ff00")
		assert.True(t, ok)
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, bad := range []string{"", "#FFF", "red", "#GGGGGG", "#FFFFFFFF"} {
			_, _, _, ok := ParseHexColor(bad)
			assert.False(t, ok, bad)
		}
	})
}

func TestNormalizeFontName(t *testing.T) {
	// Times variants redirect to the bundled default.
	assert.Equal(t, "", NormalizeFontName("Times New Roman"))
	assert.Equal(t, "", NormalizeFontName("times-new-roman"))
	assert.Equal(t, "", NormalizeFontName("TIMES"))
	assert.Equal(t, "arial", NormalizeFontName("Arial"))
	assert.Equal(t, "courier", NormalizeFontName("Courier"))
}

func TestColumnWidths(t *testing.T) {
	t.Run("HintsHonoredProportionally", func(t *testing.T) {
		tbl := &document.Table{
			Headers:    []string{"a", "b"},
			Properties: document.TableProperties{Widths: []float64{1, 3}},
		}
		widths := ColumnWidths(tbl, 100)
		assert.InDelta(t, 25, widths[0], 0.01)
		assert.InDelta(t, 75, widths[1], 0.01)
	})

	t.Run("HeuristicCapsLongColumn", func(t *testing.T) {
		tbl := &document.Table{
			Headers: []string{"id", "x", "y"},
			Rows: [][]string{
				{"a very long description cell that dominates", "1", "2"},
			},
		}
		widths := ColumnWidths(tbl, 100)
		assert.InDelta(t, 40, widths[0], 0.01)
		total := widths[0] + widths[1] + widths[2]
		assert.InDelta(t, 100, total, 0.01)
	})

	t.Run("CapHoldsAfterRedistribution", func(t *testing.T) {
		// The second column would blow past the cap once it absorbs the
		// first column's excess; every column must stay within it.
		tbl := &document.Table{
			Headers: []string{"a", "b", "c"},
			Rows: [][]string{{
				strings.Repeat("x", 50),
				strings.Repeat("y", 20),
				"z",
			}},
		}
		widths := ColumnWidths(tbl, 100)
		for i, w := range widths {
			assert.LessOrEqual(t, w, 40.01, "column %d", i)
		}
		assert.InDelta(t, 100, widths[0]+widths[1]+widths[2], 0.01)
	})

	t.Run("MultibyteTextWeighsByRunes", func(t *testing.T) {
		tbl := &document.Table{
			Headers: []string{"ффф", "aaa", "bbb"},
		}
		widths := ColumnWidths(tbl, 90)
		assert.InDelta(t, 30, widths[0], 0.01)
		assert.InDelta(t, 30, widths[1], 0.01)
		assert.InDelta(t, 30, widths[2], 0.01)
	})

	t.Run("MismatchedHintsFallBackToHeuristic", func(t *testing.T) {
		tbl := &document.Table{
			Headers:    []string{"a", "b"},
			Properties: document.TableProperties{Widths: []float64{10}},
		}
		widths := ColumnWidths(tbl, 100)
		require.Len(t, widths, 2)
		assert.InDelta(t, 50, widths[0], 0.01)
	})

	t.Run("NoHeaders", func(t *testing.T) {
		assert.Nil(t, ColumnWidths(&document.Table{}, 100))
	})
}

func TestListMarker(t *testing.T) {
	assert.Equal(t, "1. ", ListMarker(true, 0))
	assert.Equal(t, "3. ", ListMarker(true, 2))
	assert.Equal(t, "• ", ListMarker(false, 0))
}

func TestFormulaFallback(t *testing.T) {
	lines := FormulaFallback(document.Math{Formula: "E = mc^2", Caption: "mass-energy"})
	require.Len(t, lines, 2)
	assert.Equal(t, "Formula: E = mc^2", lines[0])
	assert.Equal(t, "(mass-energy)", lines[1])

	lines = FormulaFallback(document.Math{Formula: "x+1"})
	require.Len(t, lines, 1)
}

func TestGraphPlaceholder(t *testing.T) {
	g := document.FunctionGraph{Function: "x*x", XMin: -2, XMax: 2, Title: "Parabola"}
	assert.Equal(t, "Parabola: f(x) = x*x on [-2, 2]", GraphPlaceholder(g))

	g.Title = ""
	assert.True(t, strings.HasPrefix(GraphPlaceholder(g), "Graph:"))
}

func TestTocLine(t *testing.T) {
	toc := document.Toc{Levels: 3, IncludePages: true, LeaderDots: true}

	line := TocLine(toc, document.TocEntry{Level: 1, Text: "Intro", Page: 2})
	assert.True(t, strings.HasPrefix(line, "Intro "))
	assert.True(t, strings.HasSuffix(line, " 2"))
	assert.Contains(t, line, "...")

	nested := TocLine(toc, document.TocEntry{Level: 3, Text: "Detail", Page: 14})
	assert.True(t, strings.HasPrefix(nested, "    Detail"))

	noPages := document.Toc{Levels: 3}
	assert.Equal(t, "Intro", TocLine(noPages, document.TocEntry{Level: 1, Text: "Intro", Page: 2}))
}

func TestVisibleTocEntries(t *testing.T) {
	toc := document.Toc{
		Levels: 2,
		Entries: []document.TocEntry{
			{Level: 1, Text: "One"},
			{Level: 2, Text: "Two"},
			{Level: 3, Text: "Too deep"},
		},
	}
	entries := VisibleTocEntries(toc)
	require.Len(t, entries, 2)
	assert.Equal(t, "Two", entries[1].Text)
}

func TestHeadingFontSize(t *testing.T) {
	assert.Equal(t, 24.0, HeadingFontSize(1))
	assert.Equal(t, 11.0, HeadingFontSize(6))
	// Out-of-range levels clamp instead of panicking.
	assert.Equal(t, 24.0, HeadingFontSize(0))
	assert.Equal(t, 11.0, HeadingFontSize(9))
}
