package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

type bogusBlock struct{}

func (bogusBlock) Kind() string { return "bogus" }

func TestRTFBackend_Render(t *testing.T) {
	backend := NewRTFBackend(logger.NewTestLogger())
	assert.Equal(t, document.FormatRTF, backend.Format())

	t.Run("BasicDocument", func(t *testing.T) {
		doc := &document.Document{
			Meta: document.Meta{Title: "Quarterly Report"},
			Blocks: []document.Block{
				document.Heading{Level: 1, Text: "Summary"},
				document.Paragraph{Text: "All good.", Style: document.Style{Bold: true}},
			},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)

		rtf := string(out)
		assert.True(t, len(rtf) > 0)
		assert.Contains(t, rtf, `{\rtf1\ansi`)
		assert.Contains(t, rtf, "Quarterly Report")
		assert.Contains(t, rtf, "Summary")
		assert.Contains(t, rtf, `\b All good.`)
		assert.Equal(t, byte('}'), out[len(out)-1])
	})

	t.Run("HiddenTitleOmitted", func(t *testing.T) {
		doc := &document.Document{
			Meta: document.Meta{Title: "Secret", HideTitle: true},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "Secret")
	})

	t.Run("ReservedCharactersEscaped", func(t *testing.T) {
		doc := &document.Document{
			Meta: document.Meta{HideTitle: true},
			Blocks: []document.Block{
				document.Paragraph{Text: `braces {x} and slash \n`},
			},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		rtf := string(out)
		assert.Contains(t, rtf, `\{x\}`)
		assert.Contains(t, rtf, `\\n`)
	})

	t.Run("ColorTableBuilt", func(t *testing.T) {
		doc := &document.Document{
			Blocks: []document.Block{
				document.Paragraph{Text: "red", Style: document.Style{Color: "#FF0000"}},
			},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		rtf := string(out)
		assert.Contains(t, rtf, `\colortbl ;\red255\green0\blue0;`)
		assert.Contains(t, rtf, `\cf1 `)
	})

	t.Run("MalformedColorIgnored", func(t *testing.T) {
		doc := &document.Document{
			Blocks: []document.Block{
				document.Paragraph{Text: "plain", Style: document.Style{Color: "reddish"}},
			},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		assert.NotContains(t, string(out), `\colortbl`)
	})

	t.Run("TableRendersShortRows", func(t *testing.T) {
		doc := &document.Document{
			Blocks: []document.Block{
				document.Table{
					Headers: []string{"Name", "Qty"},
					Rows:    [][]string{{"apples", "3"}, {"pears"}},
				},
			},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		rtf := string(out)
		assert.Contains(t, rtf, `\trowd`)
		assert.Contains(t, rtf, "pears")
		// Header plus two body rows.
		assert.Equal(t, 3, countOccurrences(rtf, `\row`+"\n"))
	})

	t.Run("MathFallsBackToText", func(t *testing.T) {
		doc := &document.Document{
			Blocks: []document.Block{
				document.Math{Formula: "E = mc^2", Caption: "energy"},
			},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		rtf := string(out)
		assert.Contains(t, rtf, "Formula: E = mc^2")
		assert.Contains(t, rtf, "(energy)")
	})

	t.Run("GraphPlaceholder", func(t *testing.T) {
		doc := &document.Document{
			Blocks: []document.Block{
				document.FunctionGraph{Function: "x*x", XMin: -1, XMax: 1, Title: "Parabola"},
			},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		assert.Contains(t, string(out), "Parabola: f(x) = x*x on [-1, 1]")
	})

	t.Run("UnknownBlockIsSchemaError", func(t *testing.T) {
		doc := &document.Document{Blocks: []document.Block{bogusBlock{}}}
		_, err := backend.Render(doc)
		var schemaErr *document.SchemaError
		require.ErrorAs(t, err, &schemaErr)
	})

	t.Run("NonASCIIEscaped", func(t *testing.T) {
		doc := &document.Document{
			Blocks: []document.Block{document.Paragraph{Text: "é"}},
		}
		out, err := backend.Render(doc)
		require.NoError(t, err)
		assert.Contains(t, string(out), `\u233?`)
	})
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
