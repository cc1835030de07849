package render

import (
	"fmt"
	"strings"

	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

// rtfTableWidth is the full table width in twips (~16cm of an A4 page).
const rtfTableWidth = 9000.0

// RTFBackend serializes the document as plain RTF markup. The output is
// a single text payload rather than a binary artifact.
type RTFBackend struct {
	logger logger.Logger
}

func NewRTFBackend(log logger.Logger) *RTFBackend {
	return &RTFBackend{logger: log}
}

func (b *RTFBackend) Format() document.Format {
	return document.FormatRTF
}

func (b *RTFBackend) Render(doc *document.Document) ([]byte, error) {
	w := newRTFWriter()

	if doc.Header != nil && doc.Header.Content != "" {
		w.paragraph(document.SanitizeText(doc.Header.Content), doc.Header.Style, 0)
	}
	if !doc.Meta.HideTitle && doc.Meta.Title != "" {
		w.paragraph(document.SanitizeText(doc.Meta.Title), document.Style{Bold: true, FontSize: 18, Alignment: "center"}, 0)
	}

	for _, block := range doc.Blocks {
		if err := b.renderBlock(w, block); err != nil {
			if _, ok := err.(*document.SchemaError); ok {
				return nil, err
			}
			b.logger.WithError(err).WithField("block", block.Kind()).
				Warn("Block render failed, continuing")
		}
	}

	if doc.Footer != nil && doc.Footer.Content != "" {
		w.paragraph(document.SanitizeText(doc.Footer.Content), doc.Footer.Style, 0)
	}

	return []byte(w.finish()), nil
}

func (b *RTFBackend) renderBlock(w *rtfWriter, block document.Block) error {
	switch blk := block.(type) {
	case document.Heading:
		style := blk.Style
		style.Bold = true
		if style.FontSize <= 0 {
			style.FontSize = HeadingFontSize(blk.Level)
		}
		w.paragraph(document.SanitizeText(blk.Text), style, 0)
	case document.Paragraph:
		w.paragraph(document.SanitizeText(blk.Text), blk.Style, blk.LeftIndent)
	case document.List:
		for i, item := range blk.Items {
			w.paragraph(ListMarker(blk.Ordered, i)+document.SanitizeText(item), blk.Style, blk.LeftIndent)
		}
	case document.Table:
		w.table(&blk)
	case document.Math:
		// RTF carries no embedded images; math always takes the
		// textual representation.
		for _, line := range FormulaFallback(blk) {
			w.paragraph(line, blk.Style, 0)
		}
	case document.FunctionGraph:
		w.paragraph(GraphPlaceholder(blk), document.Style{Italic: true}, 0)
	case document.Toc:
		if blk.Title != "" {
			w.paragraph(blk.Title, document.Style{Bold: true, FontSize: 14}, 0)
		}
		for _, e := range VisibleTocEntries(blk) {
			w.paragraph(TocLine(blk, e), blk.Style, blk.Indent)
		}
	default:
		return &document.SchemaError{Reason: "unknown block type: " + block.Kind()}
	}
	return nil
}

type rtfWriter struct {
	body     strings.Builder
	colors   []string
	colorIdx map[string]int
}

func newRTFWriter() *rtfWriter {
	return &rtfWriter{colorIdx: make(map[string]int)}
}

// colorRef registers a color in the color table and returns its 1-based
// index, or 0 (auto) for malformed values.
func (w *rtfWriter) colorRef(hex string) int {
	if hex == "" {
		return 0
	}
	if _, _, _, ok := ParseHexColor(hex); !ok {
		return 0
	}
	key := strings.ToLower(strings.TrimPrefix(hex, "#"))
	if idx, ok := w.colorIdx[key]; ok {
		return idx
	}
	w.colors = append(w.colors, key)
	w.colorIdx[key] = len(w.colors)
	return len(w.colors)
}

func (w *rtfWriter) paragraph(text string, style document.Style, indent float64) {
	w.body.WriteString(`\pard`)
	switch style.Alignment {
	case "center":
		w.body.WriteString(`\qc`)
	case "right":
		w.body.WriteString(`\qr`)
	case "justify":
		w.body.WriteString(`\qj`)
	}
	if indent > 0 {
		fmt.Fprintf(&w.body, `\li%d`, int(indent*20))
	}
	w.body.WriteString(" ")
	w.styledRun(text, style)
	w.body.WriteString(`\par` + "\n")
}

func (w *rtfWriter) styledRun(text string, style document.Style) {
	var open, close strings.Builder
	if style.Bold {
		open.WriteString(`\b `)
		close.WriteString(`\b0 `)
	}
	if style.Italic {
		open.WriteString(`\i `)
		close.WriteString(`\i0 `)
	}
	if style.Underline {
		open.WriteString(`\ul `)
		close.WriteString(`\ulnone `)
	}
	if style.FontSize > 0 {
		// RTF font sizes are half-points.
		fmt.Fprintf(&open, `\fs%d `, int(style.FontSize*2))
	}
	if ref := w.colorRef(style.Color); ref > 0 {
		fmt.Fprintf(&open, `\cf%d `, ref)
		close.WriteString(`\cf0 `)
	}
	w.body.WriteString(open.String())
	w.body.WriteString(escapeRTF(text))
	w.body.WriteString(close.String())
}

func (w *rtfWriter) table(t *document.Table) {
	if len(t.Headers) == 0 {
		return
	}

	widths := ColumnWidths(t, rtfTableWidth)
	headerStyle := t.Style
	headerStyle.Bold = true
	w.tableRow(t.Headers, widths, headerStyle, "", "")

	for rowIdx := range t.Rows {
		cells := make([]string, len(t.Headers))
		for col := range t.Headers {
			cells[col] = t.CellAt(rowIdx, col)
		}
		// RTF applies colors per run; per-cell overrides collapse to
		// the first cell's effective text color for the whole row.
		_, fg, _, _, _ := t.OverridesFor(rowIdx, 0)
		w.tableRow(cells, widths, t.Style, fg, "")
	}
	w.body.WriteString("\n")
}

func (w *rtfWriter) tableRow(cells []string, widths []float64, style document.Style, fgOverride, _ string) {
	w.body.WriteString(`\trowd\trgaph108`)
	edge := 0.0
	for _, width := range widths {
		edge += width
		fmt.Fprintf(&w.body, `\clbrdrt\brdrs\clbrdrl\brdrs\clbrdrb\brdrs\clbrdrr\brdrs\cellx%d`, int(edge))
	}
	w.body.WriteString("\n")
	for _, cell := range cells {
		cellStyle := style
		if fgOverride != "" {
			cellStyle.Color = fgOverride
		}
		w.styledRun(document.SanitizeText(cell), cellStyle)
		w.body.WriteString(`\cell `)
	}
	w.body.WriteString(`\row` + "\n")
}

func (w *rtfWriter) finish() string {
	var out strings.Builder
	out.WriteString(`{\rtf1\ansi\deff0{\fonttbl{\f0 Helvetica;}}` + "\n")
	if len(w.colors) > 0 {
		out.WriteString(`{\colortbl ;`)
		for _, hex := range w.colors {
			r, g, b, _ := ParseHexColor(hex)
			fmt.Fprintf(&out, `\red%d\green%d\blue%d;`, r, g, b)
		}
		out.WriteString("}\n")
	}
	out.WriteString(w.body.String())
	out.WriteString("}")
	return out.String()
}

// escapeRTF escapes the markup-reserved characters and encodes newlines
// as explicit paragraph breaks. Non-ASCII runes use unicode escapes.
func escapeRTF(text string) string {
	var out strings.Builder
	for _, r := range text {
		switch {
		case r == '\\':
			out.WriteString(`\\`)
		case r == '{':
			out.WriteString(`\{`)
		case r == '}':
			out.WriteString(`\}`)
		case r == '\n':
			out.WriteString(`\par `)
		case r > 127:
			fmt.Fprintf(&out, `\u%d?`, int32(r))
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
