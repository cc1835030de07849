package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/fumiama/go-docx"

	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

// docxTableWidth is the table width in twips passed to the writer.
const docxTableWidth = 9000

// DocxBackend renders documents into OOXML word-processing files.
type DocxBackend struct {
	logger logger.Logger
}

func NewDocxBackend(log logger.Logger) *DocxBackend {
	return &DocxBackend{logger: log}
}

func (b *DocxBackend) Format() document.Format {
	return document.FormatDocx
}

func (b *DocxBackend) Render(doc *document.Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	if doc.Header != nil && doc.Header.Content != "" {
		b.addParagraph(w, document.SanitizeText(doc.Header.Content), doc.Header.Style, 10)
	}
	if !doc.Meta.HideTitle && doc.Meta.Title != "" {
		b.addParagraph(w, document.SanitizeText(doc.Meta.Title), document.Style{Bold: true, Alignment: "center"}, 18)
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
		b.addParagraph(w, document.SanitizeText(doc.Footer.Content), doc.Footer.Style, 10)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *DocxBackend) renderBlock(w *docx.Docx, block document.Block) error {
	switch blk := block.(type) {
	case document.Heading:
		style := blk.Style
		style.Bold = true
		size := style.FontSize
		if size <= 0 {
			size = HeadingFontSize(blk.Level)
		}
		b.addParagraph(w, document.SanitizeText(blk.Text), style, size)
	case document.Paragraph:
		b.addParagraph(w, document.SanitizeText(blk.Text), blk.Style, 0)
	case document.List:
		for i, item := range blk.Items {
			b.addParagraph(w, ListMarker(blk.Ordered, i)+document.SanitizeText(item), blk.Style, 0)
		}
	case document.Table:
		b.renderTable(w, &blk)
	case document.Math:
		b.renderMath(w, blk)
	case document.FunctionGraph:
		b.renderGraph(w, blk)
	case document.Toc:
		if blk.Title != "" {
			b.addParagraph(w, document.SanitizeText(blk.Title), document.Style{Bold: true}, 14)
		}
		for _, e := range VisibleTocEntries(blk) {
			b.addParagraph(w, TocLine(blk, e), blk.Style, 0)
		}
	default:
		return &document.SchemaError{Reason: "unknown block type: " + block.Kind()}
	}
	return nil
}

func (b *DocxBackend) addParagraph(w *docx.Docx, text string, style document.Style, sizeOverride float64) {
	p := w.AddParagraph()
	run := p.AddText(text)
	applyDocxStyle(run, style, sizeOverride)
	if j := docxJustification(style.Alignment); j != "" {
		p.Justification(j)
	}
}

func (b *DocxBackend) renderTable(w *docx.Docx, t *document.Table) {
	if len(t.Headers) == 0 {
		return
	}

	tbl := w.AddTable(len(t.Rows)+1, len(t.Headers), docxTableWidth, nil)

	headerStyle := t.Style
	headerStyle.Bold = true
	for col, h := range t.Headers {
		run := tbl.TableRows[0].TableCells[col].AddParagraph().AddText(document.SanitizeText(h))
		applyDocxStyle(run, headerStyle, 0)
		run.Shade("clear", "auto", "E6E6E6")
	}

	for rowIdx := range t.Rows {
		for col := range t.Headers {
			bg, fg, _, hAlign, _ := t.OverridesFor(rowIdx, col)

			cellStyle := t.Style
			if fg != "" {
				cellStyle.Color = fg
			}

			p := tbl.TableRows[rowIdx+1].TableCells[col].AddParagraph()
			run := p.AddText(document.SanitizeText(t.CellAt(rowIdx, col)))
			applyDocxStyle(run, cellStyle, 0)

			align := hAlign
			if align == "" {
				align = t.Style.Alignment
			}
			if j := docxJustification(align); j != "" {
				p.Justification(j)
			}
			if _, _, _, ok := ParseHexColor(bg); ok {
				run.Shade("clear", "auto", normalizeHex(bg))
			}
		}
	}
	w.AddParagraph()
}

func (b *DocxBackend) renderMath(w *docx.Docx, m document.Math) {
	png, err := RenderFormulaOrFallback(m)
	if err == nil {
		p := w.AddParagraph()
		p.Justification("center")
		if _, err = p.AddInlineDrawing(png); err == nil {
			if m.Caption != "" {
				b.addParagraph(w, document.SanitizeText(m.Caption), document.Style{Italic: true, Alignment: "center"}, 10)
			}
			return
		}
	}
	b.logger.WithError(err).Debug("Formula image failed, using text fallback")
	for _, line := range FormulaFallback(m) {
		b.addParagraph(w, line, m.Style, 0)
	}
}

func (b *DocxBackend) renderGraph(w *docx.Docx, g document.FunctionGraph) {
	png, err := RenderFunctionGraph(g)
	if err == nil {
		p := w.AddParagraph()
		p.Justification("center")
		if _, err = p.AddInlineDrawing(png); err == nil {
			return
		}
	}
	b.logger.WithError(err).Debug("Graph render failed, using placeholder")
	b.addParagraph(w, GraphPlaceholder(g), document.Style{Italic: true}, 0)
}

func applyDocxStyle(run *docx.Run, style document.Style, sizeOverride float64) {
	size := style.FontSize
	if size <= 0 {
		size = sizeOverride
	}
	if size > 0 {
		// OOXML run sizes are half-points.
		run.Size(strconv.Itoa(int(size * 2)))
	}
	if style.Bold {
		run.Bold()
	}
	if style.Italic {
		run.Italic()
	}
	if style.Underline {
		run.Underline("single")
	}
	if _, _, _, ok := ParseHexColor(style.Color); ok {
		run.Color(normalizeHex(style.Color))
	}
}

func docxJustification(alignment string) string {
	switch alignment {
	case "center":
		return "center"
	case "right":
		return "end"
	case "justify":
		return "both"
	default:
		return ""
	}
}
