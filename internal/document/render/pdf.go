package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

const (
	pdfDefaultFontSize = 12.0
	pdfLineHeight      = 6.0
	pdfCellHeight      = 8.0
)

// PDFBackend renders documents onto A4 pages through the fpdf engine.
// Only the core fonts are available; requested families map onto the
// closest built-in one.
type PDFBackend struct {
	logger logger.Logger
}

func NewPDFBackend(log logger.Logger) *PDFBackend {
	return &PDFBackend{logger: log}
}

func (b *PDFBackend) Format() document.Format {
	return document.FormatPDF
}

func (b *PDFBackend) Render(doc *document.Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Meta.Title, true)

	if doc.Header != nil && doc.Header.Content != "" {
		header := *doc.Header
		pdf.SetHeaderFunc(func() {
			b.applyStyle(pdf, header.Style, 10)
			pdf.CellFormat(0, 8, header.Content, "", 1, pdfAlign(header.Style.Alignment), false, 0, "")
			pdf.Ln(2)
		})
	}
	if doc.Footer != nil && doc.Footer.Content != "" {
		footer := *doc.Footer
		pdf.SetFooterFunc(func() {
			pdf.SetY(-15)
			b.applyStyle(pdf, footer.Style, 10)
			pdf.CellFormat(0, 8, footer.Content, "", 0, pdfAlign(footer.Style.Alignment), false, 0, "")
		})
	}

	pdf.AddPage()

	if !doc.Meta.HideTitle && doc.Meta.Title != "" {
		b.applyStyle(pdf, document.Style{Bold: true}, 18)
		pdf.CellFormat(0, 10, document.SanitizeText(doc.Meta.Title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	for _, block := range doc.Blocks {
		if err := b.renderBlock(pdf, block); err != nil {
			if _, ok := err.(*document.SchemaError); ok {
				return nil, err
			}
			b.logger.WithError(err).WithField("block", block.Kind()).
				Warn("Block render failed, continuing")
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("pdf build: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *PDFBackend) renderBlock(pdf *fpdf.Fpdf, block document.Block) error {
	switch blk := block.(type) {
	case document.Heading:
		style := blk.Style
		style.Bold = true
		size := style.FontSize
		if size <= 0 {
			size = HeadingFontSize(blk.Level)
		}
		b.applyStyle(pdf, style, size)
		pdf.MultiCell(0, size*0.5, document.SanitizeText(blk.Text), "", pdfAlign(style.Alignment), false)
		pdf.Ln(2)
	case document.Paragraph:
		b.applyStyle(pdf, blk.Style, pdfDefaultFontSize)
		if blk.LeftIndent > 0 {
			pdf.SetX(pdf.GetX() + blk.LeftIndent)
		}
		pdf.MultiCell(0, pdfLineHeight, document.SanitizeText(blk.Text), "", pdfAlign(blk.Style.Alignment), false)
		pdf.Ln(2)
	case document.List:
		b.applyStyle(pdf, blk.Style, pdfDefaultFontSize)
		left, _, _, _ := pdf.GetMargins()
		for i, item := range blk.Items {
			pdf.SetX(left + blk.LeftIndent + 4)
			pdf.MultiCell(0, pdfLineHeight, ListMarker(blk.Ordered, i)+document.SanitizeText(item), "", "L", false)
		}
		pdf.Ln(2)
	case document.Table:
		b.renderTable(pdf, &blk)
	case document.Math:
		b.renderMath(pdf, blk)
	case document.FunctionGraph:
		b.renderGraph(pdf, blk)
	case document.Toc:
		b.renderToc(pdf, blk)
	default:
		return &document.SchemaError{Reason: "unknown block type: " + block.Kind()}
	}
	return nil
}

func (b *PDFBackend) renderTable(pdf *fpdf.Fpdf, t *document.Table) {
	if len(t.Headers) == 0 {
		return
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths := ColumnWidths(t, pageW-left-right)

	border := ""
	if t.Properties.Border {
		border = "1"
	}

	headerStyle := t.Style
	headerStyle.Bold = true
	b.applyStyle(pdf, headerStyle, pdfDefaultFontSize)
	pdf.SetFillColor(230, 230, 230)
	for col, h := range t.Headers {
		pdf.CellFormat(widths[col], pdfCellHeight, document.SanitizeText(h), border, 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for rowIdx := range t.Rows {
		for col := range t.Headers {
			bg, fg, _, hAlign, _ := t.OverridesFor(rowIdx, col)

			cellStyle := t.Style
			if fg != "" {
				cellStyle.Color = fg
			}
			b.applyStyle(pdf, cellStyle, pdfDefaultFontSize)

			fill := false
			if r, g, bl, ok := ParseHexColor(bg); ok {
				pdf.SetFillColor(int(r), int(g), int(bl))
				fill = true
			}

			align := pdfAlign(hAlign)
			if hAlign == "" {
				align = pdfAlign(t.Style.Alignment)
			}
			pdf.CellFormat(widths[col], pdfCellHeight, document.SanitizeText(t.CellAt(rowIdx, col)), border, 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func (b *PDFBackend) renderMath(pdf *fpdf.Fpdf, m document.Math) {
	png, err := RenderFormulaOrFallback(m)
	if err != nil {
		b.logger.WithError(err).Debug("Formula image failed, using text fallback")
		b.applyStyle(pdf, m.Style, pdfDefaultFontSize)
		for _, line := range FormulaFallback(m) {
			pdf.MultiCell(0, pdfLineHeight, line, "", "C", false)
		}
		pdf.Ln(2)
		return
	}
	b.embedPNG(pdf, fmt.Sprintf("math-%d", pdf.PageNo()*1000+int(pdf.GetY())), png, 0)
	if m.Caption != "" {
		b.applyStyle(pdf, document.Style{Italic: true}, 10)
		pdf.CellFormat(0, pdfLineHeight, document.SanitizeText(m.Caption), "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)
}

func (b *PDFBackend) renderGraph(pdf *fpdf.Fpdf, g document.FunctionGraph) {
	png, err := RenderFunctionGraph(g)
	if err != nil {
		b.logger.WithError(err).Debug("Graph render failed, using placeholder")
		b.applyStyle(pdf, document.Style{Italic: true}, pdfDefaultFontSize)
		pdf.MultiCell(0, pdfLineHeight, GraphPlaceholder(g), "", "C", false)
		pdf.Ln(2)
		return
	}
	width := g.Width
	if width <= 0 {
		width = defaultGraphWidthMM
	}
	b.embedPNG(pdf, fmt.Sprintf("graph-%d", pdf.PageNo()*1000+int(pdf.GetY())), png, width)
	pdf.Ln(2)
}

func (b *PDFBackend) renderToc(pdf *fpdf.Fpdf, toc document.Toc) {
	if toc.Title != "" {
		b.applyStyle(pdf, document.Style{Bold: true}, 14)
		pdf.CellFormat(0, 8, document.SanitizeText(toc.Title), "", 1, "L", false, 0, "")
	}
	b.applyStyle(pdf, toc.Style, pdfDefaultFontSize)
	left, _, _, _ := pdf.GetMargins()
	for _, e := range VisibleTocEntries(toc) {
		pdf.SetX(left + toc.Indent)
		pdf.CellFormat(0, pdfLineHeight, TocLine(toc, e), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
}

func (b *PDFBackend) embedPNG(pdf *fpdf.Fpdf, name string, png []byte, widthMM float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if info == nil {
		return
	}
	if widthMM <= 0 {
		widthMM = info.Width()
	}
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right
	if widthMM > usable {
		widthMM = usable
	}
	x := left + (usable-widthMM)/2
	pdf.ImageOptions(name, x, pdf.GetY(), widthMM, 0, true, opts, 0, "")
}

// applyStyle sets the current font and text color. Unknown families fall
// back to Helvetica; monospace requests map to Courier.
func (b *PDFBackend) applyStyle(pdf *fpdf.Fpdf, style document.Style, defaultSize float64) {
	family := "Helvetica"
	switch n := NormalizeFontName(style.FontName); {
	case n == "":
	case n == "courier" || n == "mono" || n == "monospace":
		family = "Courier"
	case n == "arial" || n == "helvetica":
		family = "Helvetica"
	default:
	}

	fontStyle := ""
	if style.Bold {
		fontStyle += "B"
	}
	if style.Italic {
		fontStyle += "I"
	}
	if style.Underline {
		fontStyle += "U"
	}

	size := style.FontSize
	if size <= 0 {
		size = defaultSize
	}
	pdf.SetFont(family, fontStyle, size)

	if r, g, bl, ok := ParseHexColor(style.Color); ok {
		pdf.SetTextColor(int(r), int(g), int(bl))
	} else {
		pdf.SetTextColor(0, 0, 0)
	}
}

func pdfAlign(alignment string) string {
	switch alignment {
	case "center":
		return "C"
	case "right":
		return "R"
	case "justify":
		return "J"
	default:
		return "L"
	}
}
