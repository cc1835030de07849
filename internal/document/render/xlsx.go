package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/vlasenkov/chatscribe/internal/document"
	"github.com/vlasenkov/chatscribe/internal/logger"
)

const (
	xlsxSheetName  = "Document"
	xlsxTotalWidth = 100.0
)

// XLSXBackend lays the document out on a single worksheet, one block
// after another down the rows. Images degrade to their textual forms;
// a spreadsheet is a grid, not a canvas.
type XLSXBackend struct {
	logger logger.Logger
}

func NewXLSXBackend(log logger.Logger) *XLSXBackend {
	return &XLSXBackend{logger: log}
}

func (b *XLSXBackend) Format() document.Format {
	return document.FormatXlsx
}

func (b *XLSXBackend) Render(doc *document.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	w := &xlsxWriter{file: f, row: 1}

	if doc.Header != nil && doc.Header.Content != "" {
		w.textRow(document.SanitizeText(doc.Header.Content), doc.Header.Style, 10)
	}
	if !doc.Meta.HideTitle && doc.Meta.Title != "" {
		w.textRow(document.SanitizeText(doc.Meta.Title), document.Style{Bold: true, Alignment: "center"}, 16)
		w.row++
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
		w.row++
		w.textRow(document.SanitizeText(doc.Footer.Content), doc.Footer.Style, 10)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *XLSXBackend) renderBlock(w *xlsxWriter, block document.Block) error {
	switch blk := block.(type) {
	case document.Heading:
		size := blk.Style.FontSize
		if size <= 0 {
			size = HeadingFontSize(blk.Level)
		}
		style := blk.Style
		style.Bold = true
		w.textRow(document.SanitizeText(blk.Text), style, size)
	case document.Paragraph:
		w.textRow(document.SanitizeText(blk.Text), blk.Style, 0)
	case document.List:
		for i, item := range blk.Items {
			w.textRow(ListMarker(blk.Ordered, i)+document.SanitizeText(item), blk.Style, 0)
		}
	case document.Table:
		return w.table(&blk)
	case document.Math:
		for _, line := range FormulaFallback(blk) {
			w.textRow(line, blk.Style, 0)
		}
	case document.FunctionGraph:
		w.textRow(GraphPlaceholder(blk), document.Style{Italic: true}, 0)
	case document.Toc:
		if blk.Title != "" {
			w.textRow(blk.Title, document.Style{Bold: true}, 14)
		}
		for _, e := range VisibleTocEntries(blk) {
			w.textRow(TocLine(blk, e), blk.Style, 0)
		}
	default:
		return &document.SchemaError{Reason: "unknown block type: " + block.Kind()}
	}
	w.row++
	return nil
}

type xlsxWriter struct {
	file *excelize.File
	row  int
}

func (w *xlsxWriter) textRow(text string, style document.Style, sizeOverride float64) {
	cell, _ := excelize.CoordinatesToCellName(1, w.row)
	w.file.SetCellValue(xlsxSheetName, cell, text)
	if id, err := w.styleID(style, sizeOverride, "", false); err == nil {
		w.file.SetCellStyle(xlsxSheetName, cell, cell, id)
	}
	w.row++
}

func (w *xlsxWriter) table(t *document.Table) error {
	if len(t.Headers) == 0 {
		return nil
	}

	widths := ColumnWidths(t, xlsxTotalWidth)
	for col, width := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		w.file.SetColWidth(xlsxSheetName, name, name, width)
	}

	headerStyle := t.Style
	headerStyle.Bold = true
	headerID, _ := w.styleID(headerStyle, 0, "E6E6E6", t.Properties.Border)
	for col, h := range t.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, w.row)
		w.file.SetCellValue(xlsxSheetName, cell, document.SanitizeText(h))
		w.file.SetCellStyle(xlsxSheetName, cell, cell, headerID)
	}
	w.row++

	for rowIdx := range t.Rows {
		for col := range t.Headers {
			cell, _ := excelize.CoordinatesToCellName(col+1, w.row)
			w.file.SetCellValue(xlsxSheetName, cell, document.SanitizeText(t.CellAt(rowIdx, col)))

			bg, fg, wrap, hAlign, vAlign := t.OverridesFor(rowIdx, col)
			cellStyle := t.Style
			if fg != "" {
				cellStyle.Color = fg
			}
			if hAlign != "" {
				cellStyle.Alignment = hAlign
			}
			id, err := w.cellStyleID(cellStyle, bg, wrap, vAlign, t.Properties.Border)
			if err != nil {
				return err
			}
			w.file.SetCellStyle(xlsxSheetName, cell, cell, id)
		}
		w.row++
	}
	w.row++
	return nil
}

func (w *xlsxWriter) styleID(style document.Style, sizeOverride float64, bg string, border bool) (int, error) {
	return w.cellStyleID(applySizeOverride(style, sizeOverride), bg, false, "", border)
}

func (w *xlsxWriter) cellStyleID(style document.Style, bg string, wrap bool, vAlign string, border bool) (int, error) {
	font := &excelize.Font{
		Bold:   style.Bold,
		Italic: style.Italic,
	}
	if style.Underline {
		font.Underline = "single"
	}
	if style.FontSize > 0 {
		font.Size = style.FontSize
	}
	if _, _, _, ok := ParseHexColor(style.Color); ok {
		font.Color = normalizeHex(style.Color)
	}
	if n := NormalizeFontName(style.FontName); n != "" {
		font.Family = style.FontName
	}

	s := &excelize.Style{Font: font}

	alignment := &excelize.Alignment{WrapText: wrap}
	switch style.Alignment {
	case "center", "right", "justify", "left":
		alignment.Horizontal = style.Alignment
	}
	switch vAlign {
	case "top", "center", "bottom":
		alignment.Vertical = vAlign
	}
	s.Alignment = alignment

	if _, _, _, ok := ParseHexColor(bg); ok {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{normalizeHex(bg)}}
	}
	if border {
		s.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}
	return w.file.NewStyle(s)
}

func applySizeOverride(style document.Style, size float64) document.Style {
	if size > 0 && style.FontSize <= 0 {
		style.FontSize = size
	}
	return style
}

func normalizeHex(hex string) string {
	if len(hex) > 0 && hex[0] == '#' {
		return hex[1:]
	}
	return hex
}
