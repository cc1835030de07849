package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

type rawStyle struct {
	FontName  string  `json:"font_name"`
	FontSize  float64 `json:"font_size"`
	Color     string  `json:"color"`
	Bold      bool    `json:"bold"`
	Italic    bool    `json:"italic"`
	Underline bool    `json:"underline"`
	Alignment string  `json:"alignment"`
}

func (r rawStyle) toStyle() Style {
	return Style{
		FontName:  r.FontName,
		FontSize:  r.FontSize,
		Color:     r.Color,
		Bold:      r.Bold,
		Italic:    r.Italic,
		Underline: r.Underline,
		Alignment: r.Alignment,
	}
}

type rawStyledText struct {
	rawStyle
	Content string `json:"content"`
}

type rawDocument struct {
	Meta struct {
		Title     string `json:"title"`
		HideTitle bool   `json:"hide_title"`
	} `json:"meta"`
	Header *rawStyledText    `json:"header"`
	Footer *rawStyledText    `json:"footer"`
	Blocks []json.RawMessage `json:"blocks"`
}

type blockDecoder func(raw json.RawMessage) (Block, error)

var blockDecoders = map[string]blockDecoder{
	"heading":        decodeHeading,
	"paragraph":      decodeParagraph,
	"list":           decodeList,
	"table":          decodeTable,
	"math":           decodeMath,
	"function_graph": decodeFunctionGraph,
	"toc":            decodeToc,
}

// Parse decodes raw model output into a Document. A fenced-code-block
// wrapper around the JSON is tolerated. Unparseable or empty input yields
// a FormatError; an unknown block type yields a SchemaError.
func Parse(raw string) (*Document, error) {
	text := StripCodeFence(raw)
	if strings.TrimSpace(text) == "" {
		return nil, &FormatError{Reason: "empty input"}
	}

	var rd rawDocument
	if err := json.Unmarshal([]byte(text), &rd); err != nil {
		return nil, &FormatError{Reason: "invalid JSON", Err: err}
	}

	doc := &Document{
		Meta: Meta{Title: rd.Meta.Title, HideTitle: rd.Meta.HideTitle},
	}
	if rd.Header != nil {
		doc.Header = &HeaderFooter{Content: rd.Header.Content, Style: rd.Header.toStyle()}
	}
	if rd.Footer != nil {
		doc.Footer = &HeaderFooter{Content: rd.Footer.Content, Style: rd.Footer.toStyle()}
	}

	for i, rawBlock := range rd.Blocks {
		block, err := decodeBlock(rawBlock)
		if err != nil {
			if _, ok := err.(*SchemaError); ok {
				return nil, err
			}
			return nil, &SchemaError{Reason: fmt.Sprintf("block %d: %v", i, err)}
		}
		doc.Blocks = append(doc.Blocks, block)
	}

	return doc, nil
}

// StripCodeFence removes a leading/trailing triple-backtick wrapper, with
// or without a language tag, from model output.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var discriminator struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &discriminator); err != nil {
		return nil, err
	}

	decode, ok := blockDecoders[discriminator.Type]
	if !ok {
		return nil, &SchemaError{Reason: "unknown block type: " + discriminator.Type}
	}
	return decode(raw)
}

func decodeHeading(raw json.RawMessage) (Block, error) {
	var b struct {
		rawStyle
		Level int    `json:"level"`
		Text  string `json:"text"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}

	level := b.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return Heading{Level: level, Text: b.Text, Style: b.toStyle()}, nil
}

func decodeParagraph(raw json.RawMessage) (Block, error) {
	var b struct {
		rawStyle
		Text        string  `json:"text"`
		LeftIndent  float64 `json:"left_indent"`
		RightIndent float64 `json:"right_indent"`
		SpaceAfter  float64 `json:"space_after"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return Paragraph{
		Text:        b.Text,
		Style:       b.toStyle(),
		LeftIndent:  b.LeftIndent,
		RightIndent: b.RightIndent,
		SpaceAfter:  b.SpaceAfter,
	}, nil
}

func decodeList(raw json.RawMessage) (Block, error) {
	var b struct {
		rawStyle
		Ordered     bool     `json:"ordered"`
		Items       []string `json:"items"`
		LeftIndent  float64  `json:"left_indent"`
		RightIndent float64  `json:"right_indent"`
		SpaceAfter  float64  `json:"space_after"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return List{
		Ordered:     b.Ordered,
		Items:       b.Items,
		Style:       b.toStyle(),
		LeftIndent:  b.LeftIndent,
		RightIndent: b.RightIndent,
		SpaceAfter:  b.SpaceAfter,
	}, nil
}

func decodeTable(raw json.RawMessage) (Block, error) {
	var b struct {
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
		Params  rawStyle   `json:"params"`
		Props   struct {
			Border     bool      `json:"border"`
			CellMargin float64   `json:"cell_margin"`
			Widths     []float64 `json:"widths"`
		} `json:"table_properties"`
		CellProps []struct {
			Row                 int    `json:"row"`
			Col                 int    `json:"col"`
			BgColor             string `json:"bg_color"`
			TextColor           string `json:"text_color"`
			TextWrap            bool   `json:"text_wrap"`
			VerticalAlignment   string `json:"vertical_alignment"`
			HorizontalAlignment string `json:"horizontal_alignment"`
			Border              bool   `json:"border"`
		} `json:"cell_properties"`
		RowProps []struct {
			Row       int    `json:"row"`
			BgColor   string `json:"bg_color"`
			TextColor string `json:"text_color"`
		} `json:"row_properties"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}

	t := Table{
		Headers: b.Headers,
		Rows:    b.Rows,
		Style:   b.Params.toStyle(),
		Properties: TableProperties{
			Border:     b.Props.Border,
			CellMargin: b.Props.CellMargin,
			Widths:     b.Props.Widths,
		},
	}
	for _, cp := range b.CellProps {
		t.CellStyles = append(t.CellStyles, CellOverride{
			Row:                 cp.Row,
			Col:                 cp.Col,
			BgColor:             cp.BgColor,
			TextColor:           cp.TextColor,
			TextWrap:            cp.TextWrap,
			VerticalAlignment:   cp.VerticalAlignment,
			HorizontalAlignment: cp.HorizontalAlignment,
			Border:              cp.Border,
		})
	}
	for _, rp := range b.RowProps {
		t.RowStyles = append(t.RowStyles, RowOverride{
			Row:       rp.Row,
			BgColor:   rp.BgColor,
			TextColor: rp.TextColor,
		})
	}
	return t, nil
}

func decodeMath(raw json.RawMessage) (Block, error) {
	var b struct {
		rawStyle
		Formula         string  `json:"formula"`
		Caption         string  `json:"caption"`
		MathFontSize    float64 `json:"math_font_size"`
		CaptionFontSize float64 `json:"caption_font_size"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return Math{
		Formula:         b.Formula,
		Caption:         b.Caption,
		Style:           b.toStyle(),
		MathFontSize:    b.MathFontSize,
		CaptionFontSize: b.CaptionFontSize,
	}, nil
}

func decodeFunctionGraph(raw json.RawMessage) (Block, error) {
	var b struct {
		Function  string  `json:"function"`
		XMin      float64 `json:"x_min"`
		XMax      float64 `json:"x_max"`
		Title     string  `json:"title"`
		XLabel    string  `json:"xlabel"`
		YLabel    string  `json:"ylabel"`
		Width     float64 `json:"width"`
		Height    float64 `json:"height"`
		LineColor string  `json:"line_color"`
		LineWidth float64 `json:"line_width"`
		ShowGrid  bool    `json:"show_grid"`
		Caption   string  `json:"caption"`
		Alignment string  `json:"alignment"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return FunctionGraph{
		Function:  b.Function,
		XMin:      b.XMin,
		XMax:      b.XMax,
		Title:     b.Title,
		XLabel:    b.XLabel,
		YLabel:    b.YLabel,
		Width:     b.Width,
		Height:    b.Height,
		LineColor: b.LineColor,
		LineWidth: b.LineWidth,
		ShowGrid:  b.ShowGrid,
		Caption:   b.Caption,
		Alignment: b.Alignment,
	}, nil
}

func decodeToc(raw json.RawMessage) (Block, error) {
	var b struct {
		rawStyle
		Title        string  `json:"title"`
		Levels       int     `json:"levels"`
		Indent       float64 `json:"indent"`
		LeaderDots   bool    `json:"leader_dots"`
		IncludePages bool    `json:"include_pages"`
		Entries      []struct {
			Level int    `json:"level"`
			Text  string `json:"text"`
			Page  int    `json:"page"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}

	toc := Toc{
		Title:        b.Title,
		Levels:       b.Levels,
		Style:        b.toStyle(),
		Indent:       b.Indent,
		LeaderDots:   b.LeaderDots,
		IncludePages: b.IncludePages,
	}
	if toc.Levels < 1 {
		toc.Levels = 3
	}
	for _, e := range b.Entries {
		level := e.Level
		if level < 1 {
			level = 1
		}
		toc.Entries = append(toc.Entries, TocEntry{Level: level, Text: e.Text, Page: e.Page})
	}
	return toc, nil
}
