package document

// Format selects the concrete output representation of a render call.
type Format string

const (
	FormatDocx Format = "docx"
	FormatPDF  Format = "pdf"
	FormatXlsx Format = "xlsx"
	FormatRTF  Format = "rtf"
)

// Style is the shared optional styling block. Absent fields fall back to
// backend-specific defaults; malformed colors are ignored, not fatal.
type Style struct {
	FontName  string
	FontSize  float64
	Color     string
	Bold      bool
	Italic    bool
	Underline bool
	Alignment string
}

type Meta struct {
	Title     string
	HideTitle bool
}

// HeaderFooter is a single styled line placed above or below the body.
type HeaderFooter struct {
	Content string
	Style   Style
}

// Document is the renderable in-memory model: metadata, optional header
// and footer, and an ordered block sequence. An empty block sequence is a
// valid, near-empty document.
type Document struct {
	Meta   Meta
	Header *HeaderFooter
	Footer *HeaderFooter
	Blocks []Block
}

// Block is one typed unit of document content. Kind returns the schema
// discriminator value.
type Block interface {
	Kind() string
}

type Heading struct {
	Level int
	Text  string
	Style Style
}

func (Heading) Kind() string { return "heading" }

type Paragraph struct {
	Text        string
	Style       Style
	LeftIndent  float64
	RightIndent float64
	SpaceAfter  float64
}

func (Paragraph) Kind() string { return "paragraph" }

type List struct {
	Ordered     bool
	Items       []string
	Style       Style
	LeftIndent  float64
	RightIndent float64
	SpaceAfter  float64
}

func (List) Kind() string { return "list" }

// CellOverride restyles a single cell, keyed by zero-based row and column
// in the body (headers excluded). Out-of-range overrides are skipped.
type CellOverride struct {
	Row                 int
	Col                 int
	BgColor             string
	TextColor           string
	TextWrap            bool
	VerticalAlignment   string
	HorizontalAlignment string
	Border              bool
}

// RowOverride restyles a whole body row. Cell overrides win on conflict.
type RowOverride struct {
	Row       int
	BgColor   string
	TextColor string
}

type TableProperties struct {
	Border     bool
	CellMargin float64
	Widths     []float64
}

type Table struct {
	Headers    []string
	Rows       [][]string
	Style      Style
	Properties TableProperties
	CellStyles []CellOverride
	RowStyles  []RowOverride
}

func (Table) Kind() string { return "table" }

type Math struct {
	Formula         string
	Caption         string
	Style           Style
	MathFontSize    float64
	CaptionFontSize float64
}

func (Math) Kind() string { return "math" }

type FunctionGraph struct {
	Function  string
	XMin      float64
	XMax      float64
	Title     string
	XLabel    string
	YLabel    string
	Width     float64
	Height    float64
	LineColor string
	LineWidth float64
	ShowGrid  bool
	Caption   string
	Alignment string
}

func (FunctionGraph) Kind() string { return "function_graph" }

type TocEntry struct {
	Level int
	Text  string
	Page  int
}

type Toc struct {
	Title        string
	Levels       int
	Style        Style
	Indent       float64
	LeaderDots   bool
	IncludePages bool
	Entries      []TocEntry
}

func (Toc) Kind() string { return "toc" }

// CellAt returns the table body cell at (row, col), blank when the row is
// shorter than the header count.
func (t *Table) CellAt(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// OverridesFor resolves the effective override for one body cell in the
// documented order: row override first, cell override on top.
func (t *Table) OverridesFor(row, col int) (bg, fg string, wrap bool, hAlign, vAlign string) {
	for _, ro := range t.RowStyles {
		if ro.Row != row || ro.Row < 0 || ro.Row >= len(t.Rows) {
			continue
		}
		if ro.BgColor != "" {
			bg = ro.BgColor
		}
		if ro.TextColor != "" {
			fg = ro.TextColor
		}
	}
	for _, co := range t.CellStyles {
		if co.Row != row || co.Col != col {
			continue
		}
		if co.Row < 0 || co.Row >= len(t.Rows) || co.Col < 0 || co.Col >= len(t.Headers) {
			continue
		}
		if co.BgColor != "" {
			bg = co.BgColor
		}
		if co.TextColor != "" {
			fg = co.TextColor
		}
		if co.TextWrap {
			wrap = true
		}
		if co.HorizontalAlignment != "" {
			hAlign = co.HorizontalAlignment
		}
		if co.VerticalAlignment != "" {
			vAlign = co.VerticalAlignment
		}
	}
	return
}
