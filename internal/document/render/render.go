// Package render implements the concrete output backends of the document
// engine. Every backend applies the same block semantics; only the
// mapping of styles onto the target format differs.
package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vlasenkov/chatscribe/internal/document"
)

// maxColumnShare caps a single table column at 40% of the total width so
// one long cell cannot starve the others.
const maxColumnShare = 0.4

// ParseHexColor parses a 6-hex-digit color string. Malformed values
// report ok=false and are ignored by the caller, never fatal.
func ParseHexColor(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8 & 0xff), uint8(v & 0xff), true
}

// NormalizeFontName canonicalizes a requested font name for lookup.
// Times New Roman variants normalize to the empty string, redirecting to
// the backend's bundled default: the fixed-layout engine's built-in serif
// has historically been missing, so the name cannot be trusted.
func NormalizeFontName(name string) string {
	n := strings.ToLower(name)
	n = strings.ReplaceAll(n, " ", "")
	n = strings.ReplaceAll(n, "-", "")
	if strings.Contains(n, "times") || strings.Contains(n, "newroman") {
		return ""
	}
	return n
}

// ColumnWidths distributes total width across the table's columns.
// Supplied widths are proportional hints honored as-is; otherwise each
// column gets a share proportional to its longest observed text, capped
// at 40% so one verbose column cannot starve the others.
func ColumnWidths(t *document.Table, total float64) []float64 {
	n := len(t.Headers)
	if n == 0 {
		return nil
	}

	if hints := t.Properties.Widths; len(hints) == n && allPositive(hints) {
		sum := 0.0
		for _, w := range hints {
			sum += w
		}
		widths := make([]float64, n)
		for i, w := range hints {
			widths[i] = total * w / sum
		}
		return widths
	}

	weights := make([]float64, n)
	for i, h := range t.Headers {
		weights[i] = float64(utf8.RuneCountInString(h))
	}
	for _, row := range t.Rows {
		for i := 0; i < n && i < len(row); i++ {
			if w := float64(utf8.RuneCountInString(row[i])); w > weights[i] {
				weights[i] = w
			}
		}
	}
	for i := range weights {
		if weights[i] < 1 {
			weights[i] = 1
		}
	}

	// The cap never drops below an even share, so narrow tables keep
	// their full width.
	limit := total * maxColumnShare
	if even := total / float64(n); limit < even {
		limit = even
	}

	widths := make([]float64, n)
	capped := make([]bool, n)
	remaining := total
	free := 0.0
	for _, w := range weights {
		free += w
	}
	// Redistributing a capped column's excess can push another column
	// past the cap, so cap and reflow until nothing exceeds it.
	for free > 0 {
		for i, w := range weights {
			if !capped[i] {
				widths[i] = remaining * w / free
			}
		}
		recapped := false
		for i := range widths {
			if capped[i] || widths[i] <= limit {
				continue
			}
			widths[i] = limit
			capped[i] = true
			remaining -= limit
			free -= weights[i]
			recapped = true
		}
		if !recapped {
			break
		}
	}
	return widths
}

func allPositive(vals []float64) bool {
	for _, v := range vals {
		if v <= 0 {
			return false
		}
	}
	return true
}

// ListMarker returns the bullet or ordinal marker for the i-th item.
func ListMarker(ordered bool, i int) string {
	if ordered {
		return fmt.Sprintf("%d. ", i+1)
	}
	return "• "
}

// FormulaFallback builds the degraded textual representation of a math
// block used when image rendering fails: a labeled formula line plus the
// caption as a parenthesized line.
func FormulaFallback(m document.Math) []string {
	lines := []string{"Formula: " + m.Formula}
	if m.Caption != "" {
		lines = append(lines, "("+m.Caption+")")
	}
	return lines
}

// GraphPlaceholder is the textual stand-in for a function graph in
// backends that cannot embed images.
func GraphPlaceholder(g document.FunctionGraph) string {
	label := g.Title
	if label == "" {
		label = "Graph"
	}
	return fmt.Sprintf("%s: f(x) = %s on [%g, %g]", label, g.Function, g.XMin, g.XMax)
}

// TocLine formats one table-of-contents entry with indentation, optional
// leader dots, and an optional page number.
func TocLine(toc document.Toc, e document.TocEntry) string {
	indent := strings.Repeat("  ", e.Level-1)
	line := indent + e.Text
	if toc.IncludePages {
		if toc.LeaderDots {
			dots := 60 - len(line)
			if dots < 3 {
				dots = 3
			}
			line += " " + strings.Repeat(".", dots) + " "
		} else {
			line += " "
		}
		line += strconv.Itoa(e.Page)
	}
	return line
}

// VisibleTocEntries filters entries deeper than the declared level limit.
func VisibleTocEntries(toc document.Toc) []document.TocEntry {
	var entries []document.TocEntry
	for _, e := range toc.Entries {
		if e.Level <= toc.Levels {
			entries = append(entries, e)
		}
	}
	return entries
}

// HeadingFontSize maps a heading level to its default point size.
func HeadingFontSize(level int) float64 {
	sizes := []float64{24, 20, 16, 14, 12, 11}
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return sizes[level-1]
}
