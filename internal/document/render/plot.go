package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/google/cel-go/cel"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/vlasenkov/chatscribe/internal/document"
)

const (
	formulaBaseWidthMM  = 60.0
	defaultGraphWidthMM = 120.0
	defaultGraphHeight  = 80.0
	graphSamples        = 200
)

// RenderFormulaOrFallback renders the formula as a PNG image. The canvas
// scales with the formula length. On any failure the caller emits the
// textual fallback from FormulaFallback instead; formula rendering is
// best-effort, never fatal to the document.
func RenderFormulaOrFallback(m document.Math) ([]byte, error) {
	if m.Formula == "" {
		return nil, fmt.Errorf("empty formula")
	}

	widthMM, heightMM := formulaCanvasSize(m.Formula)

	p := plot.New()
	p.HideAxes()
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.05, Y: 0.45}},
		Labels: []string{m.Formula},
	})
	if err != nil {
		return nil, fmt.Errorf("formula label: %w", err)
	}
	size := m.MathFontSize
	if size <= 0 {
		size = 14
	}
	labels.TextStyle[0].Font.Size = vg.Points(size)
	p.Add(labels)

	return writePNG(p, widthMM, heightMM)
}

// RenderFunctionGraph plots f(x) over [XMin, XMax] and returns PNG bytes.
// The expression is evaluated with CEL; a compile failure is returned to
// the caller, which degrades the block to its textual placeholder.
func RenderFunctionGraph(g document.FunctionGraph) ([]byte, error) {
	eval, err := compileExpression(g.Function)
	if err != nil {
		return nil, err
	}

	xMin, xMax := g.XMin, g.XMax
	if xMin >= xMax {
		xMin, xMax = -10, 10
	}

	p := plot.New()
	p.Title.Text = g.Title
	p.X.Label.Text = g.XLabel
	p.Y.Label.Text = g.YLabel

	fn := plotter.NewFunction(eval)
	fn.Samples = graphSamples
	fn.Color = color.RGBA{B: 200, A: 255}
	if r, gr, b, ok := ParseHexColor(g.LineColor); ok {
		fn.Color = color.RGBA{R: r, G: gr, B: b, A: 255}
	}
	width := g.LineWidth
	if width <= 0 {
		width = 1
	}
	fn.Width = vg.Points(width)

	if g.ShowGrid {
		p.Add(plotter.NewGrid())
	}
	p.Add(fn)

	p.X.Min, p.X.Max = xMin, xMax
	p.Y.Min, p.Y.Max = sampleRange(eval, xMin, xMax)

	widthMM := g.Width
	if widthMM <= 0 {
		widthMM = defaultGraphWidthMM
	}
	heightMM := g.Height
	if heightMM <= 0 {
		heightMM = defaultGraphHeight
	}
	return writePNG(p, widthMM, heightMM)
}

// formulaCanvasSize scales the canvas with the formula length: short
// formulas get a proportionally narrower image, long ones grow up to
// three times the base width. Height keeps a readable minimum.
func formulaCanvasSize(formula string) (widthMM, heightMM float64) {
	multiplier := math.Min(float64(len(formula))/10.0, 3.0)
	widthMM = formulaBaseWidthMM * multiplier
	heightMM = math.Max(0.2*widthMM, 15)
	return widthMM, heightMM
}

func writePNG(p *plot.Plot, widthMM, heightMM float64) ([]byte, error) {
	writer, err := p.WriterTo(vg.Length(widthMM)*vg.Millimeter, vg.Length(heightMM)*vg.Millimeter, "png")
	if err != nil {
		return nil, fmt.Errorf("plot writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// compileExpression compiles a CEL arithmetic expression of one double
// variable x into an evaluation function. Per-point evaluation errors
// yield zero rather than breaking the plot.
func compileExpression(expr string) (func(float64) float64, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	env, err := cel.NewEnv(cel.Variable("x", cel.DoubleType))
	if err != nil {
		return nil, fmt.Errorf("expression env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}

	return func(x float64) float64 {
		out, _, err := program.Eval(map[string]any{"x": x})
		if err != nil {
			return 0
		}
		switch v := out.Value().(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		default:
			return 0
		}
	}, nil
}

// sampleRange estimates the Y extent of the curve with a margin so the
// plot does not clip the line.
func sampleRange(eval func(float64) float64, xMin, xMax float64) (float64, float64) {
	yMin, yMax := math.Inf(1), math.Inf(-1)
	const samples = 100
	step := (xMax - xMin) / samples
	for i := 0; i <= samples; i++ {
		y := eval(xMin + float64(i)*step)
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		yMin = math.Min(yMin, y)
		yMax = math.Max(yMax, y)
	}
	if yMin > yMax {
		return -1, 1
	}
	if yMin == yMax {
		return yMin - 1, yMax + 1
	}
	margin := (yMax - yMin) * 0.1
	return yMin - margin, yMax + margin
}
