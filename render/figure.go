package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Mark is a highlighted point, typically a critical point or an extremum.
type Mark struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Figure is everything needed to draw one chart.
type Figure struct {
	Title    string
	Variable string
	Series   []Series
	Marks    []Mark
}

// Format selects the output encoding of a figure.
type Format string

const (
	PNG  Format = "png"
	SVG  Format = "svg"
	HTML Format = "html"
)

// ParseFormat accepts png, svg and html in any case, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case PNG, SVG, HTML:
		return f, nil
	case "htm":
		return HTML, nil
	}
	return "", fmt.Errorf("unsupported plot format %q", s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ContentType is the MIME type of the encoded figure.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case SVG:
		return "image/svg+xml"
	}
	return "text/html; charset=utf-8"
}

const (
	figWidth  = 8 * vg.Inch
	figHeight = 5 * vg.Inch
)

// Render encodes the figure to w.
func (fig Figure) Render(w io.Writer, format Format) error {
	switch format {
	case PNG, SVG:
		return fig.renderStatic(w, string(format))
	case HTML:
		return fig.renderHTML(w)
	}
	return fmt.Errorf("unsupported plot format %q", format)
}

// WriteFile renders the figure into path, choosing the format from the
// extension.
func (fig Figure) WriteFile(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := fig.Render(&buf, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (fig Figure) xLabel() string {
	if fig.Variable == "" {
		return "x"
	}
	return fig.Variable
}

// renderStatic draws every series with gonum/plot. The real part is a solid
// line and the imaginary part, when present, a dashed one in the same color.
// Undefined samples break a line into separate segments.
func (fig Figure) renderStatic(w io.Writer, format string) error {
	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.xLabel()
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, s := range fig.Series {
		if err := addLines(p, s.Label+" (re)", s.X, s.Re, i, nil); err != nil {
			return &PlotError{Label: s.Label, Err: err}
		}
		if s.HasImag() {
			dashes := []vg.Length{vg.Points(4), vg.Points(3)}
			if err := addLines(p, s.Label+" (im)", s.X, s.Im, i, dashes); err != nil {
				return &PlotError{Label: s.Label, Err: err}
			}
		}
	}

	if len(fig.Marks) > 0 {
		pts := make(plotter.XYs, 0, len(fig.Marks))
		for _, m := range fig.Marks {
			if finite(m.X) && finite(m.Y) {
				pts = append(pts, plotter.XY{X: m.X, Y: m.Y})
			}
		}
		if len(pts) > 0 {
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return &PlotError{Label: "marks", Err: err}
			}
			sc.GlyphStyle.Shape = draw.CrossGlyph{}
			sc.GlyphStyle.Radius = vg.Points(4)
			p.Add(sc)
			p.Legend.Add(fig.Marks[0].Label, sc)
		}
	}

	wt, err := p.WriterTo(figWidth, figHeight, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func addLines(p *plot.Plot, label string, xs, ys []float64, idx int, dashes []vg.Length) error {
	for n, seg := range segments(ys) {
		pts := make(plotter.XYs, 0, seg[1]-seg[0])
		for j := seg[0]; j < seg[1]; j++ {
			pts = append(pts, plotter.XY{X: xs[j], Y: ys[j]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(idx)
		line.Width = vg.Points(1)
		line.Dashes = dashes
		p.Add(line)
		if n == 0 {
			p.Legend.Add(label, line)
		}
	}
	return nil
}

// renderHTML draws the figure as an interactive go-echarts line chart.
// Undefined samples are written as "-", which echarts treats as a gap.
func (fig Figure) renderHTML(w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: fig.Title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: fig.xLabel(), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	noSymbol := charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
	for _, s := range fig.Series {
		line.AddSeries(s.Label+" (re)", lineData(s.X, s.Re), noSymbol)
		if s.HasImag() {
			line.AddSeries(s.Label+" (im)", lineData(s.X, s.Im), noSymbol,
				charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
		}
	}

	if len(fig.Marks) > 0 {
		pts := make([]opts.ScatterData, 0, len(fig.Marks))
		for _, m := range fig.Marks {
			if finite(m.X) && finite(m.Y) {
				pts = append(pts, opts.ScatterData{Value: []interface{}{m.X, m.Y}, Name: m.Label})
			}
		}
		scatter := charts.NewScatter()
		scatter.AddSeries(fig.Marks[0].Label, pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
		line.Overlap(scatter)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func lineData(xs, ys []float64) []opts.LineData {
	out := make([]opts.LineData, len(xs))
	for i := range xs {
		var y interface{} = ys[i]
		if !finite(ys[i]) {
			y = "-"
		}
		out[i] = opts.LineData{Value: []interface{}{xs[i], y}}
	}
	return out
}
