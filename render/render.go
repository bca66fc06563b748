// Package render draws dashboard charts as static SVG or PNG images.
//
// The interactive page draws charts in the browser; this package serves
// the same ChartConfig to clients that want an image (exports, e-mail,
// the render CLI command).
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/theme"
)

// ErrEmptyChart is returned for charts with nothing to draw.
var ErrEmptyChart = errors.New("chart has no data")

// Format is an output image format.
type Format string

// Supported formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name. Empty means SVG.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Extension returns the file extension of f, including the dot.
func (f Format) Extension() string { return "." + string(f) }

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

// Option adjusts image output.
type Option func(*options)

type options struct {
	width  int
	height int
}

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

// Chart draws cfg in the colors of th and writes the image to w.
func Chart(w io.Writer, cfg *engine.ChartConfig, th theme.Definition, format Format, opts ...Option) error {
	if cfg.IsEmpty() {
		return ErrEmptyChart
	}

	o := options{width: 800, height: 450}
	for _, opt := range opts {
		opt(&o)
	}
	s := newStyler(th, cfg.Colors)

	var r interface {
		Render(chart.RendererProvider, io.Writer) error
	}
	switch cfg.ChartType {
	case engine.ChartBar:
		r = barChart(cfg, s, o)
	case engine.ChartHistogram:
		r = histogramChart(cfg, s, o)
	case engine.ChartPie:
		pie, err := pieChart(cfg, s, o)
		if err != nil {
			return err
		}
		r = pie
	case engine.ChartSunburst:
		pie, err := sunburstChart(cfg, s, o)
		if err != nil {
			return err
		}
		r = pie
	case engine.ChartScatter:
		r = scatterChart(cfg, s, o)
	default:
		return fmt.Errorf("unsupported chart type %q", cfg.ChartType)
	}

	if err := r.Render(format.provider(), w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", cfg.ChartType, err)
	}
	return nil
}

// ============================================================================
// CHART KINDS
// ============================================================================

func barChart(cfg *engine.ChartConfig, s styler, o options) chart.BarChart {
	var bars []chart.Value
	for _, p := range cfg.Series[0].Data {
		bars = append(bars, chart.Value{Label: p.Label, Value: p.Value})
	}
	return s.bars(cfg.Title, bars, s.color(0), o)
}

func histogramChart(cfg *engine.ChartConfig, s styler, o options) chart.BarChart {
	bars := make([]chart.Value, 0, len(cfg.Bins))
	for _, b := range cfg.Bins {
		bars = append(bars, chart.Value{
			Label: formatEdge(b.Start) + "-" + formatEdge(b.End),
			Value: float64(b.Count),
		})
	}
	bc := s.bars(cfg.Title, bars, s.color(0), o)
	bc.BarSpacing = 2
	return bc
}

func pieChart(cfg *engine.ChartConfig, s styler, o options) (chart.PieChart, error) {
	var values []chart.Value
	for i, p := range cfg.Series[0].Data {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%s)", p.Label, formatEdge(p.Value)),
			Value: p.Value,
			Style: chart.Style{FillColor: s.color(i)},
		})
	}
	return s.pie(cfg.Title, values, o)
}

// sunburstChart draws the innermost ring only; a pie keeps the
// proportions between categories.
func sunburstChart(cfg *engine.ChartConfig, s styler, o options) (chart.PieChart, error) {
	var values []chart.Value
	for _, n := range cfg.Nodes {
		if n.Parent != "" {
			continue
		}
		values = append(values, chart.Value{
			Label: n.Label,
			Value: n.Value,
			Style: chart.Style{FillColor: hexColor(n.Color, s.fg)},
		})
	}
	return s.pie(cfg.Title, values, o)
}

func scatterChart(cfg *engine.ChartConfig, s styler, o options) chart.Chart {
	var xs, ys []float64
	var series []chart.Series
	for i, cs := range cfg.Series {
		if len(cs.Points) == 0 {
			continue
		}
		sx := make([]float64, len(cs.Points))
		sy := make([]float64, len(cs.Points))
		sizes := make([]float64, len(cs.Points))
		for j, p := range cs.Points {
			sx[j], sy[j], sizes[j] = p.X, p.Y, p.Size
		}
		xs = append(xs, sx...)
		ys = append(ys, sy...)

		col := hexColor(cs.Color, s.color(i))
		style := pointStyle(col)
		style.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
			// Marker sizes are diameters; dots take a radius. Keep
			// zero-stock rows visible as a hairline dot.
			return math.Max(sizes[index]/2, 1)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    cs.Name,
			XValues: sx,
			YValues: sy,
			Style:   style,
		})
	}

	ch := chart.Chart{
		Title:      cfg.Title,
		TitleStyle: chart.Style{FontColor: s.fg},
		Width:      o.width,
		Height:     o.height,
		Background: chart.Style{FillColor: s.bg, Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Canvas:     chart.Style{FillColor: s.bg},
		XAxis:      chart.XAxis{Name: cfg.XAxis, NameStyle: s.axis(), Style: s.axis(), Range: paddedRange(xs)},
		YAxis:      chart.YAxis{Name: cfg.YAxis, NameStyle: s.axis(), Style: s.axis(), Range: paddedRange(ys)},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{FillColor: s.bg, FontColor: s.fg})}
	return ch
}

// ============================================================================
// STYLING
// ============================================================================

type styler struct {
	bg, fg, grid drawing.Color
	palette      []drawing.Color
}

func newStyler(th theme.Definition, colors []string) styler {
	fg := hexColor(th.Foreground, drawing.ColorBlack)
	if len(colors) == 0 {
		colors = th.Palette
	}
	palette := make([]drawing.Color, 0, len(colors))
	for _, c := range colors {
		palette = append(palette, hexColor(c, fg))
	}
	return styler{
		bg:      hexColor(th.Background, drawing.ColorWhite),
		fg:      fg,
		grid:    hexColor(th.GridLine, fg),
		palette: palette,
	}
}

func (s styler) color(i int) drawing.Color {
	if len(s.palette) == 0 {
		return s.fg
	}
	return s.palette[i%len(s.palette)]
}

func (s styler) axis() chart.Style {
	return chart.Style{FontColor: s.fg, StrokeColor: s.grid}
}

func (s styler) bars(title string, bars []chart.Value, col drawing.Color, o options) chart.BarChart {
	lo, hi := 0.0, 0.0
	for i := range bars {
		bars[i].Style = chart.Style{FillColor: col, StrokeColor: col}
		lo = math.Min(lo, bars[i].Value)
		hi = math.Max(hi, bars[i].Value)
	}
	if hi == lo {
		hi = lo + 1
	}

	barWidth := 40
	if n := len(bars); n > 0 && (o.width-80)/n < barWidth {
		barWidth = max((o.width-80)/n-2, 1)
	}

	return chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: s.fg},
		Width:      o.width,
		Height:     o.height,
		BarWidth:   barWidth,
		Background: chart.Style{FillColor: s.bg, Padding: chart.Box{Top: 40}},
		Canvas:     chart.Style{FillColor: s.bg},
		XAxis:      s.axis(),
		YAxis: chart.YAxis{
			Style: s.axis(),
			Range: &chart.ContinuousRange{Min: lo, Max: hi * 1.05},
		},
		Bars: bars,
	}
}

func (s styler) pie(title string, values []chart.Value, o options) (chart.PieChart, error) {
	var total float64
	for _, v := range values {
		total += v.Value
	}
	if total <= 0 {
		return chart.PieChart{}, ErrEmptyChart
	}
	return chart.PieChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: s.fg},
		Width:      o.width,
		Height:     o.height,
		Background: chart.Style{FillColor: s.bg},
		Canvas:     chart.Style{FillColor: s.bg},
		SliceStyle: chart.Style{FontColor: s.fg, StrokeColor: s.bg},
		Values:     values,
	}, nil
}

// noStroke is fully transparent. The zero Color means "unset" to go-chart,
// which would fall back to a default stroke.
var noStroke = drawing.Color{R: 255, G: 255, B: 255, A: 0}

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		StrokeColor: noStroke,
		DotWidth:    4,
		DotColor:    col,
	}
}

// paddedRange spans values with 5% headroom on both sides.
func paddedRange(values []float64) *chart.ContinuousRange {
	if len(values) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 0.5)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// hexColor parses "#RRGGBB" or "RRGGBB", returning fallback for anything else.
func hexColor(hex string, fallback drawing.Color) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return fallback
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return fallback
	}
	return drawing.ColorFromHex(hex)
}

func formatEdge(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
