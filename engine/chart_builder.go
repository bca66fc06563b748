package engine

import (
	"math"
	"strings"

	"github.com/spektr-org/dashboard/theme"
)

// ============================================================================
// CHART BUILDER - Produces ChartConfig from a filtered RecordView
// ============================================================================
// One builder per dashboard chart. Every builder:
//   - reads only through RecordView (zero-copy)
//   - returns a non-nil ChartConfig, empty when the view is empty
//   - takes its template and palette from the theme, never its data
// ============================================================================

// Chart titles shown above each panel.
const (
	TitleSunburst  = "Sunburst: Category > Brand > Color"
	TitleBar       = "Average Price by Category"
	TitlePie       = "Availability Distribution"
	TitleScatter   = "Price vs. Stock"
	TitleHistogram = "Stock Distribution"
)

// PathSeparator joins sunburst labels into node ids.
const PathSeparator = "/"

// SunburstPath is the hierarchy the sunburst drills through.
var SunburstPath = []string{FieldCategory, FieldBrand, FieldColor}

// newChart returns an empty chart styled for th.
func newChart(chartType, title string, th theme.Definition) *ChartConfig {
	return &ChartConfig{
		ChartType:  chartType,
		Title:      title,
		Template:   th.ChartTemplate,
		Series:     []ChartSeries{},
		ShowLegend: true,
		ShowGrid:   chartType != ChartPie && chartType != ChartSunburst,
	}
}

// ============================================================================
// SUNBURST - Category → Brand → Color, sized by sum of Stock
// ============================================================================

// BuildSunburst flattens the Category → Brand → Color hierarchy into nodes.
// Rows with Stock <= 0 contribute nothing, so every emitted node is positive.
func BuildSunburst(view RecordView, th theme.Definition, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)
	chart := newChart(ChartSunburst, TitleSunburst, th)
	chart.ShowLegend = false

	positive := FilterMeasure(view, FieldStock, func(v float64) bool { return v > 0 })
	groups := GroupAndAggregate(positive, SunburstPath, FieldStock, AggSum, SortNone)

	palette := paletteFor(th, cfg)
	for i, g := range groups {
		color := paletteColor(palette, i, th.Foreground)
		chart.Nodes = appendNodes(chart.Nodes, g, "", 0, color)
		chart.Colors = append(chart.Colors, color)
	}
	return chart
}

// appendNodes emits g and its descendants depth-first. Children inherit
// the color of their root segment.
func appendNodes(nodes []SunburstNode, g Group, parent string, depth int, color string) []SunburstNode {
	if g.Value <= 0 {
		return nodes
	}
	id := g.Key
	if parent != "" {
		id = strings.Join([]string{parent, g.Key}, PathSeparator)
	}
	nodes = append(nodes, SunburstNode{
		ID:     id,
		Label:  g.Label,
		Parent: parent,
		Value:  g.Value,
		Depth:  depth,
		Color:  color,
	})
	for _, sg := range g.SubGroups {
		nodes = appendNodes(nodes, sg, id, depth+1, color)
	}
	return nodes
}

// ============================================================================
// BAR - mean Price per Category
// ============================================================================

// BuildBar produces one bar per Category, sorted by label.
func BuildBar(view RecordView, th theme.Definition, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)
	chart := newChart(ChartBar, TitleBar, th)
	chart.XAxis = FieldCategory
	chart.YAxis = FieldPrice
	chart.ShowLegend = false

	groups := GroupAndAggregate(view, []string{FieldCategory}, FieldPrice, AggAvg, SortLabelAsc)
	if len(groups) == 0 {
		return chart
	}

	color := paletteColor(paletteFor(th, cfg), 0, th.Foreground)
	chart.Series = []ChartSeries{{
		Name:  FieldPrice,
		Data:  groupPoints(groups),
		Color: color,
	}}
	chart.Colors = []string{color}
	return chart
}

// ============================================================================
// PIE - row count per Availability
// ============================================================================

// BuildPie produces one slice per Availability value, largest first.
func BuildPie(view RecordView, th theme.Definition, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)
	chart := newChart(ChartPie, TitlePie, th)

	groups := GroupAndAggregate(view, []string{FieldAvailability}, "", AggCount, SortValueDesc)
	if len(groups) == 0 {
		return chart
	}

	chart.Series = []ChartSeries{{
		Name: FieldAvailability,
		Data: groupPoints(groups),
	}}
	chart.Colors = assignColors(paletteFor(th, cfg), len(groups), th.Foreground)
	return chart
}

// ============================================================================
// SCATTER - Price vs Stock, one series per Category
// ============================================================================

// BuildScatter plots every row at (Price, Stock). Marker area grows
// linearly with Stock; the largest Stock gets cfg.MaxMarkerSize.
func BuildScatter(view RecordView, th theme.Definition, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)
	chart := newChart(ChartScatter, TitleScatter, th)
	chart.XAxis = FieldPrice
	chart.YAxis = FieldStock

	if view.Len() == 0 {
		return chart
	}

	maxStock := MeasureStats(view, FieldStock).Max
	palette := paletteFor(th, cfg)

	groups := GroupAndAggregate(view, []string{FieldCategory}, FieldStock, AggCount, SortNone)
	for i, g := range groups {
		points := make([]ScatterPoint, 0, g.View.Len())
		for j := 0; j < g.View.Len(); j++ {
			stock := g.View.Measure(j, FieldStock)
			points = append(points, ScatterPoint{
				X:    g.View.Measure(j, FieldPrice),
				Y:    stock,
				Size: markerSize(stock, maxStock, cfg.MaxMarkerSize),
				Hover: []HoverField{
					{Label: FieldBrand, Value: g.View.Dimension(j, FieldBrand)},
					{Label: FieldColor, Value: g.View.Dimension(j, FieldColor)},
				},
			})
		}
		color := paletteColor(palette, i, th.Foreground)
		chart.Series = append(chart.Series, ChartSeries{
			Name:   g.Label,
			Points: points,
			Color:  color,
		})
		chart.Colors = append(chart.Colors, color)
	}
	return chart
}

// markerSize scales diameter by the square root of stock so that area,
// not radius, tracks the value.
func markerSize(stock, maxStock, maxSize float64) float64 {
	if stock <= 0 || maxStock <= 0 {
		return 0
	}
	return maxSize * math.Sqrt(stock/maxStock)
}

// ============================================================================
// HISTOGRAM - Stock in equal-width bins
// ============================================================================

// BuildHistogram bins Stock into cfg.HistogramBins equal-width bins over the
// view's [min, max]. Bins are [Start, End) except the last, which is closed.
func BuildHistogram(view RecordView, th theme.Definition, opts ...Option) *ChartConfig {
	cfg := applyOptions(opts)
	chart := newChart(ChartHistogram, TitleHistogram, th)
	chart.XAxis = FieldStock
	chart.YAxis = "Count"
	chart.ShowLegend = false

	values := make([]float64, view.Len())
	for i := range values {
		values[i] = view.Measure(i, FieldStock)
	}
	chart.Bins = HistogramBins(values, cfg.HistogramBins)
	if len(chart.Bins) > 0 {
		chart.Colors = []string{paletteColor(paletteFor(th, cfg), 0, th.Foreground)}
	}
	return chart
}

// HistogramBins counts values into n equal-width bins spanning their range.
// A single distinct value is centered in a span of width 1.
func HistogramBins(values []float64, n int) []HistogramBin {
	if len(values) == 0 || n < 1 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	width := (hi - lo) / float64(n)
	bins := make([]HistogramBin, n)
	for i := range bins {
		bins[i].Start = lo + float64(i)*width
		bins[i].End = lo + float64(i+1)*width
	}
	bins[n-1].End = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		if idx < 0 {
			idx = 0
		}
		// Division can land a value on the wrong side of an edge.
		if idx+1 < n && v >= bins[idx+1].Start {
			idx++
		} else if idx > 0 && v < bins[idx].Start {
			idx--
		}
		bins[idx].Count++
	}
	return bins
}

// ============================================================================
// HELPERS
// ============================================================================

func groupPoints(groups []Group) []ChartPoint {
	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{Label: g.Label, Value: g.Value})
	}
	return points
}

func paletteFor(th theme.Definition, cfg *config) []string {
	if len(cfg.Palette) > 0 {
		return cfg.Palette
	}
	return th.Palette
}

func paletteColor(palette []string, i int, fallback string) string {
	if len(palette) == 0 {
		return fallback
	}
	return palette[i%len(palette)]
}

func assignColors(palette []string, count int, fallback string) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = paletteColor(palette, i, fallback)
	}
	return colors
}
