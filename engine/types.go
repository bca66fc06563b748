package engine

// ============================================================================
// DASHBOARD ENGINE TYPES
// ============================================================================
// Record       - generic data row (dimension/measure maps)
// Filters      - dimension → allowed values
// Selection    - the user's filter + theme state, input to Build
// Group        - intermediate aggregation tree
// ChartConfig  - render-ready chart spec
// Grid         - render-ready data grid spec
// ViewModel    - everything the page binds to, recomputed on every change
// ============================================================================

// Field names the dashboard groups and measures on.
const (
	FieldCategory     = "Category"
	FieldBrand        = "Brand"
	FieldColor        = "Color"
	FieldPrice        = "Price"
	FieldStock        = "Stock"
	FieldAvailability = "Availability"
)

// RequiredFields lists the columns every dataset must carry.
var RequiredFields = []string{
	FieldCategory, FieldBrand, FieldColor, FieldPrice, FieldStock, FieldAvailability,
}

// ============================================================================
// RECORD - Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// FILTERS & SELECTION
// ============================================================================

// Filters define which records to include.
// Keys are dimension names. Values are allowed values.
// OR within a dimension, AND across dimensions. Empty = all.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions"`
}

// Selection is the page state a view model is computed from.
// A nil or empty Categories means no category filter.
type Selection struct {
	Categories []string `json:"categories"`
	Dark       bool     `json:"dark"`
}

// Filters converts the category selection to dimension filters.
func (s Selection) Filters() Filters {
	if len(s.Categories) == 0 {
		return Filters{}
	}
	return Filters{Dimensions: map[string][]string{FieldCategory: s.Categories}}
}

// ============================================================================
// GROUP - Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
// Builders convert these into ChartConfig.
type Group struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// CHART TYPES
// ============================================================================

// Chart types produced by the builders.
const (
	ChartSunburst  = "sunburst"
	ChartBar       = "bar"
	ChartPie       = "pie"
	ChartScatter   = "scatter"
	ChartHistogram = "histogram"
)

// ChartConfig defines how to render a chart.
// Series carries bar/pie/scatter data; Nodes and Bins are set only for
// sunburst and histogram charts respectively.
type ChartConfig struct {
	ChartType  string         `json:"chartType"`
	Title      string         `json:"title"`
	Template   string         `json:"template"`
	XAxis      string         `json:"xAxis,omitempty"`
	YAxis      string         `json:"yAxis,omitempty"`
	Series     []ChartSeries  `json:"series"`
	Nodes      []SunburstNode `json:"nodes,omitempty"`
	Bins       []HistogramBin `json:"bins,omitempty"`
	Colors     []string       `json:"colors,omitempty"`
	ShowLegend bool           `json:"showLegend"`
	ShowGrid   bool           `json:"showGrid"`
}

// IsEmpty reports whether the chart has nothing to draw.
func (c *ChartConfig) IsEmpty() bool {
	if c == nil {
		return true
	}
	if len(c.Nodes) > 0 || len(c.Bins) > 0 {
		return false
	}
	for _, s := range c.Series {
		if len(s.Data) > 0 || len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name   string         `json:"name"`
	Data   []ChartPoint   `json:"data,omitempty"`
	Points []ScatterPoint `json:"points,omitempty"`
	Color  string         `json:"color,omitempty"`
}

// ChartPoint represents a single labelled value (a bar or a slice).
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ScatterPoint is one record plotted on two measures.
// Size is a marker diameter in pixels.
type ScatterPoint struct {
	X     float64      `json:"x"`
	Y     float64      `json:"y"`
	Size  float64      `json:"size"`
	Hover []HoverField `json:"hover,omitempty"`
}

// HoverField is an extra annotation shown on hover, kept in display order.
type HoverField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SunburstNode is one segment of a sunburst. Parent is empty for the
// innermost ring; ID is the "/"-joined path from the root.
type SunburstNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Parent string  `json:"parent"`
	Value  float64 `json:"value"`
	Depth  int     `json:"depth"`
	Color  string  `json:"color,omitempty"`
}

// HistogramBin counts values in [Start, End). The last bin also includes End.
type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// ============================================================================
// GRID TYPES
// ============================================================================

// ColumnDef defines one data grid column.
type ColumnDef struct {
	HeaderName string `json:"headerName"`
	Field      string `json:"field"`
	Sortable   bool   `json:"sortable"`
	Filter     bool   `json:"filter"`
	Type       string `json:"type,omitempty"` // "numericColumn" for right-aligned numbers
}

// Grid is the render-ready data grid.
type Grid struct {
	ColumnDefs []ColumnDef      `json:"columnDefs"`
	RowData    []map[string]any `json:"rowData"`
	ClassName  string           `json:"className"`
}

// ============================================================================
// VIEW MODEL
// ============================================================================

// ViewModel is the complete derived output for one Selection.
type ViewModel struct {
	Selection Selection    `json:"selection"`
	Theme     string       `json:"theme"`
	TotalRows int          `json:"totalRows"`
	RowCount  int          `json:"rowCount"`
	Summary   Summary      `json:"summary"`
	Sunburst  *ChartConfig `json:"sunburst"`
	Bar       *ChartConfig `json:"bar"`
	Pie       *ChartConfig `json:"pie"`
	Scatter   *ChartConfig `json:"scatter"`
	Histogram *ChartConfig `json:"histogram"`
	Grid      Grid         `json:"grid"`
}

// Chart returns the chart with the given type, or nil.
func (vm *ViewModel) Chart(chartType string) *ChartConfig {
	switch chartType {
	case ChartSunburst:
		return vm.Sunburst
	case ChartBar:
		return vm.Bar
	case ChartPie:
		return vm.Pie
	case ChartScatter:
		return vm.Scatter
	case ChartHistogram:
		return vm.Histogram
	}
	return nil
}

// ChartTypes lists the dashboard charts in page order.
var ChartTypes = []string{ChartBar, ChartPie, ChartScatter, ChartSunburst, ChartHistogram}
