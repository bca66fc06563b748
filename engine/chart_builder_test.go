package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/dashboard/theme"
)

// ============================================================================
// CHART BUILDER TESTS
// ============================================================================

var lightTheme = theme.ForFlag(false)

func TestBuildSunburstHierarchy(t *testing.T) {
	chart := BuildSunburst(catalog().View(), lightTheme)

	assert.Equal(t, ChartSunburst, chart.ChartType)
	assert.Equal(t, TitleSunburst, chart.Title)

	ids := make([]string, 0, len(chart.Nodes))
	for _, n := range chart.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{
		"Electronics",
		"Electronics/Lopez",
		"Electronics/Lopez/Black",
		"Electronics/Garner",
		"Electronics/Garner/Black",
		"Furniture",
		"Furniture/Mendez",
		"Furniture/Mendez/White",
		"Kitchen",
		"Kitchen/Cuevas",
		"Kitchen/Cuevas/Red",
		"Kitchen/Cuevas/Blue",
	}, ids, "zero-stock Silver is omitted")

	root := chart.Nodes[0]
	assert.Equal(t, "", root.Parent)
	assert.Equal(t, 0, root.Depth)
	assert.Equal(t, 796.0, root.Value)

	leaf := chart.Nodes[2]
	assert.Equal(t, "Black", leaf.Label)
	assert.Equal(t, "Electronics/Lopez", leaf.Parent)
	assert.Equal(t, 2, leaf.Depth)
	assert.Equal(t, root.Color, leaf.Color, "children inherit the root color")
	assert.Len(t, chart.Colors, 3)
}

func TestBuildSunburstLeavesSumToPositiveStock(t *testing.T) {
	view := catalog().View()
	chart := BuildSunburst(view, lightTheme)

	var leaves float64
	for _, n := range chart.Nodes {
		assert.Greater(t, n.Value, 0.0, n.ID)
		if n.Depth == len(SunburstPath)-1 {
			leaves += n.Value
		}
	}

	var positive float64
	for i := 0; i < view.Len(); i++ {
		if s := view.Measure(i, FieldStock); s > 0 {
			positive += s
		}
	}
	assert.Equal(t, positive, leaves)
}

func TestBuildSunburstDropsNonPositiveStock(t *testing.T) {
	view := NewSliceView([]Record{
		product("Toys", "Acme", "Red", "in_stock", 10, 0),
		product("Toys", "Acme", "Blue", "in_stock", 10, -3),
	})
	chart := BuildSunburst(view, lightTheme)
	assert.True(t, chart.IsEmpty())
	assert.Empty(t, chart.Nodes)
}

func TestBuildBarMeanPriceByCategory(t *testing.T) {
	chart := BuildBar(catalog().View(), lightTheme)

	assert.Equal(t, FieldCategory, chart.XAxis)
	assert.Equal(t, FieldPrice, chart.YAxis)
	require.Len(t, chart.Series, 1)

	data := chart.Series[0].Data
	require.Len(t, data, 3)
	assert.Equal(t, "Electronics", data[0].Label)
	assert.InDelta(t, (71.5+120+265)/3, data[0].Value, 1e-9)
	assert.Equal(t, "Furniture", data[1].Label)
	assert.InDelta(t, 249.995, data[1].Value, 1e-9)
	assert.Equal(t, "Kitchen", data[2].Label)
	assert.InDelta(t, 79.125, data[2].Value, 1e-9)
}

func TestBuildPieCountsAvailability(t *testing.T) {
	chart := BuildPie(catalog().View(), lightTheme)

	require.Len(t, chart.Series, 1)
	assert.Equal(t, []ChartPoint{
		{Label: "in_stock", Value: 4},
		{Label: "out_of_stock", Value: 1},
		{Label: "discontinued", Value: 1},
		{Label: "pre_order", Value: 1},
	}, chart.Series[0].Data)
	assert.Len(t, chart.Colors, 4)
	assert.False(t, chart.ShowGrid)
}

func TestBuildScatterSeriesPerCategory(t *testing.T) {
	chart := BuildScatter(catalog().View(), lightTheme)

	require.Len(t, chart.Series, 3)
	assert.Equal(t, "Electronics", chart.Series[0].Name)
	assert.Equal(t, "Furniture", chart.Series[1].Name)
	assert.Equal(t, "Kitchen", chart.Series[2].Name)
	assert.Equal(t, lightTheme.Palette[0], chart.Series[0].Color)
	assert.Equal(t, lightTheme.Palette[1], chart.Series[1].Color)

	electronics := chart.Series[0].Points
	require.Len(t, electronics, 3)

	first := electronics[0]
	assert.Equal(t, 71.5, first.X)
	assert.Equal(t, 22.0, first.Y)
	assert.InDelta(t, DefaultMaxMarkerSize*math.Sqrt(22.0/774.0), first.Size, 1e-9)
	assert.Equal(t, []HoverField{
		{Label: FieldBrand, Value: "Lopez"},
		{Label: FieldColor, Value: "Black"},
	}, first.Hover)

	assert.Equal(t, 0.0, electronics[1].Size, "zero stock has no marker")
	assert.Equal(t, DefaultMaxMarkerSize, electronics[2].Size)

	points := 0
	for _, s := range chart.Series {
		points += len(s.Points)
	}
	assert.Equal(t, 7, points)
}

func TestBuildHistogramCountsEveryRow(t *testing.T) {
	chart := BuildHistogram(catalog().View(), lightTheme)

	require.Len(t, chart.Bins, DefaultHistogramBins)
	assert.Equal(t, 0.0, chart.Bins[0].Start)
	assert.Equal(t, 774.0, chart.Bins[len(chart.Bins)-1].End)

	total := 0
	for _, b := range chart.Bins {
		total += b.Count
	}
	assert.Equal(t, 7, total)
	assert.Equal(t, 1, chart.Bins[len(chart.Bins)-1].Count, "max value lands in the closed last bin")
}

func TestHistogramBins(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, HistogramBins(nil, 20))
	})

	t.Run("one bin per value", func(t *testing.T) {
		values := make([]float64, 20)
		for i := range values {
			values[i] = float64(i)
		}
		bins := HistogramBins(values, 20)
		require.Len(t, bins, 20)
		for i, b := range bins {
			assert.Equal(t, 1, b.Count, "bin %d", i)
		}
	})

	t.Run("single distinct value", func(t *testing.T) {
		bins := HistogramBins([]float64{5, 5, 5}, 20)
		require.Len(t, bins, 20)
		assert.Equal(t, 4.5, bins[0].Start)
		assert.Equal(t, 5.5, bins[19].End)

		total := 0
		for _, b := range bins {
			total += b.Count
		}
		assert.Equal(t, 3, total)
	})

	t.Run("edges are half open", func(t *testing.T) {
		bins := HistogramBins([]float64{0, 5, 10}, 2)
		require.Len(t, bins, 2)
		assert.Equal(t, 1, bins[0].Count)
		assert.Equal(t, 2, bins[1].Count)
	})
}

func TestMarkerSize(t *testing.T) {
	assert.Equal(t, 0.0, markerSize(0, 100, 20))
	assert.Equal(t, 0.0, markerSize(-5, 100, 20))
	assert.Equal(t, 0.0, markerSize(5, 0, 20))
	assert.Equal(t, 20.0, markerSize(100, 100, 20))
	assert.Equal(t, 10.0, markerSize(25, 100, 20))
}

func TestBuildersOnEmptyView(t *testing.T) {
	view := NewSliceView(nil)
	for _, chart := range []*ChartConfig{
		BuildSunburst(view, lightTheme),
		BuildBar(view, lightTheme),
		BuildPie(view, lightTheme),
		BuildScatter(view, lightTheme),
		BuildHistogram(view, lightTheme),
	} {
		require.NotNil(t, chart)
		assert.True(t, chart.IsEmpty(), chart.ChartType)
		assert.Equal(t, "plotly_white", chart.Template, chart.ChartType)
	}
}
