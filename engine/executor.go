package engine

import (
	"log/slog"

	"github.com/spektr-org/dashboard/schema"
	"github.com/spektr-org/dashboard/theme"
)

// ============================================================================
// EXECUTOR - View Model Builder
// ============================================================================
// Entry point: Build(ds, sel, opts...)
//
// Pipeline:
//   1. Apply the category selection → SubView
//   2. Sunburst, bar, pie, scatter, histogram from the SubView
//   3. Grid from the dataset columns + SubView
//   4. Theme identifiers from the dark flag
//
// Build is pure: it never mutates the dataset and keeps no state between
// calls, so it is safe to call from any number of goroutines.
// Zero data copy - the engine reads consumer data through RecordView.
// ============================================================================

// Dataset is what Build needs from a loaded table.
type Dataset interface {
	View() RecordView
	Columns() []schema.Column
}

// Build computes the complete view model for one selection.
//
// Options:
//   - WithHistogramBins(n) - number of Stock bins (default 20)
//   - WithMaxMarkerSize(px) - scatter marker diameter for the largest Stock
//   - WithPalette(colors) - overrides the theme's series colors
func Build(ds Dataset, sel Selection, opts ...Option) *ViewModel {
	view := ds.View()
	th := theme.ForFlag(sel.Dark)

	// 1. Apply filters → SubView (zero-copy)
	filtered := ApplyFilters(view, sel.Filters())

	slog.Debug("Building view model",
		"categories", sel.Categories,
		"dark", sel.Dark,
		"rows", filtered.Len(),
		"total", view.Len())

	// 2-4. Charts, grid, theme
	return &ViewModel{
		Selection: sel,
		Theme:     th.ID,
		TotalRows: view.Len(),
		RowCount:  filtered.Len(),
		Summary:   BuildSummary(filtered, view.Len()),
		Sunburst:  BuildSunburst(filtered, th, opts...),
		Bar:       BuildBar(filtered, th, opts...),
		Pie:       BuildPie(filtered, th, opts...),
		Scatter:   BuildScatter(filtered, th, opts...),
		Histogram: BuildHistogram(filtered, th, opts...),
		Grid:      BuildGrid(ds.Columns(), filtered, th),
	}
}

// Categories lists the filter options: distinct categories in dataset order.
func Categories(ds Dataset) []string {
	return UniqueValues(ds.View(), FieldCategory)
}
