package engine

import (
	"maps"
	"slices"
)

// ============================================================================
// FILTERS - Row selection via RecordView
// ============================================================================
// Dimension filters compile to one allowed-set per dimension, checked in
// dimension-name order. Matching is exact: "Electronics" does not match
// "electronics". Every result is a SubView or the input view itself.
// ============================================================================

// Where returns the rows of view for which keep(i) is true. When every row
// is kept, view itself is returned.
func Where(view RecordView, keep func(i int) bool) RecordView {
	n := view.Len()
	var indices []int
	for i := 0; i < n; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	if len(indices) == n {
		return view
	}
	return newSubView(view, indices)
}

// ApplyFilters returns the rows matching every dimension filter.
// Values within a dimension are OR-combined, dimensions AND-combined.
// A filter with no values does not restrict anything.
func ApplyFilters(view RecordView, filters Filters) RecordView {
	checks := compileFilters(filters)
	if len(checks) == 0 {
		return view
	}
	return Where(view, func(i int) bool {
		for _, c := range checks {
			if _, ok := c.allowed[view.Dimension(i, c.dimension)]; !ok {
				return false
			}
		}
		return true
	})
}

// FilterMeasure returns the rows whose measure satisfies keep.
func FilterMeasure(view RecordView, measure string, keep func(float64) bool) RecordView {
	return Where(view, func(i int) bool {
		return keep(view.Measure(i, measure))
	})
}

type dimensionCheck struct {
	dimension string
	allowed   map[string]struct{}
}

func compileFilters(filters Filters) []dimensionCheck {
	var checks []dimensionCheck
	for _, dim := range slices.Sorted(maps.Keys(filters.Dimensions)) {
		values := filters.Dimensions[dim]
		if len(values) == 0 {
			continue
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		checks = append(checks, dimensionCheck{dimension: dim, allowed: allowed})
	}
	return checks
}
