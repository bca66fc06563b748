package engine

import (
	"cmp"
	"slices"
	"strings"
)

// ============================================================================
// AGGREGATORS - Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// Each grouping level is one pass over its parent view; every group holds a
// SubView of its rows. Group order is first appearance unless a sort mode
// says otherwise.
// ============================================================================

// Aggregation names a reducer over one measure.
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggCount Aggregation = "count"
	AggAvg   Aggregation = "avg"
	AggMax   Aggregation = "max"
	AggMin   Aggregation = "min"
)

// SortMode orders top-level groups.
type SortMode string

const (
	SortNone      SortMode = ""
	SortValueDesc SortMode = "value_desc"
	SortValueAsc  SortMode = "value_asc"
	SortLabelAsc  SortMode = "label_asc"
	SortLabelDesc SortMode = "label_desc"
)

// GroupAndAggregate groups view along groupBy, reduces measure with agg in
// every group and sorts the top level.
// Every groupBy level after the first becomes SubGroups of the previous one.
// With no groupBy the whole view is one "all" group.
func GroupAndAggregate(view RecordView, groupBy []string, measure string, agg Aggregation, sortBy SortMode) []Group {
	if view.Len() == 0 {
		return nil
	}

	var groups []Group
	if len(groupBy) == 0 {
		groups = []Group{{Key: "all", Label: "Total", View: view}}
	} else {
		groups = partition(view, groupBy)
	}

	reduce(groups, measure, agg)
	SortGroups(groups, sortBy)
	return groups
}

// partition splits view on path[0] and recurses into the rest of path.
func partition(view RecordView, path []string) []Group {
	slot := make(map[string]int)
	var keys []string
	var rows [][]int

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, path[0])
		j, ok := slot[key]
		if !ok {
			j = len(keys)
			slot[key] = j
			keys = append(keys, key)
			rows = append(rows, nil)
		}
		rows[j] = append(rows[j], i)
	}

	groups := make([]Group, len(keys))
	for j, key := range keys {
		sub := newSubView(view, rows[j])
		groups[j] = Group{Key: key, Label: key, View: sub}
		if len(path) > 1 {
			groups[j].SubGroups = partition(sub, path[1:])
		}
	}
	return groups
}

func reduce(groups []Group, measure string, agg Aggregation) {
	for i := range groups {
		g := &groups[i]
		stats := MeasureStats(g.View, measure)
		g.Count = stats.Count
		g.Value = stats.Value(agg)
		reduce(g.SubGroups, measure, agg)
	}
}

// ============================================================================
// STATS
// ============================================================================

// Stats summarizes one measure over a view.
type Stats struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
}

// MeasureStats scans measure once across view. All fields are zero for an
// empty view.
func MeasureStats(view RecordView, measure string) Stats {
	n := view.Len()
	if n == 0 {
		return Stats{}
	}
	first := view.Measure(0, measure)
	s := Stats{Count: n, Sum: first, Min: first, Max: first}
	for i := 1; i < n; i++ {
		v := view.Measure(i, measure)
		s.Sum += v
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	return s
}

// Mean returns Sum/Count, or 0 when there are no rows.
func (s Stats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Value reduces s with agg. Unknown aggregations sum.
func (s Stats) Value(agg Aggregation) float64 {
	switch agg {
	case AggCount:
		return float64(s.Count)
	case AggAvg:
		return s.Mean()
	case AggMax:
		return s.Max
	case AggMin:
		return s.Min
	default:
		return s.Sum
	}
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups orders groups in place. Sorting is stable: ties keep their
// grouping order. SortNone and unknown modes leave groups as they are.
func SortGroups(groups []Group, mode SortMode) {
	var compare func(a, b Group) int
	switch mode {
	case SortValueDesc:
		compare = func(a, b Group) int { return cmp.Compare(b.Value, a.Value) }
	case SortValueAsc:
		compare = func(a, b Group) int { return cmp.Compare(a.Value, b.Value) }
	case SortLabelAsc:
		compare = func(a, b Group) int { return compareFold(a.Key, b.Key) }
	case SortLabelDesc:
		compare = func(a, b Group) int { return compareFold(b.Key, a.Key) }
	default:
		return
	}
	slices.SortStableFunc(groups, compare)
}

// compareFold orders case-insensitively, falling back to byte order so that
// keys differing only in case still sort deterministically.
func compareFold(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// UniqueValues returns the distinct non-empty values of dimension in
// first-appearance order.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]struct{})
	var values []string
	for i := 0; i < view.Len(); i++ {
		v := view.Dimension(i, dimension)
		if _, dup := seen[v]; v == "" || dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
