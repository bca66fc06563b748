package engine

import (
	"maps"
	"slices"
)

// ============================================================================
// RECORD VIEW - Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
//   SliceView      - []Record, for ad-hoc data and tests
//   DomainView[T]  - typed rows read through registered accessors
//   SubView        - an index list into another view
//
// Filtering and grouping only ever produce SubViews, so a request costs one
// []int per step and no row copies.
// ============================================================================

// RecordView provides indexed access to a dataset.
// The engine calls Dimension/Measure in tight loops - keep implementations fast.
// Out-of-range indices and unknown keys read as "" and 0.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

func inRange(i, n int) bool { return i >= 0 && i < n }

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView wraps a []Record slice as a RecordView.
type SliceView struct {
	records []Record
	dimKeys []string
	mesKeys []string
}

// NewSliceView creates a RecordView from records. The key lists are the
// union over all records, sorted.
func NewSliceView(records []Record) RecordView {
	dims := make(map[string]struct{})
	meas := make(map[string]struct{})
	for _, r := range records {
		for k := range r.Dimensions {
			dims[k] = struct{}{}
		}
		for k := range r.Measures {
			meas[k] = struct{}{}
		}
	}
	return &SliceView{
		records: records,
		dimKeys: sortedKeys(dims),
		mesKeys: sortedKeys(meas),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(set))
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if !inRange(i, len(v.records)) {
		return ""
	}
	return v.records[i].Dimensions[key]
}

func (v *SliceView) Measure(i int, key string) float64 {
	if !inRange(i, len(v.records)) {
		return 0
	}
	return v.records[i].Measures[key]
}

func (v *SliceView) DimensionKeys() []string { return v.dimKeys }
func (v *SliceView) MeasureKeys() []string   { return v.mesKeys }

// ============================================================================
// SUB VIEW
// ============================================================================

// SubView is a subset of another view, held as row indices.
// Subsets of a SubView index its root directly, so lookups stay one hop
// deep however many filters and groupings are stacked.
type SubView struct {
	root    RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	sv, ok := parent.(*SubView)
	if !ok {
		return &SubView{root: parent, indices: indices}
	}
	mapped := make([]int, len(indices))
	for i, idx := range indices {
		mapped[i] = sv.indices[idx]
	}
	return &SubView{root: sv.root, indices: mapped}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if !inRange(i, len(v.indices)) {
		return ""
	}
	return v.root.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if !inRange(i, len(v.indices)) {
		return 0
	}
	return v.root.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.root.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.root.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER - typed rows without conversion
// ============================================================================
//
//	adapter := engine.NewDomainAdapter[Row]().
//	    Dimension("Category", func(r Row) string { return r.Category }).
//	    Measure("Stock", func(r Row) float64 { return float64(r.Stock) })
//
//	view := adapter.Bind(rows)
//
// A key may be registered as both a dimension and a measure; the dataset
// does this for Price and Stock so the grid can show the raw cell.
// ============================================================================

type accessors[T any] struct {
	dimKeys []string
	mesKeys []string
	dimSlot map[string]int
	mesSlot map[string]int
	dims    []func(T) string
	meas    []func(T) float64
}

func (a accessors[T]) clone() accessors[T] {
	return accessors[T]{
		dimKeys: slices.Clone(a.dimKeys),
		mesKeys: slices.Clone(a.mesKeys),
		dimSlot: maps.Clone(a.dimSlot),
		mesSlot: maps.Clone(a.mesSlot),
		dims:    slices.Clone(a.dims),
		meas:    slices.Clone(a.meas),
	}
}

// DomainAdapter builds RecordViews over []T. Declare once, bind many times.
type DomainAdapter[T any] struct {
	acc accessors[T]
}

// NewDomainAdapter creates an adapter for type T with no fields.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{acc: accessors[T]{
		dimSlot: make(map[string]int),
		mesSlot: make(map[string]int),
	}}
}

// Dimension registers fn as the accessor for key. Registering a key again
// replaces its accessor and keeps its position.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if j, ok := a.acc.dimSlot[key]; ok {
		a.acc.dims[j] = fn
		return a
	}
	a.acc.dimSlot[key] = len(a.acc.dims)
	a.acc.dimKeys = append(a.acc.dimKeys, key)
	a.acc.dims = append(a.acc.dims, fn)
	return a
}

// Measure registers fn as the accessor for key, like Dimension.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if j, ok := a.acc.mesSlot[key]; ok {
		a.acc.meas[j] = fn
		return a
	}
	a.acc.mesSlot[key] = len(a.acc.meas)
	a.acc.mesKeys = append(a.acc.mesKeys, key)
	a.acc.meas = append(a.acc.meas, fn)
	return a
}

// Bind returns a view over data. The slice is referenced, not copied;
// later registrations on the adapter do not affect the view.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{data: data, acc: a.acc.clone()}
}

// DomainView reads typed rows through registered accessors.
type DomainView[T any] struct {
	data []T
	acc  accessors[T]
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	j, ok := v.acc.dimSlot[key]
	if !ok || !inRange(i, len(v.data)) {
		return ""
	}
	return v.acc.dims[j](v.data[i])
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	j, ok := v.acc.mesSlot[key]
	if !ok || !inRange(i, len(v.data)) {
		return 0
	}
	return v.acc.meas[j](v.data[i])
}

func (v *DomainView[T]) DimensionKeys() []string { return v.acc.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.acc.mesKeys }
