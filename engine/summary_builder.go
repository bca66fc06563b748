package engine

import (
	"fmt"
)

// ============================================================================
// SUMMARY BUILDER - Headline figures shown above the grid
// ============================================================================
// All functions operate on RecordView - zero-copy access to any data source.
// ============================================================================

// Summary holds headline figures for the filtered rows.
type Summary struct {
	Caption    string  `json:"caption"`
	RowCount   int     `json:"rowCount"`
	TotalRows  int     `json:"totalRows"`
	Categories int     `json:"categories"`
	TotalStock float64 `json:"totalStock"`
	AvgPrice   float64 `json:"avgPrice"`
}

// BuildSummary describes view as a share of a dataset with totalRows rows.
func BuildSummary(view RecordView, totalRows int) Summary {
	s := Summary{
		RowCount:   view.Len(),
		TotalRows:  totalRows,
		Categories: len(UniqueValues(view, FieldCategory)),
		TotalStock: MeasureStats(view, FieldStock).Sum,
		AvgPrice:   MeasureStats(view, FieldPrice).Mean(),
	}

	if s.RowCount == 0 {
		s.Caption = "No products match the selected categories."
		return s
	}
	s.Caption = fmt.Sprintf("Showing %s of %s products in %s",
		FormatInt(s.RowCount), FormatInt(totalRows), plural(s.Categories, "category", "categories"))
	return s
}

// FormatInt formats an integer with thousands separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%s %s", FormatInt(n), one)
	}
	return fmt.Sprintf("%s %s", FormatInt(n), many)
}
