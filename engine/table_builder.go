package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spektr-org/dashboard/schema"
	"github.com/spektr-org/dashboard/theme"
)

// ============================================================================
// GRID BUILDER - Produces Grid from the dataset columns + filtered view
// ============================================================================
// Column definitions come from the schema, so they never change with the
// filter. Row values are read back through view.Dimension (the raw cell)
// and typed by the column's discovered type.
// ============================================================================

// numericColumnType right-aligns a grid column.
const numericColumnType = "numericColumn"

// BuildColumnDefs returns one sortable, filterable column per dataset column,
// in header order.
func BuildColumnDefs(columns []schema.Column) []ColumnDef {
	defs := make([]ColumnDef, 0, len(columns))
	for _, col := range columns {
		def := ColumnDef{
			HeaderName: col.Key,
			Field:      col.Key,
			Sortable:   true,
			Filter:     true,
		}
		if col.Type.IsNumeric() {
			def.Type = numericColumnType
		}
		defs = append(defs, def)
	}
	return defs
}

// BuildGrid serializes every row of view as a record keyed by column name.
func BuildGrid(columns []schema.Column, view RecordView, th theme.Definition) Grid {
	rows := make([]map[string]any, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		row := make(map[string]any, len(columns))
		for _, col := range columns {
			row[col.Key] = cellValue(col.Type, view.Dimension(i, col.Key))
		}
		rows = append(rows, row)
	}

	return Grid{
		ColumnDefs: BuildColumnDefs(columns),
		RowData:    rows,
		ClassName:  th.GridClass,
	}
}

// cellValue converts a raw cell to the JSON type its column was discovered
// as. Nulls become nil; anything unparsable stays a string.
func cellValue(typ schema.ColumnType, raw string) any {
	raw = strings.TrimSpace(raw)
	if schema.IsNull(raw) {
		return nil
	}
	switch typ {
	case schema.TypeInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case schema.TypeFloat:
		// JSON has no encoding for Inf.
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) {
			return f
		}
	}
	return raw
}

// CellText prints a grid cell as it appeared in the source file.
// Nil cells print as the empty string.
func CellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
