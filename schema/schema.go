package schema

// ============================================================================
// SCHEMA - Describes the columns of a tabular dataset
// ============================================================================
// Discovered once from the CSV header and rows at load time.
// The dataset uses it to decide which cells parse as numbers; the grid
// builder uses it to emit typed row records and static column definitions.
// ============================================================================

// ColumnType is the inferred value type of a column.
type ColumnType string

const (
	TypeString ColumnType = "string"
	TypeInt    ColumnType = "int"
	TypeFloat  ColumnType = "float"
)

// IsNumeric reports whether values of this type parse as numbers.
func (t ColumnType) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Config describes the complete shape of a dataset.
type Config struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	RowCount       int    `json:"rowCount"`
}

// Column describes one CSV column. Key is the header exactly as written
// (trimmed) and doubles as the grid field name.
type Column struct {
	Key             string     `json:"key"`
	DisplayName     string     `json:"displayName"`
	Index           int        `json:"index"`
	Type            ColumnType `json:"type"`
	SampleValues    []string   `json:"sampleValues,omitempty"`
	UniqueCount     int        `json:"uniqueCount"`
	NullCount       int        `json:"nullCount"`
	CardinalityHint string     `json:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// ColumnKeys returns all column keys in header order.
func (c Config) ColumnKeys() []string {
	keys := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		keys[i] = col.Key
	}
	return keys
}

// Column looks up a column by key.
func (c Config) Column(key string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// MissingColumns returns the keys from required that the schema lacks,
// in the order they were requested.
func (c Config) MissingColumns(required ...string) []string {
	var missing []string
	for _, key := range required {
		if _, ok := c.Column(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
