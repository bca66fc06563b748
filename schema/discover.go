package schema

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// ============================================================================
// AUTO-DISCOVERY - Column typing from raw CSV
// ============================================================================
// Every column starts as int and is narrowed as values arrive:
//
//	int -> float -> string
//
// Null cells (empty, "null", "N/A", ...) never narrow a column. A column
// with no values at all is a string column. Typing is strict: one cell
// that is not a number makes the whole column a string column, since the
// grid emits numeric columns as JSON numbers.
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	Name       string // Dataset name override
	MaxSamples int    // Sample values kept per column. Default: 10
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{Name: "Products", MaxSamples: 10}
}

// Discover types the columns of an already-parsed table. Headers are
// trimmed and stripped of a leading byte order mark; duplicate or empty
// headers are rejected.
func Discover(headers []string, rows [][]string, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxSamples <= 0 {
		opt.MaxSamples = 10
	}
	if len(headers) == 0 {
		return nil, errors.New("CSV has no columns")
	}

	profiles := make([]*profile, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for i, h := range headers {
		key := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if key == "" {
			return nil, fmt.Errorf("column %d has an empty header", i+1)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate column %q", key)
		}
		seen[key] = struct{}{}
		profiles[i] = newProfile(key, i)
	}

	for _, row := range rows {
		for i, p := range profiles {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			p.observe(cell)
		}
	}

	columns := make([]Column, len(profiles))
	for i, p := range profiles {
		columns[i] = p.column(opt.MaxSamples)
	}
	return &Config{
		Name:           opt.Name,
		Columns:        columns,
		DiscoveredFrom: "CSV",
		RowCount:       len(rows),
	}, nil
}

// ============================================================================
// COLUMN PROFILE
// ============================================================================

type profile struct {
	key      string
	index    int
	typ      ColumnType
	nonNull  int
	nulls    int
	distinct map[string]struct{}
}

func newProfile(key string, index int) *profile {
	return &profile{key: key, index: index, typ: TypeInt, distinct: map[string]struct{}{}}
}

func (p *profile) observe(cell string) {
	v := strings.TrimSpace(cell)
	if IsNull(v) {
		p.nulls++
		return
	}
	p.nonNull++
	p.distinct[v] = struct{}{}
	p.typ = narrow(p.typ, v)
}

func (p *profile) column(maxSamples int) Column {
	typ := p.typ
	if p.nonNull == 0 {
		typ = TypeString
	}
	samples := slices.Sorted(maps.Keys(p.distinct))
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return Column{
		Key:             p.key,
		DisplayName:     toDisplayName(p.key),
		Index:           p.index,
		Type:            typ,
		SampleValues:    samples,
		UniqueCount:     len(p.distinct),
		NullCount:       p.nulls,
		CardinalityHint: cardinality(len(p.distinct)),
	}
}

func cardinality(unique int) string {
	if unique <= 10 {
		return "low"
	}
	if unique <= 100 {
		return "medium"
	}
	return "high"
}

// narrow returns the widest type that still admits v after current.
func narrow(current ColumnType, v string) ColumnType {
	if current == TypeInt {
		if _, err := strconv.ParseInt(v, 10, 64); err == nil {
			return TypeInt
		}
		current = TypeFloat
	}
	if current == TypeFloat {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return TypeFloat
		}
	}
	return TypeString
}

// IsNull reports whether a trimmed cell counts as missing.
func IsNull(val string) bool {
	switch val {
	case "", "null", "NULL", "N/A", "n/a", "NaN":
		return true
	}
	return false
}

// toDisplayName title-cases snake or kebab headers. Headers that already
// contain spaces are taken as written.
func toDisplayName(s string) string {
	s = strings.TrimSpace(s)
	if strings.ContainsRune(s, ' ') {
		return s
	}
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
