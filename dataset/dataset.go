// Package dataset loads the product table the dashboard is built from.
//
// A Dataset is read once at startup and never mutated afterwards, so it can
// be shared by every request without locking.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/schema"
)

// ============================================================================
// DATASET - Immutable product table + its RecordView
// ============================================================================

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedRow is returned when a row cannot be used for grouping
	// or measuring.
	ErrMalformedRow = errors.New("malformed row")
)

// Row is one product. Values holds every trimmed cell in header order so
// that extra columns reach the grid unchanged.
type Row struct {
	Category     string
	Brand        string
	Color        string
	Availability string
	Price        float64
	Stock        int
	Values       []string

	numbers []float64 // numeric cells by column index, 0 when null
}

// Dataset is the loaded table.
type Dataset struct {
	Schema *schema.Config
	Rows   []Row
	Source string

	view engine.RecordView
}

// Load reads and parses the CSV file at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	ds, err := Parse(data, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}

	slog.Info("Dataset loaded",
		"source", path,
		"rows", len(ds.Rows),
		"columns", len(ds.Schema.Columns),
		"categories", len(ds.Categories()))
	return ds, nil
}

// Parse builds a Dataset from CSV bytes. source is only recorded.
func Parse(data []byte, source string) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(engine.RequiredFields, ", "))
	}

	config, err := schema.Discover(records[0], records[1:], schema.DiscoverOptions{
		Name:       "Products",
		MaxSamples: 10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover columns: %w", err)
	}
	config.DiscoveredFrom = source

	if missing := config.MissingColumns(engine.RequiredFields...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	idx := make(map[string]int, len(config.Columns))
	for _, col := range config.Columns {
		idx[col.Key] = col.Index
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseRow(record, config.Columns, idx)
		if err != nil {
			// +2: one for the header, one for 1-based lines
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedRow, i+2, err)
		}
		rows = append(rows, row)
	}

	return &Dataset{
		Schema: config,
		Rows:   rows,
		Source: source,
		view:   newAdapter(config.Columns).Bind(rows),
	}, nil
}

func parseRow(record []string, columns []schema.Column, idx map[string]int) (Row, error) {
	values := make([]string, len(record))
	for i, v := range record {
		values[i] = strings.TrimSpace(v)
	}

	row := Row{
		Category:     values[idx[engine.FieldCategory]],
		Brand:        values[idx[engine.FieldBrand]],
		Color:        values[idx[engine.FieldColor]],
		Availability: values[idx[engine.FieldAvailability]],
		Values:       values,
		numbers:      make([]float64, len(values)),
	}

	for _, key := range []string{engine.FieldCategory, engine.FieldBrand, engine.FieldColor} {
		if values[idx[key]] == "" {
			return Row{}, fmt.Errorf("empty %s", key)
		}
	}

	price, err := strconv.ParseFloat(values[idx[engine.FieldPrice]], 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return Row{}, fmt.Errorf("%s %q is not a number", engine.FieldPrice, values[idx[engine.FieldPrice]])
	}
	row.Price = price

	stock, err := parseStock(values[idx[engine.FieldStock]])
	if err != nil {
		return Row{}, fmt.Errorf("%s %q is not an integer", engine.FieldStock, values[idx[engine.FieldStock]])
	}
	row.Stock = stock

	for _, col := range columns {
		if !col.Type.IsNumeric() || schema.IsNull(values[col.Index]) {
			continue
		}
		if f, err := strconv.ParseFloat(values[col.Index], 64); err == nil {
			row.numbers[col.Index] = f
		}
	}
	return row, nil
}

// parseStock accepts integers, including integral floats such as "12.0".
func parseStock(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("integer %q out of range", s)
	}
	return int(f), nil
}

// newAdapter exposes every column as a dimension (its raw cell) and every
// numeric column as a measure. The fields the dashboard charts read come
// straight from the typed Row.
func newAdapter(columns []schema.Column) *engine.DomainAdapter[Row] {
	adapter := engine.NewDomainAdapter[Row]()
	for _, col := range columns {
		i := col.Index
		adapter.Dimension(col.Key, func(r Row) string { return r.Values[i] })
		if col.Type.IsNumeric() {
			adapter.Measure(col.Key, func(r Row) float64 { return r.numbers[i] })
		}
	}

	return adapter.
		Dimension(engine.FieldCategory, func(r Row) string { return r.Category }).
		Dimension(engine.FieldBrand, func(r Row) string { return r.Brand }).
		Dimension(engine.FieldColor, func(r Row) string { return r.Color }).
		Dimension(engine.FieldAvailability, func(r Row) string { return r.Availability }).
		Measure(engine.FieldPrice, func(r Row) float64 { return r.Price }).
		Measure(engine.FieldStock, func(r Row) float64 { return float64(r.Stock) })
}

// View returns a zero-copy RecordView over the rows.
func (d *Dataset) View() engine.RecordView { return d.view }

// Columns returns the discovered columns in header order.
func (d *Dataset) Columns() []schema.Column { return d.Schema.Columns }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }

// Categories returns the distinct categories in dataset order.
func (d *Dataset) Categories() []string { return engine.Categories(d) }
