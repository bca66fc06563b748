package main

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/spektr-org/dashboard/config"
	"github.com/spektr-org/dashboard/dataset"
	"github.com/spektr-org/dashboard/engine"
)

// Output formats of the inspect command.
const (
	formatJSON   = "json"
	formatPretty = "pretty"
	formatYAML   = "yaml"
	formatCSV    = "csv"
)

type inspectFlags struct {
	format    string
	chart     string
	out       string
	data      dataFlags
	engine    engineFlags
	selection selectionFlags
}

func newInspectCmd(root *rootFlags) *cobra.Command {
	var flags inspectFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the view model for a selection",
		Long: `Build the same view model the dashboard serves and print it.

Formats:
  json      Full view model as JSON (default)
  pretty    Pretty-printed JSON
  yaml      YAML, same keys as the JSON
  csv       Grid rows as CSV, or one chart's data with --chart (ready for Sheets/Excel)`,
		Example: `  dashboard inspect --category Electronics --format pretty
  dashboard inspect --format csv --out products.csv
  dashboard inspect --chart bar --format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root.cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", formatJSON, "Output format: json, pretty, yaml, csv")
	cmd.Flags().StringVar(&flags.chart, "chart", "", "Limit output to one chart: "+strings.Join(engine.ChartTypes, ", "))
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Write output to file instead of stdout")
	addDataFlags(cmd, &flags.data)
	addEngineFlags(cmd, &flags.engine)
	addSelectionFlags(cmd, &flags.selection)

	return cmd
}

func (f *inspectFlags) run(cmd *cobra.Command, cfg config.Config) (err error) {
	if !slices.Contains([]string{formatJSON, formatPretty, formatYAML, formatCSV}, f.format) {
		return fmt.Errorf("unknown format %q: expected json, pretty, yaml or csv", f.format)
	}
	if f.chart != "" && !slices.Contains(engine.ChartTypes, f.chart) {
		return fmt.Errorf("unknown chart %q: expected one of %s", f.chart, strings.Join(engine.ChartTypes, ", "))
	}

	ds, err := dataset.Load(f.data.resolve(cfg))
	if err != nil {
		return err
	}
	vm := engine.Build(ds, f.selection.selection(), f.engine.options()...)

	// ── Output writer ─────────────────────────────────────────────────────
	var w io.Writer = cmd.OutOrStdout()
	if f.out != "" {
		file, createErr := os.Create(f.out)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		// err is the named result, so a failed close reaches the caller.
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		w = file
	}

	switch {
	case f.format == formatCSV && f.chart != "":
		err = writeChartCSV(w, vm.Chart(f.chart))
	case f.format == formatCSV:
		err = writeGridCSV(w, vm.Grid)
	case f.format == formatYAML && f.chart != "":
		err = writeYAML(w, vm.Chart(f.chart))
	case f.format == formatYAML:
		err = writeYAML(w, vm)
	case f.chart != "":
		err = writeJSON(w, vm.Chart(f.chart), f.format)
	default:
		err = writeJSON(w, vm, f.format)
	}
	if err != nil {
		return err
	}

	if f.out != "" {
		slog.Info("Output written", "path", f.out, "format", f.format, "rows", vm.RowCount)
	}
	return nil
}

// ============================================================================
// CSV OUTPUT
// ============================================================================

// writeGridCSV writes the grid rows with the dataset's header.
func writeGridCSV(w io.Writer, grid engine.Grid) error {
	return csv.NewWriter(w).WriteAll(gridRecords(grid))
}

// writeChartCSV writes the data behind one chart, one row per mark.
func writeChartCSV(w io.Writer, chart *engine.ChartConfig) error {
	return csv.NewWriter(w).WriteAll(chartRecords(chart))
}

func gridRecords(grid engine.Grid) [][]string {
	header := make([]string, len(grid.ColumnDefs))
	for i, def := range grid.ColumnDefs {
		header[i] = def.Field
	}

	records := make([][]string, 0, len(grid.RowData)+1)
	records = append(records, header)
	for _, row := range grid.RowData {
		record := make([]string, len(header))
		for i, key := range header {
			record[i] = engine.CellText(row[key])
		}
		records = append(records, record)
	}
	return records
}

func chartRecords(chart *engine.ChartConfig) [][]string {
	var records [][]string

	switch chart.ChartType {
	case engine.ChartSunburst:
		records = append(records, []string{"ID", "Parent", "Label", engine.FieldStock})
		for _, n := range chart.Nodes {
			records = append(records, []string{n.ID, n.Parent, n.Label, fmtNum(n.Value)})
		}

	case engine.ChartHistogram:
		records = append(records, []string{"Start", "End", "Count"})
		for _, b := range chart.Bins {
			records = append(records, []string{fmtNum(b.Start), fmtNum(b.End), strconv.Itoa(b.Count)})
		}

	case engine.ChartScatter:
		header := []string{"Series", chart.XAxis, chart.YAxis, "Size"}
		for _, h := range firstHover(chart) {
			header = append(header, h.Label)
		}
		records = append(records, header)
		for _, s := range chart.Series {
			for _, p := range s.Points {
				row := []string{s.Name, fmtNum(p.X), fmtNum(p.Y), fmtNum(p.Size)}
				for _, h := range p.Hover {
					row = append(row, h.Value)
				}
				records = append(records, row)
			}
		}

	default:
		records = append(records, []string{cmp.Or(chart.XAxis, "Label"), cmp.Or(chart.YAxis, "Value")})
		for _, s := range chart.Series {
			for _, d := range s.Data {
				records = append(records, []string{d.Label, fmtNum(d.Value)})
			}
		}
	}
	return records
}

func firstHover(chart *engine.ChartConfig) []engine.HoverField {
	for _, s := range chart.Series {
		if len(s.Points) > 0 {
			return s.Points[0].Hover
		}
	}
	return nil
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	if format == formatPretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeYAML keys fields by their json tags.
func writeYAML(w io.Writer, v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
