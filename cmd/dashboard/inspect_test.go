package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/dashboard/dataset"
	"github.com/spektr-org/dashboard/engine"
)

const productsCSV = `Index,Name,Brand,Category,Price,Stock,Color,Availability
1,Tablet,Mueller Inc,Electronics,502,81,Black,in_stock
2,Radio,Irwin LLC,Electronics,79.5,0,Black,out_of_stock
3,Office Chair,Sims Ltd,Furniture,419.99,101,White,limited_stock
`

func writeProducts(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(productsCSV), 0o644))
	return path
}

func mustLoad(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(writeProducts(t))
	require.NoError(t, err)
	return ds
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), &stdout, &stderr, args...)
	return stdout.String(), err
}

// ============================================================================
// INSPECT
// ============================================================================

func TestInspectJSON(t *testing.T) {
	out, err := run(t, "inspect", "--data", writeProducts(t), "--category", "Electronics", "--dark")
	require.NoError(t, err)

	var vm engine.ViewModel
	require.NoError(t, json.Unmarshal([]byte(out), &vm))
	assert.Equal(t, 2, vm.RowCount)
	assert.Equal(t, 3, vm.TotalRows)
	assert.Equal(t, "dark", vm.Theme)
	assert.Equal(t, "plotly_dark", vm.Pie.Template)
}

func TestInspectGridCSV(t *testing.T) {
	out, err := run(t, "inspect", "--data", writeProducts(t), "--format", "csv", "-c", "Furniture")
	require.NoError(t, err)

	assert.Equal(t, "Index,Name,Brand,Category,Price,Stock,Color,Availability\n"+
		"3,Office Chair,Sims Ltd,Furniture,419.99,101,White,limited_stock\n", out)
}

func TestInspectChartCSV(t *testing.T) {
	path := writeProducts(t)

	out, err := run(t, "inspect", "--data", path, "--format", "csv", "--chart", "bar")
	require.NoError(t, err)
	assert.Equal(t, "Category,Price\nElectronics,290.75\nFurniture,419.99\n", out)

	out, err = run(t, "inspect", "--data", path, "--format", "csv", "--chart", "sunburst")
	require.NoError(t, err)
	assert.Equal(t, "ID,Parent,Label,Stock\n"+
		"Electronics,,Electronics,81\n"+
		"Electronics/Mueller Inc,Electronics,Mueller Inc,81\n"+
		"Electronics/Mueller Inc/Black,Electronics/Mueller Inc,Black,81\n"+
		"Furniture,,Furniture,101\n"+
		"Furniture/Sims Ltd,Furniture,Sims Ltd,101\n"+
		"Furniture/Sims Ltd/White,Furniture/Sims Ltd,White,101\n", out)

	out, err = run(t, "inspect", "--data", path, "--format", "csv", "--chart", "histogram", "--bins", "2")
	require.NoError(t, err)
	assert.Equal(t, "Start,End,Count\n0,50.50,1\n50.50,101,2\n", out)
}

func TestInspectChartJSON(t *testing.T) {
	out, err := run(t, "inspect", "--data", writeProducts(t), "--chart", "pie", "--format", "pretty")
	require.NoError(t, err)

	var chart engine.ChartConfig
	require.NoError(t, json.Unmarshal([]byte(out), &chart))
	assert.Equal(t, engine.ChartPie, chart.ChartType)
	require.Len(t, chart.Series, 1)
	assert.Len(t, chart.Series[0].Data, 3)
}

func TestInspectYAML(t *testing.T) {
	out, err := run(t, "inspect", "--data", writeProducts(t), "--format", "yaml", "--dark")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "dark", doc["theme"])
	assert.Contains(t, doc, "grid")
}

func TestInspectWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "grid.csv")
	stdout, err := run(t, "inspect", "--data", writeProducts(t), "--format", "csv", "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tablet")
}

func TestInspectRejectsBadFlags(t *testing.T) {
	path := writeProducts(t)

	_, err := run(t, "inspect", "--data", path, "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "inspect", "--data", path, "--chart", "radar")
	assert.ErrorContains(t, err, "unknown chart")

	_, err = run(t, "inspect", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

// ============================================================================
// RENDER
// ============================================================================

func TestRenderWritesImage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bar.svg")
	_, err := run(t, "render", "--data", writeProducts(t), "--chart", "bar", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRenderToStdout(t *testing.T) {
	out, err := run(t, "render", "--data", writeProducts(t), "--chart", "scatter", "--format", "png", "--out", "-")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", out[:4])
}

func TestRenderEmptySelection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "pie.svg")
	_, err := run(t, "render", "--data", writeProducts(t), "--chart", "pie", "-c", "Garden", "--out", out)

	assert.ErrorContains(t, err, "no pie chart")
	assert.NoFileExists(t, out)
}

func TestReportWritesPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.pdf")
	_, err := run(t, "report", "--data", writeProducts(t), "-c", "Electronics", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderRequiresChart(t *testing.T) {
	_, err := run(t, "render", "--data", writeProducts(t))
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWritersReportWriteErrors(t *testing.T) {
	vm := engine.Build(mustLoad(t), engine.Selection{})

	assert.EqualError(t, writeGridCSV(failingWriter{}, vm.Grid), "disk full")
	for _, chartType := range engine.ChartTypes {
		assert.EqualError(t, writeChartCSV(failingWriter{}, vm.Chart(chartType)), "disk full", chartType)
	}
}
