// Package report builds a printable PDF of one dashboard selection: the
// summary line, every chart as an image and the product rows.
package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/render"
	"github.com/spektr-org/dashboard/theme"
)

// ContentType is the MIME type of a report.
const ContentType = "application/pdf"

// DefaultMaxRows caps the product table so a large dataset still prints.
const DefaultMaxRows = 500

// Chart images are drawn at this size and scaled to the page width.
const (
	chartWidth  = 1000
	chartHeight = 560
)

// tableColumns are printed in this order; the page is too narrow for the
// full grid.
var tableColumns = engine.RequiredFields

// Option adjusts a report.
type Option func(*options)

type options struct {
	title   string
	maxRows int
}

// WithTitle replaces the heading on the first page.
func WithTitle(title string) Option {
	return func(o *options) {
		if title != "" {
			o.title = title
		}
	}
}

// WithMaxRows caps the number of product rows printed. Values < 1 are ignored.
func WithMaxRows(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRows = n
		}
	}
}

// ============================================================================
// CHART IMAGES
// ============================================================================

// Image is one rendered chart.
type Image struct {
	ChartType string
	Title     string
	PNG       []byte
}

// Charts renders every non-empty chart of vm as PNG, concurrently, in
// engine.ChartTypes order.
func Charts(ctx context.Context, vm *engine.ViewModel, th theme.Definition) ([]Image, error) {
	images := make([]Image, len(engine.ChartTypes))

	g, ctx := errgroup.WithContext(ctx)
	for i, chartType := range engine.ChartTypes {
		cfg := vm.Chart(chartType)
		if cfg.IsEmpty() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := render.Chart(&buf, cfg, th, render.FormatPNG, render.WithSize(chartWidth, chartHeight)); err != nil {
				return fmt.Errorf("%s: %w", chartType, err)
			}
			// Each goroutine owns its slot.
			images[i] = Image{ChartType: chartType, Title: cfg.Title, PNG: buf.Bytes()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to render report charts: %w", err)
	}

	out := images[:0]
	for _, img := range images {
		if img.PNG != nil {
			out = append(out, img)
		}
	}
	return out, nil
}

// ============================================================================
// PDF
// ============================================================================

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
	stripe     = color.Color{Red: 240, Green: 243, Blue: 248}
)

// Write renders the report for vm and writes the PDF to w.
func Write(ctx context.Context, w io.Writer, vm *engine.ViewModel, opts ...Option) error {
	o := options{title: "Product Dashboard", maxRows: DefaultMaxRows}
	for _, opt := range opts {
		opt(&o)
	}

	images, err := Charts(ctx, vm, theme.ByID(vm.Theme))
	if err != nil {
		return err
	}

	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	heading(m, o.title, vm)

	for _, img := range images {
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(img.Title, props.Text{Size: 11, Style: consts.Bold, Color: darkGray})
			})
		})
		encoded := base64.StdEncoding.EncodeToString(img.PNG)
		var imgErr error
		m.Row(96, func() {
			m.Col(12, func() {
				imgErr = m.Base64Image(encoded, consts.Png, props.Rect{Percent: 100, Center: true})
			})
		})
		if imgErr != nil {
			return fmt.Errorf("failed to add %s chart to report: %w", img.ChartType, imgErr)
		}
	}

	if vm.RowCount > 0 {
		productTable(m, vm.Grid, o.maxRows)
	}

	buf, err := m.Output()
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	slog.Debug("Report built",
		"theme", vm.Theme,
		"rows", vm.RowCount,
		"charts", len(images),
		"bytes", buf.Len())

	_, err = w.Write(buf.Bytes())
	return err
}

func heading(m pdf.Maroto, title string, vm *engine.ViewModel) {
	m.Row(12, func() {
		m.Col(12, func() {
			m.Text(title, props.Text{Size: 18, Style: consts.Bold, Color: darkGray})
		})
	})

	m.Row(6, func() {
		m.Col(12, func() {
			m.Text(vm.Summary.Caption, props.Text{Size: 10, Color: darkGray})
		})
	})

	categories := "All categories"
	if len(vm.Selection.Categories) > 0 {
		categories = strings.Join(vm.Selection.Categories, ", ")
	}
	m.Row(6, func() {
		m.Col(8, func() {
			m.Text("Selection: "+categories, props.Text{Size: 9, Color: mediumGray})
		})
		m.Col(4, func() {
			m.Text(fmt.Sprintf("Stock %s | Avg price %.2f", engine.FormatInt(int(vm.Summary.TotalStock)), vm.Summary.AvgPrice), props.Text{
				Size:  9,
				Color: mediumGray,
				Align: consts.Right,
			})
		})
	})

	m.Row(6, func() {})
}

func productTable(m pdf.Maroto, grid engine.Grid, maxRows int) {
	rows := grid.RowData
	truncated := len(rows) > maxRows
	if truncated {
		rows = rows[:maxRows]
	}

	contents := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, len(tableColumns))
		for i, key := range tableColumns {
			line[i] = engine.CellText(row[key])
		}
		contents = append(contents, line)
	}

	sizes := []uint{2, 2, 2, 2, 2, 2}
	m.Row(8, func() {
		m.Col(12, func() {
			m.Text("Products", props.Text{Size: 11, Style: consts.Bold, Color: darkGray})
		})
	})
	m.TableList(tableColumns, contents, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      9,
			GridSizes: sizes,
			Style:     consts.Bold,
		},
		ContentProp: props.TableListContent{
			Size:      8,
			GridSizes: sizes,
		},
		Align:                consts.Left,
		AlternatedBackground: &stripe,
		HeaderContentSpace:   1,
		Line:                 false,
	})

	if truncated {
		m.Row(6, func() {
			m.Col(12, func() {
				m.Text(fmt.Sprintf("First %s of %s rows shown.", engine.FormatInt(maxRows), engine.FormatInt(len(grid.RowData))), props.Text{
					Size:  8,
					Color: mediumGray,
				})
			})
		})
	}
}
