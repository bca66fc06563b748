package report

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/schema"
	"github.com/spektr-org/dashboard/theme"
)

type fixture struct {
	view    engine.RecordView
	columns []schema.Column
}

func (f fixture) View() engine.RecordView   { return f.view }
func (f fixture) Columns() []schema.Column { return f.columns }

func product(category, brand, color, availability string, price, stock float64) engine.Record {
	return engine.Record{
		Dimensions: map[string]string{
			engine.FieldCategory:     category,
			engine.FieldBrand:        brand,
			engine.FieldColor:        color,
			engine.FieldAvailability: availability,
			engine.FieldPrice:        strconv.FormatFloat(price, 'f', -1, 64),
			engine.FieldStock:        strconv.FormatFloat(stock, 'f', -1, 64),
		},
		Measures: map[string]float64{
			engine.FieldPrice: price,
			engine.FieldStock: stock,
		},
	}
}

func catalog(n int) fixture {
	categories := []string{"Electronics", "Furniture", "Kitchen"}
	records := make([]engine.Record, n)
	for i := range records {
		records[i] = product(categories[i%len(categories)], "Brand "+strconv.Itoa(i%4), "Black", "in_stock",
			float64(10+i), float64(i*3))
	}

	columns := make([]schema.Column, len(engine.RequiredFields))
	for i, key := range engine.RequiredFields {
		columns[i] = schema.Column{Key: key, Index: i, Type: schema.TypeString}
	}
	columns[3].Type = schema.TypeFloat
	columns[4].Type = schema.TypeInt

	return fixture{view: engine.NewSliceView(records), columns: columns}
}

func TestChartsRendersEveryNonEmptyChart(t *testing.T) {
	vm := engine.Build(catalog(12), engine.Selection{})

	images, err := Charts(context.Background(), vm, theme.ForFlag(false))
	require.NoError(t, err)
	require.Len(t, images, len(engine.ChartTypes))
	for i, img := range images {
		assert.Equal(t, engine.ChartTypes[i], img.ChartType)
		assert.NotEmpty(t, img.Title)
		assert.Equal(t, "\x89PNG", string(img.PNG[:4]), img.ChartType)
	}
}

func TestChartsSkipsEmptyCharts(t *testing.T) {
	vm := engine.Build(catalog(6), engine.Selection{Categories: []string{"Garden"}})

	images, err := Charts(context.Background(), vm, theme.ForFlag(true))
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestChartsHonorsCancellation(t *testing.T) {
	vm := engine.Build(catalog(6), engine.Selection{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Charts(ctx, vm, theme.ForFlag(false))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrite(t *testing.T) {
	vm := engine.Build(catalog(30), engine.Selection{Categories: []string{"Kitchen"}, Dark: true})

	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, vm, WithTitle("Kitchen"), WithMaxRows(5)))
	assert.Equal(t, "%PDF", buf.String()[:4])
}

func TestWriteEmptySelection(t *testing.T) {
	vm := engine.Build(catalog(6), engine.Selection{Categories: []string{"Garden"}})

	var buf bytes.Buffer
	require.NoError(t, Write(context.Background(), &buf, vm))
	assert.Equal(t, "%PDF", buf.String()[:4])
}

func TestOptions(t *testing.T) {
	o := options{title: "a", maxRows: DefaultMaxRows}
	WithTitle("")(&o)
	WithMaxRows(0)(&o)
	assert.Equal(t, options{title: "a", maxRows: DefaultMaxRows}, o)

	WithTitle("b")(&o)
	WithMaxRows(3)(&o)
	assert.Equal(t, options{title: "b", maxRows: 3}, o)
}
