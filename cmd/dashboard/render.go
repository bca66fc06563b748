package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/dashboard/config"
	"github.com/spektr-org/dashboard/dataset"
	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/render"
	"github.com/spektr-org/dashboard/theme"
)

type renderFlags struct {
	chart     string
	format    string
	out       string
	width     int
	height    int
	data      dataFlags
	engine    engineFlags
	selection selectionFlags
}

func newRenderCmd(root *rootFlags) *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one chart to an SVG or PNG file",
		Example: `  dashboard render --chart bar
  dashboard render --chart scatter --category Electronics --dark --format png --out scatter.png
  dashboard render --chart pie --out - > pie.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root.cfg)
		},
	}

	cmd.Flags().StringVar(&flags.chart, "chart", "", "Chart to render: "+strings.Join(engine.ChartTypes, ", "))
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(render.FormatSVG), "Image format: svg or png")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output file, - for stdout (default <chart>.<format>)")
	cmd.Flags().IntVar(&flags.width, "width", 800, "Image width in pixels")
	cmd.Flags().IntVar(&flags.height, "height", 450, "Image height in pixels")
	_ = cmd.MarkFlagRequired("chart")
	addDataFlags(cmd, &flags.data)
	addEngineFlags(cmd, &flags.engine)
	addSelectionFlags(cmd, &flags.selection)

	return cmd
}

func (f *renderFlags) run(cmd *cobra.Command, cfg config.Config) error {
	if !slices.Contains(engine.ChartTypes, f.chart) {
		return fmt.Errorf("unknown chart %q: expected one of %s", f.chart, strings.Join(engine.ChartTypes, ", "))
	}
	format, err := render.ParseFormat(f.format)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(f.data.resolve(cfg))
	if err != nil {
		return err
	}
	sel := f.selection.selection()
	vm := engine.Build(ds, sel, f.engine.options()...)

	// Render into memory first so an empty chart leaves no file behind.
	var buf bytes.Buffer
	err = render.Chart(&buf, vm.Chart(f.chart), theme.ForFlag(sel.Dark), format, render.WithSize(f.width, f.height))
	if errors.Is(err, render.ErrEmptyChart) {
		return fmt.Errorf("no %s chart for this selection: %w", f.chart, err)
	}
	if err != nil {
		return err
	}

	if f.out == "-" {
		_, err = io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}

	path := f.out
	if path == "" {
		path = f.chart + format.Extension()
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("Chart written", "chart", f.chart, "path", path, "bytes", buf.Len())
	return nil
}
