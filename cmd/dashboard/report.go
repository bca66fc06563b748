package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spektr-org/dashboard/config"
	"github.com/spektr-org/dashboard/dataset"
	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/report"
)

type reportFlags struct {
	out       string
	title     string
	maxRows   int
	data      dataFlags
	engine    engineFlags
	selection selectionFlags
}

func newReportCmd(root *rootFlags) *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a PDF report with the summary, every chart and the product rows",
		Example: `  dashboard report
  dashboard report --category Electronics --category Furniture --out electronics.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root.cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.out, "out", "o", "dashboard-report.pdf", "Output file, - for stdout")
	cmd.Flags().StringVar(&flags.title, "title", "", "Heading on the first page (default \"Product Dashboard\")")
	cmd.Flags().IntVar(&flags.maxRows, "max-rows", report.DefaultMaxRows, "Maximum number of product rows to print")
	addDataFlags(cmd, &flags.data)
	addEngineFlags(cmd, &flags.engine)
	addSelectionFlags(cmd, &flags.selection)

	return cmd
}

func (f *reportFlags) run(cmd *cobra.Command, cfg config.Config) error {
	ds, err := dataset.Load(f.data.resolve(cfg))
	if err != nil {
		return err
	}
	vm := engine.Build(ds, f.selection.selection(), f.engine.options()...)

	var buf bytes.Buffer
	if err := report.Write(cmd.Context(), &buf, vm, report.WithTitle(f.title), report.WithMaxRows(f.maxRows)); err != nil {
		return err
	}

	if f.out == "-" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(f.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.out, err)
	}
	slog.Info("Report written", "path", f.out, "rows", vm.RowCount, "bytes", buf.Len())
	return nil
}
