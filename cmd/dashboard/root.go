package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/dashboard/config"
	"github.com/spektr-org/dashboard/engine"
	"github.com/spektr-org/dashboard/logging"
)

type rootFlags struct {
	envFile   string
	logLevel  string
	logFormat string

	// cfg is resolved in PersistentPreRunE, before any subcommand runs.
	cfg config.Config
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "dashboard - product catalog dashboard",
		Long:  "dashboard serves an interactive dashboard over a product CSV and can export its charts and data",
		Example: `  dashboard
  dashboard serve --data products.csv --addr :8050
  dashboard inspect --category Electronics --format pretty
  dashboard render --chart sunburst --dark --out sunburst.svg
  dashboard report --category Electronics`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return flags.setup(cmd)
		},
		// If no subcommand is specified, show help
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Load environment variables from this file before reading the configuration")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default $"+config.EnvLogLevel+" or "+config.DefaultLogLevel+")")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default $"+config.EnvLogFormat+" or "+config.DefaultLogFormat+")")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newInspectCmd(flags))
	cmd.AddCommand(newRenderCmd(flags))
	cmd.AddCommand(newReportCmd(flags))

	return cmd
}

// Execute runs the CLI with args. Errors are printed to stderr and returned.
func Execute(ctx context.Context, stdout, stderr io.Writer, args ...string) error {
	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(defaultToServe(rootCmd, args))
	setContextRecursive(ctx, rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Fprintln(stderr, "Error:", err)
		if strings.HasPrefix(err.Error(), "unknown command ") {
			_ = rootCmd.Usage()
		}
		return err
	}
	return nil
}

func setContextRecursive(ctx context.Context, cmd *cobra.Command) {
	cmd.SetContext(ctx)
	for _, child := range cmd.Commands() {
		setContextRecursive(ctx, child)
	}
}

// defaultToServe prepends "serve" to the argument list when no subcommand is
// specified so that bare "dashboard" (or "dashboard --log-level debug")
// starts the server. Help flags (--help / -h) are left alone.
func defaultToServe(rootCmd *cobra.Command, args []string) []string {
	for _, arg := range args {
		switch {
		case arg == "--":
			return append([]string{"serve"}, args...)
		case arg == "--help" || arg == "-h":
			return args
		case strings.HasPrefix(arg, "-"):
			continue
		case isSubcommand(rootCmd, arg):
			return args
		default:
			return append([]string{"serve"}, args...)
		}
	}

	return append([]string{"serve"}, args...)
}

// isSubcommand reports whether name matches a registered subcommand or alias.
func isSubcommand(cmd *cobra.Command, name string) bool {
	switch name {
	case "help", "completion", "__complete", "__completeNoDesc":
		return true
	}
	for _, sub := range cmd.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return true
		}
	}
	return false
}

// setup resolves the configuration and installs the default logger.
// Flags win over the environment, which wins over the defaults.
func (f *rootFlags) setup(cmd *cobra.Command) error {
	if f.envFile != "" {
		cfg, err := config.LoadFile(f.envFile)
		if err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f.envFile, err)
		}
		f.cfg = cfg
	} else {
		f.cfg = config.Load()
	}

	f.cfg.LogLevel = cmp.Or(f.logLevel, f.cfg.LogLevel)
	f.cfg.LogFormat = cmp.Or(f.logFormat, f.cfg.LogFormat)
	return logging.Setup(cmd.ErrOrStderr(), f.cfg.LogLevel, f.cfg.LogFormat)
}

// ============================================================================
// SHARED FLAGS
// ============================================================================

type dataFlags struct {
	path string
}

func addDataFlags(cmd *cobra.Command, f *dataFlags) {
	cmd.Flags().StringVar(&f.path, "data", "", "Path to the product CSV (default $"+config.EnvData+" or "+config.DefaultData+")")
}

func (f dataFlags) resolve(cfg config.Config) string {
	return cmp.Or(f.path, cfg.DataPath)
}

type engineFlags struct {
	bins       int
	markerSize float64
}

func addEngineFlags(cmd *cobra.Command, f *engineFlags) {
	cmd.Flags().IntVar(&f.bins, "bins", engine.DefaultHistogramBins, "Number of Stock histogram bins")
	cmd.Flags().Float64Var(&f.markerSize, "marker-size", engine.DefaultMaxMarkerSize, "Scatter marker diameter for the largest Stock")
}

func (f engineFlags) options() []engine.Option {
	return []engine.Option{
		engine.WithHistogramBins(f.bins),
		engine.WithMaxMarkerSize(f.markerSize),
	}
}

type selectionFlags struct {
	categories []string
	dark       bool
}

func addSelectionFlags(cmd *cobra.Command, f *selectionFlags) {
	cmd.Flags().StringArrayVarP(&f.categories, "category", "c", nil, "Keep only this category; repeatable (default all)")
	cmd.Flags().BoolVar(&f.dark, "dark", false, "Use the dark theme")
}

func (f selectionFlags) selection() engine.Selection {
	return engine.Selection{Categories: f.categories, Dark: f.dark}
}
