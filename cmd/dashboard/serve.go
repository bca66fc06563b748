package main

import (
	"cmp"

	"github.com/spf13/cobra"

	"github.com/spektr-org/dashboard/config"
	"github.com/spektr-org/dashboard/dataset"
	"github.com/spektr-org/dashboard/server"
)

type serveFlags struct {
	addr        string
	corsOrigins []string
	data        dataFlags
	engine      engineFlags
}

func newServeCmd(root *rootFlags) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long:  "Load the product CSV once and serve the dashboard page, its JSON API and chart images until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.run(cmd, root.cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.addr, "addr", "a", "", "Address to listen on (default $"+config.EnvAddr+" or "+config.DefaultAddr+")")
	cmd.Flags().StringSliceVar(&flags.corsOrigins, "cors-origin", nil, "Origin allowed to call the API; repeatable (default $"+config.EnvCORSOrigins+" or any)")
	addDataFlags(cmd, &flags.data)
	addEngineFlags(cmd, &flags.engine)

	return cmd
}

func (f *serveFlags) run(cmd *cobra.Command, cfg config.Config) error {
	ds, err := dataset.Load(f.data.resolve(cfg))
	if err != nil {
		return err
	}

	origins := f.corsOrigins
	if len(origins) == 0 {
		origins = cfg.CORSOrigins
	}

	srv, err := server.New(ds, server.Options{
		CORSOrigins: origins,
		Engine:      f.engine.options(),
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context(), cmp.Or(f.addr, cfg.Addr))
}
