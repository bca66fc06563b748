package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spektr-org/dashboard"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dashboard version %s\n", dashboard.Version)
		},
	}
}
