package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/aemkit/version"
)

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := version.GetVersionInfo()
			return c.printer().result(info, info.String())
		},
	}
}
