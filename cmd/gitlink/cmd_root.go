package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlink/pkg/repo"
)

func newRootPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "root [path]",
		Short: "Print the root of the repository enclosing path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := "."
			if len(args) == 1 {
				start = args[0]
			}
			root, err := repo.FindRootWithMarker(start, a.cfg.Marker)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), root)
			return nil
		},
	}
}
