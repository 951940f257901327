package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newURLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "url <file>",
		Short: "Print the permanent web link of a file at the checked out commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, abs, err := a.openRepo(args[0])
			if err != nil {
				return err
			}
			u, err := r.GenerateURL(abs)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			return nil
		},
	}
}
