package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHeadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "head [path]",
		Short: "Print the current branch, or the commit when HEAD is detached",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := a.openRepo(pathArg(args))
			if err != nil {
				return err
			}
			head, err := r.HeadRef()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), head)
			return nil
		},
	}
}

func newRefsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refs [path]",
		Short: "List every reference in the repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := a.openRepo(pathArg(args))
			if err != nil {
				return err
			}
			refs, err := r.ListRefs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ref := range refs {
				fmt.Fprintln(out, ref)
			}
			return nil
		},
	}
}

func pathArg(args []string) string {
	if len(args) == 0 || args[0] == "" {
		return "."
	}
	return args[0]
}
