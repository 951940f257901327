package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlink/pkg/object"
)

func newHashCmd(a *app) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "hash <file>",
		Short: "Print the checked out commit, or the file's blob at --at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, abs, err := a.openRepo(args[0])
			if err != nil {
				return err
			}
			var h object.Hash
			if at != "" {
				h, err = r.FileHashAtCommit(abs, at)
			} else {
				h, err = r.FileHash(abs)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "commit whose tree supplies the blob hash")
	return cmd
}
