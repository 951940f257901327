package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Summarize a file: root, head, status, blob and link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, abs, err := a.openRepo(args[0])
			if err != nil {
				return err
			}
			info, err := r.Info(abs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, info)
			}
			fmt.Fprintf(out, "root:    %s\n", info.Root)
			fmt.Fprintf(out, "path:    %s\n", info.Path)
			fmt.Fprintf(out, "head:    %s\n", info.HeadRef)
			fmt.Fprintf(out, "commit:  %s\n", info.Commit)
			fmt.Fprintf(out, "status:  %s\n", info.Status)
			if info.FileHash != "" {
				fmt.Fprintf(out, "blob:    %s\n", info.FileHash)
			}
			if info.URL != "" {
				fmt.Fprintf(out, "remote:  %s/%s\n", info.Owner, info.Repo)
				fmt.Fprintf(out, "url:     %s\n", info.URL)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
