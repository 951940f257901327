package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gitlink",
		Short:         "Permanent web links and identifiers for files in git repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	a.bindFlags(root)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newRootPathCmd(a))
	root.AddCommand(newURLCmd(a))
	root.AddCommand(newHashCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newHeadCmd(a))
	root.AddCommand(newRefsCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newIdentifyCmd(a))
	root.AddCommand(newInfoCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newDiffCmd(a))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gitlink %s\n", version)
		},
	}
}
