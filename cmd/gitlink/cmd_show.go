package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlink/pkg/object"
	"github.com/odvcencio/gitlink/pkg/repo"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		dir    string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:       "show <blob|tree|commit|tag> <hash>",
		Short:     "Show an object from the repository's object store",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"blob", "tree", "commit", "tag"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, err := a.openRepo(dir)
			if err != nil {
				return err
			}
			v, err := lookupObject(r, args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, v)
			}
			printObject(out, v)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "repo", "C", ".", "path inside the repository")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the object as JSON")
	return cmd
}

func lookupObject(r *repo.Repo, kind, ref string) (any, error) {
	switch object.ObjectType(kind) {
	case object.TypeBlob:
		return r.Blob(ref)
	case object.TypeTree:
		return r.Tree(ref)
	case object.TypeCommit:
		return r.Commit(ref)
	case object.TypeTag:
		return r.Tag(ref)
	}
	return nil, fmt.Errorf("show: unknown object type %q (want blob, tree, commit or tag)", kind)
}

func printObject(w io.Writer, v any) {
	switch o := v.(type) {
	case object.Blob:
		fmt.Fprintf(w, "blob %s\n", o.Hash)
		fmt.Fprintf(w, "size %d\n", o.Size)
		fmt.Fprintf(w, "binary %t\n", o.Binary)
	case object.Tree:
		for _, e := range o.Entries {
			fmt.Fprintf(w, "%s %s %s\t%s\n", padMode(e.Mode), entryType(e.Mode), e.Hash, e.Name)
		}
	case object.Commit:
		fmt.Fprintf(w, "commit %s\n", o.Hash)
		fmt.Fprintf(w, "tree %s\n", o.TreeHash)
		for _, p := range o.Parents {
			fmt.Fprintf(w, "parent %s\n", p)
		}
		fmt.Fprintf(w, "author %s <%s>\n", o.AuthorName, o.AuthorEmail)
		fmt.Fprintf(w, "date   %s\n", formatTime(o.Time))
		fmt.Fprintln(w)
		printMessage(w, o.Message)
	case object.Tag:
		fmt.Fprintf(w, "tag %s\n", o.Name)
		fmt.Fprintf(w, "object %s\n", o.Target)
		fmt.Fprintf(w, "type %s\n", o.TargetType)
		fmt.Fprintf(w, "tagger %s <%s>\n", o.TaggerName, o.TaggerEmail)
		fmt.Fprintf(w, "date   %s\n", formatTime(o.Time))
		fmt.Fprintln(w)
		printMessage(w, o.Message)
	}
}

func printMessage(w io.Writer, msg string) {
	for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func padMode(mode string) string {
	if len(mode) >= 6 {
		return mode
	}
	return strings.Repeat("0", 6-len(mode)) + mode
}

func entryType(mode string) object.ObjectType {
	switch mode {
	case object.TreeModeDir:
		return object.TypeTree
	case object.TreeModeSubmodule:
		return object.TypeCommit
	}
	return object.TypeBlob
}
