package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlink/pkg/ident"
)

func newIdentifyCmd(a *app) *cobra.Command {
	var (
		algorithm string
		encoding  string
		short     bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "identify <file>",
		Short: "Print a deterministic identifier for a tracked file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.IdentOptions()
			if algorithm != "" {
				alg, err := ident.ParseAlgorithm(algorithm)
				if err != nil {
					return err
				}
				opts.Algorithm = alg
			}
			if encoding != "" {
				enc, err := ident.ParseEncoding(encoding)
				if err != nil {
					return err
				}
				opts.Encoding = enc
			}

			r, abs, err := a.openRepo(args[0])
			if err != nil {
				return err
			}
			meta, err := r.Metadata(abs)
			if err != nil {
				return err
			}
			id, err := ident.Generate(meta, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeJSON(out, struct {
					ident.Identifier
					Metadata ident.Metadata `json:"metadata"`
				}{id, meta})
			case short:
				fmt.Fprintln(out, id.Short)
			default:
				fmt.Fprintln(out, id.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", "", "digest: sha256, sha1 or blake2b (default from config)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "digest encoding: hex or base64 (default from config)")
	cmd.Flags().BoolVar(&short, "short", false, "print the short form")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the identifier with its metadata as JSON")
	return cmd
}
