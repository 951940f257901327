package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gitlink/pkg/batch"
	"github.com/odvcencio/gitlink/pkg/manifest"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		output       string
		manifestPath string
		concurrency  int
		progress     bool
	)
	cmd := &cobra.Command{
		Use:   "batch <inputs.json>",
		Short: "Generate identifiers for every file listed in a JSON input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.runBatch(cmd, args[0], concurrency, progress)
			if err != nil {
				return err
			}
			if err := writeJSONTo(cmd.OutOrStdout(), output, results); err != nil {
				return fmt.Errorf("batch: write results: %w", err)
			}
			if manifestPath != "" {
				if err := manifest.Save(manifestPath, manifest.FromResults(results)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d/%d succeeded\n", results.Succeeded(), len(results))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write results to this file instead of stdout")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "also save a manifest (zstd-compressed when the name ends in .zst)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum files processed at once (default from config)")
	cmd.Flags().BoolVar(&progress, "progress", false, "report progress on stderr")
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var (
		output      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "diff <inputs.json> <manifest>",
		Short: "Report files added, modified or removed since a saved manifest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			previous, err := manifest.Load(args[1])
			switch {
			case errors.Is(err, fs.ErrNotExist):
				a.log.WithField("manifest", args[1]).Warn("manifest not found, treating every file as added")
				previous = manifest.Manifest{}
			case err != nil:
				return err
			}

			results, err := a.runBatch(cmd, args[0], concurrency, false)
			if err != nil {
				return err
			}
			report := manifest.Compare(results, previous)
			if err := writeJSONTo(cmd.OutOrStdout(), output, report); err != nil {
				return fmt.Errorf("diff: write report: %w", err)
			}

			errOut := cmd.ErrOrStderr()
			fmt.Fprintln(errOut, "Summary:")
			fmt.Fprintf(errOut, "  Added: %d\n", len(report.Added))
			fmt.Fprintf(errOut, "  Modified: %d\n", len(report.Modified))
			fmt.Fprintf(errOut, "  Unchanged: %d\n", len(report.Unchanged))
			fmt.Fprintf(errOut, "  Removed: %d\n", len(report.Removed))
			fmt.Fprintf(errOut, "  Errors: %d\n", len(report.Errors))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum files processed at once (default from config)")
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, inputsPath string, concurrency int, progress bool) (batch.Results, error) {
	f, err := os.Open(inputsPath)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	inputs, err := batch.DecodeInputs(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	if concurrency <= 0 {
		concurrency = a.cfg.Batch.Concurrency
	}
	opts := batch.Options{
		Concurrency: concurrency,
		Ident:       a.cfg.IdentOptions(),
		NewRepo:     a.newRepo,
		Logger:      a.log,
	}
	if progress {
		errOut := cmd.ErrOrStderr()
		opts.Progress = func(done, total int) {
			fmt.Fprintf(errOut, "Progress: %d/%d\n", done, total)
		}
	}
	return batch.Run(cmd.Context(), inputs, opts)
}
