package manifest

import (
	"slices"
	"strings"

	"github.com/odvcencio/gitlink/pkg/batch"
	"github.com/odvcencio/gitlink/pkg/ident"
)

// ItemError is a file whose identifier could not be computed.
type ItemError struct {
	FilePath string `json:"filePath"`
	Error    string `json:"error"`
}

// Report buckets the current results against a previous manifest. Every
// list is sorted by file path.
type Report struct {
	Added     []string    `json:"added"`
	Modified  []string    `json:"modified"`
	Unchanged []string    `json:"unchanged"`
	Removed   []string    `json:"removed"`
	Errors    []ItemError `json:"errors"`
}

// Changed reports whether anything was added, modified or removed.
func (r Report) Changed() bool {
	return len(r.Added)+len(r.Modified)+len(r.Removed) > 0
}

// Compare classifies each result against previous. A failed result counts
// as seen, so its previous entry is not reported removed.
func Compare(current batch.Results, previous Manifest) Report {
	report := Report{
		Added:     []string{},
		Modified:  []string{},
		Unchanged: []string{},
		Removed:   []string{},
		Errors:    []ItemError{},
	}
	seen := make(map[string]bool, len(current))
	for _, r := range current {
		if r.FilePath == "" {
			continue
		}
		seen[r.FilePath] = true

		if !r.OK() {
			msg := r.Error
			if msg == "" {
				msg = "unknown error"
			}
			report.Errors = append(report.Errors, ItemError{FilePath: r.FilePath, Error: msg})
			continue
		}

		prev, ok := previous[r.FilePath]
		switch {
		case !ok || prev == "":
			report.Added = append(report.Added, r.FilePath)
		case prev != r.Identifier:
			report.Modified = append(report.Modified, r.FilePath)
		default:
			report.Unchanged = append(report.Unchanged, r.FilePath)
		}
	}
	for path := range previous {
		if !seen[path] {
			report.Removed = append(report.Removed, path)
		}
	}

	slices.Sort(report.Added)
	slices.Sort(report.Modified)
	slices.Sort(report.Unchanged)
	slices.Sort(report.Removed)
	slices.SortFunc(report.Errors, func(a, b ItemError) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return report
}

// ContentChanged reports whether two metadata snapshots describe different
// content. Blob hashes decide when both are present, then commit hashes;
// otherwise the file is assumed changed.
func ContentChanged(a, b ident.Metadata) bool {
	if a.FileHash != "" && b.FileHash != "" {
		return a.FileHash != b.FileHash
	}
	if a.CommitHash != "" && b.CommitHash != "" {
		return a.CommitHash != b.CommitHash
	}
	return true
}
