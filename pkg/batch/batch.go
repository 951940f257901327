// Package batch generates identifiers for many files concurrently. A failing
// item never aborts the batch; its error is recorded in its Result.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/gitlink/pkg/ident"
	"github.com/odvcencio/gitlink/pkg/repo"
)

// DefaultConcurrency bounds the number of items processed at once.
const DefaultConcurrency = 10

// ErrInvalidInput is returned for items missing a repository or file path.
var ErrInvalidInput = errors.New("invalid batch input")

// Input names one file. File is absolute or relative to the root of the
// repository enclosing Repo.
type Input struct {
	Repo string `json:"repoPath"`
	File string `json:"filePath"`
}

func (in Input) String() string {
	return in.Repo + ":" + in.File
}

// Validate checks that both fields are set.
func (in Input) Validate() error {
	switch {
	case in.Repo == "":
		return fmt.Errorf("%w: repoPath is required", ErrInvalidInput)
	case in.File == "":
		return fmt.Errorf("%w: filePath is required", ErrInvalidInput)
	}
	return nil
}

// DecodeInputs reads a JSON array of inputs and validates each one.
func DecodeInputs(r io.Reader) ([]Input, error) {
	var inputs []Input
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("decode batch inputs: %w", err)
	}
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("batch input %d: %w", i, err)
		}
	}
	return inputs, nil
}

// Status is the outcome of one item.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome of one Input.
type Result struct {
	FilePath   string          `json:"filePath"`
	Repo       string          `json:"repoPath"`
	Status     Status          `json:"status"`
	Identifier string          `json:"identifier,omitempty"`
	Short      string          `json:"short,omitempty"`
	Error      string          `json:"error,omitempty"`
	Metadata   *ident.Metadata `json:"metadata,omitempty"`

	Err error `json:"-"`
}

// OK reports whether the item succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Results keeps the order of the inputs that produced it.
type Results []Result

// Err aggregates every item failure, or returns nil when all succeeded.
func (rs Results) Err() error {
	var merr *multierror.Error
	for _, r := range rs {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", r.FilePath, r.Err))
		}
	}
	return merr.ErrorOrNil()
}

// Succeeded counts successful items.
func (rs Results) Succeeded() int {
	n := 0
	for _, r := range rs {
		if r.OK() {
			n++
		}
	}
	return n
}

// Options configures Run.
type Options struct {
	// Concurrency bounds the workers; zero or less means DefaultConcurrency.
	Concurrency int
	Ident       ident.Options
	// Progress is called after each item with the number done so far.
	// Calls are serialized and done increases by one each time.
	Progress func(done, total int)
	// NewRepo builds the Repo used for one item. Defaults to repo.New.
	NewRepo func() *repo.Repo
	Logger  logrus.FieldLogger
}

// Run processes inputs with at most opts.Concurrency items in flight. Each
// item gets its own Repo. The returned error is non-nil only when ctx ends
// before every item ran; items that did not run carry ctx's error.
func Run(ctx context.Context, inputs []Input, opts Options) (Results, error) {
	results := make(Results, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	newRepo := opts.NewRepo
	if newRepo == nil {
		newRepo = func() *repo.Repo { return repo.New() }
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	var (
		mu   sync.Mutex
		done int
	)
	finish := func() {
		if opts.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		opts.Progress(done, len(inputs))
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, in := range inputs {
		i, in := i, in // per-iteration copies (go 1.21 loop-variable semantics)
		g.Go(func() error {
			defer finish()
			if err := ctx.Err(); err != nil {
				results[i] = failed(in, err)
				return nil
			}
			results[i] = process(newRepo(), in, opts.Ident)
			if results[i].Err != nil {
				log.WithFields(logrus.Fields{
					"repo": in.Repo,
					"path": in.File,
				}).WithError(results[i].Err).Debug("batch item failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}

func process(r *repo.Repo, in Input, opts ident.Options) Result {
	if err := in.Validate(); err != nil {
		return failed(in, err)
	}
	if err := r.FindRepository(in.Repo); err != nil {
		return failed(in, err)
	}
	meta, err := r.Metadata(in.File)
	if err != nil {
		return failed(in, err)
	}
	id, err := ident.Generate(meta, opts)
	if err != nil {
		return failed(in, err)
	}
	return Result{
		FilePath:   in.File,
		Repo:       in.Repo,
		Status:     StatusSuccess,
		Identifier: id.Value,
		Short:      id.Short,
		Metadata:   &meta,
	}
}

func failed(in Input, err error) Result {
	return Result{
		FilePath: in.File,
		Repo:     in.Repo,
		Status:   StatusError,
		Error:    err.Error(),
		Err:      err,
	}
}
