// Package repo resolves repository roots and answers URL, object, ref and
// status queries against the bound repository.
package repo

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/odvcencio/gitlink/pkg/permalink"
	"github.com/odvcencio/gitlink/pkg/store"
)

// DefaultRemote is the remote whose URL anchors generated links.
const DefaultRemote = "origin"

// ErrNotBound is returned by every query issued before FindRepository.
var ErrNotBound = errors.New("repository not found: call FindRepository first")

// Repo is a handle on one repository. The zero value is an unbound Repo
// with the same defaults as New. A Repo is not safe for concurrent use:
// FindRepository rebinds it.
type Repo struct {
	root    string
	bound   bool
	marker  string
	remote  string
	opener  store.Opener
	builder permalink.Builder
	log     logrus.FieldLogger
}

// Option configures a Repo.
type Option func(*Repo)

// WithOpener selects the object store implementation.
func WithOpener(o store.Opener) Option {
	return func(r *Repo) {
		if o != nil {
			r.opener = o
		}
	}
}

// WithLogger routes debug output to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Repo) {
		if l != nil {
			r.log = l
		}
	}
}

// WithRemote names the remote used for link generation.
func WithRemote(name string) Option {
	return func(r *Repo) {
		if name != "" {
			r.remote = name
		}
	}
}

// WithMarker changes the metadata directory searched for by FindRepository.
func WithMarker(marker string) Option {
	return func(r *Repo) {
		if marker != "" {
			r.marker = marker
		}
	}
}

// WithBuilder sets the host and escaping used for generated links.
func WithBuilder(b permalink.Builder) Option {
	return func(r *Repo) {
		r.builder = b
	}
}

// New returns an unbound Repo backed by the git object store.
func New(opts ...Option) *Repo {
	r := &Repo{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var discard = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (r *Repo) logger() logrus.FieldLogger {
	if r.log == nil {
		return discard
	}
	return r.log
}

func (r *Repo) markerName() string {
	if r.marker == "" {
		return DefaultMarker
	}
	return r.marker
}

func (r *Repo) remoteName() string {
	if r.remote == "" {
		return DefaultRemote
	}
	return r.remote
}

func (r *Repo) storeOpener() store.Opener {
	if r.opener == nil {
		return store.Git()
	}
	return r.opener
}

// FindRepository binds r to the repository enclosing path. On failure the
// previous binding, if any, is kept.
func (r *Repo) FindRepository(path string) error {
	root, err := FindRootWithMarker(path, r.markerName())
	if err != nil {
		r.logger().WithField("path", path).WithError(err).Debug("repository root not found")
		return err
	}
	r.root = root
	r.bound = true
	r.logger().WithFields(logrus.Fields{"path": path, "root": root}).Debug("bound repository")
	return nil
}

// Root returns the bound root and whether r is bound.
func (r *Repo) Root() (string, bool) {
	return r.root, r.bound
}

func (r *Repo) boundRoot() (string, error) {
	if !r.bound {
		return "", ErrNotBound
	}
	return r.root, nil
}

// open requires a binding and opens the store afresh; nothing is cached
// between calls.
func (r *Repo) open() (store.Store, string, error) {
	root, err := r.boundRoot()
	if err != nil {
		return nil, "", err
	}
	s, err := r.storeOpener().Open(root)
	if err != nil {
		return nil, "", err
	}
	r.logger().WithField("root", root).Debug("opened object store")
	return s, root, nil
}
