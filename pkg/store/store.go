// Package store defines the read-only object-store queries the repo
// package issues, plus the implementations selectable at composition time.
package store

import (
	"errors"
	"fmt"

	"github.com/odvcencio/gitlink/pkg/object"
)

var (
	// ErrUnavailable is returned by every operation of the Unavailable store.
	ErrUnavailable = errors.New("repository operations are not available in this environment")
	// ErrRemoteNotFound is returned when the named remote is not configured
	// or has no URL.
	ErrRemoteNotFound = errors.New("remote not found")
	// ErrNoHead is returned when HEAD does not resolve to a commit, as in a
	// repository without commits.
	ErrNoHead = errors.New("HEAD does not point at a commit")
	// ErrPathNotFound is returned when a path is absent from a commit's tree
	// or history.
	ErrPathNotFound = errors.New("path not found in commit")
)

// Error is a failure surfaced by the object store, tagged with the query
// that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Head describes the current checkout position.
type Head struct {
	Branch string      // short branch name, empty when detached
	Commit object.Hash // commit HEAD resolves to
}

// Detached reports whether HEAD names a commit rather than a branch.
func (h Head) Detached() bool {
	return h.Branch == ""
}

// StatusFlags is the set of pending changes the store reports for a path.
type StatusFlags uint16

const (
	WorktreeNew StatusFlags = 1 << iota
	WorktreeModified
	WorktreeDeleted
	WorktreeRenamed
	IndexNew
	IndexModified
	IndexDeleted
	IndexRenamed
	Conflicted
)

// Has reports whether all bits of flag are set.
func (f StatusFlags) Has(flag StatusFlags) bool {
	return f&flag == flag && flag != 0
}

// Store answers read-only queries against one repository. Implementations
// return *Error for every failure.
type Store interface {
	Head() (Head, error)
	RemoteURL(name string) (string, error)

	Blob(h object.Hash) (object.Blob, error)
	Tree(h object.Hash) (object.Tree, error)
	Commit(h object.Hash) (object.Commit, error)
	Tag(h object.Hash) (object.Tag, error)

	// Refs lists every reference name in the store's iteration order.
	Refs() ([]string, error)
	// Status reports pending changes for a root-relative, slash-separated
	// path. A path without changes yields zero flags.
	Status(path string) (StatusFlags, error)
	// PathBlob returns the blob hash of path in commit's tree.
	PathBlob(commit object.Hash, path string) (object.Hash, error)
	// PathLastCommit returns the newest commit reachable from HEAD that
	// touched path.
	PathLastCommit(path string) (object.Commit, error)
}

// Opener opens the store of the repository rooted at root.
type Opener interface {
	Open(root string) (Store, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(root string) (Store, error)

func (f OpenerFunc) Open(root string) (Store, error) {
	return f(root)
}
