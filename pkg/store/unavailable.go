package store

import "github.com/odvcencio/gitlink/pkg/object"

// Unavailable returns an Opener for environments without repository
// access. Opening succeeds; every query fails with ErrUnavailable.
func Unavailable() Opener {
	return OpenerFunc(func(string) (Store, error) {
		return unavailable{}, nil
	})
}

type unavailable struct{}

func unavailableErr(op string) error {
	return &Error{Op: op, Err: ErrUnavailable}
}

func (unavailable) Head() (Head, error)              { return Head{}, unavailableErr("head") }
func (unavailable) RemoteURL(string) (string, error) { return "", unavailableErr("remote") }

func (unavailable) Blob(object.Hash) (object.Blob, error) {
	return object.Blob{}, unavailableErr("blob")
}

func (unavailable) Tree(object.Hash) (object.Tree, error) {
	return object.Tree{}, unavailableErr("tree")
}

func (unavailable) Commit(object.Hash) (object.Commit, error) {
	return object.Commit{}, unavailableErr("commit")
}

func (unavailable) Tag(object.Hash) (object.Tag, error) {
	return object.Tag{}, unavailableErr("tag")
}

func (unavailable) Refs() ([]string, error)            { return nil, unavailableErr("refs") }
func (unavailable) Status(string) (StatusFlags, error) { return 0, unavailableErr("status") }

func (unavailable) PathBlob(object.Hash, string) (object.Hash, error) {
	return "", unavailableErr("path blob")
}

func (unavailable) PathLastCommit(string) (object.Commit, error) {
	return object.Commit{}, unavailableErr("log")
}
