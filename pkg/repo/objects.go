package repo

import (
	"github.com/odvcencio/gitlink/pkg/object"
	"github.com/odvcencio/gitlink/pkg/store"
)

// lookup validates ref before the store sees it.
func lookup[T any](r *Repo, ref string, get func(store.Store, object.Hash) (T, error)) (T, error) {
	var zero T
	if _, err := r.boundRoot(); err != nil {
		return zero, err
	}
	h, err := object.ParseHash(ref)
	if err != nil {
		return zero, err
	}
	s, _, err := r.open()
	if err != nil {
		return zero, err
	}
	return get(s, h)
}

// Blob returns the blob stored under ref.
func (r *Repo) Blob(ref string) (object.Blob, error) {
	return lookup(r, ref, store.Store.Blob)
}

// Tree returns the tree stored under ref.
func (r *Repo) Tree(ref string) (object.Tree, error) {
	return lookup(r, ref, store.Store.Tree)
}

// Commit returns the commit stored under ref.
func (r *Repo) Commit(ref string) (object.Commit, error) {
	return lookup(r, ref, store.Store.Commit)
}

// Tag returns the annotated tag stored under ref.
func (r *Repo) Tag(ref string) (object.Tag, error) {
	return lookup(r, ref, store.Store.Tag)
}
