package store

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitobject "github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/binary"

	"github.com/odvcencio/gitlink/pkg/object"
)

// Git returns an Opener backed by go-git reading the repository on disk.
func Git() Opener {
	return OpenerFunc(OpenGit)
}

// OpenGit opens the git repository whose working tree is rooted at root.
// Parent directories are not searched.
func OpenGit(root string) (Store, error) {
	r, err := git.PlainOpen(root)
	if err != nil {
		return nil, &Error{Op: "open", Err: fmt.Errorf("%s: %w", root, err)}
	}
	return &gitStore{repo: r}, nil
}

type gitStore struct {
	repo *git.Repository
}

func (s *gitStore) Head() (Head, error) {
	ref, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Head{}, &Error{Op: "head", Err: ErrNoHead}
		}
		return Head{}, &Error{Op: "head", Err: err}
	}
	head := Head{Commit: object.Hash(ref.Hash().String())}
	if ref.Name().IsBranch() {
		head.Branch = ref.Name().Short()
	}
	return head, nil
}

func (s *gitStore) RemoteURL(name string) (string, error) {
	rem, err := s.repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", &Error{Op: "remote", Err: fmt.Errorf("%w: %q", ErrRemoteNotFound, name)}
		}
		return "", &Error{Op: "remote", Err: err}
	}
	urls := rem.Config().URLs
	if len(urls) == 0 || urls[0] == "" {
		return "", &Error{Op: "remote", Err: fmt.Errorf("%w: %q has no URL", ErrRemoteNotFound, name)}
	}
	return urls[0], nil
}

func (s *gitStore) Blob(h object.Hash) (object.Blob, error) {
	b, err := s.repo.BlobObject(plumbing.NewHash(string(h)))
	if err != nil {
		return object.Blob{}, lookupError("blob", h, err)
	}
	rd, err := b.Reader()
	if err != nil {
		return object.Blob{}, &Error{Op: "blob", Err: err}
	}
	defer rd.Close()
	isBinary, err := binary.IsBinary(rd)
	if err != nil {
		return object.Blob{}, &Error{Op: "blob", Err: err}
	}
	return object.Blob{Hash: h, Size: b.Size, Binary: isBinary}, nil
}

func (s *gitStore) Tree(h object.Hash) (object.Tree, error) {
	t, err := s.repo.TreeObject(plumbing.NewHash(string(h)))
	if err != nil {
		return object.Tree{}, lookupError("tree", h, err)
	}
	entries := make([]object.TreeEntry, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, object.TreeEntry{
			Name: e.Name,
			Mode: strconv.FormatUint(uint64(e.Mode), 8),
			Hash: object.Hash(e.Hash.String()),
		})
	}
	return object.Tree{Hash: h, Entries: entries}, nil
}

func (s *gitStore) Commit(h object.Hash) (object.Commit, error) {
	c, err := s.repo.CommitObject(plumbing.NewHash(string(h)))
	if err != nil {
		return object.Commit{}, lookupError("commit", h, err)
	}
	return commitProjection(c), nil
}

func (s *gitStore) Tag(h object.Hash) (object.Tag, error) {
	t, err := s.repo.TagObject(plumbing.NewHash(string(h)))
	if err != nil {
		return object.Tag{}, lookupError("tag", h, err)
	}
	return object.Tag{
		Hash:        h,
		Name:        t.Name,
		Message:     t.Message,
		Target:      object.Hash(t.Target.String()),
		TargetType:  object.ObjectType(t.TargetType.String()),
		TaggerName:  t.Tagger.Name,
		TaggerEmail: t.Tagger.Email,
		Time:        t.Tagger.When.Unix(),
	}, nil
}

func (s *gitStore) Refs() ([]string, error) {
	iter, err := s.repo.References()
	if err != nil {
		return nil, &Error{Op: "refs", Err: err}
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().String())
		return nil
	})
	if err != nil {
		return nil, &Error{Op: "refs", Err: err}
	}
	return names, nil
}

func (s *gitStore) Status(path string) (StatusFlags, error) {
	wt, err := s.repo.Worktree()
	if err != nil {
		return 0, &Error{Op: "status", Err: err}
	}
	st, err := wt.Status()
	if err != nil {
		return 0, &Error{Op: "status", Err: err}
	}
	fs, ok := st[path]
	if !ok || fs == nil {
		return 0, nil
	}
	return worktreeFlags(fs.Worktree) | stagingFlags(fs.Staging), nil
}

func (s *gitStore) PathBlob(commit object.Hash, path string) (object.Hash, error) {
	c, err := s.repo.CommitObject(plumbing.NewHash(string(commit)))
	if err != nil {
		return "", lookupError("path blob", commit, err)
	}
	f, err := c.File(path)
	if err != nil {
		if errors.Is(err, gitobject.ErrFileNotFound) || errors.Is(err, gitobject.ErrDirectoryNotFound) {
			return "", &Error{Op: "path blob", Err: fmt.Errorf("%w: %s at %s", ErrPathNotFound, path, commit)}
		}
		return "", &Error{Op: "path blob", Err: err}
	}
	return object.Hash(f.Hash.String()), nil
}

func (s *gitStore) PathLastCommit(path string) (object.Commit, error) {
	head, err := s.Head()
	if err != nil {
		return object.Commit{}, err
	}
	iter, err := s.repo.Log(&git.LogOptions{
		From:     plumbing.NewHash(string(head.Commit)),
		FileName: &path,
	})
	if err != nil {
		return object.Commit{}, &Error{Op: "log", Err: err}
	}
	defer iter.Close()

	c, err := iter.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return object.Commit{}, &Error{Op: "log", Err: fmt.Errorf("%w: no commits touch %s", ErrPathNotFound, path)}
		}
		return object.Commit{}, &Error{Op: "log", Err: err}
	}
	return commitProjection(c), nil
}

func commitProjection(c *gitobject.Commit) object.Commit {
	parents := make([]object.Hash, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, object.Hash(p.String()))
	}
	return object.Commit{
		Hash:        object.Hash(c.Hash.String()),
		Message:     c.Message,
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		Time:        c.Author.When.Unix(),
		CommitTime:  c.Committer.When.Unix(),
		TreeHash:    object.Hash(c.TreeHash.String()),
		Parents:     parents,
	}
}

func lookupError(op string, h object.Hash, err error) error {
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return &Error{Op: op, Err: fmt.Errorf("%w: %s", object.ErrNotFound, h)}
	}
	return &Error{Op: op, Err: err}
}

func worktreeFlags(code git.StatusCode) StatusFlags {
	switch code {
	case git.Untracked:
		return WorktreeNew
	case git.Modified:
		return WorktreeModified
	case git.Deleted:
		return WorktreeDeleted
	case git.Renamed:
		return WorktreeRenamed
	case git.UpdatedButUnmerged:
		return Conflicted
	}
	return 0
}

func stagingFlags(code git.StatusCode) StatusFlags {
	switch code {
	case git.Added, git.Copied:
		return IndexNew
	case git.Modified:
		return IndexModified
	case git.Deleted:
		return IndexDeleted
	case git.Renamed:
		return IndexRenamed
	case git.UpdatedButUnmerged:
		return Conflicted
	}
	return 0
}
