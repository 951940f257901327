package repo

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/odvcencio/gitlink/pkg/ident"
	"github.com/odvcencio/gitlink/pkg/object"
	"github.com/odvcencio/gitlink/pkg/remote"
	"github.com/odvcencio/gitlink/pkg/store"
)

// unknownOwner stands in for the owner when no parseable remote exists.
const unknownOwner = "unknown"

// Metadata collects the identity-bearing facts about a tracked file: the
// last commit touching it, its blob at HEAD and the repository identity.
// LastModified is that commit's committer time. Without a usable remote the
// identity falls back to owner "unknown" and the root directory name.
func (r *Repo) Metadata(filePath string) (ident.Metadata, error) {
	s, root, err := r.open()
	if err != nil {
		return ident.Metadata{}, err
	}
	rel, err := relativePath("metadata", root, filePath)
	if err != nil {
		return ident.Metadata{}, err
	}
	head, err := s.Head()
	if err != nil {
		return ident.Metadata{}, err
	}

	last, err := s.PathLastCommit(rel)
	if err != nil {
		if isPathNotFound(err) {
			return ident.Metadata{}, &PathError{Op: "metadata", Path: rel, Err: ErrFileNotTracked}
		}
		return ident.Metadata{}, err
	}
	blob, err := s.PathBlob(head.Commit, rel)
	if err != nil {
		if isPathNotFound(err) {
			return ident.Metadata{}, &PathError{Op: "metadata", Path: rel, Err: ErrFileNotTracked}
		}
		return ident.Metadata{}, err
	}

	id, err := r.identity(s, root)
	if err != nil {
		return ident.Metadata{}, err
	}
	branch := head.Branch
	if head.Detached() {
		branch = "HEAD"
	}
	return ident.Metadata{
		Source:       ident.SourceLocal,
		Owner:        id.Owner,
		Repo:         id.Repo,
		Branch:       branch,
		CommitHash:   last.Hash,
		FileHash:     blob,
		FilePath:     rel,
		LastModified: time.Unix(last.CommitTime, 0).UTC().Format(time.RFC3339),
		RepoPath:     root,
	}, nil
}

// remoteIdentity parses the configured remote. A missing remote or a URL
// the parser rejects yields ok == false; store failures are returned.
func (r *Repo) remoteIdentity(s store.Store) (remote.Identity, bool, error) {
	remoteURL, err := s.RemoteURL(r.remoteName())
	if err != nil {
		if errors.Is(err, store.ErrRemoteNotFound) {
			return remote.Identity{}, false, nil
		}
		return remote.Identity{}, false, err
	}
	id, err := r.builder.Parser().Parse(remoteURL)
	if err != nil {
		return remote.Identity{}, false, nil
	}
	return id, true, nil
}

func (r *Repo) identity(s store.Store, root string) (remote.Identity, error) {
	id, ok, err := r.remoteIdentity(s)
	if err != nil || ok {
		return id, err
	}
	r.logger().WithField("root", root).Debug("no parseable remote, using directory name as identity")
	return remote.Identity{Owner: unknownOwner, Repo: filepath.Base(root)}, nil
}

// Info summarizes one file: where it lives, what HEAD is and, when a usable
// remote exists, its link.
type Info struct {
	Root     string      `json:"root"`
	Path     string      `json:"path"`
	HeadRef  string      `json:"headRef"`
	Commit   object.Hash `json:"commit"`
	Status   FileStatus  `json:"status"`
	FileHash object.Hash `json:"fileHash,omitempty"`
	Owner    string      `json:"owner,omitempty"`
	Repo     string      `json:"repo,omitempty"`
	URL      string      `json:"url,omitempty"`
}

// Info gathers an Info for filePath. A missing or unsupported remote
// leaves the identity and URL empty; other failures are returned.
func (r *Repo) Info(filePath string) (Info, error) {
	s, root, err := r.open()
	if err != nil {
		return Info{}, err
	}
	rel, err := relativePath("info", root, filePath)
	if err != nil {
		return Info{}, err
	}
	if err := checkFileExists("info", root, rel); err != nil {
		return Info{}, err
	}
	head, err := s.Head()
	if err != nil {
		return Info{}, err
	}
	flags, err := s.Status(rel)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Root:    root,
		Path:    rel,
		HeadRef: head.Branch,
		Commit:  head.Commit,
		Status:  Classify(flags),
	}
	if head.Detached() {
		info.HeadRef = string(head.Commit)
	}

	blob, err := s.PathBlob(head.Commit, rel)
	switch {
	case err == nil:
		info.FileHash = blob
	case !isPathNotFound(err):
		return Info{}, fmt.Errorf("info: %w", err)
	}

	id, ok, err := r.remoteIdentity(s)
	if err != nil {
		return Info{}, err
	}
	if ok {
		info.Owner = id.Owner
		info.Repo = id.Repo
		info.URL = r.builder.Build(id, string(head.Commit), rel)
	}
	return info, nil
}
