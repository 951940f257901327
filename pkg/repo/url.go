package repo

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/odvcencio/gitlink/pkg/object"
	"github.com/odvcencio/gitlink/pkg/store"
)

// GenerateURL returns the web URL of filePath at the commit currently
// checked out. filePath is absolute or relative to the root. Any failing
// step aborts the whole call.
func (r *Repo) GenerateURL(filePath string) (string, error) {
	s, root, err := r.open()
	if err != nil {
		return "", err
	}
	remoteURL, err := s.RemoteURL(r.remoteName())
	if err != nil {
		return "", err
	}
	rel, err := relativePath("generate url", root, filePath)
	if err != nil {
		return "", err
	}
	commit, err := headCommitForFile(s, "generate url", root, rel)
	if err != nil {
		return "", err
	}
	u, err := r.builder.Generate(remoteURL, string(commit), rel)
	if err != nil {
		return "", fmt.Errorf("generate url: %w", err)
	}
	r.logger().WithFields(logrus.Fields{
		"remote": remoteURL,
		"path":   rel,
		"commit": commit,
	}).Debug("generated url")
	return u, nil
}

// FileHash returns the commit the current branch points at, after checking
// that filePath exists under the root.
func (r *Repo) FileHash(filePath string) (object.Hash, error) {
	root, err := r.boundRoot()
	if err != nil {
		return "", err
	}
	rel, err := relativePath("file hash", root, filePath)
	if err != nil {
		return "", err
	}
	if err := checkFileExists("file hash", root, rel); err != nil {
		return "", err
	}
	s, _, err := r.open()
	if err != nil {
		return "", err
	}
	head, err := s.Head()
	if err != nil {
		return "", err
	}
	return head.Commit, nil
}

// FileHashAtCommit returns the blob hash of filePath in commit's tree.
func (r *Repo) FileHashAtCommit(filePath, commit string) (object.Hash, error) {
	root, err := r.boundRoot()
	if err != nil {
		return "", err
	}
	rel, err := relativePath("file hash at commit", root, filePath)
	if err != nil {
		return "", err
	}
	h, err := object.ParseHash(commit)
	if err != nil {
		return "", err
	}
	s, _, err := r.open()
	if err != nil {
		return "", err
	}
	return s.PathBlob(h, rel)
}

func headCommitForFile(s store.Store, op, root, rel string) (object.Hash, error) {
	if err := checkFileExists(op, root, rel); err != nil {
		return "", err
	}
	head, err := s.Head()
	if err != nil {
		return "", err
	}
	return head.Commit, nil
}

func isPathNotFound(err error) bool {
	return errors.Is(err, store.ErrPathNotFound)
}
