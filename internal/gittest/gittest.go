// Package gittest builds throwaway git repositories for tests.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	gitobject "github.com/go-git/go-git/v5/plumbing/object"
)

// Signature is the author and tagger used by every fixture commit.
var Signature = gitobject.Signature{
	Name:  "Test Author",
	Email: "test@example.com",
	When:  time.Unix(1700000000, 0).UTC(),
}

// Repo is a fixture repository rooted at Dir.
type Repo struct {
	Dir  string
	Git  *git.Repository
	Tree *git.Worktree
}

// New initializes an empty repository in a fresh temporary directory.
func New(t testing.TB) *Repo {
	t.Helper()
	dir := t.TempDir()
	// Resolve symlinked temp roots (macOS /var -> /private/var) so root
	// comparisons hold.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	r, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("git.PlainInit: %v", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &Repo{Dir: dir, Git: r, Tree: wt}
}

// Write creates or replaces a file given a slash-separated path.
func (r *Repo) Write(t testing.TB, rel, content string) string {
	t.Helper()
	abs := filepath.Join(r.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(abs), err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return abs
}

// Add stages the given paths.
func (r *Repo) Add(t testing.TB, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := r.Tree.Add(p); err != nil {
			t.Fatalf("Add(%q): %v", p, err)
		}
	}
}

// Commit writes files, stages them and commits with Signature as both
// author and committer. It returns the commit hash.
func (r *Repo) Commit(t testing.TB, msg string, files map[string]string) string {
	t.Helper()
	return r.CommitAs(t, msg, files, Signature, Signature)
}

// CommitAs is Commit with explicit author and committer signatures.
func (r *Repo) CommitAs(t testing.TB, msg string, files map[string]string, author, committer gitobject.Signature) string {
	t.Helper()
	for rel, content := range files {
		r.Write(t, rel, content)
		r.Add(t, rel)
	}
	h, err := r.Tree.Commit(msg, &git.CommitOptions{Author: &author, Committer: &committer})
	if err != nil {
		t.Fatalf("Commit(%q): %v", msg, err)
	}
	return h.String()
}

// SetOrigin configures the origin remote.
func (r *Repo) SetOrigin(t testing.TB, url string) {
	t.Helper()
	_, err := r.Git.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{url}})
	if err != nil {
		t.Fatalf("CreateRemote: %v", err)
	}
}

// Tag creates an annotated tag at commit and returns the tag object hash.
func (r *Repo) Tag(t testing.TB, name, commit, msg string) string {
	t.Helper()
	sig := Signature
	ref, err := r.Git.CreateTag(name, plumbing.NewHash(commit), &git.CreateTagOptions{
		Tagger:  &sig,
		Message: msg,
	})
	if err != nil {
		t.Fatalf("CreateTag(%q): %v", name, err)
	}
	return ref.Hash().String()
}

// Detach checks out commit without a branch.
func (r *Repo) Detach(t testing.TB, commit string) {
	t.Helper()
	if err := r.Tree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(commit)}); err != nil {
		t.Fatalf("Checkout(%s): %v", commit, err)
	}
}

// TreeOf returns the tree hash of commit.
func (r *Repo) TreeOf(t testing.TB, commit string) string {
	t.Helper()
	c, err := r.Git.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		t.Fatalf("CommitObject(%s): %v", commit, err)
	}
	return c.TreeHash.String()
}

// BlobOf returns the blob hash of path at commit.
func (r *Repo) BlobOf(t testing.TB, commit, path string) string {
	t.Helper()
	c, err := r.Git.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		t.Fatalf("CommitObject(%s): %v", commit, err)
	}
	f, err := c.File(path)
	if err != nil {
		t.Fatalf("File(%q): %v", path, err)
	}
	return f.Hash.String()
}
