package repo

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/config"

	"github.com/odvcencio/gitlink/internal/gittest"
	"github.com/odvcencio/gitlink/pkg/object"
	"github.com/odvcencio/gitlink/pkg/permalink"
	"github.com/odvcencio/gitlink/pkg/remote"
	"github.com/odvcencio/gitlink/pkg/store"
)

const missingHash = "0123456789abcdef0123456789abcdef01234567"

func boundRepo(t *testing.T, fx *gittest.Repo, opts ...Option) *Repo {
	t.Helper()
	r := New(opts...)
	if err := r.FindRepository(fx.Dir); err != nil {
		t.Fatalf("FindRepository(%s): %v", fx.Dir, err)
	}
	return r
}

func TestUnboundOperationsFail(t *testing.T) {
	r := New()
	if _, ok := r.Root(); ok {
		t.Fatal("new Repo reports bound")
	}

	ops := map[string]func() error{
		"GenerateURL":      func() error { _, err := r.GenerateURL("a.txt"); return err },
		"FileHash":         func() error { _, err := r.FileHash("a.txt"); return err },
		"FileHashAtCommit": func() error { _, err := r.FileHashAtCommit("a.txt", missingHash); return err },
		"Blob":             func() error { _, err := r.Blob(missingHash); return err },
		"Tree":             func() error { _, err := r.Tree(missingHash); return err },
		"Commit":           func() error { _, err := r.Commit(missingHash); return err },
		"Tag":              func() error { _, err := r.Tag("not-a-hash"); return err },
		"ListRefs":         func() error { _, err := r.ListRefs(); return err },
		"FileStatus":       func() error { _, err := r.FileStatus("a.txt"); return err },
		"HeadRef":          func() error { _, err := r.HeadRef(); return err },
		"Metadata":         func() error { _, err := r.Metadata("a.txt"); return err },
		"Info":             func() error { _, err := r.Info("a.txt"); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrNotBound) {
			t.Fatalf("%s on unbound Repo error = %v, want ErrNotBound", name, err)
		}
	}
}

func TestFindRepositoryFailureKeepsBinding(t *testing.T) {
	fx := gittest.New(t)
	r := boundRepo(t, fx)

	err := r.FindRepository("")
	if !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("FindRepository(\"\") error = %v, want ErrInvalidPath", err)
	}
	root, ok := r.Root()
	if !ok || root != fx.Dir {
		t.Fatalf("Root() = %q, %v; want %q, true", root, ok, fx.Dir)
	}

	unbound := New(WithMarker(".gitlink-test-marker-absent"))
	if err := unbound.FindRepository(fx.Dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindRepository error = %v, want ErrNotFound", err)
	}
	if _, ok := unbound.Root(); ok {
		t.Fatal("failed FindRepository bound the Repo")
	}
}

func TestFindRepositoryRebinds(t *testing.T) {
	a := gittest.New(t)
	b := gittest.New(t)
	r := boundRepo(t, a)
	if err := r.FindRepository(b.Dir); err != nil {
		t.Fatalf("FindRepository: %v", err)
	}
	if root, _ := r.Root(); root != b.Dir {
		t.Fatalf("Root() = %q, want %q", root, b.Dir)
	}
}

func TestGenerateURL(t *testing.T) {
	fx := gittest.New(t)
	commit := fx.Commit(t, "initial", map[string]string{
		"src/main.rs":   "fn main() {}\n",
		".gitbook.yaml": "root: docs\n",
	})
	fx.SetOrigin(t, "git@github.com:rust-lang/rust.git")
	r := boundRepo(t, fx)

	tests := []struct {
		input string
		want  string
	}{
		{input: "src/main.rs", want: "https://github.com/rust-lang/rust/blob/" + commit + "/src/main.rs"},
		{input: filepath.Join(fx.Dir, "src", "main.rs"), want: "https://github.com/rust-lang/rust/blob/" + commit + "/src/main.rs"},
		{input: ".gitbook.yaml", want: "https://github.com/rust-lang/rust/blob/" + commit + "/.gitbook.yaml"},
	}
	for _, tc := range tests {
		got, err := r.GenerateURL(tc.input)
		if err != nil {
			t.Fatalf("GenerateURL(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("GenerateURL(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGenerateURLCustomHostAndRemote(t *testing.T) {
	fx := gittest.New(t)
	commit := fx.Commit(t, "initial", map[string]string{"a b.txt": "x\n"})
	if _, err := fx.Git.CreateRemote(&config.RemoteConfig{
		Name: "upstream",
		URLs: []string{"https://git.example.com/team/svc.git"},
	}); err != nil {
		t.Fatal(err)
	}
	r := boundRepo(t, fx,
		WithRemote("upstream"),
		WithBuilder(permalink.Builder{Host: "git.example.com", Escape: true}),
	)

	got, err := r.GenerateURL("a b.txt")
	if err != nil {
		t.Fatalf("GenerateURL: %v", err)
	}
	want := "https://git.example.com/team/svc/blob/" + commit + "/a%20b.txt"
	if got != want {
		t.Fatalf("GenerateURL = %q, want %q", got, want)
	}
}

func TestGenerateURLFailures(t *testing.T) {
	fx := gittest.New(t)
	fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	r := boundRepo(t, fx)

	if _, err := r.GenerateURL("a.txt"); !errors.Is(err, store.ErrRemoteNotFound) {
		t.Fatalf("GenerateURL without origin error = %v, want ErrRemoteNotFound", err)
	}

	fx.SetOrigin(t, "https://gitlab.com/team/svc.git")
	if _, err := r.GenerateURL("a.txt"); !errors.Is(err, remote.ErrUnsupportedFormat) {
		t.Fatalf("GenerateURL with gitlab origin error = %v, want ErrUnsupportedFormat", err)
	}

	other := gittest.New(t)
	other.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	other.SetOrigin(t, "git@github.com:acme/widgets.git")
	r = boundRepo(t, other)
	if _, err := r.GenerateURL("missing.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("GenerateURL(missing.txt) error = %v, want ErrFileNotFound", err)
	}
	if _, err := r.GenerateURL("../outside.txt"); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("GenerateURL(../outside.txt) error = %v, want ErrInvalidPath", err)
	}
}

func TestGenerateURLWithoutCommits(t *testing.T) {
	fx := gittest.New(t)
	fx.Write(t, "a.txt", "a\n")
	fx.SetOrigin(t, "git@github.com:acme/widgets.git")
	r := boundRepo(t, fx)
	if _, err := r.GenerateURL("a.txt"); !errors.Is(err, store.ErrNoHead) {
		t.Fatalf("GenerateURL error = %v, want ErrNoHead", err)
	}
}

func TestFileHash(t *testing.T) {
	fx := gittest.New(t)
	commit := fx.Commit(t, "initial", map[string]string{"Cargo.toml": "[package]\n"})
	r := boundRepo(t, fx)

	got, err := r.FileHash("Cargo.toml")
	if err != nil {
		t.Fatalf("FileHash: %v", err)
	}
	if string(got) != commit || len(got) != object.HashLen {
		t.Fatalf("FileHash = %q, want %q", got, commit)
	}

	_, err = r.FileHash("nonexistent_file_xyz.txt")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("FileHash(missing) error = %v, want ErrFileNotFound", err)
	}
	if !strings.Contains(err.Error(), "file does not exist") {
		t.Fatalf("FileHash(missing) error text = %q", err.Error())
	}
}

func TestFileHashChecksExistenceBeforeStore(t *testing.T) {
	fx := gittest.New(t)
	r := boundRepo(t, fx, WithOpener(store.Unavailable()))
	if _, err := r.FileHash("missing.txt"); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("FileHash error = %v, want ErrFileNotFound", err)
	}
}

func TestFileHashAtCommit(t *testing.T) {
	fx := gittest.New(t)
	first := fx.Commit(t, "initial", map[string]string{"a.txt": "one\n"})
	fx.Commit(t, "second", map[string]string{"a.txt": "two\n"})
	r := boundRepo(t, fx)

	got, err := r.FileHashAtCommit("a.txt", first)
	if err != nil {
		t.Fatalf("FileHashAtCommit: %v", err)
	}
	if string(got) != fx.BlobOf(t, first, "a.txt") {
		t.Fatalf("FileHashAtCommit = %s, want %s", got, fx.BlobOf(t, first, "a.txt"))
	}
	if _, err := r.FileHashAtCommit("a.txt", "abc"); !errors.Is(err, object.ErrMalformedHash) {
		t.Fatalf("FileHashAtCommit bad commit error = %v, want ErrMalformedHash", err)
	}
}

func TestObjectLookups(t *testing.T) {
	fx := gittest.New(t)
	commit := fx.Commit(t, "initial", map[string]string{"README.md": "hello\n"})
	tag := fx.Tag(t, "v1.0.0", commit, "Release version 1.0.0")
	r := boundRepo(t, fx)

	c, err := r.Commit(strings.ToUpper(commit))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if string(c.Hash) != commit || c.Message != "initial" {
		t.Fatalf("Commit = %+v", c)
	}

	tree, err := r.Tree(string(c.TreeHash))
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if tree.Len() != 1 || tree.Entries[0].Name != "README.md" {
		t.Fatalf("Tree = %+v", tree)
	}

	blob, err := r.Blob(string(tree.Entries[0].Hash))
	if err != nil {
		t.Fatalf("Blob: %v", err)
	}
	if blob.Size != 6 || blob.Binary {
		t.Fatalf("Blob = %+v", blob)
	}

	tg, err := r.Tag(tag)
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if tg.Name != "v1.0.0" || string(tg.Target) != commit {
		t.Fatalf("Tag = %+v", tg)
	}

	if _, err := r.Blob("invalid_hash"); !errors.Is(err, object.ErrMalformedHash) {
		t.Fatalf("Blob(invalid_hash) error = %v, want ErrMalformedHash", err)
	}
	if _, err := r.Tree("invalid_hash"); !errors.Is(err, object.ErrMalformedHash) {
		t.Fatalf("Tree(invalid_hash) error = %v, want ErrMalformedHash", err)
	}
	if _, err := r.Commit(missingHash); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("Commit(missing) error = %v, want object.ErrNotFound", err)
	}
}

func TestMalformedReferenceNeverReachesStore(t *testing.T) {
	fx := gittest.New(t)
	var opened bool
	opener := store.OpenerFunc(func(root string) (store.Store, error) {
		opened = true
		return store.OpenGit(root)
	})
	r := boundRepo(t, fx, WithOpener(opener))
	if _, err := r.Blob("xyz"); !errors.Is(err, object.ErrMalformedHash) {
		t.Fatalf("Blob error = %v", err)
	}
	if opened {
		t.Fatal("store opened for malformed reference")
	}
}

func TestListRefsAndHeadRef(t *testing.T) {
	fx := gittest.New(t)
	first := fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	fx.Commit(t, "second", map[string]string{"a.txt": "b\n"})
	fx.Tag(t, "v1", first, "v1")
	r := boundRepo(t, fx)

	refs, err := r.ListRefs()
	if err != nil {
		t.Fatalf("ListRefs: %v", err)
	}
	if !slices.Contains(refs, "refs/heads/master") || !slices.Contains(refs, "refs/tags/v1") {
		t.Fatalf("ListRefs = %v", refs)
	}

	head, err := r.HeadRef()
	if err != nil {
		t.Fatalf("HeadRef: %v", err)
	}
	if head != "master" {
		t.Fatalf("HeadRef = %q, want master", head)
	}

	fx.Detach(t, first)
	head, err = r.HeadRef()
	if err != nil {
		t.Fatalf("HeadRef detached: %v", err)
	}
	if head != first {
		t.Fatalf("HeadRef detached = %q, want %q", head, first)
	}
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		flags store.StatusFlags
		want  FileStatus
	}{
		{flags: 0, want: StatusClean},
		{flags: store.WorktreeNew, want: StatusUntracked},
		{flags: store.WorktreeNew | store.WorktreeModified | store.IndexNew, want: StatusUntracked},
		{flags: store.WorktreeModified | store.IndexNew, want: StatusModified},
		{flags: store.WorktreeModified | store.IndexModified | store.IndexDeleted, want: StatusModified},
		{flags: store.IndexNew | store.IndexModified, want: StatusAdded},
		{flags: store.IndexModified | store.IndexDeleted, want: StatusStaged},
		{flags: store.IndexDeleted, want: StatusDeleted},
		{flags: store.IndexDeleted | store.WorktreeDeleted, want: StatusDeleted},
		{flags: store.WorktreeDeleted, want: StatusUnknown},
		{flags: store.IndexRenamed, want: StatusUnknown},
		{flags: store.Conflicted, want: StatusUnknown},
	}
	for _, tc := range tests {
		if got := Classify(tc.flags); got != tc.want {
			t.Fatalf("Classify(%b) = %s, want %s", tc.flags, got, tc.want)
		}
	}
}

func TestFileStatusNames(t *testing.T) {
	want := []string{"clean", "untracked", "modified", "added", "staged", "deleted", "unknown"}
	for i, name := range want {
		if got := FileStatus(i).String(); got != name {
			t.Fatalf("FileStatus(%d) = %q, want %q", i, got, name)
		}
		parsed, err := ParseFileStatus(name)
		if err != nil || parsed != FileStatus(i) {
			t.Fatalf("ParseFileStatus(%q) = %v, %v", name, parsed, err)
		}
	}
	if _, err := ParseFileStatus("ignored"); err == nil {
		t.Fatal("ParseFileStatus(ignored) succeeded")
	}
}

func TestFileStatus(t *testing.T) {
	fx := gittest.New(t)
	fx.Commit(t, "initial", map[string]string{
		"clean.txt":    "clean\n",
		"modified.txt": "v1\n",
		"staged.txt":   "v1\n",
		"deleted.txt":  "bye\n",
	})
	fx.Write(t, "untracked.txt", "new\n")
	fx.Write(t, "modified.txt", "version two\n")
	fx.Write(t, "staged.txt", "version two\n")
	fx.Add(t, "staged.txt")
	fx.Write(t, "added.txt", "added\n")
	fx.Add(t, "added.txt")
	if _, err := fx.Tree.Remove("deleted.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	r := boundRepo(t, fx)

	tests := map[string]FileStatus{
		"clean.txt":                        StatusClean,
		"untracked.txt":                    StatusUntracked,
		"modified.txt":                     StatusModified,
		"staged.txt":                       StatusStaged,
		"added.txt":                        StatusAdded,
		"deleted.txt":                      StatusDeleted,
		filepath.Join(fx.Dir, "clean.txt"): StatusClean,
	}
	for path, want := range tests {
		got, err := r.FileStatus(path)
		if err != nil {
			t.Fatalf("FileStatus(%q): %v", path, err)
		}
		if got != want {
			t.Fatalf("FileStatus(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestMetadata(t *testing.T) {
	fx := gittest.New(t)
	first := fx.Commit(t, "initial", map[string]string{"src/a.go": "package a\n", "b.txt": "b\n"})
	fx.Commit(t, "touch b", map[string]string{"b.txt": "b2\n"})
	fx.SetOrigin(t, "https://github.com/acme/widgets.git")
	r := boundRepo(t, fx)

	meta, err := r.Metadata(filepath.Join(fx.Dir, "src", "a.go"))
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.Owner != "acme" || meta.Repo != "widgets" || meta.Branch != "master" {
		t.Fatalf("Metadata identity = %+v", meta)
	}
	if string(meta.CommitHash) != first {
		t.Fatalf("CommitHash = %s, want last touching commit %s", meta.CommitHash, first)
	}
	if string(meta.FileHash) != fx.BlobOf(t, first, "src/a.go") {
		t.Fatalf("FileHash = %s", meta.FileHash)
	}
	if meta.FilePath != "src/a.go" || meta.RepoPath != fx.Dir {
		t.Fatalf("paths = %q, %q", meta.FilePath, meta.RepoPath)
	}
	if meta.LastModified != "2023-11-14T22:13:20Z" {
		t.Fatalf("LastModified = %q", meta.LastModified)
	}

	fx.Write(t, "new.txt", "x\n")
	if _, err := r.Metadata("new.txt"); !errors.Is(err, ErrFileNotTracked) {
		t.Fatalf("Metadata(untracked) error = %v, want ErrFileNotTracked", err)
	}
}

func TestMetadataFallsBackWithoutRemote(t *testing.T) {
	fx := gittest.New(t)
	fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	r := boundRepo(t, fx)

	meta, err := r.Metadata("a.txt")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.Owner != "unknown" || meta.Repo != filepath.Base(fx.Dir) {
		t.Fatalf("fallback identity = %s/%s", meta.Owner, meta.Repo)
	}
}

func TestInfo(t *testing.T) {
	fx := gittest.New(t)
	commit := fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	fx.SetOrigin(t, "git@github.com:acme/widgets.git")
	fx.Write(t, "a.txt", "changed\n")
	r := boundRepo(t, fx)

	info, err := r.Info("a.txt")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Root != fx.Dir || info.Path != "a.txt" || info.HeadRef != "master" || string(info.Commit) != commit {
		t.Fatalf("Info = %+v", info)
	}
	if info.Status != StatusModified {
		t.Fatalf("Info.Status = %s, want modified", info.Status)
	}
	if info.URL != "https://github.com/acme/widgets/blob/"+commit+"/a.txt" {
		t.Fatalf("Info.URL = %q", info.URL)
	}
	if string(info.FileHash) != fx.BlobOf(t, commit, "a.txt") {
		t.Fatalf("Info.FileHash = %s", info.FileHash)
	}

	fx.Write(t, "fresh.txt", "new\n")
	info, err = r.Info("fresh.txt")
	if err != nil {
		t.Fatalf("Info(fresh.txt): %v", err)
	}
	if info.FileHash != "" || info.Status != StatusUntracked {
		t.Fatalf("Info(fresh.txt) = %+v", info)
	}
}

func TestUnavailableOpener(t *testing.T) {
	fx := gittest.New(t)
	fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	r := boundRepo(t, fx, WithOpener(store.Unavailable()))

	if _, err := r.HeadRef(); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("HeadRef error = %v, want ErrUnavailable", err)
	}
	if _, err := r.GenerateURL("a.txt"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("GenerateURL error = %v, want ErrUnavailable", err)
	}
	if _, err := r.FileStatus("a.txt"); !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("FileStatus error = %v, want ErrUnavailable", err)
	}
}

func TestMetadataUsesCommitterTime(t *testing.T) {
	fx := gittest.New(t)
	author := gittest.Signature
	author.When = time.Unix(1600000000, 0).UTC()
	committer := gittest.Signature
	committer.When = time.Unix(1700000000, 0).UTC()
	fx.CommitAs(t, "cherry-picked", map[string]string{"a.txt": "a\n"}, author, committer)
	fx.SetOrigin(t, "git@github.com:acme/widgets.git")
	r := boundRepo(t, fx)

	meta, err := r.Metadata("a.txt")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.LastModified != "2023-11-14T22:13:20Z" {
		t.Fatalf("LastModified = %q, want committer time 2023-11-14T22:13:20Z", meta.LastModified)
	}
}

func TestZeroValueRepo(t *testing.T) {
	var unbound Repo
	if _, err := unbound.HeadRef(); !errors.Is(err, ErrNotBound) {
		t.Fatalf("zero Repo HeadRef error = %v, want ErrNotBound", err)
	}
	if _, err := unbound.GenerateURL("a.txt"); !errors.Is(err, ErrNotBound) {
		t.Fatalf("zero Repo GenerateURL error = %v, want ErrNotBound", err)
	}
	if _, err := unbound.Blob(missingHash); !errors.Is(err, ErrNotBound) {
		t.Fatalf("zero Repo Blob error = %v, want ErrNotBound", err)
	}

	fx := gittest.New(t)
	commit := fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	fx.SetOrigin(t, "git@github.com:acme/widgets.git")

	var r Repo
	if err := r.FindRepository(filepath.Join(fx.Dir, "a.txt")); err != nil {
		t.Fatalf("zero Repo FindRepository: %v", err)
	}
	if root, ok := r.Root(); !ok || root != fx.Dir {
		t.Fatalf("Root() = %q, %v; want %q, true", root, ok, fx.Dir)
	}
	got, err := r.GenerateURL("a.txt")
	if err != nil {
		t.Fatalf("zero Repo GenerateURL: %v", err)
	}
	if want := "https://github.com/acme/widgets/blob/" + commit + "/a.txt"; got != want {
		t.Fatalf("GenerateURL = %q, want %q", got, want)
	}
	if _, err := r.Metadata("a.txt"); err != nil {
		t.Fatalf("zero Repo Metadata: %v", err)
	}
}

// brokenRemoteStore reads from go-git but fails every remote lookup.
type brokenRemoteStore struct {
	store.Store
}

var errConfigUnreadable = errors.New("config unreadable")

func (brokenRemoteStore) RemoteURL(string) (string, error) {
	return "", &store.Error{Op: "remote", Err: errConfigUnreadable}
}

func TestInfoReturnsRemoteStoreFailures(t *testing.T) {
	fx := gittest.New(t)
	fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	opener := store.OpenerFunc(func(root string) (store.Store, error) {
		s, err := store.OpenGit(root)
		if err != nil {
			return nil, err
		}
		return brokenRemoteStore{s}, nil
	})
	r := boundRepo(t, fx, WithOpener(opener))

	if _, err := r.Info("a.txt"); !errors.Is(err, errConfigUnreadable) {
		t.Fatalf("Info error = %v, want the store failure", err)
	}
	if _, err := r.Metadata("a.txt"); !errors.Is(err, errConfigUnreadable) {
		t.Fatalf("Metadata error = %v, want the store failure", err)
	}
}

func TestInfoToleratesMissingAndUnsupportedRemote(t *testing.T) {
	fx := gittest.New(t)
	fx.Commit(t, "initial", map[string]string{"a.txt": "a\n"})
	r := boundRepo(t, fx)

	info, err := r.Info("a.txt")
	if err != nil {
		t.Fatalf("Info without remote: %v", err)
	}
	if info.URL != "" || info.Owner != "" {
		t.Fatalf("Info without remote = %+v", info)
	}

	fx.SetOrigin(t, "https://gitlab.com/team/svc.git")
	info, err = r.Info("a.txt")
	if err != nil {
		t.Fatalf("Info with unsupported remote: %v", err)
	}
	if info.URL != "" {
		t.Fatalf("Info.URL = %q, want empty", info.URL)
	}
}
