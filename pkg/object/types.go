package object

// Hash is a 40-character lowercase hex-encoded SHA-1 object id.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTag    ObjectType = "tag"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode constants in git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeSubmodule  = "160000"
)

// Blob is a read-only view of a stored file.
type Blob struct {
	Hash   Hash  `json:"hash"`
	Size   int64 `json:"size"`
	Binary bool  `json:"binary"`
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
	Hash Hash   `json:"hash"`
}

// IsDir reports whether the entry points at a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// Tree is a read-only view of a directory listing.
type Tree struct {
	Hash    Hash        `json:"hash"`
	Entries []TreeEntry `json:"entries"` // in store order
}

// Len returns the number of direct children.
func (t Tree) Len() int {
	return len(t.Entries)
}

// Commit is a read-only view of a commit. Time is the author time and
// CommitTime the committer time, both in seconds since the Unix epoch.
type Commit struct {
	Hash        Hash   `json:"hash"`
	Message     string `json:"message"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	Time        int64  `json:"time"`
	CommitTime  int64  `json:"commitTime"`
	TreeHash    Hash   `json:"treeHash"`
	Parents     []Hash `json:"parents"`
}

// Tag is a read-only view of an annotated tag.
type Tag struct {
	Hash        Hash       `json:"hash"`
	Name        string     `json:"name"`
	Message     string     `json:"message"`
	Target      Hash       `json:"target"`
	TargetType  ObjectType `json:"targetType"`
	TaggerName  string     `json:"taggerName"`
	TaggerEmail string     `json:"taggerEmail"`
	Time        int64      `json:"time"`
}
