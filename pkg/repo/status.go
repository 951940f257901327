package repo

import (
	"fmt"

	"github.com/odvcencio/gitlink/pkg/store"
)

// FileStatus classifies the pending changes of a single file.
type FileStatus int

const (
	StatusClean     FileStatus = iota // no pending changes
	StatusUntracked                   // on disk, unknown to the index
	StatusModified                    // working copy differs from the index
	StatusAdded                       // new in the index
	StatusStaged                      // modified in the index
	StatusDeleted                     // removed from the index
	StatusUnknown                     // changes this classification does not name
)

var fileStatusNames = [...]string{
	StatusClean:     "clean",
	StatusUntracked: "untracked",
	StatusModified:  "modified",
	StatusAdded:     "added",
	StatusStaged:    "staged",
	StatusDeleted:   "deleted",
	StatusUnknown:   "unknown",
}

func (s FileStatus) String() string {
	if s < 0 || int(s) >= len(fileStatusNames) {
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
	return fileStatusNames[s]
}

// MarshalText encodes the status name.
func (s FileStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *FileStatus) UnmarshalText(text []byte) error {
	v, err := ParseFileStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseFileStatus is the inverse of FileStatus.String.
func ParseFileStatus(name string) (FileStatus, error) {
	for i, n := range fileStatusNames {
		if n == name {
			return FileStatus(i), nil
		}
	}
	return StatusUnknown, fmt.Errorf("unknown file status %q", name)
}

// Classify maps store flags to a single status. Working tree flags win over
// index flags: untracked, modified, added, staged, deleted, in that order.
func Classify(flags store.StatusFlags) FileStatus {
	switch {
	case flags == 0:
		return StatusClean
	case flags.Has(store.WorktreeNew):
		return StatusUntracked
	case flags.Has(store.WorktreeModified):
		return StatusModified
	case flags.Has(store.IndexNew):
		return StatusAdded
	case flags.Has(store.IndexModified):
		return StatusStaged
	case flags.Has(store.IndexDeleted):
		return StatusDeleted
	default:
		return StatusUnknown
	}
}

// FileStatus reports the status of filePath. Paths without pending changes,
// including paths that do not exist, are clean.
func (r *Repo) FileStatus(filePath string) (FileStatus, error) {
	root, err := r.boundRoot()
	if err != nil {
		return StatusUnknown, err
	}
	rel, err := relativePath("file status", root, filePath)
	if err != nil {
		return StatusUnknown, err
	}
	s, _, err := r.open()
	if err != nil {
		return StatusUnknown, err
	}
	flags, err := s.Status(rel)
	if err != nil {
		return StatusUnknown, err
	}
	return Classify(flags), nil
}
