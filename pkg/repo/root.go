package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMarker is the metadata directory that identifies a repository root.
const DefaultMarker = ".git"

var (
	// ErrNotFound is returned when no ancestor directory holds the marker.
	ErrNotFound = errors.New("not a git repository (or any parent up to /)")
	// ErrInvalidPath is returned for paths that cannot serve as a starting
	// point or that fall outside the bound repository.
	ErrInvalidPath = errors.New("invalid path")
	// ErrFileNotFound is returned when a file does not exist under the root.
	ErrFileNotFound = errors.New("file does not exist")
	// ErrFileNotTracked is returned when a file is absent from HEAD.
	ErrFileNotTracked = errors.New("file not tracked")
)

// PathError records the operation and input path behind a path failure.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FindRoot returns the nearest directory at or above start that contains
// a .git entry. When start names a regular file the search begins at its
// parent directory.
func FindRoot(start string) (string, error) {
	return FindRootWithMarker(start, DefaultMarker)
}

// FindRootWithMarker is FindRoot for an arbitrary marker name.
func FindRootWithMarker(start, marker string) (string, error) {
	if strings.TrimSpace(start) == "" {
		return "", &PathError{Op: "find root", Path: start, Err: fmt.Errorf("%w: empty path", ErrInvalidPath)}
	}
	if marker == "" || strings.ContainsRune(marker, filepath.Separator) {
		return "", &PathError{Op: "find root", Path: start, Err: fmt.Errorf("%w: bad marker %q", ErrInvalidPath, marker)}
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", &PathError{Op: "find root", Path: start, Err: fmt.Errorf("%w: %v", ErrInvalidPath, err)}
	}

	cur := abs
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		cur = filepath.Dir(abs)
		if cur == abs {
			return "", &PathError{Op: "find root", Path: start, Err: fmt.Errorf("%w: no parent directory", ErrInvalidPath)}
		}
	}

	for {
		// A worktree or submodule keeps a .git file instead of a directory.
		if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
			return cur, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", &PathError{Op: "find root", Path: start, Err: ErrNotFound}
		}
		cur = parent
	}
}

// relativePath converts filePath to a slash-separated path relative to
// root. Relative inputs are taken as already relative to root.
func relativePath(op, root, filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", &PathError{Op: op, Path: filePath, Err: fmt.Errorf("%w: empty path", ErrInvalidPath)}
	}

	rel := filepath.Clean(filePath)
	if filepath.IsAbs(rel) {
		r, err := filepath.Rel(root, rel)
		if err != nil {
			return "", &PathError{Op: op, Path: filePath, Err: fmt.Errorf("%w: %v", ErrInvalidPath, err)}
		}
		rel = r
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathError{Op: op, Path: filePath, Err: fmt.Errorf("%w: outside repository %s", ErrInvalidPath, root)}
	}
	return filepath.ToSlash(rel), nil
}

func checkFileExists(op, root, rel string) error {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		return &PathError{Op: op, Path: rel, Err: ErrFileNotFound}
	}
	return &PathError{Op: op, Path: rel, Err: err}
}
