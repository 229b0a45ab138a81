// Package projectfs provides the filesystem operations used to materialize a
// scaffold under an output root.
//
// Overview:
//   - Responsibility: Create directories and publish files below one root
//   - Key Types: FS
//   - Concurrency Model: Safe for concurrent use on distinct paths
//   - Error Semantics: Raw os errors wrapped with the relative path; ErrExists
//     signals that a file appeared before it could be published
//   - Performance Notes: One temp file and one link or rename per write
//
// Usage:
//
//	pfs := projectfs.New("./out")
//	created, err := pfs.CreateDirectory("order/pkg")
//	err = pfs.WriteFileAtomic("order/go.mod", data, 0o644)
package projectfs

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrExists is returned by WriteFileAtomic when the target already exists.
var ErrExists = fs.ErrExist

// FS performs file operations relative to a root directory. Relative paths
// are slash separated.
type FS struct {
	root string
}

// New creates an FS rooted at root.
func New(root string) *FS {
	return &FS{root: root}
}

// Root returns the root directory.
func (p *FS) Root() string {
	return p.root
}

// Abs returns the OS path of rel below the root.
func (p *FS) Abs(rel string) string {
	return filepath.Join(p.root, filepath.FromSlash(rel))
}

// EnsureRoot creates the root directory and any missing parents.
//
// Returns:
//   - bool: true when the root did not exist before
//   - error: if the root exists as a non-directory or cannot be created
func (p *FS) EnsureRoot() (bool, error) {
	info, err := os.Stat(p.root)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%s exists and is not a directory", p.root)
	case !stderrors.Is(err, fs.ErrNotExist):
		return false, err
	}

	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// CreateDirectory creates exactly one directory. Its parent must already
// exist; missing parents are an error, not created implicitly.
//
// Parameters:
//   - rel: Directory path relative to the root
//
// Returns:
//   - bool: true when the directory was created, false when it already existed
//   - error: if the path exists as a non-directory or mkdir fails
//
// Concurrency:
//   - Safe for concurrent use; a concurrent creator makes this report false
func (p *FS) CreateDirectory(rel string) (bool, error) {
	full := p.Abs(rel)

	if err := os.Mkdir(full, 0o755); err != nil {
		if !stderrors.Is(err, fs.ErrExist) {
			return false, err
		}
		info, statErr := os.Stat(full)
		if statErr != nil {
			return false, statErr
		}
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", rel)
		}
		return false, nil
	}
	return true, nil
}

// ReadFile returns the content of rel. The error wraps fs.ErrNotExist when
// the file is absent.
func (p *FS) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(p.Abs(rel))
}

// WriteFileAtomic publishes data at rel without ever exposing a partial file.
// The content is written to a temp file in the target directory, synced, and
// then linked into place, so an existing target is never replaced.
//
// Parameters:
//   - rel: File path relative to the root; its directory must exist
//   - data: Complete file content
//   - mode: Permissions of the published file
//
// Returns:
//   - error: ErrExists (wrapped) when rel already exists, otherwise the
//     underlying filesystem error
//
// Concurrency:
//   - Safe for concurrent use on distinct paths
func (p *FS) WriteFileAtomic(rel string, data []byte, mode fs.FileMode) (err error) {
	full := p.Abs(rel)
	dir, base := filepath.Split(full)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}

	if err := os.Link(tmpName, full); err != nil {
		if stderrors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s: %w", rel, ErrExists)
		}
		// Filesystems without hard links fall back to a rename after a
		// fresh existence check.
		if _, statErr := os.Lstat(full); statErr == nil {
			return fmt.Errorf("%s: %w", rel, ErrExists)
		}
		return os.Rename(tmpName, full)
	}
	return nil
}
