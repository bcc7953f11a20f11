package transport

import (
	"os"
	"time"
)

// FileEntry describes a single filesystem entry as seen by an endpoint.
// Symlinks are reported as themselves, never followed.
type FileEntry struct {
	ModTime    time.Time
	LinkTarget string
	RelPath    string
	Size       int64
	Mode       os.FileMode
	IsSymlink  bool
	IsDir      bool
}

// ReadEndpoint is a tree that can be listed.
type ReadEndpoint interface {
	// Walk recursively walks the tree rooted at the endpoint, calling fn for
	// each entry. relPath is relative to the endpoint root. Unlike a copy,
	// a mirror cannot tolerate holes in its listing, so an unreadable entry
	// aborts the walk with an error.
	Walk(fn func(entry FileEntry) error) error

	// Stat returns metadata for a single relative path without following
	// a final symlink.
	Stat(relPath string) (FileEntry, error)

	// ReadDir lists immediate children of a relative directory path.
	ReadDir(relPath string) ([]FileEntry, error)

	// Root returns the root path of this endpoint.
	Root() string

	// Close releases resources held by this endpoint.
	Close() error
}

// WriteEndpoint is the local tree a mirror is materialized into.
type WriteEndpoint interface {
	ReadEndpoint

	// MkdirAll creates a directory and all parents.
	MkdirAll(relPath string, perm os.FileMode) error

	// Symlink creates a symbolic link at newRel pointing to target. It fails
	// if newRel already exists.
	Symlink(target, newRel string) error

	// Remove deletes a single file, symlink or empty directory.
	Remove(relPath string) error

	// RemoveAll recursively deletes a directory.
	RemoveAll(relPath string) error

	// AbsPath returns the absolute path for a relative path.
	AbsPath(relPath string) string
}
