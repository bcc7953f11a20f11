package transport

import (
	"fmt"
	"os"
	"path/filepath"
)

// Compile-time interface check.
var _ WriteEndpoint = (*LocalEndpoint)(nil)

// LocalEndpoint is a tree on the local filesystem.
type LocalEndpoint struct {
	root string
}

// NewLocalEndpoint creates a local endpoint rooted at root. A root that is a
// symlink is resolved once here, so the walk descends into it and the root
// stats as a directory. Entries below the root are never followed.
func NewLocalEndpoint(root string) *LocalEndpoint {
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return &LocalEndpoint{root: root}
}

func (e *LocalEndpoint) Walk(fn func(entry FileEntry) error) error {
	return filepath.WalkDir(e.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		relPath, err := filepath.Rel(e.root, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		return fn(fileInfoToEntry(info, filepath.ToSlash(relPath), path))
	})
}

func (e *LocalEndpoint) Stat(relPath string) (FileEntry, error) {
	absPath := e.AbsPath(relPath)
	info, err := os.Lstat(absPath)
	if err != nil {
		return FileEntry{}, err
	}
	return fileInfoToEntry(info, relPath, absPath), nil
}

func (e *LocalEndpoint) ReadDir(relPath string) ([]FileEntry, error) {
	absPath := e.AbsPath(relPath)
	dirents, err := os.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("readdir %s: %w", absPath, err)
	}

	result := make([]FileEntry, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil {
			continue // raced with a delete
		}
		childRel := filepath.ToSlash(filepath.Join(relPath, d.Name()))
		result = append(result, fileInfoToEntry(info, childRel, filepath.Join(absPath, d.Name())))
	}
	return result, nil
}

func (e *LocalEndpoint) MkdirAll(relPath string, perm os.FileMode) error {
	return os.MkdirAll(e.AbsPath(relPath), perm)
}

func (e *LocalEndpoint) Symlink(target, newRel string) error {
	return os.Symlink(target, e.AbsPath(newRel))
}

func (e *LocalEndpoint) Remove(relPath string) error {
	return os.Remove(e.AbsPath(relPath))
}

func (e *LocalEndpoint) RemoveAll(relPath string) error {
	return os.RemoveAll(e.AbsPath(relPath))
}

func (e *LocalEndpoint) Root() string { return e.root }
func (*LocalEndpoint) Close() error   { return nil }

// AbsPath returns the absolute path for a relative path.
func (e *LocalEndpoint) AbsPath(relPath string) string {
	return filepath.Join(e.root, filepath.FromSlash(relPath))
}

func fileInfoToEntry(info os.FileInfo, relPath, absPath string) FileEntry {
	entry := FileEntry{
		RelPath: relPath,
		Size:    info.Size(),
		Mode:    info.Mode(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}

	if info.Mode()&os.ModeSymlink != 0 {
		entry.IsSymlink = true
		if target, err := os.Readlink(absPath); err == nil {
			entry.LinkTarget = target
		}
	}

	return entry
}
