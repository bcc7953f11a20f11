package transport_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/linksync/internal/transport"
)

func setupTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "nested.txt"), []byte("nested content"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep", "deep.txt"), []byte("deep"), 0644))
	require.NoError(t, os.Symlink("/mnt/cloud/movie.mkv", filepath.Join(root, "sub", "link")))

	return root
}

func TestLocalEndpoint_Walk(t *testing.T) {
	t.Parallel()
	root := setupTestTree(t)
	ep := transport.NewLocalEndpoint(root)

	got := make(map[string]transport.FileEntry)
	err := ep.Walk(func(entry transport.FileEntry) error {
		got[entry.RelPath] = entry
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, got, 6)
	assert.False(t, got["file.txt"].IsDir)
	assert.True(t, got["sub"].IsDir)
	assert.True(t, got["sub/deep"].IsDir)
	assert.Contains(t, got, "sub/deep/deep.txt")
	assert.Contains(t, got, "sub/nested.txt")

	link := got["sub/link"]
	assert.True(t, link.IsSymlink)
	assert.False(t, link.IsDir)
	assert.Equal(t, "/mnt/cloud/movie.mkv", link.LinkTarget)
}

func TestLocalEndpoint_SymlinkedRoot(t *testing.T) {
	t.Parallel()
	volume := setupTestTree(t)
	root := filepath.Join(t.TempDir(), "media")
	require.NoError(t, os.Symlink(volume, root))

	ep := transport.NewLocalEndpoint(root)
	fe, err := ep.Stat("")
	require.NoError(t, err)
	assert.True(t, fe.IsDir)
	assert.False(t, fe.IsSymlink)

	var n int
	require.NoError(t, ep.Walk(func(transport.FileEntry) error {
		n++
		return nil
	}))
	assert.Equal(t, 6, n)

	link, err := ep.Stat("sub/link")
	require.NoError(t, err)
	assert.True(t, link.IsSymlink, "entries below the root are not followed")
}

func TestLocalEndpoint_WalkMissingRoot(t *testing.T) {
	t.Parallel()
	ep := transport.NewLocalEndpoint(filepath.Join(t.TempDir(), "missing"))

	err := ep.Walk(func(transport.FileEntry) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLocalEndpoint_Stat(t *testing.T) {
	t.Parallel()
	root := setupTestTree(t)
	ep := transport.NewLocalEndpoint(root)

	entry, err := ep.Stat("file.txt")
	require.NoError(t, err)
	assert.Equal(t, "file.txt", entry.RelPath)
	assert.Equal(t, int64(5), entry.Size)
	assert.False(t, entry.IsDir)
	assert.False(t, entry.IsSymlink)

	entry, err = ep.Stat("sub")
	require.NoError(t, err)
	assert.True(t, entry.IsDir)

	// Dangling symlinks are still visible.
	entry, err = ep.Stat("sub/link")
	require.NoError(t, err)
	assert.True(t, entry.IsSymlink)

	_, err = ep.Stat("nonexistent")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLocalEndpoint_ReadDir(t *testing.T) {
	t.Parallel()
	root := setupTestTree(t)
	ep := transport.NewLocalEndpoint(root)

	entries, err := ep.ReadDir("sub")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range entries {
		names[e.RelPath] = true
	}
	assert.True(t, names["sub/nested.txt"])
	assert.True(t, names["sub/deep"])
	assert.True(t, names["sub/link"])
}

func TestLocalEndpoint_MkdirAll(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	ep := transport.NewLocalEndpoint(root)

	require.NoError(t, ep.MkdirAll("a/b/c", 0755))

	info, err := os.Stat(filepath.Join(root, "a", "b", "c"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalEndpoint_Remove(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "removeme.txt"), []byte("bye"), 0644))

	ep := transport.NewLocalEndpoint(root)
	require.NoError(t, ep.Remove("removeme.txt"))

	_, err := os.Stat(filepath.Join(root, "removeme.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalEndpoint_RemoveAll(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dir", "sub", "f.txt"), []byte("x"), 0644))

	ep := transport.NewLocalEndpoint(root)
	require.NoError(t, ep.RemoveAll("dir"))

	_, err := os.Stat(filepath.Join(root, "dir"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalEndpoint_Symlink(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	ep := transport.NewLocalEndpoint(root)

	require.NoError(t, ep.Symlink("/mnt/cloud/a.mkv", "a.mkv"))

	target, err := os.Readlink(filepath.Join(root, "a.mkv"))
	require.NoError(t, err)
	assert.Equal(t, "/mnt/cloud/a.mkv", target)
}

func TestLocalEndpoint_SymlinkDoesNotOverwrite(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.mkv"), []byte("user data"), 0644))
	ep := transport.NewLocalEndpoint(root)

	err := ep.Symlink("/mnt/cloud/a.mkv", "a.mkv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrExist))

	data, err := os.ReadFile(filepath.Join(root, "a.mkv"))
	require.NoError(t, err)
	assert.Equal(t, "user data", string(data))
}
