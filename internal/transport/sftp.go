package transport

import (
	"fmt"
	"os"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Compile-time interface check.
var _ ReadEndpoint = (*SFTPEndpoint)(nil)

// SFTPEndpoint lists a remote tree over SFTP.
type SFTPEndpoint struct {
	client *sftp.Client
	ssh    *ssh.Client
	root   string
}

// NewSFTPEndpoint creates a read endpoint backed by an SFTP connection.
// The endpoint owns sshClient; the caller must call Close when done.
func NewSFTPEndpoint(sshClient *ssh.Client, root string) (*SFTPEndpoint, error) {
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		return nil, fmt.Errorf("sftp client: %w", err)
	}
	return &SFTPEndpoint{
		client: sftpClient,
		ssh:    sshClient,
		root:   root,
	}, nil
}

func (e *SFTPEndpoint) Walk(fn func(entry FileEntry) error) error {
	walker := e.client.Walk(e.root)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return fmt.Errorf("sftp walk %s: %w", walker.Path(), err)
		}
		relPath, ok := relUnder(e.root, walker.Path())
		if !ok {
			continue
		}
		entry := sftpFileInfoToEntry(walker.Stat(), relPath)
		if entry.IsSymlink {
			if target, err := e.client.ReadLink(walker.Path()); err == nil {
				entry.LinkTarget = target
			}
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

func (e *SFTPEndpoint) Stat(relPath string) (FileEntry, error) {
	info, err := e.client.Lstat(path.Join(e.root, relPath))
	if err != nil {
		return FileEntry{}, err
	}
	return sftpFileInfoToEntry(info, relPath), nil
}

func (e *SFTPEndpoint) ReadDir(relPath string) ([]FileEntry, error) {
	absPath := path.Join(e.root, relPath)
	infos, err := e.client.ReadDir(absPath)
	if err != nil {
		return nil, fmt.Errorf("sftp readdir %s: %w", absPath, err)
	}
	entries := make([]FileEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, sftpFileInfoToEntry(info, path.Join(relPath, info.Name())))
	}
	return entries, nil
}

func (e *SFTPEndpoint) Root() string { return e.root }

func (e *SFTPEndpoint) Close() error {
	err := e.client.Close()
	if sshErr := e.ssh.Close(); sshErr != nil && err == nil {
		err = sshErr
	}
	return err
}

// relUnder returns p relative to root using slash semantics. ok is false for
// root itself.
func relUnder(root, p string) (string, bool) {
	root = path.Clean(root)
	p = path.Clean(p)
	if p == root {
		return "", false
	}
	if root == "." {
		return p, true
	}
	prefix := root + "/"
	if root == "/" {
		prefix = "/"
	}
	if len(p) <= len(prefix) || p[:len(prefix)] != prefix {
		return "", false
	}
	return p[len(prefix):], true
}

func sftpFileInfoToEntry(info os.FileInfo, relPath string) FileEntry {
	return FileEntry{
		RelPath:   relPath,
		Size:      info.Size(),
		Mode:      info.Mode(),
		ModTime:   info.ModTime(),
		IsDir:     info.IsDir(),
		IsSymlink: info.Mode()&os.ModeSymlink != 0,
	}
}
