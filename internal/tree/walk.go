package tree

import (
	"context"

	"github.com/bamsammich/linksync/internal/transport"
)

// Compile-time interface check.
var _ Lister = (*WalkLister)(nil)

// WalkLister lists a tree by walking a transport endpoint: the local
// filesystem, or a remote host over SFTP.
type WalkLister struct {
	Endpoint transport.ReadEndpoint
	Backend  string
}

// NewLocalLister lists a local directory tree.
func NewLocalLister(root string) *WalkLister {
	return &WalkLister{Endpoint: transport.NewLocalEndpoint(root), Backend: "local"}
}

func (l *WalkLister) Name() string {
	if l.Backend == "" {
		return "walk"
	}
	return l.Backend
}

// List walks the whole tree. Symlinks are File entries whatever they point
// at; a mirror never descends through a link.
func (l *WalkLister) List(ctx context.Context) (*Snapshot, error) {
	var entries []Entry
	err := l.Endpoint.Walk(func(fe transport.FileEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		kind := File
		if fe.IsDir && !fe.IsSymlink {
			kind = Dir
		}
		entries = append(entries, Entry{RelPath: fe.RelPath, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, listingErr(l.Name(), l.Endpoint.Root(), err)
	}
	return NewSnapshot(l.Endpoint.Root(), entries), nil
}
