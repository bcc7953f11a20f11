package tree

import (
	"context"
	"sort"
	"strings"
)

// Kind distinguishes directories from everything else in a listing.
type Kind int

const (
	File Kind = iota
	Dir
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Entry is one node of a tree, keyed by its path relative to the tree root.
// RelPath uses forward slashes and never carries a leading or trailing
// separator. The root itself is never an Entry.
type Entry struct {
	RelPath string
	Kind    Kind
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Kind == Dir }

// Depth returns the number of path segments in RelPath.
func (e Entry) Depth() int {
	if e.RelPath == "" {
		return 0
	}
	return strings.Count(e.RelPath, "/") + 1
}

// String renders the entry in listing form: directories get a trailing "/".
func (e Entry) String() string {
	if e.Kind == Dir {
		return e.RelPath + "/"
	}
	return e.RelPath
}

// Snapshot is the immutable state of one side of a sync at capture time.
type Snapshot struct {
	root    string
	entries map[string]Entry
}

// NewSnapshot builds a snapshot from entries. RelPaths are normalized and
// root entries dropped. When the same path is listed twice with different
// kinds, the directory wins.
func NewSnapshot(root string, entries []Entry) *Snapshot {
	s := &Snapshot{root: root, entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		s.add(e)
	}
	return s
}

func (s *Snapshot) add(e Entry) {
	rel, _ := Normalize(e.RelPath)
	if rel == "" {
		return
	}
	e.RelPath = rel
	if prev, ok := s.entries[rel]; ok && prev.Kind == Dir {
		return
	}
	s.entries[rel] = e
}

// Root returns the root the snapshot was captured from.
func (s *Snapshot) Root() string { return s.root }

// Len returns the number of entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Get looks up an entry by relative path.
func (s *Snapshot) Get(relPath string) (Entry, bool) {
	e, ok := s.entries[relPath]
	return e, ok
}

// Has reports whether the snapshot holds exactly this path with this kind.
func (s *Snapshot) Has(e Entry) bool {
	got, ok := s.entries[e.RelPath]
	return ok && got.Kind == e.Kind
}

// Entries returns all entries sorted by RelPath.
func (s *Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out
}

// Filter returns a new snapshot holding only the entries keep accepts.
func (s *Snapshot) Filter(keep func(Entry) bool) *Snapshot {
	out := &Snapshot{root: s.root, entries: make(map[string]Entry, len(s.entries))}
	for rel, e := range s.entries {
		if keep(e) {
			out.entries[rel] = e
		}
	}
	return out
}

// Lister produces a snapshot of one tree. Implementations return a
// *ListingError on failure.
type Lister interface {
	List(ctx context.Context) (*Snapshot, error)

	// Name identifies the backend in logs and errors.
	Name() string
}
