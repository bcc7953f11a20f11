// Package materialize applies single reconciliation actions to the local
// mirror tree: real directories, symbolic links, and removals.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/bamsammich/linksync/internal/probe"
	"github.com/bamsammich/linksync/internal/transport"
)

// DirPerm is the mode used for directories the materializer creates.
const DirPerm os.FileMode = 0755

// ErrFilesystem is matched by every *FSError.
var ErrFilesystem = errors.New("filesystem failure")

// FSError reports a local I/O failure or an unexpected entry type at a path.
type FSError struct {
	Err  error
	Op   string
	Path string
}

func (e *FSError) Error() string { return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err) }
func (e *FSError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFilesystem) match any FSError.
func (*FSError) Is(target error) bool { return target == ErrFilesystem }

// Result classifies what an action did.
type Result int

const (
	Created Result = iota
	Exists
	SkippedExisting
	TargetNotReady
	Removed
	AlreadyAbsent
	Failed
	KeptNotEmpty
)

func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case Exists:
		return "exists"
	case SkippedExisting:
		return "skipped-existing"
	case TargetNotReady:
		return "target-not-ready"
	case Removed:
		return "removed"
	case AlreadyAbsent:
		return "already-absent"
	case Failed:
		return "failed"
	case KeptNotEmpty:
		return "kept-not-empty"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Outcome is the report for one action. Err is set for Failed (an *FSError)
// and TargetNotReady (a *probe.RefreshError).
type Outcome struct {
	Err    error
	Path   string
	Target string
	Probe  probe.Outcome
	Result Result
}

// OK reports whether the action left the path in its intended state or
// deliberately left it alone.
func (o Outcome) OK() bool { return o.Result != Failed && o.Result != TargetNotReady }

// Prober checks that a link target is visible before the link is made.
type Prober interface {
	Probe(ctx context.Context, target string) probe.Outcome
}

// Materializer mutates one local tree. A nil Prober skips the visibility
// check.
type Materializer struct {
	Endpoint transport.WriteEndpoint
	Prober   Prober

	// KeepUnlisted makes Remove delete directories only once they are empty.
	// Set it when the plan was made from a filtered listing, so entries the
	// filter hid are never removed with their parent.
	KeepUnlisted bool
}

// New creates a Materializer.
func New(ep transport.WriteEndpoint, p Prober) *Materializer {
	return &Materializer{Endpoint: ep, Prober: p}
}

// CreateDirectory makes rel and any missing parents. An existing directory
// is not an error; an existing non-directory is.
func (m *Materializer) CreateDirectory(rel string) Outcome {
	out := Outcome{Path: rel}

	fe, err := m.Endpoint.Stat(rel)
	switch {
	case err == nil && fe.IsDir && !fe.IsSymlink:
		out.Result = Exists
		return out
	case err == nil:
		return failed(out, "mkdir", rel, errors.New("path exists and is not a directory"))
	case !errors.Is(err, fs.ErrNotExist):
		return failed(out, "mkdir", rel, err)
	}

	if err := m.Endpoint.MkdirAll(rel, DirPerm); err != nil {
		return failed(out, "mkdir", rel, err)
	}
	out.Result = Created
	return out
}

// CreateLink makes rel a symbolic link whose content is exactly target.
// Anything already at rel, including a dangling link, is left alone and
// reported as SkippedExisting. If the target does not become visible the
// link is not made and the outcome is TargetNotReady.
func (m *Materializer) CreateLink(ctx context.Context, rel, target string) Outcome {
	out := Outcome{Path: rel, Target: target}

	if parent := path.Dir(rel); parent != "." {
		if err := m.Endpoint.MkdirAll(parent, DirPerm); err != nil {
			return failed(out, "mkdir", parent, err)
		}
	}

	if _, err := m.Endpoint.Stat(rel); err == nil {
		out.Result = SkippedExisting
		return out
	} else if !errors.Is(err, fs.ErrNotExist) {
		return failed(out, "symlink", rel, err)
	}

	if m.Prober != nil {
		out.Probe = m.Prober.Probe(ctx, target)
		if !out.Probe.Ready() {
			out.Result = TargetNotReady
			out.Err = out.Probe.Err()
			return out
		}
	}

	if err := m.Endpoint.Symlink(target, rel); err != nil {
		if errors.Is(err, fs.ErrExist) {
			out.Result = SkippedExisting
			return out
		}
		return failed(out, "symlink", rel, err)
	}
	out.Result = Created
	return out
}

// Remove deletes whatever is at rel now, regardless of what the plan
// expected there: directories recursively, anything else directly. With
// KeepUnlisted, a directory that still has entries is left in place and
// reported as KeptNotEmpty.
func (m *Materializer) Remove(rel string) Outcome {
	out := Outcome{Path: rel}

	fe, err := m.Endpoint.Stat(rel)
	if errors.Is(err, fs.ErrNotExist) {
		out.Result = AlreadyAbsent
		return out
	}
	if err != nil {
		return failed(out, "remove", rel, err)
	}

	dir := fe.IsDir && !fe.IsSymlink
	if dir && !m.KeepUnlisted {
		err = m.Endpoint.RemoveAll(rel)
	} else {
		err = m.Endpoint.Remove(rel)
	}
	if err != nil && dir && m.KeepUnlisted {
		if children, rerr := m.Endpoint.ReadDir(rel); rerr == nil && len(children) > 0 {
			out.Result = KeptNotEmpty
			return out
		}
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		out.Result = AlreadyAbsent
	case err != nil:
		return failed(out, "remove", rel, err)
	default:
		out.Result = Removed
	}
	return out
}

func failed(out Outcome, op, rel string, err error) Outcome {
	out.Result = Failed
	out.Err = &FSError{Op: op, Path: rel, Err: err}
	return out
}
