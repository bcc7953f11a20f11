// Package probe forces a remote mount to refresh its directory caches before
// a link is pointed into it.
//
// Network filesystems (FUSE, WebDAV, SMB) often cache directory entries and
// only notice new remote files once each parent directory has been listed
// again. A Prober walks from an anchor down to a target one segment at a
// time, listing every level, with a fixed pause between levels.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMaxLevels bounds the walk when Config.MaxLevels is zero.
const DefaultMaxLevels = 64

// ErrRefreshTimeout is matched by the error of every non-ready Outcome.
var ErrRefreshTimeout = errors.New("target not visible after refresh")

// Status is the typed result of a probe.
type Status int

const (
	Ready          Status = iota // every segment listed, target visible
	MissingSegment               // an intermediate directory is absent
	NotDirectory                 // an intermediate segment is not a directory
	NotVisible                   // parents fine, target itself absent or a directory
	TooDeep                      // target has more segments than MaxLevels
	Canceled                     // context done before the walk finished
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case MissingSegment:
		return "missing-segment"
	case NotDirectory:
		return "not-directory"
	case NotVisible:
		return "not-visible"
	case TooDeep:
		return "too-deep"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome describes how far a probe got.
type Outcome struct {
	Cause   error
	Target  string
	Segment string // path at which the walk stopped
	FSType  string // filesystem type of the anchor, on failure only
	Levels  int    // directory listings performed
	Status  Status
}

// Ready reports whether the target is visible.
func (o Outcome) Ready() bool { return o.Status == Ready }

// Err returns nil for a ready outcome and a *RefreshError otherwise.
func (o Outcome) Err() error {
	if o.Status == Ready {
		return nil
	}
	return &RefreshError{Outcome: o}
}

// RefreshError is the error form of a failed probe.
type RefreshError struct {
	Outcome Outcome
}

func (e *RefreshError) Error() string {
	o := e.Outcome
	msg := fmt.Sprintf("refresh %s: %s at %s after %d levels", o.Target, o.Status, o.Segment, o.Levels)
	if o.FSType != "" {
		msg += " (" + o.FSType + ")"
	}
	if o.Cause != nil {
		msg += ": " + o.Cause.Error()
	}
	return msg
}

func (e *RefreshError) Unwrap() error { return e.Outcome.Cause }

// Is lets errors.Is(err, ErrRefreshTimeout) match any RefreshError.
func (*RefreshError) Is(target error) bool { return target == ErrRefreshTimeout }

// Config controls a Prober.
type Config struct {
	// Anchor is the directory the walk starts from, normally the link
	// target prefix. Targets outside it are walked from the filesystem root.
	Anchor string

	// Delay is the minimum pause between two directory listings.
	Delay time.Duration

	// MaxLevels bounds the number of segments below the anchor.
	MaxLevels int
}

// Prober refreshes and checks link targets. It is not safe for concurrent
// use; a sync pass probes one target at a time.
type Prober struct {
	readDir func(string) ([]os.DirEntry, error)
	stat    func(string) (os.FileInfo, error)
	limiter *rate.Limiter
	cfg     Config
}

// New creates a Prober.
func New(cfg Config) *Prober {
	if cfg.MaxLevels <= 0 {
		cfg.MaxLevels = DefaultMaxLevels
	}
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Prober{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		readDir: os.ReadDir,
		stat:    os.Stat,
	}
}

// Probe walks from the anchor to target, listing every directory on the
// way. It never returns an error directly; inspect the Outcome.
//
//nolint:revive // cognitive-complexity: one sequential walk with a typed exit per failure
func (p *Prober) Probe(ctx context.Context, target string) Outcome {
	target = filepath.Clean(target)
	start, segments := p.split(target)
	out := Outcome{Target: target, Segment: start}

	if len(segments) == 0 {
		out.Status = NotVisible
		out.Cause = errors.New("target is the anchor itself")
		return p.fail(out, start)
	}
	if len(segments) > p.cfg.MaxLevels {
		out.Status = TooDeep
		out.Cause = fmt.Errorf("%d segments exceeds limit of %d", len(segments), p.cfg.MaxLevels)
		return p.fail(out, start)
	}

	cur := start
	for i, seg := range segments {
		if err := p.limiter.Wait(ctx); err != nil {
			out.Status = Canceled
			out.Cause = err
			return out
		}
		if err := ctx.Err(); err != nil {
			out.Status = Canceled
			out.Cause = err
			return out
		}

		last := i == len(segments)-1
		entries, err := p.readDir(cur)
		out.Levels++
		if err != nil {
			out.Segment = cur
			out.Status = MissingSegment
			if !errors.Is(err, fs.ErrNotExist) {
				out.Status = NotDirectory
			}
			out.Cause = err
			return p.fail(out, start)
		}

		next := filepath.Join(cur, seg)
		d, found := findEntry(entries, seg)
		switch {
		case !found && last:
			out.Segment = next
			out.Status = NotVisible
			return p.fail(out, start)
		case !found:
			out.Segment = next
			out.Status = MissingSegment
			return p.fail(out, start)
		}

		isDir := p.isDir(next, d)
		switch {
		case last && isDir:
			out.Segment = next
			out.Status = NotVisible
			out.Cause = errors.New("target is a directory")
			return p.fail(out, start)
		case !last && !isDir:
			out.Segment = next
			out.Status = NotDirectory
			return p.fail(out, start)
		}
		cur = next
	}

	out.Segment = target
	out.Status = Ready
	return out
}

// split returns the directory the walk starts from and the segments below it.
func (p *Prober) split(target string) (string, []string) {
	start := string(filepath.Separator)
	if p.cfg.Anchor != "" {
		anchor := filepath.Clean(p.cfg.Anchor)
		if rel, err := filepath.Rel(anchor, target); err == nil && rel != ".." &&
			!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			if rel == "." {
				return anchor, nil
			}
			return anchor, strings.Split(rel, string(filepath.Separator))
		}
	}
	rel := strings.TrimPrefix(target, start)
	if rel == "" {
		return start, nil
	}
	return start, strings.Split(rel, string(filepath.Separator))
}

// isDir follows a symlinked intermediate so a linked directory still counts.
func (p *Prober) isDir(full string, d os.DirEntry) bool {
	if d.IsDir() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := p.stat(full)
	return err == nil && info.IsDir()
}

func (*Prober) fail(out Outcome, start string) Outcome {
	out.FSType = fsType(start)
	return out
}

func findEntry(entries []os.DirEntry, name string) (os.DirEntry, bool) {
	for _, d := range entries {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}
