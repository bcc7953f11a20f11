package engine

import (
	"context"

	"github.com/bamsammich/linksync/internal/event"
	"github.com/bamsammich/linksync/internal/materialize"
	"github.com/bamsammich/linksync/internal/tree"
)

// Op is the kind of filesystem mutation an action performs.
type Op int

const (
	OpRemove Op = iota
	OpMkdir
	OpLink
)

func (o Op) String() string {
	switch o {
	case OpRemove:
		return "remove"
	case OpMkdir:
		return "mkdir"
	case OpLink:
		return "link"
	default:
		return "unknown"
	}
}

func opFor(e tree.Entry, deletion bool) Op {
	switch {
	case deletion:
		return OpRemove
	case e.IsDir():
		return OpMkdir
	default:
		return OpLink
	}
}

// Action is one planned entry and what became of it. Attempted is false
// for dry-run actions and for actions cut off by cancellation.
type Action struct {
	Outcome   materialize.Outcome
	Entry     tree.Entry
	Target    string
	Op        Op
	Attempted bool
	DryRun    bool
}

// would records a dry-run action with exactly one log line.
func (r *run) would(ctx context.Context, a Action) {
	a.DryRun = true
	switch a.Op {
	case OpRemove:
		r.log.Info("would remove", "path", a.Entry.RelPath, "kind", a.Entry.Kind)
	case OpMkdir:
		r.log.Info("would create directory", "path", a.Entry.RelPath)
	case OpLink:
		r.log.Info("would create link", "path", a.Entry.RelPath, "target", a.Target)
	}
	r.emit(ctx, event.Event{Type: event.WouldApply, Path: a.Entry.RelPath, Target: a.Target, Op: a.Op.String()})
	r.result.Actions = append(r.result.Actions, a)
}

// record logs, counts and emits an attempted action.
//
//nolint:revive // cyclomatic: one branch per outcome
func (r *run) record(ctx context.Context, a Action) {
	r.result.Actions = append(r.result.Actions, a)

	o := a.Outcome
	rel := a.Entry.RelPath
	switch o.Result {
	case materialize.Created:
		if a.Op == OpMkdir {
			r.collector.AddDirsCreated(1)
			r.log.Debug("created directory", "path", rel)
			r.emit(ctx, event.Event{Type: event.DirCreated, Path: rel})
			return
		}
		r.collector.AddLinksCreated(1)
		r.log.Info("created link", "path", rel, "target", a.Target)
		r.emit(ctx, event.Event{Type: event.LinkCreated, Path: rel, Target: a.Target})

	case materialize.Exists, materialize.SkippedExisting:
		r.collector.AddSkipped(1)
		r.log.Info("path exists, left in place", "path", rel, "op", a.Op)
		r.emit(ctx, event.Event{Type: event.Skipped, Path: rel, Target: a.Target})

	case materialize.KeptNotEmpty:
		r.collector.AddSkipped(1)
		r.log.Info("directory holds filtered entries, left in place", "path", rel)
		r.emit(ctx, event.Event{Type: event.Skipped, Path: rel})

	case materialize.TargetNotReady:
		r.collector.AddNotReady(1)
		r.log.Warn("link target not visible, retry later or link manually",
			"path", rel, "target", a.Target,
			"probe", o.Probe.Status, "at", o.Probe.Segment, "fs", o.Probe.FSType)
		r.emit(ctx, event.Event{Type: event.TargetNotReady, Path: rel, Target: a.Target, Error: o.Err})

	case materialize.Removed:
		r.collector.AddRemoved(1)
		r.log.Info("removed", "path", rel, "kind", a.Entry.Kind)
		r.emit(ctx, event.Event{Type: event.Removed, Path: rel})

	case materialize.AlreadyAbsent:
		r.collector.AddAlreadyAbsent(1)
		r.log.Debug("already absent", "path", rel)
		r.emit(ctx, event.Event{Type: event.AlreadyAbsent, Path: rel})

	case materialize.Failed:
		r.collector.AddFailed(1)
		r.log.Error("action failed", "path", rel, "op", a.Op, "error", o.Err)
		r.emit(ctx, event.Event{Type: event.ActionFailed, Path: rel, Target: a.Target, Error: o.Err})
	}
}
