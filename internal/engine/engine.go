// Package engine drives one reconciliation pass: list both trees, diff them,
// then apply deletions and creations to the local mirror.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bamsammich/linksync/internal/event"
	"github.com/bamsammich/linksync/internal/filter"
	"github.com/bamsammich/linksync/internal/materialize"
	"github.com/bamsammich/linksync/internal/reconcile"
	"github.com/bamsammich/linksync/internal/stats"
	"github.com/bamsammich/linksync/internal/transport"
	"github.com/bamsammich/linksync/internal/tree"
)

// State is a step of a sync pass.
type State int

const (
	Start State = iota
	EnsureLocalRoot
	ListRemote
	ListLocal
	Reconcile
	ApplyDeletions
	ApplyCreations
	Done
)

var stateNames = [...]string{
	Start:           "Start",
	EnsureLocalRoot: "EnsureLocalRoot",
	ListRemote:      "ListRemote",
	ListLocal:       "ListLocal",
	Reconcile:       "Reconcile",
	ApplyDeletions:  "ApplyDeletions",
	ApplyCreations:  "ApplyCreations",
	Done:            "Done",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Config describes one sync pass. It is passed by value and never mutated.
type Config struct {
	// Remote lists the source-of-truth tree.
	Remote tree.Lister

	// Local lists the mirror. Nil walks LocalRoot.
	Local tree.Lister

	// Endpoint is where actions are applied. Nil uses the local filesystem
	// at LocalRoot.
	Endpoint transport.WriteEndpoint

	// Prober checks link targets before linking. Nil links without checking.
	Prober materialize.Prober

	// Filter scopes both trees. Excluded paths are neither created nor
	// deleted.
	Filter *filter.Chain

	// Events receives progress events. Listing progress is dropped when the
	// consumer falls behind; plan and action events wait for it, so the
	// channel must be drained until Run returns.
	Events chan<- event.Event

	// Logger receives one line per action. Nil discards.
	Logger *slog.Logger

	// Stats receives counters as actions complete. Nil uses a private
	// collector; Result.Stats is filled either way.
	Stats *stats.Collector

	LocalRoot  string
	LinkPrefix string

	// RunID tags every log line of the pass. Empty generates one.
	RunID string

	DryRun bool
}

// Result is the outcome of a sync pass.
type Result struct {
	Err     error
	RunID   string
	Plan    reconcile.Plan
	Actions []Action
	Stats   stats.Snapshot
	State   State
}

// NeedsRetry returns the paths whose link target was not visible yet. These
// need a later pass or manual attention.
func (r Result) NeedsRetry() []string {
	var out []string
	for _, a := range r.Actions {
		if a.Attempted && a.Outcome.Result == materialize.TargetNotReady {
			out = append(out, a.Entry.RelPath)
		}
	}
	return out
}

// Failed returns the actions that hit a filesystem failure.
func (r Result) Failed() []Action {
	var out []Action
	for _, a := range r.Actions {
		if a.Attempted && a.Outcome.Result == materialize.Failed {
			out = append(out, a)
		}
	}
	return out
}

// Partial reports whether the pass completed with per-entry problems or
// stopped before attempting every action.
func (r Result) Partial() bool {
	if r.Stats.Partial() {
		return true
	}
	for _, a := range r.Actions {
		if !a.Attempted && !a.DryRun {
			return true
		}
	}
	return false
}

// run carries the per-pass state shared by the phases.
type run struct {
	cfg       Config
	log       *slog.Logger
	mat       *materialize.Materializer
	collector *stats.Collector
	result    *Result
}

func (r *run) emit(ctx context.Context, e event.Event) {
	if r.cfg.Events == nil {
		return
	}
	e.Timestamp = time.Now()
	if e.Type == event.ListStarted || e.Type == event.ListComplete {
		select {
		case r.cfg.Events <- e:
		default:
		}
		return
	}
	select {
	case r.cfg.Events <- e:
	case <-ctx.Done():
	}
}

// Run executes one sync pass, blocking until complete. Listing failures and
// a local root that cannot be created abort the pass with Result.Err set.
// Per-entry failures are recorded in Result.Actions and never abort.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	if cfg.Endpoint == nil {
		cfg.Endpoint = transport.NewLocalEndpoint(cfg.LocalRoot)
	}
	if cfg.Local == nil {
		cfg.Local = &tree.WalkLister{Endpoint: cfg.Endpoint, Backend: "local"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	mat := materialize.New(cfg.Endpoint, cfg.Prober)
	mat.KeepUnlisted = !cfg.Filter.Empty()

	result := Result{RunID: cfg.RunID, State: Start}
	r := &run{
		cfg:       cfg,
		log:       logger.With("run", cfg.RunID),
		mat:       mat,
		collector: collector,
		result:    &result,
	}
	result.Err = r.execute(ctx)
	result.Stats = r.collector.Snapshot()

	if result.Err != nil {
		r.log.Error("sync pass aborted", "state", result.State, "error", result.Err)
	} else {
		r.log.Info("sync pass complete", "dry_run", cfg.DryRun, "stats", result.Stats.String())
	}
	return result
}

func (r *run) execute(ctx context.Context) error {
	if r.cfg.Remote == nil {
		return errors.New("no remote lister configured")
	}

	r.result.State = EnsureLocalRoot
	rootExists, err := r.ensureLocalRoot()
	if err != nil {
		return err
	}

	r.result.State = ListRemote
	remote, err := r.list(ctx, "remote", r.cfg.Remote)
	if err != nil {
		return err
	}
	r.collector.SetRemoteEntries(int64(remote.Len()))

	r.result.State = ListLocal
	var local *tree.Snapshot
	if rootExists {
		if local, err = r.list(ctx, "local", r.cfg.Local); err != nil {
			return err
		}
	} else {
		// Dry run with no local root yet: everything is a creation.
		local = tree.NewSnapshot(r.cfg.LocalRoot, nil)
	}
	r.collector.SetLocalEntries(int64(local.Len()))

	r.result.State = Reconcile
	if !r.cfg.Filter.Empty() {
		remote, local = r.cfg.Filter.Apply(remote), r.cfg.Filter.Apply(local)
	}
	plan := reconcile.Reconcile(remote, local)
	r.result.Plan = plan
	r.collector.SetPlanned(int64(plan.Len()))
	r.log.Info("plan ready", "deletions", len(plan.Deletions), "creations", len(plan.Creations))
	r.emit(ctx, event.Event{
		Type:      event.PlanReady,
		Total:     plan.Len(),
		Deletions: len(plan.Deletions),
		Creations: len(plan.Creations),
	})

	r.result.State = ApplyDeletions
	if err := r.applyDeletions(ctx, plan.Deletions); err != nil {
		r.skipRemaining(plan.Creations, false)
		return err
	}

	r.result.State = ApplyCreations
	if err := r.applyCreations(ctx, plan.Creations); err != nil {
		return err
	}

	r.result.State = Done
	return nil
}

// ensureLocalRoot reports whether the local root exists after the step. In
// dry-run mode a missing root is logged and left missing.
func (r *run) ensureLocalRoot() (bool, error) {
	fe, err := r.cfg.Endpoint.Stat("")
	switch {
	case err == nil && fe.IsDir:
		return true, nil
	case err == nil:
		return false, fmt.Errorf("local root %s: %w", r.cfg.LocalRoot,
			&materialize.FSError{Op: "mkdir", Path: r.cfg.LocalRoot, Err: errors.New("not a directory")})
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("local root %s: %w", r.cfg.LocalRoot,
			&materialize.FSError{Op: "stat", Path: r.cfg.LocalRoot, Err: err})
	}

	if r.cfg.DryRun {
		r.log.Info("would create local root", "path", r.cfg.LocalRoot)
		return false, nil
	}
	if err := r.cfg.Endpoint.MkdirAll("", materialize.DirPerm); err != nil {
		return false, fmt.Errorf("create local root: %w",
			&materialize.FSError{Op: "mkdir", Path: r.cfg.LocalRoot, Err: err})
	}
	r.log.Info("created local root", "path", r.cfg.LocalRoot)
	return true, nil
}

func (r *run) list(ctx context.Context, side string, l tree.Lister) (*tree.Snapshot, error) {
	r.emit(ctx, event.Event{Type: event.ListStarted, Side: side})
	start := time.Now()

	snap, err := l.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", side, err)
	}

	r.log.Info("listed tree", "side", side, "backend", l.Name(), "root", snap.Root(),
		"entries", snap.Len(), "took", time.Since(start).Round(time.Millisecond))
	r.emit(ctx, event.Event{Type: event.ListComplete, Side: side, Total: snap.Len()})
	return snap, nil
}

// LinkTarget is the path the link for rel points at: rel joined under
// prefix.
func LinkTarget(prefix, rel string) string {
	return filepath.Join(prefix, filepath.FromSlash(rel))
}

func (r *run) linkTarget(rel string) string {
	return LinkTarget(r.cfg.LinkPrefix, rel)
}

// skipRemaining records actions that were never attempted.
func (r *run) skipRemaining(entries []tree.Entry, deletion bool) {
	for _, e := range entries {
		r.result.Actions = append(r.result.Actions, Action{Op: opFor(e, deletion), Entry: e})
	}
}
