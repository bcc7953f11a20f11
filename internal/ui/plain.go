package ui

import (
	"fmt"
	"io"

	"github.com/bamsammich/linksync/internal/stats"
)

// plainPresenter writes one line per applied action to stdout and pass-level
// progress to stderr.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   *stats.Collector
	theme   theme
	verbose bool
	dryRun  bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	for ev := range events {
		p.handleEvent(ev)
	}
	return nil
}

//nolint:revive // cyclomatic: one case per event type
func (p *plainPresenter) handleEvent(ev Event) {
	t := p.theme
	switch ev.Type {
	case ListComplete:
		p.progress("listed %s: %s entries", ev.Side, FormatCount(int64(ev.Total)))
	case PlanReady:
		p.progress("plan: %s deletions, %s creations",
			FormatCount(int64(ev.Deletions)), FormatCount(int64(ev.Creations)))
	case LinkCreated:
		fmt.Fprintf(p.w, "%s %s -> %s\n", t.paint(t.added, "+ link"), t.paint(t.path, ev.Path), ev.Target)
	case DirCreated:
		fmt.Fprintf(p.w, "%s %s/\n", t.paint(t.added, "+ dir "), t.paint(t.path, ev.Path))
	case Removed:
		fmt.Fprintf(p.w, "%s %s\n", t.paint(t.removed, "- rm  "), t.paint(t.path, ev.Path))
	case Skipped:
		if p.verbose {
			fmt.Fprintf(p.w, "%s %s  exists\n", t.paint(t.muted, "= skip"), ev.Path)
		}
	case TargetNotReady:
		fmt.Fprintf(p.w, "%s %s -> %s  %s\n",
			t.paint(t.warn, "! wait"), t.paint(t.path, ev.Path), ev.Target, errText(ev.Error))
	case ActionFailed:
		fmt.Fprintf(p.w, "%s %s  %s\n", t.paint(t.failed, "x fail"), t.paint(t.path, ev.Path), errText(ev.Error))
	case WouldApply:
		line := fmt.Sprintf("%s %s %s", t.paint(t.muted, "~ would"), ev.Op, ev.Path)
		if ev.Target != "" {
			line += " -> " + ev.Target
		}
		fmt.Fprintln(p.w, line)
	case ListStarted, AlreadyAbsent:
		// silent in plain mode
	}
}

func (p *plainPresenter) progress(format string, args ...any) {
	if p.errW == nil {
		return
	}
	fmt.Fprintf(p.errW, format+"\n", args...)
}

func (p *plainPresenter) Summary() string {
	if p.stats == nil {
		return ""
	}
	return completionSummary(p.stats.Snapshot(), p.dryRun)
}

func errText(err error) string {
	if err == nil {
		return "error"
	}
	return err.Error()
}
