package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/engine"
	"github.com/bamsammich/linksync/internal/event"
	"github.com/bamsammich/linksync/internal/filter"
	"github.com/bamsammich/linksync/internal/stats"
)

// pass is everything one sync pass needs besides the profile itself.
type pass struct {
	logger      *slog.Logger
	events      chan<- event.Event
	stats       *stats.Collector
	cliFilter   *filter.Chain
	forceDryRun bool
	writeStatus bool
}

// runPass validates a profile, builds its listers and runs the engine. The
// returned error covers configuration and connection problems only; a pass
// that started reports through Result.Err.
func runPass(ctx context.Context, name string, p config.Profile, ps pass) (engine.Result, error) {
	if err := p.Validate(name); err != nil {
		return engine.Result{}, err
	}

	chain, err := buildFilter(ps.cliFilter, p)
	if err != nil {
		return engine.Result{}, err
	}

	remote, closer, err := remoteLister(ctx, p)
	if err != nil {
		return engine.Result{}, fmt.Errorf("remote %s: %w", p.Remote, err)
	}
	defer closer.Close()

	logger := ps.logger
	if logger == nil {
		logger = slog.Default()
	}
	if name != "" {
		logger = logger.With("profile", name)
	}

	dryRun := p.IsDryRun() || ps.forceDryRun
	start := time.Now()
	result := engine.Run(ctx, engine.Config{
		Remote:     remote,
		Prober:     newProber(p),
		Filter:     chain,
		Events:     ps.events,
		Logger:     logger,
		Stats:      ps.stats,
		LocalRoot:  p.Local,
		LinkPrefix: p.LinkPrefix,
		DryRun:     dryRun,
	})

	if ps.writeStatus {
		status := runStatus(name, start, dryRun, result)
		if err := config.WriteStatus(status); err != nil {
			logger.Warn("failed to write run status", "error", err)
		}
	}
	return result, nil
}

// runStatus condenses a result into the report kept for the operator.
func runStatus(name string, start time.Time, dryRun bool, r engine.Result) config.RunStatus {
	s := config.RunStatus{
		Started:    start,
		Profile:    name,
		RunID:      r.RunID,
		State:      r.State.String(),
		NeedsRetry: r.NeedsRetry(),
		Elapsed:    r.Stats.Elapsed,
		Applied:    r.Stats.Applied(),
		Planned:    r.Stats.Planned,
		DryRun:     dryRun,
	}
	for _, a := range r.Failed() {
		s.Failed = append(s.Failed, a.Entry.RelPath)
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

// exitCode maps a pass result to the process exit status: 2 when the pass
// aborted, 1 when some entries failed or need a retry.
func exitCode(r engine.Result) error {
	switch {
	case r.Err != nil:
		return &exitError{code: 2}
	case r.Partial():
		return &exitError{code: 1}
	default:
		return nil
	}
}
