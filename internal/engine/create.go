package engine

import (
	"context"
	"fmt"

	"github.com/bamsammich/linksync/internal/tree"
)

// applyCreations makes directories and links in plan order, parents first.
// Directories are never links; every file entry becomes a link through the
// link prefix.
func (r *run) applyCreations(ctx context.Context, entries []tree.Entry) error {
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			r.skipRemaining(entries[i:], false)
			return fmt.Errorf("creations interrupted: %w", err)
		}

		a := Action{Op: opFor(e, false), Entry: e}
		if a.Op == OpLink {
			a.Target = r.linkTarget(e.RelPath)
		}
		if r.cfg.DryRun {
			r.would(ctx, a)
			continue
		}

		a.Attempted = true
		if a.Op == OpMkdir {
			a.Outcome = r.mat.CreateDirectory(e.RelPath)
		} else {
			a.Outcome = r.mat.CreateLink(ctx, e.RelPath, a.Target)
		}
		r.record(ctx, a)
	}
	return nil
}
