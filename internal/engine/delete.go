package engine

import (
	"context"
	"fmt"

	"github.com/bamsammich/linksync/internal/tree"
)

// applyDeletions removes entries in plan order, deepest first. A failed
// removal is recorded and the rest still run; only cancellation stops the
// phase early.
func (r *run) applyDeletions(ctx context.Context, entries []tree.Entry) error {
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			r.skipRemaining(entries[i:], true)
			return fmt.Errorf("deletions interrupted: %w", err)
		}

		a := Action{Op: OpRemove, Entry: e}
		if r.cfg.DryRun {
			r.would(ctx, a)
			continue
		}

		a.Attempted = true
		a.Outcome = r.mat.Remove(e.RelPath)
		r.record(ctx, a)
	}
	return nil
}
