package ui

import (
	"fmt"

	"github.com/bamsammich/linksync/internal/stats"
)

// completionSummary builds a final summary line from a snapshot.
// Format: done ✓  planned 12  links 9  dirs 2  removed 1  skipped 0  not-ready 0  time 3s  errors 0
func completionSummary(snap stats.Snapshot, dryRun bool) string {
	if dryRun {
		return fmt.Sprintf("dry run  remote %s  local %s  planned %s  time %s",
			FormatCount(snap.RemoteEntries),
			FormatCount(snap.LocalEntries),
			FormatCount(snap.Planned),
			FormatDuration(snap.Elapsed),
		)
	}

	icon := "✓"
	if snap.Partial() {
		icon = "✗"
	}

	return fmt.Sprintf("done %s  planned %s  links %s  dirs %s  removed %s  skipped %s  not-ready %s  time %s  errors %d",
		icon,
		FormatCount(snap.Planned),
		FormatCount(snap.LinksCreated),
		FormatCount(snap.DirsCreated),
		FormatCount(snap.Removed),
		FormatCount(snap.Skipped),
		FormatCount(snap.NotReady),
		FormatDuration(snap.Elapsed),
		snap.Failed,
	)
}
