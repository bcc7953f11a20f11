package ui

import (
	"io"

	"github.com/bamsammich/linksync/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     *stats.Collector
	IsTTY     bool
	Quiet     bool
	Verbose   bool
	DryRun    bool
}

// NewPresenter creates the appropriate presenter based on configuration.
// Output is colored only when writing to a terminal.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(
	cfg Config,
) Presenter {
	if cfg.Quiet {
		return &quietPresenter{}
	}
	return &plainPresenter{
		w:       cfg.Writer,
		errW:    cfg.ErrWriter,
		stats:   cfg.Stats,
		theme:   newTheme(cfg.Writer, cfg.IsTTY),
		verbose: cfg.Verbose,
		dryRun:  cfg.DryRun,
	}
}
