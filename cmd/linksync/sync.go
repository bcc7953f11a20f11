package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/engine"
	"github.com/bamsammich/linksync/internal/event"
	"github.com/bamsammich/linksync/internal/reconcile"
	"github.com/bamsammich/linksync/internal/stats"
	"github.com/bamsammich/linksync/internal/ui"
)

func newSyncCmd(gf *globalFlags) *cobra.Command {
	o := newProfileFlags()
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass for a profile",
		Long: `Run one sync pass: list the remote and local trees, then delete local
entries the remote no longer has and create the ones it gained.

Settings come from the selected profile; flags override them. Without a
config file, --remote, --local and --prefix are enough.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, gf, o, false)
		},
	}
	o.bindTree(cmd.Flags())
	o.bindLink(cmd.Flags())
	return cmd
}

func newPlanCmd(gf *globalFlags) *cobra.Command {
	o := newProfileFlags()
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "List both trees and print the plan without changing anything",
		Long: `List both trees and print the planned deletions and creations in the
order a sync would apply them. Nothing is written, and no run report is kept.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd, gf, o, true)
		},
	}
	o.bindTree(cmd.Flags())
	cmd.Flags().StringVar(&o.prefix, "prefix", "", "link target prefix, usually the mount of the remote")
	return cmd
}

//nolint:revive // cognitive-complexity: wires config, logging, presenter and engine
func runSync(cmd *cobra.Command, gf *globalFlags, o *profileFlags, planOnly bool) error {
	name, p, cfg, err := o.resolve(cmd, gf)
	if err != nil {
		return err
	}

	logger, logCloser, err := gf.setupLogging(cmd, cfg.Defaults, slog.LevelWarn)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ui.ApplyTheme(cfg.Theme)

	// Set up context with signal handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	presenter := ui.NewPresenter(ui.Config{
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		IsTTY:     ui.IsTTY(os.Stdout.Fd()),
		Quiet:     gf.quiet || planOnly,
		Verbose:   gf.verbose,
		DryRun:    p.IsDryRun(),
		Stats:     collector,
	})

	if p.IsDryRun() && !planOnly {
		slog.Info("dry run mode")
	}

	result, err := presentPass(ctx, name, p, pass{
		logger:      logger,
		stats:       collector,
		cliFilter:   o.chain,
		forceDryRun: planOnly,
		writeStatus: !planOnly,
	}, presenter)
	stop()
	if err != nil {
		return err
	}

	if planOnly && result.Err == nil {
		printPlan(os.Stdout, result.Plan, p.LinkPrefix)
	}

	if !gf.quiet && !planOnly {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(os.Stderr, summary)
		}
	}

	if result.Err != nil {
		slog.Error("sync failed", "error", result.Err)
	}
	if planOnly && result.Err == nil {
		return nil
	}
	return exitCode(result)
}

// presentPass runs a pass while presenter consumes its events. The engine
// waits for the presenter on every action event; none is dropped unless the
// pass is canceled.
func presentPass(ctx context.Context, name string, p config.Profile, ps pass, presenter ui.Presenter) (engine.Result, error) {
	events := make(chan event.Event, 256)
	ps.events = events

	// Inline mode: run presenter in background, engine in foreground.
	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(events)
	}()

	result, err := runPass(ctx, name, p, ps)
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
	}
	return result, err
}

// printPlan writes the plan in application order: "-" lines for deletions,
// "+" lines for creations. Directories end in "/".
func printPlan(w io.Writer, plan reconcile.Plan, prefix string) {
	if plan.Empty() {
		fmt.Fprintln(w, "nothing to do")
		return
	}
	for _, e := range plan.Deletions {
		fmt.Fprintf(w, "- %s\n", displayPath(e.RelPath, e.IsDir()))
	}
	for _, e := range plan.Creations {
		if e.IsDir() {
			fmt.Fprintf(w, "+ %s\n", displayPath(e.RelPath, true))
			continue
		}
		fmt.Fprintf(w, "+ %s -> %s\n", e.RelPath, engine.LinkTarget(prefix, e.RelPath))
	}
}

func displayPath(rel string, dir bool) string {
	if dir {
		return rel + "/"
	}
	return rel
}
