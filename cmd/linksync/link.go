package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/engine"
	"github.com/bamsammich/linksync/internal/materialize"
	"github.com/bamsammich/linksync/internal/transport"
)

func newLinkCmd(gf *globalFlags) *cobra.Command {
	o := newProfileFlags()
	cmd := &cobra.Command{
		Use:   "link <path>...",
		Short: "Create the mirror link for single files as they arrive",
		Long: `Create the mirror link for one or more files without listing either tree.

Each path must lie under the profile's source_prefix, the location where new
files show up (for example a download directory on the remote). The link is
made at local/<rel> and points at prefix/<rel>. Existing paths are left
alone, and the target is refreshed through the mount before linking.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLink(cmd, gf, o, args)
		},
	}
	cmd.Flags().StringVar(&o.local, "local", "", "local mirror root (absolute path)")
	cmd.Flags().StringVar(&o.sourcePrefix, "source-prefix", "", "prefix the given paths are relative to")
	o.bindLink(cmd.Flags())
	return cmd
}

func runLink(cmd *cobra.Command, gf *globalFlags, o *profileFlags, paths []string) error {
	name, p, cfg, err := o.resolve(cmd, gf)
	if err != nil {
		return err
	}
	if err := p.ValidateLink(name); err != nil {
		return err
	}

	logger, logCloser, err := gf.setupLogging(cmd, cfg.Defaults, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	if name != "" {
		logger = logger.With("profile", name)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := materialize.New(transport.NewLocalEndpoint(p.Local), newProber(p))
	partial := false
	for _, src := range paths {
		if ctx.Err() != nil {
			return &exitError{code: 1}
		}
		if !linkOne(ctx, m, p, src, logger) {
			partial = true
		}
	}
	if partial {
		return &exitError{code: 1}
	}
	return nil
}

// linkOne links a single source path and reports whether it ended in a
// good state.
func linkOne(ctx context.Context, m *materialize.Materializer, p config.Profile, src string, logger *slog.Logger) bool {
	rel, err := sourceRel(p.SourcePrefix, src)
	if err != nil {
		logger.Error("cannot link path", "path", src, "error", err)
		return false
	}
	target := engine.LinkTarget(p.LinkPrefix, rel)

	if p.IsDryRun() {
		logger.Info("would create link", "path", rel, "target", target)
		return true
	}

	out := m.CreateLink(ctx, rel, target)
	switch out.Result {
	case materialize.Created:
		logger.Info("created link", "path", rel, "target", target)
		fmt.Fprintf(os.Stdout, "%s -> %s\n", filepath.Join(p.Local, filepath.FromSlash(rel)), target)
	case materialize.SkippedExisting:
		logger.Info("path exists, left in place", "path", rel)
	case materialize.TargetNotReady:
		logger.Warn("link target not visible, retry later or link manually",
			"path", rel, "target", target, "probe", out.Probe.Status, "at", out.Probe.Segment)
	default:
		logger.Error("action failed", "path", rel, "op", "link", "error", out.Err)
	}
	return out.OK()
}

// sourceRel returns src relative to prefix in slash form. src must be
// strictly below prefix.
func sourceRel(prefix, src string) (string, error) {
	rel, err := filepath.Rel(filepath.Clean(prefix), filepath.Clean(src))
	if err != nil {
		return "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is not under source_prefix %s", prefix)
	}
	return filepath.ToSlash(rel), nil
}
