package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/schedule"
)

func newServeCmd(gf *globalFlags) *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run sync passes on each profile's cron schedule",
		Long: `Run in the foreground and start a sync pass for every profile that has a
cron expression, on that schedule, until interrupted.

A tick that arrives while the same profile's previous pass is still running
is skipped. With --profile only that profile is scheduled. Each pass writes
its run report, which 'linksync status' shows.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, gf, now)
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "run every scheduled profile once before waiting for the schedule")
	return cmd
}

func runServe(cmd *cobra.Command, gf *globalFlags, now bool) error {
	cfg, err := gf.loadConfig()
	if err != nil {
		return err
	}

	logger, logCloser, err := gf.setupLogging(cmd, cfg.Defaults, slog.LevelInfo)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	jobs, err := scheduledJobs(cfg, gf.profile, logger)
	if err != nil {
		return err
	}

	runner := schedule.New(logger)
	for _, j := range jobs {
		if err := runner.Add(j); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if now {
		for _, j := range jobs {
			if ctx.Err() != nil {
				break
			}
			if err := j.Run(ctx); err != nil {
				logger.Error("initial pass failed", "job", j.Name, "error", err)
			}
		}
	}

	return runner.Run(ctx)
}

// scheduledJobs builds one job per profile with a cron expression. Profiles
// are validated up front so a bad one stops serve before anything runs.
func scheduledJobs(cfg config.Config, only string, logger *slog.Logger) ([]schedule.Job, error) {
	names := cfg.ProfileNames()
	if only != "" {
		if _, ok := cfg.Profiles[only]; !ok {
			return nil, fmt.Errorf("%w: no profile named %q", config.ErrConfigurationMissing, only)
		}
		names = []string{only}
	}

	var jobs []schedule.Job
	for _, name := range names {
		p, err := cfg.Profile(name)
		if err != nil {
			return nil, err
		}
		if p.Cron == "" {
			logger.Debug("profile has no cron schedule", "profile", name)
			continue
		}
		if err := p.Validate(name); err != nil {
			return nil, err
		}
		jobs = append(jobs, schedule.Job{
			Name: name,
			Spec: p.Cron,
			Run:  profileJob(name, p, logger),
		})
	}
	if len(jobs) == 0 {
		return nil, errors.New("no profile has a cron schedule")
	}
	return jobs, nil
}

// profileJob runs one pass of a profile and reports fatal and partial
// outcomes as errors.
func profileJob(name string, p config.Profile, logger *slog.Logger) schedule.Func {
	return func(ctx context.Context) error {
		result, err := runPass(ctx, name, p, pass{logger: logger, writeStatus: true})
		switch {
		case err != nil:
			return err
		case result.Err != nil:
			return result.Err
		case result.Partial():
			return fmt.Errorf("pass incomplete: %s", result.Stats)
		}
		return nil
	}
}
