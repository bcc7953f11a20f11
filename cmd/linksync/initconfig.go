package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/linksync/internal/config"
)

func newInitConfigCmd(gf *globalFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a starter config file",
		Long: `Write a config file with one example profile to --config, or to the
default location. An existing file is kept unless --force is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			path := gf.configFile
			if path == "" {
				path = config.Path()
			}
			if path == "" {
				return errors.New("cannot determine config path, pass --config")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Write(path, starterConfig()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func starterConfig() config.Config {
	dryRun := true
	profile := "media"
	return config.Config{
		Defaults: config.DefaultsConfig{
			Profile: &profile,
			DryRun:  &dryRun,
		},
		Profiles: map[string]config.Profile{
			profile: {
				Lister:       config.ListerRcloneJSON,
				Remote:       "cloud:/media",
				Local:        "/srv/media",
				LinkPrefix:   "/mnt/cloud/media",
				SourcePrefix: "/downloads",
				Cron:         "0 9 * * *",
				Probe: config.ProbeConfig{
					Delay:     500 * time.Millisecond,
					MaxLevels: 64,
				},
			},
		},
	}
}
