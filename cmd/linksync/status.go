package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/ui"
)

func newStatusCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the report of the last pass of each profile",
		Long: `Show what the most recent pass of each profile did, including paths whose
link target was not visible and that need a later pass or manual linking.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := gf.loadConfig()
			if err != nil {
				return err
			}
			names := cfg.ProfileNames()
			if gf.profile != "" {
				names = []string{gf.profile}
			}
			if len(names) == 0 {
				names = []string{""}
			}
			for _, name := range names {
				s, err := config.ReadStatus(name)
				if errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(os.Stdout, "%s: never run\n", displayProfile(name))
					continue
				}
				if err != nil {
					return fmt.Errorf("read status for %s: %w", displayProfile(name), err)
				}
				printStatus(os.Stdout, name, s)
			}
			return nil
		},
	}
}

func printStatus(w io.Writer, name string, s config.RunStatus) {
	mode := ""
	if s.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "%s: %s%s  started %s  took %s  applied %s/%s  run %s\n",
		displayProfile(name), s.State, mode,
		s.Started.Local().Format(time.DateTime),
		ui.FormatDuration(s.Elapsed),
		ui.FormatCount(s.Applied), ui.FormatCount(s.Planned),
		s.RunID,
	)
	if s.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", s.Error)
	}
	for _, p := range s.NeedsRetry {
		fmt.Fprintf(w, "  needs retry: %s\n", p)
	}
	for _, p := range s.Failed {
		fmt.Fprintf(w, "  failed: %s\n", p)
	}
}

func displayProfile(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
