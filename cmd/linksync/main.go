package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/linksync/internal/config"
	"github.com/bamsammich/linksync/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configFile string
	profile    string
	logFile    string
	verbose    bool
	quiet      bool
}

func run() int {
	var (
		gf          globalFlags
		showVersion bool
	)

	rootCmd := &cobra.Command{
		Use:   "linksync",
		Short: "Mirror a cloud file tree as local directories and symlinks",
		Long: `linksync lists a remote tree (through rclone, S3, SFTP or a local path),
compares it with a local mirror, and makes the mirror match: real directories
for directories, symbolic links through a mount prefix for files.

Existing paths that are not part of the plan are never replaced. Deletions run
deepest first, creations shallowest first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "linksync %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.PersistentFlags().
		StringVar(&gf.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/linksync/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&gf.profile, "profile", "p", "", "profile to use")
	rootCmd.PersistentFlags().StringVar(&gf.logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.PersistentFlags().BoolVarP(&gf.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&gf.quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.AddCommand(
		newSyncCmd(&gf),
		newPlanCmd(&gf),
		newServeCmd(&gf),
		newLinkCmd(&gf),
		newStatusCmd(&gf),
		newInitConfigCmd(&gf),
		newDocsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// loadConfig reads the config file named by --config, or the XDG default.
func (gf *globalFlags) loadConfig() (config.Config, error) {
	return config.Load(gf.configFile)
}

// setupLogging installs the default logger: text on stderr at a level set by
// -v/-q, plus a JSON file at debug level when --log or defaults.log is set.
// base is the stderr level used when neither -v nor -q is given.
func (gf *globalFlags) setupLogging(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	base slog.Level,
) (*slog.Logger, io.Closer, error) {
	logLevel := base
	if gf.verbose {
		logLevel = slog.LevelDebug
	} else if gf.quiet {
		logLevel = slog.LevelWarn
	}
	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	logFile := gf.logFile
	if !cmd.Flags().Changed("log") && defaults.Log != nil {
		logFile = *defaults.Log
	}

	var (
		logHandler slog.Handler = textHandler
		closer     io.Closer    = io.NopCloser(nil)
	)
	if logFile != "" {
		lf, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // G302: log holds no secrets
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
		closer = lf
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)
	return logger, closer, nil
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
