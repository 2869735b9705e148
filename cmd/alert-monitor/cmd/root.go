package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alert-monitor/internal/config"
	"github.com/oshokin/alert-monitor/internal/service/desktop"
	"github.com/oshokin/alert-monitor/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// statusAddress overrides the status endpoint address.
	statusAddress string
	// logLevel overrides the configured log level.
	logLevel string
	// headless runs without a window.
	headless bool
	// watchConfig reloads settings when the file changes.
	watchConfig bool
	// allowMultiple skips the single-instance check.
	allowMultiple bool

	// rootCmd represents the base command for running the application.
	rootCmd = &cobra.Command{
		Use:   "alert-monitor",
		Short: "Show a window whose indicator turns red when a random sample crosses a threshold.",
		Long: `Runs a desktop window with an alert indicator.

A background monitor samples a random value every interval (1s by default).
Values above the threshold (0.8 by default) paint the indicator OrangeRed,
anything else clears it. Closing the window stops the monitor gracefully.

Interval, threshold and the optional gRPC status endpoint are read from the
YAML configuration file. Use --headless to run without a display.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &desktop.Options{
				ConfigPath:    configPath,
				StatusAddress: statusAddress,
				LogLevel:      logLevel,
				Headless:      headless,
				WatchConfig:   watchConfig,
				AllowMultiple: allowMultiple,
			}

			return desktop.Run(ctx, options)
		},
	}
)

// Execute runs the alert-monitor CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(newStatusCommand(), newInitConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&statusAddress, "status-addr", "", "serve the gRPC status endpoint on this address")
	flags.StringVar(&logLevel, "log-level", "", "override the configured log level")
	flags.BoolVar(&headless, "headless", false, "run without a window")
	flags.BoolVar(&watchConfig, "watch-config", false, "apply interval and threshold changes without a restart")
	flags.BoolVar(&allowMultiple, "allow-multiple", false, "skip the single-instance check")
}
