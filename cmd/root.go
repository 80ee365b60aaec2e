// Package cmd implements the CLI commands for microkit: a demo harness that
// boots the simulated kernel and drives the flash file system, standing in
// for the application/demo layer the original firmware leaves out of scope.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"microkit/logging"
)

// Version information set at build time.
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags.
var (
	globalDiskImage string
	globalLog       string
	globalLogFormat string
	globalDebug     bool
)

// rootCmd is the base command for microkit.
var rootCmd = &cobra.Command{
	Use:   "microkit",
	Short: "kernel and file-system demo harness",
	Long: `microkit hosts a simulated preemptive kernel and its write-once flash
file system on top of goroutines, for running the demos that in the
original firmware boot straight into an application main loop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetDiskImage returns the path to the backing disk image file.
func GetDiskImage() string {
	if globalDiskImage != "" {
		return globalDiskImage
	}
	return "./microkit.disk"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalDiskImage, "disk", "", "path to the flash-backed disk image (default: ./microkit.disk)")
	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "set the log file path")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

func setupLogging() {
	var logOutput = os.Stderr
	if globalLog != "" {
		f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			logOutput = f
		}
	}

	logLevel := slog.LevelInfo
	if globalDebug {
		logLevel = slog.LevelDebug
	}

	logger := logging.NewLogger(logging.Config{
		Level:  logLevel,
		Format: globalLogFormat,
		Output: logOutput,
	})
	logging.SetDefault(logger)
}
