// Package main is the entry point for the telemetryboard CLI.
//
// TelemetryBoard can be run either as a library (SDK) or as a standalone
// binary with YAML configuration. This CLI provides the standalone binary
// approach.
//
// Usage:
//
//	telemetryboard serve -c config.yaml    # Start the web dashboard
//	telemetryboard watch -c config.yaml    # Terminal dashboard
//	telemetryboard validate -c config.yaml # Validate configuration
//	telemetryboard version                 # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "telemetryboard",
	Short: "A live dashboard for an IoT telemetry rig",
	Long: `TelemetryBoard is a live dashboard for a two-board IoT telemetry rig.

It polls a telemetry backend for the latest readings and for recent
history, redraws only what changed, and sends relay commands back.

Quick start:
  1. Create a config file (telemetryboard.yaml)
  2. Run: telemetryboard serve -c telemetryboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  fast_interval: 800ms
  slow_interval: 15s
  backend:
    url: http://localhost:8000`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this telemetryboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("telemetryboard %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
