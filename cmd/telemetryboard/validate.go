package main

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/telemetryboard/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a TelemetryBoard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  telemetryboard validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	gauges := make([]string, 0, len(cfg.Gauges))
	for name := range cfg.Gauges {
		gauges = append(gauges, name)
	}
	sort.Strings(gauges)

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Backend:       %s\n", cfg.Backend.URL)
	fmt.Printf("  Port:          %d\n", cfg.Port)
	fmt.Printf("  Fast interval: %s\n", cfg.FastInterval.Duration())
	fmt.Printf("  Slow interval: %s\n", cfg.SlowInterval.Duration())
	fmt.Printf("  History:       %d minutes\n", cfg.HistoryMinutes)
	if len(gauges) > 0 {
		fmt.Printf("  Gauges:        %v\n", gauges)
	}

	return nil
}
