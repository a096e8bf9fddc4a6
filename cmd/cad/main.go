// Package main implements the cad CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cad",
	Short:         "Cadence - tasks with timers and spaced-repetition reviews",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	rootStateDir string
	rootBackend  string
	rootLogLevel string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootStateDir, "state-dir", "", "Directory for snapshots (overrides config)")
	flags.StringVar(&rootBackend, "backend", "", "Storage backend: file, sqlite, redis or postgres (overrides config)")
	flags.StringVar(&rootLogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
}
