package main

import (
	"log/slog"
	"os"

	"github.com/nexus-automations/taskgraph/internal/tasklog"
)

// logger is the CLI's process-wide structured logger. It's assigned once
// in initLogger (wired into cobra.OnInitialize alongside initConfig) and
// read-only from every command thereafter.
var logger = tasklog.Default()

// initLogger sets the logger's level from the --verbose persistent flag.
func initLogger() {
	verbose, _ := rootCmd.Flags().GetBool("verbose")
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger = tasklog.New(os.Stderr, level)
}
