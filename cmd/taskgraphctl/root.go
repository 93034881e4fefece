package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "taskgraphctl",
	Short: "Dependency-aware task graph analysis, planning, and optimization",
	Long: `taskgraphctl loads a task descriptor file (JSON or TOML), builds an
in-memory dependency graph, and runs it through the Dependency Manager
façade: the Dependency Analyzer, Priority Scorer, Execution Planner, and
Queue Optimizer.`,
}

// Execute runs the root command, printing any error to stderr and
// exiting non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().String("config", "", "config file (default .taskgraph.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("preset", "", "configuration preset: HIGH_PERFORMANCE, COMPREHENSIVE, RESOURCE_OPTIMIZED, QUALITY_FOCUSED")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".taskgraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TASKGRAPH")
	viper.AutomaticEnv()

	// It's fine if no config file is found; Load() falls back to defaults.
	_ = viper.ReadInConfig()
}
