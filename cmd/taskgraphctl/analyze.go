package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nexus-automations/taskgraph/internal/analyzer"
	"github.com/nexus-automations/taskgraph/internal/ingest"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <descriptor-file>",
	Short: "Run dependency analysis over a task descriptor file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "print the full analysis as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	tasks, err := ingest.Load(args[0])
	if err != nil {
		return err
	}

	m, err := newManager(cmd, tasks)
	if err != nil {
		return err
	}
	defer m.Dispose()

	analysis, outcome, err := m.Analyze(context.Background())
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if outcome != "completed" {
		return fmt.Errorf("analyze: outcome %s", outcome)
	}

	if jsonFlag, _ := cmd.Flags().GetBool("json"); jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	printAnalysis(analysis)
	return nil
}

func printAnalysis(a *analyzer.DependencyAnalysis) {
	fmt.Printf("tasks analyzed: %d edges, %d level(s)\n", len(a.Edges), levelCount(a.Levels))
	if len(a.CircularChains) > 0 {
		fmt.Printf("circular dependencies: %d\n", len(a.CircularChains))
		for _, chain := range a.CircularChains {
			fmt.Printf("  - %v\n", []string(chain))
		}
	}
	if len(a.MissingDependencies) > 0 {
		fmt.Printf("missing dependencies: %d\n", len(a.MissingDependencies))
		for _, md := range a.MissingDependencies {
			fmt.Printf("  - %s -> %s\n", md.TaskID, md.TargetID)
		}
	}
	if len(a.CriticalPath) > 0 {
		fmt.Printf("critical path: %v\n", a.CriticalPath)
	}
}

func levelCount(levels map[string]int) int {
	max := -1
	for _, lvl := range levels {
		if lvl > max {
			max = lvl
		}
	}
	return max + 1
}
